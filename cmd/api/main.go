// Main entry point for the match engine API.
// This file bootstraps all components and starts the server.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fwber/matchengine/internal/auth"
	"github.com/fwber/matchengine/internal/common/database"
	"github.com/fwber/matchengine/internal/config"
	"github.com/fwber/matchengine/internal/matching"
	"github.com/fwber/matchengine/internal/tier"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	log.Println("========================================")
	log.Println("🚀 Starting Match Engine API")
	log.Println("========================================")

	// 1. Load environment variables
	log.Println("📁 Step 1: Loading .env file...")
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  Warning: No .env file found (%v), using environment variables", err)
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	// 2. Load and validate configuration
	log.Println("\n📋 Step 2: Loading configuration...")
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("❌ Configuration validation failed:", err)
	}
	log.Println("✅ Configuration loaded and valid")

	// 3. Connect to PostgreSQL
	log.Println("\n🗄️  Step 3: Connecting to PostgreSQL...")
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("❌ Failed to connect to PostgreSQL:", err)
	}
	defer db.Close()
	log.Println("✅ Connected to PostgreSQL successfully")

	// 4. Connect to Redis (optional; the engine recomputes on cache loss)
	log.Println("\n📮 Step 4: Connecting to Redis...")
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClient(context.Background(), cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️  Redis unavailable (%v), continuing without result cache", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
			log.Println("✅ Connected to Redis successfully")
		}
	} else {
		log.Println("⚠️  Redis URL not configured, result cache disabled")
	}

	// 5. Run database migrations
	log.Println("\n🔨 Step 5: Running database migrations...")
	if err := runMigrations(db); err != nil {
		log.Fatal("❌ Failed to run migrations:", err)
	}
	log.Println("✅ Database migrations completed")

	// 6. Initialize Auth system
	log.Println("\n🔐 Step 6: Initializing authentication...")
	authService := auth.NewService(cfg.JWTSecret)
	authMiddleware := auth.NewMiddleware(authService)
	log.Println("✅ Authentication initialized")

	// 7. Initialize Matching module
	log.Println("\n💘 Step 7: Initializing Matching module...")

	weights, err := matching.NewWeightStore(matching.WeightSet{
		Version:     "config",
		Physical:    cfg.WeightPhysical,
		Personality: cfg.WeightPersonality,
		Sexual:      cfg.WeightSexual,
		Lifestyle:   cfg.WeightLifestyle,
		Location:    cfg.WeightLocation,
		Activity:    cfg.WeightActivity,
	})
	if err != nil {
		log.Fatal("❌ Invalid category weights:", err)
	}

	matchingRepo := matching.NewPostgresRepository(db)

	var matchCache matching.Cache
	if redisClient != nil {
		matchCache = matching.NewRedisCache(redisClient, cfg.CacheTTL)
		log.Println("   ✅ Using Redis for match result caching")
	} else {
		matchCache = matching.NewNoopCache()
		log.Println("   ⚠️  Match results will be recomputed on every request")
	}

	interactionSource := matching.NewLedgerSource(matchingRepo)

	matchingService := matching.NewService(matchingRepo, weights, matchCache, interactionSource, matching.ServiceConfig{
		PoolSize:   cfg.PoolSize,
		RerankTopN: cfg.RerankTopN,
		Workers:    cfg.ScoreWorkers,
		MinScore:   cfg.MinScore,
	})
	matchingHandler := matching.NewHandler(matchingService)
	log.Println("✅ Matching module initialized")

	// 8. Initialize Tier module
	log.Println("\n🪜 Step 8: Initializing Tier module...")
	tierRepo := tier.NewPostgresRepository(db)
	tierService := tier.NewService(tierRepo)
	tierHandler := tier.NewHandler(tierService)
	log.Println("✅ Tier module initialized")

	// 9. Setup routes
	log.Println("\n🛣️  Step 9: Setting up routes...")
	router := mux.NewRouter()

	router.HandleFunc("/health", healthCheck).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	tier.RegisterRoutes(router, tierHandler, authMiddleware)
	log.Println("   ✅ Tier routes registered")

	matching.RegisterRoutes(router, matchingHandler, authMiddleware)
	log.Println("   ✅ Matching routes registered")

	router.Use(loggingMiddleware)
	router.Use(corsMiddleware)

	// 10. Create and start HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Println("\n========================================")
		log.Printf("🚀 Server starting on http://localhost%s", srv.Addr)
		log.Printf("🌍 Environment: %s", cfg.Environment)
		log.Println("========================================")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("❌ Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("\n⚠️  Shutdown signal received...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("❌ Server forced to shutdown:", err)
	}

	log.Println("✅ Server exited gracefully")
}

var startTime = time.Now()

// healthCheck returns server health status
func healthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(startTime).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// loggingMiddleware logs all requests with status and duration
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		log.Printf("← %s %s [%d] %v", r.Method, r.RequestURI, wrapped.statusCode, time.Since(start))
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// runMigrations creates the engine's tables. Profile and ledger tables are
// owned by the platform services; they are created here only for fresh
// development databases.
func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id SERIAL PRIMARY KEY,
            username VARCHAR(100) UNIQUE NOT NULL,
            display_name VARCHAR(100) NOT NULL DEFAULT '',
            birth_date DATE NOT NULL,
            gender VARCHAR(20) NOT NULL,
            latitude DOUBLE PRECISION,
            longitude DOUBLE PRECISION,
            current_venue_id INTEGER,
            want_age_from INTEGER NOT NULL DEFAULT 18,
            want_age_to INTEGER NOT NULL DEFAULT 99,
            max_distance_km DOUBLE PRECISION NOT NULL DEFAULT 50,
            body VARCHAR(20),
            ethnicity VARCHAR(20),
            hair_color VARCHAR(20),
            hair_length VARCHAR(20),
            height_cm INTEGER,
            overall_looks VARCHAR(20),
            intelligence VARCHAR(20),
            bedroom_personality VARCHAR(20),
            bio TEXT,
            private_bio TEXT,
            avatar_url TEXT,
            active BOOLEAN NOT NULL DEFAULT TRUE,
            last_seen TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        )`,

		`CREATE TABLE IF NOT EXISTS user_preferences (
            user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            preference_key VARCHAR(64) NOT NULL,
            preference_value VARCHAR(64) NOT NULL,
            PRIMARY KEY (user_id, preference_key)
        )`,

		`CREATE TABLE IF NOT EXISTS user_blocks (
            user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            blocked_user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            PRIMARY KEY (user_id, blocked_user_id)
        )`,

		`CREATE TABLE IF NOT EXISTS match_actions (
            user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            target_user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            action VARCHAR(20) NOT NULL,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            PRIMARY KEY (user_id, target_user_id)
        )`,

		`CREATE TABLE IF NOT EXISTS interactions (
            id SERIAL PRIMARY KEY,
            user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            target_user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            action VARCHAR(20) NOT NULL,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        )`,

		`CREATE TABLE IF NOT EXISTS matches (
            id SERIAL PRIMARY KEY,
            user_a_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            user_b_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            CONSTRAINT unique_match UNIQUE(user_a_id, user_b_id)
        )`,

		`CREATE TABLE IF NOT EXISTS match_tiers (
            match_id INTEGER PRIMARY KEY REFERENCES matches(id) ON DELETE CASCADE,
            user_a_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            user_b_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            tier VARCHAR(20) NOT NULL DEFAULT 'matched',
            messages_exchanged INTEGER NOT NULL DEFAULT 0,
            first_matched_at TIMESTAMP WITH TIME ZONE NOT NULL,
            last_message_at TIMESTAMP WITH TIME ZONE,
            has_met BOOLEAN NOT NULL DEFAULT FALSE,
            met_at TIMESTAMP WITH TIME ZONE,
            version BIGINT NOT NULL DEFAULT 1,
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        )`,

		`CREATE INDEX IF NOT EXISTS idx_users_location ON users(latitude, longitude)`,
		`CREATE INDEX IF NOT EXISTS idx_users_last_seen ON users(last_seen DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_pair ON interactions(user_id, target_user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_match_actions_user ON match_actions(user_id)`,
	}

	for i, migration := range migrations {
		log.Printf("   - Running migration %d/%d...", i+1, len(migrations))
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
