package tier

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

var (
	ErrMatchNotFound   = errors.New("match not found")
	ErrVersionConflict = errors.New("tier record was updated concurrently")
)

type Repository interface {
	// GetOrCreate returns the progression record for the match, lazily
	// creating it at matched the first time the match is touched.
	GetOrCreate(ctx context.Context, matchID int64) (*Record, error)

	Get(ctx context.Context, matchID int64) (*Record, error)

	// Update persists the record if its version is unchanged, bumping the
	// version on success. Returns ErrVersionConflict on a stale write.
	Update(ctx context.Context, r *Record) error
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Get(ctx context.Context, matchID int64) (*Record, error) {
	query := `
        SELECT match_id, user_a_id, user_b_id, tier, messages_exchanged,
               first_matched_at, last_message_at, has_met, met_at, version, updated_at
        FROM match_tiers
        WHERE match_id = $1`

	var rec Record
	err := r.db.QueryRowxContext(ctx, query, matchID).StructScan(&rec)
	if err == sql.ErrNoRows {
		return nil, ErrMatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get tier record %d: %w", matchID, err)
	}
	return &rec, nil
}

func (r *postgresRepository) GetOrCreate(ctx context.Context, matchID int64) (*Record, error) {
	rec, err := r.Get(ctx, matchID)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, ErrMatchNotFound) {
		return nil, err
	}

	// The match row is the source of truth for the pair and match time.
	var seed struct {
		UserAID   int64     `db:"user_a_id"`
		UserBID   int64     `db:"user_b_id"`
		CreatedAt time.Time `db:"created_at"`
	}
	err = r.db.QueryRowxContext(ctx,
		`SELECT user_a_id, user_b_id, created_at FROM matches WHERE id = $1`,
		matchID).StructScan(&seed)
	if err == sql.ErrNoRows {
		return nil, ErrMatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load match %d: %w", matchID, err)
	}

	insert := `
        INSERT INTO match_tiers (match_id, user_a_id, user_b_id, tier,
                                 messages_exchanged, first_matched_at, has_met, version, updated_at)
        VALUES ($1, $2, $3, $4, 0, $5, FALSE, 1, NOW())
        ON CONFLICT (match_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, insert, matchID, seed.UserAID, seed.UserBID, TierMatched, seed.CreatedAt); err != nil {
		return nil, fmt.Errorf("create tier record %d: %w", matchID, err)
	}

	// Re-read: a concurrent creator may have won the insert race.
	return r.Get(ctx, matchID)
}

func (r *postgresRepository) Update(ctx context.Context, rec *Record) error {
	query := `
        UPDATE match_tiers
        SET tier = $1, messages_exchanged = $2, last_message_at = $3,
            has_met = $4, met_at = $5,
            version = version + 1, updated_at = NOW()
        WHERE match_id = $6 AND version = $7`

	result, err := r.db.ExecContext(ctx, query,
		rec.Tier, rec.MessagesExchanged, rec.LastMessageAt,
		rec.HasMet, rec.MetAt, rec.MatchID, rec.Version)
	if err != nil {
		return fmt.Errorf("update tier record %d: %w", rec.MatchID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update tier record %d: %w", rec.MatchID, err)
	}
	if affected == 0 {
		return ErrVersionConflict
	}

	rec.Version++
	return nil
}
