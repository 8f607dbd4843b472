package matching

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var ErrProfileNotFound = errors.New("profile not found")

// CandidateQuery is the retrieval-layer filter pushed down to SQL. The
// bounding box over-selects; the retriever applies the exact distance cut.
type CandidateQuery struct {
	SeekerID     int64
	Bounds       *GeoBounds
	MinAge       int
	MaxAge       int
	SeenSince    *time.Time
	CreatedSince *time.Time
	Limit        int
}

// Repository is the engine's read access to profiles and the interaction
// ledger. Both are owned by upstream services; the engine never writes.
type Repository interface {
	GetProfile(ctx context.Context, userID int64) (*Profile, error)
	FindCandidates(ctx context.Context, query CandidateQuery) ([]*Profile, error)
	ListInteractions(ctx context.Context, userID, targetUserID int64) ([]Interaction, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

const profileColumns = `
    u.id, u.username, u.display_name, u.birth_date, u.gender,
    u.latitude, u.longitude, u.current_venue_id,
    u.want_age_from, u.want_age_to, u.max_distance_km,
    COALESCE(u.body, '') AS body,
    COALESCE(u.ethnicity, '') AS ethnicity,
    COALESCE(u.hair_color, '') AS hair_color,
    COALESCE(u.hair_length, '') AS hair_length,
    u.height_cm,
    COALESCE(u.overall_looks, '') AS overall_looks,
    COALESCE(u.intelligence, '') AS intelligence,
    COALESCE(u.bedroom_personality, '') AS bedroom_personality,
    COALESCE(u.bio, '') AS bio,
    COALESCE(u.private_bio, '') AS private_bio,
    COALESCE(u.avatar_url, '') AS avatar_url,
    u.active, u.last_seen, u.created_at`

func (r *postgresRepository) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	query := `SELECT` + profileColumns + ` FROM users u WHERE u.id = $1`

	var p Profile
	err := r.db.QueryRowxContext(ctx, query, userID).StructScan(&p)
	if err == sql.ErrNoRows {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %d: %w", userID, err)
	}

	p.Age = yearsSince(p.BirthDate)
	initPreferenceMaps(&p)

	if err := r.attachPreferences(ctx, []*Profile{&p}); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepository) FindCandidates(ctx context.Context, q CandidateQuery) ([]*Profile, error) {
	var (
		sb   strings.Builder
		args []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	sb.WriteString(`SELECT` + profileColumns + `
        FROM users u
        WHERE u.id != ` + arg(q.SeekerID) + `
          AND u.active = TRUE
          AND NOT EXISTS (
              SELECT 1 FROM user_blocks b
              WHERE (b.user_id = ` + arg(q.SeekerID) + ` AND b.blocked_user_id = u.id)
                 OR (b.user_id = u.id AND b.blocked_user_id = ` + arg(q.SeekerID) + `)
          )
          AND NOT EXISTS (
              SELECT 1 FROM match_actions a
              WHERE a.user_id = ` + arg(q.SeekerID) + `
                AND a.target_user_id = u.id
                AND a.action = 'pass'
          )
          AND NOT EXISTS (
              SELECT 1 FROM matches m
              WHERE (m.user_a_id = ` + arg(q.SeekerID) + ` AND m.user_b_id = u.id)
                 OR (m.user_a_id = u.id AND m.user_b_id = ` + arg(q.SeekerID) + `)
          )`)

	if q.Bounds != nil {
		sb.WriteString(`
          AND u.latitude BETWEEN ` + arg(q.Bounds.MinLat) + ` AND ` + arg(q.Bounds.MaxLat) + `
          AND u.longitude BETWEEN ` + arg(q.Bounds.MinLon) + ` AND ` + arg(q.Bounds.MaxLon))
	}
	if q.MinAge > 0 {
		sb.WriteString(`
          AND EXTRACT(YEAR FROM AGE(u.birth_date)) >= ` + arg(q.MinAge))
	}
	if q.MaxAge > 0 {
		sb.WriteString(`
          AND EXTRACT(YEAR FROM AGE(u.birth_date)) <= ` + arg(q.MaxAge))
	}
	if q.SeenSince != nil {
		sb.WriteString(`
          AND u.last_seen > ` + arg(*q.SeenSince))
	}
	if q.CreatedSince != nil {
		sb.WriteString(`
          AND u.created_at > ` + arg(*q.CreatedSince))
	}

	sb.WriteString(`
        ORDER BY u.last_seen DESC
        LIMIT ` + arg(q.Limit))

	rows, err := r.db.QueryxContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("find candidates: %w", err)
	}
	defer rows.Close()

	var profiles []*Profile
	for rows.Next() {
		var p Profile
		if err := rows.StructScan(&p); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		p.Age = yearsSince(p.BirthDate)
		initPreferenceMaps(&p)
		profiles = append(profiles, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find candidates: %w", err)
	}

	if err := r.attachPreferences(ctx, profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *postgresRepository) ListInteractions(ctx context.Context, userID, targetUserID int64) ([]Interaction, error) {
	query := `
        SELECT user_id, target_user_id, action, created_at
        FROM interactions
        WHERE (user_id = $1 AND target_user_id = $2)
           OR (user_id = $2 AND target_user_id = $1)
        ORDER BY created_at`

	var interactions []Interaction
	if err := r.db.SelectContext(ctx, &interactions, query, userID, targetUserID); err != nil {
		return nil, fmt.Errorf("list interactions %d/%d: %w", userID, targetUserID, err)
	}
	return interactions, nil
}

// attachPreferences loads the key/value preference rows for every profile
// in one query and folds them into the typed maps. Unknown or malformed
// keys are logged and skipped, never fatal.
func (r *postgresRepository) attachPreferences(ctx context.Context, profiles []*Profile) error {
	if len(profiles) == 0 {
		return nil
	}

	ids := make([]int64, len(profiles))
	byID := make(map[int64]*Profile, len(profiles))
	for i, p := range profiles {
		ids[i] = p.ID
		byID[p.ID] = p
	}

	query := `
        SELECT user_id, preference_key, preference_value
        FROM user_preferences
        WHERE user_id = ANY($1)`

	rows, err := r.db.QueryxContext(ctx, query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("load preferences: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			userID     int64
			key, value string
		)
		if err := rows.Scan(&userID, &key, &value); err != nil {
			return fmt.Errorf("scan preference: %w", err)
		}
		p := byID[userID]
		if p == nil {
			continue
		}
		if err := applyPreference(p, key, value); err != nil {
			log.Printf("matching: user %d preference %q: %v", userID, key, err)
		}
	}
	return rows.Err()
}

func initPreferenceMaps(p *Profile) {
	p.WantGenders = make(map[Gender]bool)
	p.WantBody = make(map[BodyType]int)
	p.WantEthnicity = make(map[Ethnicity]int)
	p.WantHairColor = make(map[HairColor]int)
	p.WantHairLength = make(map[HairLength]int)
	p.HaveCondition = make(map[HealthCondition]bool)
	p.RejectCondition = make(map[HealthCondition]bool)
	p.WantActs = make(map[SexualAct]bool)
}

// applyPreference maps one key/value row onto the typed profile fields.
// Every key is validated here, at load; scoring never sees raw strings.
func applyPreference(p *Profile, key, value string) error {
	switch {
	case strings.HasPrefix(key, "want_gender_"):
		g := Gender(strings.TrimPrefix(key, "want_gender_"))
		if !validGender(g) {
			return fmt.Errorf("unknown gender %q", g)
		}
		p.WantGenders[g] = parseBool(value)

	case strings.HasPrefix(key, "want_body_"):
		t := BodyType(strings.TrimPrefix(key, "want_body_"))
		if !contains(BodyTypes, t) {
			return fmt.Errorf("unknown body type %q", t)
		}
		p.WantBody[t] = parseStrength(value)

	case strings.HasPrefix(key, "want_ethnicity_"):
		e := Ethnicity(strings.TrimPrefix(key, "want_ethnicity_"))
		if !contains(Ethnicities, e) {
			return fmt.Errorf("unknown ethnicity %q", e)
		}
		p.WantEthnicity[e] = parseStrength(value)

	case strings.HasPrefix(key, "want_hair_color_"):
		c := HairColor(strings.TrimPrefix(key, "want_hair_color_"))
		if !contains(HairColors, c) {
			return fmt.Errorf("unknown hair color %q", c)
		}
		p.WantHairColor[c] = parseStrength(value)

	case strings.HasPrefix(key, "want_hair_length_"):
		l := HairLength(strings.TrimPrefix(key, "want_hair_length_"))
		if !contains(HairLengths, l) {
			return fmt.Errorf("unknown hair length %q", l)
		}
		p.WantHairLength[l] = parseStrength(value)

	case strings.HasPrefix(key, "want_act_"):
		a := SexualAct(strings.TrimPrefix(key, "want_act_"))
		if !contains(SexualActs, a) {
			return fmt.Errorf("unknown act %q", a)
		}
		p.WantActs[a] = parseBool(value)

	case strings.HasPrefix(key, "have_"):
		c := HealthCondition(strings.TrimPrefix(key, "have_"))
		if !contains(HealthConditions, c) {
			return fmt.Errorf("unknown condition %q", c)
		}
		p.HaveCondition[c] = parseBool(value)

	case strings.HasPrefix(key, "reject_"):
		c := HealthCondition(strings.TrimPrefix(key, "reject_"))
		if !contains(HealthConditions, c) {
			return fmt.Errorf("unknown condition %q", c)
		}
		p.RejectCondition[c] = parseBool(value)

	case key == "smokes":
		p.Lifestyle.Smokes = parseBool(value)
	case key == "heavy_drinker":
		p.Lifestyle.HeavyDrinker = parseBool(value)
	case key == "marijuana":
		p.Lifestyle.Marijuana = parseBool(value)
	case key == "other_drugs":
		p.Lifestyle.OtherDrugs = parseBool(value)
	case key == "poly":
		p.Lifestyle.Poly = parseBool(value)
	case key == "married_discreet":
		p.Lifestyle.MarriedDiscreet = parseBool(value)

	case key == "no_smoking":
		p.RejectLifestyle.Smokes = parseBool(value)
	case key == "no_heavy_drinking":
		p.RejectLifestyle.HeavyDrinker = parseBool(value)
	case key == "no_marijuana":
		p.RejectLifestyle.Marijuana = parseBool(value)
	case key == "no_drugs":
		p.RejectLifestyle.OtherDrugs = parseBool(value)
	case key == "no_poly":
		p.RejectLifestyle.Poly = parseBool(value)
	case key == "no_married_discreet":
		p.RejectLifestyle.MarriedDiscreet = parseBool(value)

	default:
		return fmt.Errorf("unrecognized key")
	}
	return nil
}

func validGender(g Gender) bool {
	for _, known := range Genders {
		if g == known {
			return true
		}
	}
	return false
}

func contains[T comparable](list []T, v T) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func parseBool(value string) bool {
	return value == "1" || value == "true"
}

func parseStrength(value string) int {
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0
	}
	if n > 10 {
		return 10
	}
	return n
}

func yearsSince(birthDate time.Time) int {
	if birthDate.IsZero() {
		return 0
	}
	now := time.Now()
	years := now.Year() - birthDate.Year()
	if now.YearDay() < birthDate.YearDay() {
		years--
	}
	return years
}
