package tier

import (
	"time"
)

// Tier is a relationship stage between two matched users. Stages only
// move forward; a confirmed in-person meeting pins the pair at verified.
type Tier string

const (
	TierDiscovery   Tier = "discovery"
	TierMatched     Tier = "matched"
	TierConnected   Tier = "connected"
	TierEstablished Tier = "established"
	TierVerified    Tier = "verified"
)

// Rank orders tiers for monotonicity checks. Unknown values rank below
// discovery.
func (t Tier) Rank() int {
	switch t {
	case TierDiscovery:
		return 1
	case TierMatched:
		return 2
	case TierConnected:
		return 3
	case TierEstablished:
		return 4
	case TierVerified:
		return 5
	default:
		return 0
	}
}

// Record is the per-match progression state. Version guards concurrent
// counter updates; a stale write is retried against the fresh row.
type Record struct {
	MatchID           int64      `json:"match_id" db:"match_id"`
	UserAID           int64      `json:"user_a_id" db:"user_a_id"`
	UserBID           int64      `json:"user_b_id" db:"user_b_id"`
	Tier              Tier       `json:"tier" db:"tier"`
	MessagesExchanged int        `json:"messages_exchanged" db:"messages_exchanged"`
	FirstMatchedAt    time.Time  `json:"first_matched_at" db:"first_matched_at"`
	LastMessageAt     *time.Time `json:"last_message_at,omitempty" db:"last_message_at"`
	HasMet            bool       `json:"has_met" db:"has_met"`
	MetAt             *time.Time `json:"met_at,omitempty" db:"met_at"`
	Version           int64      `json:"-" db:"version"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

// Participates reports whether the user is one of the pair.
func (r *Record) Participates(userID int64) bool {
	return r.UserAID == userID || r.UserBID == userID
}

// PhotoVisibility is what each side may see of the other's photos at a
// tier. AllPhotos overrides the counts; AI-generated placeholders are
// always visible regardless of tier.
type PhotoVisibility struct {
	RealPhotos    int  `json:"real_photos"`
	BlurredPhotos int  `json:"blurred_photos"`
	AllPhotos     bool `json:"all_photos"`
}

// Requirement is one condition toward the next tier, phrased for display.
type Requirement struct {
	Description string `json:"description"`
	Met         bool   `json:"met"`
}

// Status is the tier state returned to a participant.
type Status struct {
	MatchID           int64           `json:"match_id"`
	Tier              Tier            `json:"tier"`
	MessagesExchanged int             `json:"messages_exchanged"`
	DaysSinceMatched  int             `json:"days_since_matched"`
	HasMet            bool            `json:"has_met"`
	Visibility        PhotoVisibility `json:"visibility"`
	NextTier          Tier            `json:"next_tier,omitempty"`
	NextRequirements  []Requirement   `json:"next_requirements,omitempty"`
}
