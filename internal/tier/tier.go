package tier

import (
	"fmt"
	"time"
)

// Progression thresholds. Messages count both directions; days are whole
// 24-hour periods since the match was first created.
const (
	connectedMinMessages   = 10
	connectedMinDays       = 1
	establishedMinMessages = 50
	establishedMinDays     = 7
)

// Calculate derives the tier from the progression inputs alone. A
// confirmed meeting wins outright; otherwise the highest stage whose
// message and time thresholds are both met applies. Any existing match
// record is at least matched.
func Calculate(messages, days int, hasMet bool) Tier {
	switch {
	case hasMet:
		return TierVerified
	case messages >= establishedMinMessages && days >= establishedMinDays:
		return TierEstablished
	case messages >= connectedMinMessages && days >= connectedMinDays:
		return TierConnected
	default:
		return TierMatched
	}
}

// DaysSince converts elapsed time into whole days, never negative.
func DaysSince(from, now time.Time) int {
	d := int(now.Sub(from).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// PolicyFor is the photo disclosure schedule per tier. Counts bound what
// the pair may reveal; discovery strangers see AI placeholders only.
func PolicyFor(t Tier) PhotoVisibility {
	switch t {
	case TierMatched:
		return PhotoVisibility{BlurredPhotos: 2}
	case TierConnected:
		return PhotoVisibility{RealPhotos: 5}
	case TierEstablished, TierVerified:
		return PhotoVisibility{AllPhotos: true}
	default: // discovery
		return PhotoVisibility{}
	}
}

// Next returns the tier after t, or t itself at the top.
func Next(t Tier) Tier {
	switch t {
	case TierDiscovery:
		return TierMatched
	case TierMatched:
		return TierConnected
	case TierConnected:
		return TierEstablished
	case TierEstablished:
		return TierVerified
	default:
		return t
	}
}

// NextRequirements lists the outstanding conditions toward the tier after
// the record's current one. Verified has none.
func NextRequirements(r *Record, now time.Time) (Tier, []Requirement) {
	days := DaysSince(r.FirstMatchedAt, now)

	switch r.Tier {
	case TierMatched:
		return TierConnected, []Requirement{
			{
				Description: fmt.Sprintf("Exchange at least %d messages", connectedMinMessages),
				Met:         r.MessagesExchanged >= connectedMinMessages,
			},
			{
				Description: fmt.Sprintf("Stay matched for at least %d day", connectedMinDays),
				Met:         days >= connectedMinDays,
			},
		}
	case TierConnected:
		return TierEstablished, []Requirement{
			{
				Description: fmt.Sprintf("Exchange at least %d messages", establishedMinMessages),
				Met:         r.MessagesExchanged >= establishedMinMessages,
			},
			{
				Description: fmt.Sprintf("Stay matched for at least %d days", establishedMinDays),
				Met:         days >= establishedMinDays,
			},
		}
	case TierEstablished:
		return TierVerified, []Requirement{
			{
				Description: "Confirm you have met in person",
				Met:         r.HasMet,
			},
		}
	default:
		return "", nil
	}
}
