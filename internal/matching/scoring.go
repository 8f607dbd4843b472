package matching

import (
	"math"
	"time"
)

// Credit per matched physical dimension, mirroring how strongly each
// attribute drives attraction in practice.
const (
	bodyCredit       = 20.0
	ethnicityCredit  = 15.0
	hairColorCredit  = 10.0
	hairLengthCredit = 10.0
)

// neutralScore is the documented default for any dimension the profiles
// don't give us enough information to judge.
const neutralScore = 50.0

// Ordinal rank maps for the personality sub-score.
var (
	looksRank = map[string]int{
		"ugly": 1, "plain": 2, "quirky": 3, "average": 4,
		"attractive": 5, "hottie": 6, "super_model": 7,
	}
	intelligenceRank = map[string]int{
		"good_hands": 1, "bit_slow": 2, "average": 3, "faster": 4, "genius": 5,
	}
	bedroomRank = map[string]int{
		"passive": 1, "shy": 2, "confident": 3, "aggressive": 4,
	}

	// Bonus per rank distance, decreasing non-linearly so a one-step gap
	// costs little and a full-spread gap costs nearly everything.
	rankDistanceBonus = []float64{25, 20, 13, 8, 5, 3, 1}
)

// lifestylePenalties escalate with the stakes of the conflict: a hidden
// relationship-style mismatch outweighs a smoking habit.
var lifestylePenalties = []struct {
	engages func(LifestyleFlags) bool
	penalty float64
}{
	{func(f LifestyleFlags) bool { return f.Smokes }, 15},
	{func(f LifestyleFlags) bool { return f.HeavyDrinker }, 10},
	{func(f LifestyleFlags) bool { return f.Marijuana }, 10},
	{func(f LifestyleFlags) bool { return f.OtherDrugs }, 15},
	{func(f LifestyleFlags) bool { return f.Poly }, 20},
	{func(f LifestyleFlags) bool { return f.MarriedDiscreet }, 20},
}

// Scorer computes compatibility scores for candidates that survived the
// dealbreaker filter. It is stateless apart from its weight set and safe
// for concurrent use across candidates.
type Scorer struct {
	weights WeightSet
	now     func() time.Time
}

func NewScorer(weights WeightSet) *Scorer {
	return &Scorer{weights: weights, now: time.Now}
}

// Score produces the candidate's weighted compatibility result. Missing
// profile fields never fail the computation; each affected dimension
// falls back to its neutral default.
func (s *Scorer) Score(seeker, candidate *Profile, distanceKm float64) CandidateResult {
	sub := map[string]float64{
		CategoryPhysical:    s.physicalScore(seeker, candidate),
		CategoryPersonality: s.personalityScore(seeker, candidate),
		CategorySexual:      s.sexualScore(seeker, candidate),
		CategoryLifestyle:   s.lifestyleScore(seeker, candidate),
		CategoryLocation:    s.locationScore(seeker, candidate, distanceKm),
		CategoryActivity:    s.activityScore(candidate),
	}

	total := sub[CategoryPhysical]*s.weights.Physical +
		sub[CategoryPersonality]*s.weights.Personality +
		sub[CategorySexual]*s.weights.Sexual +
		sub[CategoryLifestyle]*s.weights.Lifestyle +
		sub[CategoryLocation]*s.weights.Location +
		sub[CategoryActivity]*s.weights.Activity

	return CandidateResult{
		CandidateID: candidate.ID,
		Username:    candidate.Username,
		DisplayName: candidate.DisplayName,
		DistanceKm:  distanceKm,
		Score:       clampScore(total),
		SubScores:   sub,
	}
}

// physicalScore awards credit for each dimension the seeker expressed a
// preference in, scaled by stated strength (1-10) and normalized by the
// maximum credit across the dimensions actually specified. A seeker with
// no stated physical preferences gets the neutral midpoint, then the
// age-proximity term is blended in.
func (s *Scorer) physicalScore(seeker, candidate *Profile) float64 {
	earned, possible := 0.0, 0.0

	for bodyType, strength := range seeker.WantBody {
		if strength <= 0 {
			continue
		}
		possible += bodyCredit
		if candidate.Body == bodyType {
			earned += bodyCredit * float64(strength) / 10
		}
	}
	for ethnicity, strength := range seeker.WantEthnicity {
		if strength <= 0 {
			continue
		}
		possible += ethnicityCredit
		if candidate.Ethnicity == ethnicity {
			earned += ethnicityCredit * float64(strength) / 10
		}
	}
	for color, strength := range seeker.WantHairColor {
		if strength <= 0 {
			continue
		}
		possible += hairColorCredit
		if candidate.HairColor == color {
			earned += hairColorCredit * float64(strength) / 10
		}
	}
	for length, strength := range seeker.WantHairLength {
		if strength <= 0 {
			continue
		}
		possible += hairLengthCredit
		if candidate.HairLength == length {
			earned += hairLengthCredit * float64(strength) / 10
		}
	}

	prefScore := neutralScore
	if possible > 0 {
		prefScore = earned / possible * 100
	}

	return clampScore(prefScore*0.8 + ageProximityScore(seeker.Age, candidate.Age)*0.2)
}

// ageProximityScore is a monotonically decreasing step function of the
// absolute age difference.
func ageProximityScore(a, b int) float64 {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff <= 2:
		return 100
	case diff <= 5:
		return 80
	case diff <= 10:
		return 60
	case diff <= 15:
		return 40
	default:
		return 20
	}
}

// personalityScore starts from a neutral baseline and adds bonuses for
// close looks and intelligence self-ratings, plus a complementarity
// bonus when bedroom personalities sit on opposite sides of the midpoint.
func (s *Scorer) personalityScore(seeker, candidate *Profile) float64 {
	score := neutralScore

	score += rankBonus(looksRank, seeker.OverallLooks, candidate.OverallLooks, 4)
	score += rankBonus(intelligenceRank, seeker.Intelligence, candidate.Intelligence, 3)

	mine := ordinal(bedroomRank, seeker.BedroomPersonality, 3)
	theirs := ordinal(bedroomRank, candidate.BedroomPersonality, 3)
	if (mine <= 2 && theirs >= 3) || (mine >= 3 && theirs <= 2) {
		score += 15 // opposites complement
	} else if abs(mine-theirs) <= 1 {
		score += 5
	}

	return clampScore(score)
}

func rankBonus(ranks map[string]int, mine, theirs string, fallback int) float64 {
	diff := abs(ordinal(ranks, mine, fallback) - ordinal(ranks, theirs, fallback))
	if diff >= len(rankDistanceBonus) {
		diff = len(rankDistanceBonus) - 1
	}
	return rankDistanceBonus[diff]
}

func ordinal(ranks map[string]int, value string, fallback int) int {
	if r, ok := ranks[value]; ok {
		return r
	}
	return fallback
}

// sexualScore counts every act either party wants as relevant, awarding
// full credit on mutual interest and partial credit when only one side
// wants it, normalized by the relevant count. Mutual kinks from the
// high-intensity subset earn a small extra bonus.
func (s *Scorer) sexualScore(seeker, candidate *Profile) float64 {
	earned, relevant := 0.0, 0

	for _, act := range SexualActs {
		iWant := seeker.WantActs[act]
		theyWant := candidate.WantActs[act]
		if !iWant && !theyWant {
			continue
		}
		relevant++
		if iWant && theyWant {
			earned += 10
		} else {
			earned += 3
		}
	}
	if relevant == 0 {
		return neutralScore
	}

	score := earned / float64(relevant*10) * 100

	for _, kink := range KinkActs {
		if seeker.WantActs[kink] && candidate.WantActs[kink] {
			score += 5
		}
	}

	return clampScore(score)
}

// lifestyleScore subtracts an escalating penalty for each one-directional
// conflict: the seeker engages in a behavior the candidate has opted out
// of partners doing. The reverse direction lands when roles swap.
func (s *Scorer) lifestyleScore(seeker, candidate *Profile) float64 {
	score := neutralScore
	for _, rule := range lifestylePenalties {
		if rule.engages(seeker.Lifestyle) && rule.engages(candidate.RejectLifestyle) {
			score -= rule.penalty
		}
	}
	return clampScore(score)
}

// locationScore decays linearly from 100 at zero distance to exactly 0 at
// the seeker's max-distance preference, with boosts for very recent
// activity and a same-venue override. Unknown coordinates are neutral.
func (s *Scorer) locationScore(seeker, candidate *Profile, distanceKm float64) float64 {
	if distanceKm < 0 || !seeker.HasCoordinates() || !candidate.HasCoordinates() {
		return neutralScore
	}

	maxDistance := seeker.MaxDistanceKm
	if maxDistance <= 0 {
		maxDistance = defaultMaxDistanceKm
	}

	score := math.Max(0, 100-distanceKm/maxDistance*100)

	if sameVenue(seeker, candidate) {
		score = 100
	}

	hoursSinceActive := s.now().Sub(candidate.LastSeen).Hours()
	if hoursSinceActive < 1 {
		score += 20
	} else if hoursSinceActive < 24 {
		score += 10
	}

	return clampScore(score)
}

func sameVenue(a, b *Profile) bool {
	return a.CurrentVenueID != nil && b.CurrentVenueID != nil && *a.CurrentVenueID == *b.CurrentVenueID
}

// activityScore blends profile completeness with a recency-of-activity
// decay on top of a neutral baseline.
func (s *Scorer) activityScore(candidate *Profile) float64 {
	score := neutralScore

	completed, fields := 0, 6
	if candidate.Bio != "" {
		completed++
	}
	if candidate.PrivateBio != "" {
		completed++
	}
	if candidate.AvatarURL != "" {
		completed++
	}
	if candidate.Body != "" {
		completed++
	}
	if candidate.Ethnicity != "" {
		completed++
	}
	if candidate.HairColor != "" {
		completed++
	}
	score += float64(completed) / float64(fields) * 30

	daysSinceActive := s.now().Sub(candidate.LastSeen).Hours() / 24
	switch {
	case daysSinceActive < 1:
		score += 20
	case daysSinceActive < 7:
		score += 10
	case daysSinceActive < 30:
		score += 5
	}

	return clampScore(score)
}

func clampScore(v float64) float64 {
	return math.Min(100, math.Max(0, v))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
