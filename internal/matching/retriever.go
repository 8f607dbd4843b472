package matching

import (
	"context"
	"math"
	"sort"
	"time"
)

const (
	// defaultMaxDistanceKm applies when the seeker never set a distance
	// preference.
	defaultMaxDistanceKm = 50.0

	// defaultPoolSize bounds the candidate set handed to scoring so
	// downstream cost stays predictable.
	defaultPoolSize = 500

	// onlineWindow is how recently a candidate must have been seen to
	// count as online.
	onlineWindow = 30 * time.Minute

	// newUserWindow marks accounts considered new for the new-users filter
	// and the re-rank boost.
	newUserWindow = 7 * 24 * time.Hour

	earthRadiusKm = 6371.0
)

// Candidate pairs a retrieved profile with its great-circle distance from
// the seeker. DistanceKm is negative when either side lacks coordinates.
type Candidate struct {
	Profile    *Profile
	DistanceKm float64
}

// Retriever fetches the eligible candidate pool for a seeker. Pure read;
// retrieval failures surface as errors for the service to swallow.
type Retriever struct {
	repo     Repository
	poolSize int
	now      func() time.Time
}

func NewRetriever(repo Repository, poolSize int) *Retriever {
	if poolSize <= 0 {
		poolSize = defaultPoolSize
	}
	return &Retriever{repo: repo, poolSize: poolSize, now: time.Now}
}

// Candidates returns at most poolSize eligible candidates ordered by
// ascending distance, unknown-location profiles last. Seekers without
// coordinates skip the bounding box and distance cut entirely.
func (r *Retriever) Candidates(ctx context.Context, seeker *Profile, filters FilterSet) ([]Candidate, error) {
	maxDistance := filters.MaxDistanceKm
	if maxDistance <= 0 {
		maxDistance = seeker.MaxDistanceKm
	}
	if maxDistance <= 0 {
		maxDistance = defaultMaxDistanceKm
	}

	query := CandidateQuery{
		SeekerID: seeker.ID,
		MinAge:   filters.MinAge,
		MaxAge:   filters.MaxAge,
		Limit:    r.poolSize,
	}
	if seeker.HasCoordinates() {
		query.Bounds = boundingBox(*seeker.Latitude, *seeker.Longitude, maxDistance)
	}
	if filters.OnlineOnly {
		since := r.now().Add(-onlineWindow)
		query.SeenSince = &since
	}
	if filters.NewUsersOnly {
		since := r.now().Add(-newUserWindow)
		query.CreatedSince = &since
	}

	profiles, err := r.repo.FindCandidates(ctx, query)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(profiles))
	for _, p := range profiles {
		distance := -1.0
		if seeker.HasCoordinates() && p.HasCoordinates() {
			distance = haversineKm(*seeker.Latitude, *seeker.Longitude, *p.Latitude, *p.Longitude)
			// Bounding box corners can exceed the radius; cut precisely here.
			if distance > maxDistance {
				continue
			}
		}
		candidates = append(candidates, Candidate{Profile: p, DistanceKm: distance})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		di, dj := candidates[i].DistanceKm, candidates[j].DistanceKm
		if di < 0 {
			return false
		}
		if dj < 0 {
			return true
		}
		return di < dj
	})

	if len(candidates) > r.poolSize {
		candidates = candidates[:r.poolSize]
	}
	return candidates, nil
}

// GeoBounds is the SQL prefilter box around the seeker.
type GeoBounds struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// boundingBox computes the lat/lon box containing the radius around the
// point. The box over-selects near the corners; the exact haversine pass
// trims those.
func boundingBox(lat, lon, radiusKm float64) *GeoBounds {
	latDelta := radiusKm / earthRadiusKm * (180 / math.Pi)
	lonDelta := latDelta / math.Cos(lat*math.Pi/180)
	return &GeoBounds{
		MinLat: lat - latDelta,
		MaxLat: lat + latDelta,
		MinLon: lon - lonDelta,
		MaxLon: lon + lonDelta,
	}
}

// haversineKm is the great-circle distance between two coordinates.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func isNewAccount(p *Profile, now time.Time) bool {
	return now.Sub(p.CreatedAt) < newUserWindow
}
