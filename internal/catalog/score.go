package catalog

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/restaurant-cli/internal/model"
)

// Scoring constants.
const (
	maxReviewCount     = 50000.0 // review count that earns full popularity
	maxPopularityScore = 50.0
	maxEqualityScore   = 50.0
	zeroEqualityStdDev = 30.0 // minutes of spread at which equality reaches 0
)

// Score breaks down a restaurant's recommendation score for a group.
type Score struct {
	Total        float64 `json:"total_score"`
	Popularity   int     `json:"popularity_score"`
	Equality     int     `json:"equality_score"`
	AvgTravelMin int     `json:"avg_travel_time"`
	TravelSpread int     `json:"travel_variance"`
}

// TravelTimeStdDev returns the population standard deviation of travel
// times in minutes. An empty list scores +Inf so it never looks fair.
func TravelTimeStdDev(times []float64) float64 {
	switch len(times) {
	case 0:
		return math.Inf(1)
	case 1:
		return 0
	}

	var sum float64
	for _, t := range times {
		sum += t
	}
	mean := sum / float64(len(times))

	var sq float64
	for _, t := range times {
		sq += (t - mean) * (t - mean)
	}
	return math.Sqrt(sq / float64(len(times)))
}

// ScoreFor rates a restaurant by popularity and by how evenly the group's
// travel times are spread.
//   - popularity: min(reviews/50000, 1) * 50
//   - equality: max(0, 50 - stddev/30 * 50)
func ScoreFor(r model.Restaurant, travelTimes []float64) Score {
	popularity := math.Min(float64(r.ReviewCount)/maxReviewCount, 1) * maxPopularityScore

	spread := TravelTimeStdDev(travelTimes)
	equality := math.Max(0, maxEqualityScore-(spread/zeroEqualityStdDev)*maxEqualityScore)

	var avg float64
	if len(travelTimes) > 0 {
		var sum float64
		for _, t := range travelTimes {
			sum += t
		}
		avg = sum / float64(len(travelTimes))
	}

	s := Score{
		Total:        popularity + equality,
		Popularity:   int(math.Round(popularity)),
		Equality:     int(math.Round(equality)),
		AvgTravelMin: int(math.Round(avg)),
	}
	if !math.IsInf(spread, 0) {
		s.TravelSpread = int(math.Round(spread))
	}
	return s
}

// Candidate is a restaurant with each group member's travel time to it.
type Candidate struct {
	model.Restaurant
	TravelTimes []float64 `json:"travel_times,omitempty"`
	Score       Score     `json:"score"`
}

// RankByScore scores candidates and orders them best first.
func RankByScore(candidates []Candidate) []Candidate {
	out := make([]Candidate, len(candidates))
	for i, c := range candidates {
		c.Score = ScoreFor(c.Restaurant, c.TravelTimes)
		out[i] = c
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score.Total > out[j].Score.Total })
	return out
}

// transitSpeedKMH is the average door-to-door public transit speed,
// waiting included, used to estimate travel time from distance.
const transitSpeedKMH = 30.0

// DefaultRecommendLimit is the result count used when RecommendOptions.Limit is unset.
const DefaultRecommendLimit = 10

// Point is a coordinate a group member travels from.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ParsePoint reads "lat,lng" and checks both are in range.
func ParsePoint(s string) (Point, error) {
	latRaw, lngRaw, ok := strings.Cut(s, ",")
	if !ok {
		return Point{}, eris.Errorf("catalog: point %q must be lat,lng", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latRaw), 64)
	if err != nil {
		return Point{}, eris.Wrapf(err, "catalog: point %q latitude", s)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngRaw), 64)
	if err != nil {
		return Point{}, eris.Wrapf(err, "catalog: point %q longitude", s)
	}
	if !(lat >= -90 && lat <= 90) || !(lng >= -180 && lng <= 180) {
		return Point{}, eris.Errorf("catalog: point %q out of range", s)
	}
	return Point{Lat: lat, Lng: lng}, nil
}

// EstimateTravelMinutes approximates transit time between two points from
// their great-circle distance, rounded to whole minutes.
func EstimateTravelMinutes(from, to Point) float64 {
	km := HaversineKM(from.Lat, from.Lng, to.Lat, to.Lng)
	return math.Round(km / transitSpeedKMH * 60)
}

// RecommendOptions narrows the candidates passed to RankByScore.
type RecommendOptions struct {
	SearchOptions
	Limit int // default DefaultRecommendLimit
}

// Recommend scores every located restaurant matching opts for a group
// starting at origins and returns the best first. Restaurants without
// coordinates cannot be timed and are left out.
func (c *Catalog) Recommend(origins []Point, opts RecommendOptions) []Candidate {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultRecommendLimit
	}

	var candidates []Candidate
	for _, r := range c.Search(opts.SearchOptions) {
		if !r.HasLocation() {
			continue
		}
		dest := Point{Lat: r.Latitude, Lng: r.Longitude}
		times := make([]float64, len(origins))
		for i, o := range origins {
			times[i] = EstimateTravelMinutes(o, dest)
		}
		candidates = append(candidates, Candidate{Restaurant: r, TravelTimes: times})
	}

	ranked := RankByScore(candidates)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
