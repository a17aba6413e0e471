// Package catalog answers queries over a converted restaurant list.
package catalog

import (
	"math"
	"sort"
	"strings"

	"github.com/sells-group/restaurant-cli/internal/model"
)

// DefaultNearestLimit is the result count used when NearestOptions.Limit is unset.
const DefaultNearestLimit = 4

// Catalog is an immutable, read-only view over restaurants. It is safe for
// concurrent use.
type Catalog struct {
	items []model.Restaurant
}

// New copies items into a Catalog.
func New(items []model.Restaurant) *Catalog {
	c := make([]model.Restaurant, len(items))
	copy(c, items)
	return &Catalog{items: c}
}

// Len returns the number of restaurants.
func (c *Catalog) Len() int { return len(c.items) }

func (c *Catalog) filter(keep func(model.Restaurant) bool) []model.Restaurant {
	var out []model.Restaurant
	for _, r := range c.items {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func contains(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// SearchOptions narrows Search. Empty fields are ignored.
type SearchOptions struct {
	Region   string `json:"region,omitempty"`
	Category string `json:"category,omitempty"`
	Purpose  string `json:"purpose,omitempty"`
	Keyword  string `json:"keyword,omitempty"`
}

// Search applies every set option and sorts by review count, most first.
func (c *Catalog) Search(opts SearchOptions) []model.Restaurant {
	reg := strings.ToLower(strings.TrimSpace(opts.Region))
	cat := strings.ToLower(strings.TrimSpace(opts.Category))

	results := c.filter(func(r model.Restaurant) bool {
		if reg != "" && !matchRegion(r, reg) {
			return false
		}
		if cat != "" {
			rc := strings.ToLower(r.Category)
			if !strings.Contains(rc, cat) && !strings.Contains(cat, rc) {
				return false
			}
		}
		if opts.Purpose != "" && !contains(r.Tags, opts.Purpose) {
			return false
		}
		if opts.Keyword != "" && !matchKeyword(r, opts.Keyword) {
			return false
		}
		return true
	})

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].ReviewCount > results[j].ReviewCount
	})
	return results
}

// matchRegion accepts equal labels, containment either way, or an address hit.
func matchRegion(r model.Restaurant, q string) bool {
	rr := strings.ToLower(r.Region)
	return rr == q ||
		strings.Contains(rr, q) ||
		(rr != "" && strings.Contains(q, rr)) ||
		strings.Contains(strings.ToLower(r.Address), q)
}

func matchKeyword(r model.Restaurant, kw string) bool {
	return contains(r.Name, kw) ||
		contains(r.Category, kw) ||
		contains(r.Description, kw) ||
		contains(r.Tags, kw)
}

// NearestOptions narrows Nearest.
type NearestOptions struct {
	Category string
	Purpose  string
	Limit    int // default DefaultNearestLimit
}

// Ranked is a restaurant with its distance from the query point.
type Ranked struct {
	model.Restaurant
	DistanceKM float64 `json:"distance_km"`
}

// Nearest returns restaurants closest to (lat, lng) by great-circle distance.
func (c *Catalog) Nearest(lat, lng float64, opts NearestOptions) []Ranked {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultNearestLimit
	}

	var out []Ranked
	for _, r := range c.items {
		if opts.Category != "" && !contains(r.Category, opts.Category) {
			continue
		}
		if opts.Purpose != "" && !contains(r.Tags, opts.Purpose) {
			continue
		}
		out = append(out, Ranked{
			Restaurant: r,
			DistanceKM: HaversineKM(lat, lng, r.Latitude, r.Longitude),
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKM < out[j].DistanceKM })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// HaversineKM returns the great-circle distance between two points in kilometers.
func HaversineKM(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusKM = 6371.0
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Regions lists distinct region labels in first-appearance order.
func (c *Catalog) Regions() []string {
	return c.distinct(func(r model.Restaurant) string { return r.Region })
}

// Categories lists distinct categories in first-appearance order.
func (c *Catalog) Categories() []string {
	return c.distinct(func(r model.Restaurant) string { return r.Category })
}

func (c *Catalog) distinct(field func(model.Restaurant) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range c.items {
		v := field(r)
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// FindByName prefers an exact case-insensitive match, then a partial one.
func (c *Catalog) FindByName(name string) (model.Restaurant, bool) {
	q := strings.ToLower(strings.TrimSpace(name))
	if q == "" {
		return model.Restaurant{}, false
	}
	for _, r := range c.items {
		if strings.ToLower(r.Name) == q {
			return r, true
		}
	}
	for _, r := range c.items {
		n := strings.ToLower(r.Name)
		if n == "" {
			continue
		}
		if strings.Contains(n, q) || strings.Contains(q, n) {
			return r, true
		}
	}
	return model.Restaurant{}, false
}

// TagCount is one purpose tag and the number of restaurants carrying it.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Tags counts hashtags across the catalog, most common first and ties by
// name. A tag is counted once per restaurant.
func (c *Catalog) Tags() []TagCount {
	counts := make(map[string]int)
	for _, r := range c.items {
		seen := make(map[string]bool)
		for _, t := range model.TagList(r.Tags) {
			if !seen[t] {
				seen[t] = true
				counts[t]++
			}
		}
	}

	out := make([]TagCount, 0, len(counts))
	for t, n := range counts {
		out = append(out, TagCount{Tag: t, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}
