// Package convert turns tabular restaurant rows into region-tagged records.
package convert

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/restaurant-cli/internal/model"
	"github.com/sells-group/restaurant-cli/internal/region"
)

// columnAliases lists accepted header names per field, matched case-insensitively.
var columnAliases = map[string][]string{
	"name":         {"name", "상호명", "가게명"},
	"category":     {"category", "카테고리"},
	"address":      {"address", "주소"},
	"latitude":     {"latitude", "lat", "위도"},
	"longitude":    {"longitude", "lng", "lon", "경도"},
	"description":  {"description", "설명"},
	"tags":         {"tags", "태그"},
	"image_url":    {"image_url", "image"},
	"review_count": {"total_review_count", "review_count", "리뷰수"},
	"price_range":  {"price_range", "가격대"},
	"convenience":  {"convenience", "편의시설"},
}

// Stats summarizes one conversion.
type Stats struct {
	Rows       int            `json:"rows"`
	Converted  int            `json:"converted"`
	Skipped    int            `json:"skipped"`
	Duplicates int            `json:"duplicates"`
	ByRegion   map[string]int `json:"by_region"`
}

// Add merges o into s.
func (s *Stats) Add(o Stats) {
	s.Rows += o.Rows
	s.Converted += o.Converted
	s.Skipped += o.Skipped
	s.Duplicates += o.Duplicates
	if s.ByRegion == nil {
		s.ByRegion = make(map[string]int, len(o.ByRegion))
	}
	for k, v := range o.ByRegion {
		s.ByRegion[k] += v
	}
}

// Converter maps rows to restaurants and tags each with a region.
type Converter struct {
	classifier *region.Classifier
	seen       map[string]bool
}

// NewConverter returns a Converter. A nil classifier uses the default Seoul table.
func NewConverter(classifier *region.Classifier) *Converter {
	if classifier == nil {
		classifier = region.Default()
	}
	return &Converter{classifier: classifier, seen: make(map[string]bool)}
}

// Convert maps rows under header to restaurants. Rows without a name are
// skipped; a repeated name and address, including one seen by an earlier
// call on the same Converter, is dropped.
func (c *Converter) Convert(ctx context.Context, header []string, rows [][]string) ([]model.Restaurant, Stats, error) {
	stats := Stats{ByRegion: make(map[string]int)}

	colIdx := indexHeader(header)
	if _, ok := colIdx["address"]; !ok {
		return nil, stats, eris.Errorf("convert: missing required column %q", "address")
	}
	if _, ok := colIdx["name"]; !ok {
		return nil, stats, eris.Errorf("convert: missing required column %q", "name")
	}

	out := make([]model.Restaurant, 0, len(rows))
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, stats, eris.Wrap(err, "convert: context cancelled")
		}
		stats.Rows++

		r := c.toRestaurant(row, colIdx, i)
		if r.Name == "" {
			stats.Skipped++
			continue
		}

		key := r.Key()
		if c.seen[key] {
			stats.Duplicates++
			continue
		}
		c.seen[key] = true

		stats.Converted++
		stats.ByRegion[r.Region]++
		out = append(out, r)
	}

	return out, stats, nil
}

func (c *Converter) toRestaurant(row []string, colIdx map[string]int, line int) model.Restaurant {
	address := getCol(row, colIdx, "address")
	return model.Restaurant{
		Name:        getCol(row, colIdx, "name"),
		Category:    getCol(row, colIdx, "category"),
		Address:     address,
		Latitude:    parseFloat(getCol(row, colIdx, "latitude"), "latitude", line),
		Longitude:   parseFloat(getCol(row, colIdx, "longitude"), "longitude", line),
		Description: getCol(row, colIdx, "description"),
		Tags:        getCol(row, colIdx, "tags"),
		ImageURL:    getCol(row, colIdx, "image_url"),
		ReviewCount: parseCount(getCol(row, colIdx, "review_count"), line),
		Region:      c.classifier.Classify(address),
		PriceRange:  getCol(row, colIdx, "price_range"),
		Convenience: getCol(row, colIdx, "convenience"),
	}
}

// indexHeader resolves each known field to its column position. The first
// matching column wins.
func indexHeader(header []string) map[string]int {
	byName := make(map[string]int, len(header))
	for i, col := range header {
		key := strings.ToLower(strings.TrimSpace(col))
		if _, dup := byName[key]; !dup {
			byName[key] = i
		}
	}

	colIdx := make(map[string]int, len(columnAliases))
	for field, aliases := range columnAliases {
		for _, alias := range aliases {
			if i, ok := byName[alias]; ok {
				colIdx[field] = i
				break
			}
		}
	}
	return colIdx
}

// getCol safely retrieves a column value from a row.
func getCol(row []string, colIdx map[string]int, col string) string {
	idx, ok := colIdx[col]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseFloat returns 0 for blank, malformed or non-finite values.
func parseFloat(s, field string, line int) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		zap.L().Debug("convert: invalid number",
			zap.String("field", field),
			zap.Int("row", line+1),
			zap.String("value", s),
		)
		return 0
	}
	return v
}

// parseCount accepts thousands separators and truncates decimals. Negative,
// non-finite or out of range counts become 0.
func parseCount(s string, line int) int {
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 && v <= math.MaxInt32 {
		return v
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || f < 0 || f > math.MaxInt32 {
		zap.L().Debug("convert: invalid review count",
			zap.Int("row", line+1),
			zap.String("value", s),
		)
		return 0
	}
	return int(f)
}
