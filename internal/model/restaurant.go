// Package model defines the records produced by the converter.
package model

import "strings"

// Restaurant is one converted restaurant record.
type Restaurant struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Address     string  `json:"address"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Description string  `json:"description"`
	Tags        string  `json:"tags"`
	ImageURL    string  `json:"image_url"`
	ReviewCount int     `json:"review_count"`
	Region      string  `json:"region"`
	PriceRange  string  `json:"price_range,omitempty"`
	Convenience string  `json:"convenience,omitempty"`
}

// Key identifies a restaurant across inputs. Two rows with the same name
// and address are the same restaurant.
func (r Restaurant) Key() string {
	return strings.TrimSpace(r.Name) + "\x00" + strings.TrimSpace(r.Address)
}

// HasLocation reports whether the record carries coordinates.
func (r Restaurant) HasLocation() bool {
	return r.Latitude != 0 || r.Longitude != 0
}

// TagList splits a hashtag string such as "#데이트 #모임" into its tags,
// without the leading '#'.
func TagList(s string) []string {
	var out []string
	for _, f := range strings.Fields(s) {
		f = strings.TrimLeft(f, "#")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
