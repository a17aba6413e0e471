// Package region maps free-text addresses to coarse neighborhood labels.
package region

import "strings"

// Fallback is returned when no district in the mapping matches an address.
const Fallback = "기타"

// Rule pairs a district pattern with the region label it maps to.
type Rule struct {
	District string `yaml:"district" json:"district"`
	Region   string `yaml:"region" json:"region"`
}

// Mapping is an ordered list of rules. When an address contains more than
// one district, the earliest rule wins.
type Mapping []Rule

var seoul = Mapping{
	{District: "강남구", Region: "강남"},
	{District: "서초구", Region: "강남"},
	{District: "마포구", Region: "홍대/연남"},
	{District: "성동구", Region: "성수"},
	{District: "종로구", Region: "종로/을지로"},
	{District: "중구", Region: "종로/을지로"},
	{District: "용산구", Region: "이태원/한남"},
	{District: "송파구", Region: "잠실/송리단길"},
	{District: "영등포구", Region: "여의도"},
	{District: "서대문구", Region: "신촌"},
	{District: "광진구", Region: "건대/광진"},
}

// DefaultMapping returns a copy of the built-in Seoul district table.
func DefaultMapping() Mapping {
	m := make(Mapping, len(seoul))
	copy(m, seoul)
	return m
}

// Classify returns the region of the first rule whose district occurs in
// address, or Fallback if none does.
func Classify(address string, mapping Mapping) string {
	return classify(address, mapping, Fallback)
}

func classify(address string, mapping Mapping, fallback string) string {
	for _, r := range mapping {
		if strings.Contains(address, r.District) {
			return r.Region
		}
	}
	return fallback
}

// Regions lists the distinct region labels in first-appearance order.
func (m Mapping) Regions() []string {
	seen := make(map[string]bool, len(m))
	var out []string
	for _, r := range m {
		if seen[r.Region] {
			continue
		}
		seen[r.Region] = true
		out = append(out, r.Region)
	}
	return out
}

// Classifier binds a mapping to a fallback label.
type Classifier struct {
	mapping  Mapping
	fallback string
}

// NewClassifier copies mapping so later changes by the caller are not seen.
// An empty fallback means Fallback.
func NewClassifier(mapping Mapping, fallback string) *Classifier {
	if fallback == "" {
		fallback = Fallback
	}
	m := make(Mapping, len(mapping))
	copy(m, mapping)
	return &Classifier{mapping: m, fallback: fallback}
}

// Default returns a classifier over DefaultMapping.
func Default() *Classifier {
	return NewClassifier(seoul, Fallback)
}

// Classify returns the region for address.
func (c *Classifier) Classify(address string) string {
	return classify(address, c.mapping, c.fallback)
}

// Mapping returns a copy of the classifier's rules.
func (c *Classifier) Mapping() Mapping {
	m := make(Mapping, len(c.mapping))
	copy(m, c.mapping)
	return m
}

// Fallback returns the label used when nothing matches.
func (c *Classifier) Fallback() string {
	return c.fallback
}

// Regions lists every label the classifier can return, fallback last.
func (c *Classifier) Regions() []string {
	out := c.mapping.Regions()
	for _, r := range out {
		if r == c.fallback {
			return out
		}
	}
	return append(out, c.fallback)
}
