package region

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// File is the on-disk shape of a mapping file.
type File struct {
	Fallback  string `yaml:"fallback"`
	Districts []Rule `yaml:"districts"`
}

// LoadMapping reads an ordered district mapping from a YAML file.
func LoadMapping(path string) (*Classifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "region: read mapping %s", path)
	}
	return ParseMapping(data)
}

// ParseMapping decodes a YAML mapping document.
func ParseMapping(data []byte) (*Classifier, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "region: parse mapping")
	}
	if len(f.Districts) == 0 {
		return nil, eris.New("region: mapping has no districts")
	}

	for i, r := range f.Districts {
		r.District = strings.TrimSpace(r.District)
		r.Region = strings.TrimSpace(r.Region)
		if r.District == "" {
			return nil, eris.Errorf("region: rule %d has empty district", i)
		}
		if r.Region == "" {
			return nil, eris.Errorf("region: rule %d (%s) has empty region", i, r.District)
		}
		f.Districts[i] = r
	}

	return NewClassifier(f.Districts, strings.TrimSpace(f.Fallback)), nil
}
