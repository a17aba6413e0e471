package convert

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"

	"github.com/sells-group/restaurant-cli/internal/model"
)

// WriteJSON writes records as an indented JSON array. A nil slice is
// written as [].
func WriteJSON(w io.Writer, records []model.Restaurant) error {
	if records == nil {
		records = []model.Restaurant{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		return eris.Wrap(err, "convert: encode json")
	}
	return nil
}

// WriteJSONFile writes records to path, or to stdout when path is empty.
func WriteJSONFile(path string, records []model.Restaurant) error {
	if path == "" {
		return WriteJSON(os.Stdout, records)
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "convert: create output file")
	}
	if err := WriteJSON(f, records); err != nil {
		f.Close() //nolint:errcheck
		return err
	}
	return eris.Wrap(f.Close(), "convert: close output file")
}

// LoadJSON reads records previously written by WriteJSON.
func LoadJSON(path string) ([]model.Restaurant, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "convert: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	var records []model.Restaurant
	if err := json.NewDecoder(f).Decode(&records); err != nil {
		return nil, eris.Wrapf(err, "convert: decode %s", path)
	}
	return records, nil
}
