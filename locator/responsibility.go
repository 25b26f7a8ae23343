package locator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// ResponsibilityMap is the static category to authority table served as-is.
type ResponsibilityMap map[string]json.RawMessage

// LoadResponsibilityMap reads the authority table. A missing file yields
// an empty map.
func LoadResponsibilityMap(path string) (ResponsibilityMap, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return ResponsibilityMap{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	m := ResponsibilityMap{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return m, nil
}
