package rules

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadCatalog reads an operator-supplied rules bundle from path (§6: an
// override path beside the embedded default), JSON-encoded in the same
// shape as Catalog's exported fields.
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules bundle: %w", err)
	}
	c := NewCatalog()
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("parse rules bundle: %w", err)
	}
	return c, nil
}
