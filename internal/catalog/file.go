package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/handiism/visrec-datasets/internal/catalog/dto"
	"gopkg.in/yaml.v3"
)

// LoadFile reads user presets from a JSON or YAML file (chosen by the
// .yaml/.yml extension) and returns a catalog of the builtin presets
// extended, or overridden, by them.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file dto.File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &file)
	default:
		err = json.Unmarshal(data, &file)
	}
	if err != nil {
		return nil, fmt.Errorf("parse preset file %s: %w", path, err)
	}

	presets := Builtin()
	for _, p := range file.Presets {
		presets = append(presets, p.ToPreset())
	}

	c, err := New(presets...)
	if err != nil {
		return nil, fmt.Errorf("preset file %s: %w", path, err)
	}
	return c, nil
}
