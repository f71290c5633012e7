package dto

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/handiism/visrec-datasets/internal/model"
	"gopkg.in/yaml.v3"
)

// File is the on-disk format of a user preset file, in JSON or YAML.
//
//	{
//	  "presets": [
//	    {"name": "wine", "kind": "tabular", "url": "https://example.com/wine.csv",
//	     "delimiter": ";", "inputs": 11, "outputs": 1, "has_header": true},
//	    {"name": "fashion-testing", "kind": "archive", "url": "https://example.com/f.zip",
//	     "family": "fashion", "split": "testing"}
//	  ]
//	}
type File struct {
	Presets []Preset `json:"presets" yaml:"presets"`
}

// Preset is one preset entry.
type Preset struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Kind        Kind   `json:"kind" yaml:"kind"`
	URL         string `json:"url" yaml:"url"`
	Delimiter   string `json:"delimiter" yaml:"delimiter"`
	Inputs      int    `json:"inputs" yaml:"inputs"`
	Outputs     int    `json:"outputs" yaml:"outputs"`
	HasHeader   bool   `json:"has_header" yaml:"has_header"`
	Family      string `json:"family" yaml:"family"`
	Split       string `json:"split" yaml:"split"`
}

// Kind accepts "tabular" and "archive". An empty kind means tabular.
type Kind struct {
	model.PresetKind
}

func (k *Kind) parse(s string) error {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "tabular", "csv":
		k.PresetKind = model.KindTabular
	case "archive", "zip":
		k.PresetKind = model.KindArchive
	default:
		return fmt.Errorf("unknown preset kind: %s", s)
	}
	return nil
}

// UnmarshalJSON parses the kind name.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return k.parse(s)
}

// UnmarshalYAML parses the kind name.
func (k *Kind) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return k.parse(s)
}

// MarshalJSON writes the kind name.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.PresetKind.String())
}

// ToPreset converts a Preset entry to a model.Preset. A missing delimiter
// defaults to a comma.
func (p *Preset) ToPreset() model.Preset {
	delimiter := p.Delimiter
	if delimiter == "" {
		delimiter = ","
	}
	return model.Preset{
		Name:        p.Name,
		Description: p.Description,
		Kind:        p.Kind.PresetKind,
		URL:         p.URL,
		Spec: model.DatasetSpec{
			Delimiter: delimiter,
			Inputs:    p.Inputs,
			Outputs:   p.Outputs,
			HasHeader: p.HasHeader,
		},
		Family: p.Family,
		Split:  p.Split,
	}
}
