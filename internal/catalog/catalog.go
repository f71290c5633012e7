package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/handiism/visrec-datasets/internal/http"
	"github.com/handiism/visrec-datasets/internal/model"
	"github.com/iancoleman/strcase"
)

// ErrUnknownPreset is returned when a name is not in the catalog.
var ErrUnknownPreset = errors.New("unknown dataset preset")

// ErrNoPresetSelected is returned by Resolve when the input names nothing.
var ErrNoPresetSelected = errors.New("no dataset preset selected")

const datasetsBaseURL = "https://raw.githubusercontent.com/JavaVisRec/jsr381-examples-datasets/master/"

const archivesBaseURL = "https://github.com/JavaVisRec/jsr381-examples-datasets/raw/master/"

// Builtin returns the presets shipped with the tool.
func Builtin() []model.Preset {
	return []model.Preset{
		{
			Name:        "sonar",
			Description: "Sonar returns, rocks vs. mines (60 inputs, 1 output)",
			Kind:        model.KindTabular,
			URL:         datasetsBaseURL + "sonar.csv",
			Spec:        model.DatasetSpec{Delimiter: ",", Inputs: 60, Outputs: 1},
		},
		{
			Name:        "iris",
			Description: "Iris flowers, normalised (4 inputs, 3 outputs)",
			Kind:        model.KindTabular,
			URL:         datasetsBaseURL + "iris_data_normalised.txt",
			Spec:        model.DatasetSpec{Delimiter: ",", Inputs: 4, Outputs: 3, HasHeader: true},
		},
		{
			Name:        "swedish-auto-insurance",
			Description: "Swedish auto insurance claims (1 input, 1 output)",
			Kind:        model.KindTabular,
			URL:         datasetsBaseURL + "SwedenAutoInsurance.csv",
			Spec:        model.DatasetSpec{Delimiter: ",", Inputs: 1, Outputs: 1},
		},
		{
			Name:        "mnist-training",
			Description: "MNIST handwritten digits, training split (PNG)",
			Kind:        model.KindArchive,
			URL:         archivesBaseURL + "mnist_training_data_png.zip",
			Family:      "mnist",
			Split:       "training",
		},
		{
			Name:        "mnist-testing",
			Description: "MNIST handwritten digits, testing split (PNG)",
			Kind:        model.KindArchive,
			URL:         archivesBaseURL + "mnist_testing_data_png.zip",
			Family:      "mnist",
			Split:       "testing",
		},
	}
}

// Catalog is an immutable set of presets addressable by name.
//
// Example usage:
//
//	cat := catalog.Default()
//	presets, err := cat.Resolve("iris, mnist-testing")
//	for _, p := range presets {
//	    fmt.Println(p.Name, p.Kind)
//	}
type Catalog struct {
	presets []model.Preset
	byName  map[string]int
}

// Default returns a catalog of the builtin presets.
func Default() *Catalog {
	c, err := New(Builtin()...)
	if err != nil {
		panic(fmt.Sprintf("builtin presets are invalid: %v", err))
	}
	return c
}

// New creates a catalog. Later presets replace earlier ones with the same
// name, which lets user presets override builtin ones.
func New(presets ...model.Preset) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]int)}
	for _, p := range presets {
		if err := Validate(p); err != nil {
			return nil, err
		}
		key := normalize(p.Name)
		if i, ok := c.byName[key]; ok {
			c.presets[i] = p
			continue
		}
		c.byName[key] = len(c.presets)
		c.presets = append(c.presets, p)
	}
	return c, nil
}

// Validate checks that a preset can be materialized.
func Validate(p model.Preset) error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("preset has no name")
	}
	if strings.ContainsAny(p.Name, ", \t\n") {
		return fmt.Errorf("preset %q: name must not contain separators", p.Name)
	}
	if _, err := http.ValidateURL(p.URL); err != nil {
		return fmt.Errorf("preset %q: %w", p.Name, err)
	}
	switch p.Kind {
	case model.KindTabular:
		if err := p.Spec.Validate(); err != nil {
			return fmt.Errorf("preset %q: %w", p.Name, err)
		}
	case model.KindArchive:
		if p.Family == "" || p.Split == "" {
			return fmt.Errorf("preset %q: archive presets need a family and a split", p.Name)
		}
	default:
		return fmt.Errorf("preset %q: unknown kind %d", p.Name, p.Kind)
	}
	return nil
}

// Lookup returns the preset with the given name. Case and word separators
// are ignored, so "Swedish_Auto_Insurance" finds swedish-auto-insurance.
func (c *Catalog) Lookup(name string) (model.Preset, error) {
	i, ok := c.byName[normalize(name)]
	if !ok {
		return model.Preset{}, fmt.Errorf("%w: %q (available: %s)", ErrUnknownPreset, name, strings.Join(c.Names(), ", "))
	}
	return c.presets[i], nil
}

func normalize(name string) string {
	return strcase.ToKebab(strings.TrimSpace(name))
}

// Presets returns all presets in declaration order.
func (c *Catalog) Presets() []model.Preset {
	return append([]model.Preset(nil), c.presets...)
}

// Names returns the sorted preset names.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.presets))
	for _, p := range c.presets {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names
}

// Resolve turns a list of names separated by commas, whitespace or newlines
// into presets. Duplicates are dropped, first occurrence wins.
func (c *Catalog) Resolve(input string) ([]model.Preset, error) {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})

	seen := make(map[string]bool)
	var presets []model.Preset
	for _, name := range fields {
		p, err := c.Lookup(name)
		if err != nil {
			return nil, err
		}
		if seen[p.Name] {
			continue
		}
		seen[p.Name] = true
		presets = append(presets, p)
	}

	if len(presets) == 0 {
		return nil, ErrNoPresetSelected
	}
	return presets, nil
}
