package model

import (
	"path/filepath"
	"regexp"
	"strings"
)

// PresetKind selects the pipeline that materializes a preset.
type PresetKind int

const (
	// KindTabular presets are fetched and parsed into a Dataset.
	KindTabular PresetKind = iota

	// KindArchive presets are downloaded and extracted into a directory.
	KindArchive
)

func (k PresetKind) String() string {
	if k == KindArchive {
		return "archive"
	}
	return "tabular"
}

// Preset is a named, ready-to-use dataset source.
//
// Tabular presets carry a DatasetSpec; archive presets carry the family and
// split used to compute their staging directory.
//
// Example:
//
//	iris := model.Preset{
//	    Name: "iris",
//	    Kind: model.KindTabular,
//	    URL:  "https://example.com/iris.csv",
//	    Spec: model.DatasetSpec{Delimiter: ",", Inputs: 4, Outputs: 3, HasHeader: true},
//	}
type Preset struct {
	// Name identifies the preset on the command line.
	Name string

	// Description is a short human readable summary.
	Description string

	// Kind selects loading or staging.
	Kind PresetKind

	// URL is the remote resource.
	URL string

	// Spec describes the tabular format. Unused for archives.
	Spec DatasetSpec

	// Family groups related archive presets, e.g. "mnist".
	Family string

	// Split names one part of a family, e.g. "training".
	Split string
}

// PathConfig holds the staging path template for archive presets.
//
// StagingPath supports the placeholders:
//   - {base} - the injected temporary storage base path
//   - {family} - the preset family
//   - {split} - the preset split
type PathConfig struct {
	// BasePath replaces {base}. It is never looked up from the environment here.
	BasePath string

	// StagingPath is the directory template.
	// Example: "{base}/visrec-datasets/{family}/{split}"
	StagingPath string
}

// DefaultStagingPath is the layout used when no template is configured.
const DefaultStagingPath = "{base}/visrec-datasets/{family}/{split}"

// StagingDir computes the directory an archive preset is extracted into.
//
// Family and split values are sanitized so they always form exactly one
// path segment each.
func (p Preset) StagingDir(cfg *PathConfig) string {
	tmpl := cfg.StagingPath
	if tmpl == "" {
		tmpl = DefaultStagingPath
	}

	path := filepath.FromSlash(tmpl)
	path = strings.ReplaceAll(path, "{family}", sanitizeFileName(p.Family))
	path = strings.ReplaceAll(path, "{split}", sanitizeFileName(p.Split))
	path = strings.ReplaceAll(path, "{base}", cfg.BasePath)

	return filepath.Clean(path)
}

// sanitizeFileName removes or replaces characters that are invalid in file/folder names.
//
// The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control chars) are replaced with underscore
//   - Trailing dots are removed (Windows limitation, also rules out "..")
//   - Multiple whitespace is collapsed to single space
//   - Trailing whitespace is removed
//
// Example:
//
//	sanitizeFileName("mnist/../x") // Returns "mnist_.._x"
func sanitizeFileName(name string) string {
	name = invalidChars.ReplaceAllString(name, "_")
	name = trailingDots.ReplaceAllString(name, "")
	name = whitespace.ReplaceAllString(name, " ")
	name = strings.TrimRight(name, " ")
	if name == "" {
		return "_"
	}
	return name
}

var (
	invalidChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots = regexp.MustCompile(`\.+$`)
	whitespace   = regexp.MustCompile(`\s+`)
)
