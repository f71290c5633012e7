// Package catalog holds the named dataset presets.
//
// Presets are parameter tables: a URL plus either a model.DatasetSpec for
// tabular sources or a family/split pair for archives. The builtin presets
// are sonar, iris, swedish-auto-insurance, mnist-training and mnist-testing.
//
// # Selecting Presets
//
//	cat := catalog.Default()
//	presets, err := cat.Resolve("iris,mnist-testing")
//
// # User Presets
//
// LoadFile reads additional presets from a JSON or YAML file (see dto.File).
// A user preset with a builtin name replaces the builtin one.
package catalog
