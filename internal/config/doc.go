// Package config provides configuration management for visrec-datasets.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - Conversion to model.PathConfig and http client options
//   - Logger setup
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Archives are staged under os.TempDir()/visrec-datasets/{family}/{split}
//	// Two presets are fetched concurrently
//	// Transient failures are retried three times
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/settings.json")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// # Saving Settings
//
//	settings.TempBasePath = "/data/scratch"
//	err := settings.Save("/path/to/settings.json")
//
// # Logging
//
// SetupLogger fans records out to a text handler on stderr and a JSON
// handler on the configured log file:
//
//	level, _ := config.ParseLogLevel(settings.LogLevel)
//	logger, cleanup := config.SetupLogger(settings.LogFile, level)
//	defer cleanup()
package config
