// Package download orchestrates fetching a selection of dataset presets.
//
// # Manager
//
// The Manager coordinates the entire process:
//
//  1. Resolve preset names against the catalog
//  2. Size the remote resources with HEAD requests
//  3. Load tabular presets into model.Dataset values
//  4. Stage archive presets into their family/split directories
//
// # Basic Usage
//
//	manager := download.NewManager(settings, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	err := manager.Initialize(ctx, "iris,mnist-testing")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = manager.StartDownloads(ctx)
//	for _, r := range manager.Results() {
//	    fmt.Println(r.Preset.Name, r.Err)
//	}
//
// # Concurrency
//
// At most settings.MaxConcurrentDownloads presets are fetched at once.
// Presets never share a destination, so archive jobs do not interfere.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	}
//
// # Retry Logic
//
// Transient transfer failures are retried with exponential backoff,
// configurable via settings.DownloadMaxRetries, settings.DownloadRetryCooldown
// and settings.DownloadRetryExponent. Parse errors, unsafe archive entries and
// local filesystem errors fail immediately.
package download
