// Package http provides the resource fetcher used by the loader and the
// archive stager.
//
// The Client in this package handles:
//   - URL validation (http and https only) before any request is made
//   - User-Agent headers and timeouts
//   - UTF-8 text streams and raw byte streams
//   - File downloads with progress tracking
//   - File size retrieval via HEAD requests
//   - Optional DNS caching shared by every request (WithDNSCache)
//
// # Basic Usage
//
//	client := http.NewClient(http.WithTimeout(30 * time.Second))
//
//	// Fetch a delimiter-separated resource as lines
//	lines, err := client.GetLines(ctx, "https://example.com/sonar.csv")
//
//	// Stream an archive into a file with a progress callback
//	n, err := client.DownloadFile(ctx, zipURL, file, func(written, total int64) {
//	    fmt.Printf("%d / %d\n", written, total)
//	})
//
// # Errors
//
// Malformed URLs wrap ErrMalformedAddress; connection failures, non-200
// responses and broken bodies wrap ErrResourceUnavailable:
//
//	if errors.Is(err, http.ErrResourceUnavailable) {
//	    // caller-level retry is allowed here
//	}
//
// The client itself never retries.
package http
