package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultUserAgent is sent with every request unless overridden.
const DefaultUserAgent = "visrec-datasets"

// DefaultTimeout bounds a whole request, body included.
const DefaultTimeout = 60 * time.Second

// Client wraps HTTP operations used to fetch dataset resources.
//
// Client provides:
//   - URL validation before any network activity
//   - Configured User-Agent header
//   - Timeout handling
//   - Text (UTF-8) and raw byte streams
//   - File download with progress tracking
//   - File size retrieval via HEAD requests
//
// Every call opens exactly one connection and never retries; retry policy
// belongs to the caller.
//
// Example usage:
//
//	client := NewClient()
//
//	// Fetch a CSV as lines
//	lines, err := client.GetLines(ctx, "https://example.com/iris.csv")
//
//	// Download an archive with progress
//	err = client.DownloadFile(ctx, zipURL, file, func(written, total int64) {
//	    fmt.Printf("%d / %d\n", written, total)
//	})
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the overall request timeout. Zero disables it.
// The underlying *http.Client is copied, so a client passed to
// WithHTTPClient is left untouched.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithHTTPClient replaces the underlying *http.Client, for example with one
// returned by httptest.Server.Client().
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a new HTTP client.
//
// The client is configured with:
//   - 60 second timeout
//   - "visrec-datasets" User-Agent header
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ProgressWriter wraps a writer to track download progress.
//
// Use this to monitor large downloads by providing an OnUpdate callback
// that receives the current bytes written and total expected bytes.
//
// Example:
//
//	pw := &ProgressWriter{
//	    Writer: file,
//	    Total:  contentLength,
//	    OnUpdate: func(written, total int64) {
//	        fmt.Printf("%d / %d bytes\n", written, total)
//	    },
//	}
//	io.Copy(pw, response.Body)
type ProgressWriter struct {
	// Writer is the underlying writer to write data to.
	Writer io.Writer

	// Total is the expected total bytes (from Content-Length header).
	// It is -1 when the server did not announce a length.
	Total int64

	// Written is the current number of bytes written.
	Written int64

	// OnUpdate is called after each Write with current progress.
	// Parameters are (bytesWritten, totalExpected).
	OnUpdate func(written, total int64)
}

// Write implements io.Writer, tracking progress and calling OnUpdate.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.Written += int64(n)
	if pw.OnUpdate != nil {
		pw.OnUpdate(pw.Written, pw.Total)
	}
	return n, err
}

// ValidateURL checks that raw is an absolute http or https URL with a host.
//
// Returns an error wrapping ErrMalformedAddress otherwise.
func ValidateURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, &AddressError{URL: raw, Reason: err.Error()}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &AddressError{URL: raw, Reason: fmt.Sprintf("unsupported scheme %q", u.Scheme)}
	}
	if u.Host == "" {
		return nil, &AddressError{URL: raw, Reason: "missing host"}
	}
	return u, nil
}

// Open performs a GET request and returns the response body.
//
// The caller must close the returned stream on every path.
//
// Returns an error if:
//   - The URL is malformed (ErrMalformedAddress, no request is made)
//   - The request fails (ErrResourceUnavailable)
//   - The response status is not 200 OK (ErrResourceUnavailable, *StatusError)
func (c *Client) Open(ctx context.Context, rawURL string) (*Response, error) {
	if _, err := ValidateURL(rawURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &AddressError{URL: rawURL, Reason: err.Error()}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UnavailableError{URL: rawURL, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &UnavailableError{URL: rawURL, Err: &StatusError{Code: resp.StatusCode, Status: resp.Status}}
	}

	return &Response{Body: resp.Body, ContentLength: resp.ContentLength, url: rawURL}, nil
}

// Response is an open resource stream.
type Response struct {
	// Body is the raw byte stream.
	Body io.ReadCloser

	// ContentLength is the announced size, or -1 if unknown.
	ContentLength int64

	url string
}

// Read implements io.Reader. Read failures are reported as ErrResourceUnavailable.
func (r *Response) Read(p []byte) (int, error) {
	n, err := r.Body.Read(p)
	if err != nil && err != io.EOF {
		err = &UnavailableError{URL: r.url, Err: err}
	}
	return n, err
}

// Close releases the connection.
func (r *Response) Close() error {
	return r.Body.Close()
}

// Get performs a GET request and returns the response body as bytes.
//
// Example:
//
//	data, err := client.Get(ctx, "https://example.com/sonar.csv")
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.Open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Close()

	return io.ReadAll(resp)
}

// GetFileSize returns the size of a file at the given URL via HEAD request.
//
// This is useful for pre-calculating total download size for progress
// reporting.
//
// Returns an error if:
//   - The URL is malformed
//   - The request fails
//   - The server doesn't return a Content-Length header
func (c *Client) GetFileSize(ctx context.Context, url string) (int64, error) {
	if _, err := ValidateURL(url); err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, &AddressError{URL: url, Reason: err.Error()}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, &UnavailableError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, &UnavailableError{URL: url, Err: &StatusError{Code: resp.StatusCode, Status: resp.Status}}
	}
	if resp.ContentLength < 0 {
		return 0, fmt.Errorf("no Content-Length header for %s", url)
	}

	return resp.ContentLength, nil
}

// DownloadFile streams the resource at url into dst with optional progress callback.
//
// Content is streamed directly, avoiding loading the entire file into memory.
//
// Parameters:
//   - ctx: Context for cancellation
//   - url: URL to download from
//   - dst: Writer receiving the bytes, typically an *os.File
//   - onProgress: Optional callback called with (bytesWritten, totalBytes)
//     Pass nil to disable progress tracking
//
// Example:
//
//	err := client.DownloadFile(ctx, zipURL, tmpFile, func(written, total int64) {
//	    if total > 0 {
//	        fmt.Printf("%.1f%%\r", float64(written)/float64(total)*100)
//	    }
//	})
func (c *Client) DownloadFile(ctx context.Context, url string, dst io.Writer, onProgress func(written, total int64)) (int64, error) {
	resp, err := c.Open(ctx, url)
	if err != nil {
		return 0, err
	}
	defer resp.Close()

	writer := dst
	if onProgress != nil {
		writer = &ProgressWriter{
			Writer:   dst,
			Total:    resp.ContentLength,
			OnUpdate: onProgress,
		}
	}

	return io.Copy(writer, resp)
}
