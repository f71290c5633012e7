package archive

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/handiism/visrec-datasets/internal/http"
	ioutils "github.com/handiism/visrec-datasets/internal/io"
	"github.com/handiism/visrec-datasets/internal/model"
)

// Downloader streams a remote resource into a writer.
// *http.Client satisfies it.
type Downloader interface {
	DownloadFile(ctx context.Context, url string, dst io.Writer, onProgress func(written, total int64)) (int64, error)
}

// DefaultJunkPatterns are OS metadata entries that are never extracted.
// Each pattern is matched against every path segment of an entry name.
var DefaultJunkPatterns = []string{".DS_Store", "__MACOSX", "Thumbs.db"}

// Stager downloads zip archives and extracts them into local directories.
//
// A Stager holds no per-call state and may be used from several goroutines,
// as long as concurrent calls target different destination directories.
//
// Example usage:
//
//	stager := archive.NewStager(http.NewClient(), archive.WithLogger(logger))
//	err := stager.Stage(ctx, "https://example.com/mnist_testing.zip", "/tmp/visrec-datasets/mnist/testing")
type Stager struct {
	fetcher    Downloader
	logger     *slog.Logger
	junk       []string
	onState    func(model.ArchiveJob)
	onProgress func(written, total int64)
}

// Option configures a Stager.
type Option func(*Stager)

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Stager) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithJunkPatterns replaces DefaultJunkPatterns. Patterns use path.Match syntax.
func WithJunkPatterns(patterns ...string) Option {
	return func(s *Stager) {
		s.junk = append([]string(nil), patterns...)
	}
}

// WithStateHook registers a callback invoked with a snapshot of the job
// after every state change, starting with JobPending.
func WithStateHook(hook func(model.ArchiveJob)) Option {
	return func(s *Stager) {
		s.onState = hook
	}
}

// WithProgress registers a download progress callback.
func WithProgress(onProgress func(written, total int64)) Option {
	return func(s *Stager) {
		s.onProgress = onProgress
	}
}

// NewStager creates a Stager that downloads through fetcher.
func NewStager(fetcher Downloader, opts ...Option) *Stager {
	s := &Stager{
		fetcher: fetcher,
		logger:  slog.Default(),
		junk:    DefaultJunkPatterns,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stage downloads the zip archive at url and extracts it into destination.
//
// This method performs the following steps:
//  1. Validates the URL (no network activity for malformed addresses)
//  2. Creates destination with all intermediate directories
//  3. Downloads the archive to a scratch file inside destination
//  4. Extracts every entry except OS metadata, rejecting unsafe names
//  5. Removes the scratch file, or defers its removal to process exit
//
// Returns an error if:
//   - The URL is malformed (http.ErrMalformedAddress)
//   - The destination cannot be created (ErrDirectoryCreation)
//   - The transfer fails (ErrDownloadFailed)
//   - An entry escapes destination (ErrUnsafeEntry)
//   - The archive cannot be read (ErrCorruptArchive)
//
// Entries extracted before a failing entry stay on disk.
func (s *Stager) Stage(ctx context.Context, url, destination string) error {
	job := model.NewArchiveJob(url, destination)
	s.report(job)

	if err := s.run(ctx, job); err != nil {
		if failErr := job.Fail(err); failErr != nil {
			s.logger.Error("archive job in unexpected state", "url", url, "state", job.State, "error", failErr)
		}
		s.report(job)
		return err
	}
	return nil
}

func (s *Stager) run(ctx context.Context, job *model.ArchiveJob) error {
	if _, err := http.ValidateURL(job.SourceURL); err != nil {
		return err
	}

	if err := ioutils.EnsureDir(job.Destination); err != nil {
		return &DirectoryError{Path: job.Destination, Err: err}
	}

	s.advance(job, model.JobDownloading)
	scratch, err := s.download(ctx, job)
	if err != nil {
		return err
	}
	defer s.discard(scratch)

	s.advance(job, model.JobExtracting)
	if err := s.Extract(ctx, scratch, job.Destination); err != nil {
		return err
	}

	s.advance(job, model.JobDone)
	s.logger.Info("staged archive", "url", job.SourceURL, "destination", job.Destination)
	return nil
}

// download writes the archive to a scratch file in the job's destination
// and returns its path. On failure the scratch file is removed.
func (s *Stager) download(ctx context.Context, job *model.ArchiveJob) (string, error) {
	f, err := os.CreateTemp(job.Destination, ".download-*.zip")
	if err != nil {
		return "", &DownloadError{URL: job.SourceURL, Err: err}
	}
	scratch := f.Name()

	n, err := s.fetcher.DownloadFile(ctx, job.SourceURL, f, s.onProgress)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		s.discard(scratch)
		return "", &DownloadError{URL: job.SourceURL, Err: err}
	}

	s.logger.Debug("downloaded archive", "url", job.SourceURL, "bytes", n, "scratch", scratch)
	return scratch, nil
}

// discard removes the scratch file; failure is logged, never returned.
func (s *Stager) discard(path string) {
	if err := ioutils.RemoveOrDefer(path); err != nil {
		s.logger.Warn("could not remove scratch archive, will retry at exit", "path", path, "error", err)
	}
}

func (s *Stager) advance(job *model.ArchiveJob, next model.JobState) {
	if err := job.Advance(next); err != nil {
		s.logger.Error("archive job in unexpected state", "url", job.SourceURL, "error", err)
		return
	}
	s.report(job)
}

func (s *Stager) report(job *model.ArchiveJob) {
	if s.onState != nil {
		s.onState(*job)
	}
}
