package archive

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	ioutils "github.com/handiism/visrec-datasets/internal/io"
	"github.com/handiism/visrec-datasets/internal/model"
)

// Extract writes the entries of the zip file at archivePath into
// destination, in archive order.
//
// OS metadata entries are skipped. Directory entries are created, file
// entries overwrite whatever exists at their path. The first failing entry
// stops the extraction; entries written before it are kept.
func (s *Stager) Extract(ctx context.Context, archivePath, destination string) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return &CorruptArchiveError{Archive: archivePath, Err: err}
	}
	defer zr.Close()

	var written, skipped int
	for _, entry := range Entries(&zr.Reader) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.IsJunk(entry.Name) {
			skipped++
			continue
		}
		if err := s.extractEntry(archivePath, destination, entry); err != nil {
			return err
		}
		written++
	}

	s.logger.Debug("extracted archive", "archive", archivePath, "destination", destination,
		"entries", written, "skipped", skipped)
	return nil
}

// Entries lists the members of an opened zip archive in archive order.
func Entries(zr *zip.Reader) []model.ArchiveEntry {
	entries := make([]model.ArchiveEntry, 0, len(zr.File))
	for _, f := range zr.File {
		entries = append(entries, model.ArchiveEntry{
			Name:  f.Name,
			IsDir: strings.HasSuffix(f.Name, "/") || f.FileInfo().IsDir(),
			Open:  f.Open,
		})
	}
	return entries
}

// IsJunk reports whether any path segment of name matches a junk pattern.
func (s *Stager) IsJunk(name string) bool {
	for _, segment := range strings.Split(name, "/") {
		if segment == "" {
			continue
		}
		for _, pattern := range s.junk {
			if ok, _ := path.Match(pattern, segment); ok {
				return true
			}
		}
	}
	return false
}

func (s *Stager) extractEntry(archivePath, destination string, entry model.ArchiveEntry) error {
	target, err := ioutils.ContainedPath(destination, entry.Name)
	if err != nil {
		return &UnsafeEntryError{Name: entry.Name, Err: err}
	}

	if entry.IsDir {
		if err := ioutils.EnsureDir(target); err != nil {
			return fmt.Errorf("create directory for %q: %w", entry.Name, err)
		}
		return nil
	}

	if err := ioutils.EnsureDir(filepath.Dir(target)); err != nil {
		return fmt.Errorf("create parent directory for %q: %w", entry.Name, err)
	}

	rc, err := entry.Open()
	if err != nil {
		return &CorruptArchiveError{Archive: archivePath, Entry: entry.Name, Err: err}
	}
	defer rc.Close()

	if _, err := ioutils.WriteStream(target, &entryReader{r: rc}); err != nil {
		var readErr *entryReadError
		if errors.As(err, &readErr) {
			return &CorruptArchiveError{Archive: archivePath, Entry: entry.Name, Err: readErr.err}
		}
		return fmt.Errorf("write %q: %w", entry.Name, err)
	}
	return nil
}

// entryReader tags read failures so they can be told apart from write
// failures after io.Copy.
type entryReader struct {
	r io.Reader
}

func (e *entryReader) Read(p []byte) (int, error) {
	n, err := e.r.Read(p)
	if err != nil && err != io.EOF {
		err = &entryReadError{err: err}
	}
	return n, err
}

type entryReadError struct {
	err error
}

func (e *entryReadError) Error() string {
	return e.err.Error()
}

func (e *entryReadError) Unwrap() error {
	return e.err
}
