package archive

import (
	"errors"
	"fmt"
)

var (
	// ErrDirectoryCreation means the destination directory could not be created.
	ErrDirectoryCreation = errors.New("directory creation failed")

	// ErrDownloadFailed means the archive could not be transferred to the
	// scratch file.
	ErrDownloadFailed = errors.New("download failed")

	// ErrUnsafeEntry means an entry name would resolve outside the destination.
	ErrUnsafeEntry = errors.New("unsafe archive entry")

	// ErrCorruptArchive means the archive or one of its entries could not be read.
	ErrCorruptArchive = errors.New("corrupt archive")
)

// DirectoryError reports a destination directory that could not be created.
type DirectoryError struct {
	Path string
	Err  error
}

func (e *DirectoryError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrDirectoryCreation, e.Path, e.Err)
}

func (e *DirectoryError) Unwrap() []error {
	return []error{ErrDirectoryCreation, e.Err}
}

// DownloadError reports a failed transfer. Err keeps the fetcher's error so
// errors.Is still matches its kind.
type DownloadError struct {
	URL string
	Err error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrDownloadFailed, e.URL, e.Err)
}

func (e *DownloadError) Unwrap() []error {
	return []error{ErrDownloadFailed, e.Err}
}

// UnsafeEntryError names an entry that was rejected instead of written.
type UnsafeEntryError struct {
	Name string
	Err  error
}

func (e *UnsafeEntryError) Error() string {
	return fmt.Sprintf("%s %q: %v", ErrUnsafeEntry, e.Name, e.Err)
}

func (e *UnsafeEntryError) Unwrap() []error {
	return []error{ErrUnsafeEntry, e.Err}
}

// CorruptArchiveError reports an unreadable archive. Entry is empty when the
// archive could not be opened at all.
type CorruptArchiveError struct {
	Archive string
	Entry   string
	Err     error
}

func (e *CorruptArchiveError) Error() string {
	if e.Entry == "" {
		return fmt.Sprintf("%s: %s: %v", ErrCorruptArchive, e.Archive, e.Err)
	}
	return fmt.Sprintf("%s: %s: entry %q: %v", ErrCorruptArchive, e.Archive, e.Entry, e.Err)
}

func (e *CorruptArchiveError) Unwrap() []error {
	return []error{ErrCorruptArchive, e.Err}
}
