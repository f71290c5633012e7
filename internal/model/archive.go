package model

import (
	"errors"
	"fmt"
	"io"
)

// ErrInvalidTransition is returned when an ArchiveJob is moved to a state
// that cannot follow its current one.
var ErrInvalidTransition = errors.New("invalid archive job transition")

// JobState is the lifecycle state of a single staging operation.
type JobState int

const (
	// JobPending is the state of a freshly created job.
	JobPending JobState = iota

	// JobDownloading means the archive is being written to a scratch file.
	JobDownloading

	// JobExtracting means entries are being written to the destination.
	JobExtracting

	// JobDone is terminal: the destination directory is populated.
	JobDone

	// JobFailed is terminal: Err holds the reason.
	JobFailed
)

func (s JobState) String() string {
	switch s {
	case JobPending:
		return "pending"
	case JobDownloading:
		return "downloading"
	case JobExtracting:
		return "extracting"
	case JobDone:
		return "done"
	case JobFailed:
		return "failed"
	default:
		return fmt.Sprintf("JobState(%d)", int(s))
	}
}

// Terminal reports whether no further transition is possible.
func (s JobState) Terminal() bool {
	return s == JobDone || s == JobFailed
}

// ArchiveJob tracks one download-then-extract request. It has no identity
// beyond the call that created it.
type ArchiveJob struct {
	SourceURL   string
	Destination string
	State       JobState
	Err         error
}

// NewArchiveJob creates a pending job.
func NewArchiveJob(sourceURL, destination string) *ArchiveJob {
	return &ArchiveJob{
		SourceURL:   sourceURL,
		Destination: destination,
		State:       JobPending,
	}
}

// Advance moves the job to the next non-failed state. The only legal
// sequence is Pending, Downloading, Extracting, Done.
func (j *ArchiveJob) Advance(next JobState) error {
	if next == JobFailed {
		return fmt.Errorf("%w: use Fail to enter %s", ErrInvalidTransition, JobFailed)
	}
	if j.State.Terminal() || next != j.State+1 {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.State, next)
	}
	j.State = next
	return nil
}

// Fail moves a non-terminal job to JobFailed and records the reason.
func (j *ArchiveJob) Fail(reason error) error {
	if j.State.Terminal() {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.State, JobFailed)
	}
	j.State = JobFailed
	j.Err = reason
	return nil
}

// ArchiveEntry is a transient view of one member of an opened archive.
type ArchiveEntry struct {
	// Name is the slash-separated path relative to the archive root.
	Name string

	// IsDir reports whether the entry denotes a directory.
	IsDir bool

	// Open returns the entry's content. Directories have no content.
	Open func() (io.ReadCloser, error)
}
