// Package ioutils provides file system utilities for visrec-datasets.
//
// This package contains functions for:
//   - Directory creation
//   - Joining untrusted relative names onto a root without escaping it
//   - Removing scratch files, with a fallback to removal at process exit
package ioutils

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrEscapesRoot is returned by ContainedPath for names that would resolve
// outside of the root directory.
var ErrEscapesRoot = errors.New("path escapes root directory")

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned. An error from
// MkdirAll is ignored when the directory exists afterwards anyway, which
// happens when another process creates it concurrently.
//
// Example:
//
//	err := EnsureDir("/tmp/visrec-datasets/mnist/training")
func EnsureDir(path string) error {
	err := os.MkdirAll(path, 0755)
	if err == nil {
		return nil
	}
	if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
		return nil
	}
	return err
}

// ContainedPath joins a slash-separated relative name onto root and
// guarantees the result stays inside root.
//
// Absolute names, names with a volume and names whose cleaned form climbs
// above root (for example "../evil.txt" or "a/../../b") are rejected with
// ErrEscapesRoot. Redundant segments such as "a/./b" are accepted and cleaned.
//
// Example:
//
//	p, err := ContainedPath("/data", "images/0/1.png") // "/data/images/0/1.png"
//	_, err = ContainedPath("/data", "../../etc/passwd") // ErrEscapesRoot
func ContainedPath(root, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrEscapesRoot)
	}
	local := filepath.FromSlash(name)
	if filepath.IsAbs(local) || filepath.VolumeName(local) != "" || strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("%w: %q is absolute", ErrEscapesRoot, name)
	}
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("%w: %q", ErrEscapesRoot, name)
	}

	target := filepath.Join(root, local)
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrEscapesRoot, name)
	}
	return target, nil
}

// WriteStream copies r into a file at path, creating or truncating it.
//
// The file is created with mode 0644. The returned error reports a failure
// to close the file if the copy itself succeeded.
func WriteStream(path string, r io.Reader) (int64, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return n, err
}

var (
	exitMu      sync.Mutex
	exitPending []string
)

// RemoveOrDefer removes path. If the removal fails for any reason other than
// the file being gone already, the path is queued for RemovePending and the
// original error is returned so the caller can log it.
func RemoveOrDefer(path string) error {
	err := os.Remove(path)
	if err == nil || os.IsNotExist(err) {
		return nil
	}
	RemoveOnExit(path)
	return err
}

// RemoveOnExit queues path for removal by RemovePending.
func RemoveOnExit(path string) {
	exitMu.Lock()
	defer exitMu.Unlock()
	exitPending = append(exitPending, path)
}

// RemovePending removes every queued path, best effort. Commands call it
// once before exiting. It returns the paths that still could not be removed.
func RemovePending() []string {
	exitMu.Lock()
	pending := exitPending
	exitPending = nil
	exitMu.Unlock()

	var left []string
	for _, p := range pending {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			left = append(left, p)
		}
	}
	return left
}
