// Package ioutils provides file system utilities.
//
// # Directories
//
//	err := ioutils.EnsureDir("/tmp/visrec-datasets/mnist/training")
//
// # Contained Paths
//
// Archive member names are untrusted. ContainedPath joins them onto the
// extraction root and refuses anything that would land outside it:
//
//	dst, err := ioutils.ContainedPath(root, entry.Name)
//	if errors.Is(err, ioutils.ErrEscapesRoot) {
//	    // reject the entry
//	}
//
// # Scratch Files
//
// RemoveOrDefer deletes a scratch file immediately, or queues it for
// RemovePending, which commands call right before they exit:
//
//	defer ioutils.RemovePending()
//	if err := ioutils.RemoveOrDefer(tmp); err != nil {
//	    logger.Warn("scratch file kept until exit", "path", tmp, "error", err)
//	}
package ioutils
