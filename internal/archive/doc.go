// Package archive stages remote zip archives into local directories.
//
// # Staging
//
// Stage downloads an archive to a scratch file inside the destination,
// extracts it and removes the scratch file:
//
//	stager := archive.NewStager(http.NewClient(),
//	    archive.WithLogger(logger),
//	    archive.WithStateHook(func(job model.ArchiveJob) {
//	        fmt.Println(job.State)
//	    }),
//	)
//	err := stager.Stage(ctx, zipURL, "/tmp/visrec-datasets/mnist/training")
//
// A job moves through Pending, Downloading, Extracting and Done, or ends in
// Failed. There is no partial success: the caller gets nil or an error.
//
// # Path Safety
//
// Entry names are untrusted. Names that are absolute or climb out of the
// destination ("../evil.txt") fail the whole operation with an
// *UnsafeEntryError and are never written.
//
// # Junk Entries
//
// Entries with a path segment matching DefaultJunkPatterns (.DS_Store,
// __MACOSX, Thumbs.db) are skipped silently.
package archive
