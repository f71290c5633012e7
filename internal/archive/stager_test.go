package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	fetch "github.com/handiism/visrec-datasets/internal/http"
	"github.com/handiism/visrec-datasets/internal/model"
)

type zipEntry struct {
	name string
	body string
}

// buildZip creates an in-memory zip archive. Names ending in "/" become
// directory entries.
func buildZip(t *testing.T, entries ...zipEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		hdr := &zip.FileHeader{Name: e.name, Method: zip.Store}
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			t.Fatalf("failed to add %s: %v", e.name, err)
		}
		if strings.HasSuffix(e.name, "/") {
			continue
		}
		if _, err := w.Write([]byte(e.body)); err != nil {
			t.Fatalf("failed to write %s: %v", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}
	return buf.Bytes()
}

// serveBytes serves data at /archive.zip and 404 everywhere else.
func serveBytes(t *testing.T, data []byte) (*httptest.Server, *fetch.Client) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/archive.zip" {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	}))
	t.Cleanup(srv.Close)
	return srv, fetch.NewClient(fetch.WithHTTPClient(srv.Client()))
}

func assertNoScratch(t *testing.T, dir string) {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, ".download-*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 0 {
		t.Errorf("scratch files left behind: %v", matches)
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestStage_ExtractsAndFiltersJunk(t *testing.T) {
	data := buildZip(t,
		zipEntry{name: "images/"},
		zipEntry{name: "images/0/1.png", body: "one"},
		zipEntry{name: "images/1/.DS_Store", body: "junk"},
		zipEntry{name: "__MACOSX/._1.png", body: "junk"},
		zipEntry{name: "images/1/2.png", body: "two"},
		zipEntry{name: "empty/"},
	)
	srv, client := serveBytes(t, data)
	dest := filepath.Join(t.TempDir(), "mnist", "training")

	var states []model.JobState
	stager := NewStager(client, WithStateHook(func(job model.ArchiveJob) {
		states = append(states, job.State)
	}))

	if err := stager.Stage(context.Background(), srv.URL+"/archive.zip", dest); err != nil {
		t.Fatalf("Stage failed: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dest, "images", "0", "1.png"))
	if err != nil || string(got) != "one" {
		t.Errorf("images/0/1.png = %q, %v", got, err)
	}
	if !exists(filepath.Join(dest, "images", "1", "2.png")) {
		t.Error("images/1/2.png was not extracted")
	}
	if info, err := os.Stat(filepath.Join(dest, "empty")); err != nil || !info.IsDir() {
		t.Error("empty directory entry was not created")
	}
	if exists(filepath.Join(dest, "__MACOSX")) {
		t.Error("__MACOSX was extracted")
	}
	if exists(filepath.Join(dest, "images", "1", ".DS_Store")) {
		t.Error(".DS_Store was extracted")
	}
	assertNoScratch(t, dest)

	want := []model.JobState{model.JobPending, model.JobDownloading, model.JobExtracting, model.JobDone}
	if !reflect.DeepEqual(states, want) {
		t.Errorf("states = %v, want %v", states, want)
	}
}

func TestStage_RejectsTraversal(t *testing.T) {
	data := buildZip(t,
		zipEntry{name: "images/0/1.png", body: "one"},
		zipEntry{name: "__MACOSX/._1.png", body: "junk"},
		zipEntry{name: "../evil.txt", body: "evil"},
	)
	srv, client := serveBytes(t, data)
	parent := t.TempDir()
	dest := filepath.Join(parent, "stage")

	var last model.ArchiveJob
	stager := NewStager(client, WithStateHook(func(job model.ArchiveJob) { last = job }))
	err := stager.Stage(context.Background(), srv.URL+"/archive.zip", dest)

	if !errors.Is(err, ErrUnsafeEntry) {
		t.Fatalf("Stage error = %v, want ErrUnsafeEntry", err)
	}
	var unsafeErr *UnsafeEntryError
	if !errors.As(err, &unsafeErr) || unsafeErr.Name != "../evil.txt" {
		t.Errorf("expected *UnsafeEntryError naming ../evil.txt, got %v", err)
	}
	if exists(filepath.Join(parent, "evil.txt")) {
		t.Fatal("../evil.txt was written outside the destination")
	}
	if !exists(filepath.Join(dest, "images", "0", "1.png")) {
		t.Error("entry before the unsafe one should stay on disk")
	}
	if exists(filepath.Join(dest, "__MACOSX")) {
		t.Error("__MACOSX was extracted")
	}
	if last.State != model.JobFailed || !errors.Is(last.Err, ErrUnsafeEntry) {
		t.Errorf("final job = %+v, want failed with ErrUnsafeEntry", last)
	}
	assertNoScratch(t, dest)
}

func TestStage_RejectsAbsoluteEntry(t *testing.T) {
	data := buildZip(t, zipEntry{name: "/etc/evil.conf", body: "evil"})
	srv, client := serveBytes(t, data)
	dest := t.TempDir()

	err := NewStager(client).Stage(context.Background(), srv.URL+"/archive.zip", dest)
	if !errors.Is(err, ErrUnsafeEntry) {
		t.Fatalf("Stage error = %v, want ErrUnsafeEntry", err)
	}
}

func TestStage_OverwritesExistingFiles(t *testing.T) {
	data := buildZip(t, zipEntry{name: "labels.txt", body: "new"})
	srv, client := serveBytes(t, data)
	dest := t.TempDir()
	if err := os.WriteFile(filepath.Join(dest, "labels.txt"), []byte("old and longer"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := NewStager(client).Stage(context.Background(), srv.URL+"/archive.zip", dest); err != nil {
		t.Fatalf("Stage failed: %v", err)
	}
	got, _ := os.ReadFile(filepath.Join(dest, "labels.txt"))
	if string(got) != "new" {
		t.Errorf("labels.txt = %q, want %q", got, "new")
	}
}

func TestStage_CorruptArchive(t *testing.T) {
	srv, client := serveBytes(t, []byte("this is not a zip file"))
	dest := t.TempDir()

	var last model.ArchiveJob
	stager := NewStager(client, WithStateHook(func(job model.ArchiveJob) { last = job }))
	err := stager.Stage(context.Background(), srv.URL+"/archive.zip", dest)
	if !errors.Is(err, ErrCorruptArchive) {
		t.Fatalf("Stage error = %v, want ErrCorruptArchive", err)
	}
	if last.State != model.JobFailed {
		t.Errorf("final state = %s, want failed", last.State)
	}
	assertNoScratch(t, dest)
}

func TestStage_CorruptEntry(t *testing.T) {
	data := buildZip(t, zipEntry{name: "data.bin", body: "checksummed payload"})
	i := bytes.Index(data, []byte("checksummed"))
	if i < 0 {
		t.Fatal("payload not found in archive")
	}
	data[i] = 'C'
	srv, client := serveBytes(t, data)
	dest := t.TempDir()

	err := NewStager(client).Stage(context.Background(), srv.URL+"/archive.zip", dest)
	var corrupt *CorruptArchiveError
	if !errors.As(err, &corrupt) {
		t.Fatalf("Stage error = %v, want *CorruptArchiveError", err)
	}
	if corrupt.Entry != "data.bin" {
		t.Errorf("corrupt entry = %q, want data.bin", corrupt.Entry)
	}
	if !errors.Is(err, zip.ErrChecksum) {
		t.Errorf("expected checksum cause, got %v", err)
	}
}

func TestStage_DownloadFailed(t *testing.T) {
	srv, client := serveBytes(t, nil)
	dest := t.TempDir()

	err := NewStager(client).Stage(context.Background(), srv.URL+"/missing.zip", dest)
	if !errors.Is(err, ErrDownloadFailed) {
		t.Fatalf("Stage error = %v, want ErrDownloadFailed", err)
	}
	if !errors.Is(err, fetch.ErrResourceUnavailable) {
		t.Errorf("expected the fetcher's kind to be preserved, got %v", err)
	}
	assertNoScratch(t, dest)
}

func TestStage_TruncatedTransfer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "4096")
		w.Write([]byte("PK only a little"))
	}))
	t.Cleanup(srv.Close)
	client := fetch.NewClient(fetch.WithHTTPClient(srv.Client()))
	dest := t.TempDir()

	err := NewStager(client).Stage(context.Background(), srv.URL+"/archive.zip", dest)
	if !errors.Is(err, ErrDownloadFailed) {
		t.Fatalf("Stage error = %v, want ErrDownloadFailed", err)
	}
	assertNoScratch(t, dest)
}

func TestStage_MalformedURL(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "never")

	err := NewStager(fetch.NewClient()).Stage(context.Background(), "ftp://example.com/a.zip", dest)
	if !errors.Is(err, fetch.ErrMalformedAddress) {
		t.Fatalf("Stage error = %v, want ErrMalformedAddress", err)
	}
	if exists(dest) {
		t.Error("destination created for a malformed URL")
	}
}

func TestStage_DirectoryCreationFailed(t *testing.T) {
	file := filepath.Join(t.TempDir(), "occupied")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	err := NewStager(fetch.NewClient()).Stage(context.Background(), "https://example.com/a.zip", filepath.Join(file, "sub"))
	if !errors.Is(err, ErrDirectoryCreation) {
		t.Fatalf("Stage error = %v, want ErrDirectoryCreation", err)
	}
}

func TestIsJunk(t *testing.T) {
	s := NewStager(nil)

	tests := []struct {
		name string
		want bool
	}{
		{".DS_Store", true},
		{"images/0/.DS_Store", true},
		{"__MACOSX/", true},
		{"__MACOSX/images/._1.png", true},
		{"images/Thumbs.db", true},
		{"images/0/1.png", false},
		{"my.DS_Store.png", false},
		{"__MACOSX_notes.txt", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.IsJunk(tt.name); got != tt.want {
				t.Errorf("IsJunk(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestWithJunkPatterns(t *testing.T) {
	s := NewStager(nil, WithJunkPatterns("*.tmp"))
	if !s.IsJunk("a/b/file.tmp") {
		t.Error("custom pattern not applied")
	}
	if s.IsJunk(".DS_Store") {
		t.Error("default patterns should be replaced")
	}
}
