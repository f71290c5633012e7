package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/handiism/visrec-datasets/internal/archive"
	"github.com/handiism/visrec-datasets/internal/catalog"
	"github.com/handiism/visrec-datasets/internal/config"
	"github.com/handiism/visrec-datasets/internal/http"
	"github.com/handiism/visrec-datasets/internal/loader"
	"github.com/handiism/visrec-datasets/internal/model"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a download progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Result is the outcome of materializing one preset.
type Result struct {
	Preset model.Preset

	// Dataset is set for tabular presets that loaded successfully.
	Dataset *model.Dataset

	// Dir is the staging directory of an archive preset. It is set even
	// when staging failed, since earlier entries may be on disk.
	Dir string

	// Attempts is the number of tries made.
	Attempts int

	Err error
}

// Manager coordinates fetching a selection of presets.
type Manager struct {
	settings   *config.Settings
	catalog    *catalog.Catalog
	httpClient *http.Client
	loader     *loader.Loader
	limiter    *rate.Limiter
	logger     *slog.Logger

	presets       []model.Preset
	results       []*Result
	totalBytes    int64
	receivedBytes int64
	totalFiles    int32
	doneFiles     int32

	onProgress func(ProgressEvent)
	mu         sync.RWMutex
}

// Option configures a Manager.
type Option func(*Manager)

// WithCatalog replaces catalog.Default().
func WithCatalog(c *catalog.Catalog) Option {
	return func(m *Manager) {
		if c != nil {
			m.catalog = c
		}
	}
}

// WithLogger sets the logger passed down to the loader and stager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClient replaces the client built from settings.
func WithClient(c *http.Client) Option {
	return func(m *Manager) {
		if c != nil {
			m.httpClient = c
		}
	}
}

// NewManager creates a new download Manager.
func NewManager(settings *config.Settings, onProgress func(ProgressEvent), opts ...Option) *Manager {
	m := &Manager{
		settings:   settings,
		catalog:    catalog.Default(),
		logger:     slog.Default(),
		onProgress: onProgress,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.httpClient == nil {
		m.httpClient = http.NewClient(settings.ClientOptions()...)
	}
	m.loader = loader.New(m.httpClient, m.logger)
	m.limiter = rate.NewLimiter(settings.RequestLimit(), max(settings.MaxConcurrentDownloads, 1))
	return m
}

// Initialize resolves the preset names in input and sizes the remote
// archives. Sizing failures are not fatal.
func (m *Manager) Initialize(ctx context.Context, input string) error {
	presets, err := m.catalog.Resolve(input)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.presets = presets
	m.results = nil
	m.mu.Unlock()

	for _, p := range presets {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Selected %s", m.describe(p)), Level: LevelInfo})
	}

	m.calculateTotals(ctx)
	return nil
}

// StartDownloads materializes every initialized preset. A failing preset
// does not stop the others; the returned error joins all failures.
func (m *Manager) StartDownloads(ctx context.Context) error {
	m.mu.RLock()
	presets := m.presets
	m.mu.RUnlock()

	results := make([]*Result, len(presets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(m.settings.MaxConcurrentDownloads, 1))

	for i, preset := range presets {
		g.Go(func() error {
			results[i] = m.fetchPreset(ctx, preset)
			return nil // Continue with other presets
		})
	}
	g.Wait()

	m.mu.Lock()
	m.results = results
	m.mu.Unlock()

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Preset.Name, r.Err))
		}
	}
	return errors.Join(errs...)
}

// GetProgress returns current download progress.
func (m *Manager) GetProgress() (received, total int64, filesDone, filesTotal int32) {
	return atomic.LoadInt64(&m.receivedBytes), atomic.LoadInt64(&m.totalBytes),
		atomic.LoadInt32(&m.doneFiles), atomic.LoadInt32(&m.totalFiles)
}

// GetPresetNames returns a description of every initialized preset.
func (m *Manager) GetPresetNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, len(m.presets))
	for i, p := range m.presets {
		names[i] = m.describe(p)
	}
	return names
}

// Results returns the outcomes of the last StartDownloads in selection order.
func (m *Manager) Results() []Result {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Result, 0, len(m.results))
	for _, r := range m.results {
		out = append(out, *r)
	}
	return out
}

// Dataset returns the loaded dataset of a tabular preset.
func (m *Manager) Dataset(name string) (*model.Dataset, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.results {
		if r.Preset.Name == name && r.Dataset != nil {
			return r.Dataset, true
		}
	}
	return nil, false
}

// StagingDir returns where an archive preset is, or would be, extracted.
func (m *Manager) StagingDir(p model.Preset) string {
	return p.StagingDir(m.settings.ToPathConfig())
}

func (m *Manager) describe(p model.Preset) string {
	if p.Kind == model.KindArchive {
		return fmt.Sprintf("%s (archive -> %s)", p.Name, m.StagingDir(p))
	}
	return fmt.Sprintf("%s (tabular, %d inputs, %d outputs)", p.Name, p.Spec.Inputs, p.Spec.Outputs)
}

// calculateTotals counts presets and sums archive sizes. Tabular loads do
// not report bytes, so their sizes are left out of the byte total.
func (m *Manager) calculateTotals(ctx context.Context) {
	var files int32
	var bytes int64
	for _, p := range m.presets {
		files++
		if p.Kind != model.KindArchive {
			continue
		}
		size, err := m.httpClient.GetFileSize(ctx, p.URL)
		if err == nil && size > 0 {
			bytes += size
		}
	}
	atomic.StoreInt32(&m.totalFiles, files)
	atomic.StoreInt64(&m.totalBytes, bytes)
	atomic.StoreInt32(&m.doneFiles, 0)
	atomic.StoreInt64(&m.receivedBytes, 0)
}

func (m *Manager) fetchPreset(ctx context.Context, p model.Preset) *Result {
	result := &Result{Preset: p}
	if p.Kind == model.KindArchive {
		result.Dir = m.StagingDir(p)
	}

	// received tracks the bytes this preset added to the shared counter so
	// a retry can take them back.
	var received int64
	onBytes := func(written, total int64) {
		atomic.AddInt64(&m.receivedBytes, written-received)
		received = written
	}

	maxTries := max(m.settings.DownloadMaxRetries, 1)
	var err error
	for tries := 0; tries < maxTries; tries++ {
		if err = m.limiter.Wait(ctx); err != nil {
			break
		}
		result.Attempts++
		switch p.Kind {
		case model.KindArchive:
			err = m.stager(p, onBytes).Stage(ctx, p.URL, result.Dir)
		default:
			result.Dataset, err = m.loader.Load(ctx, p.URL, p.Spec)
		}
		if err == nil || !retryable(err) || ctx.Err() != nil || tries+1 == maxTries {
			break
		}

		atomic.AddInt64(&m.receivedBytes, -received)
		received = 0
		m.progress(ProgressEvent{Message: fmt.Sprintf("Retry %d/%d for %s: %v", tries+1, maxTries, p.Name, err), Level: LevelWarning})
		if m.waitForRetry(ctx, tries) != nil {
			break
		}
	}

	if err != nil {
		result.Err = err
		m.logger.Error("preset failed", "preset", p.Name, "attempts", result.Attempts, "error", err)
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error fetching %s: %v", p.Name, err), Level: LevelError})
		return result
	}

	atomic.AddInt32(&m.doneFiles, 1)
	if p.Kind == model.KindArchive {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Staged %s into %s", p.Name, result.Dir), Level: LevelSuccess})
	} else {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Loaded %s: %d records", p.Name, result.Dataset.Len()), Level: LevelSuccess})
	}
	return result
}

func (m *Manager) stager(p model.Preset, onBytes func(written, total int64)) *archive.Stager {
	return archive.NewStager(m.httpClient,
		archive.WithLogger(m.logger.With("preset", p.Name)),
		archive.WithProgress(onBytes),
		archive.WithStateHook(func(job model.ArchiveJob) {
			if job.State == model.JobPending || job.State == model.JobFailed {
				return
			}
			m.progress(ProgressEvent{Message: fmt.Sprintf("%s: %s", p.Name, job.State), Level: LevelVerbose})
		}),
	)
}

// retryable reports whether err is a transient transfer failure. Format,
// safety and local filesystem errors are never retried, and neither are
// client errors such as 404 other than 408 and 429.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var statusErr *http.StatusError
	if errors.As(err, &statusErr) && statusErr.Code >= 400 && statusErr.Code < 500 {
		return statusErr.Code == 408 || statusErr.Code == 429
	}
	return errors.Is(err, http.ErrResourceUnavailable) || errors.Is(err, archive.ErrDownloadFailed)
}

func (m *Manager) waitForRetry(ctx context.Context, tries int) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(m.settings.RetryBackoff(tries)):
		return nil
	}
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
