// Package tui provides a Bubble Tea terminal user interface for visrec-datasets.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/handiism/visrec-datasets/internal/catalog"
	"github.com/handiism/visrec-datasets/internal/config"
	"github.com/handiism/visrec-datasets/internal/download"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	presetStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// maxLogs is the number of progress lines kept on screen.
const maxLogs = 10

var errCancelled = errors.New("cancelled by user")

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateInitializing
	StateDownloading
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	catalog   *catalog.Catalog
	logs      []LogEntry
	presets   []string
	results   []download.Result
	selection string
	err       error

	// Download context
	ctx    context.Context
	cancel context.CancelFunc

	manager *download.Manager
	events  chan download.ProgressEvent

	// Download progress
	totalFiles    int32
	doneFiles     int32
	totalBytes    int64
	receivedBytes int64

	// Options
	all     bool
	verbose bool

	width  int
	height int
}

// NewModel creates a new TUI model.
func NewModel(settings *config.Settings, cat *catalog.Catalog) Model {
	if settings == nil {
		settings = config.DefaultSettings()
	}
	if cat == nil {
		cat = catalog.Default()
	}

	ti := textinput.New()
	ti.Placeholder = "iris, mnist-testing"
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		settings:  settings,
		catalog:   cat,
		logs:      make([]LogEntry, 0),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ProgressMsg is sent when the manager reports progress.
	ProgressMsg struct {
		Event download.ProgressEvent
	}

	// InitDoneMsg is sent when initialization completes.
	InitDoneMsg struct {
		Presets []string
		Manager *download.Manager
		Err     error
	}

	// DownloadDoneMsg is sent when all presets are processed.
	DownloadDoneMsg struct {
		Received int64
		Total    int64
		Files    int32
		TotalF   int32
		Results  []download.Result
		Err      error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateDownloading || m.state == StateInitializing {
				m.cancel()
				m.state = StateError
				m.err = errCancelled
				return m, nil
			}
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "enter":
			if m.state == StateInput {
				selection := m.currentSelection()
				if selection == "" {
					return m, nil
				}
				return m.start(selection)
			}

		case "tab":
			// tab moves focus between the text field and the option toggles
			if m.state == StateInput {
				if m.textInput.Focused() {
					m.textInput.Blur()
				} else {
					m.textInput.Focus()
				}
				return m, nil
			}

		case "a":
			if m.state == StateInput && !m.textInput.Focused() {
				m.all = !m.all
				return m, nil
			}

		case "v":
			if m.state == StateInput && !m.textInput.Focused() {
				m.verbose = !m.verbose
				return m, nil
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			// Run the same selection again
			if (m.state == StateComplete || m.state == StateError) && m.selection != "" {
				m.reset()
				return m.start(m.selection)
			}

		case "n":
			if m.state == StateComplete || m.state == StateError {
				m.reset()
				m.state = StateInput
				m.textInput.Focus()
				return m, textinput.Blink
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		cmds = append(cmds, m.waitForEvent())
		// Filter verbose messages if not in verbose mode
		if msg.Event.Level == download.LevelVerbose && !m.verbose {
			break
		}
		m.logs = append(m.logs, LogEntry{
			Message: msg.Event.Message,
			Level:   msg.Event.Level,
		})
		if len(m.logs) > maxLogs {
			m.logs = m.logs[len(m.logs)-maxLogs:]
		}

	case InitDoneMsg:
		if m.state != StateInitializing {
			break
		}
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.presets = msg.Presets
			m.manager = msg.Manager
			m.state = StateDownloading
			cmds = append(cmds, m.startDownload(), m.tickProgress())
		}

	case DownloadDoneMsg:
		if m.state != StateDownloading {
			break
		}
		m.receivedBytes = msg.Received
		m.totalBytes = msg.Total
		m.doneFiles = msg.Files
		m.totalFiles = msg.TotalF
		m.results = msg.Results
		switch {
		case m.ctx.Err() != nil:
			m.state = StateError
			m.err = errCancelled
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			m.state = StateComplete
		}

	case TickMsg:
		if m.manager != nil && m.state == StateDownloading {
			received, total, files, totalFiles := m.manager.GetProgress()
			m.receivedBytes = received
			m.totalBytes = total
			m.doneFiles = files
			m.totalFiles = totalFiles

			cmds = append(cmds, m.progress.SetPercent(m.percent()), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	if m.state == StateInput && m.textInput.Focused() {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) currentSelection() string {
	if m.all {
		return strings.Join(m.catalog.Names(), ",")
	}
	return strings.TrimSpace(m.textInput.Value())
}

func (m Model) start(selection string) (tea.Model, tea.Cmd) {
	m.selection = selection
	m.state = StateInitializing
	m.events = make(chan download.ProgressEvent, 64)
	return m, tea.Batch(m.initializeDownload(selection), m.waitForEvent(), m.spinner.Tick)
}

func (m *Model) reset() {
	m.cancel()
	m.logs = nil
	m.presets = nil
	m.results = nil
	m.err = nil
	m.doneFiles = 0
	m.totalFiles = 0
	m.receivedBytes = 0
	m.totalBytes = 0
	m.manager = nil
	m.ctx, m.cancel = context.WithCancel(context.Background())
}

func (m Model) percent() float64 {
	if m.totalBytes > 0 && m.receivedBytes <= m.totalBytes && m.doneFiles < m.totalFiles {
		return float64(m.receivedBytes) / float64(m.totalBytes)
	}
	if m.totalFiles > 0 {
		return float64(m.doneFiles) / float64(m.totalFiles)
	}
	return 0
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// waitForEvent delivers the next progress event from the manager.
func (m Model) waitForEvent() tea.Cmd {
	events := m.events
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return ProgressMsg{Event: event}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("VisRec Datasets"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Fetch example datasets for visual recognition"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateInitializing:
		b.WriteString(m.viewInitializing())
	case StateDownloading:
		b.WriteString(m.viewDownloading())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Enter dataset presets:"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Available:"))
	b.WriteString("\n")
	for _, p := range m.catalog.Presets() {
		b.WriteString(fmt.Sprintf("  %s %s\n", presetStyle.Render(p.Name), dimStyle.Render(p.Description)))
	}
	b.WriteString("\n")

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s All presets (a)\n", checkbox(m.all)))
	b.WriteString(fmt.Sprintf("  %s Verbose/debug output (v)\n", checkbox(m.verbose)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Staging path: %s", m.settings.ToPathConfig().BasePath)))
	b.WriteString("\n")

	return b.String()
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func (m Model) viewInitializing() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Resolving presets..."))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewDownloading() string {
	var b strings.Builder

	if len(m.presets) > 0 {
		b.WriteString(successStyle.Render(fmt.Sprintf("Fetching %d preset(s):", len(m.presets))))
		b.WriteString("\n")
		for _, p := range m.presets {
			b.WriteString(presetStyle.Render("  • " + p))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(m.progress.ViewAs(m.percent()))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf(
		"Presets: %d/%d | Downloaded: %s of %s",
		m.doneFiles,
		m.totalFiles,
		humanize.Bytes(uint64(max(m.receivedBytes, 0))),
		humanize.Bytes(uint64(max(m.totalBytes, 0))),
	)))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	var lines []string
	for _, r := range m.results {
		switch {
		case r.Dataset != nil:
			lines = append(lines, fmt.Sprintf("%s: %d records, %d inputs, %d outputs",
				r.Preset.Name, r.Dataset.Len(), r.Dataset.InputCount(), r.Dataset.OutputCount()))
		case r.Dir != "":
			lines = append(lines, fmt.Sprintf("%s: %s", r.Preset.Name, r.Dir))
		}
	}

	box := boxStyle.Render(fmt.Sprintf(
		"Done!\n\n%s\n\nDownloaded: %s",
		strings.Join(lines, "\n"),
		humanize.Bytes(uint64(max(m.receivedBytes, 0))),
	))
	b.WriteString(box)

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		for _, line := range strings.Split(m.err.Error(), "\n") {
			b.WriteString(fmt.Sprintf("  %s\n", line))
		}
	}
	b.WriteString("\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case download.LevelError:
			style = errorStyle
			prefix = "✗"
		case download.LevelWarning:
			style = warningStyle
			prefix = "!"
		case download.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case download.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		if m.textInput.Focused() {
			return "enter: start • tab: options • esc: quit"
		}
		return "enter: start • a: all presets • v: verbose • tab: edit names • esc: quit"
	case StateInitializing, StateDownloading:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: retry • n: new selection • q: quit"
	}
	return ""
}

// initializeDownload resolves the selection and creates the manager.
func (m Model) initializeDownload(selection string) tea.Cmd {
	ctx := m.ctx
	events := m.events
	settings := m.settings
	cat := m.catalog

	return func() tea.Msg {
		manager := download.NewManager(settings, func(event download.ProgressEvent) {
			select {
			case events <- event:
			default:
				// UI is behind; the event is dropped
			}
		}, download.WithCatalog(cat), download.WithLogger(config.DiscardLogger()))

		if err := manager.Initialize(ctx, selection); err != nil {
			close(events)
			return InitDoneMsg{Err: err}
		}

		return InitDoneMsg{
			Presets: manager.GetPresetNames(),
			Manager: manager,
		}
	}
}

// startDownload runs the manager in the background.
func (m Model) startDownload() tea.Cmd {
	ctx := m.ctx
	manager := m.manager
	events := m.events

	return func() tea.Msg {
		if manager == nil {
			return DownloadDoneMsg{Err: fmt.Errorf("no manager")}
		}

		err := manager.StartDownloads(ctx)
		close(events)
		received, total, files, totalFiles := manager.GetProgress()

		return DownloadDoneMsg{
			Received: received,
			Total:    total,
			Files:    files,
			TotalF:   totalFiles,
			Results:  manager.Results(),
			Err:      err,
		}
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings, cat *catalog.Catalog) error {
	p := tea.NewProgram(NewModel(settings, cat), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
