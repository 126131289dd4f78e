// Package tui provides a Bubble Tea terminal user interface for tubemusic.
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
	"github.com/sirupsen/logrus"

	"github.com/handiism/tubemusic/internal/config"
	"github.com/handiism/tubemusic/internal/export"
	"github.com/handiism/tubemusic/internal/logging"
	"github.com/handiism/tubemusic/internal/manifest"
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

	trackStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// maxLogs is the number of progress lines kept on screen.
const maxLogs = 10

// errCancelled is shown when the user aborts an export.
var errCancelled = errors.New("cancelled by user")

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StatePlanning
	StateExporting
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   export.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	logger    logrus.FieldLogger
	logs      []LogEntry
	tracks    []string
	summary   export.Summary
	err       error

	// Export context
	ctx    context.Context
	cancel context.CancelFunc

	// events carries progress events from the export goroutines.
	events chan export.ProgressEvent

	manager *export.Manager
	jobs    []export.Job
	closeFn func() error

	doneFiles  int32
	totalFiles int32

	// Options
	playlist    bool
	folderCover bool
	verbose     bool

	width  int
	height int
}

// NewModel creates a new TUI model. A nil logger discards log output.
func NewModel(settings *config.Settings, logger logrus.FieldLogger) Model {
	if settings == nil {
		settings = config.DefaultSettings()
	}
	if logger == nil {
		logger = logging.Discard()
	}

	ti := textinput.New()
	ti.Placeholder = "albums/live.toml"
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
		state:       StateInput,
		textInput:   ti,
		spinner:     sp,
		progress:    prog,
		settings:    settings,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
		events:      make(chan export.ProgressEvent, 64),
		playlist:    settings.CreatePlaylist,
		folderCover: settings.SaveCoverArtInFolder,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.waitForEvent())
}

// Message types
type (
	// ProgressMsg carries one export progress event.
	ProgressMsg struct {
		Event export.ProgressEvent
	}

	// PlanDoneMsg is sent when the manifest has been loaded and planned.
	PlanDoneMsg struct {
		Tracks  []string
		Manager *export.Manager
		Jobs    []export.Job
		Close   func() error
		Err     error
	}

	// ExportDoneMsg is sent when the export run returns.
	ExportDoneMsg struct {
		Summary export.Summary
		Err     error
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
			m.release()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateExporting || m.state == StatePlanning {
				m.cancel()
				m.state = StateError
				m.err = errCancelled
			}

		case "enter":
			if m.state == StateInput && strings.TrimSpace(m.textInput.Value()) != "" {
				m.state = StatePlanning
				return m, tea.Batch(m.planExport(), m.spinner.Tick)
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				m.reset()
				return m, nil
			}

		// Letters go to the path input, so options use control keys.
		case "ctrl+l":
			if m.state == StateInput {
				m.playlist = !m.playlist
			}

		case "ctrl+o":
			if m.state == StateInput {
				m.folderCover = !m.folderCover
			}

		case "ctrl+g":
			if m.state == StateInput {
				m.verbose = !m.verbose
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		cmds = append(cmds, m.waitForEvent())
		if msg.Event.Level == export.LevelVerbose && !m.verbose {
			break
		}
		m.logs = append(m.logs, LogEntry{Message: msg.Event.Message, Level: msg.Event.Level})
		if len(m.logs) > maxLogs {
			m.logs = m.logs[len(m.logs)-maxLogs:]
		}

	case PlanDoneMsg:
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
			break
		}
		if m.ctx.Err() != nil {
			if msg.Close != nil {
				msg.Close()
			}
			break
		}
		m.tracks = msg.Tracks
		m.manager = msg.Manager
		m.jobs = msg.Jobs
		m.closeFn = msg.Close
		m.totalFiles = int32(len(msg.Jobs))
		m.state = StateExporting
		cmds = append(cmds, m.startExport(), m.tickProgress())

	case ExportDoneMsg:
		m.summary = msg.Summary
		m.doneFiles = int32(msg.Summary.Total())
		m.release()
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
		if m.manager != nil && m.state == StateExporting {
			m.doneFiles, m.totalFiles = m.manager.GetProgress()

			var percent float64
			if m.totalFiles > 0 {
				percent = float64(m.doneFiles) / float64(m.totalFiles)
			}
			cmds = append(cmds, m.progress.SetPercent(percent), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// reset prepares the model for another manifest.
func (m *Model) reset() {
	m.release()
	m.state = StateInput
	m.logs = nil
	m.tracks = nil
	m.summary = export.Summary{}
	m.err = nil
	m.doneFiles = 0
	m.totalFiles = 0
	m.manager = nil
	m.jobs = nil
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.textInput.SetValue("")
	m.textInput.Focus()
}

// release removes the streams downloaded for the current export.
func (m *Model) release() {
	if m.closeFn == nil {
		return
	}
	if err := m.closeFn(); err != nil {
		m.logger.WithError(err).Warn("failed to remove downloaded streams")
	}
	m.closeFn = nil
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// waitForEvent delivers the next progress event as a ProgressMsg.
func (m Model) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		return ProgressMsg{Event: <-events}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("♪ tubemusic"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Export albums from YouTube manifests"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StatePlanning:
		b.WriteString(m.viewPlanning())
	case StateExporting:
		b.WriteString(m.viewExporting())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Manifest file (TOML, JSON or YAML):"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s Create playlist (ctrl+l)\n", checkbox(m.playlist))
	fmt.Fprintf(&b, "  %s Save cover in folder (ctrl+o)\n", checkbox(m.folderCover))
	fmt.Fprintf(&b, "  %s Verbose output (ctrl+g)\n", checkbox(m.verbose))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Output directory: %s", m.settings.OutputDir)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewPlanning() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Reading manifest..."))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewExporting() string {
	var b strings.Builder

	if len(m.tracks) > 0 {
		b.WriteString(successStyle.Render(fmt.Sprintf("Found %d track(s):", len(m.tracks))))
		b.WriteString("\n")
		shown := m.tracks
		if len(shown) > maxLogs {
			shown = shown[:maxLogs]
		}
		for _, track := range shown {
			b.WriteString(trackStyle.Render("  ♪ " + track))
			b.WriteString("\n")
		}
		if n := len(m.tracks) - len(shown); n > 0 {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  ... and %d more", n)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	var percent float64
	if m.totalFiles > 0 {
		percent = float64(m.doneFiles) / float64(m.totalFiles)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("Tracks: %d/%d", m.doneFiles, m.totalFiles)))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	return boxStyle.Render(fmt.Sprintf(
		"Export complete!\n\n"+
			"Exported: %d\n"+
			"Skipped:  %d\n"+
			"Failed:   %d",
		m.summary.Exported,
		m.summary.Skipped,
		m.summary.Failed,
	))
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		fmt.Fprintf(&b, "  %s", m.err.Error())
	}

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case export.LevelError:
			style = errorStyle
			prefix = "✗"
		case export.LevelWarning:
			style = warningStyle
			prefix = "!"
		case export.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case export.LevelInfo:
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
		return "enter: start • ctrl+l: playlist • ctrl+o: folder cover • ctrl+g: verbose • esc: quit"
	case StatePlanning, StateExporting:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new export • q: quit"
	}
	return ""
}

// planExport loads the manifest and creates the manager.
func (m Model) planExport() tea.Cmd {
	path := strings.TrimSpace(m.textInput.Value())
	ctx := m.ctx
	logger := m.logger
	events := m.events

	settings := *m.settings
	settings.CreatePlaylist = m.playlist
	settings.SaveCoverArtInFolder = m.folderCover

	return func() tea.Msg {
		doc, err := manifest.Load(path, manifest.FormatAuto)
		if err != nil {
			return PlanDoneMsg{Err: err}
		}

		onProgress := func(e export.ProgressEvent) {
			select {
			case events <- e:
			default:
				// The screen only shows the latest lines.
			}
		}

		manager, closeFn, err := export.NewDefaultManager(ctx, &settings, logger, onProgress)
		if err != nil {
			return PlanDoneMsg{Err: err}
		}

		jobs, err := manager.Plan(doc)
		if err != nil {
			return PlanDoneMsg{Err: errors.Join(err, closeFn())}
		}

		tracks := make([]string, len(jobs))
		for i, job := range jobs {
			tracks[i] = fmt.Sprintf("%02d %s", job.Number, job.Title())
		}

		return PlanDoneMsg{Tracks: tracks, Manager: manager, Jobs: jobs, Close: closeFn}
	}
}

// startExport runs the export in the background.
func (m Model) startExport() tea.Cmd {
	manager, jobs, ctx := m.manager, m.jobs, m.ctx
	return func() tea.Msg {
		summary, err := manager.Run(ctx, jobs)
		return ExportDoneMsg{Summary: summary, Err: err}
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings, logger logrus.FieldLogger) error {
	p := tea.NewProgram(NewModel(settings, logger), tea.WithAltScreen())
	final, err := p.Run()
	if m, ok := final.(Model); ok {
		m.cancel()
		m.release()
	}
	return err
}
