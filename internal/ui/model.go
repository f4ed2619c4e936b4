package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertwitch/fssim/internal/command"
	"github.com/desertwitch/fssim/internal/schema"
	"github.com/dustin/go-humanize"
)

// ShellSource is the source name reported for syntax errors of commands
// entered into the shell.
const ShellSource = "shell"

const maxTranscriptLines = 500

//nolint:gochecknoglobals
var (
	// titleStyle defines the style for a panel's title.
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	// borderStyle defines the style for a panel's borders.
	borderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4"))

	// infoStyle defines the style for a panel's text.
	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))

	// echoStyle defines the style for echoed commands in the transcript.
	echoStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	// helpStyle defines the style for the help panel's text.
	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			Padding(0, 1)
)

// TeaModel is the principal [tea.Model] for the command shell.
type TeaModel struct {
	width  int
	height int

	cancel context.CancelFunc

	uiHandler *Handler
	shell     shellProvider
	volume    volumeProvider
	console   *Console

	fullWidthWithBorders int

	lineNum   int
	succeeded int
	failed    int

	input      textinput.Model
	transcript viewport.Model
	usage      progress.Model
	lines      []string

	ready bool
}

// NewTeaModel returns an initial new [TeaModel].
//
//nolint:mnd
func NewTeaModel(uiHandler *Handler, shell shellProvider, volume volumeProvider, console *Console, cancel context.CancelFunc) TeaModel {
	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "M <disk>"
	input.CharLimit = 2 * schema.BlockSize
	input.Focus()

	// Letter keys belong to the input, so only paging scrolls the transcript.
	transcript := viewport.New(80, 20)
	transcript.KeyMap = viewport.KeyMap{
		PageDown: key.NewBinding(key.WithKeys("pgdown")),
		PageUp:   key.NewBinding(key.WithKeys("pgup")),
	}

	usage := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(40),
		progress.WithoutPercentage(),
	)

	return TeaModel{
		uiHandler:  uiHandler,
		shell:      shell,
		volume:     volume,
		console:    console,
		input:      input,
		transcript: transcript,
		usage:      usage,
		lines:      make([]string, 0, maxTranscriptLines),
		cancel:     cancel,
		ready:      false,
	}
}

// Init initializes the model within a [tea.Program].
func (m TeaModel) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		textinput.Blink,
	)
}

// Update is the principal message handling method of the model.
// It sets the internal state of the model, for later rendering.
//
//nolint:mnd,ireturn
func (m TeaModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type { //nolint:exhaustive
		case tea.KeyCtrlC:
			m.cancel()

			return m, tea.Quit

		case tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyEnter:
			m.run(m.input.Value())
			m.input.Reset()

			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		m.fullWidthWithBorders = m.width - 2
		m.input.Width = m.fullWidthWithBorders - len(m.input.Prompt) - 1
		m.usage.Width = m.fullWidthWithBorders / 2

		// Status panel, input line, help line and transcript borders.
		m.transcript.Width = m.fullWidthWithBorders
		m.transcript.Height = max(m.height-9, 1)
		m.refreshTranscript()

		if !m.ready {
			m.ready = true
			m.uiHandler.Ready.Store(true)
		}

	case LogMsg:
		m.appendOutput(string(msg))
		m.refreshTranscript()
	}

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.transcript, cmd = m.transcript.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// run executes one line entered into the shell and adds the command and its
// output to the transcript.
func (m *TeaModel) run(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}

	m.lineNum++
	m.appendOutput(echoStyle.Render(m.input.Prompt + line))

	if err := m.shell.Execute(ShellSource, command.Parse(m.lineNum, line)); err != nil {
		m.failed++
	} else {
		m.succeeded++
	}

	m.appendOutput(m.console.Drain())
	m.refreshTranscript()
}

func (m *TeaModel) appendOutput(out string) {
	for _, line := range strings.Split(strings.TrimSuffix(out, "\n"), "\n") {
		if line == "" {
			continue
		}

		if len(m.lines) >= maxTranscriptLines {
			m.lines = m.lines[1:]
		}

		m.lines = append(m.lines, line)
	}
}

func (m *TeaModel) refreshTranscript() {
	if len(m.lines) == 0 {
		return
	}

	content := lipgloss.NewStyle().
		Width(m.transcript.Width).
		Render(strings.Join(m.lines, "\n"))

	m.transcript.SetContent(content)
	m.transcript.GotoBottom()
}

// View is the principal rendering function of the model.
func (m TeaModel) View() string {
	if !m.ready {
		return "Loading the shell..."
	}

	statusSection := borderStyle.
		Width(m.fullWidthWithBorders).
		Render(m.statusView())

	transcriptSection := borderStyle.
		Width(m.fullWidthWithBorders).
		Render(
			lipgloss.JoinVertical(
				lipgloss.Left,
				titleStyle.Width(m.fullWidthWithBorders).Render("Session"),
				lipgloss.NewStyle().Width(m.fullWidthWithBorders).Render(m.transcript.View()),
			),
		)

	helpSection := helpStyle.
		Width(m.fullWidthWithBorders).
		Render("enter: run command • pgup/pgdown: scroll • esc: quit shell • ctrl+c: quit program")

	return lipgloss.JoinVertical(
		lipgloss.Left,
		statusSection,
		transcriptSection,
		m.input.View(),
		helpSection,
	)
}

// statusView renders the usage of the mounted volume and the command
// counters of the session.
func (m TeaModel) statusView() string {
	counters := fmt.Sprintf("Commands: %d (ok=%d, failed=%d)", m.lineNum, m.succeeded, m.failed)

	stats, err := m.volume.Stats()
	if err != nil {
		return infoStyle.Render("No volume mounted • " + counters)
	}

	total := stats.UsedBlocks + stats.FreeBlocks
	pct := 0.0
	if total > 0 {
		pct = float64(stats.UsedBlocks) / float64(total)
	}

	details := fmt.Sprintf("%s • used %s • free %s • inodes %d/%d • %s",
		m.volume.DiskName(),
		humanize.IBytes(stats.UsedBytes()),
		humanize.IBytes(stats.FreeBytes()),
		stats.InodesUsed,
		stats.InodesUsed+stats.InodesFree,
		counters,
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		infoStyle.Render(details),
		m.usage.ViewAs(pct),
	)
}
