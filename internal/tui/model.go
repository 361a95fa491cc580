// Package tui provides an interactive terminal panel for viewing and
// changing the default TTL.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/KilimcininKorOglu/ttlctl/internal/ttl"
)

// Slider bounds. Zero is a valid kernel value but would stop packets from
// leaving the host, so the panel does not offer it.
const (
	MinTTL = 1
	MaxTTL = 255

	// unset marks a slider the user has not touched yet
	unset = -1

	sliderWidth = 40
)

// Panel messages.
const (
	msgInvalidTTL = "Invalid TTL value. Please enter a number between 1 and 255."
	msgUpdated    = "TTL value has been updated successfully."
)

// Accessor is the part of ttl.Accessor the panel needs.
type Accessor interface {
	Get(ctx context.Context) (ttl.Reading, error)
	Set(ctx context.Context, value int) error
}

// State represents the current state of the TUI.
type State int

const (
	StateLoading State = iota
	StateReady
	StateApplying
)

// Model is the Bubble Tea model for the TTL panel.
type Model struct {
	accessor Accessor
	width    int
	height   int

	state   State
	reading ttl.Reading
	newTTL  int
	err     string
	notice  string

	spinner spinner.Model
	keys    keyMap
	styles  Styles
}

// ReadingMsg carries the result of a Get.
type ReadingMsg struct {
	Reading ttl.Reading
	Err     error
}

// SetMsg carries the result of a Set.
type SetMsg struct {
	Value int
	Err   error
}

// New creates a new TUI model.
func New(accessor Accessor) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return Model{
		accessor: accessor,
		state:    StateLoading,
		newTTL:   unset,
		spinner:  s,
		keys:     defaultKeyMap(),
		styles:   DefaultStyles(),
		width:    80,
		height:   24,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ReadingMsg:
		m.state = StateReady
		if msg.Err != nil {
			m.err = msg.Err.Error()
			return m, nil
		}
		m.reading = msg.Reading
		m.err = ""

	case SetMsg:
		m.state = StateReady
		if msg.Err != nil {
			m.err = msg.Err.Error()
			m.notice = ""
			return m, nil
		}
		m.newTTL = unset
		m.err = ""
		m.notice = msgUpdated
		m.state = StateLoading
		return m, m.fetch()
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Down):
		m.adjust(-1)
	case key.Matches(msg, m.keys.Up):
		m.adjust(1)
	case key.Matches(msg, m.keys.DownFast):
		m.adjust(-10)
	case key.Matches(msg, m.keys.UpFast):
		m.adjust(10)
	case key.Matches(msg, m.keys.Refresh):
		if m.state == StateReady {
			m.state = StateLoading
			m.notice = ""
			return m, m.fetch()
		}
	case key.Matches(msg, m.keys.Apply):
		return m.apply()
	}
	return m, nil
}

// adjust moves the slider by delta, starting from the current IPv4 value the
// first time it is touched. Editing clears any error.
func (m *Model) adjust(delta int) {
	if m.state == StateApplying {
		return
	}

	v := m.newTTL
	if v == unset {
		v = m.reading.IPv4
	}
	v += delta
	if v < MinTTL {
		v = MinTTL
	}
	if v > MaxTTL {
		v = MaxTTL
	}

	m.newTTL = v
	m.err = ""
	m.notice = ""
}

// apply validates the slider value and starts a Set.
func (m Model) apply() (tea.Model, tea.Cmd) {
	if m.state != StateReady {
		return m, nil
	}
	if m.newTTL < MinTTL || m.newTTL > MaxTTL {
		m.err = msgInvalidTTL
		m.notice = ""
		return m, nil
	}

	m.state = StateApplying
	return m, m.set(m.newTTL)
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("Change TTL"))
	b.WriteString("\n")

	b.WriteString(m.renderReading())
	b.WriteString("\n\n")
	b.WriteString(m.renderSlider())
	b.WriteString("\n\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n\n")
	b.WriteString(m.renderFooter())

	return m.styles.Box.Render(b.String())
}

// renderReading renders the current values.
func (m Model) renderReading() string {
	if m.state == StateLoading && m.reading == (ttl.Reading{}) {
		return m.spinner.View() + " Reading kernel parameters..."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Label.Render("Current IPv4 TTL: ")+m.styles.Value.Render(fmt.Sprintf("%d", m.reading.IPv4)),
		m.styles.Label.Render("Current IPv6 TTL: ")+m.styles.Value.Render(fmt.Sprintf("%d", m.reading.IPv6)),
	)
}

// renderSlider renders the new-value slider.
func (m Model) renderSlider() string {
	filled := 0
	value := "---"
	if m.newTTL != unset {
		filled = sliderWidth * m.newTTL / MaxTTL
		value = fmt.Sprintf("%3d", m.newTTL)
	}

	bar := m.styles.SliderFill.Render(strings.Repeat("━", filled)) +
		m.styles.SliderEmpty.Render(strings.Repeat("─", sliderWidth-filled))

	return fmt.Sprintf("%d %s %d  %s", MinTTL, bar, MaxTTL, m.styles.SliderValue.Render(value+" TTL"))
}

// renderStatus renders progress, errors and notices.
func (m Model) renderStatus() string {
	switch {
	case m.state == StateApplying:
		return m.spinner.View() + " Setting new TTL..."
	case m.err != "":
		return m.styles.Error.Render("✗ " + m.err)
	case m.notice != "":
		return m.styles.Success.Render("✓ " + m.notice)
	}
	return ""
}

// renderFooter renders the key help.
func (m Model) renderFooter() string {
	var parts []string
	for _, b := range m.keys.helpBindings() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return m.styles.Subtle.Render(strings.Join(parts, " • "))
}

// fetch reads the current values in the background.
func (m Model) fetch() tea.Cmd {
	accessor := m.accessor
	return func() tea.Msg {
		reading, err := accessor.Get(context.Background())
		return ReadingMsg{Reading: reading, Err: err}
	}
}

// set applies value in the background.
func (m Model) set(value int) tea.Cmd {
	accessor := m.accessor
	return func() tea.Msg {
		err := accessor.Set(context.Background(), value)
		return SetMsg{Value: value, Err: err}
	}
}
