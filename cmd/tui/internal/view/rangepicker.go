package view

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// RangePreset is a predefined or custom reporting window.
type RangePreset int

const (
	RangeThisMonth RangePreset = 0
	RangeLastMonth RangePreset = 1
	RangeThisYear  RangePreset = 2
	RangeAll       RangePreset = 3
	RangeCustom    RangePreset = 4
)

func (p RangePreset) String() string {
	switch p {
	case RangeThisMonth:
		return "This Month"
	case RangeLastMonth:
		return "Last Month"
	case RangeThisYear:
		return "This Year"
	case RangeAll:
		return "All Time"
	case RangeCustom:
		return "Custom Range"
	}

	return "Unknown"
}

func presetToDateRange(p RangePreset) (time.Time, time.Time) {
	now := time.Now()

	var start, end time.Time

	switch p {
	case RangeThisMonth:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		end = now
	case RangeLastMonth:
		lastMonth := now.AddDate(0, -1, 0)
		start = time.Date(lastMonth.Year(), lastMonth.Month(), 1, 0, 0, 0, 0, lastMonth.Location())
		end = start.AddDate(0, 1, -1)
	case RangeThisYear:
		start = time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		end = now
	}

	return start, end
}

func normalizeDateRange(start, end time.Time) (time.Time, time.Time) {
	return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC),
		time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, time.UTC)
}

// RangeSelectedMsg is emitted when the user has selected a valid window.
// Start and End are zero values when All is true.
type RangeSelectedMsg struct {
	Start time.Time
	End   time.Time
	All   bool
}

type rangeState int

const (
	rangeStateSelect rangeState = iota
	rangeStateCustom
)

// RangePicker is a reusable component for selecting a reporting window.
type RangePicker struct {
	state    rangeState
	selected RangePreset

	startInput textinput.Model
	endInput   textinput.Model
	focusIndex int

	err error
}

func NewRangePicker() RangePicker {
	si := textinput.New()
	si.Placeholder = "YYYY-MM-DD"
	si.CharLimit = 10
	si.Width = 12
	si.Prompt = "Start Date: "

	ei := textinput.New()
	ei.Placeholder = "YYYY-MM-DD"
	ei.CharLimit = 10
	ei.Width = 12
	ei.Prompt = "End Date:   "

	return RangePicker{
		state:      rangeStateSelect,
		startInput: si,
		endInput:   ei,
	}
}

func (m RangePicker) Init() tea.Cmd {
	return nil
}

func (m RangePicker) Update(msg tea.Msg) (RangePicker, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch m.state {
		case rangeStateSelect:
			return m.updateSelect(keyMsg)
		case rangeStateCustom:
			return m.updateCustom(keyMsg)
		}
	}

	if m.state == rangeStateCustom {
		return m.updateInputs(msg)
	}

	return m, nil
}

func (m RangePicker) updateSelect(msg tea.KeyMsg) (RangePicker, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.selected > RangeThisMonth {
			m.selected--
		}
	case tea.KeyDown:
		if m.selected < RangeCustom {
			m.selected++
		}
	case tea.KeyEnter:
		if m.selected == RangeCustom {
			m.state = rangeStateCustom
			m.startInput.Focus()
			m.focusIndex = 0

			return m, textinput.Blink
		}

		if m.selected == RangeAll {
			return m, func() tea.Msg {
				return RangeSelectedMsg{All: true}
			}
		}

		start, end := presetToDateRange(m.selected)
		start, end = normalizeDateRange(start, end)

		return m, func() tea.Msg {
			return RangeSelectedMsg{Start: start, End: end}
		}
	}

	return m, nil
}

func (m RangePicker) updateCustom(msg tea.KeyMsg) (RangePicker, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab":
		m.focusIndex = (m.focusIndex + 1) % 2
		m.startInput.Blur()
		m.endInput.Blur()

		if m.focusIndex == 0 {
			m.startInput.Focus()
			return m, textinput.Blink
		}

		m.endInput.Focus()

		return m, textinput.Blink

	case "enter":
		start, err := time.Parse("2006-01-02", m.startInput.Value())
		if err != nil {
			m.err = fmt.Errorf("invalid start date (YYYY-MM-DD)")
			return m, nil
		}

		end, err := time.Parse("2006-01-02", m.endInput.Value())
		if err != nil {
			m.err = fmt.Errorf("invalid end date (YYYY-MM-DD)")
			return m, nil
		}

		m.err = nil
		start, end = normalizeDateRange(start, end)

		return m, func() tea.Msg {
			return RangeSelectedMsg{Start: start, End: end}
		}

	case "esc":
		m.state = rangeStateSelect
		m.err = nil

		return m, nil
	}

	return m.updateInputs(msg)
}

func (m RangePicker) updateInputs(msg tea.Msg) (RangePicker, tea.Cmd) {
	var cmds []tea.Cmd
	var c tea.Cmd

	m.startInput, c = m.startInput.Update(msg)
	cmds = append(cmds, c)
	m.endInput, c = m.endInput.Update(msg)
	cmds = append(cmds, c)

	return m, tea.Batch(cmds...)
}

func (m RangePicker) View() string {
	errStr := ""
	if m.err != nil {
		errStr = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(fmt.Sprintf("\n\nError: %v", m.err))
	}

	if m.state == rangeStateCustom {
		return fmt.Sprintf(
			"Enter Custom Range:\n\n%s\n%s\n\n(Enter to confirm, Tab to switch, Esc to back)%s",
			m.startInput.View(),
			m.endInput.View(),
			errStr,
		)
	}

	s := "Select Reporting Window:\n\n"
	for p := RangeThisMonth; p <= RangeCustom; p++ {
		cursor := " "
		if m.selected == p {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %s\n", cursor, p.String())
	}

	s += "\n(Enter to select, Esc to back)"

	return s + errStr
}

// IsSelecting returns true while the picker is in the preset list.
func (m RangePicker) IsSelecting() bool {
	return m.state == rangeStateSelect
}

// Reset returns the picker to its initial selection state.
func (m *RangePicker) Reset() {
	m.state = rangeStateSelect
	m.selected = RangeThisMonth
	m.err = nil
	m.startInput.SetValue("")
	m.endInput.SetValue("")
}
