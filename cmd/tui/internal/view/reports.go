package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mecdoors/siteledger/internal/report"
)

type reportsState int

const (
	reportsStatePick reportsState = iota
	reportsStateView
)

type ReportsModel struct {
	CommonModel
	reports *report.Service

	state  reportsState
	picker RangePicker
	table  table.Model

	window  RangeSelectedMsg
	result  *report.ComprehensiveReport
	loading bool
	err     error
}

func NewReportsModel(reports *report.Service) ReportsModel {
	columns := []table.Column{
		{Title: "Client", Width: 30},
		{Title: "Type", Width: 16},
		{Title: "Ops", Width: 5},
		{Title: "Total", Width: 14},
		{Title: "Received", Width: 14},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return ReportsModel{
		reports: reports,
		picker:  NewRangePicker(),
		table:   t,
	}
}

func (m ReportsModel) Title() string { return "Comprehensive Report" }
func (m ReportsModel) ShortHelp() string {
	if m.state == reportsStatePick {
		return "Enter: select | Esc: back"
	}

	return "Esc: change window | q: menu"
}

func (m ReportsModel) Init() tea.Cmd {
	return m.picker.Init()
}

func (m ReportsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RangeSelectedMsg:
		m.window = msg
		m.state = reportsStateView
		m.loading = true

		return m, m.loadReportCmd()

	case reportLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.result = msg.result
		m.refreshTable()

		return m, nil
	}

	if m.state == reportsStatePick {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			if keyMsg.Type == tea.KeyEsc && m.picker.IsSelecting() {
				return m, Back
			}
		}

		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)

		return m, cmd
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			m.state = reportsStatePick
			m.picker.Reset()
			m.result = nil

			return m, nil
		case "q":
			return m, Back
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ReportsModel) View() string {
	if m.state == reportsStatePick {
		return lipgloss.NewStyle().Padding(1, 2).Render(m.picker.View())
	}

	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Building report...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	var b strings.Builder

	window := "All Time"
	if !m.window.All {
		window = fmt.Sprintf("%s - %s", FormatDate(m.window.Start), FormatDate(m.window.End))
	}

	fmt.Fprintf(&b, "Window: %s\n\n", activeStyle(window))

	sum := m.result.Summary
	fmt.Fprintf(&b, "Operations: %d (%d in progress, %d completed)\n", sum.TotalOperations, sum.InProgress, sum.Completed)
	fmt.Fprintf(&b, "Total: %s   Received: %s   Avg execution: %s\n\n",
		FormatAmount(sum.TotalAmount), FormatAmount(sum.TotalReceived), FormatPct(sum.AvgExecution))

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	b.WriteString(tableView)

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (m *ReportsModel) refreshTable() {
	if m.result == nil {
		m.table.SetRows(nil)
		return
	}

	rows := make([]table.Row, 0, len(m.result.ClientStats))
	for _, agg := range m.result.ClientStats {
		rows = append(rows, table.Row{
			agg.ClientName,
			string(agg.ClientType),
			fmt.Sprintf("%d", agg.OperationsCount),
			FormatAmount(agg.TotalAmount),
			FormatAmount(agg.TotalReceived),
		})
	}

	m.table.SetRows(rows)
}

type reportLoadedMsg struct {
	result *report.ComprehensiveReport
	err    error
}

func (m ReportsModel) loadReportCmd() tea.Cmd {
	filter := report.ComprehensiveFilter{}
	if !m.window.All {
		start, end := m.window.Start, m.window.End
		filter.Start = &start
		filter.End = &end
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		result, err := m.reports.Comprehensive(ctx, filter)

		return reportLoadedMsg{result: result, err: err}
	}
}
