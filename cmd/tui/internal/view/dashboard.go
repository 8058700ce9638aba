package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mecdoors/siteledger/internal/report"
)

var dashboardPeriods = []report.Period{
	report.PeriodWeek,
	report.PeriodMonth,
	report.PeriodQuarter,
	report.PeriodYear,
}

type DashboardModel struct {
	CommonModel
	reports *report.Service

	periodIdx int
	stats     *report.DashboardStats
	buckets   []report.FinancialBucket
	loading   bool
	err       error
}

func NewDashboardModel(reports *report.Service) DashboardModel {
	return DashboardModel{reports: reports, periodIdx: 1, loading: true}
}

func (m DashboardModel) Title() string     { return "Dashboard" }
func (m DashboardModel) ShortHelp() string { return "Esc: back | p: period | r: refresh" }

func (m DashboardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.stats = msg.stats
		m.buckets = msg.buckets

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "p":
			m.periodIdx = (m.periodIdx + 1) % len(dashboardPeriods)
			m.loading = true

			return m, m.loadCmd()
		}
	}

	return m, nil
}

func (m DashboardModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading dashboard...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	var b strings.Builder

	label := lipgloss.NewStyle().Faint(true)
	value := lipgloss.NewStyle().Bold(true)

	fmt.Fprintf(&b, "%s %s\n", label.Render("Operations:"), value.Render(
		fmt.Sprintf("%d total, %d in progress, %d completed",
			m.stats.TotalOperations, m.stats.InProgress, m.stats.Completed)))
	fmt.Fprintf(&b, "%s %s\n", label.Render("Contract value:"), value.Render(FormatAmount(m.stats.TotalAmount)))
	fmt.Fprintf(&b, "%s %s\n", label.Render("Received:"), value.Render(FormatAmount(m.stats.TotalReceived)))
	fmt.Fprintf(&b, "%s %s\n", label.Render("Deductions:"), value.Render(FormatAmount(m.stats.TotalDeductions)))
	fmt.Fprintf(&b, "%s %s\n", label.Render("Net amount:"), value.Render(FormatAmount(m.stats.TotalNetAmount)))
	fmt.Fprintf(&b, "%s %s\n", label.Render("Outstanding guarantees:"), value.Render(fmt.Sprintf("%d", m.stats.OutstandingGuarantees)))
	fmt.Fprintf(&b, "%s %s\n", label.Render("Active warranties:"), value.Render(fmt.Sprintf("%d", m.stats.ActiveWarranties)))
	fmt.Fprintf(&b, "%s %s\n", label.Render("Clients:"), value.Render(fmt.Sprintf("%d", m.stats.TotalClients)))

	fmt.Fprintf(&b, "\n[p] Period: %s\n\n", activeStyle(string(dashboardPeriods[m.periodIdx])))

	if len(m.buckets) == 0 {
		b.WriteString(label.Render("No operations in this period."))
	}

	for _, bucket := range m.buckets {
		fmt.Fprintf(&b, "%s  %2d ops  total %s  received %s  avg exec %s\n",
			FormatDate(bucket.Period),
			bucket.OperationsCount,
			FormatAmount(bucket.TotalAmount),
			FormatAmount(bucket.TotalReceived),
			FormatPct(bucket.AvgExecution),
		)
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

type dashboardLoadedMsg struct {
	stats   *report.DashboardStats
	buckets []report.FinancialBucket
	err     error
}

func (m DashboardModel) loadCmd() tea.Cmd {
	period := dashboardPeriods[m.periodIdx]

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		stats, err := m.reports.Dashboard(ctx)
		if err != nil {
			return dashboardLoadedMsg{err: err}
		}

		buckets, err := m.reports.Financial(ctx, period)
		if err != nil {
			return dashboardLoadedMsg{err: err}
		}

		return dashboardLoadedMsg{stats: stats, buckets: buckets}
	}
}
