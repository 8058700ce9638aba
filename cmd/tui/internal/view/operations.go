package view

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/mecdoors/siteledger/internal/client"
	"github.com/mecdoors/siteledger/internal/operation"
)

type operationsState int

const (
	operationsStateBrowse operationsState = iota
	operationsStatePayment
	operationsStateExecution
)

var statusFilters = []*operation.Status{
	nil,
	new(operation.StatusInProgress),
	new(operation.StatusCompleted),
	new(operation.StatusPartialPayment),
	new(operation.StatusFullPayment),
	new(operation.StatusOverpaid),
}

var statusFilterLabels = []string{
	"All", "In Progress", "Completed", "Partial Payment", "Full Payment", "Overpaid",
}

type OperationsModel struct {
	CommonModel
	opService     *operation.Service
	clientService *client.Service

	state       operationsState
	table       table.Model
	ops         []*operation.Operation
	clientNames map[uuid.UUID]string
	form        *huh.Form

	statusFilterIdx int

	filter  operation.ListFilter
	loading bool
	err     error
	status  string

	// Form bindings
	formAmount string
	formType   string
	formCheck  string
	formBank   string
	formNotes  string
	formItemID string
	formPct    string
}

func NewOperationsModel(opSvc *operation.Service, clientSvc *client.Service) OperationsModel {
	columns := []table.Column{
		{Title: "Code", Width: 14},
		{Title: "Name", Width: 28},
		{Title: "Client", Width: 20},
		{Title: "Status", Width: 22},
		{Title: "Contract", Width: 12},
		{Title: "Exec", Width: 7},
		{Title: "Net Due", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
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

	return OperationsModel{
		opService:     opSvc,
		clientService: clientSvc,
		table:         t,
		filter:        operation.ListFilter{Limit: 500},
	}
}

func (m OperationsModel) Title() string { return "Operations" }
func (m OperationsModel) ShortHelp() string {
	if m.state != operationsStateBrowse {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | p: record payment | x: set execution | s: status filter | r: refresh"
}

func (m OperationsModel) Init() tea.Cmd {
	return m.loadOpsCmd()
}

func (m OperationsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case operationsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.ops = msg.ops
		m.clientNames = msg.clientNames
		m.status = ""
		m.refreshTable()

		return m, nil

	case operationSavedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
		}

		m.state = operationsStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadOpsCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	if m.state == operationsStateBrowse {
		return m.updateBrowse(msg)
	}

	return m.updateForm(msg)
}

func (m OperationsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadOpsCmd()
		case "p":
			return m.enterPaymentMode()
		case "x":
			return m.enterExecutionMode()
		case "s":
			m.statusFilterIdx = (m.statusFilterIdx + 1) % len(statusFilters)
			m.filter.Status = statusFilters[m.statusFilterIdx]

			return m, m.loadOpsCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m OperationsModel) selectedOperation() *operation.Operation {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.ops) {
		return nil
	}

	return m.ops[idx]
}

func (m OperationsModel) enterPaymentMode() (tea.Model, tea.Cmd) {
	if m.selectedOperation() == nil {
		return m, nil
	}

	m.formAmount = ""
	m.formType = string(operation.PaymentCash)
	m.formCheck = ""
	m.formBank = ""
	m.formNotes = ""

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("amount").
				Title("Amount").
				Placeholder("1500.00").
				Value(&m.formAmount).
				Validate(validateAmount),

			huh.NewSelect[string]().
				Key("type").
				Title("Payment Type").
				Options(
					huh.NewOption("Cash", string(operation.PaymentCash)),
					huh.NewOption("Check", string(operation.PaymentCheck)),
				).
				Value(&m.formType),

			huh.NewInput().
				Key("check_number").
				Title("Check Number").
				Value(&m.formCheck),

			huh.NewInput().
				Key("bank").
				Title("Bank").
				Value(&m.formBank),

			huh.NewInput().
				Key("notes").
				Title("Notes").
				Value(&m.formNotes),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = operationsStatePayment
	m.table.Blur()

	return m, m.form.Init()
}

func (m OperationsModel) enterExecutionMode() (tea.Model, tea.Cmd) {
	op := m.selectedOperation()
	if op == nil || len(op.Items) == 0 {
		return m, nil
	}

	options := make([]huh.Option[string], len(op.Items))
	for i, item := range op.Items {
		label := fmt.Sprintf("%s  %s (%s)", item.Code, item.Description, FormatPct(item.ExecutionPercentage))
		options[i] = huh.NewOption(label, item.ID.String())
	}

	m.formItemID = op.Items[0].ID.String()
	m.formPct = ""

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("item").
				Title("Item").
				Options(options...).
				Value(&m.formItemID),

			huh.NewInput().
				Key("pct").
				Title("Execution %").
				Placeholder("0-100").
				Value(&m.formPct).
				Validate(validatePct),
		),
	).WithWidth(60).WithShowHelp(false)

	m.state = operationsStateExecution
	m.table.Blur()

	return m, m.form.Init()
}

func (m OperationsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = operationsStateBrowse
			m.form = nil
			m.table.Focus()

			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.state == operationsStatePayment {
		return m, m.savePaymentCmd()
	}

	return m, m.saveExecutionCmd()
}

func (m OperationsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading operations...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	header := fmt.Sprintf("Filter: [s] Status: %s", activeStyle(statusFilterLabels[m.statusFilterIdx]))

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state != operationsStateBrowse && m.form != nil {
		title := "Record Payment"
		if m.state == operationsStateExecution {
			title = "Set Item Execution"
		}

		opName := ""
		if op := m.selectedOperation(); op != nil {
			opName = fmt.Sprintf("%s %s", op.Code, op.Name)
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(64).
			Render(fmt.Sprintf("%s\n\n%s\n\n%s", title, opName, m.form.View()))

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *OperationsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.ops))

	for _, op := range m.ops {
		sum := operation.Summarize(op)

		rows = append(rows, table.Row{
			op.Code,
			op.Name,
			m.clientNames[op.ClientID],
			string(sum.Status),
			FormatAmount(sum.ContractTotal),
			FormatPct(sum.ExecutionPct),
			FormatAmount(sum.NetDue),
		})
	}

	m.table.SetRows(rows)
}

func validateAmount(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v <= 0 {
		return fmt.Errorf("enter a positive amount")
	}

	return nil
}

func validatePct(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 || v > 100 {
		return fmt.Errorf("enter a percentage between 0 and 100")
	}

	return nil
}

func parseMinorUnits(s string) int64 {
	v, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return int64(v*100 + 0.5)
}

// Messages

type operationsLoadedMsg struct {
	ops         []*operation.Operation
	clientNames map[uuid.UUID]string
	err         error
}

func (m OperationsModel) loadOpsCmd() tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		ops, _, err := m.opService.List(ctx, filter)
		if err != nil {
			return operationsLoadedMsg{err: err}
		}

		clients, err := m.clientService.List(ctx, client.ListFilter{})
		if err != nil {
			return operationsLoadedMsg{err: err}
		}

		names := make(map[uuid.UUID]string, len(clients))
		for _, c := range clients {
			names[c.ID] = c.Name
		}

		return operationsLoadedMsg{ops: ops, clientNames: names}
	}
}

type operationSavedMsg struct {
	err error
}

func (m OperationsModel) savePaymentCmd() tea.Cmd {
	op := m.selectedOperation()
	if op == nil {
		return nil
	}

	params := operation.PaymentParams{
		Type:        operation.PaymentType(m.formType),
		Amount:      parseMinorUnits(m.formAmount),
		Date:        time.Now().UTC(),
		CheckNumber: m.formCheck,
		Bank:        m.formBank,
		Notes:       m.formNotes,
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, err := m.opService.AddPayment(ctx, op.ID, params)

		return operationSavedMsg{err: err}
	}
}

func (m OperationsModel) saveExecutionCmd() tea.Cmd {
	op := m.selectedOperation()
	if op == nil {
		return nil
	}

	itemID, err := uuid.Parse(m.formItemID)
	if err != nil {
		return func() tea.Msg { return operationSavedMsg{err: err} }
	}

	pct, _ := strconv.ParseFloat(strings.TrimSpace(m.formPct), 64)

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, err := m.opService.SetItemExecution(ctx, op.ID, itemID, pct)

		return operationSavedMsg{err: err}
	}
}
