package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/mecdoors/siteledger/internal/client"
)

type clientsState int

const (
	clientsStateBrowse clientsState = iota
	clientsStateAdd
)

type ClientsModel struct {
	CommonModel
	clientService *client.Service

	state   clientsState
	table   table.Model
	clients []*client.Client
	form    *huh.Form

	loading bool
	err     error
	status  string

	// Form bindings
	formName    string
	formType    string
	formPhone   string
	formEmail   string
	formAddress string
}

func NewClientsModel(clientSvc *client.Service) ClientsModel {
	columns := []table.Column{
		{Title: "Name", Width: 30},
		{Title: "Type", Width: 16},
		{Title: "Phone", Width: 16},
		{Title: "Email", Width: 26},
		{Title: "Address", Width: 30},
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

	return ClientsModel{
		clientService: clientSvc,
		table:         t,
	}
}

func (m ClientsModel) Title() string { return "Clients" }
func (m ClientsModel) ShortHelp() string {
	if m.state == clientsStateAdd {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | a: add client | r: refresh"
}

func (m ClientsModel) Init() tea.Cmd {
	return m.loadClientsCmd()
}

func (m ClientsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case clientsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.clients = msg.clients
		m.status = ""
		m.refreshTable()

		return m, nil

	case clientSavedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
		}

		m.state = clientsStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadClientsCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	if m.state == clientsStateBrowse {
		return m.updateBrowse(msg)
	}

	return m.updateAdd(msg)
}

func (m ClientsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadClientsCmd()
		case "a":
			return m.enterAddMode()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ClientsModel) enterAddMode() (tea.Model, tea.Cmd) {
	m.formName = ""
	m.formType = string(client.TypeOwner)
	m.formPhone = ""
	m.formEmail = ""
	m.formAddress = ""

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("name").
				Title("Name").
				Value(&m.formName).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name cannot be empty")
					}

					return nil
				}),

			huh.NewSelect[string]().
				Key("type").
				Title("Type").
				Options(
					huh.NewOption("Owner", string(client.TypeOwner)),
					huh.NewOption("Main Contractor", string(client.TypeMainContractor)),
					huh.NewOption("Consultant", string(client.TypeConsultant)),
				).
				Value(&m.formType),

			huh.NewInput().
				Key("phone").
				Title("Phone").
				Value(&m.formPhone),

			huh.NewInput().
				Key("email").
				Title("Email").
				Value(&m.formEmail),

			huh.NewInput().
				Key("address").
				Title("Address").
				Value(&m.formAddress),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = clientsStateAdd
	m.table.Blur()

	return m, m.form.Init()
}

func (m ClientsModel) updateAdd(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = clientsStateBrowse
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

	return m, m.saveClientCmd()
}

func (m ClientsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading clients...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	content := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	if m.state == clientsStateAdd && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(fmt.Sprintf("Add Client\n\n%s", m.form.View()))

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *ClientsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.clients))
	for _, c := range m.clients {
		rows = append(rows, table.Row{
			c.Name,
			string(c.Type),
			c.Phone,
			c.Email,
			c.Address,
		})
	}

	m.table.SetRows(rows)
}

// Messages

type clientsLoadedMsg struct {
	clients []*client.Client
	err     error
}

func (m ClientsModel) loadClientsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		clients, err := m.clientService.List(ctx, client.ListFilter{})

		return clientsLoadedMsg{clients: clients, err: err}
	}
}

type clientSavedMsg struct {
	err error
}

func (m ClientsModel) saveClientCmd() tea.Cmd {
	params := client.CreateParams{
		Name:    strings.TrimSpace(m.formName),
		Type:    client.Type(m.formType),
		Phone:   m.formPhone,
		Email:   m.formEmail,
		Address: m.formAddress,
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, err := m.clientService.Create(ctx, params)

		return clientSavedMsg{err: err}
	}
}
