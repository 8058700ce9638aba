package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/mecdoors/siteledger/cmd/tui/internal/view"
	"github.com/mecdoors/siteledger/internal/client"
	clientLocal "github.com/mecdoors/siteledger/internal/client/localstore"
	"github.com/mecdoors/siteledger/internal/config"
	"github.com/mecdoors/siteledger/internal/database"
	"github.com/mecdoors/siteledger/internal/migrate"
	"github.com/mecdoors/siteledger/internal/operation"
	operationLocal "github.com/mecdoors/siteledger/internal/operation/localstore"
	"github.com/mecdoors/siteledger/internal/report"
)

type model struct {
	opService     *operation.Service
	clientService *client.Service
	reportService *report.Service

	currentView View

	dashboardView  view.DashboardModel
	operationsView view.OperationsModel
	clientsView    view.ClientsModel
	reportsView    view.ReportsModel
}

type View int

const (
	ViewMenu       View = 0
	ViewDashboard  View = 1
	ViewOperations View = 2
	ViewClients    View = 3
	ViewReports    View = 4
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.NewSQLite(cfg.Store.SQLitePath)
	if err != nil {
		slog.Error("failed to open local database", "error", err)
		os.Exit(1)
	}

	if err := migrate.Migrate(db, migrate.DriverSQLite); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	operations := operationLocal.New(db)
	clients := clientLocal.New(db)

	opSvc := operation.NewService(operations)
	clientSvc := client.NewService(clients)
	reportSvc := report.NewService(operations, clients)

	return model{
		opService:      opSvc,
		clientService:  clientSvc,
		reportService:  reportSvc,
		currentView:    ViewMenu,
		dashboardView:  view.NewDashboardModel(reportSvc),
		operationsView: view.NewOperationsModel(opSvc, clientSvc),
		clientsView:    view.NewClientsModel(clientSvc),
		reportsView:    view.NewReportsModel(reportSvc),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewDashboard
				m.dashboardView = view.NewDashboardModel(m.reportService)

				return m, m.dashboardView.Init()
			case "2":
				m.currentView = ViewOperations
				m.operationsView = view.NewOperationsModel(m.opService, m.clientService)

				return m, m.operationsView.Init()
			case "3":
				m.currentView = ViewClients
				m.clientsView = view.NewClientsModel(m.clientService)

				return m, m.clientsView.Init()
			case "4":
				m.currentView = ViewReports
				m.reportsView = view.NewReportsModel(m.reportService)

				return m, m.reportsView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewDashboard:
		var newModel tea.Model
		newModel, cmd = m.dashboardView.Update(msg)
		m.dashboardView = newModel.(view.DashboardModel)
	case ViewOperations:
		var newModel tea.Model
		newModel, cmd = m.operationsView.Update(msg)
		m.operationsView = newModel.(view.OperationsModel)
	case ViewClients:
		var newModel tea.Model
		newModel, cmd = m.clientsView.Update(msg)
		m.clientsView = newModel.(view.ClientsModel)
	case ViewReports:
		var newModel tea.Model
		newModel, cmd = m.reportsView.Update(msg)
		m.reportsView = newModel.(view.ReportsModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"SiteLedger TUI\n\n" +
				"1. Dashboard\n" +
				"2. Operations\n" +
				"3. Clients\n" +
				"4. Reports\n\n" +
				"q. Quit",
		)
	case ViewDashboard:
		return m.dashboardView.View()
	case ViewOperations:
		return m.operationsView.View()
	case ViewClients:
		return m.clientsView.View()
	case ViewReports:
		return m.reportsView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
