package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/mecdoors/siteledger/internal/auth"
	authStore "github.com/mecdoors/siteledger/internal/auth/store"
	"github.com/mecdoors/siteledger/internal/client"
	clientStore "github.com/mecdoors/siteledger/internal/client/store"
	"github.com/mecdoors/siteledger/internal/config"
	"github.com/mecdoors/siteledger/internal/database"
	"github.com/mecdoors/siteledger/internal/export"
	siteHttp "github.com/mecdoors/siteledger/internal/http"
	authHandler "github.com/mecdoors/siteledger/internal/http/auth"
	clientHandler "github.com/mecdoors/siteledger/internal/http/client"
	exportHandler "github.com/mecdoors/siteledger/internal/http/export"
	operationHandler "github.com/mecdoors/siteledger/internal/http/operation"
	reportHandler "github.com/mecdoors/siteledger/internal/http/report"
	saleHandler "github.com/mecdoors/siteledger/internal/http/sale"
	"github.com/mecdoors/siteledger/internal/migrate"
	"github.com/mecdoors/siteledger/internal/operation"
	operationStore "github.com/mecdoors/siteledger/internal/operation/store"
	"github.com/mecdoors/siteledger/internal/report"
	"github.com/mecdoors/siteledger/internal/sale"
	saleStore "github.com/mecdoors/siteledger/internal/sale/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := migrate.Migrate(db, migrate.DriverPostgres); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	adminHash, err := bcrypt.GenerateFromPassword([]byte(cfg.Seed.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("failed to hash admin password", "error", err)
		os.Exit(1)
	}

	if err := migrate.SeedAdmin(db, string(adminHash)); err != nil {
		slog.Error("failed to seed admin user", "error", err)
		os.Exit(1)
	}

	var (
		operations = operationStore.New(db)
		clients    = clientStore.New(db)
		sales      = saleStore.New(db)
		users      = authStore.New(db)
	)

	var (
		operationService = operation.NewService(operations)
		clientService    = client.NewService(clients)
		saleService      = sale.NewService(sales)
		authService      = auth.NewService(users, cfg.Auth.JWTSecret)
		reportService    = report.NewService(operations, clients)
		exportService    = export.NewService(operations, clients, sales, reportService)
	)

	var (
		authH      = authHandler.NewHandler(authService)
		clientH    = clientHandler.NewHandler(clientService)
		operationH = operationHandler.NewHandler(operationService, reportService)
		saleH      = saleHandler.NewHandler(saleService)
		reportH    = reportHandler.NewHandler(reportService)
		exportH    = exportHandler.NewHandler(exportService)
	)

	router := siteHttp.New(authService, authH, clientH, operationH, saleH, reportH, exportH)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
