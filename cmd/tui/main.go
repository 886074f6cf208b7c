package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/m-cagatin/rfmclothingshop/cmd/tui/internal/view"
	"github.com/m-cagatin/rfmclothingshop/internal/cashflow"
	cashflowStore "github.com/m-cagatin/rfmclothingshop/internal/cashflow/store"
	"github.com/m-cagatin/rfmclothingshop/internal/config"
	"github.com/m-cagatin/rfmclothingshop/internal/database"
	"github.com/m-cagatin/rfmclothingshop/internal/export"
	"github.com/m-cagatin/rfmclothingshop/internal/importer"
	"github.com/m-cagatin/rfmclothingshop/internal/matching"
	matchingStore "github.com/m-cagatin/rfmclothingshop/internal/matching/store"
	"github.com/m-cagatin/rfmclothingshop/internal/order"
	orderStore "github.com/m-cagatin/rfmclothingshop/internal/order/store"
	"github.com/m-cagatin/rfmclothingshop/internal/payment"
	paymentStore "github.com/m-cagatin/rfmclothingshop/internal/payment/store"
	"github.com/m-cagatin/rfmclothingshop/internal/user"
	userStore "github.com/m-cagatin/rfmclothingshop/internal/user/store"
)

type model struct {
	cashflowService *cashflow.Service
	orderService    *order.Service
	paymentService  *payment.Service
	userService     *user.Service
	matchingService *matching.Service
	importService   *importer.Service
	exportService   *export.Service
	accountID       int64

	currentView View

	paymentsView view.PaymentReviewModel
	ledgerView   view.LedgerModel
	reportView   view.ReportModel
	importView   view.ImportModel
	exportView   view.ExportModel
}

type View int

const (
	ViewMenu     View = 0
	ViewPayments View = 1
	ViewLedger   View = 2
	ViewReport   View = 3
	ViewImport   View = 4
	ViewExport   View = 5
)

func initialModel() model {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	loc, err := cfg.Location()
	if err != nil {
		slog.Error("failed to load timezone", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	cashflowSvc := cashflow.NewService(cashflowStore.New(db), loc)
	orderSvc := order.NewService(orderStore.New(db))
	userSvc := user.NewService(userStore.New(db), user.TokenConfig{Secret: cfg.Auth.JWTSecret, Issuer: cfg.Auth.Issuer})
	matchSvc := matching.NewService(matchingStore.New(db))
	impSvc := importer.NewService(loc)
	expSvc := export.NewService(cashflowSvc)

	// Ledger postings that fail here are logged; the console does not feed the SQS reconcile queue.
	paySvc := payment.NewService(paymentStore.New(db), orderSvc, cashflowSvc, nil)

	return model{
		cashflowService: cashflowSvc,
		orderService:    orderSvc,
		paymentService:  paySvc,
		userService:     userSvc,
		matchingService: matchSvc,
		importService:   impSvc,
		exportService:   expSvc,
		accountID:       cfg.Console.AccountID,
		currentView:     ViewMenu,
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
				m.currentView = ViewPayments
				m.paymentsView = view.NewPaymentReviewModel(m.paymentService, m.orderService, m.userService, m.accountID)

				return m, m.paymentsView.Init()
			case "2":
				m.currentView = ViewLedger
				m.ledgerView = view.NewLedgerModel(m.cashflowService, m.matchingService)

				return m, m.ledgerView.Init()
			case "3":
				m.currentView = ViewReport
				m.reportView = view.NewReportModel(m.cashflowService, m.exportService)

				return m, m.reportView.Init()
			case "4":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.cashflowService, m.importService, m.matchingService)

				return m, m.importView.Init()
			case "5":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.exportService, m.cashflowService)

				return m, m.exportView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewPayments:
		var newModel tea.Model
		newModel, cmd = m.paymentsView.Update(msg)
		m.paymentsView = newModel.(view.PaymentReviewModel)
	case ViewLedger:
		var newModel tea.Model
		newModel, cmd = m.ledgerView.Update(msg)
		m.ledgerView = newModel.(view.LedgerModel)
	case ViewReport:
		var newModel tea.Model
		newModel, cmd = m.reportView.Update(msg)
		m.reportView = newModel.(view.ReportModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"RFM Clothing Shop Console\n\n" +
				"1. Review Pending Payments\n" +
				"2. Cashflow Ledger\n" +
				"3. Cashflow Report\n" +
				"4. Import GCash Statement\n" +
				"5. Export Cashflow\n\n" +
				"q. Quit",
		)
	case ViewPayments:
		return m.paymentsView.View()
	case ViewLedger:
		return m.ledgerView.View()
	case ViewReport:
		return m.reportView.View()
	case ViewImport:
		return m.importView.View()
	case ViewExport:
		return m.exportView.View()
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
