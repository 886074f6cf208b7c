package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/m-cagatin/rfmclothingshop/internal/order"
	"github.com/m-cagatin/rfmclothingshop/internal/payment"
	"github.com/m-cagatin/rfmclothingshop/internal/user"
)

// pendingPayment pairs a payment with the order it pays toward.
type pendingPayment struct {
	payment *payment.Payment
	order   *order.Order
}

// PaymentReviewModel walks the pending GCash payments one at a time.
type PaymentReviewModel struct {
	paymentService *payment.Service
	orderService   *order.Service
	userService    *user.Service
	accountID      int64

	queue      []pendingPayment
	current    *pendingPayment
	totalCount int
	approved   int
	rejected   int

	loading bool
	busy    bool
	status  string
	err     error
}

func NewPaymentReviewModel(paymentSvc *payment.Service, orderSvc *order.Service, userSvc *user.Service, accountID int64) PaymentReviewModel {
	return PaymentReviewModel{
		paymentService: paymentSvc,
		orderService:   orderSvc,
		userService:    userSvc,
		accountID:      accountID,
		loading:        true,
	}
}

func (m PaymentReviewModel) Title() string { return "Review Payments" }

func (m PaymentReviewModel) ShortHelp() string {
	return "a: approve | r: reject | s: skip | Esc: back"
}

func (m PaymentReviewModel) Init() tea.Cmd {
	return m.loadPendingCmd()
}

func (m PaymentReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}

		if m.loading || m.busy || m.current == nil {
			return m, nil
		}

		switch msg.String() {
		case "a":
			m.busy = true
			return m, m.verifyCmd(true)
		case "r":
			m.busy = true
			return m, m.verifyCmd(false)
		case "s":
			m.nextPayment()
		}

	case loadPendingPaymentsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.queue = msg.items
		m.totalCount = len(m.queue)
		m.nextPayment()

	case verifyResultMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		if msg.approved {
			m.approved++
		} else {
			m.rejected++
		}

		m.nextPayment()
		m.status = msg.message + " | " + m.status
	}

	return m, nil
}

func (m *PaymentReviewModel) nextPayment() {
	if len(m.queue) == 0 {
		m.current = nil
		m.status = "No more pending payments."

		return
	}

	m.current = &m.queue[0]
	m.queue = m.queue[1:]
	m.status = fmt.Sprintf("Reviewing %d/%d", m.totalCount-len(m.queue), m.totalCount)
}

func (m PaymentReviewModel) View() string {
	style := lipgloss.NewStyle().Padding(2)

	if m.loading {
		return style.Render("Loading pending payments...")
	}

	var b strings.Builder

	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n")
	}

	if m.current == nil {
		b.WriteString(m.status)
		fmt.Fprintf(&b, "\n\nApproved: %d  Rejected: %d\n\n(Esc to back)", m.approved, m.rejected)

		return style.Render(b.String())
	}

	p := m.current.payment
	o := m.current.order

	b.WriteString(faintStyle.Render(m.status) + "\n\n")
	fmt.Fprintf(&b, "Order:      %s\n", o.Ref)
	fmt.Fprintf(&b, "Customer:   %s\n", o.Customer.Name)
	fmt.Fprintf(&b, "Total:      %s\n\n", FormatAmount(o.Total))
	fmt.Fprintf(&b, "Type:       %s\n", p.Type)
	fmt.Fprintf(&b, "Amount:     %s\n", FormatAmount(p.AmountPaid))
	fmt.Fprintf(&b, "Remaining:  %s\n", FormatAmount(p.RemainingBalance))
	fmt.Fprintf(&b, "GCash ref:  %s\n", activeStyle(p.ReferenceNumber))
	fmt.Fprintf(&b, "Submitted:  %s\n", p.CreatedAt.Format("2006-01-02 15:04"))

	if m.busy {
		b.WriteString("\nSaving...")
	} else {
		b.WriteString("\n(a: approve, r: reject, s: skip, Esc: back)")
	}

	return style.Render(b.String())
}

type loadPendingPaymentsMsg struct {
	items []pendingPayment
	err   error
}

func (m PaymentReviewModel) loadPendingCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		ps, err := m.paymentService.List(ctx, payment.ListFilter{Status: new(payment.StatusPending)})
		if err != nil {
			return loadPendingPaymentsMsg{err: err}
		}

		items := make([]pendingPayment, 0, len(ps))
		for _, p := range ps {
			o, err := m.orderService.Get(ctx, p.OrderID)
			if err != nil {
				return loadPendingPaymentsMsg{err: fmt.Errorf("loading order of payment %d: %w", p.ID, err)}
			}

			items = append(items, pendingPayment{payment: p, order: o})
		}

		return loadPendingPaymentsMsg{items: items}
	}
}

type verifyResultMsg struct {
	approved bool
	message  string
	err      error
}

func (m PaymentReviewModel) verifyCmd(approve bool) tea.Cmd {
	paymentID := m.current.payment.ID

	return func() tea.Msg {
		if m.accountID == 0 {
			return verifyResultMsg{err: fmt.Errorf("CONSOLE_ACCOUNT_ID is not set")}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		verifierID, err := m.userService.ResolveVerifier(ctx, m.accountID)
		if err != nil {
			return verifyResultMsg{err: err}
		}

		var res *payment.VerifyResult
		if approve {
			res, err = m.paymentService.Approve(ctx, paymentID, verifierID)
		} else {
			res, err = m.paymentService.Reject(ctx, paymentID, verifierID)
		}

		if err != nil {
			return verifyResultMsg{err: err}
		}

		return verifyResultMsg{approved: approve, message: res.Message}
	}
}
