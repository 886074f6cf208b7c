package cashflow

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/m-cagatin/rfmclothingshop/internal/apperr"
	"github.com/m-cagatin/rfmclothingshop/internal/cashflow"
	"github.com/m-cagatin/rfmclothingshop/internal/http/render"
	"github.com/m-cagatin/rfmclothingshop/internal/logging"
)

type Handler struct {
	svc *cashflow.Service
	now func() time.Time
}

func NewHandler(svc *cashflow.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/money-in", h.moneyIn)
	r.Post("/money-out", h.moneyOut)

	r.Get("/report", h.report)
	r.Get("/report/daily", h.dailyReport)
	r.Get("/report/weekly", h.weeklyReport)
	r.Get("/report/monthly", h.monthlyReport)

	r.Delete("/reset/all", h.reset)

	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type moneyRequest struct {
	Description     string           `json:"description" validate:"required"`
	Amount          *decimal.Decimal `json:"amount" validate:"required"`
	Category        string           `json:"category"`
	Vendor          string           `json:"vendor"`
	PaymentMethod   string           `json:"paymentMethod"`
	Date            string           `json:"date"`
	ReferenceNumber string           `json:"referenceNumber"`
}

type moneyOutRequest struct {
	moneyRequest
	Category string `json:"category" validate:"required"`
}

func (h *Handler) moneyIn(w http.ResponseWriter, r *http.Request) {
	var req moneyRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	params, err := h.moneyParams(req)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	e, err := h.svc.AddMoneyIn(r.Context(), params)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, r, http.StatusCreated, toResponse(e))
}

func (h *Handler) moneyOut(w http.ResponseWriter, r *http.Request) {
	var req moneyOutRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	req.moneyRequest.Category = req.Category

	params, err := h.moneyParams(req.moneyRequest)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	e, err := h.svc.AddMoneyOut(r.Context(), params)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, r, http.StatusCreated, toResponse(e))
}

func (h *Handler) moneyParams(req moneyRequest) (cashflow.MoneyParams, error) {
	params := cashflow.MoneyParams{
		Description:     req.Description,
		Amount:          *req.Amount,
		Category:        req.Category,
		Vendor:          req.Vendor,
		PaymentMethod:   req.PaymentMethod,
		ReferenceNumber: req.ReferenceNumber,
	}

	if req.Date != "" {
		date, _, err := render.ParseTime(req.Date, h.svc.Location())
		if err != nil {
			return cashflow.MoneyParams{}, apperr.Validationf("date: %v", err)
		}

		params.Date = &date
	}

	return params, nil
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	start, end, err := render.DateRange(r, h.svc.Location())
	if err != nil {
		render.Error(w, r, err)
		return
	}

	h.writeReport(w, r, func() (*cashflow.Report, error) {
		return h.svc.Report(r.Context(), start, end)
	})
}

func (h *Handler) dailyReport(w http.ResponseWriter, r *http.Request) {
	date, err := h.dateParam(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	h.writeReport(w, r, func() (*cashflow.Report, error) {
		return h.svc.DailyReport(r.Context(), date)
	})
}

func (h *Handler) weeklyReport(w http.ResponseWriter, r *http.Request) {
	date, err := h.dateParam(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	h.writeReport(w, r, func() (*cashflow.Report, error) {
		return h.svc.WeeklyReport(r.Context(), date)
	})
}

func (h *Handler) monthlyReport(w http.ResponseWriter, r *http.Request) {
	now := h.now().In(h.svc.Location())
	year, month := now.Year(), int(now.Month())

	if s := r.URL.Query().Get("year"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			render.Error(w, r, apperr.Validationf("year must be a number, got %q", s))
			return
		}

		year = v
	}

	if s := r.URL.Query().Get("month"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			render.Error(w, r, apperr.Validationf("month must be a number, got %q", s))
			return
		}

		month = v
	}

	h.writeReport(w, r, func() (*cashflow.Report, error) {
		return h.svc.MonthlyReport(r.Context(), year, month)
	})
}

func (h *Handler) writeReport(w http.ResponseWriter, r *http.Request, build func() (*cashflow.Report, error)) {
	report, err := build()
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, r, http.StatusOK, toReportResponse(report))
}

// dateParam reads the optional date query parameter, defaulting to today.
func (h *Handler) dateParam(r *http.Request) (time.Time, error) {
	s := r.URL.Query().Get("date")
	if s == "" {
		return h.now(), nil
	}

	date, _, err := render.ParseTime(s, h.svc.Location())
	if err != nil {
		return time.Time{}, apperr.Validationf("date: %v", err)
	}

	return date, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := cashflow.ListFilter{}

	if s := q.Get("startDate"); s != "" {
		t, _, err := render.ParseTime(s, h.svc.Location())
		if err != nil {
			render.Error(w, r, apperr.Validationf("startDate: %v", err))
			return
		}

		filter.StartDate = new(t)
	}

	if s := q.Get("endDate"); s != "" {
		t, err := render.ParseEndTime(s, h.svc.Location())
		if err != nil {
			render.Error(w, r, apperr.Validationf("endDate: %v", err))
			return
		}

		filter.EndDate = new(t)
	}

	if s := q.Get("category"); s != "" {
		filter.Category = new(s)
	}

	if s := q.Get("type"); s != "" {
		filter.Type = new(cashflow.Type(strings.ToLower(s)))
	}

	entries, err := h.svc.List(r.Context(), filter)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, r, http.StatusOK, toResponseList(entries))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := render.IDParam(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	e, err := h.svc.Get(r.Context(), id)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, r, http.StatusOK, toResponse(e))
}

type updateRequest struct {
	Description   *string          `json:"description,omitempty"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	Category      *string          `json:"category,omitempty"`
	Vendor        *string          `json:"vendor,omitempty"`
	PaymentMethod *string          `json:"paymentMethod,omitempty"`
	Date          *string          `json:"date,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := render.IDParam(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	var req updateRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	params := cashflow.UpdateParams{
		Description:   req.Description,
		Amount:        req.Amount,
		Category:      req.Category,
		Vendor:        req.Vendor,
		PaymentMethod: req.PaymentMethod,
	}

	if req.Date != nil {
		date, _, err := render.ParseTime(*req.Date, h.svc.Location())
		if err != nil {
			render.Error(w, r, apperr.Validationf("date: %v", err))
			return
		}

		params.Date = &date
	}

	e, err := h.svc.Update(r.Context(), id, params)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, r, http.StatusOK, toResponse(e))
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := render.IDParam(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, r, http.StatusOK, messageResponse{Message: "Cashflow entry deleted successfully"})
}

type resetResponse struct {
	Message string `json:"message"`
	Deleted int64  `json:"deleted"`
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Reset(r.Context())
	if err != nil {
		render.Error(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Warn("cashflow ledger reset", "deleted", n)

	render.JSON(w, r, http.StatusOK, resetResponse{Message: "All cashflow entries deleted", Deleted: n})
}
