package payment

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/m-cagatin/rfmclothingshop/internal/apperr"
	"github.com/m-cagatin/rfmclothingshop/internal/http/middleware"
	"github.com/m-cagatin/rfmclothingshop/internal/http/render"
	"github.com/m-cagatin/rfmclothingshop/internal/order"
	"github.com/m-cagatin/rfmclothingshop/internal/payment"
	"github.com/m-cagatin/rfmclothingshop/internal/user"
)

type Handler struct {
	svc   *payment.Service
	users *user.Service
	// submitLimit throttles POST /. Nil disables it.
	submitLimit func(http.Handler) http.Handler
}

func NewHandler(svc *payment.Service, users *user.Service, submitLimit func(http.Handler) http.Handler) *Handler {
	return &Handler{svc: svc, users: users, submitLimit: submitLimit}
}

func (h *Handler) Routes(r chi.Router) {
	r.Group(func(r chi.Router) {
		if h.submitLimit != nil {
			r.Use(h.submitLimit)
		}

		r.Post("/", h.submit)
	})

	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Put("/{id}/approve", h.approve)
	r.Put("/{id}/reject", h.reject)
}

type customerInfoRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type orderItemRequest struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Size      string          `json:"size"`
	Quantity  int             `json:"quantity" validate:"gte=1"`
	Price     decimal.Decimal `json:"price"`
}

type submitRequest struct {
	OrderID         string               `json:"orderId" validate:"required"`
	Amount          *decimal.Decimal     `json:"amount" validate:"required"`
	PaymentType     payment.Type         `json:"paymentType" validate:"required,oneof=partial full"`
	ReferenceNumber string               `json:"referenceNumber" validate:"required"`
	Total           *decimal.Decimal     `json:"total"`
	CustomerInfo    *customerInfoRequest `json:"customerInfo"`
	OrderItems      []orderItemRequest   `json:"orderItems" validate:"omitempty,dive"`
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	params := payment.SubmitParams{
		OrderRef:        req.OrderID,
		Amount:          *req.Amount,
		Type:            req.PaymentType,
		ReferenceNumber: req.ReferenceNumber,
		Total:           req.Total,
	}

	if req.CustomerInfo != nil {
		params.Customer = &order.CustomerInfo{
			Name:    req.CustomerInfo.Name,
			Email:   req.CustomerInfo.Email,
			Phone:   req.CustomerInfo.Phone,
			Address: req.CustomerInfo.Address,
		}
	}

	for _, item := range req.OrderItems {
		params.Items = append(params.Items, order.ItemParams{
			ProductID: item.ProductID,
			Name:      item.Name,
			Size:      item.Size,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
		})
	}

	res, err := h.svc.Submit(r.Context(), params)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, r, http.StatusCreated, toSubmitResponse(res))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := payment.ListFilter{}

	if s := q.Get("status"); s != "" {
		filter.Status = new(payment.Status(s))
	}

	if s := q.Get("paymentMethod"); s != "" {
		filter.Method = new(payment.Method(s))
	}

	if s := q.Get("paymentType"); s != "" {
		filter.Type = new(payment.Type(s))
	}

	ps, err := h.svc.List(r.Context(), filter)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, r, http.StatusOK, toResponseList(ps))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := render.IDParam(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, r, http.StatusOK, toResponse(p))
}

type verifyRequest struct {
	VerifiedBy *int64 `json:"verifiedBy"`
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	id, verifierID, err := h.verification(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	res, err := h.svc.Approve(r.Context(), id, verifierID)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, r, http.StatusOK, toVerifyResponse(res))
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	id, verifierID, err := h.verification(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	res, err := h.svc.Reject(r.Context(), id, verifierID)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, r, http.StatusOK, toVerifyResponse(res))
}

// verification returns the payment id and the directory id of the acting administrator.
// The acting account is verifiedBy from the body, or the bearer token's account when the body has none.
func (h *Handler) verification(r *http.Request) (int64, int64, error) {
	id, err := render.IDParam(r, "id")
	if err != nil {
		return 0, 0, err
	}

	var req verifyRequest
	if err := render.DecodeOptional(r, &req); err != nil {
		return 0, 0, err
	}

	accountID, ok := middleware.AccountIDFromContext(r.Context())
	if req.VerifiedBy != nil {
		accountID, ok = *req.VerifiedBy, true
	}

	if !ok {
		return 0, 0, apperr.Unauthorized("verifiedBy is required")
	}

	verifierID, err := h.users.ResolveVerifier(r.Context(), accountID)
	if err != nil {
		return 0, 0, err
	}

	return id, verifierID, nil
}
