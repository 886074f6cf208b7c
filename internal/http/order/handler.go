package order

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/m-cagatin/rfmclothingshop/internal/http/render"
	"github.com/m-cagatin/rfmclothingshop/internal/order"
)

type Handler struct {
	svc *order.Service
}

func NewHandler(svc *order.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{ref}", h.get)
	r.Put("/{ref}/status", h.updateStatus)
}

type customerResponse struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

type itemResponse struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Size      string          `json:"size,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type orderResponse struct {
	ID               int64            `json:"id"`
	OrderID          string           `json:"orderId"`
	Customer         customerResponse `json:"customer"`
	Total            decimal.Decimal  `json:"total"`
	BalanceRemaining decimal.Decimal  `json:"balanceRemaining"`
	Status           order.Status     `json:"status"`
	PaymentID        *int64           `json:"paymentId,omitempty"`
	Items            []itemResponse   `json:"items"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

func toResponse(o *order.Order) orderResponse {
	items := make([]itemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = itemResponse{
			ProductID: it.ProductID,
			Name:      it.Name,
			Size:      it.Size,
			Quantity:  it.Quantity,
			Price:     it.UnitPrice,
		}
	}

	return orderResponse{
		ID:      o.ID,
		OrderID: o.Ref,
		Customer: customerResponse{
			Name:    o.Customer.Name,
			Email:   o.Customer.Email,
			Phone:   o.Customer.Phone,
			Address: o.Customer.Address,
		},
		Total:            o.Total,
		BalanceRemaining: o.BalanceRemaining,
		Status:           o.Status,
		PaymentID:        o.PaymentID,
		Items:            items,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := order.ListFilter{}
	if s := r.URL.Query().Get("status"); s != "" {
		filter.Status = new(order.Status(s))
	}

	orders, err := h.svc.List(r.Context(), filter)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toResponse(o)
	}

	render.JSON(w, r, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.GetByRef(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, r, http.StatusOK, toResponse(o))
}

type updateStatusRequest struct {
	Status order.Status `json:"status" validate:"required"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	o, err := h.svc.UpdateStatus(r.Context(), chi.URLParam(r, "ref"), req.Status)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, r, http.StatusOK, toResponse(o))
}
