package order

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/m-cagatin/rfmclothingshop/internal/apperr"
	"github.com/m-cagatin/rfmclothingshop/internal/logging"
)

// Repository persists orders, their customers and the product catalog.
// Customer and product lookups return nil without error when nothing matches.
//
//go:generate mockgen -source=service.go -destination=repository_mock.go -package=order
type Repository interface {
	GetOrder(ctx context.Context, id int64) (*Order, error)
	GetOrderByRef(ctx context.Context, ref string) (*Order, error)
	ListOrders(ctx context.Context, filter ListFilter) ([]*Order, error)
	CreateOrder(ctx context.Context, o *Order) error
	UpdatePaymentState(ctx context.Context, orderID int64, balance decimal.Decimal, paymentID *int64, status Status) error
	UpdateStatus(ctx context.Context, orderID int64, status Status) error

	FindCustomerByEmail(ctx context.Context, email string) (*Customer, error)
	FindCustomerByPhone(ctx context.Context, phone string) (*Customer, error)
	UpdateCustomerEmail(ctx context.Context, customerID int64, email string) error
	CreateCustomer(ctx context.Context, c *Customer) error

	ProductExists(ctx context.Context, id int64) (bool, error)
	FirstProduct(ctx context.Context) (*Product, error)
	CreateProduct(ctx context.Context, p *Product) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type ListFilter struct {
	Status *Status
}

type ItemParams struct {
	ProductID int64
	Name      string
	Size      string
	Quantity  int
	UnitPrice decimal.Decimal
}

// CheckoutParams describes an order created from the first payment submitted against its reference.
type CheckoutParams struct {
	Ref              string
	Customer         CustomerInfo
	Items            []ItemParams
	Total            decimal.Decimal
	BalanceRemaining decimal.Decimal
}

const placeholderProductName = "Custom Apparel"

func (s *Service) Get(ctx context.Context, id int64) (*Order, error) {
	return s.repo.GetOrder(ctx, id)
}

func (s *Service) GetByRef(ctx context.Context, ref string) (*Order, error) {
	return s.repo.GetOrderByRef(ctx, ref)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Order, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, apperr.Validationf("unknown order status %q", *filter.Status)
	}

	return s.repo.ListOrders(ctx, filter)
}

// CreateForCheckout creates an order in payment_pending. The customer is matched by email, then by phone,
// and created as a guest when neither matches. Line items pointing at unknown products are attached to a
// fallback catalog product so checkout is never blocked by a stale product id.
func (s *Service) CreateForCheckout(ctx context.Context, params CheckoutParams) (*Order, error) {
	if err := validateCheckout(params); err != nil {
		return nil, err
	}

	customerID, err := s.resolveCustomer(ctx, params.Customer)
	if err != nil {
		return nil, err
	}

	items, err := s.resolveItems(ctx, params.Items)
	if err != nil {
		return nil, err
	}

	o := &Order{
		Ref:              strings.TrimSpace(params.Ref),
		CustomerID:       customerID,
		Customer:         params.Customer,
		Total:            params.Total,
		BalanceRemaining: params.BalanceRemaining,
		Status:           StatusPaymentPending,
		Items:            items,
	}

	if err := s.repo.CreateOrder(ctx, o); err != nil {
		return nil, err
	}

	return o, nil
}

func (s *Service) UpdatePaymentState(ctx context.Context, orderID int64, balance decimal.Decimal, paymentID *int64, status Status) error {
	return s.repo.UpdatePaymentState(ctx, orderID, balance, paymentID, status)
}

// UpdateStatus moves an order to another board column.
func (s *Service) UpdateStatus(ctx context.Context, ref string, status Status) (*Order, error) {
	if !status.Valid() {
		return nil, apperr.Validationf("unknown order status %q", status)
	}

	o, err := s.repo.GetOrderByRef(ctx, ref)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, o.ID, status); err != nil {
		return nil, err
	}

	o.Status = status

	return o, nil
}

func validateCheckout(params CheckoutParams) error {
	if strings.TrimSpace(params.Ref) == "" {
		return apperr.Validation("order reference is required")
	}

	if strings.TrimSpace(params.Customer.Name) == "" {
		return apperr.Validation("customer name is required")
	}

	if len(params.Items) == 0 {
		return apperr.Validation("order items are required")
	}

	if !params.Total.IsPositive() {
		return apperr.Validation("total must be greater than 0")
	}

	if !params.Total.Equal(params.Total.Round(2)) {
		return apperr.Validation("total must have at most 2 decimal places")
	}

	for i, it := range params.Items {
		if it.Quantity < 1 {
			return apperr.Validationf("item %d: quantity must be at least 1", i+1)
		}

		if !it.UnitPrice.Equal(it.UnitPrice.Round(2)) {
			return apperr.Validationf("item %d: price must have at most 2 decimal places", i+1)
		}
	}

	return nil
}

func (s *Service) resolveCustomer(ctx context.Context, info CustomerInfo) (int64, error) {
	email := strings.TrimSpace(info.Email)
	phone := strings.TrimSpace(info.Phone)

	if email != "" {
		c, err := s.repo.FindCustomerByEmail(ctx, email)
		if err != nil {
			return 0, err
		}

		if c != nil {
			return c.ID, nil
		}
	}

	if phone != "" {
		c, err := s.repo.FindCustomerByPhone(ctx, phone)
		if err != nil {
			return 0, err
		}

		if c != nil {
			if email != "" && !strings.EqualFold(c.Email, email) {
				if err := s.repo.UpdateCustomerEmail(ctx, c.ID, email); err != nil {
					logging.FromContext(ctx).Warn("failed to update customer email",
						"customer_id", c.ID, "error", err)
				}
			}

			return c.ID, nil
		}
	}

	guest := &Customer{
		Name:         strings.TrimSpace(info.Name),
		Email:        email,
		Phone:        phone,
		Address:      info.Address,
		PasswordHash: GuestPasswordHash,
	}
	if err := s.repo.CreateCustomer(ctx, guest); err != nil {
		return 0, err
	}

	return guest.ID, nil
}

func (s *Service) resolveItems(ctx context.Context, params []ItemParams) ([]Item, error) {
	var fallback *Product

	items := make([]Item, len(params))

	for i, p := range params {
		productID := p.ProductID

		exists := false
		if productID != 0 {
			ok, err := s.repo.ProductExists(ctx, productID)
			if err != nil {
				return nil, err
			}

			exists = ok
		}

		if !exists {
			if fallback == nil {
				fb, err := s.fallbackProduct(ctx)
				if err != nil {
					return nil, err
				}

				fallback = fb
			}

			logging.FromContext(ctx).Warn("substituting fallback product for order item",
				"requested_product_id", p.ProductID, "fallback_product_id", fallback.ID)

			productID = fallback.ID
		}

		name := strings.TrimSpace(p.Name)
		if name == "" && fallback != nil && productID == fallback.ID {
			name = fallback.Name
		}

		items[i] = Item{
			ProductID: productID,
			Name:      name,
			Size:      p.Size,
			Quantity:  p.Quantity,
			UnitPrice: p.UnitPrice,
		}
	}

	return items, nil
}

func (s *Service) fallbackProduct(ctx context.Context) (*Product, error) {
	p, err := s.repo.FirstProduct(ctx)
	if err != nil {
		return nil, err
	}

	if p != nil {
		return p, nil
	}

	p = &Product{Name: placeholderProductName, Price: decimal.Zero}
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}
