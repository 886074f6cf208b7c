package order_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/m-cagatin/rfmclothingshop/internal/apperr"
	"github.com/m-cagatin/rfmclothingshop/internal/order"
)

func checkoutParams() order.CheckoutParams {
	return order.CheckoutParams{
		Ref: "ORD-12345678",
		Customer: order.CustomerInfo{
			Name:  "Maria Santos",
			Email: "maria@example.com",
			Phone: "09171234567",
		},
		Items: []order.ItemParams{
			{ProductID: 3, Name: "Jersey", Size: "M", Quantity: 2, UnitPrice: decimal.NewFromInt(500)},
		},
		Total:            decimal.NewFromInt(1000),
		BalanceRemaining: decimal.NewFromInt(400),
	}
}

func TestService_CreateForCheckout(t *testing.T) {
	type testCase struct {
		name      string
		params    func() order.CheckoutParams
		setupMock func(m *order.MockRepository)
		wantErr   error
		check     func(t *testing.T, o *order.Order)
	}

	tests := []testCase{
		{
			name:   "ExistingCustomerByEmail",
			params: checkoutParams,
			setupMock: func(m *order.MockRepository) {
				m.EXPECT().FindCustomerByEmail(gomock.Any(), "maria@example.com").Return(&order.Customer{ID: 11}, nil)
				m.EXPECT().ProductExists(gomock.Any(), int64(3)).Return(true, nil)
				m.EXPECT().
					CreateOrder(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, o *order.Order) error {
						o.ID = 5
						return nil
					})
			},
			check: func(t *testing.T, o *order.Order) {
				assert.Equal(t, int64(5), o.ID)
				assert.Equal(t, int64(11), o.CustomerID)
				assert.Equal(t, order.StatusPaymentPending, o.Status)
				assert.Equal(t, "400", o.BalanceRemaining.String())
				assert.Equal(t, int64(3), o.Items[0].ProductID)
			},
		},
		{
			name:   "PhoneMatchReconcilesEmail",
			params: checkoutParams,
			setupMock: func(m *order.MockRepository) {
				m.EXPECT().FindCustomerByEmail(gomock.Any(), gomock.Any()).Return(nil, nil)
				m.EXPECT().FindCustomerByPhone(gomock.Any(), "09171234567").Return(&order.Customer{ID: 12, Email: "old@example.com"}, nil)
				m.EXPECT().UpdateCustomerEmail(gomock.Any(), int64(12), "maria@example.com").Return(errors.New("unique violation"))
				m.EXPECT().ProductExists(gomock.Any(), int64(3)).Return(true, nil)
				m.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).Return(nil)
			},
			check: func(t *testing.T, o *order.Order) {
				assert.Equal(t, int64(12), o.CustomerID)
			},
		},
		{
			name:   "GuestCustomerAndFallbackProduct",
			params: checkoutParams,
			setupMock: func(m *order.MockRepository) {
				m.EXPECT().FindCustomerByEmail(gomock.Any(), gomock.Any()).Return(nil, nil)
				m.EXPECT().FindCustomerByPhone(gomock.Any(), gomock.Any()).Return(nil, nil)
				m.EXPECT().
					CreateCustomer(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, c *order.Customer) error {
						assert.Equal(t, order.GuestPasswordHash, c.PasswordHash)
						assert.Equal(t, "Maria Santos", c.Name)
						c.ID = 13

						return nil
					})
				m.EXPECT().ProductExists(gomock.Any(), int64(3)).Return(false, nil)
				m.EXPECT().FirstProduct(gomock.Any()).Return(&order.Product{ID: 1, Name: "Tee"}, nil)
				m.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).Return(nil)
			},
			check: func(t *testing.T, o *order.Order) {
				assert.Equal(t, int64(13), o.CustomerID)
				assert.Equal(t, int64(1), o.Items[0].ProductID)
				assert.Equal(t, "Jersey", o.Items[0].Name)
			},
		},
		{
			name: "ZeroProductIDEmptyCatalog",
			params: func() order.CheckoutParams {
				p := checkoutParams()
				p.Customer.Email = ""
				p.Customer.Phone = ""
				p.Items = []order.ItemParams{{Quantity: 1}, {Quantity: 3}}

				return p
			},
			setupMock: func(m *order.MockRepository) {
				m.EXPECT().CreateCustomer(gomock.Any(), gomock.Any()).Return(nil)
				m.EXPECT().FirstProduct(gomock.Any()).Return(nil, nil)
				m.EXPECT().
					CreateProduct(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, p *order.Product) error {
						p.ID = 99
						return nil
					})
				m.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).Return(nil)
			},
			check: func(t *testing.T, o *order.Order) {
				require.Len(t, o.Items, 2)
				assert.Equal(t, int64(99), o.Items[0].ProductID)
				assert.Equal(t, int64(99), o.Items[1].ProductID)
				assert.Equal(t, "Custom Apparel", o.Items[0].Name)
			},
		},
		{
			name: "MissingItems",
			params: func() order.CheckoutParams {
				p := checkoutParams()
				p.Items = nil

				return p
			},
			wantErr: apperr.ErrValidation,
		},
		{
			name: "SubCentTotal",
			params: func() order.CheckoutParams {
				p := checkoutParams()
				p.Total = decimal.RequireFromString("999.999")

				return p
			},
			wantErr: apperr.ErrValidation,
		},
		{
			name: "SubCentUnitPrice",
			params: func() order.CheckoutParams {
				p := checkoutParams()
				p.Items[0].UnitPrice = decimal.RequireFromString("499.995")

				return p
			},
			wantErr: apperr.ErrValidation,
		},
		{
			name: "ZeroTotal",
			params: func() order.CheckoutParams {
				p := checkoutParams()
				p.Total = decimal.Zero

				return p
			},
			wantErr: apperr.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := order.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := order.NewService(repo)
			got, err := svc.CreateForCheckout(context.Background(), tt.params())

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			tt.check(t, got)
		})
	}
}

func TestService_UpdateStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := order.NewMockRepository(ctrl)
	svc := order.NewService(repo)

	_, err := svc.UpdateStatus(context.Background(), "ORD-1", order.Status("lost"))
	assert.ErrorIs(t, err, apperr.ErrValidation)

	repo.EXPECT().GetOrderByRef(gomock.Any(), "ORD-2").Return(nil, order.ErrNotFound)
	_, err = svc.UpdateStatus(context.Background(), "ORD-2", order.StatusDesigning)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	repo.EXPECT().GetOrderByRef(gomock.Any(), "ORD-3").Return(&order.Order{ID: 3, Status: order.StatusPending}, nil)
	repo.EXPECT().UpdateStatus(gomock.Any(), int64(3), order.StatusDesigning).Return(nil)

	got, err := svc.UpdateStatus(context.Background(), "ORD-3", order.StatusDesigning)
	require.NoError(t, err)
	assert.Equal(t, order.StatusDesigning, got.Status)
}

func TestService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := order.NewMockRepository(ctrl)
	svc := order.NewService(repo)

	_, err := svc.List(context.Background(), order.ListFilter{Status: new(order.Status("bogus"))})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	filter := order.ListFilter{Status: new(order.StatusPaymentPending)}
	repo.EXPECT().ListOrders(gomock.Any(), filter).Return([]*order.Order{{ID: 1}}, nil)

	got, err := svc.List(context.Background(), filter)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
