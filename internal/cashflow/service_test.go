package cashflow_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/m-cagatin/rfmclothingshop/internal/apperr"
	"github.com/m-cagatin/rfmclothingshop/internal/cashflow"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestService_AddMoneyIn(t *testing.T) {
	type testCase struct {
		name         string
		params       cashflow.MoneyParams
		setupMock    func(m *cashflow.MockRepository)
		wantErr      error
		wantAmount   string
		wantCategory string
	}

	tests := []testCase{
		{
			name:   "DefaultsCategoryToIncome",
			params: cashflow.MoneyParams{Description: "Walk-in sale", Amount: dec("250.50"), ReferenceNumber: "GC-1"},
			setupMock: func(m *cashflow.MockRepository) {
				m.EXPECT().
					CreateEntry(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, e *cashflow.Entry) error {
						e.ID = 1
						return nil
					})
			},
			wantAmount:   "250.5",
			wantCategory: cashflow.CategoryIncome,
		},
		{
			name:   "KeepsCategory",
			params: cashflow.MoneyParams{Description: "Order ORD-1", Amount: dec("600"), Category: "sales"},
			setupMock: func(m *cashflow.MockRepository) {
				m.EXPECT().CreateEntry(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantAmount:   "600",
			wantCategory: "sales",
		},
		{
			name:    "EmptyDescription",
			params:  cashflow.MoneyParams{Description: "  ", Amount: dec("10")},
			wantErr: apperr.ErrValidation,
		},
		{
			name:    "ZeroAmount",
			params:  cashflow.MoneyParams{Description: "Nothing", Amount: decimal.Zero},
			wantErr: apperr.ErrValidation,
		},
		{
			name:    "NegativeAmount",
			params:  cashflow.MoneyParams{Description: "Refund", Amount: dec("-5")},
			wantErr: apperr.ErrValidation,
		},
		{
			name:    "RoundsToZero",
			params:  cashflow.MoneyParams{Description: "Rounding", Amount: dec("0.001")},
			wantErr: apperr.ErrValidation,
		},
		{
			name:    "SubCentAmount",
			params:  cashflow.MoneyParams{Description: "Sale", Amount: dec("10.005")},
			wantErr: apperr.ErrValidation,
		},
		{
			name:   "TrailingZerosAccepted",
			params: cashflow.MoneyParams{Description: "Sale", Amount: dec("10.500")},
			setupMock: func(m *cashflow.MockRepository) {
				m.EXPECT().CreateEntry(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantAmount:   "10.5",
			wantCategory: cashflow.CategoryIncome,
		},
		{
			name:   "StoresSourceRef",
			params: cashflow.MoneyParams{Description: "Payment for order ORD-1", Amount: dec("600"), SourceRef: " payment:42 "},
			setupMock: func(m *cashflow.MockRepository) {
				m.EXPECT().
					CreateEntry(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, e *cashflow.Entry) error {
						assert.Equal(t, "payment:42", e.SourceRef)
						return nil
					})
			},
			wantAmount:   "600",
			wantCategory: cashflow.CategoryIncome,
		},
		{
			name:   "AlreadyRecorded",
			params: cashflow.MoneyParams{Description: "Payment for order ORD-1", Amount: dec("600"), SourceRef: "payment:42"},
			setupMock: func(m *cashflow.MockRepository) {
				m.EXPECT().CreateEntry(gomock.Any(), gomock.Any()).Return(cashflow.ErrAlreadyRecorded)
			},
			wantErr: cashflow.ErrAlreadyRecorded,
		},
		{
			name:   "RepoError",
			params: cashflow.MoneyParams{Description: "Sale", Amount: dec("1")},
			setupMock: func(m *cashflow.MockRepository) {
				m.EXPECT().CreateEntry(gomock.Any(), gomock.Any()).Return(errors.New("db error"))
			},
			wantErr: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := cashflow.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := cashflow.NewService(repo, time.UTC)
			got, err := svc.AddMoneyIn(context.Background(), tt.params)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Nil(t, got)

				if errors.Is(tt.wantErr, apperr.ErrValidation) {
					assert.ErrorIs(t, err, apperr.ErrValidation)
				}

				if errors.Is(tt.wantErr, apperr.ErrConflict) {
					assert.ErrorIs(t, err, cashflow.ErrAlreadyRecorded)
				}

				return
			}

			require.NoError(t, err)
			assert.True(t, got.Amount.IsPositive())
			assert.Equal(t, tt.wantAmount, got.Amount.String())
			assert.Equal(t, tt.wantCategory, got.Category)
			assert.Equal(t, cashflow.TypeIn, got.Type())
			assert.False(t, got.Date.IsZero())
		})
	}
}

func TestService_AddMoneyOut(t *testing.T) {
	type testCase struct {
		name         string
		params       cashflow.MoneyParams
		setupMock    func(m *cashflow.MockRepository)
		wantErr      bool
		wantAmount   string
		wantCategory string
	}

	date := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)

	tests := []testCase{
		{
			name:   "StoresNegative",
			params: cashflow.MoneyParams{Description: "Ink refill", Amount: dec("1200"), Category: "supplies", Date: &date},
			setupMock: func(m *cashflow.MockRepository) {
				m.EXPECT().
					CreateEntry(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, e *cashflow.Entry) error {
						assert.Equal(t, date, e.Date)
						return nil
					})
			},
			wantAmount:   "-1200",
			wantCategory: "supplies",
		},
		{
			name:   "IncomeCategoryRewritten",
			params: cashflow.MoneyParams{Description: "Misfiled", Amount: dec("50"), Category: "income"},
			setupMock: func(m *cashflow.MockRepository) {
				m.EXPECT().CreateEntry(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantAmount:   "-50",
			wantCategory: cashflow.CategoryGeneral,
		},
		{
			name:    "MissingCategory",
			params:  cashflow.MoneyParams{Description: "Rent", Amount: dec("5000")},
			wantErr: true,
		},
		{
			name:    "ZeroAmount",
			params:  cashflow.MoneyParams{Description: "Rent", Amount: decimal.Zero, Category: "rent"},
			wantErr: true,
		},
		{
			name:    "SubCentAmount",
			params:  cashflow.MoneyParams{Description: "Thread", Amount: dec("12.345"), Category: "supplies"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := cashflow.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := cashflow.NewService(repo, time.UTC)
			got, err := svc.AddMoneyOut(context.Background(), tt.params)

			if tt.wantErr {
				assert.ErrorIs(t, err, apperr.ErrValidation)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantAmount, got.Amount.String())
			assert.Equal(t, tt.wantCategory, got.Category)
			assert.Equal(t, cashflow.TypeOut, got.Type())
		})
	}
}

func TestService_Update(t *testing.T) {
	type testCase struct {
		name         string
		existing     *cashflow.Entry
		params       cashflow.UpdateParams
		wantErr      error
		wantAmount   string
		wantCategory string
	}

	tests := []testCase{
		{
			name:       "IncomeStaysPositive",
			existing:   &cashflow.Entry{ID: 1, Description: "Sale", Category: "income", Amount: dec("100")},
			params:     cashflow.UpdateParams{Amount: new(dec("-300"))},
			wantAmount: "300", wantCategory: "income",
		},
		{
			name:       "ExpenseStaysNegative",
			existing:   &cashflow.Entry{ID: 2, Description: "Rent", Category: "rent", Amount: dec("-100")},
			params:     cashflow.UpdateParams{Amount: new(dec("250"))},
			wantAmount: "-250", wantCategory: "rent",
		},
		{
			name:       "ExpenseCategoryIncomeRewritten",
			existing:   &cashflow.Entry{ID: 3, Description: "Rent", Category: "rent", Amount: dec("-100")},
			params:     cashflow.UpdateParams{Category: new("income"), Description: new("Office rent")},
			wantAmount: "-100", wantCategory: cashflow.CategoryGeneral,
		},
		{
			name:     "ZeroAmount",
			existing: &cashflow.Entry{ID: 4, Description: "Sale", Category: "income", Amount: dec("100")},
			params:   cashflow.UpdateParams{Amount: new(decimal.Zero)},
			wantErr:  apperr.ErrValidation,
		},
		{
			name:     "SubCentAmount",
			existing: &cashflow.Entry{ID: 6, Description: "Sale", Category: "income", Amount: dec("100")},
			params:   cashflow.UpdateParams{Amount: new(dec("99.999"))},
			wantErr:  apperr.ErrValidation,
		},
		{
			name:     "BlankDescription",
			existing: &cashflow.Entry{ID: 5, Description: "Sale", Category: "income", Amount: dec("100")},
			params:   cashflow.UpdateParams{Description: new(" ")},
			wantErr:  apperr.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := cashflow.NewMockRepository(ctrl)
			repo.EXPECT().GetEntry(gomock.Any(), tt.existing.ID).Return(tt.existing, nil)

			if tt.wantErr == nil {
				repo.EXPECT().UpdateEntry(gomock.Any(), tt.existing).Return(nil)
			}

			svc := cashflow.NewService(repo, time.UTC)
			got, err := svc.Update(context.Background(), tt.existing.ID, tt.params)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantAmount, got.Amount.String())
			assert.Equal(t, tt.wantCategory, got.Category)
		})
	}
}

func TestService_Update_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := cashflow.NewMockRepository(ctrl)
	repo.EXPECT().GetEntry(gomock.Any(), int64(99)).Return(nil, cashflow.ErrNotFound)

	svc := cashflow.NewService(repo, time.UTC)
	_, err := svc.Update(context.Background(), 99, cashflow.UpdateParams{Amount: new(dec("1"))})

	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestService_DeleteAndReset(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := cashflow.NewMockRepository(ctrl)
	repo.EXPECT().DeleteEntry(gomock.Any(), int64(7)).Return(cashflow.ErrNotFound)
	repo.EXPECT().DeleteAll(gomock.Any()).Return(int64(12), nil)

	svc := cashflow.NewService(repo, time.UTC)

	err := svc.Delete(context.Background(), 7)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	n, err := svc.Reset(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)
}

func TestService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := cashflow.NewMockRepository(ctrl)
	svc := cashflow.NewService(repo, time.UTC)

	_, err := svc.List(context.Background(), cashflow.ListFilter{Type: new(cashflow.Type("sideways"))})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	filter := cashflow.ListFilter{Type: new(cashflow.TypeOut), Category: new("rent")}
	repo.EXPECT().
		ListEntries(gomock.Any(), filter).
		Return([]*cashflow.Entry{{ID: 1, Amount: dec("-10")}}, nil)

	got, err := svc.List(context.Background(), filter)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
