package cashflow_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/m-cagatin/rfmclothingshop/internal/cashflow"
	cashflowhttp "github.com/m-cagatin/rfmclothingshop/internal/http/cashflow"
)

func newRouter(t *testing.T) (http.Handler, *cashflow.MockRepository) {
	ctrl := gomock.NewController(t)
	repo := cashflow.NewMockRepository(ctrl)

	r := chi.NewRouter()
	r.Route("/cashflow", cashflowhttp.NewHandler(cashflow.NewService(repo, time.UTC)).Routes)

	return r, repo
}

func TestHandler(t *testing.T) {
	type testCase struct {
		name       string
		method     string
		path       string
		body       string
		setupMock  func(m *cashflow.MockRepository)
		wantStatus int
		check      func(t *testing.T, body map[string]any)
	}

	tests := []testCase{
		{
			name:   "MoneyInDefaultsCategory",
			method: http.MethodPost,
			path:   "/cashflow/money-in",
			body:   `{"description":"Walk-in sale","amount":500,"referenceNumber":"R-1"}`,
			setupMock: func(m *cashflow.MockRepository) {
				m.EXPECT().
					CreateEntry(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, e *cashflow.Entry) error {
						e.ID = 1
						return nil
					})
			},
			wantStatus: http.StatusCreated,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "500", body["amount"])
				assert.Equal(t, "in", body["type"])
				assert.Equal(t, "income", body["category"])
			},
		},
		{
			name:       "MoneyInRejectsNonPositiveAmount",
			method:     http.MethodPost,
			path:       "/cashflow/money-in",
			body:       `{"description":"Walk-in sale","amount":-500}`,
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "amount must be greater than 0", body["error"])
			},
		},
		{
			name:       "MoneyInRequiresAmount",
			method:     http.MethodPost,
			path:       "/cashflow/money-in",
			body:       `{"description":"Walk-in sale"}`,
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "amount is required", body["error"])
			},
		},
		{
			name:   "MoneyOutRewritesIncomeCategory",
			method: http.MethodPost,
			path:   "/cashflow/money-out",
			body:   `{"description":"Vinyl rolls","amount":"250.00","category":"income","date":"2025-03-03"}`,
			setupMock: func(m *cashflow.MockRepository) {
				m.EXPECT().
					CreateEntry(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, e *cashflow.Entry) error {
						assert.Equal(t, cashflow.CategoryGeneral, e.Category)
						assert.True(t, e.Amount.Equal(decimal.NewFromInt(-250)))
						assert.Equal(t, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), e.Date)

						e.ID = 7

						return nil
					})
			},
			wantStatus: http.StatusCreated,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, float64(7), body["id"])
				assert.Equal(t, "out", body["type"])
				assert.Equal(t, "-250", body["amount"])
				assert.Equal(t, "general", body["category"])
			},
		},
		{
			name:       "MoneyOutRequiresCategory",
			method:     http.MethodPost,
			path:       "/cashflow/money-out",
			body:       `{"description":"Vinyl rolls","amount":250}`,
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "category is required", body["error"])
			},
		},
		{
			name:       "ReportRequiresBothDates",
			method:     http.MethodGet,
			path:       "/cashflow/report?startDate=2025-03-01",
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "startDate and endDate are required", body["error"])
			},
		},
		{
			name:   "ReportPlainEndDateCoversWholeDay",
			method: http.MethodGet,
			path:   "/cashflow/report?startDate=2025-03-01&endDate=2025-03-31",
			setupMock: func(m *cashflow.MockRepository) {
				wantEnd := time.Date(2025, 3, 31, 23, 59, 59, int(999*time.Millisecond), time.UTC)

				m.EXPECT().
					ListEntries(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, f cashflow.ListFilter) ([]*cashflow.Entry, error) {
						assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), *f.StartDate)
						assert.Equal(t, wantEnd, *f.EndDate)

						return []*cashflow.Entry{
							{ID: 2, Description: "Order ORD-1", Amount: decimal.NewFromInt(1500)},
							{ID: 1, Description: "Ink", Amount: decimal.NewFromInt(-250)},
						}, nil
					})
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "1500", body["totalMoneyIn"])
				assert.Equal(t, "250", body["totalMoneyOut"])
				assert.Equal(t, "1250", body["netCashflow"])
				assert.Equal(t, float64(2), body["count"])

				txs := body["transactions"].([]any)
				assert.Equal(t, "in", txs[0].(map[string]any)["type"])
				assert.Equal(t, "out", txs[1].(map[string]any)["type"])
			},
		},
		{
			name:   "MonthlyReportAcceptsLeadingZero",
			method: http.MethodGet,
			path:   "/cashflow/report/monthly?year=2024&month=02",
			setupMock: func(m *cashflow.MockRepository) {
				m.EXPECT().
					ListEntries(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, f cashflow.ListFilter) ([]*cashflow.Entry, error) {
						assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), *f.StartDate)
						assert.Equal(t, 29, f.EndDate.Day())

						return nil, nil
					})
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "0", body["netCashflow"])
			},
		},
		{
			name:       "MonthlyReportRejectsMonth13",
			method:     http.MethodGet,
			path:       "/cashflow/report/monthly?year=2025&month=13",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "MonthlyReportZeroPaddedMonth",
			method: http.MethodGet,
			path:   "/cashflow/report/monthly?year=2025&month=08",
			setupMock: func(m *cashflow.MockRepository) {
				m.EXPECT().
					ListEntries(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, f cashflow.ListFilter) ([]*cashflow.Entry, error) {
						assert.Equal(t, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), *f.StartDate)
						assert.Equal(t, 31, f.EndDate.Day())

						return nil, nil
					})
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "MonthlyReportRejectsHexYear",
			method:     http.MethodGet,
			path:       "/cashflow/report/monthly?year=0x7E9&month=1",
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, `year must be a number, got "0x7E9"`, body["error"])
			},
		},
		{
			name:       "ListRejectsUnknownType",
			method:     http.MethodGet,
			path:       "/cashflow?type=sideways",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "ListPassesFilters",
			method: http.MethodGet,
			path:   "/cashflow?type=OUT&category=materials",
			setupMock: func(m *cashflow.MockRepository) {
				m.EXPECT().
					ListEntries(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, f cashflow.ListFilter) ([]*cashflow.Entry, error) {
						assert.Equal(t, cashflow.TypeOut, *f.Type)
						assert.Equal(t, "materials", *f.Category)
						assert.Nil(t, f.StartDate)

						return nil, nil
					})
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "GetRejectsNonNumericID",
			method:     http.MethodGet,
			path:       "/cashflow/abc",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "GetRejectsOctalLookingID",
			method:     http.MethodGet,
			path:       "/cashflow/010",
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, `invalid id "010"`, body["error"])
			},
		},
		{
			name:       "GetRejectsHexID",
			method:     http.MethodGet,
			path:       "/cashflow/0x1A",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "DeleteRejectsOctalLookingID",
			method:     http.MethodDelete,
			path:       "/cashflow/010",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "UpdateRejectsSignedID",
			method:     http.MethodPut,
			path:       "/cashflow/+9",
			body:       `{"amount":300}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "GetNotFound",
			method: http.MethodGet,
			path:   "/cashflow/42",
			setupMock: func(m *cashflow.MockRepository) {
				m.EXPECT().GetEntry(gomock.Any(), int64(42)).Return(nil, cashflow.ErrNotFound)
			},
			wantStatus: http.StatusNotFound,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "cashflow entry not found", body["error"])
			},
		},
		{
			name:   "UpdateKeepsSign",
			method: http.MethodPut,
			path:   "/cashflow/9",
			body:   `{"amount":300}`,
			setupMock: func(m *cashflow.MockRepository) {
				m.EXPECT().GetEntry(gomock.Any(), int64(9)).Return(&cashflow.Entry{
					ID:          9,
					Description: "Ink",
					Category:    "materials",
					Amount:      decimal.NewFromInt(-100),
				}, nil)
				m.EXPECT().
					UpdateEntry(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, e *cashflow.Entry) error {
						assert.True(t, e.Amount.Equal(decimal.NewFromInt(-300)))
						return nil
					})
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "-300", body["amount"])
				assert.Equal(t, "out", body["type"])
			},
		},
		{
			name:   "Delete",
			method: http.MethodDelete,
			path:   "/cashflow/9",
			setupMock: func(m *cashflow.MockRepository) {
				m.EXPECT().DeleteEntry(gomock.Any(), int64(9)).Return(nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "ResetAll",
			method: http.MethodDelete,
			path:   "/cashflow/reset/all",
			setupMock: func(m *cashflow.MockRepository) {
				m.EXPECT().DeleteAll(gomock.Any()).Return(int64(3), nil)
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, float64(3), body["deleted"])
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router, repo := newRouter(t)

			if tc.setupMock != nil {
				tc.setupMock(repo)
			}

			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, tc.wantStatus, rec.Code, rec.Body.String())

			if tc.check != nil {
				var body map[string]any
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				tc.check(t, body)
			}
		})
	}
}
