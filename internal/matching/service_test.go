package matching_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/m-cagatin/rfmclothingshop/internal/apperr"
	"github.com/m-cagatin/rfmclothingshop/internal/cashflow"
	"github.com/m-cagatin/rfmclothingshop/internal/matching"
)

func TestService_Suggest(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := matching.NewMockRepository(ctrl)
	svc := matching.NewService(repo)

	repo.EXPECT().FindCategory(gomock.Any(), "Transfer to MERALCO 0123").Return("utilities", nil)

	got, err := svc.Suggest(context.Background(), "Transfer to MERALCO 0123")
	require.NoError(t, err)
	assert.Equal(t, "utilities", got)

	got, err = svc.Suggest(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestService_Categorize(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := matching.NewMockRepository(ctrl)
	svc := matching.NewService(repo)

	lines := []cashflow.ImportParams{
		{Description: "Transfer to MERALCO 0123"},
		{Description: "Lalamove delivery", Category: "delivery"},
		{Description: "Send money to J. Cruz"},
		{Description: "Unknown merchant"},
	}

	repo.EXPECT().FindCategory(gomock.Any(), "Transfer to MERALCO 0123").Return("utilities", nil)
	repo.EXPECT().FindCategory(gomock.Any(), "Send money to J. Cruz").Return("", errors.New("db down"))
	repo.EXPECT().FindCategory(gomock.Any(), "Unknown merchant").Return("", nil)

	svc.Categorize(context.Background(), lines)

	assert.Equal(t, "utilities", lines[0].Category)
	assert.Equal(t, "delivery", lines[1].Category)
	assert.Empty(t, lines[2].Category)
	assert.Empty(t, lines[3].Category)
}

func TestService_Learn(t *testing.T) {
	type testCase struct {
		name      string
		pattern   string
		category  string
		setupMock func(m *matching.MockRepository)
		wantErr   error
		want      *matching.Rule
	}

	tests := []testCase{
		{
			name:     "NormalizesCategory",
			pattern:  "  meralco ",
			category: " Utilities",
			setupMock: func(m *matching.MockRepository) {
				m.EXPECT().
					CreateRule(gomock.Any(), &matching.Rule{Pattern: "meralco", Category: "utilities"}).
					DoAndReturn(func(_ context.Context, r *matching.Rule) error {
						r.ID = 4
						return nil
					})
			},
			want: &matching.Rule{ID: 4, Pattern: "meralco", Category: "utilities"},
		},
		{
			name:     "MissingCategory",
			pattern:  "meralco",
			category: "",
			wantErr:  apperr.ErrValidation,
		},
		{
			name:     "StoreFailure",
			pattern:  "lalamove",
			category: "delivery",
			setupMock: func(m *matching.MockRepository) {
				m.EXPECT().CreateRule(gomock.Any(), gomock.Any()).Return(errors.New("db down"))
			},
			wantErr: errors.New("db down"),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := matching.NewMockRepository(ctrl)

			if tc.setupMock != nil {
				tc.setupMock(repo)
			}

			rule, err := matching.NewService(repo).Learn(context.Background(), tc.pattern, tc.category)

			if tc.wantErr != nil {
				require.Error(t, err)

				if errors.Is(tc.wantErr, apperr.ErrValidation) {
					assert.ErrorIs(t, err, apperr.ErrValidation)
				} else {
					assert.EqualError(t, err, tc.wantErr.Error())
				}

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, rule)
		})
	}
}
