package user_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/m-cagatin/rfmclothingshop/internal/apperr"
	"github.com/m-cagatin/rfmclothingshop/internal/order"
	"github.com/m-cagatin/rfmclothingshop/internal/user"
)

var tokens = user.TokenConfig{Secret: "test-secret", Issuer: "rfm-test", TTL: time.Hour}

func TestService_ResolveVerifier(t *testing.T) {
	admin := &user.Account{ID: 1, Email: "admin@rfm.ph", Name: "Admin", Role: user.RoleAdmin}

	type testCase struct {
		name      string
		accountID int64
		setupMock func(m *user.MockRepository)
		want      int64
		wantErr   error
	}

	tests := []testCase{
		{
			name:      "UnknownAccount",
			accountID: 9,
			setupMock: func(m *user.MockRepository) {
				m.EXPECT().GetAccount(gomock.Any(), int64(9)).Return(nil, user.ErrNotFound)
			},
			wantErr: apperr.ErrUnauthorized,
		},
		{
			name:      "NotAdmin",
			accountID: 2,
			setupMock: func(m *user.MockRepository) {
				m.EXPECT().GetAccount(gomock.Any(), int64(2)).Return(&user.Account{ID: 2, Role: user.RoleStaff}, nil)
			},
			wantErr: apperr.ErrForbidden,
		},
		{
			name:      "ExistingRecord",
			accountID: 1,
			setupMock: func(m *user.MockRepository) {
				m.EXPECT().GetAccount(gomock.Any(), int64(1)).Return(admin, nil)
				m.EXPECT().FindDirectoryRecord(gomock.Any(), int64(1)).Return(&user.DirectoryRecord{ID: 30}, nil)
			},
			want: 30,
		},
		{
			name:      "ProvisionsRecord",
			accountID: 1,
			setupMock: func(m *user.MockRepository) {
				m.EXPECT().GetAccount(gomock.Any(), int64(1)).Return(admin, nil)
				m.EXPECT().FindDirectoryRecord(gomock.Any(), int64(1)).Return(nil, nil)
				m.EXPECT().
					CreateDirectoryRecord(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, r *user.DirectoryRecord) error {
						assert.Equal(t, user.RoleAdmin, r.Role)
						assert.Equal(t, "admin@rfm.ph", r.Email)
						r.ID = 31

						return nil
					})
			},
			want: 31,
		},
		{
			name:      "FallsBackToAnyAdmin",
			accountID: 1,
			setupMock: func(m *user.MockRepository) {
				m.EXPECT().GetAccount(gomock.Any(), int64(1)).Return(admin, nil)
				m.EXPECT().FindDirectoryRecord(gomock.Any(), int64(1)).Return(nil, nil)
				m.EXPECT().CreateDirectoryRecord(gomock.Any(), gomock.Any()).Return(errors.New("duplicate key"))
				m.EXPECT().AnyAdminDirectoryRecord(gomock.Any()).Return(&user.DirectoryRecord{ID: 7}, nil)
			},
			want: 7,
		},
		{
			name:      "NoFallbackAvailable",
			accountID: 1,
			setupMock: func(m *user.MockRepository) {
				m.EXPECT().GetAccount(gomock.Any(), int64(1)).Return(admin, nil)
				m.EXPECT().FindDirectoryRecord(gomock.Any(), int64(1)).Return(nil, nil)
				m.EXPECT().CreateDirectoryRecord(gomock.Any(), gomock.Any()).Return(errors.New("duplicate key"))
				m.EXPECT().AnyAdminDirectoryRecord(gomock.Any()).Return(nil, nil)
			},
			wantErr: errors.New("duplicate key"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := user.NewMockRepository(ctrl)
			tt.setupMock(repo)

			svc := user.NewService(repo, tokens)
			got, err := svc.ResolveVerifier(context.Background(), tt.accountID)

			if tt.wantErr != nil {
				require.Error(t, err)

				if errors.Is(tt.wantErr, apperr.ErrUnauthorized) || errors.Is(tt.wantErr, apperr.ErrForbidden) {
					assert.ErrorIs(t, err, tt.wantErr)
				} else {
					assert.EqualError(t, err, tt.wantErr.Error())
				}

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_LoginAndParseToken(t *testing.T) {
	hash, err := user.HashPassword("correct horse")
	require.NoError(t, err)

	account := &user.Account{ID: 4, Email: "admin@rfm.ph", Role: user.RoleAdmin, PasswordHash: hash}

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := user.NewMockRepository(ctrl)
	repo.EXPECT().GetAccountByEmail(gomock.Any(), "admin@rfm.ph").Return(account, nil).Times(2)
	repo.EXPECT().GetAccountByEmail(gomock.Any(), "nobody@rfm.ph").Return(nil, user.ErrNotFound)

	svc := user.NewService(repo, tokens)

	_, err = svc.Login(context.Background(), "admin@rfm.ph", "wrong")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = svc.Login(context.Background(), "nobody@rfm.ph", "whatever")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = svc.Login(context.Background(), "", "")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	res, err := svc.Login(context.Background(), "admin@rfm.ph", "correct horse")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)

	claims, err := svc.ParseToken(res.Token)
	require.NoError(t, err)

	id, err := claims.AccountID()
	require.NoError(t, err)
	assert.Equal(t, int64(4), id)
	assert.Equal(t, user.RoleAdmin, claims.Role)
}

func TestService_ParseToken_Rejects(t *testing.T) {
	svc := user.NewService(nil, tokens)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, user.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			Issuer:    tokens.Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, err := expired.SignedString([]byte(tokens.Secret))
	require.NoError(t, err)

	_, err = svc.ParseToken(signed)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	assert.EqualError(t, err, "token has expired")

	otherKey, err := jwt.NewWithClaims(jwt.SigningMethodHS256, user.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "1", Issuer: tokens.Issuer},
	}).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	_, err = svc.ParseToken(otherKey)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = svc.ParseToken("not.a.token")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestCheckPasswordHash_GuestPlaceholder(t *testing.T) {
	assert.False(t, user.CheckPasswordHash("", order.GuestPasswordHash))
	assert.False(t, user.CheckPasswordHash("!guest-checkout", order.GuestPasswordHash))
}

func TestService_EnsureAdmin(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := user.NewMockRepository(ctrl)
	repo.EXPECT().GetAccountByEmail(gomock.Any(), "owner@rfm.ph").Return(nil, user.ErrNotFound)
	repo.EXPECT().
		CreateAccount(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, a *user.Account) error {
			assert.Equal(t, user.RoleAdmin, a.Role)
			assert.True(t, user.CheckPasswordHash("s3cret-pass", a.PasswordHash))
			a.ID = 1

			return nil
		})

	svc := user.NewService(repo, tokens)
	got, err := svc.EnsureAdmin(context.Background(), "owner@rfm.ph", "Owner", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)
}
