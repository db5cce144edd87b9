package auth

import (
	"context"
	"strconv"

	"github.com/Vmbondar/tourist-telegram-miniapp/internal/model"
	"github.com/Vmbondar/tourist-telegram-miniapp/internal/repository"
	"github.com/Vmbondar/tourist-telegram-miniapp/internal/security"
	"github.com/golang-jwt/jwt/v5"
)

// mockUserRepo は関数フィールドで挙動を差し替えられるUserRepositoryモック。
type mockUserRepo struct {
	findByIDFunc         func(ctx context.Context, id int64) (*model.User, error)
	findByEmailFunc      func(ctx context.Context, email string) (*model.User, error)
	findByTelegramIDFunc func(ctx context.Context, telegramID int64) (*model.User, error)
	createFunc           func(ctx context.Context, user *model.User) error
	updateFunc           func(ctx context.Context, user *model.User) error
}

var _ repository.UserRepository = (*mockUserRepo)(nil)

func (m *mockUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	if m.findByTelegramIDFunc != nil {
		return m.findByTelegramIDFunc(ctx, telegramID)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	user.ID = 1
	return nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *model.User) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, user)
	}
	return nil
}

// mockVerifier はTelegramVerifierモック。
type mockVerifier struct {
	validateFunc func(initData string) (*security.TelegramUser, error)
}

var _ TelegramVerifier = (*mockVerifier)(nil)

func (m *mockVerifier) Validate(initData string) (*security.TelegramUser, error) {
	return m.validateFunc(initData)
}

// mockTokens はTokenServiceモック。
type mockTokens struct {
	issuePairFunc func(user *model.User) (*model.TokenPair, error)
	decodeFunc    func(tokenString string, expected security.TokenClass) *security.SessionClaims
}

var _ TokenService = (*mockTokens)(nil)
var _ TokenDecoder = (*mockTokens)(nil)

func (m *mockTokens) IssuePair(user *model.User) (*model.TokenPair, error) {
	if m.issuePairFunc != nil {
		return m.issuePairFunc(user)
	}
	return &model.TokenPair{AccessToken: "access", RefreshToken: "refresh", TokenType: "bearer"}, nil
}

func (m *mockTokens) Decode(tokenString string, expected security.TokenClass) *security.SessionClaims {
	if m.decodeFunc != nil {
		return m.decodeFunc(tokenString, expected)
	}
	return nil
}

// claimsForUser はテスト用にsubjectだけを持つクレームを作る。
func claimsForUser(userID int64) *security.SessionClaims {
	return &security.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: strconv.FormatInt(userID, 10)},
	}
}

// mockMetrics はログイン試行の記録を捕捉する。
type mockMetrics struct {
	logins []string
}

var _ Metrics = (*mockMetrics)(nil)

func (m *mockMetrics) RecordLogin(method, outcome string) {
	m.logins = append(m.logins, method+":"+outcome)
}
