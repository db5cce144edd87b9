// Package auth は資格情報検証、Telegramログイン、トークン発行のビジネスロジックを提供する。
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"

	"github.com/Vmbondar/tourist-telegram-miniapp/internal/model"
	"github.com/Vmbondar/tourist-telegram-miniapp/internal/repository"
	"github.com/Vmbondar/tourist-telegram-miniapp/internal/security"
)

const minPasswordLength = 8

// TelegramVerifier はTelegram WebApp initDataの署名検証インターフェース。
type TelegramVerifier interface {
	// Validate はinitDataを検証し、成功時はユーザー情報を返す。
	Validate(initData string) (*security.TelegramUser, error)
}

// TokenService はセッショントークンの発行・復号インターフェース。
type TokenService interface {
	// IssuePair はアクセス・リフレッシュトークンの組を発行する。
	IssuePair(user *model.User) (*model.TokenPair, error)
	// Decode はトークンを検証してクレームを返す。失敗時はnilを返す。
	Decode(tokenString string, expected security.TokenClass) *security.SessionClaims
}

// Metrics は認証イベントの計測インターフェース。
type Metrics interface {
	// RecordLogin はログイン試行の結果を記録する。
	// methodは"password"|"telegram"|"refresh"、outcomeは"success"|"failure"。
	RecordLogin(method, outcome string)
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
	verifier TelegramVerifier
	tokens   TokenService
	metrics  Metrics
}

// NewService はServiceを生成する。metricsはnilでもよい。
func NewService(userRepo repository.UserRepository, verifier TelegramVerifier, tokens TokenService, metrics Metrics) *Service {
	return &Service{
		userRepo: userRepo,
		verifier: verifier,
		tokens:   tokens,
		metrics:  metrics,
	}
}

// Register はメールアドレスとパスワードで新規ユーザーを登録し、トークンを発行する。
// メールアドレス重複はConflictエラーとして返る。
func (s *Service) Register(ctx context.Context, email, password string) (*model.User, *model.TokenPair, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, nil, model.NewValidationError("メールアドレスの形式が正しくありません")
	}
	if len(password) < minPasswordLength {
		return nil, nil, model.NewValidationError("パスワードは8文字以上で入力してください")
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	slog.Info("user registered", slog.Int64("user_id", user.ID))
	return user, pair, nil
}

// Login はメールアドレスとパスワードでログインし、トークンを発行する。
// 未登録メールアドレスとパスワード不一致は同一のエラーとして返し、
// 登録済みメールアドレスの存在を露出しない。
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, *model.TokenPair, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil || !security.VerifyPassword(password, user.PasswordHash) {
		s.recordLogin("password", "failure")
		return nil, nil, model.NewInvalidCredentialsError()
	}
	if !user.IsActive {
		s.recordLogin("password", "failure")
		return nil, nil, model.NewInactiveUserError()
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	s.recordLogin("password", "success")
	slog.Info("user logged in", slog.Int64("user_id", user.ID))
	return user, pair, nil
}

// TelegramLogin はTelegram WebApp initDataを検証してログインし、トークンを発行する。
// 未登録のTelegram IDの場合はユーザーを自動作成する。
// 登録済みでユーザー名が変わっている場合は保存済みのユーザー名を更新する。
func (s *Service) TelegramLogin(ctx context.Context, initData string) (*model.User, *model.TokenPair, error) {
	tgUser, err := s.verifier.Validate(initData)
	if err != nil {
		s.recordLogin("telegram", "failure")
		return nil, nil, err
	}
	// userフィールドを含まないinitDataは署名上有効でもログインには使えない
	if tgUser.ID == 0 {
		s.recordLogin("telegram", "failure")
		return nil, nil, model.NewTelegramAuthFailedError()
	}

	user, err := s.userRepo.FindByTelegramID(ctx, tgUser.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find user: %w", err)
	}

	if user == nil {
		user = &model.User{
			TelegramID:       tgUser.ID,
			TelegramUsername: tgUser.Username,
			IsActive:         true,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, nil, err
		}
		slog.Info("telegram user created",
			slog.Int64("user_id", user.ID),
			slog.Int64("telegram_id", tgUser.ID),
		)
	} else {
		if !user.IsActive {
			s.recordLogin("telegram", "failure")
			return nil, nil, model.NewInactiveUserError()
		}
		if user.TelegramUsername != tgUser.Username {
			user.TelegramUsername = tgUser.Username
			if err := s.userRepo.Update(ctx, user); err != nil {
				return nil, nil, fmt.Errorf("failed to update user: %w", err)
			}
		}
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	s.recordLogin("telegram", "success")
	slog.Info("telegram user logged in", slog.Int64("user_id", user.ID))
	return user, pair, nil
}

// Refresh はリフレッシュトークンを検証し、新しいトークンの組を発行する。
// ユーザーの存在と有効状態は発行時点で再確認する。
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, error) {
	claims := s.tokens.Decode(refreshToken, security.TokenClassRefresh)
	if claims == nil {
		s.recordLogin("refresh", "failure")
		return nil, model.NewUnauthorizedError()
	}

	userID, err := claims.UserID()
	if err != nil {
		s.recordLogin("refresh", "failure")
		return nil, model.NewUnauthorizedError()
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		s.recordLogin("refresh", "failure")
		return nil, model.NewUnauthorizedError()
	}
	if !user.IsActive {
		s.recordLogin("refresh", "failure")
		return nil, model.NewInactiveUserError()
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	s.recordLogin("refresh", "success")
	return pair, nil
}

func (s *Service) recordLogin(method, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordLogin(method, outcome)
	}
}
