package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Vmbondar/tourist-telegram-miniapp/internal/model"
	"github.com/Vmbondar/tourist-telegram-miniapp/internal/repository"
	"github.com/Vmbondar/tourist-telegram-miniapp/internal/security"
)

// TokenDecoder はアクセストークンの復号インターフェース。
type TokenDecoder interface {
	Decode(tokenString string, expected security.TokenClass) *security.SessionClaims
}

// resolutionState はトークン解決の結果種別。
type resolutionState int

const (
	// resolutionAnonymous はトークンが提示されなかったことを表す。
	resolutionAnonymous resolutionState = iota
	// resolutionResolved は有効なユーザーに解決されたことを表す。
	resolutionResolved
	// resolutionRejected はトークンまたはユーザーの状態により拒否されたことを表す。
	resolutionRejected
)

// resolution はトークン解決の結果を表す。
// rejectedの場合はrejectionに拒否理由のAPIErrorが入る。
type resolution struct {
	state     resolutionState
	user      *model.User
	rejection *model.APIError
}

// Resolver はアクセストークンからユーザーを解決する。
type Resolver struct {
	tokens   TokenDecoder
	userRepo repository.UserRepository
}

// NewResolver はResolverを生成する。
func NewResolver(tokens TokenDecoder, userRepo repository.UserRepository) *Resolver {
	return &Resolver{tokens: tokens, userRepo: userRepo}
}

// resolve はトークン解決の一本道。必須・任意の両経路がここを通る。
// ユーザーストアのI/O障害はrejectedではなく第2戻り値のエラーとして区別する。
// 1回の解決につきストア参照は1回だけ行い、結果をキャッシュしない。
func (r *Resolver) resolve(ctx context.Context, rawToken string) (resolution, error) {
	if rawToken == "" {
		return resolution{state: resolutionAnonymous}, nil
	}

	claims := r.tokens.Decode(rawToken, security.TokenClassAccess)
	if claims == nil {
		return resolution{state: resolutionRejected, rejection: model.NewUnauthorizedError()}, nil
	}

	userID, err := claims.UserID()
	if err != nil {
		return resolution{state: resolutionRejected, rejection: model.NewUnauthorizedError()}, nil
	}

	user, err := r.userRepo.FindByID(ctx, userID)
	if err != nil {
		return resolution{}, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return resolution{state: resolutionRejected, rejection: model.NewUnauthorizedError()}, nil
	}
	if !user.IsActive {
		return resolution{state: resolutionRejected, rejection: model.NewInactiveUserError()}, nil
	}

	return resolution{state: resolutionResolved, user: user}, nil
}

// Resolve はトークンを必須としてユーザーを解決する。
// トークン欠落・不正・未知のsubjectはUnauthorized、無効化済みユーザーはForbiddenを返す。
func (r *Resolver) Resolve(ctx context.Context, rawToken string) (*model.User, error) {
	res, err := r.resolve(ctx, rawToken)
	if err != nil {
		return nil, err
	}

	switch res.state {
	case resolutionResolved:
		return res.user, nil
	case resolutionRejected:
		return nil, res.rejection
	default:
		return nil, model.NewUnauthorizedError()
	}
}

// ResolveOptional はトークンを任意としてユーザーを解決する。
// ストア障害を含むあらゆる失敗は匿名（nil）に縮退し、リクエストを拒否しない。
func (r *Resolver) ResolveOptional(ctx context.Context, rawToken string) *model.User {
	res, err := r.resolve(ctx, rawToken)
	if err != nil {
		slog.Warn("optional identity resolution degraded to anonymous", slog.String("error", err.Error()))
		return nil
	}
	if res.state != resolutionResolved {
		return nil
	}
	return res.user
}

// RequireAdmin はユーザーが管理者であることを要求する。
// 管理者でない場合はForbiddenを返す。有効状態の確認はResolverが済ませている。
func RequireAdmin(user *model.User) error {
	if user == nil || !user.IsAdmin {
		return model.NewAdminRequiredError()
	}
	return nil
}
