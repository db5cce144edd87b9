// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Vmbondar/tourist-telegram-miniapp/internal/auth"
	"github.com/Vmbondar/tourist-telegram-miniapp/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userContextKey はリクエストコンテキストに認証済みユーザーを格納するためのキー。
var userContextKey = contextKey("user")

// IdentityResolver はベアラートークンからユーザーを解決するインターフェース。
// auth.Resolverの部分集合として定義する。
type IdentityResolver interface {
	Resolve(ctx context.Context, rawToken string) (*model.User, error)
	ResolveOptional(ctx context.Context, rawToken string) *model.User
}

// bearerToken はAuthorizationヘッダーからベアラートークンを取り出す。
// ヘッダー欠落・スキーム不一致の場合は空文字列を返す。
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// NewAuthMiddleware はベアラートークンを必須とする認証ミドルウェアを返す。
// 解決済みユーザーをリクエストコンテキストに注入する。
// トークン欠落・無効は401、無効化済みユーザーは403を返す。
func NewAuthMiddleware(resolver IdentityResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := resolver.Resolve(r.Context(), bearerToken(r))
			if err != nil {
				HandleError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NewOptionalAuthMiddleware はベアラートークンを任意とする認証ミドルウェアを返す。
// 解決に失敗しても拒否せず、匿名としてそのまま通す。
func NewOptionalAuthMiddleware(resolver IdentityResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := resolver.ResolveOptional(r.Context(), bearerToken(r))
			if user != nil {
				ctx := context.WithValue(r.Context(), userContextKey, user)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NewAdminMiddleware は管理者権限を要求するミドルウェアを返す。
// NewAuthMiddlewareの後に配置する必要がある。
func NewAdminMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := UserFromContext(r.Context())
			if err != nil {
				HandleError(w, model.NewUnauthorizedError())
				return
			}
			if err := auth.RequireAdmin(user); err != nil {
				HandleError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserFromContext はリクエストコンテキストから認証済みユーザーを取得する。
// 認証ミドルウェアを経由していない場合はエラーを返す。
func UserFromContext(ctx context.Context) (*model.User, error) {
	user, ok := ctx.Value(userContextKey).(*model.User)
	if !ok || user == nil {
		return nil, fmt.Errorf("user not found in context")
	}
	return user, nil
}

// OptionalUserFromContext はリクエストコンテキストから認証済みユーザーを取得する。
// 匿名の場合はnilを返す。
func OptionalUserFromContext(ctx context.Context) *model.User {
	user, _ := ctx.Value(userContextKey).(*model.User)
	return user
}

// ContextWithUser はユーザーを格納したコンテキストを返す。テスト用。
func ContextWithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}
