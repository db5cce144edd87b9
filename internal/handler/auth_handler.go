// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Vmbondar/tourist-telegram-miniapp/internal/middleware"
	"github.com/Vmbondar/tourist-telegram-miniapp/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Register はEmailとパスワードで新規ユーザーを登録しトークンを発行する。
	Register(ctx context.Context, email, password string) (*model.User, *model.TokenPair, error)
	// Login はEmailとパスワードでログインしトークンを発行する。
	Login(ctx context.Context, email, password string) (*model.User, *model.TokenPair, error)
	// TelegramLogin はTelegram Mini AppのinitDataでログインしトークンを発行する。
	TelegramLogin(ctx context.Context, initData string) (*model.User, *model.TokenPair, error)
	// Refresh はリフレッシュトークンから新しいトークンペアを発行する。
	Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, error)
}

// AuthHandler は認証関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

// registerRequest はユーザー登録リクエストのボディ。
type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginRequest はEmailログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// telegramLoginRequest はTelegramログインリクエストのボディ。
type telegramLoginRequest struct {
	InitData string `json:"init_data"`
}

// refreshRequest はトークン更新リクエストのボディ。
type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// userResponse はユーザー情報のAPIレスポンス。
type userResponse struct {
	ID               int64     `json:"id"`
	Email            string    `json:"email,omitempty"`
	TelegramID       int64     `json:"telegram_id,omitempty"`
	TelegramUsername string    `json:"telegram_username,omitempty"`
	IsAdmin          bool      `json:"is_admin"`
	CreatedAt        time.Time `json:"created_at"`
}

// authResponse は登録・ログイン成功時のAPIレスポンス。
type authResponse struct {
	User   userResponse     `json:"user"`
	Tokens *model.TokenPair `json:"tokens"`
}

// Register は新規ユーザー登録を処理する。
// POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.HandleError(w, model.NewValidationError("リクエストボディの解析に失敗しました"))
		return
	}

	user, tokens, err := h.service.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		middleware.HandleError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{
		User:   toUserResponse(user),
		Tokens: tokens,
	})
}

// Login はEmailログインを処理する。
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.HandleError(w, model.NewValidationError("リクエストボディの解析に失敗しました"))
		return
	}

	user, tokens, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		middleware.HandleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		User:   toUserResponse(user),
		Tokens: tokens,
	})
}

// TelegramLogin はTelegram Mini Appからのログインを処理する。
// 未登録のTelegramユーザーは初回ログイン時に自動登録される。
// POST /api/auth/telegram
func (h *AuthHandler) TelegramLogin(w http.ResponseWriter, r *http.Request) {
	var req telegramLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.HandleError(w, model.NewValidationError("リクエストボディの解析に失敗しました"))
		return
	}

	user, tokens, err := h.service.TelegramLogin(r.Context(), req.InitData)
	if err != nil {
		middleware.HandleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		User:   toUserResponse(user),
		Tokens: tokens,
	})
}

// Refresh はリフレッシュトークンによるトークン更新を処理する。
// POST /api/auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.HandleError(w, model.NewValidationError("リクエストボディの解析に失敗しました"))
		return
	}

	tokens, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		middleware.HandleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokens)
}

// Me は現在のログインユーザー情報を返す。
// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.HandleError(w, model.NewUnauthorizedError())
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// toUserResponse はmodel.UserからAPIレスポンスに変換する。
func toUserResponse(user *model.User) userResponse {
	return userResponse{
		ID:               user.ID,
		Email:            user.Email,
		TelegramID:       user.TelegramID,
		TelegramUsername: user.TelegramUsername,
		IsAdmin:          user.IsAdmin,
		CreatedAt:        user.CreatedAt,
	}
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}
