package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Vmbondar/tourist-telegram-miniapp/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Resolver          middleware.IdentityResolver
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger
	StatusObserver    middleware.StatusObserver
	CORSAllowedOrigin string

	// 運用エンドポイント
	DB             Pinger
	MetricsHandler http.Handler

	// サービス層
	AuthService       AuthServiceInterface
	CityService       CityServiceInterface
	AttractionService AttractionServiceInterface
	FavoriteService   FavoriteServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// 全ルート共通: Recovery → SecurityHeaders → CORS
// 認証エンドポイント: LoginRateLimit → Logging
// 閲覧系（都市・観光スポット）: OptionalAuth → Logging → GeneralRateLimit
// 利用者系（me・お気に入り）: Auth → Logging → GeneralRateLimit
// 管理系: Auth → Admin → Logging → GeneralRateLimit
//
// ロギングは認証の後段に置く。認証ミドルウェアが注入したユーザーIDを
// アクセスログに含めるため。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	logging := middleware.NewLoggingMiddleware(deps.Logger, deps.StatusObserver)
	requireAuth := middleware.NewAuthMiddleware(deps.Resolver)
	optionalAuth := middleware.NewOptionalAuthMiddleware(deps.Resolver)
	requireAdmin := middleware.NewAdminMiddleware()

	authHandler := NewAuthHandler(deps.AuthService)
	cityHandler := NewCityHandler(deps.CityService)
	attractionHandler := NewAttractionHandler(deps.AttractionService)
	favoriteHandler := NewFavoriteHandler(deps.FavoriteService)
	healthHandler := NewHealthHandler(deps.DB)

	// --- 運用エンドポイント ---
	r.Group(func(r chi.Router) {
		r.Use(logging)
		r.Get("/health", healthHandler.Health)
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	})

	// --- 認証エンドポイント（ログイン専用レート制限）---
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.LoginMiddleware())
		r.Use(logging)

		r.Route("/api/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/telegram", authHandler.TelegramLogin)
			r.Post("/refresh", authHandler.Refresh)
		})
	})

	// --- 閲覧系エンドポイント（認証は任意）---
	r.Group(func(r chi.Router) {
		r.Use(optionalAuth)
		r.Use(logging)
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/api/cities", cityHandler.ListCities)
		r.Get("/api/cities/{id}", cityHandler.GetCity)
		r.Get("/api/attractions", attractionHandler.ListAttractions)
		r.Get("/api/attractions/{id}", attractionHandler.GetAttraction)
	})

	// --- 利用者系エンドポイント（認証必須）---
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Use(logging)
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/api/auth/me", authHandler.Me)

		r.Route("/api/favorites", func(r chi.Router) {
			r.Get("/", favoriteHandler.ListFavorites)
			r.Post("/", favoriteHandler.AddFavorite)
			r.Delete("/{attraction_id}", favoriteHandler.RemoveFavorite)
		})
	})

	// --- 管理系エンドポイント（管理者専用）---
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Use(requireAdmin)
		r.Use(logging)
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Post("/api/cities", cityHandler.CreateCity)
		r.Put("/api/cities/{id}", cityHandler.UpdateCity)
		r.Delete("/api/cities/{id}", cityHandler.DeleteCity)

		r.Post("/api/attractions", attractionHandler.CreateAttraction)
		r.Put("/api/attractions/{id}", attractionHandler.UpdateAttraction)
		r.Delete("/api/attractions/{id}", attractionHandler.DeleteAttraction)
	})

	return r
}
