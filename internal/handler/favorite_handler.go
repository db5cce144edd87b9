package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Vmbondar/tourist-telegram-miniapp/internal/middleware"
	"github.com/Vmbondar/tourist-telegram-miniapp/internal/model"
	"github.com/Vmbondar/tourist-telegram-miniapp/internal/repository"
)

// FavoriteServiceInterface はお気に入りハンドラーが必要とするサービスインターフェース。
type FavoriteServiceInterface interface {
	// List はユーザーのお気に入り一覧を観光スポット情報付きで返す。
	List(ctx context.Context, userID int64) ([]repository.FavoriteWithAttraction, error)
	// Add は観光スポットをお気に入りに追加する。
	Add(ctx context.Context, userID, attractionID int64) (*model.Favorite, error)
	// Remove は観光スポットをお気に入りから削除する。
	Remove(ctx context.Context, userID, attractionID int64) error
}

// FavoriteHandler はお気に入り管理のHTTPハンドラー。全操作で認証必須。
type FavoriteHandler struct {
	service FavoriteServiceInterface
}

// NewFavoriteHandler はFavoriteHandlerを生成する。
func NewFavoriteHandler(service FavoriteServiceInterface) *FavoriteHandler {
	return &FavoriteHandler{service: service}
}

// addFavoriteRequest はお気に入り追加リクエストのボディ。
type addFavoriteRequest struct {
	AttractionID int64 `json:"attraction_id"`
}

// favoriteResponse はお気に入り情報のAPIレスポンス。
type favoriteResponse struct {
	ID           int64     `json:"id"`
	AttractionID int64     `json:"attraction_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// favoriteWithAttractionResponse はお気に入りと観光スポット情報を結合したAPIレスポンス。
type favoriteWithAttractionResponse struct {
	ID         int64              `json:"id"`
	CreatedAt  time.Time          `json:"created_at"`
	Attraction attractionResponse `json:"attraction"`
}

// ListFavorites はお気に入り一覧を返す。
// GET /api/favorites
func (h *FavoriteHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.HandleError(w, model.NewUnauthorizedError())
		return
	}

	favorites, err := h.service.List(r.Context(), user.ID)
	if err != nil {
		middleware.HandleError(w, err)
		return
	}

	responses := make([]favoriteWithAttractionResponse, 0, len(favorites))
	for _, f := range favorites {
		responses = append(responses, favoriteWithAttractionResponse{
			ID:        f.ID,
			CreatedAt: f.CreatedAt,
			Attraction: attractionResponse{
				ID:          f.Attraction.ID,
				CityID:      f.Attraction.CityID,
				Name:        f.Attraction.Name,
				Description: f.Attraction.Description,
				Address:     f.Attraction.Address,
				PhotoURL:    f.Attraction.PhotoURL,
				Category:    f.Attraction.Category,
				Rating:      f.Attraction.Rating,
				IsFavorite:  true,
				CreatedAt:   f.Attraction.CreatedAt,
			},
		})
	}
	writeJSON(w, http.StatusOK, responses)
}

// AddFavorite は観光スポットをお気に入りに追加する。
// POST /api/favorites
func (h *FavoriteHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.HandleError(w, model.NewUnauthorizedError())
		return
	}

	var req addFavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.HandleError(w, model.NewValidationError("リクエストボディの解析に失敗しました"))
		return
	}
	if req.AttractionID <= 0 {
		middleware.HandleError(w, model.NewValidationError("attraction_idは正の整数で指定してください"))
		return
	}

	favorite, err := h.service.Add(r.Context(), user.ID, req.AttractionID)
	if err != nil {
		middleware.HandleError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, favoriteResponse{
		ID:           favorite.ID,
		AttractionID: favorite.AttractionID,
		CreatedAt:    favorite.CreatedAt,
	})
}

// RemoveFavorite は観光スポットをお気に入りから削除する。
// DELETE /api/favorites/{attraction_id}
func (h *FavoriteHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.HandleError(w, model.NewUnauthorizedError())
		return
	}

	attractionID, err := pathID(r, "attraction_id")
	if err != nil {
		middleware.HandleError(w, err)
		return
	}

	if err := h.service.Remove(r.Context(), user.ID, attractionID); err != nil {
		middleware.HandleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
