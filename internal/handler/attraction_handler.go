package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/Vmbondar/tourist-telegram-miniapp/internal/attraction"
	"github.com/Vmbondar/tourist-telegram-miniapp/internal/middleware"
	"github.com/Vmbondar/tourist-telegram-miniapp/internal/model"
	"github.com/Vmbondar/tourist-telegram-miniapp/internal/repository"
)

// AttractionServiceInterface は観光スポットハンドラーが必要とするサービスインターフェース。
type AttractionServiceInterface interface {
	// List は有効な観光スポットをフィルタ・ページネーション付きで返す。
	// viewerがnilでない場合、各スポットにお気に入り状態を付与する。
	List(ctx context.Context, filter repository.AttractionFilter, viewer *model.User) (*attraction.Page, error)
	// Get は指定IDの観光スポットを返す。
	Get(ctx context.Context, id int64, viewer *model.User) (*attraction.WithFavorite, error)
	// Create は観光スポットを新規作成する。
	Create(ctx context.Context, input attraction.Input) (*model.Attraction, error)
	// Update は観光スポット情報を部分更新する。
	Update(ctx context.Context, id int64, input attraction.Input) (*model.Attraction, error)
	// Deactivate は観光スポットを無効化する。
	Deactivate(ctx context.Context, id int64) error
}

// AttractionHandler は観光スポット管理のHTTPハンドラー。
type AttractionHandler struct {
	service AttractionServiceInterface
}

// NewAttractionHandler はAttractionHandlerを生成する。
func NewAttractionHandler(service AttractionServiceInterface) *AttractionHandler {
	return &AttractionHandler{service: service}
}

// attractionRequest は観光スポットの作成・更新リクエストのボディ。
type attractionRequest struct {
	CityID      int64   `json:"city_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Address     string  `json:"address"`
	PhotoURL    string  `json:"photo_url"`
	Category    string  `json:"category"`
	Rating      float64 `json:"rating"`
}

// attractionResponse は観光スポット情報のAPIレスポンス。
// IsFavoriteは認証済みユーザーの閲覧時のみ意味を持ち、匿名閲覧では常にfalse。
type attractionResponse struct {
	ID          int64     `json:"id"`
	CityID      int64     `json:"city_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Address     string    `json:"address"`
	PhotoURL    string    `json:"photo_url"`
	Category    string    `json:"category"`
	Rating      float64   `json:"rating"`
	IsFavorite  bool      `json:"is_favorite"`
	CreatedAt   time.Time `json:"created_at"`
}

// attractionPageResponse は観光スポット一覧のAPIレスポンス。
type attractionPageResponse struct {
	Attractions []attractionResponse `json:"attractions"`
	Total       int                  `json:"total"`
	Page        int                  `json:"page"`
	PageSize    int                  `json:"page_size"`
}

// ListAttractions は観光スポット一覧を返す。
// GET /api/attractions?city_id=&category=&page=&page_size=
func (h *AttractionHandler) ListAttractions(w http.ResponseWriter, r *http.Request) {
	filter, err := parseAttractionFilter(r)
	if err != nil {
		middleware.HandleError(w, err)
		return
	}

	viewer := middleware.OptionalUserFromContext(r.Context())
	page, err := h.service.List(r.Context(), filter, viewer)
	if err != nil {
		middleware.HandleError(w, err)
		return
	}

	responses := make([]attractionResponse, 0, len(page.Attractions))
	for i := range page.Attractions {
		responses = append(responses, toAttractionResponse(&page.Attractions[i]))
	}
	writeJSON(w, http.StatusOK, attractionPageResponse{
		Attractions: responses,
		Total:       page.Total,
		Page:        page.Page,
		PageSize:    page.PageSize,
	})
}

// GetAttraction は観光スポット詳細を返す。
// GET /api/attractions/{id}
func (h *AttractionHandler) GetAttraction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		middleware.HandleError(w, err)
		return
	}

	viewer := middleware.OptionalUserFromContext(r.Context())
	a, err := h.service.Get(r.Context(), id, viewer)
	if err != nil {
		middleware.HandleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAttractionResponse(a))
}

// CreateAttraction は観光スポットを新規作成する。管理者専用。
// POST /api/attractions
func (h *AttractionHandler) CreateAttraction(w http.ResponseWriter, r *http.Request) {
	var req attractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.HandleError(w, model.NewValidationError("リクエストボディの解析に失敗しました"))
		return
	}

	a, err := h.service.Create(r.Context(), toAttractionInput(req))
	if err != nil {
		middleware.HandleError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAttractionResponse(&attraction.WithFavorite{Attraction: *a}))
}

// UpdateAttraction は観光スポット情報を更新する。管理者専用。
// PUT /api/attractions/{id}
func (h *AttractionHandler) UpdateAttraction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		middleware.HandleError(w, err)
		return
	}

	var req attractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.HandleError(w, model.NewValidationError("リクエストボディの解析に失敗しました"))
		return
	}

	a, err := h.service.Update(r.Context(), id, toAttractionInput(req))
	if err != nil {
		middleware.HandleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAttractionResponse(&attraction.WithFavorite{Attraction: *a}))
}

// DeleteAttraction は観光スポットを無効化する。管理者専用。
// DELETE /api/attractions/{id}
func (h *AttractionHandler) DeleteAttraction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		middleware.HandleError(w, err)
		return
	}

	if err := h.service.Deactivate(r.Context(), id); err != nil {
		middleware.HandleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseAttractionFilter はクエリパラメータから絞り込み条件を組み立てる。
// 数値パラメータの形式エラーはバリデーションエラーとして返す。
func parseAttractionFilter(r *http.Request) (repository.AttractionFilter, error) {
	query := r.URL.Query()
	filter := repository.AttractionFilter{
		Category: query.Get("category"),
	}

	if raw := query.Get("city_id"); raw != "" {
		cityID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || cityID <= 0 {
			return filter, model.NewValidationError("city_idは正の整数で指定してください")
		}
		filter.CityID = cityID
	}
	if raw := query.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page <= 0 {
			return filter, model.NewValidationError("pageは正の整数で指定してください")
		}
		filter.Page = page
	}
	if raw := query.Get("page_size"); raw != "" {
		pageSize, err := strconv.Atoi(raw)
		if err != nil || pageSize <= 0 {
			return filter, model.NewValidationError("page_sizeは正の整数で指定してください")
		}
		filter.PageSize = pageSize
	}
	return filter, nil
}

// toAttractionInput はリクエストボディからサービス層の入力に変換する。
func toAttractionInput(req attractionRequest) attraction.Input {
	return attraction.Input{
		CityID:      req.CityID,
		Name:        req.Name,
		Description: req.Description,
		Address:     req.Address,
		PhotoURL:    req.PhotoURL,
		Category:    req.Category,
		Rating:      req.Rating,
	}
}

// toAttractionResponse はattraction.WithFavoriteからAPIレスポンスに変換する。
func toAttractionResponse(a *attraction.WithFavorite) attractionResponse {
	return attractionResponse{
		ID:          a.ID,
		CityID:      a.CityID,
		Name:        a.Name,
		Description: a.Description,
		Address:     a.Address,
		PhotoURL:    a.PhotoURL,
		Category:    a.Category,
		Rating:      a.Rating,
		IsFavorite:  a.IsFavorite,
		CreatedAt:   a.CreatedAt,
	}
}
