package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Vmbondar/tourist-telegram-miniapp/internal/city"
	"github.com/Vmbondar/tourist-telegram-miniapp/internal/middleware"
	"github.com/Vmbondar/tourist-telegram-miniapp/internal/model"
)

// CityServiceInterface は都市ハンドラーが必要とするサービスインターフェース。
type CityServiceInterface interface {
	// List は有効な都市の一覧を返す。
	List(ctx context.Context) ([]*model.City, error)
	// Get は指定IDの都市を返す。
	Get(ctx context.Context, id int64) (*model.City, error)
	// Create は都市を新規作成する。
	Create(ctx context.Context, input city.Input) (*model.City, error)
	// Update は都市情報を部分更新する。
	Update(ctx context.Context, id int64, input city.Input) (*model.City, error)
	// Deactivate は都市を無効化する。
	Deactivate(ctx context.Context, id int64) error
}

// CityHandler は都市管理のHTTPハンドラー。
type CityHandler struct {
	service CityServiceInterface
}

// NewCityHandler はCityHandlerを生成する。
func NewCityHandler(service CityServiceInterface) *CityHandler {
	return &CityHandler{service: service}
}

// cityRequest は都市の作成・更新リクエストのボディ。
type cityRequest struct {
	Name    string `json:"name"`
	Country string `json:"country"`
}

// cityResponse は都市情報のAPIレスポンス。
type cityResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
}

// ListCities は有効な都市の一覧を返す。
// GET /api/cities
func (h *CityHandler) ListCities(w http.ResponseWriter, r *http.Request) {
	cities, err := h.service.List(r.Context())
	if err != nil {
		middleware.HandleError(w, err)
		return
	}

	responses := make([]cityResponse, 0, len(cities))
	for _, c := range cities {
		responses = append(responses, toCityResponse(c))
	}
	writeJSON(w, http.StatusOK, responses)
}

// GetCity は都市詳細を返す。
// GET /api/cities/{id}
func (h *CityHandler) GetCity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		middleware.HandleError(w, err)
		return
	}

	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		middleware.HandleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCityResponse(c))
}

// CreateCity は都市を新規作成する。管理者専用。
// POST /api/cities
func (h *CityHandler) CreateCity(w http.ResponseWriter, r *http.Request) {
	var req cityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.HandleError(w, model.NewValidationError("リクエストボディの解析に失敗しました"))
		return
	}

	c, err := h.service.Create(r.Context(), city.Input{Name: req.Name, Country: req.Country})
	if err != nil {
		middleware.HandleError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCityResponse(c))
}

// UpdateCity は都市情報を更新する。管理者専用。
// PUT /api/cities/{id}
func (h *CityHandler) UpdateCity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		middleware.HandleError(w, err)
		return
	}

	var req cityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.HandleError(w, model.NewValidationError("リクエストボディの解析に失敗しました"))
		return
	}

	c, err := h.service.Update(r.Context(), id, city.Input{Name: req.Name, Country: req.Country})
	if err != nil {
		middleware.HandleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCityResponse(c))
}

// DeleteCity は都市を無効化する。管理者専用。
// DELETE /api/cities/{id}
func (h *CityHandler) DeleteCity(w http.ResponseWriter, r *http.Request) {
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

// toCityResponse はmodel.CityからAPIレスポンスに変換する。
func toCityResponse(c *model.City) cityResponse {
	return cityResponse{
		ID:      c.ID,
		Name:    c.Name,
		Country: c.Country,
	}
}

// pathID はURLパスパラメータを数値IDとして取り出す。
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, model.NewValidationError("IDは正の整数で指定してください")
	}
	return id, nil
}
