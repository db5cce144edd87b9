package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Vmbondar/tourist-telegram-miniapp/internal/city"
	"github.com/Vmbondar/tourist-telegram-miniapp/internal/model"
)

// mockCityService はCityServiceInterfaceのモック実装。
type mockCityService struct {
	listFn       func(ctx context.Context) ([]*model.City, error)
	getFn        func(ctx context.Context, id int64) (*model.City, error)
	createFn     func(ctx context.Context, input city.Input) (*model.City, error)
	updateFn     func(ctx context.Context, id int64, input city.Input) (*model.City, error)
	deactivateFn func(ctx context.Context, id int64) error
}

func (m *mockCityService) List(ctx context.Context) ([]*model.City, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockCityService) Get(ctx context.Context, id int64) (*model.City, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, model.NewCityNotFoundError(id)
}

func (m *mockCityService) Create(ctx context.Context, input city.Input) (*model.City, error) {
	if m.createFn != nil {
		return m.createFn(ctx, input)
	}
	return nil, nil
}

func (m *mockCityService) Update(ctx context.Context, id int64, input city.Input) (*model.City, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, input)
	}
	return nil, model.NewCityNotFoundError(id)
}

func (m *mockCityService) Deactivate(ctx context.Context, id int64) error {
	if m.deactivateFn != nil {
		return m.deactivateFn(ctx, id)
	}
	return nil
}

func TestCityHandler_ListCities(t *testing.T) {
	svc := &mockCityService{
		listFn: func(ctx context.Context) ([]*model.City, error) {
			return []*model.City{
				{ID: 1, Name: "Москва", Country: "Russia", IsActive: true},
				{ID: 2, Name: "Санкт-Петербург", Country: "Russia", IsActive: true},
			}, nil
		},
	}
	h := NewCityHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/cities", nil)
	w := httptest.NewRecorder()

	h.ListCities(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp []cityResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("len(resp) = %d, want 2", len(resp))
	}
	if resp[0].Name != "Москва" {
		t.Errorf("resp[0].Name = %q, want %q", resp[0].Name, "Москва")
	}
}

func TestCityHandler_ListCities_Empty(t *testing.T) {
	h := NewCityHandler(&mockCityService{})

	req := httptest.NewRequest(http.MethodGet, "/api/cities", nil)
	w := httptest.NewRecorder()

	h.ListCities(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	// 空の場合もnullではなく空配列を返す
	if body := w.Body.String(); body != "[]\n" {
		t.Errorf("body = %q, want %q", body, "[]\n")
	}
}

func TestCityHandler_GetCity_Success(t *testing.T) {
	svc := &mockCityService{
		getFn: func(ctx context.Context, id int64) (*model.City, error) {
			if id != 3 {
				t.Errorf("id = %d, want 3", id)
			}
			return &model.City{ID: 3, Name: "Казань", Country: "Russia", IsActive: true}, nil
		},
	}
	h := NewCityHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/cities/3", nil)
	req = withChiURLParam(req, "id", "3")
	w := httptest.NewRecorder()

	h.GetCity(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestCityHandler_GetCity_NotFound(t *testing.T) {
	h := NewCityHandler(&mockCityService{})

	req := httptest.NewRequest(http.MethodGet, "/api/cities/999", nil)
	req = withChiURLParam(req, "id", "999")
	w := httptest.NewRecorder()

	h.GetCity(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if got := parseErrorBody(t, w)["code"]; got != model.ErrCodeCityNotFound {
		t.Errorf("error code = %q, want %q", got, model.ErrCodeCityNotFound)
	}
}

func TestCityHandler_GetCity_InvalidID(t *testing.T) {
	h := NewCityHandler(&mockCityService{})

	req := httptest.NewRequest(http.MethodGet, "/api/cities/abc", nil)
	req = withChiURLParam(req, "id", "abc")
	w := httptest.NewRecorder()

	h.GetCity(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestCityHandler_CreateCity_Success(t *testing.T) {
	svc := &mockCityService{
		createFn: func(ctx context.Context, input city.Input) (*model.City, error) {
			if input.Name != "Сочи" {
				t.Errorf("input.Name = %q, want %q", input.Name, "Сочи")
			}
			return &model.City{ID: 4, Name: input.Name, Country: "Russia", IsActive: true}, nil
		},
	}
	h := NewCityHandler(svc)

	body := `{"name": "Сочи"}`
	req := httptest.NewRequest(http.MethodPost, "/api/cities", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	h.CreateCity(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}

	var resp cityResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != 4 || resp.Country != "Russia" {
		t.Errorf("resp = %+v, want ID 4 and country Russia", resp)
	}
}

func TestCityHandler_CreateCity_ValidationError(t *testing.T) {
	svc := &mockCityService{
		createFn: func(ctx context.Context, input city.Input) (*model.City, error) {
			return nil, model.NewValidationError("都市名は必須です")
		},
	}
	h := NewCityHandler(svc)

	body := `{"name": ""}`
	req := httptest.NewRequest(http.MethodPost, "/api/cities", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	h.CreateCity(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestCityHandler_UpdateCity_Success(t *testing.T) {
	svc := &mockCityService{
		updateFn: func(ctx context.Context, id int64, input city.Input) (*model.City, error) {
			if id != 2 {
				t.Errorf("id = %d, want 2", id)
			}
			return &model.City{ID: 2, Name: input.Name, Country: "Russia", IsActive: true}, nil
		},
	}
	h := NewCityHandler(svc)

	body := `{"name": "Петербург"}`
	req := httptest.NewRequest(http.MethodPut, "/api/cities/2", bytes.NewBufferString(body))
	req = withChiURLParam(req, "id", "2")
	w := httptest.NewRecorder()

	h.UpdateCity(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestCityHandler_DeleteCity_Success(t *testing.T) {
	deactivated := int64(0)
	svc := &mockCityService{
		deactivateFn: func(ctx context.Context, id int64) error {
			deactivated = id
			return nil
		},
	}
	h := NewCityHandler(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/cities/5", nil)
	req = withChiURLParam(req, "id", "5")
	w := httptest.NewRecorder()

	h.DeleteCity(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if deactivated != 5 {
		t.Errorf("deactivated id = %d, want 5", deactivated)
	}
}

func TestCityHandler_DeleteCity_NotFound(t *testing.T) {
	svc := &mockCityService{
		deactivateFn: func(ctx context.Context, id int64) error {
			return model.NewCityNotFoundError(id)
		},
	}
	h := NewCityHandler(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/cities/999", nil)
	req = withChiURLParam(req, "id", "999")
	w := httptest.NewRecorder()

	h.DeleteCity(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
