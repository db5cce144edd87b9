package attraction

import (
	"context"
	"errors"
	"testing"

	"github.com/Vmbondar/tourist-telegram-miniapp/internal/model"
	"github.com/Vmbondar/tourist-telegram-miniapp/internal/repository"
)

type mockAttractionRepo struct {
	findByIDFunc   func(ctx context.Context, id int64) (*model.Attraction, error)
	listActiveFunc func(ctx context.Context, filter repository.AttractionFilter) ([]*model.Attraction, int, error)
	createFunc     func(ctx context.Context, attraction *model.Attraction) error
	updateFunc     func(ctx context.Context, attraction *model.Attraction) error
}

var _ repository.AttractionRepository = (*mockAttractionRepo)(nil)

func (m *mockAttractionRepo) FindByID(ctx context.Context, id int64) (*model.Attraction, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockAttractionRepo) ListActive(ctx context.Context, filter repository.AttractionFilter) ([]*model.Attraction, int, error) {
	if m.listActiveFunc != nil {
		return m.listActiveFunc(ctx, filter)
	}
	return nil, 0, nil
}

func (m *mockAttractionRepo) Create(ctx context.Context, attraction *model.Attraction) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, attraction)
	}
	attraction.ID = 1
	return nil
}

func (m *mockAttractionRepo) Update(ctx context.Context, attraction *model.Attraction) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, attraction)
	}
	return nil
}

type mockCityRepo struct {
	findByIDFunc func(ctx context.Context, id int64) (*model.City, error)
}

var _ repository.CityRepository = (*mockCityRepo)(nil)

func (m *mockCityRepo) FindByID(ctx context.Context, id int64) (*model.City, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return &model.City{ID: id, Name: "Kazan", IsActive: true}, nil
}

func (m *mockCityRepo) ListActive(ctx context.Context) ([]*model.City, error) { return nil, nil }
func (m *mockCityRepo) Create(ctx context.Context, city *model.City) error    { return nil }
func (m *mockCityRepo) Update(ctx context.Context, city *model.City) error    { return nil }

type mockFavoriteMarker struct {
	favoritedFunc func(ctx context.Context, userID int64, attractionIDs []int64) (map[int64]bool, error)
}

var _ FavoriteMarker = (*mockFavoriteMarker)(nil)

func (m *mockFavoriteMarker) FavoritedAttractionIDs(ctx context.Context, userID int64, attractionIDs []int64) (map[int64]bool, error) {
	if m.favoritedFunc != nil {
		return m.favoritedFunc(ctx, userID, attractionIDs)
	}
	return map[int64]bool{}, nil
}

// passthroughSanitizer は呼び出しを記録するだけのサニタイザ。
type passthroughSanitizer struct {
	calls []string
}

func (s *passthroughSanitizer) Sanitize(rawHTML string) string {
	s.calls = append(s.calls, rawHTML)
	return rawHTML
}

func newTestService(attractions *mockAttractionRepo, cities *mockCityRepo, marker *mockFavoriteMarker) (*Service, *passthroughSanitizer) {
	if attractions == nil {
		attractions = &mockAttractionRepo{}
	}
	if cities == nil {
		cities = &mockCityRepo{}
	}
	if marker == nil {
		marker = &mockFavoriteMarker{}
	}
	sanitizer := &passthroughSanitizer{}
	return NewService(attractions, cities, marker, sanitizer), sanitizer
}

func assertAPIErrorCode(t *testing.T, err error, wantCode string) {
	t.Helper()
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError, got %T: %v", err, err)
	}
	if apiErr.Code != wantCode {
		t.Errorf("error code = %q, want %q", apiErr.Code, wantCode)
	}
}

func TestList_AnonymousViewer_NoFavorites(t *testing.T) {
	attractions := &mockAttractionRepo{
		listActiveFunc: func(ctx context.Context, filter repository.AttractionFilter) ([]*model.Attraction, int, error) {
			return []*model.Attraction{
				{ID: 1, Name: "Kremlin", IsActive: true},
				{ID: 2, Name: "Bauman Street", IsActive: true},
			}, 2, nil
		},
	}
	marker := &mockFavoriteMarker{
		favoritedFunc: func(ctx context.Context, userID int64, attractionIDs []int64) (map[int64]bool, error) {
			t.Error("unexpected favorite lookup for anonymous viewer")
			return nil, nil
		},
	}
	svc, _ := newTestService(attractions, nil, marker)

	page, err := svc.List(context.Background(), repository.AttractionFilter{}, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if page.Total != 2 {
		t.Errorf("total = %d, want 2", page.Total)
	}
	for _, a := range page.Attractions {
		if a.IsFavorite {
			t.Errorf("attraction %d: IsFavorite = true for anonymous viewer", a.ID)
		}
	}
}

func TestList_AuthenticatedViewer_FavoritesMarked(t *testing.T) {
	attractions := &mockAttractionRepo{
		listActiveFunc: func(ctx context.Context, filter repository.AttractionFilter) ([]*model.Attraction, int, error) {
			return []*model.Attraction{
				{ID: 1, Name: "Kremlin", IsActive: true},
				{ID: 2, Name: "Bauman Street", IsActive: true},
			}, 2, nil
		},
	}
	marker := &mockFavoriteMarker{
		favoritedFunc: func(ctx context.Context, userID int64, attractionIDs []int64) (map[int64]bool, error) {
			if userID != 7 {
				t.Errorf("userID = %d, want 7", userID)
			}
			if len(attractionIDs) != 2 {
				t.Errorf("len(attractionIDs) = %d, want 2", len(attractionIDs))
			}
			return map[int64]bool{2: true}, nil
		},
	}
	svc, _ := newTestService(attractions, nil, marker)

	page, err := svc.List(context.Background(), repository.AttractionFilter{}, &model.User{ID: 7})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if page.Attractions[0].IsFavorite {
		t.Error("attraction 1: IsFavorite = true, want false")
	}
	if !page.Attractions[1].IsFavorite {
		t.Error("attraction 2: IsFavorite = false, want true")
	}
}

func TestList_FilterNormalization(t *testing.T) {
	tests := []struct {
		name         string
		in           repository.AttractionFilter
		wantPage     int
		wantPageSize int
	}{
		{"ゼロ値", repository.AttractionFilter{}, 1, 10},
		{"負のページ", repository.AttractionFilter{Page: -3, PageSize: 20}, 1, 20},
		{"上限超過のページサイズ", repository.AttractionFilter{Page: 2, PageSize: 500}, 2, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attractions := &mockAttractionRepo{
				listActiveFunc: func(ctx context.Context, filter repository.AttractionFilter) ([]*model.Attraction, int, error) {
					if filter.Page != tt.wantPage {
						t.Errorf("page = %d, want %d", filter.Page, tt.wantPage)
					}
					if filter.PageSize != tt.wantPageSize {
						t.Errorf("page size = %d, want %d", filter.PageSize, tt.wantPageSize)
					}
					return nil, 0, nil
				},
			}
			svc, _ := newTestService(attractions, nil, nil)

			if _, err := svc.List(context.Background(), tt.in, nil); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

func TestGet_Found_WithFavorite(t *testing.T) {
	attractions := &mockAttractionRepo{
		findByIDFunc: func(ctx context.Context, id int64) (*model.Attraction, error) {
			return &model.Attraction{ID: id, Name: "Kremlin", IsActive: true}, nil
		},
	}
	marker := &mockFavoriteMarker{
		favoritedFunc: func(ctx context.Context, userID int64, attractionIDs []int64) (map[int64]bool, error) {
			return map[int64]bool{1: true}, nil
		},
	}
	svc, _ := newTestService(attractions, nil, marker)

	got, err := svc.Get(context.Background(), 1, &model.User{ID: 7})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !got.IsFavorite {
		t.Error("IsFavorite = false, want true")
	}
}

func TestGet_NotFoundCases(t *testing.T) {
	tests := []struct {
		name string
		repo *mockAttractionRepo
	}{
		{
			"存在しないスポット",
			&mockAttractionRepo{findByIDFunc: func(ctx context.Context, id int64) (*model.Attraction, error) {
				return nil, nil
			}},
		},
		{
			"無効化済みのスポット",
			&mockAttractionRepo{findByIDFunc: func(ctx context.Context, id int64) (*model.Attraction, error) {
				return &model.Attraction{ID: id, IsActive: false}, nil
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(tt.repo, nil, nil)
			_, err := svc.Get(context.Background(), 1, nil)
			assertAPIErrorCode(t, err, model.ErrCodeAttractionNotFound)
		})
	}
}

func TestCreate_SanitizesDescription(t *testing.T) {
	var created *model.Attraction
	attractions := &mockAttractionRepo{
		createFunc: func(ctx context.Context, attraction *model.Attraction) error {
			attraction.ID = 5
			created = attraction
			return nil
		},
	}
	svc, sanitizer := newTestService(attractions, nil, nil)

	got, err := svc.Create(context.Background(), Input{
		CityID:      1,
		Name:        "Kremlin",
		Description: "<p>historic fortress</p>",
		Rating:      4.8,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.ID != 5 {
		t.Errorf("attraction ID = %d, want 5", got.ID)
	}
	if len(sanitizer.calls) != 1 || sanitizer.calls[0] != "<p>historic fortress</p>" {
		t.Errorf("sanitizer calls = %v, want single call with description", sanitizer.calls)
	}
	if !created.IsActive {
		t.Error("expected new attraction to be active")
	}
}

func TestCreate_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		input Input
	}{
		{"名前なし", Input{CityID: 1, Name: "  "}},
		{"評価が範囲外", Input{CityID: 1, Name: "Kremlin", Rating: 5.5}},
		{"負の評価", Input{CityID: 1, Name: "Kremlin", Rating: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(nil, nil, nil)
			_, err := svc.Create(context.Background(), tt.input)
			assertAPIErrorCode(t, err, model.ErrCodeValidation)
		})
	}
}

func TestCreate_UnknownCity_ReturnsNotFound(t *testing.T) {
	cities := &mockCityRepo{
		findByIDFunc: func(ctx context.Context, id int64) (*model.City, error) {
			return nil, nil
		},
	}
	svc, _ := newTestService(nil, cities, nil)

	_, err := svc.Create(context.Background(), Input{CityID: 99, Name: "Kremlin"})
	assertAPIErrorCode(t, err, model.ErrCodeCityNotFound)
}

func TestUpdate_PartialFields_SanitizesDescription(t *testing.T) {
	var updated *model.Attraction
	attractions := &mockAttractionRepo{
		findByIDFunc: func(ctx context.Context, id int64) (*model.Attraction, error) {
			return &model.Attraction{ID: id, Name: "Kremlin", Address: "old address", IsActive: true}, nil
		},
		updateFunc: func(ctx context.Context, attraction *model.Attraction) error {
			updated = attraction
			return nil
		},
	}
	svc, sanitizer := newTestService(attractions, nil, nil)

	got, err := svc.Update(context.Background(), 1, Input{Description: "<p>updated</p>"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.Name != "Kremlin" {
		t.Errorf("name = %q, want unchanged %q", got.Name, "Kremlin")
	}
	if got.Address != "old address" {
		t.Errorf("address = %q, want unchanged", got.Address)
	}
	if len(sanitizer.calls) != 1 {
		t.Errorf("sanitizer calls = %d, want 1", len(sanitizer.calls))
	}
	if updated == nil {
		t.Fatal("expected attraction to be updated")
	}
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _ := newTestService(nil, nil, nil)

	_, err := svc.Update(context.Background(), 99, Input{Name: "Kremlin"})
	assertAPIErrorCode(t, err, model.ErrCodeAttractionNotFound)
}

func TestDeactivate_SetsInactive(t *testing.T) {
	var updated *model.Attraction
	attractions := &mockAttractionRepo{
		findByIDFunc: func(ctx context.Context, id int64) (*model.Attraction, error) {
			return &model.Attraction{ID: id, IsActive: true}, nil
		},
		updateFunc: func(ctx context.Context, attraction *model.Attraction) error {
			updated = attraction
			return nil
		},
	}
	svc, _ := newTestService(attractions, nil, nil)

	if err := svc.Deactivate(context.Background(), 1); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if updated == nil || updated.IsActive {
		t.Error("expected attraction to be deactivated")
	}
}
