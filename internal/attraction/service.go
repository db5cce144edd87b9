// Package attraction は観光スポットのドメインロジックを提供する。
package attraction

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Vmbondar/tourist-telegram-miniapp/internal/model"
	"github.com/Vmbondar/tourist-telegram-miniapp/internal/repository"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Sanitizer は説明文HTMLの無害化インターフェース。
type Sanitizer interface {
	Sanitize(rawHTML string) string
}

// FavoriteMarker はお気に入り済みスポットIDの問い合わせインターフェース。
type FavoriteMarker interface {
	FavoritedAttractionIDs(ctx context.Context, userID int64, attractionIDs []int64) (map[int64]bool, error)
}

// WithFavorite は観光スポットと閲覧ユーザーのお気に入り状態の組。
type WithFavorite struct {
	model.Attraction
	IsFavorite bool
}

// Page は観光スポット一覧のページ。
type Page struct {
	Attractions []WithFavorite
	Total       int
	Page        int
	PageSize    int
}

// Input は観光スポットの作成・更新パラメータ。
type Input struct {
	CityID      int64
	Name        string
	Description string
	Address     string
	PhotoURL    string
	Category    string
	Rating      float64
}

// Service は観光スポット管理のサービス層。
type Service struct {
	attractionRepo repository.AttractionRepository
	cityRepo       repository.CityRepository
	favorites      FavoriteMarker
	sanitizer      Sanitizer
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	attractionRepo repository.AttractionRepository,
	cityRepo repository.CityRepository,
	favorites FavoriteMarker,
	sanitizer Sanitizer,
) *Service {
	return &Service{
		attractionRepo: attractionRepo,
		cityRepo:       cityRepo,
		favorites:      favorites,
		sanitizer:      sanitizer,
	}
}

// List は有効な観光スポットをフィルタ・ページネーション付きで返す。
// viewerが非nilの場合は各スポットにお気に入り状態を付与する。
func (s *Service) List(ctx context.Context, filter repository.AttractionFilter, viewer *model.User) (*Page, error) {
	filter = normalizeFilter(filter)

	attractions, total, err := s.attractionRepo.ListActive(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("観光スポット一覧の取得に失敗しました: %w", err)
	}

	marked, err := s.markFavorites(ctx, attractions, viewer)
	if err != nil {
		return nil, err
	}

	return &Page{
		Attractions: marked,
		Total:       total,
		Page:        filter.Page,
		PageSize:    filter.PageSize,
	}, nil
}

// Get は指定IDの観光スポットを返す。
// 存在しない、または無効化済みのスポットはNotFoundとして扱う。
// viewerが非nilの場合はお気に入り状態を付与する。
func (s *Service) Get(ctx context.Context, id int64, viewer *model.User) (*WithFavorite, error) {
	attraction, err := s.attractionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("観光スポットの取得に失敗しました: %w", err)
	}
	if attraction == nil || !attraction.IsActive {
		return nil, model.NewAttractionNotFoundError(id)
	}

	marked, err := s.markFavorites(ctx, []*model.Attraction{attraction}, viewer)
	if err != nil {
		return nil, err
	}
	return &marked[0], nil
}

// Create は観光スポットを新規作成する。管理者専用。
// 説明文は保存前に無害化し、存在しない都市への登録は拒否する。
func (s *Service) Create(ctx context.Context, input Input) (*model.Attraction, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, model.NewValidationError("観光スポット名は必須です")
	}
	if input.Rating < 0 || input.Rating > 5 {
		return nil, model.NewValidationError("評価は0から5の範囲で指定してください")
	}

	city, err := s.cityRepo.FindByID(ctx, input.CityID)
	if err != nil {
		return nil, fmt.Errorf("都市の取得に失敗しました: %w", err)
	}
	if city == nil {
		return nil, model.NewCityNotFoundError(input.CityID)
	}

	attraction := &model.Attraction{
		CityID:      input.CityID,
		Name:        name,
		Description: s.sanitizer.Sanitize(input.Description),
		Address:     input.Address,
		PhotoURL:    input.PhotoURL,
		Category:    input.Category,
		Rating:      input.Rating,
		IsActive:    true,
	}
	if err := s.attractionRepo.Create(ctx, attraction); err != nil {
		return nil, fmt.Errorf("観光スポットの作成に失敗しました: %w", err)
	}

	slog.Info("attraction created",
		slog.Int64("attraction_id", attraction.ID),
		slog.Int64("city_id", attraction.CityID),
		slog.String("name", attraction.Name),
	)
	return attraction, nil
}

// Update は観光スポット情報を部分更新する。管理者専用。
// 空のフィールドは変更しない。説明文は更新時も無害化する。
func (s *Service) Update(ctx context.Context, id int64, input Input) (*model.Attraction, error) {
	attraction, err := s.attractionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("観光スポットの取得に失敗しました: %w", err)
	}
	if attraction == nil {
		return nil, model.NewAttractionNotFoundError(id)
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		attraction.Name = name
	}
	if input.Description != "" {
		attraction.Description = s.sanitizer.Sanitize(input.Description)
	}
	if input.Address != "" {
		attraction.Address = input.Address
	}
	if input.PhotoURL != "" {
		attraction.PhotoURL = input.PhotoURL
	}
	if input.Category != "" {
		attraction.Category = input.Category
	}
	if input.Rating != 0 {
		if input.Rating < 0 || input.Rating > 5 {
			return nil, model.NewValidationError("評価は0から5の範囲で指定してください")
		}
		attraction.Rating = input.Rating
	}

	if err := s.attractionRepo.Update(ctx, attraction); err != nil {
		return nil, fmt.Errorf("観光スポットの更新に失敗しました: %w", err)
	}
	return attraction, nil
}

// Deactivate は観光スポットを無効化する。管理者専用。
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	attraction, err := s.attractionRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("観光スポットの取得に失敗しました: %w", err)
	}
	if attraction == nil {
		return model.NewAttractionNotFoundError(id)
	}

	if attraction.IsActive {
		attraction.IsActive = false
		if err := s.attractionRepo.Update(ctx, attraction); err != nil {
			return fmt.Errorf("観光スポットの無効化に失敗しました: %w", err)
		}
		slog.Info("attraction deactivated", slog.Int64("attraction_id", id))
	}
	return nil
}

// markFavorites はviewerのお気に入り状態を各スポットに付与する。
// viewerがnil（匿名）の場合はすべてfalseになる。
func (s *Service) markFavorites(ctx context.Context, attractions []*model.Attraction, viewer *model.User) ([]WithFavorite, error) {
	marked := make([]WithFavorite, len(attractions))
	for i, a := range attractions {
		marked[i] = WithFavorite{Attraction: *a}
	}
	if viewer == nil || len(attractions) == 0 {
		return marked, nil
	}

	ids := make([]int64, len(attractions))
	for i, a := range attractions {
		ids[i] = a.ID
	}
	favorited, err := s.favorites.FavoritedAttractionIDs(ctx, viewer.ID, ids)
	if err != nil {
		return nil, fmt.Errorf("お気に入り状態の取得に失敗しました: %w", err)
	}
	for i := range marked {
		marked[i].IsFavorite = favorited[marked[i].ID]
	}
	return marked, nil
}

func normalizeFilter(filter repository.AttractionFilter) repository.AttractionFilter {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = defaultPageSize
	}
	if filter.PageSize > maxPageSize {
		filter.PageSize = maxPageSize
	}
	return filter
}
