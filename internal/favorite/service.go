// Package favorite はお気に入りのドメインロジックを提供する。
package favorite

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Vmbondar/tourist-telegram-miniapp/internal/model"
	"github.com/Vmbondar/tourist-telegram-miniapp/internal/repository"
)

// Service はお気に入り管理のサービス層。
type Service struct {
	favoriteRepo   repository.FavoriteRepository
	attractionRepo repository.AttractionRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(favoriteRepo repository.FavoriteRepository, attractionRepo repository.AttractionRepository) *Service {
	return &Service{
		favoriteRepo:   favoriteRepo,
		attractionRepo: attractionRepo,
	}
}

// List はユーザーのお気に入り一覧を観光スポット情報付きで登録日時の降順で返す。
func (s *Service) List(ctx context.Context, userID int64) ([]repository.FavoriteWithAttraction, error) {
	favorites, err := s.favoriteRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("お気に入り一覧の取得に失敗しました: %w", err)
	}
	return favorites, nil
}

// Add は観光スポットをお気に入りに追加する。
// 存在しない、または無効化済みのスポットはNotFound、重複追加はConflictを返す。
// 重複はストアのユニーク制約でも保証され、同時追加でも二重登録されない。
func (s *Service) Add(ctx context.Context, userID, attractionID int64) (*model.Favorite, error) {
	attraction, err := s.attractionRepo.FindByID(ctx, attractionID)
	if err != nil {
		return nil, fmt.Errorf("観光スポットの取得に失敗しました: %w", err)
	}
	if attraction == nil || !attraction.IsActive {
		return nil, model.NewAttractionNotFoundError(attractionID)
	}

	favorite := &model.Favorite{
		UserID:       userID,
		AttractionID: attractionID,
	}
	if err := s.favoriteRepo.Create(ctx, favorite); err != nil {
		return nil, err
	}

	slog.Info("favorite added",
		slog.Int64("user_id", userID),
		slog.Int64("attraction_id", attractionID),
	)
	return favorite, nil
}

// Remove は観光スポットをお気に入りから削除する。
// 登録されていない場合はNotFoundを返す。
func (s *Service) Remove(ctx context.Context, userID, attractionID int64) error {
	deleted, err := s.favoriteRepo.DeleteByUserAndAttraction(ctx, userID, attractionID)
	if err != nil {
		return fmt.Errorf("お気に入りの削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewFavoriteNotFoundError(attractionID)
	}

	slog.Info("favorite removed",
		slog.Int64("user_id", userID),
		slog.Int64("attraction_id", attractionID),
	)
	return nil
}
