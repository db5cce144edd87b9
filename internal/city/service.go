// Package city は観光都市のドメインロジックを提供する。
package city

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Vmbondar/tourist-telegram-miniapp/internal/model"
	"github.com/Vmbondar/tourist-telegram-miniapp/internal/repository"
)

// defaultCountry は国名未指定時の既定値。
const defaultCountry = "Russia"

// Input は都市の作成・更新パラメータ。
type Input struct {
	Name    string
	Country string
}

// Service は都市管理のサービス層。
type Service struct {
	cityRepo repository.CityRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(cityRepo repository.CityRepository) *Service {
	return &Service{cityRepo: cityRepo}
}

// List は有効な都市の一覧を名前順で返す。
func (s *Service) List(ctx context.Context) ([]*model.City, error) {
	cities, err := s.cityRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("都市一覧の取得に失敗しました: %w", err)
	}
	return cities, nil
}

// Get は指定IDの都市を返す。
// 存在しない、または無効化済みの都市はNotFoundとして扱う。
func (s *Service) Get(ctx context.Context, id int64) (*model.City, error) {
	city, err := s.cityRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("都市の取得に失敗しました: %w", err)
	}
	if city == nil || !city.IsActive {
		return nil, model.NewCityNotFoundError(id)
	}
	return city, nil
}

// Create は都市を新規作成する。管理者専用。
func (s *Service) Create(ctx context.Context, input Input) (*model.City, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, model.NewValidationError("都市名は必須です")
	}
	country := strings.TrimSpace(input.Country)
	if country == "" {
		country = defaultCountry
	}

	city := &model.City{
		Name:     name,
		Country:  country,
		IsActive: true,
	}
	if err := s.cityRepo.Create(ctx, city); err != nil {
		return nil, fmt.Errorf("都市の作成に失敗しました: %w", err)
	}

	slog.Info("city created", slog.Int64("city_id", city.ID), slog.String("name", city.Name))
	return city, nil
}

// Update は都市情報を部分更新する。管理者専用。
// 空のフィールドは変更しない。
func (s *Service) Update(ctx context.Context, id int64, input Input) (*model.City, error) {
	city, err := s.cityRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("都市の取得に失敗しました: %w", err)
	}
	if city == nil {
		return nil, model.NewCityNotFoundError(id)
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		city.Name = name
	}
	if country := strings.TrimSpace(input.Country); country != "" {
		city.Country = country
	}

	if err := s.cityRepo.Update(ctx, city); err != nil {
		return nil, fmt.Errorf("都市の更新に失敗しました: %w", err)
	}
	return city, nil
}

// Deactivate は都市を無効化する。管理者専用。
// レコードは物理削除せず、is_activeをfalseにして一覧から外す。
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	city, err := s.cityRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("都市の取得に失敗しました: %w", err)
	}
	if city == nil {
		return model.NewCityNotFoundError(id)
	}

	if city.IsActive {
		city.IsActive = false
		if err := s.cityRepo.Update(ctx, city); err != nil {
			return fmt.Errorf("都市の無効化に失敗しました: %w", err)
		}
		slog.Info("city deactivated", slog.Int64("city_id", id))
	}
	return nil
}
