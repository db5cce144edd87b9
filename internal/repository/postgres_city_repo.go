package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Vmbondar/tourist-telegram-miniapp/internal/model"
)

// PostgresCityRepo はPostgreSQLを使用した都市リポジトリ。
type PostgresCityRepo struct {
	db *sql.DB
}

// NewPostgresCityRepo はPostgresCityRepoを生成する。
func NewPostgresCityRepo(db *sql.DB) *PostgresCityRepo {
	return &PostgresCityRepo{db: db}
}

// FindByID は指定IDの都市を取得する。見つからない場合はnilを返す。
func (r *PostgresCityRepo) FindByID(ctx context.Context, id int64) (*model.City, error) {
	city := &model.City{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, country, is_active, created_at FROM cities WHERE id = $1`,
		id,
	).Scan(&city.ID, &city.Name, &city.Country, &city.IsActive, &city.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find city by ID: %w", err)
	}

	return city, nil
}

// ListActive は有効な都市の一覧を名前順で返す。
func (r *PostgresCityRepo) ListActive(ctx context.Context) ([]*model.City, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, country, is_active, created_at
		 FROM cities WHERE is_active = TRUE ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}
	defer rows.Close()

	cities := []*model.City{}
	for rows.Next() {
		city := &model.City{}
		if err := rows.Scan(&city.ID, &city.Name, &city.Country, &city.IsActive, &city.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan city: %w", err)
		}
		cities = append(cities, city)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cities: %w", err)
	}

	return cities, nil
}

// Create は都市を作成し、採番されたIDと作成時刻をcityに反映する。
func (r *PostgresCityRepo) Create(ctx context.Context, city *model.City) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO cities (name, country, is_active)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		city.Name, city.Country, city.IsActive,
	).Scan(&city.ID, &city.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert city: %w", err)
	}
	return nil
}

// Update は都市情報を更新する。
func (r *PostgresCityRepo) Update(ctx context.Context, city *model.City) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE cities SET name = $2, country = $3, is_active = $4 WHERE id = $1`,
		city.ID, city.Name, city.Country, city.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to update city: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("city not found: %d", city.ID)
	}

	return nil
}

// compile-time interface check
var _ CityRepository = (*PostgresCityRepo)(nil)
