package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Vmbondar/tourist-telegram-miniapp/internal/model"
)

// PostgresAttractionRepo はPostgreSQLを使用した観光スポットリポジトリ。
type PostgresAttractionRepo struct {
	db *sql.DB
}

// NewPostgresAttractionRepo はPostgresAttractionRepoを生成する。
func NewPostgresAttractionRepo(db *sql.DB) *PostgresAttractionRepo {
	return &PostgresAttractionRepo{db: db}
}

const attractionColumns = `id, city_id, name, COALESCE(description, ''),
	COALESCE(address, ''), COALESCE(photo_url, ''), COALESCE(category, ''),
	rating, is_active, created_at`

// FindByID は指定IDの観光スポットを取得する。見つからない場合はnilを返す。
func (r *PostgresAttractionRepo) FindByID(ctx context.Context, id int64) (*model.Attraction, error) {
	a := &model.Attraction{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+attractionColumns+` FROM attractions WHERE id = $1`,
		id,
	).Scan(
		&a.ID, &a.CityID, &a.Name, &a.Description,
		&a.Address, &a.PhotoURL, &a.Category,
		&a.Rating, &a.IsActive, &a.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find attraction by ID: %w", err)
	}

	return a, nil
}

// ListActive は有効な観光スポットをフィルタ・ページネーション付きで
// 作成日時の降順で返す。2番目の戻り値はフィルタ適用後の総件数。
// CityID=0、Category=""のフィルタ項目は絞り込みに使用しない。
func (r *PostgresAttractionRepo) ListActive(ctx context.Context, filter AttractionFilter) ([]*model.Attraction, int, error) {
	where := `WHERE is_active = TRUE
		AND ($1 = 0 OR city_id = $1)
		AND ($2 = '' OR category = $2)`

	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attractions `+where,
		filter.CityID, filter.Category,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count attractions: %w", err)
	}

	offset := (filter.Page - 1) * filter.PageSize
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+attractionColumns+` FROM attractions `+where+`
		 ORDER BY created_at DESC
		 OFFSET $3 LIMIT $4`,
		filter.CityID, filter.Category, offset, filter.PageSize,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attractions: %w", err)
	}
	defer rows.Close()

	attractions := []*model.Attraction{}
	for rows.Next() {
		a := &model.Attraction{}
		err := rows.Scan(
			&a.ID, &a.CityID, &a.Name, &a.Description,
			&a.Address, &a.PhotoURL, &a.Category,
			&a.Rating, &a.IsActive, &a.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attraction: %w", err)
		}
		attractions = append(attractions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate attractions: %w", err)
	}

	return attractions, total, nil
}

// Create は観光スポットを作成し、採番されたIDと作成時刻をattractionに反映する。
func (r *PostgresAttractionRepo) Create(ctx context.Context, attraction *model.Attraction) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO attractions (city_id, name, description, address, photo_url, category, rating, is_active)
		 VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7, $8)
		 RETURNING id, created_at`,
		attraction.CityID, attraction.Name, attraction.Description,
		attraction.Address, attraction.PhotoURL, attraction.Category,
		attraction.Rating, attraction.IsActive,
	).Scan(&attraction.ID, &attraction.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert attraction: %w", err)
	}
	return nil
}

// Update は観光スポット情報を更新する。
func (r *PostgresAttractionRepo) Update(ctx context.Context, attraction *model.Attraction) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE attractions
		 SET city_id = $2, name = $3, description = NULLIF($4, ''),
		     address = NULLIF($5, ''), photo_url = NULLIF($6, ''),
		     category = NULLIF($7, ''), rating = $8, is_active = $9
		 WHERE id = $1`,
		attraction.ID, attraction.CityID, attraction.Name, attraction.Description,
		attraction.Address, attraction.PhotoURL, attraction.Category,
		attraction.Rating, attraction.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to update attraction: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("attraction not found: %d", attraction.ID)
	}

	return nil
}

// compile-time interface check
var _ AttractionRepository = (*PostgresAttractionRepo)(nil)
