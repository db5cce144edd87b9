package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/Vmbondar/tourist-telegram-miniapp/internal/model"
)

// PostgresFavoriteRepo はPostgreSQLを使用したお気に入りリポジトリ。
type PostgresFavoriteRepo struct {
	db *sql.DB
}

// NewPostgresFavoriteRepo はPostgresFavoriteRepoを生成する。
func NewPostgresFavoriteRepo(db *sql.DB) *PostgresFavoriteRepo {
	return &PostgresFavoriteRepo{db: db}
}

// ListByUserID はユーザーのお気に入り一覧を観光スポット情報付きで
// 登録日時の降順で返す。
func (r *PostgresFavoriteRepo) ListByUserID(ctx context.Context, userID int64) ([]FavoriteWithAttraction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT f.id, f.user_id, f.attraction_id, f.created_at,
		        a.id, a.city_id, a.name, COALESCE(a.description, ''),
		        COALESCE(a.address, ''), COALESCE(a.photo_url, ''), COALESCE(a.category, ''),
		        a.rating, a.is_active, a.created_at
		 FROM favorites f
		 JOIN attractions a ON a.id = f.attraction_id
		 WHERE f.user_id = $1
		 ORDER BY f.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	favorites := []FavoriteWithAttraction{}
	for rows.Next() {
		var fav FavoriteWithAttraction
		err := rows.Scan(
			&fav.ID, &fav.UserID, &fav.AttractionID, &fav.CreatedAt,
			&fav.Attraction.ID, &fav.Attraction.CityID, &fav.Attraction.Name, &fav.Attraction.Description,
			&fav.Attraction.Address, &fav.Attraction.PhotoURL, &fav.Attraction.Category,
			&fav.Attraction.Rating, &fav.Attraction.IsActive, &fav.Attraction.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		favorites = append(favorites, fav)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate favorites: %w", err)
	}

	return favorites, nil
}

// Create はお気に入りを作成し、採番されたIDと作成時刻をfavoriteに反映する。
// (user_id, attraction_id)のユニーク制約違反はAPIError（Conflict）として返す。
func (r *PostgresFavoriteRepo) Create(ctx context.Context, favorite *model.Favorite) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO favorites (user_id, attraction_id)
		 VALUES ($1, $2)
		 RETURNING id, created_at`,
		favorite.UserID, favorite.AttractionID,
	).Scan(&favorite.ID, &favorite.CreatedAt)

	if _, ok := uniqueViolationConstraint(err); ok {
		return model.NewDuplicateFavoriteError()
	}
	if err != nil {
		return fmt.Errorf("failed to insert favorite: %w", err)
	}

	return nil
}

// DeleteByUserAndAttraction はお気に入りを削除する。
// 削除対象が存在した場合はtrueを返す。
func (r *PostgresFavoriteRepo) DeleteByUserAndAttraction(ctx context.Context, userID, attractionID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND attraction_id = $2`,
		userID, attractionID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete favorite: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// FavoritedAttractionIDs は指定した観光スポットIDのうち、
// ユーザーがお気に入り登録済みのIDの集合を返す。
// attractionIDsが空の場合はDBアクセスせず空集合を返す。
func (r *PostgresFavoriteRepo) FavoritedAttractionIDs(ctx context.Context, userID int64, attractionIDs []int64) (map[int64]bool, error) {
	favorited := map[int64]bool{}
	if len(attractionIDs) == 0 {
		return favorited, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT attraction_id FROM favorites
		 WHERE user_id = $1 AND attraction_id = ANY($2)`,
		userID, pq.Array(attractionIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorited attractions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan attraction ID: %w", err)
		}
		favorited[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate favorited attractions: %w", err)
	}

	return favorited, nil
}

// compile-time interface check
var _ FavoriteRepository = (*PostgresFavoriteRepo)(nil)
