// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/Vmbondar/tourist-telegram-miniapp/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
// 認証コアからはIdentity Storeとして利用される。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByTelegramID はTelegram IDでユーザーを検索する。見つからない場合はnilを返す。
	FindByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)

	// Create はユーザーを作成し、採番されたIDと作成時刻をuserに反映する。
	// email/telegram_idのユニーク制約違反はAPIError（Conflict）として返す。
	Create(ctx context.Context, user *model.User) error

	// Update はユーザー情報を更新する。
	Update(ctx context.Context, user *model.User) error
}

// CityRepository は都市データの永続化インターフェース。
type CityRepository interface {
	// FindByID は指定IDの都市を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.City, error)

	// ListActive は有効な都市の一覧を名前順で返す。
	ListActive(ctx context.Context) ([]*model.City, error)

	// Create は都市を作成し、採番されたIDと作成時刻をcityに反映する。
	Create(ctx context.Context, city *model.City) error

	// Update は都市情報を更新する。
	Update(ctx context.Context, city *model.City) error
}

// AttractionFilter は観光スポット一覧の絞り込み条件。
type AttractionFilter struct {
	CityID   int64  // 0の場合は絞り込まない
	Category string // 空文字列の場合は絞り込まない
	Page     int    // 1始まり
	PageSize int
}

// AttractionRepository は観光スポットデータの永続化インターフェース。
type AttractionRepository interface {
	// FindByID は指定IDの観光スポットを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Attraction, error)

	// ListActive は有効な観光スポットをフィルタ・ページネーション付きで
	// 作成日時の降順で返す。2番目の戻り値はフィルタ適用後の総件数。
	ListActive(ctx context.Context, filter AttractionFilter) ([]*model.Attraction, int, error)

	// Create は観光スポットを作成し、採番されたIDと作成時刻をattractionに反映する。
	Create(ctx context.Context, attraction *model.Attraction) error

	// Update は観光スポット情報を更新する。
	Update(ctx context.Context, attraction *model.Attraction) error
}

// FavoriteWithAttraction はお気に入りと観光スポット情報を結合した構造体。
type FavoriteWithAttraction struct {
	model.Favorite
	Attraction model.Attraction
}

// FavoriteRepository はお気に入りデータの永続化インターフェース。
type FavoriteRepository interface {
	// ListByUserID はユーザーのお気に入り一覧を観光スポット情報付きで
	// 登録日時の降順で返す。
	ListByUserID(ctx context.Context, userID int64) ([]FavoriteWithAttraction, error)

	// Create はお気に入りを作成し、採番されたIDと作成時刻をfavoriteに反映する。
	// (user_id, attraction_id)のユニーク制約違反はAPIError（Conflict）として返す。
	Create(ctx context.Context, favorite *model.Favorite) error

	// DeleteByUserAndAttraction はお気に入りを削除する。
	// 削除対象が存在した場合はtrueを返す。
	DeleteByUserAndAttraction(ctx context.Context, userID, attractionID int64) (bool, error)

	// FavoritedAttractionIDs は指定した観光スポットIDのうち、
	// ユーザーがお気に入り登録済みのIDの集合を返す。
	FavoritedAttractionIDs(ctx context.Context, userID int64, attractionIDs []int64) (map[int64]bool, error)
}
