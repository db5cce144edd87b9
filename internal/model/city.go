package model

import "time"

// City は観光都市を表す。
type City struct {
	ID        int64
	Name      string
	Country   string
	IsActive  bool
	CreatedAt time.Time
}

// Attraction は観光スポットを表す。
// DescriptionはHTMLを含む可能性があるため、保存前にサニタイズされる。
type Attraction struct {
	ID          int64
	CityID      int64
	Name        string
	Description string
	Address     string
	PhotoURL    string
	Category    string // 美術館、公園、記念碑など
	Rating      float64
	IsActive    bool
	CreatedAt   time.Time
}

// Favorite はユーザーのお気に入り登録を表す。
// (UserID, AttractionID)の組はDBのユニーク制約で一意に保たれる。
type Favorite struct {
	ID           int64
	UserID       int64
	AttractionID int64
	CreatedAt    time.Time
}
