// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// EmailログインとTelegramログインの両方に対応するため、
// Email系フィールドとTelegram系フィールドはどちらか一方のみ設定されていればよい。
// 空文字列・ゼロ値は「未設定」を意味し、リポジトリ層でSQLのNULLにマッピングされる。
type User struct {
	ID               int64
	Email            string // 未設定の場合は空文字列
	PasswordHash     string // Emailログイン登録ユーザーのみ設定される
	TelegramID       int64  // 未設定の場合は0
	TelegramUsername string
	IsActive         bool
	IsAdmin          bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// HasEmail はEmailログイン用の識別子が設定されているかを返す。
func (u *User) HasEmail() bool {
	return u.Email != ""
}

// HasTelegramID はTelegramログイン用の識別子が設定されているかを返す。
func (u *User) HasTelegramID() bool {
	return u.TelegramID != 0
}

// TokenPair はログイン成功時に発行されるアクセストークンとリフレッシュトークンの組。
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"` // 常に "bearer"
}
