package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, resource, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInactiveUser       = "INACTIVE_USER"
	ErrCodeAdminRequired      = "ADMIN_REQUIRED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeTelegramAuthFailed = "TELEGRAM_AUTH_FAILED"
	ErrCodeEmailConflict      = "EMAIL_ALREADY_REGISTERED"
	ErrCodeTelegramConflict   = "TELEGRAM_ALREADY_REGISTERED"
	ErrCodeDuplicateFavorite  = "DUPLICATE_FAVORITE"
	ErrCodeCityNotFound       = "CITY_NOT_FOUND"
	ErrCodeAttractionNotFound = "ATTRACTION_NOT_FOUND"
	ErrCodeFavoriteNotFound   = "FAVORITE_NOT_FOUND"
	ErrCodeValidation         = "VALIDATION_ERROR"
)

// NewUnauthorizedError は認証エラーを生成する。
// ベアラートークンが欠落・無効・期限切れ、またはトークンの主体が存在しない場合に使用する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewInactiveUserError は無効化されたユーザーのエラーを生成する。
func NewInactiveUserError() *APIError {
	return &APIError{
		Code:     ErrCodeInactiveUser,
		Message:  "このアカウントは無効化されています。",
		Category: "auth",
		Action:   "サポートにお問い合わせください。",
	}
}

// NewAdminRequiredError は管理者権限エラーを生成する。
func NewAdminRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeAdminRequired,
		Message:  "この操作には管理者権限が必要です。",
		Category: "auth",
		Action:   "管理者アカウントでログインしてください。",
	}
}

// NewInvalidCredentialsError はログイン失敗エラーを生成する。
// メールアドレス未登録とパスワード不一致を区別しない統一メッセージを返す。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewTelegramAuthFailedError はTelegram認証失敗エラーを生成する。
// 署名不一致・ペイロード不正・期限切れのいずれの場合も同一のエラーを返し、
// 失敗理由を外部に漏らさない。
func NewTelegramAuthFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeTelegramAuthFailed,
		Message:  "Telegram認証データの検証に失敗しました。",
		Category: "auth",
		Action:   "Telegramアプリからミニアプリを開き直してください。",
	}
}

// NewEmailConflictError はメールアドレス重複エラーを生成する。
func NewEmailConflictError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailConflict,
		Message:  "このメールアドレスは既に登録されています。",
		Category: "auth",
		Action:   "別のメールアドレスを使用するか、ログインしてください。",
	}
}

// NewTelegramConflictError はTelegram ID重複エラーを生成する。
// 同一Telegramユーザーの同時初回ログインなど、ストア側のユニーク制約違反で発生する。
func NewTelegramConflictError() *APIError {
	return &APIError{
		Code:     ErrCodeTelegramConflict,
		Message:  "このTelegramアカウントは既に登録されています。",
		Category: "auth",
		Action:   "再度ログインをお試しください。",
	}
}

// NewDuplicateFavoriteError はお気に入り重複エラーを生成する。
func NewDuplicateFavoriteError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateFavorite,
		Message:  "この観光スポットは既にお気に入りに追加されています。",
		Category: "resource",
		Action:   "お気に入り一覧を確認してください。",
	}
}

// NewCityNotFoundError は都市未検出エラーを生成する。
func NewCityNotFoundError(cityID int64) *APIError {
	return &APIError{
		Code:     ErrCodeCityNotFound,
		Message:  fmt.Sprintf("指定された都市が見つかりません: %d", cityID),
		Category: "resource",
		Action:   "都市IDを確認してください。",
	}
}

// NewAttractionNotFoundError は観光スポット未検出エラーを生成する。
func NewAttractionNotFoundError(attractionID int64) *APIError {
	return &APIError{
		Code:     ErrCodeAttractionNotFound,
		Message:  fmt.Sprintf("指定された観光スポットが見つかりません: %d", attractionID),
		Category: "resource",
		Action:   "観光スポットIDを確認してください。",
	}
}

// NewFavoriteNotFoundError はお気に入り未検出エラーを生成する。
func NewFavoriteNotFoundError(attractionID int64) *APIError {
	return &APIError{
		Code:     ErrCodeFavoriteNotFound,
		Message:  fmt.Sprintf("この観光スポットはお気に入りに登録されていません: %d", attractionID),
		Category: "resource",
		Action:   "お気に入り一覧を確認してください。",
	}
}

// NewValidationError は入力検証エラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("入力内容が正しくありません: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認して再度お試しください。",
	}
}
