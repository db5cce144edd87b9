package security

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Vmbondar/tourist-telegram-miniapp/internal/model"
)

// TokenClass はセッショントークンの種別を表す。
// アクセストークンとリフレッシュトークンは相互に流用できない。
type TokenClass string

const (
	// TokenClassAccess はAPIリクエストごとに提示される短命トークン。
	TokenClassAccess TokenClass = "access"
	// TokenClassRefresh はアクセストークンの再発行専用の長命トークン。
	TokenClassRefresh TokenClass = "refresh"
)

// SessionClaims はセッショントークンのペイロード。
// typeクレームでトークン種別を区別し、発行時に認証に使われた識別子をエコーする。
type SessionClaims struct {
	TokenType  string `json:"type"`
	Email      string `json:"email,omitempty"`
	TelegramID int64  `json:"telegram_id,omitempty"`
	jwt.RegisteredClaims
}

// UserID はsubjectクレームからユーザーIDを取り出す。
func (c *SessionClaims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid subject claim: %w", err)
	}
	return id, nil
}

// TokenConfig はトークン発行・検証の設定。
type TokenConfig struct {
	SecretKey  string
	Algorithm  string // 署名アルゴリズム名（例: "HS256"）
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// TokenMetrics はトークン発行の観測用インターフェース。
type TokenMetrics interface {
	RecordTokenIssued(class string)
}

// TokenCodec は署名付きセッショントークンのエンコード・デコードを行う。
// 対称鍵と署名アルゴリズムは起動時に1回設定され、以降イミュータブルに扱う。
type TokenCodec struct {
	secret     []byte
	method     jwt.SigningMethod
	algName    string
	accessTTL  time.Duration
	refreshTTL time.Duration
	metrics    TokenMetrics
	now        func() time.Time
}

// NewTokenCodec はTokenCodecを生成する。
// 対称鍵方式（HMAC系）以外のアルゴリズム名はエラーを返す。
// metricsはnilでもよい。
func NewTokenCodec(cfg TokenConfig, metrics TokenMetrics) (*TokenCodec, error) {
	method := jwt.GetSigningMethod(cfg.Algorithm)
	if method == nil {
		return nil, fmt.Errorf("unsupported signing algorithm: %s", cfg.Algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("signing algorithm must be HMAC-based, got: %s", cfg.Algorithm)
	}
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("secret key is required")
	}

	return &TokenCodec{
		secret:     []byte(cfg.SecretKey),
		method:     method,
		algName:    method.Alg(),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		metrics:    metrics,
		now:        time.Now,
	}, nil
}

// Encode はクレームに有効期限とトークン種別を付与して署名済みトークン文字列を生成する。
func (c *TokenCodec) Encode(claims SessionClaims, class TokenClass, ttl time.Duration) (string, error) {
	now := c.now()
	claims.TokenType = string(class)
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	token := jwt.NewWithClaims(c.method, &claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Decode はトークン文字列を検証してクレームを返す。
// 構造不正・署名不一致・期限切れ・種別不一致のいずれの場合もエラーではなくnilを返し、
// 拒否の判断は呼び出し側（IdentityResolver）に委ねる。
func (c *TokenCodec) Decode(tokenString string, expected TokenClass) *SessionClaims {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{c.algName}),
	)
	if err != nil || !token.Valid {
		return nil
	}
	// リフレッシュトークンのアクセストークンとしての再生（およびその逆）を防ぐ
	if claims.TokenType != string(expected) {
		return nil
	}
	return claims
}

// IssuePair は認証済みユーザーからアクセス・リフレッシュトークンの組を発行する。
// アクセストークンには認証に使われた識別子（emailまたはtelegram_id）をエコーし、
// リフレッシュトークンにはsubjectのみを含める。
// 発行済みリフレッシュトークンを失効させる仕組みはなく、自然満了まで有効である。
func (c *TokenCodec) IssuePair(user *model.User) (*model.TokenPair, error) {
	subject := strconv.FormatInt(user.ID, 10)

	access := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: subject},
	}
	// アカウント連携は未実装のため、identityには高々どちらか一方が設定されている
	if user.HasEmail() {
		access.Email = user.Email
	} else if user.HasTelegramID() {
		access.TelegramID = user.TelegramID
	}

	accessToken, err := c.Encode(access, TokenClassAccess, c.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	refresh := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: subject},
	}
	refreshToken, err := c.Encode(refresh, TokenClassRefresh, c.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	if c.metrics != nil {
		c.metrics.RecordTokenIssued(string(TokenClassAccess))
		c.metrics.RecordTokenIssued(string(TokenClassRefresh))
	}

	return &model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	}, nil
}
