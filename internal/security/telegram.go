// Package security はパスワードハッシュ、Telegram認証データ検証、
// セッショントークンの発行・検証などアプリケーションのセキュリティ機能を提供する。
package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Vmbondar/tourist-telegram-miniapp/internal/model"
)

// telegramAuthMaxAgeSeconds はauth_dateの許容経過秒数（24時間）。
// now - auth_date がこの値以下なら有効、超えたら期限切れ。
// 未来方向のずれは許容する。
const telegramAuthMaxAgeSeconds = 86400

// telegramKeyDerivationSeed はTelegram公式仕様で定められた署名鍵導出用の固定文字列。
const telegramKeyDerivationSeed = "WebAppData"

// TelegramUser はinitDataのuserフィールドから取り出したTelegramユーザー情報を表す。
type TelegramUser struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Username     string `json:"username"`
	LanguageCode string `json:"language_code"`
	IsPremium    bool   `json:"is_premium"`
	AuthDate     int64  `json:"-"`
}

// TelegramConfig はTelegram認証の設定。
type TelegramConfig struct {
	// BotToken はBotFatherが発行するボットトークン。
	BotToken string
	// SecretKey はBotTokenの代わりに署名鍵導出に使う二次シークレット。
	// 設定されている場合はBotTokenより優先される。
	SecretKey string
}

// ValidationMetrics はTelegram検証失敗の観測用インターフェース。
// 失敗理由はログとメトリクスにのみ記録され、APIレスポンスには含まれない。
type ValidationMetrics interface {
	RecordTelegramAuthFailure(reason string)
}

// failureReason は検証失敗の内部理由。外部境界を越えない。
type failureReason string

const (
	reasonInvalidPayload    failureReason = "invalid_payload"
	reasonSignatureMismatch failureReason = "signature_mismatch"
	reasonExpired           failureReason = "expired"
)

// TelegramValidator はTelegram Mini AppのinitData署名を検証する。
// 署名鍵は起動時に1回導出され、以降イミュータブルに扱う。
type TelegramValidator struct {
	signingKey []byte
	metrics    ValidationMetrics
	now        func() time.Time
}

// resolveSigningSecret は署名鍵の導出元となるシークレットを決定する。
// Telegram専用のSecretKeyが設定されていればそれを優先し、なければBotTokenを使用する。
func resolveSigningSecret(cfg TelegramConfig) string {
	if cfg.SecretKey != "" {
		return cfg.SecretKey
	}
	return cfg.BotToken
}

// NewTelegramValidator はTelegramValidatorを生成する。
// 署名鍵 = HMAC-SHA256(key="WebAppData", message=シークレット) をここで導出する。
// metricsはnilでもよい。
func NewTelegramValidator(cfg TelegramConfig, metrics ValidationMetrics) *TelegramValidator {
	mac := hmac.New(sha256.New, []byte(telegramKeyDerivationSeed))
	mac.Write([]byte(resolveSigningSecret(cfg)))

	return &TelegramValidator{
		signingKey: mac.Sum(nil),
		metrics:    metrics,
		now:        time.Now,
	}
}

// Validate はTelegram Mini AppのinitData文字列を検証し、ユーザー情報を返す。
// 失敗時は理由をログとメトリクスに記録した上で、
// 理由を区別しない単一の認証エラーを返す（署名オラクル化の防止）。
func (v *TelegramValidator) Validate(initData string) (*TelegramUser, error) {
	user, reason := v.validate(initData)
	if reason != "" {
		slog.Warn("telegram init data validation failed",
			slog.String("reason", string(reason)),
		)
		if v.metrics != nil {
			v.metrics.RecordTelegramAuthFailure(string(reason))
		}
		return nil, model.NewTelegramAuthFailedError()
	}
	return user, nil
}

// validate は検証本体。失敗時は内部理由を返す。
//
// 検証手順（Telegram公式仕様）:
//  1. initDataをクエリ文字列としてパース（重複キーは最後の値を採用）
//  2. hashフィールドを取り出して除去
//  3. 残りのキーを辞書順にソートし "key=value" を "\n" で連結した検査文字列を構築
//  4. HMAC-SHA256(署名鍵, 検査文字列) のhex値を受信hashと定数時間比較
//  5. auth_dateの鮮度を確認
//  6. userフィールドのJSONをパース
func (v *TelegramValidator) validate(initData string) (*TelegramUser, failureReason) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, reasonInvalidPayload
	}

	params := make(map[string]string, len(values))
	for key, vals := range values {
		params[key] = vals[len(vals)-1]
	}

	received, ok := params["hash"]
	if !ok {
		return nil, reasonInvalidPayload
	}
	delete(params, "hash")

	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		lines = append(lines, key+"="+params[key])
	}
	checkString := strings.Join(lines, "\n")

	mac := hmac.New(sha256.New, v.signingKey)
	mac.Write([]byte(checkString))
	calculated := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(calculated), []byte(received)) {
		return nil, reasonSignatureMismatch
	}

	authDate, err := strconv.ParseInt(params["auth_date"], 10, 64)
	if err != nil {
		return nil, reasonExpired
	}
	if v.now().Unix()-authDate > telegramAuthMaxAgeSeconds {
		return nil, reasonExpired
	}

	user := &TelegramUser{}
	if raw, ok := params["user"]; ok {
		if err := json.Unmarshal([]byte(raw), user); err != nil {
			return nil, reasonInvalidPayload
		}
	}
	user.AuthDate = authDate

	return user, ""
}
