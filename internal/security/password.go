package security

import "golang.org/x/crypto/bcrypt"

// bcryptCost はパスワードハッシュの計算コスト。
// bcrypt.DefaultCost(10)より高めに設定し、総当たり攻撃への耐性を確保する。
const bcryptCost = 12

// HashPassword はパスワードからbcryptハッシュを生成する。
// ソルトは呼び出しごとにランダム生成されるため、
// 同一パスワードに対しても毎回異なるハッシュ文字列が返る。
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// VerifyPassword は平文パスワードがハッシュと一致するかを検証する。
// ハッシュ文字列が不正な形式の場合もエラーにはせずfalseを返す。
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
