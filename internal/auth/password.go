// Package auth は認証・認可機能を提供します。
package auth

import "golang.org/x/crypto/bcrypt"

// bcrypt のコストファクター。検証の計算量を意図的に重くしています。
const bcryptCost = 10

// HashPassword は平文パスワードを bcrypt ハッシュに変換します。
// ソルトは呼び出しごとにランダムなので、同じ平文でも毎回異なるダイジェストになります。
func HashPassword(plain string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// CheckPassword は平文とダイジェストの一致を検証します。
// 不正な形式のダイジェストでもパニックせず false を返します。
func CheckPassword(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
