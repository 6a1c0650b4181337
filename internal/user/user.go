// Package user は受験者アカウントの永続化と参照を提供します。
package user

import (
	"strings"
	"time"
)

// Role はアカウントの権限区分です。閉集合であり、この2値以外は不正です。
type Role string

const (
	// RoleUser は一般の受験者アカウントです。
	RoleUser Role = "user"
	// RoleAdmin は管理者アカウントです。
	RoleAdmin Role = "admin"
)

// Valid はロールが定義済みの値かどうかを返します。
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// User は登録済みアカウントを表します。
// PasswordHash はレスポンスに含めてはならないため JSON から除外しています。
type User struct {
	ID            string    `json:"id"`
	FullName      string    `json:"fullname"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	CETRollNumber string    `json:"cetRollNumber"`
	Category      string    `json:"category"`
	PasswordHash  string    `json:"-"`
	Role          Role      `json:"role"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Summary はログイン中の本人に返す公開プロフィールです。
type Summary struct {
	FullName string `json:"fullname"`
	Email    string `json:"email"`
}

// Summarize は公開してよいフィールドだけを抜き出します。
func (u *User) Summarize() Summary {
	return Summary{FullName: u.FullName, Email: u.Email}
}

// NormalizeEmail はメールアドレスを照合用の正規形（小文字・前後空白なし）に揃えます。
// リポジトリは読み書きの前に必ずこれを適用します。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
