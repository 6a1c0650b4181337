package user

import (
	"context"
	"errors"
)

var (
	// ErrDuplicateEmail は正規化済みメールアドレスが既に登録済みのとき返されます。
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrNotFound は該当するアカウントが存在しないとき返されます。
	ErrNotFound = errors.New("user not found")
)

// Repository はアカウントストアの契約です。
// メールアドレスの一意性はストア側で原子的に保証されます（チェック後の挿入では不十分）。
type Repository interface {
	// Create はアカウントを保存し、ID とタイムスタンプを設定して返します。
	// 正規化済みメールアドレスが衝突した場合は ErrDuplicateEmail を返します。
	Create(ctx context.Context, u *User) (*User, error)
	// FindByEmail は正規化済みメールアドレスで検索します。不在なら ErrNotFound。
	FindByEmail(ctx context.Context, email string) (*User, error)
	// FindByID は ID で検索します。不在なら ErrNotFound。
	FindByID(ctx context.Context, id string) (*User, error)
	// ListAll は全アカウントを登録順に返します。PasswordHash は含まれません。
	ListAll(ctx context.Context) ([]*User, error)
}
