package user

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository はローカル開発とテスト向けのインメモリ実装です。
// 一意性チェックと挿入を同一ロック内で行うため、同時サインアップでも重複しません。
type MemoryRepository struct {
	mu      sync.Mutex
	byID    map[string]*User
	byEmail map[string]string // 正規化済みメールアドレス -> ID
}

// NewMemoryRepository は空の MemoryRepository を作成します。
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]*User),
		byEmail: make(map[string]string),
	}
}

// Create はアカウントを保存します。
func (r *MemoryRepository) Create(ctx context.Context, u *User) (*User, error) {
	email := NormalizeEmail(u.Email)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[email]; ok {
		return nil, ErrDuplicateEmail
	}

	now := time.Now().UTC()
	stored := *u
	stored.ID = uuid.NewString()
	stored.Email = email
	if stored.Role == "" {
		stored.Role = RoleUser
	}
	stored.CreatedAt = now
	stored.UpdatedAt = now

	r.byID[stored.ID] = &stored
	r.byEmail[email] = stored.ID

	result := stored
	return &result, nil
}

// FindByEmail は正規化済みメールアドレスで検索します。
func (r *MemoryRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byEmail[NormalizeEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}
	result := *r.byID[id]
	return &result, nil
}

// FindByID は ID で検索します。
func (r *MemoryRepository) FindByID(ctx context.Context, id string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	result := *u
	return &result, nil
}

// ListAll は全アカウントを登録順に返します。PasswordHash は空にして返します。
func (r *MemoryRepository) ListAll(ctx context.Context) ([]*User, error) {
	r.mu.Lock()
	users := make([]*User, 0, len(r.byID))
	for _, u := range r.byID {
		result := *u
		result.PasswordHash = ""
		users = append(users, &result)
	}
	r.mu.Unlock()

	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].Email < users[j].Email
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

// Delete はアカウントを削除します。テストでセッションの宙吊り状態を再現するための補助です。
func (r *MemoryRepository) Delete(ctx context.Context, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.byID[id]; ok {
		delete(r.byEmail, NormalizeEmail(u.Email))
		delete(r.byID, id)
	}
}
