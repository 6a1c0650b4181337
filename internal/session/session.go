// Package session はログイン状態を表すサーバーサイドセッションを管理します。
// クライアントには推測不能な不透明トークンだけを渡し、ユーザーとの対応は
// プロセス側のキーバリューストアに保持します。
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// DefaultTTL はセッションの有効期間です（発行から24時間の絶対期限）。
const DefaultTTL = 24 * time.Hour

// Store はトークン -> ユーザーID の対応を保持するキーバリューストアの契約です。
// 実装はトークン単位で並行アクセスに対して安全でなければなりません。
type Store interface {
	// Put はトークンを ttl 経過まで有効なものとして保存します。
	Put(ctx context.Context, token, userID string, ttl time.Duration) error
	// Get はトークンに対応するユーザーIDを返します。未知または期限切れなら ok=false。
	Get(ctx context.Context, token string) (userID string, ok bool, err error)
	// Delete はトークンを削除します。未知のトークンでもエラーにしません。
	Delete(ctx context.Context, token string) error
}

// Manager はセッションの発行・解決・破棄を提供します。
type Manager struct {
	store Store
	ttl   time.Duration
}

// NewManager は Manager を作成します。ttl が 0 の場合は DefaultTTL を使います。
func NewManager(store Store, ttl time.Duration) *Manager {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Manager{store: store, ttl: ttl}
}

// TTL はセッションの有効期間を返します。クッキーの MaxAge に利用します。
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue は新しいセッションを発行し、不透明トークンを返します。
func (m *Manager) Issue(ctx context.Context, userID string) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	if err := m.store.Put(ctx, token, userID, m.ttl); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}
	return token, nil
}

// Resolve はトークンをユーザーIDに解決します。未知・期限切れ・空は ok=false です。
func (m *Manager) Resolve(ctx context.Context, token string) (string, bool, error) {
	if token == "" {
		return "", false, nil
	}
	return m.store.Get(ctx, token)
}

// Destroy はセッションを破棄します。冪等で、未知のトークンでも失敗しません。
func (m *Manager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return m.store.Delete(ctx, token)
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
