package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yourusername/cet-portal/internal/session"
	"github.com/yourusername/cet-portal/internal/user"
)

var (
	// ErrMissingFields はサインアップ入力のいずれかが空のとき返されます。
	ErrMissingFields = errors.New("all fields are required")
	// ErrUserNotFound は該当アカウントが存在しないログイン失敗です。
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidPassword はパスワード不一致によるログイン失敗です。
	// ErrUserNotFound とはテスト可能性のため区別しますが、HTTP 層では
	// 登録済みメールアドレスの探索に使われないよう同一メッセージに畳み込みます。
	ErrInvalidPassword = errors.New("invalid password")
)

// SignupInput はサインアップに必要な入力一式です。
type SignupInput struct {
	FullName      string
	Email         string
	Phone         string
	CETRollNumber string
	Category      string
	Password      string
}

// Service はサインアップ・ログイン・セッション解決を編成します。
type Service struct {
	users    user.Repository
	sessions *session.Manager
}

// NewService は Service を作成します。
func NewService(users user.Repository, sessions *session.Manager) *Service {
	return &Service{users: users, sessions: sessions}
}

// SessionTTL はセッションの有効期間を返します。
func (s *Service) SessionTTL() int {
	return int(s.sessions.TTL().Seconds())
}

// Signup はアカウントを作成します。
// 平文パスワードはハッシュ化後に破棄され、ハッシュが呼び出し元へ返ることもありません。
func (s *Service) Signup(ctx context.Context, in SignupInput) error {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.CETRollNumber = strings.TrimSpace(in.CETRollNumber)
	in.Category = strings.TrimSpace(in.Category)

	if in.FullName == "" || in.Email == "" || in.Phone == "" ||
		in.CETRollNumber == "" || in.Category == "" || strings.TrimSpace(in.Password) == "" {
		return ErrMissingFields
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	_, err = s.users.Create(ctx, &user.User{
		FullName:      in.FullName,
		Email:         in.Email,
		Phone:         in.Phone,
		CETRollNumber: in.CETRollNumber,
		Category:      in.Category,
		PasswordHash:  hash,
		Role:          user.RoleUser,
	})
	return err
}

// Login は資格情報を検証し、成功時にセッションを発行します。
func (s *Service) Login(ctx context.Context, email, password string) (user.Summary, string, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.Summary{}, "", ErrUserNotFound
		}
		return user.Summary{}, "", fmt.Errorf("failed to look up user: %w", err)
	}

	if !CheckPassword(password, u.PasswordHash) {
		return user.Summary{}, "", ErrInvalidPassword
	}

	token, err := s.sessions.Issue(ctx, u.ID)
	if err != nil {
		return user.Summary{}, "", err
	}

	return u.Summarize(), token, nil
}

// Logout はセッションを破棄します。未知のトークンでも失敗しません。
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.Destroy(ctx, token)
}

// Subject はトークンをアカウントに解決します。ロールは毎回ストアから読み直すため、
// 権限変更はセッションを無効化しなくても次の呼び出しから反映されます。
// トークンが解決できない場合と、参照先アカウントが消えている場合はどちらも ok=false です。
func (s *Service) Subject(ctx context.Context, token string) (*user.User, bool, error) {
	id, ok, err := s.sessions.Resolve(ctx, token)
	if err != nil || !ok {
		return nil, false, err
	}

	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// 宙吊りセッションは未ログイン扱いにして片付ける
			_ = s.sessions.Destroy(ctx, token)
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to look up user: %w", err)
	}

	return u, true, nil
}

// CurrentSubject はログイン中アカウントの公開プロフィールを返します。
func (s *Service) CurrentSubject(ctx context.Context, token string) (user.Summary, bool, error) {
	u, ok, err := s.Subject(ctx, token)
	if err != nil || !ok {
		return user.Summary{}, false, err
	}
	return u.Summarize(), true, nil
}

// IsAdmin はトークンが管理者アカウントに解決されるかを返します。
func (s *Service) IsAdmin(ctx context.Context, token string) (bool, error) {
	u, ok, err := s.Subject(ctx, token)
	if err != nil || !ok {
		return false, err
	}
	return u.Role == user.RoleAdmin, nil
}

// ListUsers は全アカウントを返します。PasswordHash は含まれません。
func (s *Service) ListUsers(ctx context.Context) ([]*user.User, error) {
	return s.users.ListAll(ctx)
}
