package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/cet-portal/internal/session"
	"github.com/yourusername/cet-portal/internal/user"
)

func newTestService(t *testing.T) (*Service, *user.MemoryRepository) {
	t.Helper()
	repo := user.NewMemoryRepository()
	svc := NewService(repo, session.NewManager(session.NewMemoryStore(), 0))
	return svc, repo
}

func validInput() SignupInput {
	return SignupInput{
		FullName:      "A B",
		Email:         "A@X.com",
		Phone:         "1",
		CETRollNumber: "R1",
		Category:      "C1",
		Password:      "pw",
	}
}

func TestSignupThenLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	require.NoError(t, svc.Signup(ctx, validInput()))

	// メールアドレスの照合は大文字小文字を区別しない
	summary, token, err := svc.Login(ctx, "a@x.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "A B", summary.FullName)
	assert.Equal(t, "a@x.com", summary.Email)
	require.NotEmpty(t, token)

	current, ok, err := svc.CurrentSubject(ctx, token)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, summary, current)
}

func TestSignupMissingFields(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	for name, mutate := range map[string]func(*SignupInput){
		"fullname": func(in *SignupInput) { in.FullName = "" },
		"email":    func(in *SignupInput) { in.Email = "   " },
		"phone":    func(in *SignupInput) { in.Phone = "" },
		"roll":     func(in *SignupInput) { in.CETRollNumber = "" },
		"category": func(in *SignupInput) { in.Category = "\t" },
		"password": func(in *SignupInput) { in.Password = "" },
	} {
		in := validInput()
		mutate(&in)
		assert.ErrorIs(t, svc.Signup(ctx, in), ErrMissingFields, "missing %s", name)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	require.NoError(t, svc.Signup(ctx, validInput()))

	in := validInput()
	in.Email = " a@x.COM "
	assert.ErrorIs(t, svc.Signup(ctx, in), user.ErrDuplicateEmail)
}

func TestLoginFailures(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	require.NoError(t, svc.Signup(ctx, validInput()))

	_, _, err := svc.Login(ctx, "nobody@x.com", "pw")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, _, err = svc.Login(ctx, "a@x.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestLogoutInvalidatesSession(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	require.NoError(t, svc.Signup(ctx, validInput()))
	_, token, err := svc.Login(ctx, "a@x.com", "pw")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, token))

	_, ok, err := svc.CurrentSubject(ctx, token)
	require.NoError(t, err)
	assert.False(t, ok)

	// 2回目のログアウトも失敗しない
	assert.NoError(t, svc.Logout(ctx, token))
	assert.NoError(t, svc.Logout(ctx, ""))
}

func TestExpiredSessionIsLoggedOut(t *testing.T) {
	ctx := context.Background()
	repo := user.NewMemoryRepository()
	// 発行した瞬間に期限切れになるマネージャー
	svc := NewService(repo, session.NewManager(session.NewMemoryStore(), -time.Second))

	require.NoError(t, svc.Signup(ctx, validInput()))
	_, token, err := svc.Login(ctx, "a@x.com", "pw")
	require.NoError(t, err)

	_, ok, err := svc.CurrentSubject(ctx, token)
	require.NoError(t, err)
	assert.False(t, ok, "expired session should resolve to logged out")
}

func TestDanglingSessionIsLoggedOut(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)

	require.NoError(t, svc.Signup(ctx, validInput()))
	_, token, err := svc.Login(ctx, "a@x.com", "pw")
	require.NoError(t, err)

	stored, err := repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	repo.Delete(ctx, stored.ID)

	// アカウントが消えたセッションはサーバーエラーではなく未ログイン扱い
	_, ok, err := svc.CurrentSubject(ctx, token)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsAdminReadsRoleFromStore(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)

	hash, err := HashPassword("pw")
	require.NoError(t, err)
	_, err = repo.Create(ctx, &user.User{
		FullName:      "Admin",
		Email:         "admin@x.com",
		Phone:         "1",
		CETRollNumber: "R0",
		Category:      "C0",
		PasswordHash:  hash,
		Role:          user.RoleAdmin,
	})
	require.NoError(t, err)
	require.NoError(t, svc.Signup(ctx, validInput()))

	_, adminToken, err := svc.Login(ctx, "admin@x.com", "pw")
	require.NoError(t, err)
	_, userToken, err := svc.Login(ctx, "a@x.com", "pw")
	require.NoError(t, err)

	admin, err := svc.IsAdmin(ctx, adminToken)
	require.NoError(t, err)
	assert.True(t, admin)

	admin, err = svc.IsAdmin(ctx, userToken)
	require.NoError(t, err)
	assert.False(t, admin)

	admin, err = svc.IsAdmin(ctx, "unknown-token")
	require.NoError(t, err)
	assert.False(t, admin)
}

func TestSignupNeverStoresPlaintext(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)

	require.NoError(t, svc.Signup(ctx, validInput()))

	stored, err := repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotEmpty(t, stored.PasswordHash)
	assert.NotEqual(t, "pw", stored.PasswordHash)
	assert.True(t, CheckPassword("pw", stored.PasswordHash))
}
