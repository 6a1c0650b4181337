package auth

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/cet-portal/internal/user"
)

// SessionCookieName はセッショントークンを運ぶクッキー名です。
const SessionCookieName = "cet_sid"

// Handler は認証まわりの HTTP ハンドラー一式です。
type Handler struct {
	svc    *Service
	secure bool // release モードでは Secure 属性を付ける
}

// NewHandler は Handler を作成します。
func NewHandler(svc *Service, secureCookie bool) *Handler {
	return &Handler{svc: svc, secure: secureCookie}
}

type signupRequest struct {
	FullName      string `json:"fullname"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	CETRollNumber string `json:"cetRollNumber"`
	Category      string `json:"category"`
	Password      string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Signup は POST /api/signup のハンドラーです。
func (h *Handler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "リクエストボディを JSON で送ってください",
		})
		return
	}

	err := h.svc.Signup(c.Request.Context(), SignupInput{
		FullName:      req.FullName,
		Email:         req.Email,
		Phone:         req.Phone,
		CETRollNumber: req.CETRollNumber,
		Category:      req.Category,
		Password:      req.Password,
	})
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, gin.H{
			"message": "アカウントを作成しました",
		})
	case errors.Is(err, ErrMissingFields):
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "すべての項目を入力してください",
		})
	case errors.Is(err, user.ErrDuplicateEmail):
		c.JSON(http.StatusConflict, gin.H{
			"code":    "EMAIL_TAKEN",
			"message": "このメールアドレスは既に登録されています",
		})
	default:
		log.Printf("signup error: %v", err)
		serverError(c)
	}
}

// Login は POST /api/login のハンドラーです。
// アカウントの有無とパスワード不一致は意図的に同じ応答に畳み込みます。
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "email と password を JSON で送ってください",
		})
		return
	}

	summary, token, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	switch {
	case err == nil:
		h.setSessionCookie(c, token)
		c.JSON(http.StatusOK, gin.H{
			"message": "ログインしました",
			"user":    summary,
		})
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrInvalidPassword):
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    "INVALID_CREDENTIALS",
			"message": "メールアドレスまたはパスワードが正しくありません",
		})
	default:
		log.Printf("login error: %v", err)
		serverError(c)
	}
}

// Logout は POST /api/logout のハンドラーです。常に成功します。
func (h *Handler) Logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context(), h.sessionToken(c)); err != nil {
		log.Printf("logout error: %v", err)
	}
	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{
		"message": "ログアウトしました",
	})
}

// CheckAuth は GET /api/check-auth のハンドラーです。失敗しても未ログイン扱いです。
func (h *Handler) CheckAuth(c *gin.Context) {
	_, ok, err := h.svc.Subject(c.Request.Context(), h.sessionToken(c))
	if err != nil {
		log.Printf("check-auth error: %v", err)
		ok = false
	}
	c.JSON(http.StatusOK, gin.H{"loggedIn": ok})
}

// CurrentUser は GET /api/current-user のハンドラーです。
func (h *Handler) CurrentUser(c *gin.Context) {
	summary, ok, err := h.svc.CurrentSubject(c.Request.Context(), h.sessionToken(c))
	if err != nil {
		log.Printf("current-user error: %v", err)
		ok = false
	}
	if !ok {
		c.JSON(http.StatusOK, gin.H{"loggedIn": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"loggedIn": true,
		"user":     summary,
	})
}

// AdminCheck は GET /api/admin-check のハンドラーです。失敗しても非管理者扱いです。
func (h *Handler) AdminCheck(c *gin.Context) {
	admin, err := h.svc.IsAdmin(c.Request.Context(), h.sessionToken(c))
	if err != nil {
		log.Printf("admin-check error: %v", err)
		admin = false
	}
	c.JSON(http.StatusOK, gin.H{"admin": admin})
}

// ListUsers は GET /api/admin/users のハンドラーです。
// RequireLogin と RequireAdmin の内側に配置される前提です。
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.svc.ListUsers(c.Request.Context())
	if err != nil {
		log.Printf("list-users error: %v", err)
		serverError(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *Handler) sessionToken(c *gin.Context) string {
	token, err := c.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return token
}

func (h *Handler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, h.svc.SessionTTL(), "/", "", h.secure, true)
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", h.secure, true)
}

func serverError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"code":    "SERVER_ERROR",
		"message": "サーバーエラーが発生しました",
	})
}
