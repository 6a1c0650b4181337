package auth

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/cet-portal/internal/user"
)

// ContextUserKey は、ハンドラー間で解決済みアカウントを共有するためのキーです。
const ContextUserKey = "auth.user"

// RequireLogin はセッションを検証するミドルウェアを返します。
// 解決できた場合はアカウント全体をコンテキストに載せます。
func (h *Handler) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok, err := h.svc.Subject(c.Request.Context(), h.sessionToken(c))
		if err != nil {
			log.Printf("session resolve error: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code":    "SERVER_ERROR",
				"message": "サーバーエラーが発生しました",
			})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "UNAUTHENTICATED",
				"message": "ログインが必要です",
			})
			return
		}

		c.Set(ContextUserKey, u)
		c.Next()
	}
}

// RequireAdmin は管理者ロールを要求するミドルウェアを返します。
// RequireLogin の内側で使う前提です。ロールは RequireLogin がリクエストごとに
// ストアから読み直した値なので、権限の剥奪は次のリクエストから効きます。
func (h *Handler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUserFrom(c)
		if !ok || u.Role != user.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code":    "FORBIDDEN",
				"message": "管理者のみアクセスできます",
			})
			return
		}
		c.Next()
	}
}

// CurrentUserFrom はコンテキストから解決済みアカウントを取り出します。
func CurrentUserFrom(c *gin.Context) (*user.User, bool) {
	v, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	u, ok := v.(*user.User)
	return u, ok
}
