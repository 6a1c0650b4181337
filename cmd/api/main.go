// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/yourusername/cet-portal/internal/auth"
	"github.com/yourusername/cet-portal/internal/config"
	"github.com/yourusername/cet-portal/internal/session"
	"github.com/yourusername/cet-portal/internal/user"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	// Ginルーターの初期化（デフォルトミドルウェア: Logger, Recovery）
	router := gin.Default()

	// CORSミドルウェアの設定（クッキー送信を許すため credentials 必須）
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.CORSAllowedOrigins, ",")
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Accept",
	}
	router.Use(cors.New(corsConfig))

	// アカウントストアの用意
	users, err := newUserRepository(cfg)
	if err != nil {
		log.Fatalf("Failed to open user store: %v", err)
	}

	// セッションストアの用意
	store, err := newSessionStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open session store: %v", err)
	}
	sessions := session.NewManager(store, session.DefaultTTL)

	// ルーティングの設定
	handler := auth.NewHandler(
		auth.NewService(users, sessions),
		cfg.GinMode == gin.ReleaseMode,
	)
	setupRoutes(router, handler)

	// サーバーの起動
	addr := ":" + cfg.Port
	log.Printf("Starting API server on %s (mode: %s)", addr, cfg.GinMode)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// newUserRepository は DATABASE_URL の有無でアカウントストアを切り替えます。
func newUserRepository(cfg *config.Config) (user.Repository, error) {
	if cfg.DatabaseURL == "" {
		log.Printf("DATABASE_URL is empty, using in-memory user store")
		return user.NewMemoryRepository(), nil
	}
	return user.OpenPostgres(context.Background(), cfg.DatabaseURL)
}

// newSessionStore は SESSION_REDIS_URL の有無でセッションストアを切り替えます。
func newSessionStore(cfg *config.Config) (session.Store, error) {
	if cfg.SessionRedisURL == "" {
		log.Printf("SESSION_REDIS_URL is empty, using in-memory session store")
		return session.NewMemoryStore(), nil
	}
	opt, err := redis.ParseURL(cfg.SessionRedisURL)
	if err != nil {
		return nil, err
	}
	return session.NewRedisStore(redis.NewClient(opt)), nil
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "cet-portal-api",
		"version": "0.1.0",
	})
}

// setupRoutes は API グループと認証周りの配線を行います。
func setupRoutes(router *gin.Engine, handler *auth.Handler) {
	// まずは誰でも叩けるヘルスチェックを登録
	router.GET("/health", handleHealth)

	api := router.Group("/api")
	{
		api.POST("/signup", handler.Signup)
		api.POST("/login", handler.Login)
		api.POST("/logout", handler.Logout)
		api.GET("/check-auth", handler.CheckAuth)
		api.GET("/current-user", handler.CurrentUser)
		api.GET("/admin-check", handler.AdminCheck)

		admin := api.Group("/admin")
		admin.Use(handler.RequireLogin(), handler.RequireAdmin())
		{
			admin.GET("/users", handler.ListUsers)
		}
	}
}
