// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/yourusername/note-keeper/internal/auth"
	"github.com/yourusername/note-keeper/internal/config"
	"github.com/yourusername/note-keeper/internal/user"
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

	// セッションストアの設定（クッキー署名鍵は必須）
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   auth.SessionMaxAgeSeconds(),
		HttpOnly: true,
		Secure:   cfg.GinMode == gin.ReleaseMode,
		SameSite: http.SameSiteStrictMode,
	})
	router.Use(sessions.Sessions(auth.SessionCookieName, store))

	// CORSミドルウェアの設定
	corsConfig := cors.DefaultConfig()
	// CORS許可オリジンを設定（カンマ区切りの文字列を配列に変換）
	origins := strings.Split(cfg.CORSAllowedOrigins, ",")
	corsConfig.AllowOrigins = origins
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	// テンプレートの読み込み
	router.LoadHTMLGlob("web/templates/*.html")

	// データベース接続とマイグレーション
	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := user.RunMigrations(context.Background(), db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	users := user.NewPostgresRepository(db)

	// ログイン試行制限（REDIS_URL未設定の場合は無効）
	var limiter *auth.LoginLimiter
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to parse REDIS_URL: %v", err)
		}
		limiter = auth.NewLoginLimiter(redis.NewClient(opts), cfg.LoginMaxAttempts, cfg.LoginAttemptReset)
	}

	// ルーティングの設定
	setupRoutes(router, users, limiter)

	// サーバーの起動
	addr := ":" + cfg.Port
	log.Printf("Starting API server on %s (mode: %s)", addr, cfg.GinMode)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "note-keeper-api",
		"version": "0.1.0",
	})
}

// handleIndex はトップページのハンドラーです。ログアウト後の着地点になります。
func handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"pageTitle": "Нотатки",
	})
}

// handleNotes はログイン後の着地ページのハンドラーです。
func handleNotes(c *gin.Context) {
	c.HTML(http.StatusOK, "notes.html", gin.H{
		"pageTitle": "Мої нотатки",
	})
}

// setupRoutes は認証フローとユーザー一覧の配線を行います。
func setupRoutes(router *gin.Engine, users user.Repository, limiter *auth.LoginLimiter) {
	// まずは誰でも叩けるヘルスチェックを登録
	router.GET("/health", handleHealth)
	router.GET("/", handleIndex)

	authManager := auth.NewManager(users, limiter)

	// ログイン済みの利用者はフォームから /notes へ逃がす
	router.GET("/register", authManager.RedirectIfLoggedIn(), authManager.GetRegister)
	router.POST("/register", authManager.PostRegister)
	router.GET("/login", authManager.RedirectIfLoggedIn(), authManager.GetLogin)
	router.POST("/login", authManager.PostLogin)
	router.POST("/logout", authManager.PostLogout)

	// ログイン必須のページ
	protected := router.Group("")
	protected.Use(authManager.RequireLogin())
	{
		protected.GET("/notes", handleNotes)
		protected.GET("/users", user.ListHandler(users))
	}
}
