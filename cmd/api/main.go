// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/yourusername/authgate/internal/auth"
	"github.com/yourusername/authgate/internal/config"
	"github.com/yourusername/authgate/internal/password"
	"github.com/yourusername/authgate/internal/session"
	"github.com/yourusername/authgate/internal/users"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	// データベース接続（一意制約違反を gorm.ErrDuplicatedKey へ変換する）
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(&users.User{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// セッションストアの設定
	sessionStore, err := setupSessionStore(cfg)
	if err != nil {
		log.Fatalf("Failed to set up session store: %v", err)
	}

	lifetime := time.Duration(cfg.SessionLifetimeHours) * time.Hour
	userStore := users.NewStore(db, cfg.IdentifierCaseFold)
	service := auth.NewService(userStore, sessionStore, password.NewHasher())
	handler := auth.NewHandler(service, cfg.GinMode == gin.ReleaseMode, lifetime)

	// Ginルーターの初期化（デフォルトミドルウェア: Logger, Recovery）
	router := gin.Default()

	// CORSミドルウェアの設定（単一オリジン、資格情報付き）
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.CORSAllowedOrigin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Accept",
	}
	router.Use(cors.New(corsConfig))

	// ルーティングの設定
	setupRoutes(router, handler)

	// サーバーの起動
	addr := ":" + cfg.Port
	log.Printf("Starting API server on %s (mode: %s)", addr, cfg.GinMode)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupSessionStore は Redis ベースのセッションストアを組み立てます。
func setupSessionStore(cfg *config.Config) (session.Store, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	redisClient := redis.NewClient(opt)
	ttl := time.Duration(cfg.SessionLifetimeHours) * time.Hour
	return session.NewRedisStore(redisClient, cfg.SessionSecret, ttl), nil
}

// setupRoutes は認証 API の配線を行います。
func setupRoutes(router *gin.Engine, handler *auth.Handler) {
	// まずは誰でも叩けるヘルスチェックを登録
	router.GET("/health", handleHealth)

	router.GET("/check_auth", handler.CheckAuth)
	router.POST("/create_user", handler.CreateUser)
	router.POST("/login", handler.Login)
	router.POST("/logout", handler.Logout)
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "authgate-api",
		"version": "0.1.0",
	})
}
