// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// サーバー設定
	Port    string // APIサーバーのポート番号
	GinMode string // Ginの実行モード (debug, release, test)

	// セッション設定
	SessionSecret        string // セッショントークン署名用の秘密鍵
	SessionLifetimeHours int    // 永続セッションの有効期間（時間）

	// CORS設定
	CORSAllowedOrigin string // 資格情報付きリクエストを許可するオリジン

	// データベース設定
	DBHost     string // PostgreSQLホスト
	DBUser     string // PostgreSQLユーザー名
	DBPassword string // PostgreSQLパスワード
	DBName     string // データベース名

	// セッションストア設定
	RedisURL string // セッション保存用Redis接続URL

	// 識別子の照合設定
	IdentifierCaseFold bool // true の場合、user_name と email を小文字に正規化して比較します
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	// .env.local ファイルを読み込む（存在しない場合はスキップ）
	loadEnvFile()

	config := &Config{
		// サーバー設定
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		// セッション設定
		SessionSecret:        getEnv("SESSION_SECRET", ""),
		SessionLifetimeHours: getEnvAsInt("SESSION_LIFETIME_HOURS", 24),

		// CORS設定
		CORSAllowedOrigin: getEnv("CORS_ALLOWED_ORIGIN", "http://localhost:5173"),

		// データベース設定
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "authgate"),

		// セッションストア設定
		RedisURL: getEnv("REDIS_URL", "redis://127.0.0.1:6379/0"),

		// 識別子の照合設定
		IdentifierCaseFold: getEnvAsBool("IDENTIFIER_CASE_FOLD", false),
	}

	// 必須設定のバリデーション
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DSN は PostgreSQL の接続文字列を組み立てます。
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName)
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	// トークン署名に必須のため、モードを問わずチェックする
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}
	if c.SessionLifetimeHours <= 0 {
		return fmt.Errorf("SESSION_LIFETIME_HOURS must be positive")
	}
	if c.GinMode == "release" {
		if c.DBPassword == "" {
			return fmt.Errorf("DB_PASSWORD is required in release mode")
		}
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required in release mode")
		}
	}

	return nil
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt は環境変数を整数として取得します。
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool は環境変数を真偽値として取得します。
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
