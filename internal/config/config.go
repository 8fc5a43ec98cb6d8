package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"

	SessionStoreMemory   = "memory"
	SessionStorePostgres = "postgres"
)

// Configはアプリ全体の設定
type Config struct {
	Port     string // サーバーポート（8080）
	AppEnv   string // development / production
	LogLevel string

	DB      DBConfig
	Session SessionConfig

	BcryptCost int
}

type DBConfig struct {
	DatabaseURL string // あれば最優先
	Host        string
	Port        int
	User        string
	Password    string
	Name        string
	SSLMode     string
}

type SessionConfig struct {
	TTL           time.Duration // 絶対期限（24h）
	SweepInterval time.Duration // 期限切れ掃除の間隔
	CookieName    string
	CookieSecure  bool
	Store         string // memory / postgres
}

// 接続文字列（DATABASE_URLがあればそれ）
func (c DBConfig) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Name,
		RawQuery: "sslmode=" + c.SSLMode,
	}
	return u.String()
}

func (c Config) IsDevelopment() bool {
	return c.AppEnv == EnvDevelopment
}

// Loadは環境変数から読む（.envはmainでgodotenvが読み込み済み）
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := Config{
		Port:     strings.TrimPrefix(v.GetString("PORT"), ":"),
		AppEnv:   v.GetString("APP_ENV"),
		LogLevel: v.GetString("LOG_LEVEL"),

		DB: DBConfig{
			DatabaseURL: v.GetString("DATABASE_URL"),
			Host:        v.GetString("POSTGRES_HOST"),
			Port:        v.GetInt("POSTGRES_PORT"),
			User:        v.GetString("POSTGRES_USER"),
			Password:    v.GetString("POSTGRES_PASSWORD"),
			Name:        v.GetString("POSTGRES_DB"),
			SSLMode:     v.GetString("POSTGRES_SSLMODE"),
		},

		Session: SessionConfig{
			TTL:           v.GetDuration("SESSION_TTL"),
			SweepInterval: v.GetDuration("SESSION_SWEEP_INTERVAL"),
			CookieName:    v.GetString("SESSION_COOKIE_NAME"),
			Store:         strings.ToLower(v.GetString("SESSION_STORE")),
		},

		BcryptCost: v.GetInt("BCRYPT_COST"),
	}

	// 指定が無ければ development 以外は Secure
	if v.IsSet("COOKIE_SECURE") {
		cfg.Session.CookieSecure = v.GetBool("COOKIE_SECURE")
	} else {
		cfg.Session.CookieSecure = cfg.AppEnv != EnvDevelopment
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.DB.DatabaseURL == "" && cfg.DB.Port <= 0 {
		return Config{}, fmt.Errorf("POSTGRES_PORT must be positive")
	}
	if cfg.Session.TTL <= 0 {
		return Config{}, fmt.Errorf("SESSION_TTL must be positive")
	}
	if cfg.Session.SweepInterval <= 0 {
		return Config{}, fmt.Errorf("SESSION_SWEEP_INTERVAL must be positive")
	}
	if cfg.Session.CookieName == "" {
		return Config{}, fmt.Errorf("SESSION_COOKIE_NAME is required")
	}
	switch cfg.Session.Store {
	case SessionStoreMemory, SessionStorePostgres:
	default:
		return Config{}, fmt.Errorf("SESSION_STORE must be %q or %q", SessionStoreMemory, SessionStorePostgres)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", EnvDevelopment)
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", 5432)
	v.SetDefault("POSTGRES_USER", "postgres")
	v.SetDefault("POSTGRES_PASSWORD", "postgres")
	v.SetDefault("POSTGRES_DB", "storefront")
	v.SetDefault("POSTGRES_SSLMODE", "disable")

	v.SetDefault("SESSION_TTL", 24*time.Hour)
	v.SetDefault("SESSION_SWEEP_INTERVAL", 10*time.Minute)
	v.SetDefault("SESSION_COOKIE_NAME", "sid")
	v.SetDefault("SESSION_STORE", SessionStoreMemory)

	v.SetDefault("BCRYPT_COST", 12)
}
