package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Admin    AdminConfig
	Storage  StorageConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Leave it off unless a reverse proxy overwrites those headers.
	TrustProxy bool
}

type DatabaseConfig struct {
	Host          string
	Port          string
	User          string
	Password      string
	Database      string
	Schema        string
	MigrationsDir string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type AdminConfig struct {
	Code            string
	CodeHash        string
	SessionSecret   string
	SessionTTL      time.Duration
	CookieSecure    bool
	LoginRateLimit  int
	LoginRateWindow time.Duration
}

type StorageConfig struct {
	Driver             string // supabase, gcs or none
	Bucket             string
	SupabaseURL        string
	SupabaseServiceKey string
	GCSCredentialsJSON string
	GCSCredentialsFile string
}

// IsProduction reports whether the server runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// DSN returns the postgres connection string for the configured database.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable&search_path=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.Schema)
}

// Addr returns host:port for the redis server.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

func Load() *Config {
	// .env is optional; real environment variables always win
	_ = godotenv.Load()

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "")
	viper.SetDefault("TRUST_PROXY", false)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("MIGRATIONS_DIR", "migrations")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("SESSION_TTL_HOURS", 24)
	viper.SetDefault("LOGIN_RATE_LIMIT", 5)
	viper.SetDefault("LOGIN_RATE_WINDOW_SECONDS", 60)
	viper.SetDefault("STORAGE_DRIVER", "supabase")
	viper.SetDefault("STORAGE_BUCKET", "imagens-produtos")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	env := viper.GetString("SERVER_ENV")
	cookieSecure := env == "production"
	if viper.IsSet("SESSION_COOKIE_SECURE") {
		cookieSecure = viper.GetBool("SESSION_COOKIE_SECURE")
	}

	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Env:            env,
			AllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
			TrustProxy:     viper.GetBool("TRUST_PROXY"),
		},
		Database: DatabaseConfig{
			Host:          viper.GetString("DB_HOST"),
			Port:          viper.GetString("DB_PORT"),
			User:          viper.GetString("DB_USER"),
			Password:      viper.GetString("DB_PASSWORD"),
			Database:      viper.GetString("DB_DATABASE"),
			Schema:        viper.GetString("DB_SCHEMA"),
			MigrationsDir: viper.GetString("MIGRATIONS_DIR"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Admin: AdminConfig{
			Code:            viper.GetString("ADMIN_CODE"),
			CodeHash:        viper.GetString("ADMIN_CODE_HASH"),
			SessionSecret:   viper.GetString("SESSION_SECRET"),
			SessionTTL:      time.Duration(viper.GetInt("SESSION_TTL_HOURS")) * time.Hour,
			CookieSecure:    cookieSecure,
			LoginRateLimit:  viper.GetInt("LOGIN_RATE_LIMIT"),
			LoginRateWindow: time.Duration(viper.GetInt("LOGIN_RATE_WINDOW_SECONDS")) * time.Second,
		},
		Storage: StorageConfig{
			Driver:             strings.ToLower(viper.GetString("STORAGE_DRIVER")),
			Bucket:             viper.GetString("STORAGE_BUCKET"),
			SupabaseURL:        viper.GetString("SUPABASE_URL"),
			SupabaseServiceKey: viper.GetString("SUPABASE_SERVICE_ROLE_KEY"),
			GCSCredentialsJSON: viper.GetString("GCS_CREDENTIALS_JSON"),
			GCSCredentialsFile: viper.GetString("GCS_CREDENTIALS_FILE"),
		},
	}
}

// Validate checks the settings the API cannot start without.
func (c *Config) Validate() error {
	if c.Admin.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}
	if c.Admin.Code == "" && c.Admin.CodeHash == "" {
		return fmt.Errorf("ADMIN_CODE or ADMIN_CODE_HASH is required")
	}
	if c.Admin.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL_HOURS must be positive")
	}
	switch c.Storage.Driver {
	case "supabase":
		if c.Storage.SupabaseURL == "" || c.Storage.SupabaseServiceKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY are required for the supabase storage driver")
		}
	case "gcs", "none":
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.Storage.Driver != "none" && c.Storage.Bucket == "" {
		return fmt.Errorf("STORAGE_BUCKET is required")
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
