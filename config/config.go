package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	JWTTTL       time.Duration
	ServerPort   int

	RedisAddr           string
	RedisPassword       string
	RedisDB             int
	LeaderboardCacheTTL time.Duration

	LogLevel  string
	LogFormat string

	CORSAllowedOrigins []string

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// UploadsEnabled reports whether every R2 setting is present.
func (c *Config) UploadsEnabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" &&
		c.R2BucketName != "" && c.R2PublicBaseURL != ""
}

// Load reads configuration from the environment, optionally seeded from a .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("server_port", 8080)
	v.SetDefault("jwt_ttl_hours", 24)
	v.SetDefault("redis_db", 0)
	v.SetDefault("leaderboard_cache_ttl", "30s")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("cors_allowed_origins", "*")

	dbURL := v.GetString("database_url")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := v.GetString("jwt_secret_key")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port := v.GetInt("server_port")
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	ttlHours := v.GetInt("jwt_ttl_hours")
	if ttlHours <= 0 {
		return nil, fmt.Errorf("JWT_TTL_HOURS must be positive, got %d", ttlHours)
	}

	cacheTTL, err := time.ParseDuration(v.GetString("leaderboard_cache_ttl"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEADERBOARD_CACHE_TTL: %w", err)
	}

	logFormat := strings.ToLower(v.GetString("log_format"))
	if logFormat != "json" && logFormat != "console" {
		return nil, fmt.Errorf("LOG_FORMAT must be json or console, got %q", logFormat)
	}

	cfg := &Config{
		DatabaseURL:         dbURL,
		JWTSecretKey:        jwtKey,
		JWTTTL:              time.Duration(ttlHours) * time.Hour,
		ServerPort:          port,
		RedisAddr:           v.GetString("redis_addr"),
		RedisPassword:       v.GetString("redis_password"),
		RedisDB:             v.GetInt("redis_db"),
		LeaderboardCacheTTL: cacheTTL,
		LogLevel:            v.GetString("log_level"),
		LogFormat:           logFormat,
		CORSAllowedOrigins:  splitList(v.GetString("cors_allowed_origins")),
		R2AccountID:         v.GetString("r2_account_id"),
		R2AccessKeyID:       v.GetString("r2_access_key_id"),
		R2SecretAccessKey:   v.GetString("r2_secret_access_key"),
		R2BucketName:        v.GetString("r2_bucket_name"),
		R2PublicBaseURL:     v.GetString("r2_public_base_url"),
	}

	return cfg, nil
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
