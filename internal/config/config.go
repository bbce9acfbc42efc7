package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port                string   `mapstructure:"PORT"`
	Env                 string   `mapstructure:"ENV"`
	APIPrefix           string   `mapstructure:"API_PREFIX"`
	LogLevel            string   `mapstructure:"LOG_LEVEL"`
	JWTSecret           string   `mapstructure:"JWT_SECRET"`
	JWTRefreshSecret    string   `mapstructure:"JWT_REFRESH_SECRET"`
	JWTExpiresIn        string   `mapstructure:"JWT_EXPIRES_IN"`
	JWTRefreshExpiresIn string   `mapstructure:"JWT_REFRESH_EXPIRES_IN"`
	CORSOrigins         []string `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS        float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst      int      `mapstructure:"RATE_LIMIT_BURST"`
	RequestTimeout      string   `mapstructure:"REQUEST_TIMEOUT"`
	BodyLimit           string   `mapstructure:"BODY_LIMIT"`
	AIDelay             string   `mapstructure:"AI_DELAY"`
	GeminiAPIKey        string   `mapstructure:"GEMINI_API_KEY"`
	GeminiModel         string   `mapstructure:"GEMINI_MODEL"`
	DatabaseURL         string   `mapstructure:"DATABASE_URL"`
	DBMaxConns          int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns          int32    `mapstructure:"DB_MIN_CONNS"`
	SeedFile            string   `mapstructure:"SEED_FILE"`
}

// devRefreshSecret is only used when ENV=development and no refresh secret is set.
const devRefreshSecret = "studyhub-dev-refresh-secret"

var keys = []string{
	"PORT", "ENV", "API_PREFIX", "LOG_LEVEL",
	"JWT_SECRET", "JWT_REFRESH_SECRET", "JWT_EXPIRES_IN", "JWT_REFRESH_EXPIRES_IN",
	"CORS_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	"REQUEST_TIMEOUT", "BODY_LIMIT", "AI_DELAY",
	"GEMINI_API_KEY", "GEMINI_MODEL",
	"DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
	"SEED_FILE",
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("API_PREFIX", "/api")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("JWT_EXPIRES_IN", "24h")
	v.SetDefault("JWT_REFRESH_EXPIRES_IN", "7d")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("BODY_LIMIT", "10M")
	v.SetDefault("AI_DELAY", "0s")
	v.SetDefault("GEMINI_MODEL", "gemini-2.0-flash")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if len(cfg.CORSOrigins) <= 1 {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = splitList(origins)
		}
	}

	if cfg.JWTRefreshSecret == "" && cfg.IsDev() {
		cfg.JWTRefreshSecret = devRefreshSecret
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// AccessTTL returns the parsed JWT_EXPIRES_IN value.
func (c *Config) AccessTTL() time.Duration {
	d, _ := ParseDuration(c.JWTExpiresIn)
	return d
}

// RefreshTTL returns the parsed JWT_REFRESH_EXPIRES_IN value.
func (c *Config) RefreshTTL() time.Duration {
	d, _ := ParseDuration(c.JWTRefreshExpiresIn)
	return d
}

func (c *Config) Timeout() time.Duration {
	d, _ := ParseDuration(c.RequestTimeout)
	return d
}

func (c *Config) AIDelayDuration() time.Duration {
	d, _ := ParseDuration(c.AIDelay)
	return d
}

// ParseDuration accepts anything time.ParseDuration does plus a whole-day
// suffix ("7d").
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}

// Validate checks that the configuration is safe to run.
func (c *Config) Validate() error {
	if c.Env != "development" && c.Env != "production" && c.Env != "test" {
		return fmt.Errorf("ENV must be \"development\", \"production\", or \"test\", got %q", c.Env)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.JWTRefreshSecret == "" {
		return fmt.Errorf("JWT_REFRESH_SECRET is required")
	}
	if c.JWTSecret == c.JWTRefreshSecret {
		return fmt.Errorf("JWT_SECRET and JWT_REFRESH_SECRET must differ")
	}

	durations := map[string]string{
		"JWT_EXPIRES_IN":         c.JWTExpiresIn,
		"JWT_REFRESH_EXPIRES_IN": c.JWTRefreshExpiresIn,
		"REQUEST_TIMEOUT":        c.RequestTimeout,
		"AI_DELAY":               c.AIDelay,
	}
	for name, val := range durations {
		d, err := ParseDuration(val)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if d < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	if c.AccessTTL() == 0 || c.RefreshTTL() == 0 {
		return fmt.Errorf("token lifetimes must be positive")
	}
	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be positive")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	return nil
}
