package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port         string
	DBDSN        string
	LogFile      string
	LogLevel     string
	LogFormat    string
	JWTSecret    string
	JWTTTL       time.Duration
	Timezone     string
	CacheBackend string // memory | redis
	RedisAddr    string
	SeedDemo     bool
}

// Location resolves Timezone; empty or "Local" means the process zone. Validate rejects
// unknown names, so a loaded config never hits the fallback.
func (c Config) Location() *time.Location {
	loc, err := c.loadLocation()
	if err != nil {
		return time.Local
	}
	return loc
}

func (c Config) loadLocation() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8081")
	v.SetDefault("db_dsn", "stockbook.db") // sqlite file in working dir
	v.SetDefault("log_file", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("jwt_secret", "change-me")
	v.SetDefault("jwt_ttl", "12h")
	v.SetDefault("timezone", "Local")
	v.SetDefault("cache_backend", "memory")
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("seed_demo", false)
}

// Load reads defaults, an optional stockbook.toml and STOCKBOOK_* env vars (highest priority).
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("stockbook")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("STOCKBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := Config{
		Port:         v.GetString("port"),
		DBDSN:        v.GetString("db_dsn"),
		LogFile:      v.GetString("log_file"),
		LogLevel:     v.GetString("log_level"),
		LogFormat:    v.GetString("log_format"),
		JWTSecret:    v.GetString("jwt_secret"),
		JWTTTL:       v.GetDuration("jwt_ttl"),
		Timezone:     v.GetString("timezone"),
		CacheBackend: strings.ToLower(v.GetString("cache_backend")),
		RedisAddr:    v.GetString("redis_addr"),
		SeedDemo:     v.GetBool("seed_demo"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.DBDSN == "" {
		return errors.New("config: db_dsn is required")
	}
	if c.JWTTTL <= 0 {
		return errors.New("config: jwt_ttl must be positive")
	}
	switch c.CacheBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("config: unknown cache_backend %q", c.CacheBackend)
	}
	if _, err := c.loadLocation(); err != nil {
		return fmt.Errorf("config: unknown timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// Fields is the loggable view of the config; secrets are left out.
func (c Config) Fields() map[string]any {
	return map[string]any{
		"port":          c.Port,
		"db_dsn":        c.DBDSN,
		"log_file":      c.LogFile,
		"log_level":     c.LogLevel,
		"timezone":      c.Timezone,
		"cache_backend": c.CacheBackend,
		"redis_addr":    c.RedisAddr,
		"seed_demo":     c.SeedDemo,
	}
}
