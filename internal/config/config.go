package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName           string
	AppEnv            string
	AppPort           string
	DatabaseURL       string
	SQLitePath        string
	RedisURL          string
	NATSURL           string
	NATSSubjectPrefix string
	JWTSecret         string
	Audit             AuditConfig
}

// AuditConfig tunes the activity trail.
type AuditConfig struct {
	SnapshotTTL        time.Duration
	SnapshotMaxEntries int
	DedupWindow        time.Duration
	LowStockWindow     time.Duration
	SaleEditWindow     time.Duration
	DescriptionMax     int
	FallbackActorName  string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("ALMACEN")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Almacen API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("database.url", "")
	v.SetDefault("database.sqlite_path", "almacen.db")
	v.SetDefault("redis.url", "")
	v.SetDefault("nats.url", "")
	v.SetDefault("nats.subject_prefix", "almacen")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("audit.snapshot_ttl", "2m")
	v.SetDefault("audit.snapshot_max_entries", 4096)
	v.SetDefault("audit.dedup_window", "5s")
	v.SetDefault("audit.low_stock_window", "1h")
	v.SetDefault("audit.sale_edit_window", "0s")
	v.SetDefault("audit.description_max", 255)
	v.SetDefault("audit.fallback_actor_name", "sistema")

	durations := map[string]time.Duration{}
	for _, key := range []string{"audit.snapshot_ttl", "audit.dedup_window", "audit.low_stock_window", "audit.sale_edit_window"} {
		parsed, err := time.ParseDuration(v.GetString(key))
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", key, err)
		}
		if parsed < 0 {
			return Config{}, fmt.Errorf("invalid %s: must not be negative", key)
		}
		durations[key] = parsed
	}

	cfg := Config{
		AppName:           v.GetString("app.name"),
		AppEnv:            v.GetString("app.env"),
		AppPort:           v.GetString("app.port"),
		DatabaseURL:       v.GetString("database.url"),
		SQLitePath:        v.GetString("database.sqlite_path"),
		RedisURL:          v.GetString("redis.url"),
		NATSURL:           v.GetString("nats.url"),
		NATSSubjectPrefix: v.GetString("nats.subject_prefix"),
		JWTSecret:         v.GetString("jwt.secret"),
		Audit: AuditConfig{
			SnapshotTTL:        durations["audit.snapshot_ttl"],
			SnapshotMaxEntries: v.GetInt("audit.snapshot_max_entries"),
			DedupWindow:        durations["audit.dedup_window"],
			LowStockWindow:     durations["audit.low_stock_window"],
			SaleEditWindow:     durations["audit.sale_edit_window"],
			DescriptionMax:     v.GetInt("audit.description_max"),
			FallbackActorName:  strings.TrimSpace(v.GetString("audit.fallback_actor_name")),
		},
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.DatabaseURL == "" && cfg.SQLitePath == "" {
		return Config{}, fmt.Errorf("either database url or sqlite path must be provided")
	}

	if cfg.Audit.SnapshotMaxEntries <= 0 {
		cfg.Audit.SnapshotMaxEntries = 4096
	}

	if cfg.Audit.DescriptionMax <= 0 || cfg.Audit.DescriptionMax > 255 {
		cfg.Audit.DescriptionMax = 255
	}

	return cfg, nil
}
