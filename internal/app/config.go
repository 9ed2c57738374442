package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/yungbote/accessly-backend/internal/clients/openai"
	"github.com/yungbote/accessly-backend/internal/clients/redis"
	"github.com/yungbote/accessly-backend/internal/data/db"
	"github.com/yungbote/accessly-backend/internal/http/middleware"
	"github.com/yungbote/accessly-backend/internal/observability"
	"github.com/yungbote/accessly-backend/internal/platform/objectstore"
	"github.com/yungbote/accessly-backend/internal/scanner"
	"github.com/yungbote/accessly-backend/internal/services"
)

const ServiceName = "accessly-backend"

type Config struct {
	Port            string
	LogMode         string
	ShutdownTimeout time.Duration

	JWTSecretKey   string
	AccessTokenTTL time.Duration
	CookieSecure   bool
	CORSOrigins    []string

	DB          db.Config
	Redis       redis.Config
	OpenAI      openai.Config
	Scanner     scanner.Config
	Snapshots   objectstore.Config
	Otel        observability.OtelConfig
	MetricsAddr string
	Metrics     bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log_mode", "development")
	v.SetDefault("shutdown_timeout_seconds", 75)

	v.SetDefault("jwt_secret_key", "defaultsecret")
	v.SetDefault("access_token_ttl", int(services.DefaultAccessTTL.Seconds()))
	v.SetDefault("cookie_secure", false)
	v.SetDefault("cors_origins", strings.Join(middleware.DefaultCORSOrigins, ","))

	v.SetDefault("db_driver", db.DriverPostgres)
	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", "5432")
	v.SetDefault("postgres_user", "postgres")
	v.SetDefault("postgres_password", "")
	v.SetDefault("postgres_name", "accessly")
	v.SetDefault("postgres_sslmode", "disable")
	v.SetDefault("postgres_max_open_conns", 20)
	v.SetDefault("postgres_max_idle_conns", 5)
	v.SetDefault("sqlite_path", "accessly.db")

	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_username", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)

	v.SetDefault("openai_api_key", "")
	v.SetDefault("openai_base_url", openai.DefaultBaseURL)
	v.SetDefault("openai_model", openai.DefaultModel)
	v.SetDefault("openai_timeout_seconds", 60)
	v.SetDefault("openai_temperature", 0.2)

	v.SetDefault("scan_nav_timeout_seconds", int(scanner.DefaultNavTimeout.Seconds()))
	v.SetDefault("scan_settle_seconds", int(scanner.DefaultSettle.Seconds()))
	v.SetDefault("scan_max_concurrent", scanner.DefaultMaxConcurrent)
	v.SetDefault("axe_script_url", scanner.DefaultAxeScriptURL)
	v.SetDefault("chrome_path", "")

	v.SetDefault("snapshot_storage_mode", string(objectstore.ModeOff))
	v.SetDefault("snapshot_local_dir", "snapshots")
	v.SetDefault("snapshot_gcs_bucket", "")
	v.SetDefault("snapshot_gcs_emulator_host", "")
	v.SetDefault("google_application_credentials", "")

	v.SetDefault("metrics_enabled", true)
	v.SetDefault("metrics_addr", "")

	v.SetDefault("otel_enabled", false)
	v.SetDefault("otel_exporter_otlp_endpoint", "")
	v.SetDefault("otel_exporter_otlp_headers", "")
	v.SetDefault("otel_exporter_otlp_insecure", false)
	v.SetDefault("otel_traces_sample_ratio", 1.0)
	v.SetDefault("otel_environment", "")
	v.SetDefault("service_version", "dev")
}

// LoadConfig reads defaults, then the optional accessly.yaml (or the file at
// path), then the environment. Keys are the lowercase form of the env names.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("accessly")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}
	return fromViper(v)
}

func seconds(v *viper.Viper, key string) time.Duration {
	return time.Duration(v.GetInt(key)) * time.Second
}

func fromViper(v *viper.Viper) (Config, error) {
	mode, err := objectstore.ParseMode(v.GetString("snapshot_storage_mode"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:            v.GetString("port"),
		LogMode:         v.GetString("log_mode"),
		ShutdownTimeout: seconds(v, "shutdown_timeout_seconds"),

		JWTSecretKey:   v.GetString("jwt_secret_key"),
		AccessTokenTTL: seconds(v, "access_token_ttl"),
		CookieSecure:   v.GetBool("cookie_secure"),
		CORSOrigins:    splitList(v.GetString("cors_origins")),

		DB: db.Config{
			Driver:       v.GetString("db_driver"),
			Host:         v.GetString("postgres_host"),
			Port:         v.GetString("postgres_port"),
			User:         v.GetString("postgres_user"),
			Password:     v.GetString("postgres_password"),
			Name:         v.GetString("postgres_name"),
			SSLMode:      v.GetString("postgres_sslmode"),
			SQLitePath:   v.GetString("sqlite_path"),
			MaxOpenConns: v.GetInt("postgres_max_open_conns"),
			MaxIdleConns: v.GetInt("postgres_max_idle_conns"),
		},
		Redis: redis.Config{
			Addr:     v.GetString("redis_addr"),
			Username: v.GetString("redis_username"),
			Password: v.GetString("redis_password"),
			DB:       v.GetInt("redis_db"),
		},
		OpenAI: openai.Config{
			APIKey:      v.GetString("openai_api_key"),
			BaseURL:     v.GetString("openai_base_url"),
			Model:       v.GetString("openai_model"),
			Timeout:     seconds(v, "openai_timeout_seconds"),
			Temperature: v.GetFloat64("openai_temperature"),
		},
		Scanner: scanner.Config{
			ChromePath:    v.GetString("chrome_path"),
			AxeScriptURL:  v.GetString("axe_script_url"),
			NavTimeout:    seconds(v, "scan_nav_timeout_seconds"),
			Settle:        seconds(v, "scan_settle_seconds"),
			MaxConcurrent: v.GetInt("scan_max_concurrent"),
		},
		Snapshots: objectstore.Config{
			Mode:         mode,
			LocalDir:     v.GetString("snapshot_local_dir"),
			Bucket:       v.GetString("snapshot_gcs_bucket"),
			EmulatorHost: v.GetString("snapshot_gcs_emulator_host"),
			Credentials:  v.GetString("google_application_credentials"),
		},
		Otel: observability.OtelConfig{
			Enabled:     v.GetBool("otel_enabled"),
			ServiceName: ServiceName,
			Environment: v.GetString("otel_environment"),
			Version:     v.GetString("service_version"),
			Endpoint:    v.GetString("otel_exporter_otlp_endpoint"),
			Headers:     v.GetString("otel_exporter_otlp_headers"),
			Insecure:    v.GetBool("otel_exporter_otlp_insecure"),
			SampleRatio: v.GetFloat64("otel_traces_sample_ratio"),
		},
		Metrics:     v.GetBool("metrics_enabled"),
		MetricsAddr: v.GetString("metrics_addr"),
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.JWTSecretKey) == "" {
		return fmt.Errorf("JWT_SECRET_KEY must not be empty")
	}
	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_TTL must be positive")
	}
	return objectstore.Validate(c.Snapshots)
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
