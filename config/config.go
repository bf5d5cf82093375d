package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type Config struct {
	Port    string `mapstructure:"port"`
	GinMode string `mapstructure:"gin_mode"`

	DBDriver string `mapstructure:"db_driver"`
	DBDSN    string `mapstructure:"db_dsn"`

	JWTSecret    string        `mapstructure:"jwt_secret"`
	JWTTTL       time.Duration `mapstructure:"jwt_ttl"`
	CookieName   string        `mapstructure:"cookie_name"`
	CookieSecure bool          `mapstructure:"cookie_secure"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`

	UploadDir string `mapstructure:"upload_dir"`
	PublicURL string `mapstructure:"public_url"`
	S3Bucket  string `mapstructure:"s3_bucket"`
	S3Region  string `mapstructure:"s3_region"`

	RedisURL     string   `mapstructure:"redis_url"`
	KafkaBrokers []string `mapstructure:"kafka_brokers"`
	KafkaTopic   string   `mapstructure:"kafka_topic"`

	TracingExporter string `mapstructure:"tracing_exporter"`
	OTLPEndpoint    string `mapstructure:"otlp_endpoint"`

	TZOffsetMinutes int    `mapstructure:"tz_offset_minutes"`
	LogLevel        string `mapstructure:"log_level"`
	LogFormat       string `mapstructure:"log_format"`

	LoginRate  float64 `mapstructure:"login_rate"`
	LoginBurst int     `mapstructure:"login_burst"`
}

var defaults = map[string]interface{}{
	"port":              "8080",
	"gin_mode":          "debug",
	"db_driver":         "sqlite",
	"db_dsn":            "file:delivery.db?_foreign_keys=on",
	"jwt_secret":        "",
	"jwt_ttl":           "24h",
	"cookie_name":       "token",
	"cookie_secure":     false,
	"cors_origins":      "http://localhost:5173,http://localhost:5174",
	"upload_dir":        "uploads",
	"public_url":        "http://localhost:8080",
	"s3_bucket":         "",
	"s3_region":         "us-east-1",
	"redis_url":         "",
	"kafka_brokers":     "",
	"kafka_topic":       "order-events",
	"tracing_exporter":  "none",
	"otlp_endpoint":     "localhost:4317",
	"tz_offset_minutes": -180,
	"log_level":         "info",
	"log_format":        "text",
	"login_rate":        0.2,
	"login_burst":       5,
}

// Load reads .env (if present), the optional config file and the
// environment, in increasing order of precedence.
func Load(cfgFile string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	v.AutomaticEnv()

	var cfg Config
	hook := viper.DecoderConfigOption(func(dc *mapstructure.DecoderConfig) {
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	})
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	cfg.CORSOrigins = compact(cfg.CORSOrigins)
	cfg.KafkaBrokers = compact(cfg.KafkaBrokers)
	return &cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("unsupported GIN_MODE %q", c.GinMode)
	}
	switch c.TracingExporter {
	case "none", "stdout", "otlp":
	default:
		return fmt.Errorf("unsupported TRACING_EXPORTER %q", c.TracingExporter)
	}
	if c.GinMode == "release" && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in release mode")
	}
	return nil
}

func compact(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
