// Package config loads settings from .env, an optional YAML file, the
// environment and command line flags, in increasing order of priority.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/penababayev/zakaz-zenan-zahmeti/internal/storage"
)

const configFileEnvName = "PANEL_CONFIG_FILE"

type api struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type httpCfg struct {
	Addr string `mapstructure:"addr"`
}

type sessionCfg struct {
	Secret string        `mapstructure:"secret"`
	Store  string        `mapstructure:"store"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type cookie struct {
	Secure bool `mapstructure:"secure"`
}

type db struct {
	DSN string `mapstructure:"dsn"`
}

type activity struct {
	Sink string `mapstructure:"sink"`
}

type kafka struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type mockapi struct {
	Addr      string `mapstructure:"addr"`
	JWTSecret string `mapstructure:"jwt_secret"`
}

type logCfg struct {
	Level string `mapstructure:"level"`
}

type Config struct {
	API      api              `mapstructure:"api"`
	HTTP     httpCfg          `mapstructure:"http"`
	Log      logCfg           `mapstructure:"log"`
	Session  sessionCfg       `mapstructure:"session"`
	Cookie   cookie           `mapstructure:"cookie"`
	DB       db               `mapstructure:"db"`
	Activity activity         `mapstructure:"activity"`
	Kafka    kafka            `mapstructure:"kafka"`
	Storage  storage.Options  `mapstructure:"storage"`
	S3       storage.S3Config `mapstructure:"s3"`
	MockAPI  mockapi          `mapstructure:"mockapi"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:8001")
	v.SetDefault("api.timeout", 10*time.Second)
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("session.secret", "dev-secret-change-me")
	v.SetDefault("session.store", "memory")
	v.SetDefault("session.ttl", 12*time.Hour)
	v.SetDefault("cookie.secure", false)
	v.SetDefault("db.dsn", "")
	v.SetDefault("activity.sink", "log")
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "seller-catalog-activity")
	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.local_dir", "./storage/uploads")
	v.SetDefault("storage.local_url_prefix", "/uploads")
	v.SetDefault("s3.region", "")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.prefix", "uploads")
	v.SetDefault("s3.public_base_url", "")
	v.SetDefault("mockapi.addr", ":8001")
	v.SetDefault("mockapi.jwt_secret", "dev-secret")
}

// Load reads configuration for a program started with args (without the
// program name). Keys map to env vars by upper-casing and replacing "." with
// "_", so api.base_url is API_BASE_URL.
func Load(args []string) (Config, error) {
	// A missing .env is fine.
	_ = godotenv.Load()

	fs := pflag.NewFlagSet("panel", pflag.ContinueOnError)
	file := fs.String("config", "", "optional YAML config file")
	fs.String("addr", "", "HTTP listen address (overrides HTTP_ADDR)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := configFile(*file, v); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	if f := fs.Lookup("addr"); f.Changed {
		v.Set("http.addr", f.Value.String())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	// Storage reads the S3 block from its own section.
	cfg.Storage.S3 = cfg.S3
	return cfg, nil
}

func configFile(flagValue string, v *viper.Viper) string {
	if flagValue != "" {
		return flagValue
	}
	v.MustBindEnv("config_file", configFileEnvName)
	return v.GetString("config_file")
}

// LogLevel parses Log.Level, falling back to info.
func (c Config) LogLevel() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Print logs the effective configuration without secrets.
func (c Config) Print(l *slog.Logger) {
	l.Info("config_loaded",
		slog.String("api_base_url", c.API.BaseURL),
		slog.String("http_addr", c.HTTP.Addr),
		slog.String("log_level", c.LogLevel().String()),
		slog.String("session_store", c.Session.Store),
		slog.Bool("cookie_secure", c.Cookie.Secure),
		slog.String("activity_sink", c.Activity.Sink),
		slog.String("storage_driver", c.Storage.Driver),
	)
}
