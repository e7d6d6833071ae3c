package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Coubiac/signstamp/internal/logger"
)

const envPrefix = "SIGNSTAMP"

// Config is the complete runtime configuration.
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Bridge  BridgeConfig
	Misc    MiscConfig
}

// ServerConfig configures the loopback command server the UI talks to.
type ServerConfig struct {
	Host               string        `validate:"required"`
	Port               int           `validate:"min=1,max=65535"`
	ReadTimeout        time.Duration `validate:"gt=0"`
	WriteTimeout       time.Duration `validate:"gte=0"` // 0 keeps the event stream open
	IdleTimeout        time.Duration `validate:"gt=0"`
	ShutDownTimeout    time.Duration `validate:"gt=0"`
	CORSAllowedOrigins string
}

// StorageConfig configures where collections and exports are stored.
type StorageConfig struct {
	AppID        string `validate:"required"`
	DataDir      string
	DownloadsDir string
	Watch        bool
}

// BridgeConfig configures the file-open bridge.
type BridgeConfig struct {
	ReadyTimeout    time.Duration `validate:"gt=0"`
	HandoverTimeout time.Duration `validate:"gt=0"`
}

type MiscConfig struct {
	LogLevel  string
	LogFormat string `validate:"omitempty,oneof=text json"`
	GinMode   string `validate:"omitempty,oneof=debug release test"`
}

// BaseURL is the address other instances use to reach this one.
func (s ServerConfig) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", s.Host, s.Port)
}

// Addr is the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoadConfig reads .env, then config.yaml from SIGNSTAMP_CONFIG_PATH (default ./config),
// then SIGNSTAMP_* environment variables, which win over the file.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.WithComponent("config").Warnf("ignoring .env: %v", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getEnvOrDefault(envPrefix+"_CONFIG_PATH", "./config"))
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config file error: %w", err)
		}
		logger.WithComponent("config").Debug("no config file found, using defaults and env vars")
	}

	port, err := getEnvOrViperPort(v, "PORT", "server.port")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:               v.GetString("server.host"),
			Port:               port,
			ReadTimeout:        v.GetDuration("server.read_timeout"),
			WriteTimeout:       v.GetDuration("server.write_timeout"),
			IdleTimeout:        v.GetDuration("server.idle_timeout"),
			ShutDownTimeout:    v.GetDuration("server.shutdown_timeout"),
			CORSAllowedOrigins: v.GetString("server.cors_allowed_origins"),
		},
		Storage: StorageConfig{
			AppID:        v.GetString("storage.app_id"),
			DataDir:      v.GetString("storage.data_dir"),
			DownloadsDir: v.GetString("storage.downloads_dir"),
			Watch:        v.GetBool("storage.watch"),
		},
		Bridge: BridgeConfig{
			ReadyTimeout:    v.GetDuration("bridge.ready_timeout"),
			HandoverTimeout: v.GetDuration("bridge.handover_timeout"),
		},
		Misc: MiscConfig{
			LogLevel:  getEnvOrDefault("LOG_LEVEL", v.GetString("misc.log_level")),
			LogFormat: v.GetString("misc.log_format"),
			GinMode:   v.GetString("misc.gin_mode"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 58888)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 0)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.cors_allowed_origins", "*")

	v.SetDefault("storage.app_id", "com.coubiac.signstamp")
	v.SetDefault("storage.data_dir", "")
	v.SetDefault("storage.downloads_dir", "")
	v.SetDefault("storage.watch", true)

	v.SetDefault("bridge.ready_timeout", 15*time.Second)
	v.SetDefault("bridge.handover_timeout", 2*time.Second)

	v.SetDefault("misc.log_level", "info")
	v.SetDefault("misc.log_format", "text")
	v.SetDefault("misc.gin_mode", "release")
}

func (c *Config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if strings.ContainsAny(c.Storage.AppID, `/\`) {
		return fmt.Errorf("invalid configuration: storage.app_id %q must not contain path separators", c.Storage.AppID)
	}
	return nil
}

// getEnvOrViperPort reads a port from envKey when set, else from viperKey.
func getEnvOrViperPort(v *viper.Viper, envKey, viperKey string) (int, error) {
	raw := os.Getenv(envKey)
	if raw == "" {
		return v.GetInt(viperKey), nil
	}
	port, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, raw, err)
	}
	return port, nil
}

func getEnvOrDefault(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}
