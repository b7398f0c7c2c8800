package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

var ErrEmptyTargetOrigin = errors.New("target_origin must not be empty, use \"*\" for any origin")

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	StaticPath string        `mapstructure:"static_path"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	Secret     string        `mapstructure:"secret"`

	// Origin is the host page's own origin, reported to frames as event origin.
	Origin       string        `mapstructure:"origin"`
	// TargetOrigin restricts which frame origins the host posts to. "*" posts anywhere.
	TargetOrigin string        `mapstructure:"target_origin"`
	SendBuffer   int           `mapstructure:"send_buffer"`
	LoopQueue    int           `mapstructure:"loop_queue"`
	RateLimit    int           `mapstructure:"rate_limit"`
	RateInterval time.Duration `mapstructure:"rate_interval"`
	InboxSize    int           `mapstructure:"inbox_size"`
	Backpressure string        `mapstructure:"backpressure"`
}

// Load reads config/config.<env>.yaml. An empty env falls back to CONFIG_ENV, then "dev".
// FRAMEBRIDGE_* environment variables override file values.
func Load(env string) (*Config, error) {
	if env == "" {
		env = os.Getenv("CONFIG_ENV")
	}
	if env == "" {
		env = "dev"
	}
	return loadFile(fmt.Sprintf("config/config.%s.yaml", env))
}

func loadFile(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("FRAMEBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("secret", "")
	v.SetDefault("origin", "http://localhost:8080")
	v.SetDefault("target_origin", "*")
	v.SetDefault("send_buffer", 32)
	v.SetDefault("loop_queue", 256)
	v.SetDefault("rate_limit", 20)
	v.SetDefault("rate_interval", "1s")
	v.SetDefault("inbox_size", 100)
	v.SetDefault("backpressure", "drop")

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.TargetOrigin == "" {
		return nil, ErrEmptyTargetOrigin
	}
	if cfg.Secret == "" {
		// Sessions still work, but do not survive a restart.
		cfg.Secret = uuid.NewString()
		log.Warn().Str("module", "config").Msg("no session secret configured, using a random one")
	}
	log.Info().
		Str("module", "config").
		Str("mode", cfg.Mode).
		Int("port", cfg.Port).
		Str("static", cfg.StaticPath).
		Str("target_origin", cfg.TargetOrigin).
		Msg("config ready")
	return &cfg, nil
}
