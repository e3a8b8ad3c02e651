package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type DBConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	Debug  bool   `mapstructure:"debug"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Issuer string        `mapstructure:"issuer"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type RateLimitConfig struct {
	Backend  string        `mapstructure:"backend"`
	Limit    int           `mapstructure:"limit"`
	Interval time.Duration `mapstructure:"interval"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type Config struct {
	Mode         string          `mapstructure:"mode"`
	Port         int             `mapstructure:"port"`
	LogLevel     string          `mapstructure:"log_level"`
	Secret       string          `mapstructure:"secret"`
	ReadLimit    int64           `mapstructure:"read_limit"`
	PingPeriod   time.Duration   `mapstructure:"ping_period"`
	WriteWait    time.Duration   `mapstructure:"write_wait"`
	SendBuffer   int             `mapstructure:"send_buffer"`
	Backpressure string          `mapstructure:"backpressure"`
	SeedUsers    []string        `mapstructure:"seed_users"`
	DB           DBConfig        `mapstructure:"db"`
	JWT          JWTConfig       `mapstructure:"jwt"`
	RateLimit    RateLimitConfig `mapstructure:"ratelimit"`
	Redis        RedisConfig     `mapstructure:"redis"`
}

// Load reads config/config.<CONFIG_ENV>.yaml over built-in defaults.
// CAMPFIRE_* environment variables (also from .env) override both,
// e.g. CAMPFIRE_DB_DSN for db.dsn.
func Load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Info().Str("module", "config").Msg("loaded .env")
	}

	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("secret", "campfire-dev-secret")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("write_wait", "5s")
	v.SetDefault("send_buffer", 64)
	v.SetDefault("backpressure", "kick")
	v.SetDefault("seed_users", []string{})
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "campfire.db")
	v.SetDefault("db.debug", false)
	v.SetDefault("jwt.secret", "campfire-dev-jwt-secret")
	v.SetDefault("jwt.issuer", "campfire")
	v.SetDefault("jwt.ttl", "24h")
	v.SetDefault("ratelimit.backend", "memory")
	v.SetDefault("ratelimit.limit", 5)
	v.SetDefault("ratelimit.interval", "1s")
	v.SetDefault("redis.url", "redis://localhost:6379/0")

	v.SetEnvPrefix("CAMPFIRE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Str("db", cfg.DB.Driver).Str("ratelimit", cfg.RateLimit.Backend).Msg("config ready")
	return &cfg, nil
}
