package config

import (
	"errors"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var ErrEmptyToken = errors.New("error getting MM_TELEGRAM_TOKEN: variable not specified or contains an empty string")

type Config struct {
	Env          string // Env is the current environment: local, development, production.
	APIURL       string // APIURL is the base URL of the price service.
	StoragePath  string // StoragePath is the SQLite file holding persisted sessions.
	StartupDelay time.Duration
	Tg           Telegram
	HTTP         HTTP
}

type Telegram struct {
	Token   string        // Token is an unique telgram bot token.
	Timeout time.Duration // Timeout is a poller timeout duration.
}

type HTTP struct {
	Timeout   time.Duration
	RateLimit float64 // RateLimit is the number of requests per second sent to the price service.
}

// MustLoad loads the configuration from a .env file and environment variables and returns a Config struct.
func MustLoad() *Config {
	// A missing .env file is fine, variables may come from the environment.
	_ = godotenv.Load()

	// Automatically binds environment variables to config keys
	viper.SetEnvPrefix("MM")
	viper.AutomaticEnv()

	// optional args
	viper.SetDefault("ENV", "production")
	viper.SetDefault("API_URL", "http://localhost:8080")
	viper.SetDefault("STORAGE_PATH", "storage/market-map.db")
	viper.SetDefault("STARTUP_DELAY", "800ms")
	viper.SetDefault("TELEGRAM_TIMEOUT", "15s")
	viper.SetDefault("HTTP_TIMEOUT", "10s")
	viper.SetDefault("RATE_LIMIT", 5)

	if viper.GetString("TELEGRAM_TOKEN") == "" {
		panic(ErrEmptyToken)
	}

	return &Config{
		Env:          viper.GetString("ENV"),
		APIURL:       viper.GetString("API_URL"),
		StoragePath:  viper.GetString("STORAGE_PATH"),
		StartupDelay: viper.GetDuration("STARTUP_DELAY"),
		Tg: Telegram{
			Token:   viper.GetString("TELEGRAM_TOKEN"),
			Timeout: viper.GetDuration("TELEGRAM_TIMEOUT"),
		},
		HTTP: HTTP{
			Timeout:   viper.GetDuration("HTTP_TIMEOUT"),
			RateLimit: viper.GetFloat64("RATE_LIMIT"),
		},
	}
}
