// Package config loads the service configuration from the environment, with
// an optional .env file for local runs.
package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port              string        `envconfig:"PORT" default:"14000"`
	UserServiceURL    string        `envconfig:"USER_SERVICE_URL" default:"http://127.0.0.1:14001"`
	ProductServiceURL string        `envconfig:"PRODUCT_SERVICE_URL" default:"http://127.0.0.1:14002"`
	DBPath            string        `envconfig:"DB_PATH" default:"./data/info.db"`
	RedisAddr         string        `envconfig:"REDIS_ADDR" default:""` // empty disables the order cache
	MaxWorkers        int           `envconfig:"MAX_WORKERS" default:"20"`
	ClientTimeout     time.Duration `envconfig:"CLIENT_TIMEOUT" default:"10s"`
	LogLevel          string        `envconfig:"LOG_LEVEL" default:"info"`
	OTelServiceName   string        `envconfig:"OTEL_SERVICE_NAME" default:"order-service"`
}

func Load() (*Config, error) {
	// Missing .env is fine; real environments set variables directly.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
