// Package config holds the application's configuration settings.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// AppConfig defines environment-based configuration for the application.
type AppConfig struct {
	Http     HttpConfig
	Stripe   StripeConfig
	Checkout CheckoutConfig
	Log      LogConfig
}

type HttpConfig struct {
	Addr            string        `yaml:"addr" env:"PAYMENTS_HTTP_ADDR" env-default:":4242"`
	RequestTimeout  time.Duration `yaml:"request_timeout" env:"PAYMENTS_HTTP_REQUEST_TIMEOUT" env-default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"PAYMENTS_HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

type StripeConfig struct {
	SecretKey string `yaml:"secret_key" env:"STRIPE_SECRET_KEY" env-required:"true"`
	// APIBase points the client at another API host, e.g. stripe-mock.
	APIBase string `yaml:"api_base" env:"STRIPE_API_BASE"`
}

type CheckoutConfig struct {
	// CompensateOrphans deletes a customer created earlier in the same request
	// when a later provider call fails.
	CompensateOrphans bool `yaml:"compensate_orphans" env:"CHECKOUT_COMPENSATE_ORPHANS" env-default:"false"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

// Load reads the config file named by CONFIG_PATH when set, otherwise the
// environment only. Environment variables always win over file values.
func Load() (*AppConfig, error) {
	var cfg AppConfig

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		return &cfg, nil
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("reading env config: %w", err)
	}

	return &cfg, nil
}
