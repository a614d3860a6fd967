package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ServeRESTAddress string `envconfig:"serve_rest_address" default:":8000"`

	DBUser     string `envconfig:"db_user" required:"true"`
	DBPassword string `envconfig:"db_password" required:"true"`
	DBHost     string `envconfig:"db_host" default:"127.0.0.1:3306"`
	DBName     string `envconfig:"db_name" default:"shop"`

	JWTSecret   string        `envconfig:"jwt_secret" required:"true"`
	JWTTokenTTL time.Duration `envconfig:"jwt_token_ttl" default:"10m"`

	PaymentProvider       string        `envconfig:"payment_provider" default:"mock"`
	PaymentCurrency       string        `envconfig:"payment_currency" default:"RUB"`
	GatewayTimeout        time.Duration `envconfig:"gateway_timeout" default:"10s"`
	StalePaymentMaxAge    time.Duration `envconfig:"stale_payment_max_age" default:"30m"`
	StalePaymentSweepRate time.Duration `envconfig:"stale_payment_sweep_rate" default:"5m"`
}

func (c *Config) DSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ")/" + c.DBName + "?parseTime=true&multiStatements=true"
}

func Parse(prefix string) (*Config, error) {
	c := new(Config)
	if err := envconfig.Process(prefix, c); err != nil {
		return nil, err
	}
	return c, nil
}
