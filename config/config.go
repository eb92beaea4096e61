package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Mailer   MailerConfig
	Mempool  MempoolConfig
}

type ServerConfig struct {
	Port         string        `env:"PORT" envDefault:"8100"`
	Env          string        `env:"ENV" envDefault:"development"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	RateLimit    int           `env:"RATE_LIMIT" envDefault:"100"`
	RateWindow   time.Duration `env:"RATE_WINDOW" envDefault:"60s"`
}

type DatabaseConfig struct {
	DSN             string        `env:"DB_DSN" envDefault:"pay:pay@tcp(localhost:3306)/dhfpay?charset=utf8mb4&parseTime=True&loc=Local"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"100"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"1h"`
}

type MailerConfig struct {
	Host     string `env:"MAILER_HOST" envDefault:"localhost"`
	Port     int    `env:"MAILER_PORT" envDefault:"587"`
	Username string `env:"MAILER_USERNAME"`
	Password string `env:"MAILER_PASSWORD"`
	From     string `env:"MAILER_EMAIL" envDefault:"noreply@dhfpay.com"`
}

// MempoolConfig points the fee oracle at a mempool.space compatible API.
type MempoolConfig struct {
	BaseURL string        `env:"MEMPOOL_BASE_URL" envDefault:"https://mempool.space"`
	Timeout time.Duration `env:"MEMPOOL_TIMEOUT" envDefault:"5s"`
}

func Load() *Config {
	var c Config
	if err := env.Parse(&c); err != nil {
		log.Panicf("config parsing failed: %+v", err)
	}
	return &c
}
