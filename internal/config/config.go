// Package config предоставялет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env-default:"local"`
	PublicURL               string `yaml:"public_url" env:"PUBLIC_URL"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	Records                 `yaml:"records"`
	Platform                `yaml:"platform"`
	Documents               `yaml:"documents"`
	RedisConnection         `yaml:"redis_connection"`
	RabbitMQ                `yaml:"rabbitmq"`
	HTTPServer              `yaml:"http_server"`
	RateLimit               `yaml:"rate_limit"`
	Reminder                `yaml:"reminder"`
}

// Records выбирает, через что синхронизируются профили клиентов:
// "rest" через REST-шлюз платформы с токеном пользователя, "postgres" напрямую в базу.
type Records struct {
	Backend string `yaml:"backend" env-default:"rest"`
}

// Platform структура для подключения к хостинговой платформе (REST, storage, auth)
type Platform struct {
	URL       string        `yaml:"url" env:"PLATFORM_URL"`
	AnonKey   string        `yaml:"anon_key" env:"PLATFORM_ANON_KEY"`
	JWTSecret string        `yaml:"jwt_secret" env:"PLATFORM_JWT_SECRET"`
	Timeout   time.Duration `yaml:"timeout" env-default:"10s"`
}

// Documents структура с настройками бакетов и загрузки файлов
type Documents struct {
	Bucket        string        `yaml:"bucket" env-default:"secure-documents"`
	FleetBucket   string        `yaml:"fleet_bucket" env-default:"fleet-images"`
	MaxUploadSize int64         `yaml:"max_upload_size" env-default:"10485760"`
	SignedURLTTL  time.Duration `yaml:"signed_url_ttl" env-default:"1h"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// RabbitMQ структура для подключения к брокеру. Пустой URL отключает публикацию событий.
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"url" env:"RABBITMQ_URL"`
	RabbitMQMaxRetries int           `yaml:"max_retries" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"15s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RateLimit ограничение частоты запросов к auth-эндпоинтам
type RateLimit struct {
	RPS   float64 `yaml:"rps" env-default:"1"`
	Burst int     `yaml:"burst" env-default:"5"`
}

// Reminder настройки напоминаний об истечении водительских прав
type Reminder struct {
	WindowDays int           `yaml:"window_days" env-default:"30"`
	Interval   time.Duration `yaml:"interval" env-default:"24h"`
}

// MustLoad функция для загрузки конфига по пути из CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

// Load читает конфиг из файла, переменные окружения перекрывают значения из файла.
func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}
	if cfg.Records.Backend != "rest" && cfg.Records.Backend != "postgres" {
		return nil, fmt.Errorf("unknown records backend %q", cfg.Records.Backend)
	}
	return &cfg, nil
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"PublicURL: %s\n"+
			"Records backend: %s\n"+
			"Platform:\n"+
			"  URL: %s\n"+
			"  Timeout: %s\n"+
			"Documents:\n"+
			"  Bucket: %s\n"+
			"  FleetBucket: %s\n"+
			"  MaxUploadSize: %d\n"+
			"  SignedURLTTL: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n",
		c.Env,
		c.PublicURL,
		c.Backend,
		c.URL,
		c.Timeout,
		c.Bucket,
		c.FleetBucket,
		c.MaxUploadSize,
		c.SignedURLTTL,
		c.AddressRedis,
		c.DB,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
	)
}
