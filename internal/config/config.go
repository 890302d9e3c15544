// Package config предоставляет структуры и функции для загрузки конфигурации
// клиента CineStream и dev-сервера API.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// DefaultBaseURL используется, если адрес API не задан ни в окружении, ни в файле.
const DefaultBaseURL = "http://localhost:3001"

// Драйверы хранилища сессии.
const (
	DriverFile  = "file"
	DriverRedis = "redis"
)

// Config общая структура для хранения настроек
type Config struct {
	Env             string `yaml:"env" env:"CINESTREAM_ENV" env-default:"local"`
	API             `yaml:"api"`
	SessionStore    `yaml:"session_store"`
	RedisConnection `yaml:"redis_connection"`
	HTTPServer      `yaml:"http_server"`
	JWTToken        `yaml:"jwttoken"`
}

// API структура для настройки клиента удалённого API
type API struct {
	BaseURL    string        `yaml:"base_url"`
	TimeoutAPI time.Duration `yaml:"timeout" env:"CINESTREAM_API_TIMEOUT" env-default:"10s"`
	RateLimit  float64       `yaml:"rate_limit" env-default:"10"`
	Burst      int           `yaml:"burst" env-default:"5"`
}

// SessionStore структура для настройки локального хранилища сессии
type SessionStore struct {
	Driver    string        `yaml:"driver" env:"CINESTREAM_SESSION_DRIVER" env-default:"file"`
	Path      string        `yaml:"path" env:"CINESTREAM_SESSION_PATH"`
	KeyPrefix string        `yaml:"key_prefix"`
	TTL       time.Duration `yaml:"ttl"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"CINESTREAM_REDIS_ADDR"`
	Password     string        `yaml:"password" env:"CINESTREAM_REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// HTTPServer структура для настройки dev-сервера API
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"CINESTREAM_DEVAPI_ADDR" env-default:":3001"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
	PayURL      string        `yaml:"pay_url" env-default:"http://localhost:3001/pay"`
	ServerRPS   float64       `yaml:"rps" env-default:"50"`
	ServerBurst int           `yaml:"burst" env-default:"100"`
	Admin       `yaml:"admin"`
}

// Admin учётная запись администратора, создаваемая dev-сервером при старте
type Admin struct {
	AdminEmail    string `yaml:"email" env:"CINESTREAM_ADMIN_EMAIL" env-default:"admin@cinestream.local"`
	AdminPassword string `yaml:"password" env:"CINESTREAM_ADMIN_PASSWORD" env-default:"admin123"`
}

// JWTToken структура для выпуска jwt-токенов dev-сервером
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"CINESTREAM_JWT_SECRET" env-default:"dev-secret-change-me"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// Load читает .env (если есть), затем YAML-файл по пути path или CONFIG_PATH.
// Без файла конфигурация собирается только из окружения и значений по умолчанию.
func Load(path string) (*Config, error) {
	const op = "config.Load"

	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}

	var cfg Config
	if path != "" {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: file %s does not exist", op, path)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cfg.BaseURL = ResolveBaseURL(os.Getenv, cfg.BaseURL)

	if cfg.Driver != DriverFile && cfg.Driver != DriverRedis {
		return nil, fmt.Errorf("%s: unknown session store driver %q", op, cfg.Driver)
	}
	if cfg.Driver == DriverRedis && cfg.AddressRedis == "" {
		return nil, fmt.Errorf("%s: redis session store requires redis_connection.addressredis", op)
	}
	return &cfg, nil
}

// MustLoad функция для загрузки конфига, завершает процесс при ошибке
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// baseURLEnv переменные окружения с адресом API в порядке приоритета.
var baseURLEnv = []string{
	"CINESTREAM_API_URL",
	"API_BASE_URL",
	"BACKEND_URL",
	"PUBLIC_BACKEND_URL",
}

var (
	spaces     = regexp.MustCompile(`\s+`)
	docsSuffix = regexp.MustCompile(`(?i)/(docs|redoc|openapi\.json)$`)
)

// ResolveBaseURL выбирает адрес API: первая непустая переменная из baseURLEnv,
// затем значение из файла, затем DefaultBaseURL. Адрес нормализуется:
// убираются пробелы, завершающие слэши и случайно скопированные пути документации.
func ResolveBaseURL(getenv func(string) string, configured string) string {
	raw := ""
	for _, key := range baseURLEnv {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			raw = v
			break
		}
	}
	if raw == "" {
		raw = configured
	}

	url := spaces.ReplaceAllString(strings.TrimSpace(raw), "")
	url = strings.TrimRight(url, "/")
	url = docsSuffix.ReplaceAllString(url, "")
	if url == "" {
		return DefaultBaseURL
	}
	return url
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"API:\n"+
			"  BaseURL: %s\n"+
			"  Timeout: %s\n"+
			"  RateLimit: %.1f/s (burst %d)\n"+
			"SessionStore:\n"+
			"  Driver: %s\n"+
			"  Path: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"JWTToken:\n"+
			"  TokenTTL: %s\n",
		c.Env,
		c.BaseURL,
		c.TimeoutAPI,
		c.RateLimit,
		c.Burst,
		c.Driver,
		c.Path,
		c.AddressRedis,
		c.DB,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.TokenTTL,
	)
}
