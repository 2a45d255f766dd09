package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/NiloFidel/Reservas-BookingService/internal/domain"
)

// Config конфигурация сервиса, загружается из config.toml
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
	Backend  BackendConfig  `toml:"backend"`
	Notifier NotifierConfig `toml:"notifier"`
	Booking  BookingConfig  `toml:"booking"`
	Logs     LogsConfig     `toml:"logs"`
	Metrics  MetricsConfig  `toml:"metrics"`
}

// ServerConfig настройки HTTP-сервера
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN собирает строку подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// RedisConfig настройки кеша подневных счетчиков
// Кеш опционален: при Enabled=false чтения идут напрямую в хранилище
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	TTLSeconds int    `toml:"ttl_seconds"`
}

// BackendConfig настройки удаленного calendar-backend (режим прокси)
// При Enabled=false хранилищем выступает локальный PostgreSQL
type BackendConfig struct {
	Enabled bool   `toml:"enabled"`
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"`
}

// NotifierConfig настройки сервиса отправки подтверждений
type NotifierConfig struct {
	Enabled bool   `toml:"enabled"`
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"`
}

// BookingConfig бизнес-настройки бронирования
type BookingConfig struct {
	DefaultCapacity int `toml:"default_capacity"`
	LookaheadDays   int `toml:"lookahead_days"`
	UTCOffsetHours  int `toml:"utc_offset_hours"`
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки prometheus-метрик
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	ServiceName string `toml:"service_name"`
	Path        string `toml:"path"`
}

// Load читает и валидирует конфигурацию из toml-файла
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     10,
			WriteTimeout:    10,
			IdleTimeout:     60,
			ShutdownTimeout: 15,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Redis: RedisConfig{
			TTLSeconds: 30,
		},
		Backend: BackendConfig{
			Timeout: 15,
		},
		Notifier: NotifierConfig{
			Timeout: 5,
		},
		Booking: BookingConfig{
			DefaultCapacity: domain.DefaultCapacity,
			LookaheadDays:   domain.DefaultLookaheadDays,
			UTCOffsetHours:  domain.DefaultUTCOffsetHours,
		},
		Logs: LogsConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			ServiceName: "reservas-booking-service",
			Path:        "/metrics",
		},
	}
}

func (c *Config) validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("config: invalid http_port %d", c.Server.HTTPPort)
	}
	if c.Booking.DefaultCapacity < domain.MinCapacity || c.Booking.DefaultCapacity > domain.MaxCapacity {
		return fmt.Errorf("config: default_capacity must be in [%d, %d]", domain.MinCapacity, domain.MaxCapacity)
	}
	if c.Booking.LookaheadDays <= 0 {
		return fmt.Errorf("config: lookahead_days must be positive")
	}
	if c.Backend.Enabled && c.Backend.URL == "" {
		return fmt.Errorf("config: backend.url is required when backend is enabled")
	}
	if c.Notifier.Enabled && c.Notifier.URL == "" {
		return fmt.Errorf("config: notifier.url is required when notifier is enabled")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required when redis is enabled")
	}
	return nil
}
