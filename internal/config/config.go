package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config — вся конфигурация ядра, собирается из переменных окружения.
type Config struct {
	DB       DBConfig
	Server   ServerConfig
	Kafka    KafkaConfig
	Log      LogConfig
	Schedule ScheduleConfig
}

type DBConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	TimeZone        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifeTime int // минут
}

type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	// Токен админского доступа; проверка «администратор ли вызывающий»
	// остаётся на стороне развёртывания.
	AdminToken string
}

type KafkaConfig struct {
	// Пустой список брокеров выключает публикацию событий.
	Brokers []string
	Topic   string
}

type LogConfig struct {
	Level  string
	Format string
}

type ScheduleConfig struct {
	// Шаг сетки по умолчанию, если правило его не задаёт.
	DefaultIntervalMin int
}

func Load() (*Config, error) {
	cfg := &Config{
		DB: DBConfig{
			Host:            getEnv("DB_HOST", "postgres"),
			User:            getEnv("DB_USER", "booking"),
			Password:        getEnv("DB_PASSWORD", "booking"),
			Name:            getEnv("DB_NAME", "booking_db"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			TimeZone:        getEnv("DB_TIMEZONE", "Europe/Moscow"),
			Port:            getEnvInt("DB_PORT", 5432),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifeTime: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 30),
		},
		Server: ServerConfig{
			Addr:         getEnv("HTTP_ADDR", ":8080"),
			ReadTimeout:  getEnvDuration("HTTP_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvDuration("HTTP_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:  getEnvDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
			AdminToken:   os.Getenv("ADMIN_TOKEN"),
		},
		Kafka: KafkaConfig{
			Brokers: splitNonEmpty(os.Getenv("KAFKA_BROKERS")),
			Topic:   getEnv("KAFKA_TOPIC", "booking-events"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Schedule: ScheduleConfig{
			DefaultIntervalMin: getEnvInt("SCHEDULE_DEFAULT_INTERVAL_MIN", 30),
		},
	}

	// минимальная валидация
	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, fmt.Errorf("invalid DB config: host/user/name must not be empty")
	}
	if cfg.Schedule.DefaultIntervalMin <= 0 {
		return nil, fmt.Errorf("invalid schedule config: default interval must be positive")
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
