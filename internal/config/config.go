package config

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/viper"
)

// Config хранит все настройки приложения
type Config struct {
	Server   ServerConfig
	Redis    RedisConfig
	Backends BackendsConfig
	Session  SessionConfig
	Auth     AuthConfig
	CORS     CORSConfig
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port         string
	ReadTimeout  int
	WriteTimeout int
}

// RedisConfig содержит унифицированные настройки подключения к Redis
// Поддерживает режимы: single, sentinel, cluster
type RedisConfig struct {
	// Mode: Режим работы Redis ("single", "sentinel", "cluster"). По умолчанию "single".
	Mode string `mapstructure:"mode"`

	// Addrs: Список адресов Redis (хост:порт). Используется для всех режимов.
	// Для 'single', если не пуст, используется первый адрес из списка.
	Addrs []string `mapstructure:"addrs"`

	// Addr: Альтернативный адрес для режима 'single'.
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// MasterName: Имя мастер-сервера Redis (только для режима "sentinel")
	MasterName string `mapstructure:"master_name"`
}

// BackendsConfig содержит адреса удалённых бэкендов платформы
type BackendsConfig struct {
	// ContentBaseURL - контент-бэкенд (банк вопросов, /api/qas)
	ContentBaseURL string `mapstructure:"content_base_url"`
	// ResultsBaseURL - бэкенд результатов (/api/qas-results)
	ResultsBaseURL string `mapstructure:"results_base_url"`
	// RequestTimeoutSec - таймаут HTTP-вызовов к бэкендам; зависший бэкенд
	// должен превращаться в ошибку, а не в вечное ожидание
	RequestTimeoutSec int `mapstructure:"request_timeout_sec"`
}

// SessionConfig содержит настройки контроллера сессий
type SessionConfig struct {
	// SecondsPerQuestion - секунд на один вопрос (по умолчанию 300)
	SecondsPerQuestion int `mapstructure:"seconds_per_question"`
	// QuizCacheTTLMin - TTL кеша определений тестов в минутах
	QuizCacheTTLMin int `mapstructure:"quiz_cache_ttl_min"`
	// SubmitTimeoutSec - таймаут отправки попытки на оценку
	SubmitTimeoutSec int `mapstructure:"submit_timeout_sec"`
	// ResultRetentionMin - сколько минут завершённая сессия остаётся в реестре
	// (окно чтения результата после отправки)
	ResultRetentionMin int `mapstructure:"result_retention_min"`
}

// AuthConfig содержит настройки проверки токенов
type AuthConfig struct {
	// JWTSigningKey - ключ проверки подписи токенов внешнего сервиса аутентификации
	JWTSigningKey string `mapstructure:"jwt_signing_key"`
}

// CORSConfig содержит настройки CORS и WebSocket origin
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load загружает конфигурацию из файла
func Load(configPath string) (*Config, error) {
	vip := viper.New() // Используем новый экземпляр Viper, чтобы избежать глобального состояния

	// 1. Значения по умолчанию
	vip.SetDefault("server.port", "8080")
	vip.SetDefault("server.readtimeout", 15)
	vip.SetDefault("server.writetimeout", 15)
	vip.SetDefault("backends.request_timeout_sec", 30)
	vip.SetDefault("session.seconds_per_question", 300)
	vip.SetDefault("session.quiz_cache_ttl_min", 10)
	vip.SetDefault("session.submit_timeout_sec", 30)
	vip.SetDefault("session.result_retention_min", 10)

	// 2. Привязываем переменные окружения ЯВНО
	// Привязка для секции Server
	vip.BindEnv("server.port", "SERVER_PORT")

	// Привязка для секции Redis
	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS") // Для массива строк
	vip.BindEnv("redis.addr", "REDIS_ADDR")   // Для одиночной строки
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	// Привязка для секции Backends
	vip.BindEnv("backends.content_base_url", "BACKENDS_CONTENT_BASE_URL")
	vip.BindEnv("backends.results_base_url", "BACKENDS_RESULTS_BASE_URL")
	vip.BindEnv("backends.request_timeout_sec", "BACKENDS_REQUEST_TIMEOUT_SEC")

	// Привязка для секции Session
	vip.BindEnv("session.seconds_per_question", "SESSION_SECONDS_PER_QUESTION")
	vip.BindEnv("session.quiz_cache_ttl_min", "SESSION_QUIZ_CACHE_TTL_MIN")
	vip.BindEnv("session.submit_timeout_sec", "SESSION_SUBMIT_TIMEOUT_SEC")
	vip.BindEnv("session.result_retention_min", "SESSION_RESULT_RETENTION_MIN")

	// Привязка для секции Auth
	vip.BindEnv("auth.jwt_signing_key", "AUTH_JWT_SIGNING_KEY")

	// Привязка для секции CORS
	vip.BindEnv("cors.allowed_origins", "CORS_ALLOWED_ORIGINS")

	// 3. Путь к файлу конфигурации
	if configPath != "" {
		vip.SetConfigFile(configPath)
		// Не страшно, если файла нет - есть BindEnv и умолчания
		if err := vip.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				log.Printf("Файл конфигурации '%s' не найден, используются переменные окружения/умолчания.", configPath)
			} else {
				log.Printf("Предупреждение: не удалось прочитать файл конфигурации '%s': %v", configPath, err)
			}
		}
	}

	// 4. Анмаршалим конфигурацию (Viper объединит значения из файла и привязанных env vars)
	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 5. Логирование конфигурации (только в debug режиме)
	if os.Getenv("GIN_MODE") != "release" {
		log.Printf("--- Загруженные значения конфигурации ---")
		log.Printf("Server Port: %s", cfg.Server.Port)
		log.Printf("Redis Addr: %s", cfg.Redis.Addr)
		log.Printf("Redis Mode: %s", cfg.Redis.Mode)
		log.Printf("Content Backend: %s", cfg.Backends.ContentBaseURL)
		log.Printf("Results Backend: %s", cfg.Backends.ResultsBaseURL)
		log.Printf("Backend Request Timeout: %d s", cfg.Backends.RequestTimeoutSec)
		log.Printf("Seconds Per Question: %d", cfg.Session.SecondsPerQuestion)
		log.Printf("Quiz Cache TTL: %d min", cfg.Session.QuizCacheTTLMin)
		log.Printf("JWT Signing Key Set: %t", cfg.Auth.JWTSigningKey != "")
		log.Printf("-----------------------------------------")
	}

	// 6. Проверка обязательных параметров
	if cfg.Backends.ContentBaseURL == "" || cfg.Backends.ResultsBaseURL == "" {
		return nil, fmt.Errorf("backend base URLs are required in config (check BACKENDS_CONTENT_BASE_URL, BACKENDS_RESULTS_BASE_URL env vars)")
	}
	if cfg.Auth.JWTSigningKey == "" {
		return nil, fmt.Errorf("JWT signing key is required in config (check AUTH_JWT_SIGNING_KEY env var)")
	}
	if cfg.Session.SecondsPerQuestion <= 0 {
		return nil, fmt.Errorf("session.seconds_per_question must be positive")
	}

	return &cfg, nil
}
