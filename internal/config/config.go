// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	Telegram                `yaml:"telegram"`
	Extractor               `yaml:"extractor"`
	Limits                  `yaml:"limits"`
	Rabbit                  `yaml:"rabbitmq"`
	AdminAuth               `yaml:"admin_auth"`
}

// HTTPServer структура для настройки служебного HTTP-сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"5s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	Addr        string        `yaml:"addr"`
	Password    string        `yaml:"password"`
	User        string        `yaml:"user"`
	DB          int           `yaml:"db"`
	MaxRetries  int           `yaml:"max_retries" env-default:"3"`
	DialTimeout time.Duration `yaml:"dial_timeout" env-default:"5s"`
	Timeout     time.Duration `yaml:"timeout" env-default:"3s"`
}

// Telegram структура для настройки подключения к Bot API
type Telegram struct {
	Token       string        `yaml:"token" env:"TELEGRAM_TOKEN"`
	APIBaseURL  string        `yaml:"api_base_url" env-default:"https://api.telegram.org"`
	PollTimeout time.Duration `yaml:"poll_timeout" env-default:"30s"`
}

// Extractor структура для настройки доступа к API извлечения медиа
type Extractor struct {
	RapidAPIKey     string        `yaml:"rapidapi_key" env:"RAPIDAPI_KEY"`
	GenericHost     string        `yaml:"generic_host" env-default:"social-media-video-downloader.p.rapidapi.com"`
	TikTokHost      string        `yaml:"tiktok_host" env-default:"tiktok-video-no-watermark2.p.rapidapi.com"`
	RequestTimeout  time.Duration `yaml:"request_timeout" env-default:"30s"`
	DownloadTimeout time.Duration `yaml:"download_timeout" env-default:"2m"`
	CacheExpiration time.Duration `yaml:"cache_expiration" env-default:"1h"`
}

// Limits структура с лимитами бесплатного доступа и размеров файлов
type Limits struct {
	FreeDownloads int   `yaml:"free_downloads" env-default:"100"`
	MaxVideoBytes int64 `yaml:"max_video_bytes" env-default:"52428800"`
	MaxImageBytes int64 `yaml:"max_image_bytes" env-default:"10485760"`
}

// Rabbit структура для настройки подключения к RabbitMQ
type Rabbit struct {
	RabbitURL      string `yaml:"url" env:"RABBITMQ_URL"`
	BroadcastQueue string `yaml:"broadcast_queue" env-default:"broadcast"`
}

// AdminAuth структура для аутентификации в служебном API
type AdminAuth struct {
	Login        string        `yaml:"login"`
	PasswordHash string        `yaml:"password_hash" env:"ADMIN_PASSWORD_HASH"`
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// MustLoad функция для загрузки конфига, путь берётся из CONFIG_PATH.
// Завершает процесс, если конфиг отсутствует или неполон.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	if cfg.Telegram.Token == "" {
		log.Fatal("telegram token is not set")
	}
	if cfg.Extractor.RapidAPIKey == "" {
		log.Fatal("rapidapi key is not set")
	}
	if cfg.AdminAuth.PasswordHash == "" {
		log.Fatal("admin password hash is not set")
	}
	if cfg.AdminAuth.JWTSecretKey == "" {
		log.Fatal("jwt secret key is not set")
	}
	return &cfg
}
