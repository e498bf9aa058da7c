package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"passtrack/internal/midpass"
)

// Config содержит конфигурацию приложения.
type Config struct {
	RunAddress  string
	DatabaseURI string

	TelegramToken string

	MidpassProxies []string
	RequestTimeout time.Duration

	AutoupdateSchedules []string
	Timezone            string
	OrderPacing         time.Duration

	ImagesDir string

	AdminLogin        string
	AdminPasswordHash string
	JWTSecret         string
	TokenExpiration   time.Duration
}

// Расписания прогонов: будни - пять раз в день, выходные - два.
var defaultSchedules = []string{
	"23 9,12,15,18,21 * * 1-5",
	"17 16,20 * * 0,6",
}

// Load загружает конфигурацию из флагов командной строки и переменных окружения.
// Приоритет: переменные окружения > флаги > значения по умолчанию.
func Load() *Config {
	// .env необязателен, его отсутствие не ошибка.
	_ = godotenv.Load()

	cfg := &Config{}

	var proxies, schedules string

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "адрес и порт ops API")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "строка подключения к PostgreSQL")
	flag.StringVar(&proxies, "p", "", "адреса статусного API midpass через запятую")
	flag.StringVar(&cfg.ImagesDir, "i", "./public/images", "каталог картинок статусов")
	flag.Parse()

	if envRunAddr := os.Getenv("RUN_ADDRESS"); envRunAddr != "" {
		cfg.RunAddress = envRunAddr
	}
	if envDBURI := os.Getenv("DATABASE_URI"); envDBURI != "" {
		cfg.DatabaseURI = envDBURI
	}
	if envProxies := os.Getenv("MIDPASS_PROXIES"); envProxies != "" {
		proxies = envProxies
	}
	if envImages := os.Getenv("IMAGES_DIR"); envImages != "" {
		cfg.ImagesDir = envImages
	}

	cfg.MidpassProxies = splitList(proxies)
	if len(cfg.MidpassProxies) == 0 {
		cfg.MidpassProxies = midpass.DefaultEndpoints
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")

	// Cron-выражения содержат запятые, поэтому разделитель - точка с запятой.
	schedules = os.Getenv("AUTOUPDATE_SCHEDULES")
	cfg.AutoupdateSchedules = splitListSep(schedules, ";")
	if len(cfg.AutoupdateSchedules) == 0 {
		cfg.AutoupdateSchedules = defaultSchedules
	}

	cfg.Timezone = os.Getenv("TIMEZONE")
	if cfg.Timezone == "" {
		cfg.Timezone = "Europe/Moscow"
	}

	cfg.RequestTimeout = durationEnv("REQUEST_TIMEOUT", 10*time.Second)
	cfg.OrderPacing = durationEnv("ORDER_PACING", time.Second)

	cfg.AdminLogin = os.Getenv("ADMIN_LOGIN")
	cfg.AdminPasswordHash = os.Getenv("ADMIN_PASSWORD_HASH")

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "default-secret-change-in-production"
	}

	cfg.TokenExpiration = durationEnv("TOKEN_EXPIRATION", 24*time.Hour)

	return cfg
}

// Location возвращает таймзону расписаний.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func splitList(value string) []string {
	return splitListSep(value, ",")
}

func splitListSep(value, sep string) []string {
	var result []string
	for _, item := range strings.Split(value, sep) {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
