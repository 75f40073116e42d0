package configs

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Catalog  CatalogConfig
	Media    MediaConfig
	Midtrans MidtransConfig
	Email    EmailConfig
}

type AppConfig struct {
	Env  string
	Port string
	URL  string
}

type DBConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	MaxRetries   int
	RetryDelay   time.Duration
	MaxOpenConns int
	MaxIdleConns int
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

type AuthConfig struct {
	JWTSecret    string
	JWTTTL       time.Duration
	AppAuthKey   string
	AppEncKey    string
	CSRFEnabled  bool
	CookieSecure bool
}

type CatalogConfig struct {
	ProductMinPrice decimal.Decimal
	PageSize        int
	MaxPageSize     int
}

type MediaConfig struct {
	Root        string
	URL         string
	MaxUploadKB int
}

type MidtransConfig struct {
	ServerKey  string
	ClientKey  string
	Production bool
}

type EmailConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// IsDevelopment reports whether the app runs with developer defaults.
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development" || c.App.Env == "dev"
}

// LoadEnv reads the given dotenv files (".env" when none are given) and then the process
// environment. A missing file is not an error.
func LoadEnv(files ...string) *Config {
	if len(files) == 0 {
		files = []string{".env"}
	}
	if err := godotenv.Load(files...); err != nil {
		log.Println("Warning: No .env file found")
	}

	return &Config{
		App: AppConfig{
			Env:  getEnv("APP_ENV", "production"),
			Port: getEnv("APP_PORT", ":8000"),
			URL:  getEnv("APP_URL", "http://localhost:8000"),
		},
		DB: DBConfig{
			Host:         getEnv("DB_HOST", "127.0.0.1"),
			Port:         getEnv("DB_PORT", "3306"),
			User:         getEnv("DB_USER", "root"),
			Password:     getEnv("DB_PASSWORD", ""),
			Name:         getEnv("DB_NAME", "storefront"),
			MaxRetries:   getEnvInt("DB_MAX_RETRIES", 10),
			RetryDelay:   time.Duration(getEnvInt("DB_RETRY_DELAY_SECONDS", 5)) * time.Second,
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
		},
		Logger: LoggerConfig{
			Level:    getEnv("LOGGER_LEVEL", "info"),
			Encoding: getEnv("LOGGER_ENCODING", ""),
		},
		Auth: AuthConfig{
			JWTSecret:    getEnv("JWT_SECRET", ""),
			JWTTTL:       time.Duration(getEnvInt("JWT_TTL_HOURS", 720)) * time.Hour,
			AppAuthKey:   getEnv("APP_AUTH_KEY", ""),
			AppEncKey:    getEnv("APP_ENC_KEY", ""),
			CSRFEnabled:  getEnvBool("CSRF_ENABLED", false),
			CookieSecure: getEnvBool("COOKIE_SECURE", false),
		},
		Catalog: CatalogConfig{
			ProductMinPrice: getEnvDecimal("PRODUCT_MIN_PRICE", decimal.NewFromInt(5000)),
			PageSize:        getEnvInt("PAGE_SIZE", 10),
			MaxPageSize:     getEnvInt("MAX_PAGE_SIZE", 100),
		},
		Media: MediaConfig{
			Root:        getEnv("MEDIA_ROOT", "media"),
			URL:         getEnv("MEDIA_URL", "/media/"),
			MaxUploadKB: getEnvInt("MEDIA_MAX_UPLOAD_KB", 500),
		},
		Midtrans: MidtransConfig{
			ServerKey:  getEnv("MIDTRANS_SERVER_KEY", ""),
			ClientKey:  getEnv("MIDTRANS_CLIENT_KEY", ""),
			Production: getEnvBool("MIDTRANS_PRODUCTION", false),
		},
		Email: EmailConfig{
			Host:     getEnv("EMAIL_HOST", ""),
			Port:     getEnv("EMAIL_PORT", "587"),
			Username: getEnv("EMAIL_USERNAME", ""),
			Password: getEnv("EMAIL_PASSWORD", ""),
			From:     getEnv("EMAIL_FROM", getEnv("EMAIL_USERNAME", "")),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return fallback
}
