package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Session   SessionConfig
	R2        R2Config
	Storage   StorageConfig
	Catalog   CatalogConfig
	Invoice   InvoiceConfig
	Log       LogConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port           string
	Host           string
	Env            string
	AllowedOrigins []string
	TrustedProxies []string
}

type DatabaseConfig struct {
	URL      string // Full database URL
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type SessionConfig struct {
	Secret string
	Dir    string
	MaxAge int
}

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicURL       string
	Region          string
	Endpoint        string
}

// StorageConfig covers local fallback storage and image fitting bounds
type StorageConfig struct {
	LocalPath       string
	LocalURL        string
	MaxUploadBytes  int64
	LayoutMaxWidth  int
	LayoutMaxHeight int
	SignatureWidth  int
	SignatureHeight int
}

// CatalogConfig points at the YAML event catalog used when no database is
// reachable
type CatalogConfig struct {
	Path string
}

// InvoiceConfig seeds new invoice drafts
type InvoiceConfig struct {
	SenderName     string
	SenderCompany  string
	SenderAddress  string
	SenderEmail    string
	SenderPhone    string
	SenderGSTIN    string
	GSTPercentage  string
	PaymentDetails string
	UPIID          string
	QRSize         int
}

type LogConfig struct {
	Level  string
	Format string
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
	TTL               time.Duration
}

func Load() (*Config, error) {
	// Load .env files if they exist (try .env.local first, then .env)
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	port := getEnv("PORT", "8080")
	host := getEnv("HOST", "localhost")

	config := &Config{
		Server: ServerConfig{
			Port:           port,
			Host:           host,
			Env:            getEnv("ENV", "development"),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
			TrustedProxies: getEnvAsList("TRUSTED_PROXIES", nil),
		},
		Database: parseDatabaseConfig(),
		Session: SessionConfig{
			Secret: getEnv("SESSION_SECRET", "your-secret-key-change-in-production"),
			Dir:    getEnv("SESSION_DIR", ""),
			MaxAge: getEnvAsInt("SESSION_MAX_AGE", 86400),
		},
		R2: R2Config{
			AccountID:       getEnv("R2_ACCOUNT_ID", ""),
			AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
			BucketName:      getEnv("R2_BUCKET_NAME", "event-console"),
			PublicURL:       getEnv("R2_PUBLIC_URL", ""),
			Region:          getEnv("R2_REGION", "auto"),
			Endpoint:        getEnv("R2_ENDPOINT", ""),
		},
		Storage: StorageConfig{
			LocalPath:       getEnv("UPLOADS_DIR", "./uploads"),
			LocalURL:        getEnv("UPLOADS_URL", "http://"+host+":"+port+"/uploads"),
			MaxUploadBytes:  int64(getEnvAsInt("MAX_UPLOAD_BYTES", 10<<20)),
			LayoutMaxWidth:  getEnvAsInt("LAYOUT_MAX_WIDTH", 1600),
			LayoutMaxHeight: getEnvAsInt("LAYOUT_MAX_HEIGHT", 1200),
			SignatureWidth:  getEnvAsInt("SIGNATURE_MAX_WIDTH", 600),
			SignatureHeight: getEnvAsInt("SIGNATURE_MAX_HEIGHT", 200),
		},
		Catalog: CatalogConfig{
			Path: getEnv("EVENT_CATALOG", "configs/events.yaml"),
		},
		Invoice: InvoiceConfig{
			SenderName:     getEnv("INVOICE_SENDER_NAME", ""),
			SenderCompany:  getEnv("INVOICE_SENDER_COMPANY", ""),
			SenderAddress:  getEnv("INVOICE_SENDER_ADDRESS", ""),
			SenderEmail:    getEnv("INVOICE_SENDER_EMAIL", ""),
			SenderPhone:    getEnv("INVOICE_SENDER_PHONE", ""),
			SenderGSTIN:    getEnv("INVOICE_SENDER_GSTIN", ""),
			GSTPercentage:  getEnv("INVOICE_GST_PERCENTAGE", "18"),
			PaymentDetails: getEnv("INVOICE_PAYMENT_DETAILS", ""),
			UPIID:          getEnv("INVOICE_UPI_ID", ""),
			QRSize:         getEnvAsInt("INVOICE_QR_SIZE", 256),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvAsFloat("RATE_LIMIT_RPS", 2),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 5),
			TTL:               time.Duration(getEnvAsInt("RATE_LIMIT_TTL_MINUTES", 10)) * time.Minute,
		},
	}

	return config, nil
}

// IsDevelopment reports whether the server runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

func parseDatabaseConfig() DatabaseConfig {
	// Check if DATABASE_URL is provided
	databaseURL := getEnv("DATABASE_URL", "")
	if databaseURL != "" {
		return parseDatabaseURL(databaseURL)
	}

	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvAsInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		DBName:   getEnv("DB_NAME", "event_console"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}
}

func parseDatabaseURL(databaseURL string) DatabaseConfig {
	config := DatabaseConfig{
		URL: databaseURL,
	}

	u, err := url.Parse(databaseURL)
	if err != nil {
		// If parsing fails, return the URL as-is
		return config
	}

	config.Host = u.Hostname()
	config.Port = 5432
	if u.Port() != "" {
		config.Port, _ = strconv.Atoi(u.Port())
	}

	if u.User != nil {
		config.User = u.User.Username()
		config.Password, _ = u.User.Password()
	}

	config.DBName = strings.TrimPrefix(u.Path, "/")

	config.SSLMode = u.Query().Get("sslmode")
	if config.SSLMode == "" {
		config.SSLMode = "disable"
	}

	return config
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
