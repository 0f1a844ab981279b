package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreFile     = "file"
	StorePostgres = "postgres"

	UploadDisk = "disk"
	UploadS3   = "s3"
)

type Config struct {
	// Server
	Port        string
	CORSOrigins string
	AppEnv      string
	SentryDSN   string
	Contact     string

	// Review store
	StoreDriver string
	DataDir     string

	// Database (StoreDriver=postgres)
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Evidence uploads
	UploadDriver string
	UploadDir    string
	S3Bucket     string
	S3Prefix     string
	AWSRegion    string

	// Moderation
	AutoApproveDelay time.Duration
	ModerationResume bool
	ModerationSweep  string

	// Command-line client
	APIURL string

	// Logging
	LogLevel     string
	LogRetention time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env", "error", err)
	}

	return &Config{
		Port:        getEnv("PORT", "3001"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		AppEnv:      getEnv("APP_ENV", "development"),
		SentryDSN:   getEnv("SENTRY_DSN", ""),
		Contact:     getEnv("CONTACT_EMAIL", "support@uwdate.app"),

		StoreDriver: getEnv("STORE_DRIVER", StoreFile),
		DataDir:     getEnv("DATA_DIR", "data"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "uwdate"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		UploadDriver: getEnv("UPLOAD_DRIVER", UploadDisk),
		UploadDir:    getEnv("UPLOAD_DIR", "uploads/evidence"),
		S3Bucket:     getEnv("S3_BUCKET", ""),
		S3Prefix:     getEnv("S3_PREFIX", "evidence/"),
		AWSRegion:    getEnv("AWS_REGION", "us-east-1"),

		AutoApproveDelay: parseDuration(getEnv("AUTO_APPROVE_DELAY", "5s"), 5*time.Second),
		ModerationResume: parseBool(getEnv("MODERATION_RESUME", "true"), true),
		ModerationSweep:  getEnv("MODERATION_SWEEP", ""),

		APIURL: getEnv("REVIEW_API_URL", ""),

		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogRetention: parseDuration(getEnv("LOG_RETENTION", "720h"), 30*24*time.Hour),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}

func parseBool(s string, fallback bool) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return fallback
	}
	return b
}
