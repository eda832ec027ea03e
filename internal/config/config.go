package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string

	DynamoTables DynamoTables
	S3BucketName string

	// SNSPlatformAppARN is the SNS platform application used to create
	// device endpoints for push delivery. Empty disables push.
	SNSPlatformAppARN string

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration
	RefreshTokenDur   time.Duration

	GoogleClientID string

	// DefaultRadiusKm is applied when a feed request carries no radius and
	// the user has no preferred radius; MaxRadiusKm caps client input.
	DefaultRadiusKm float64
	MaxRadiusKm     float64

	SignedURLTTL time.Duration

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users         string
	Posts         string
	Sessions      string
	Notifications string
	Files         string
	Categories    string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),

		DynamoTables: DynamoTables{
			Users:         getEnv("DYNAMO_TABLE_USERS", "users"),
			Posts:         getEnv("DYNAMO_TABLE_POSTS", "posts"),
			Sessions:      getEnv("DYNAMO_TABLE_SESSIONS", "sessions"),
			Notifications: getEnv("DYNAMO_TABLE_NOTIFICATIONS", "notifications"),
			Files:         getEnv("DYNAMO_TABLE_FILES", "files"),
			Categories:    getEnv("DYNAMO_TABLE_CATEGORIES", "categories"),
		},
		S3BucketName:      getEnv("S3_BUCKET_NAME", "neighbourlink-files"),
		SNSPlatformAppARN: getEnv("SNS_PLATFORM_APP_ARN", ""),

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         time.Duration(getEnvInt("JWT_EXPIRY_DAYS", 7)) * 24 * time.Hour,
		RefreshTokenDur:   time.Duration(getEnvInt("REFRESH_TOKEN_EXPIRY_DAYS", 30)) * 24 * time.Hour,

		GoogleClientID: getEnv("GOOGLE_CLIENT_ID", ""),

		DefaultRadiusKm: getEnvFloat("DEFAULT_RADIUS_KM", 3),
		MaxRadiusKm:     getEnvFloat("MAX_RADIUS_KM", 50),

		SignedURLTTL: time.Duration(getEnvInt("SIGNED_URL_TTL_SECONDS", 900)) * time.Second,

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
