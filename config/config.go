package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	AppMode     string
	StoreDriver string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	JWTSecret      string
	JWTExpiryHours int

	RedisHost        string
	RedisPort        string
	RedisPassword    string
	RateLimitEnabled bool

	ObjectStoreDriver string
	S3Region          string
	S3Bucket          string
	S3AccessKey       string
	S3SecretKey       string
	S3Endpoint        string
	S3PublicBase      string
	MinioEndpoint     string
	MinioAccessKey    string
	MinioSecretKey    string
	MinioBucket       string
	MinioUseSSL       bool
	MinioPublicBase   string
	PresignTTLMin     int

	UploadMaxBytes        int64
	UploadReadTimeoutSec  int
	UploadStoreTimeoutSec int
	UploadWebPQuality     int
}

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"

	ObjectStoreS3     = "s3"
	ObjectStoreMinio  = "minio"
	ObjectStoreMemory = "memory"
)

func LoadConfig() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		AppPort:     getEnv("APP_PORT", "8080"),
		AppMode:     getEnv("APP_MODE", "debug"),
		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "tutor_central"),
		DBPort:     getEnv("DB_PORT", "5432"),

		JWTSecret:      getEnv("JWT_SECRET", "change-me"),
		JWTExpiryHours: getEnvAsInt("JWT_EXPIRY_HOURS", 2),

		RedisHost:        getEnv("REDIS_HOST", "localhost"),
		RedisPort:        getEnv("REDIS_PORT", "6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RateLimitEnabled: getEnvAsBool("RATE_LIMIT_ENABLED", true),

		ObjectStoreDriver: strings.ToLower(getEnv("OBJECT_STORE_DRIVER", ObjectStoreS3)),
		S3Region:          getEnv("S3_REGION", "us-west-1"),
		S3Bucket:          getEnv("S3_BUCKET", "ucbstore"),
		S3AccessKey:       getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:       getEnv("S3_SECRET_KEY", ""),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3PublicBase:      getEnv("S3_PUBLIC_BASE", ""),
		MinioEndpoint:     getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey:    getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey:    getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinioBucket:       getEnv("MINIO_BUCKET", "tutor-central"),
		MinioUseSSL:       getEnvAsBool("MINIO_USE_SSL", false),
		MinioPublicBase:   getEnv("MINIO_PUBLIC_BASE", ""),
		PresignTTLMin:     getEnvAsInt("PRESIGN_TTL_MIN", 15),

		UploadMaxBytes:        int64(getEnvAsInt("UPLOAD_MAX_BYTES", 10<<20)),
		UploadReadTimeoutSec:  getEnvAsInt("UPLOAD_READ_TIMEOUT_SEC", 30),
		UploadStoreTimeoutSec: getEnvAsInt("UPLOAD_STORE_TIMEOUT_SEC", 30),
		UploadWebPQuality:     getEnvAsInt("UPLOAD_WEBP_QUALITY", 80),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}
