package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	StoreBackendFirestore = "firestore"
	StoreBackendMemory    = "memory"
)

type Config struct {
	ServerPort         string
	FirebaseProject    string
	ServiceAccountJSON string
	ServiceAccountPath string
	StorageBucket      string
	Environment        string
	StoreBackend       string
	MaxUploadBytes     int64
	ReconcileSchedule  string
	MessageRatePerMin  int
	LoginPath          string
	AllowedOrigins     string
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		FirebaseProject:    getEnv("FIREBASE_PROJECT_ID", ""),
		ServiceAccountJSON: getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		ServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		StorageBucket:      getEnv("STORAGE_BUCKET", ""),
		Environment:        getEnv("ENVIRONMENT", "development"),
		StoreBackend:       getEnv("STORE_BACKEND", StoreBackendFirestore),
		MaxUploadBytes:     getEnvAsInt64("MAX_UPLOAD_BYTES", 5*1024*1024), // 5 MiB
		ReconcileSchedule:  getEnv("RECONCILE_SCHEDULE", ""),
		MessageRatePerMin:  int(getEnvAsInt64("MESSAGE_RATE_PER_MINUTE", 60)),
		LoginPath:          getEnv("LOGIN_PATH", "/login"),
		AllowedOrigins:     getEnv("ALLOWED_ORIGINS", "*"),
	}

	return config, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}
