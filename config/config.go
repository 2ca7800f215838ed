package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ServerPort        string
	MinIOEndpoint     string
	MinIOAccessKey    string
	MinIOSecretKey    string
	MinIOUseSSL       bool
	SourceBucket      string // Bucket for archived uploads (xlsx/xls/csv/pdf)
	TargetBucket      string // Bucket for the JSON document collections
	UploadPathPattern string // uploads/<target>/<preview id>/<file name>
	CacheTTL          time.Duration
	PreviewTTL        time.Duration
	PresignedURLTTL   time.Duration
	MaxUploadBytes    int64
	AllowedOrigins    []string
	Environment       string
	LLMBaseURL        string
	LLMAPIKey         string
	LLMModel          string
	LLMTimeout        time.Duration
}

func Load() *Config {
	cacheMinutes, _ := strconv.Atoi(getEnv("CACHE_TTL_MINUTES", "10"))
	previewMinutes, _ := strconv.Atoi(getEnv("PREVIEW_TTL_MINUTES", "30"))
	presignedMinutes, _ := strconv.Atoi(getEnv("PRESIGNED_URL_TTL_MINUTES", "15"))
	maxUploadMB, _ := strconv.Atoi(getEnv("MAX_UPLOAD_MB", "10"))
	llmTimeout, _ := strconv.Atoi(getEnv("LLM_TIMEOUT_SECONDS", "60"))
	useSSL, _ := strconv.ParseBool(getEnv("MINIO_USE_SSL", "false"))

	return &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		MinIOEndpoint:     getEnv("MINIO_ENDPOINT", "minio:9000"),
		MinIOAccessKey:    getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinIOSecretKey:    getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinIOUseSSL:       useSSL,
		SourceBucket:      getEnv("SOURCE_BUCKET", "portal-uploads"),
		TargetBucket:      getEnv("TARGET_BUCKET", "portal-data"),
		UploadPathPattern: getEnv("UPLOAD_PATH_PATTERN", "uploads/%s/%s/%s"),
		CacheTTL:          time.Duration(cacheMinutes) * time.Minute,
		PreviewTTL:        time.Duration(previewMinutes) * time.Minute,
		PresignedURLTTL:   time.Duration(presignedMinutes) * time.Minute,
		MaxUploadBytes:    int64(maxUploadMB) << 20,
		AllowedOrigins:    splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		Environment:       getEnv("ENVIRONMENT", "development"),
		LLMBaseURL:        getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
		LLMAPIKey:         getEnv("LLM_API_KEY", ""),
		LLMModel:          getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMTimeout:        time.Duration(llmTimeout) * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
