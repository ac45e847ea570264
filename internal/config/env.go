package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         string
	VectorStore  string // "chroma" or "pgvector"
	ChromaURL    string
	DatabaseURL  string
	AIAPIKey     string
	EmbedModel   string
	PdfModel     string
	PdfExtractor string // "gemini" or "docconv"
	PdfMaxBytes  int
	SearchTopK   int
	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	BucketName   string
	DocsEnabled  bool
}

// LoadConfig loads the environment variables and returns config
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnv("PORT", "3000"),
		VectorStore:  getEnv("VECTOR_STORE", "chroma"),
		ChromaURL:    getEnv("CHROMA_URL", "http://localhost:8000"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		AIAPIKey:     getEnv("GEMINI_API_KEY", ""),
		EmbedModel:   getEnv("EMBED_MODEL", "text-embedding-004"),
		PdfModel:     getEnv("PDF_MODEL", "gemini-1.5-flash"),
		PdfExtractor: getEnv("PDF_EXTRACTOR", "gemini"),
		PdfMaxBytes:  getEnvInt("PDF_MAX_BYTES", 10<<20),
		SearchTopK:   getEnvInt("SEARCH_TOP_K", 10),
		AwsAccessKey: getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey: getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:    getEnv("AWS_REGION", "us-east-2"),
		BucketName:   getEnv("BUCKET_NAME", ""),
		DocsEnabled:  getEnvBool("DOCS_ENABLED", true),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("WARN: %s=%q not a bool, using default %t", key, v, def)
		return def
	}
	return b
}
