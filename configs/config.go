// config.go - Configuration loaded from environment variables

package configs

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var (
	// Gemini AI Configuration
	GEMINI_API_KEY string
	VISION_MODEL   string

	// Reasoner Configuration
	REASONER_PROVIDER string // "gemini" or "openai"
	REASONING_MODEL   string
	OPENAI_API_KEY    string

	// Pricing Configuration (per 1M tokens in USD)
	VISION_INPUT_PRICE_PER_MILLION     float64
	VISION_OUTPUT_PRICE_PER_MILLION    float64
	REASONING_INPUT_PRICE_PER_MILLION  float64
	REASONING_OUTPUT_PRICE_PER_MILLION float64

	// Server Configuration
	PORT            string
	UPLOAD_DIR      string
	ALLOWED_ORIGINS string

	// MongoDB Configuration
	MONGO_URI     string
	MONGO_DB_NAME string

	// Image preprocessing settings
	ENABLE_IMAGE_PREPROCESSING bool
	MAX_IMAGE_DIMENSION        int

	// Timeouts (seconds)
	EXTRACTION_TIMEOUT int // Per-page vision extraction
	REASONING_TIMEOUT  int // Credit reasoning call
)

// LoadConfig loads configuration from environment variables
func LoadConfig() {
	// Load .env file if exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Required: Gemini API Key (vision extraction always runs on Gemini)
	GEMINI_API_KEY = getEnv("GEMINI_API_KEY", "")
	if GEMINI_API_KEY == "" {
		log.Fatal("GEMINI_API_KEY environment variable is required")
	}

	// Optional with defaults
	VISION_MODEL = getEnv("VISION_MODEL", "gemini-2.5-flash")
	REASONER_PROVIDER = getEnv("REASONER_PROVIDER", "gemini")
	REASONING_MODEL = getEnv("REASONING_MODEL", "gemini-2.5-flash")
	OPENAI_API_KEY = getEnv("OPENAI_API_KEY", "")

	// Pricing (defaults match Gemini 2.5 Flash)
	VISION_INPUT_PRICE_PER_MILLION = getEnvFloat("VISION_INPUT_PRICE_PER_MILLION", 0.30)
	VISION_OUTPUT_PRICE_PER_MILLION = getEnvFloat("VISION_OUTPUT_PRICE_PER_MILLION", 2.50)
	REASONING_INPUT_PRICE_PER_MILLION = getEnvFloat("REASONING_INPUT_PRICE_PER_MILLION", 0.30)
	REASONING_OUTPUT_PRICE_PER_MILLION = getEnvFloat("REASONING_OUTPUT_PRICE_PER_MILLION", 2.50)

	PORT = getEnv("PORT", "8080")
	UPLOAD_DIR = getEnv("UPLOAD_DIR", "uploads")
	ALLOWED_ORIGINS = getEnv("ALLOWED_ORIGINS", "*")

	// MongoDB Configuration
	MONGO_URI = getEnv("MONGO_URI", "mongodb://localhost:27017")
	MONGO_DB_NAME = getEnv("MONGO_DB_NAME", "creditdocs")

	// Image Processing
	ENABLE_IMAGE_PREPROCESSING = getEnvBool("ENABLE_IMAGE_PREPROCESSING", true)
	MAX_IMAGE_DIMENSION = getEnvInt("MAX_IMAGE_DIMENSION", 2000)

	// Timeouts
	EXTRACTION_TIMEOUT = getEnvInt("EXTRACTION_TIMEOUT", 120)
	REASONING_TIMEOUT = getEnvInt("REASONING_TIMEOUT", 180)

	log.Println("✓ Configuration loaded successfully")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
