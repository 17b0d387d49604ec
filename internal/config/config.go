package config

import (
	"os"
	"strconv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	JWTSecret  string
	ServerPort string

	// RequiredPlayers is both the room capacity and the start threshold.
	RequiredPlayers int
	// QuestionCount is how many random questions each game draws.
	QuestionCount int
}

func Load() *Config {
	return &Config{
		DBHost:          getEnv("DB_HOST", "localhost"),
		DBPort:          getEnv("DB_PORT", "5432"),
		DBUser:          getEnv("DB_USER", "postgres"),
		DBPassword:      getEnv("DB_PASSWORD", "postgres"),
		DBName:          getEnv("DB_NAME", "triviapp"),
		JWTSecret:       getEnv("JWT_SECRET", "super-secret-key-change-me"),
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		RequiredPlayers: getEnvInt("REQUIRED_PLAYERS", 5),
		QuestionCount:   getEnvInt("QUESTION_COUNT", 24),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
