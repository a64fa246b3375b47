package app

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/classdesk/classdesk-backend/internal/pkg/logger"
)

type Config struct {
	HTTPAddr        string
	LogMode         string
	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresName     string
}

// LoadConfig reads configuration from the environment, loading a local
// .env file first when present.
func LoadConfig(log *logger.Logger) Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Debug("No .env file loaded", "error", err)
	}
	return Config{
		HTTPAddr:        GetEnv("HTTP_ADDR", ":8080", log),
		LogMode:         GetEnv("LOG_MODE", "development", log),
		JWTSecretKey:    GetEnv("JWT_SECRET_KEY", "defaultsecret", log),
		AccessTokenTTL:  time.Duration(GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)) * time.Second,
		RefreshTokenTTL: time.Duration(GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)) * time.Second,

		PostgresHost:     GetEnv("POSTGRES_HOST", "localhost", log),
		PostgresPort:     GetEnv("POSTGRES_PORT", "5432", log),
		PostgresUser:     GetEnv("POSTGRES_USER", "postgres", log),
		PostgresPassword: GetEnv("POSTGRES_PASSWORD", "", log),
		PostgresName:     GetEnv("POSTGRES_NAME", "classdesk", log),
	}
}

func (c Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.PostgresUser, c.PostgresPassword, c.PostgresHost, c.PostgresPort, c.PostgresName)
}

func GetEnv(key, defaultVal string, log *logger.Logger) string {
	val, ok := os.LookupEnv(key)
	if !ok {
		if log != nil {
			log.Debug("Environment variable not found, using default", "env_var", key, "default", defaultVal)
		}
		return defaultVal
	}
	return val
}

func GetEnvAsInt(key string, defaultVal int, log *logger.Logger) int {
	valStr, ok := os.LookupEnv(key)
	if !ok {
		if log != nil {
			log.Debug("Environment variable not found, using default", "env_var", key, "default", defaultVal)
		}
		return defaultVal
	}
	i, err := strconv.Atoi(valStr)
	if err != nil {
		if log != nil {
			log.Warn("Environment variable is not an int, using default", "env_var", key, "value", valStr, "default", defaultVal)
		}
		return defaultVal
	}
	return i
}
