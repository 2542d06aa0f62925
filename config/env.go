package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server ServerConfig
	Data   DataConfig
	Redis  RedisConfig
	Stock  StockConfig
}

type ServerConfig struct {
	Port      string
	RateLimit string
}

type DataConfig struct {
	Dir string
}

type StockConfig struct {
	LowStockThreshold int
	AgingDays         int
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	redisEnabled, _ := strconv.ParseBool(getEnv("REDIS_ENABLED", "false"))
	lowStock, _ := strconv.Atoi(getEnv("LOW_STOCK_THRESHOLD", "5"))
	agingDays, _ := strconv.Atoi(getEnv("AGING_DAYS", "21"))

	return Config{
		Server: ServerConfig{
			Port:      getEnv("SERVER_PORT", "8080"),
			RateLimit: getEnv("RATE_LIMIT", "120-M"),
		},
		Data: DataConfig{
			Dir: getEnv("DATA_DIR", "data"),
		},
		Redis: RedisConfig{
			Enabled:  redisEnabled,
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Stock: StockConfig{
			LowStockThreshold: lowStock,
			AgingDays:         agingDays,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
