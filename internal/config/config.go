// Package config loads process configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config carries everything main needs to wire the service.
//
// Environment variables and defaults:
//
//	DB_HOST       localhost
//	DB_PORT       5432
//	DB_NAME       dashboard
//	DB_USER       postgres
//	DB_PASSWORD   postgres
//	DB_TIMEOUT    5 (seconds, connect and pool-acquire timeout)
//	PORT          8000 (HTTP listen port)
//	REGISTRY_FILE unset (optional YAML system registry override)
type Config struct {
	DBHost       string
	DBPort       string
	DBName       string
	DBUser       string
	DBPassword   string
	DBTimeout    time.Duration
	HTTPPort     string
	RegistryFile string
}

func Load() Config {
	return Config{
		DBHost:       getenv("DB_HOST", "localhost"),
		DBPort:       getenv("DB_PORT", "5432"),
		DBName:       getenv("DB_NAME", "dashboard"),
		DBUser:       getenv("DB_USER", "postgres"),
		DBPassword:   getenv("DB_PASSWORD", "postgres"),
		DBTimeout:    time.Duration(getenvInt("DB_TIMEOUT", 5)) * time.Second,
		HTTPPort:     getenv("PORT", "8000"),
		RegistryFile: os.Getenv("REGISTRY_FILE"),
	}
}

// DSN assembles the keyword/value connection string for pgx.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}

func getenv(key, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func getenvInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	if parsed, err := strconv.Atoi(val); err == nil {
		return parsed
	}
	return fallback
}
