package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv reads .env (or the files named in ENV_FILE) when present. Variables already set win.
func LoadEnv() error {
	file := os.Getenv("ENV_FILE")
	if file == "" {
		file = ".env"
	}

	if _, err := os.Stat(file); os.IsNotExist(err) {
		return nil
	}

	return godotenv.Load(file)
}

func InitializeConfig() error {
	if err := LoadEnv(); err != nil {
		return err
	}
	NewLoggerService()
	if err := LoadRootsConfig(RootsConfigPath()); err != nil {
		return err
	}
	if err := ConnectDatabase(); err != nil {
		return err
	}
	if err := NewCacheService(); err != nil {
		return err
	}
	if err := NewInfluxDB(); err != nil {
		return err
	}
	if err := ConnectNats(); err != nil {
		return err
	}

	return nil
}
