package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const DefaultAppIdentifier = "com.widgetcanvas.app"

type (
	// Storage selects and parameterizes the persistence backend.
	Storage struct {
		Type           string
		BasePath       string
		DataSourceName string
		BucketName     string
		Prefix         string
	}

	Config struct {
		AppIdentifier  string
		Storage        Storage
		APITokenSecret string
	}
)

// Load reads an optional .env file and then builds the configuration from the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found")
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only.
func FromEnv() (*Config, error) {
	identifier := os.Getenv("APP_IDENTIFIER")
	if identifier == "" {
		identifier = DefaultAppIdentifier
	}

	basePath := os.Getenv("LOCAL_STORAGE_PATH")
	if basePath == "" {
		dir, err := AppLocalDataDir(identifier)
		if err != nil {
			return nil, err
		}
		basePath = dir
	}

	dsn := os.Getenv("DATA_SOURCE_NAME")
	if dsn == "" {
		dsn = filepath.Join(basePath, "canvas.db")
	}

	storageType := os.Getenv("STORAGE_TYPE")
	if storageType == "" {
		storageType = "filesystem"
	}

	return &Config{
		AppIdentifier: identifier,
		Storage: Storage{
			Type:           storageType,
			BasePath:       basePath,
			DataSourceName: dsn,
			BucketName:     os.Getenv("S3_BUCKET_NAME"),
			Prefix:         os.Getenv("S3_PREFIX"),
		},
		APITokenSecret: os.Getenv("API_TOKEN_SECRET"),
	}, nil
}

// AppLocalDataDir returns the per-user local data directory for the application identifier.
func AppLocalDataDir(identifier string) (string, error) {
	return appLocalDataDir(runtime.GOOS, identifier)
}

func appLocalDataDir(goos, identifier string) (string, error) {
	if identifier == "" {
		return "", fmt.Errorf("app identifier is empty")
	}

	switch goos {
	case "windows":
		dir := os.Getenv("LOCALAPPDATA")
		if dir == "" {
			return "", fmt.Errorf("%%LOCALAPPDATA%% is not set")
		}
		return filepath.Join(dir, identifier), nil
	case "darwin", "ios":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		return filepath.Join(home, "Library", "Application Support", identifier), nil
	default:
		if dir := os.Getenv("XDG_DATA_HOME"); filepath.IsAbs(dir) {
			return filepath.Join(dir, identifier), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		return filepath.Join(home, ".local", "share", identifier), nil
	}
}
