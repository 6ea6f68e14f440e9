// internal/config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/Ashtonex/nirvana/internal/logger"
)

// Variables available everywhere
var (
	baseDir         string
	dataDirectory   string
	logsDirectory   string
	dataFilePath    string
	backupRetention int
)

//
// --- Utility Helpers ---
//

// Helper: get a setting based on ENVIRONMENT (dev or prod)
func GetEnvBasedSetting(base string) string {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "dev"
	}
	return os.Getenv(fmt.Sprintf("%s_%s", base, strings.ToUpper(env)))
}

// Helper: log which environment is running
func LogCurrentEnvironment() {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "dev"
	}

	if env == "dev" {
		logger.LogInfo("Running in development environment")
	} else {
		logger.LogInfo("Running in production environment")
	}
}

//
// --- Loaders ---
//

// LoadEnv reads .env file
func LoadEnv() {
	wd, err := os.Getwd()
	if err != nil {
		log.Printf("Could not determine working directory: %v", err)
	}

	err = godotenv.Load(".env")
	if err != nil {
		log.Printf("No .env file found in %s. Using system environment variables.", wd)
	} else {
		log.Printf("Loaded environment variables from .env file in %s", wd)
	}
}

// LoggerConfig returns a logger.Config struct populated from environment
func LoggerConfig() logger.Config {
	logDir := GetEnvBasedSetting("LOGS_DIRECTORY")
	if logDir == "" {
		logDir = "./logs"
	}

	logFormat := GetEnvBasedSetting("LOG_FILE_FORMAT")
	if logFormat == "" {
		logFormat = "retailops_%s.log"
	}

	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}

	timezone := os.Getenv("TIME_ZONE")
	if timezone == "" {
		timezone = "Local"
	}

	return logger.Config{
		LogsDirectory: logDir,
		LogFileFormat: logFormat,
		Level:         level,
		TimeZone:      timezone,
	}
}

// ConfigurePaths sets up folders and paths
func ConfigurePaths() {
	wd, err := os.Getwd()
	if err != nil {
		logger.LogFatal("Failed to get working directory: %v", err)
	}
	baseDir = wd

	dataDir := GetEnvBasedSetting("DATA_DIRECTORY")
	if dataDir != "" {
		dataDirectory = dataDir
	} else {
		dataDirectory = filepath.Join(baseDir, "data")
	}

	logsDir := GetEnvBasedSetting("LOGS_DIRECTORY")
	if logsDir != "" {
		logsDirectory = logsDir
	} else {
		logsDirectory = filepath.Join(baseDir, "logs")
	}

	dataFile := GetEnvBasedSetting("DATA_FILE")
	if dataFile != "" {
		if filepath.IsAbs(dataFile) {
			dataFilePath = dataFile
		} else {
			dataFilePath = filepath.Join(dataDirectory, dataFile)
		}
	} else {
		dataFilePath = filepath.Join(dataDirectory, "db.json")
	}

	backupRetention = loadBackupRetention()
}

func loadBackupRetention() int {
	raw := os.Getenv("BACKUP_RETENTION")
	if raw == "" {
		return 0 // store applies its default
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		logger.LogWarn("Invalid BACKUP_RETENTION %q, using default", raw)
		return 0
	}
	return n
}

// EnsureDataDirectory creates the data directory if it does not exist yet.
func EnsureDataDirectory() error {
	if err := os.MkdirAll(dataDirectory, 0775); err != nil {
		return fmt.Errorf("creating data directory %s: %w", dataDirectory, err)
	}
	return nil
}

//
// --- Getters (exported) ---
//

func DataDirectory() string {
	return dataDirectory
}

func LogsDirectory() string {
	return logsDirectory
}

func DataFilePath() string {
	return dataFilePath
}

func BackupRetention() int {
	return backupRetention
}
