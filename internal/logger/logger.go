// internal/logger/logger.go
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger configuration
type Config struct {
	LogsDirectory string
	LogFileFormat string
	Level         string
	TimeZone      string
}

var (
	initialized int32 // 0 = not initialized, 1 = initialized
	log         *logrus.Logger
	logFilePath string
	mu          sync.Mutex // protect against concurrent initialization
)

func init() {
	// Safe default so packages can log before SetupLogger runs (tests, early
	// startup failures).
	log = logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

// SetupLogger initializes the logger with file and console output.
func SetupLogger(config Config) error {
	mu.Lock()
	defer mu.Unlock()

	if atomic.LoadInt32(&initialized) == 1 {
		return fmt.Errorf("logger already initialized")
	}

	if config.TimeZone == "" {
		config.TimeZone = "Local"
	}

	loc, err := time.LoadLocation(config.TimeZone)
	if err != nil {
		fallbackLogFatal("Failed to load time zone '%s': %v", config.TimeZone, err)
	}

	if err := os.MkdirAll(config.LogsDirectory, 0775); err != nil {
		fallbackLogFatal("Failed to create logs directory '%s': %v", config.LogsDirectory, err)
	}

	currentTime := time.Now().In(loc)
	logFileName := fmt.Sprintf(config.LogFileFormat, currentTime.Format("2006-01-02"))

	// Respect whether LogFileFormat is an absolute path or not
	if filepath.IsAbs(logFileName) {
		logFilePath = logFileName
	} else {
		logFilePath = filepath.Join(config.LogsDirectory, logFileName)
	}

	logFile, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0664)
	if err != nil {
		fallbackLogFatal("Failed to open log file '%s': %v", logFilePath, err)
	}

	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		level = logrus.InfoLevel
	}

	log.SetOutput(io.MultiWriter(os.Stdout, logFile))
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05 MST",
	})

	atomic.StoreInt32(&initialized, 1)
	LogInfo("Logger initialized, writing to %s", logFilePath)
	return nil
}

func GetLogFilePath() string {
	return logFilePath
}

func IsInitialized() bool {
	return atomic.LoadInt32(&initialized) == 1
}

func logMessage(level logrus.Level, message string, v ...interface{}) {
	_, file, line, _ := runtime.Caller(2)
	entry := log.WithField("src", fmt.Sprintf("%s:%d", filepath.Base(file), line))
	entry.Logf(level, message, v...)
}

func LogInfo(message string, v ...interface{})  { logMessage(logrus.InfoLevel, message, v...) }
func LogWarn(message string, v ...interface{})  { logMessage(logrus.WarnLevel, message, v...) }
func LogError(message string, v ...interface{}) { logMessage(logrus.ErrorLevel, message, v...) }
func LogFatal(message string, v ...interface{}) {
	logMessage(logrus.FatalLevel, message, v...)
	os.Exit(1)
}

// fallbackLogFatal ensures logger setup issues still show in stderr and kill the app
func fallbackLogFatal(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	fmt.Fprintf(os.Stderr, "[FATAL] %s\n", msg)
	os.Exit(1)
}
