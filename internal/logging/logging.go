package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

// Level determines which messages are logged.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
	// LevelSilent disables all logging.
	LevelSilent
)

// Category represents a subsystem for more granular logging.
type Category string

const (
	CategoryApp      Category = "APP"
	CategoryAudio    Category = "AUDIO"
	CategoryPipeline Category = "PIPELINE"
	CategoryStore    Category = "STORE"
	CategorySettings Category = "SETTINGS"
)

var (
	mu           sync.Mutex
	currentLevel = LevelInfo
	output       io.Writer = os.Stderr
	useColors    = true
)

var (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
)

// SetLevel changes the current logging level.
func SetLevel(level Level) {
	mu.Lock()
	defer mu.Unlock()
	currentLevel = level
}

// SetOutput changes where logs are written.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	log.SetOutput(w)
}

// EnableColors turns ANSI color in log output on or off.
func EnableColors(enable bool) {
	mu.Lock()
	defer mu.Unlock()
	useColors = enable
}

// Initialize sets up the logger with default settings.
func Initialize() {
	log.SetFlags(0)
	log.SetOutput(output)
}

func shouldLog(level Level) bool {
	mu.Lock()
	defer mu.Unlock()
	return level >= currentLevel
}

func formatLog(level Level, category Category, message string) string {
	levelStr := "INFO"
	prefix := ""

	switch level {
	case LevelDebug:
		levelStr, prefix = "DEBUG", colorBlue
	case LevelInfo:
		levelStr, prefix = "INFO", colorGreen
	case LevelWarning:
		levelStr, prefix = "WARN", colorYellow
	case LevelError:
		levelStr, prefix = "ERROR", colorRed
	}

	timestamp := time.Now().Format("2006/01/02 15:04:05")

	mu.Lock()
	colored := useColors
	mu.Unlock()
	if colored {
		return fmt.Sprintf("%s%s [%s] [%s] %s%s",
			prefix, timestamp, levelStr, category, message, colorReset)
	}
	return fmt.Sprintf("%s [%s] [%s] %s", timestamp, levelStr, category, message)
}

// Debug logs at debug level.
func Debug(category Category, format string, args ...interface{}) {
	if shouldLog(LevelDebug) {
		log.Println(formatLog(LevelDebug, category, fmt.Sprintf(format, args...)))
	}
}

// Info logs at info level.
func Info(category Category, format string, args ...interface{}) {
	if shouldLog(LevelInfo) {
		log.Println(formatLog(LevelInfo, category, fmt.Sprintf(format, args...)))
	}
}

// Warning logs at warning level.
func Warning(category Category, format string, args ...interface{}) {
	if shouldLog(LevelWarning) {
		log.Println(formatLog(LevelWarning, category, fmt.Sprintf(format, args...)))
	}
}

// Error logs at error level.
func Error(category Category, format string, args ...interface{}) {
	if shouldLog(LevelError) {
		log.Println(formatLog(LevelError, category, fmt.Sprintf(format, args...)))
	}
}
