package logger

import (
	"os"
	"strings"

	"go.uber.org/zap/zapcore"
)

// LoggerConfig is read once at startup from LOG_LEVEL, LOG_FORMAT and
// LOG_OUTPUT_FILE.
type LoggerConfig struct {
	Level      string
	Format     string
	OutputFile string
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func DefaultConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:      strings.ToLower(envOr("LOG_LEVEL", "info")),
		Format:     strings.ToLower(envOr("LOG_FORMAT", "json")),
		OutputFile: envOr("LOG_OUTPUT_FILE", "stdout"),
	}
}

// ToZapLevel maps Level onto zap. "warning" is accepted as an alias and
// anything unparseable logs at info.
func (c *LoggerConfig) ToZapLevel() zapcore.Level {
	if c.Level == "warning" {
		return zapcore.WarnLevel
	}
	lvl, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}
