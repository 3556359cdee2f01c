package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const serviceName = "msku-service"

// SetupLogger: человекочитаемый вывод в консоль + файл с ротацией.
// LOG_FILE=off оставляет только консоль.
func SetupLogger(cfg Config) zerolog.Logger {
	logger := newLogger(cfg, os.Stdout)
	log.Logger = logger
	return logger
}

func newLogger(cfg Config, console io.Writer) zerolog.Logger {
	writers := []io.Writer{zerolog.ConsoleWriter{Out: console, TimeFormat: time.RFC3339}}
	if f := strings.TrimSpace(cfg.LogFile); f != "" && !strings.EqualFold(f, "off") {
		_ = os.MkdirAll(filepath.Dir(f), 0o755)
		writers = append(writers, &lumberjack.Logger{
			Filename:   f,
			MaxSize:    50, // MB
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		})
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(lvl).
		With().Timestamp().Str("service", serviceName).
		Logger()
}
