package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"postcrawler/pkg/config"
)

// Logger is the logging surface used across the crawler
type Logger interface {
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string)

	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger

	DebugWithFields(msg string, fields map[string]interface{})
	InfoWithFields(msg string, fields map[string]interface{})
	WarnWithFields(msg string, fields map[string]interface{})
	ErrorWithFields(msg string, fields map[string]interface{})
}

// zl carries its fields in the zerolog context, so derived loggers are
// plain zerolog children
type zl struct {
	z zerolog.Logger
}

var levelLabels = map[string]string{
	"debug": "\033[37mDEBG\033[0m",
	"info":  "\033[32mINFO\033[0m",
	"warn":  "\033[33mWARN\033[0m",
	"error": "\033[31mERRO\033[0m",
}

// New builds a logger writing to stderr, and additionally to cfg.File as
// JSON lines when a file is configured
func New(cfg *config.LoggingConfig) (Logger, error) {
	z, err := build(cfg)
	if err != nil {
		return nil, err
	}
	return &zl{z: z}, nil
}

func build(cfg *config.LoggingConfig) (zerolog.Logger, error) {
	level, err := parseLogLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level: %w", err)
	}
	zerolog.TimeFieldFormat = time.RFC3339

	var out io.Writer = consoleWriter(os.Stderr)
	if cfg.File != "" {
		file, err := openLogFile(cfg.File)
		if err != nil {
			return zerolog.Nop(), err
		}
		out = zerolog.MultiLevelWriter(out, file)
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("app", "postcrawler").
		Logger(), nil
}

func consoleWriter(w io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
		FormatLevel: func(i interface{}) string {
			s, _ := i.(string)
			if label, ok := levelLabels[s]; ok {
				return label
			}
			return strings.ToUpper(s)
		},
		FormatMessage: func(i interface{}) string {
			if i == nil {
				return ""
			}
			return fmt.Sprintf("| %s", i)
		},
		FormatFieldName: func(i interface{}) string {
			return fmt.Sprintf("\033[36m%s\033[0m:", i)
		},
	}
}

func openLogFile(path string) (io.Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return file, nil
}

// parseLogLevel accepts the levels config.Validate allows, plus "warning"
func parseLogLevel(level string) (zerolog.Level, error) {
	switch l := strings.ToLower(strings.TrimSpace(level)); l {
	case "debug", "info", "warn", "error":
		return zerolog.ParseLevel(l)
	case "warning":
		return zerolog.WarnLevel, nil
	default:
		return zerolog.InfoLevel, fmt.Errorf("unknown log level: %q", level)
	}
}

func (l *zl) Debug(msg string) { l.z.Debug().Msg(msg) }
func (l *zl) Info(msg string)  { l.z.Info().Msg(msg) }
func (l *zl) Warn(msg string)  { l.z.Warn().Msg(msg) }
func (l *zl) Error(msg string) { l.z.Error().Msg(msg) }

func (l *zl) WithField(key string, value interface{}) Logger {
	return &zl{z: l.z.With().Interface(key, value).Logger()}
}

func (l *zl) WithFields(fields map[string]interface{}) Logger {
	return &zl{z: l.z.With().Fields(fields).Logger()}
}

// WithError attaches err under the "error" key. A nil error is a no-op.
func (l *zl) WithError(err error) Logger {
	if err == nil {
		return l
	}
	return &zl{z: l.z.With().Err(err).Logger()}
}

func (l *zl) DebugWithFields(msg string, fields map[string]interface{}) {
	l.z.Debug().Fields(fields).Msg(msg)
}

func (l *zl) InfoWithFields(msg string, fields map[string]interface{}) {
	l.z.Info().Fields(fields).Msg(msg)
}

func (l *zl) WarnWithFields(msg string, fields map[string]interface{}) {
	l.z.Warn().Fields(fields).Msg(msg)
}

func (l *zl) ErrorWithFields(msg string, fields map[string]interface{}) {
	l.z.Error().Fields(fields).Msg(msg)
}

var (
	mu     sync.RWMutex
	global Logger
)

// Initialize builds the global logger from cfg. zerolog's own global
// logger is pointed at the same output.
func Initialize(cfg *config.LoggingConfig) error {
	z, err := build(cfg)
	if err != nil {
		return err
	}
	log.Logger = z
	SetLogger(&zl{z: z})
	return nil
}

// SetLogger replaces the global logger, typically with one carrying
// run-wide fields such as run_id
func SetLogger(l Logger) {
	mu.Lock()
	defer mu.Unlock()
	global = l
}

// GetLogger returns the global logger, creating an info-level console
// logger on first use
func GetLogger() Logger {
	mu.RLock()
	l := global
	mu.RUnlock()
	if l != nil {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if global == nil {
		z, _ := build(&config.LoggingConfig{Level: "info"})
		global = &zl{z: z}
	}
	return global
}

// Debug logs through the global logger
func Debug(msg string) { GetLogger().Debug(msg) }

// Info logs through the global logger
func Info(msg string) { GetLogger().Info(msg) }

// WithField derives from the global logger
func WithField(key string, value interface{}) Logger {
	return GetLogger().WithField(key, value)
}

// WithFields derives from the global logger
func WithFields(fields map[string]interface{}) Logger {
	return GetLogger().WithFields(fields)
}

// WithError derives from the global logger
func WithError(err error) Logger {
	return GetLogger().WithError(err)
}
