// Package logging provides the shared logrus logger and its file rotation setup.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the global logger instance
var Logger = logrus.New()

func init() {
	Logger.SetOutput(os.Stderr)
	Logger.SetLevel(logrus.InfoLevel)
	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
}

// Config describes log level, format and destination
type Config struct {
	Level      string `mapstructure:"level" json:"level"`
	Format     string `mapstructure:"format" json:"format"` // text or json
	Output     string `mapstructure:"output" json:"output"` // console, file or both
	FilePath   string `mapstructure:"file_path" json:"file_path"`
	MaxSize    int    `mapstructure:"max_size" json:"max_size"` // megabytes
	MaxBackups int    `mapstructure:"max_backups" json:"max_backups"`
	MaxAge     int    `mapstructure:"max_age" json:"max_age"` // days
	Compress   bool   `mapstructure:"compress" json:"compress"`
}

// Init applies cfg to the global Logger
func Init(cfg Config) error {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	Logger.SetLevel(level)

	if cfg.Format == "json" {
		SetJSONFormat()
	} else {
		Logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	var writers []io.Writer

	if cfg.Output == "" || cfg.Output == "console" || cfg.Output == "both" {
		writers = append(writers, os.Stderr)
	}

	if cfg.Output == "file" || cfg.Output == "both" {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
			return err
		}

		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		})
	}

	if len(writers) > 0 {
		Logger.SetOutput(io.MultiWriter(writers...))
	}

	return nil
}

// SetLogLevel sets the logging level
func SetLogLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	Logger.SetLevel(lvl)
	return nil
}

// SetLogOutput sets the log output destination
func SetLogOutput(w io.Writer) {
	Logger.SetOutput(w)
}

// SetJSONFormat enables JSON log format
func SetJSONFormat() {
	Logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat:   "2006-01-02T15:04:05Z07:00",
		DisableHTMLEscape: true, // keep <HOST> prompts readable
	})
}

// WithField returns a logger with a field
func WithField(key string, value interface{}) *logrus.Entry {
	return Logger.WithField(key, value)
}

// WithFields returns a logger with multiple fields
func WithFields(fields map[string]interface{}) *logrus.Entry {
	return Logger.WithFields(fields)
}

// WithDevice returns a logger with device context
func WithDevice(device string) *logrus.Entry {
	return Logger.WithField("device", device)
}

// ForDevice returns l when set, otherwise the global logger scoped to device
func ForDevice(l logrus.FieldLogger, device string) logrus.FieldLogger {
	if l != nil {
		return l.WithField("device", device)
	}
	return WithDevice(device)
}

// DebugOutput logs the head and tail of a command's output at debug level
func DebugOutput(l logrus.FieldLogger, command, output string, head, tail int) {
	lines := strings.Split(output, "\n")
	entry := l.WithFields(logrus.Fields{"command": command, "lines": len(lines)})

	if len(lines) <= head+tail {
		entry.Debugf("output:\n%s", output)
		return
	}

	entry.Debugf("output (head %d):\n%s\n...\noutput (tail %d):\n%s",
		head, strings.Join(lines[:head], "\n"),
		tail, strings.Join(lines[len(lines)-tail:], "\n"))
}
