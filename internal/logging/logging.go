// Package logging builds the process logger: console output at INFO and a
// per-run log file at DEBUG.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures New
type Options struct {
	Dir     string
	Console io.Writer
	Debug   bool
	Now     func() time.Time
}

// Logger owns the log file behind a *zap.Logger
type Logger struct {
	*zap.Logger
	file *os.File
	path string
}

// New creates the log directory and file and returns a logger writing to both.
// Callers must Close it.
func New(opts Options) (*Logger, error) {
	if opts.Console == nil {
		opts.Console = os.Stderr
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create log dir")
	}
	path := filepath.Join(opts.Dir, "domain_check_"+opts.Now().Format("20060102_150405")+".log")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "open log file")
	}

	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	enc.EncodeCaller = zapcore.ShortCallerEncoder

	consoleLevel := zapcore.InfoLevel
	if opts.Debug {
		consoleLevel = zapcore.DebugLevel
	}

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(opts.Console), consoleLevel),
		zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(file), zapcore.DebugLevel),
	)

	l := &Logger{
		Logger: zap.New(core, zap.AddCaller()),
		file:   file,
		path:   path,
	}
	l.Info("logging initialized", zap.String("file", path))
	return l, nil
}

// Path returns the log file path
func (l *Logger) Path() string {
	return l.path
}

// Close flushes and releases the log file
func (l *Logger) Close() error {
	// Sync on a terminal returns EINVAL on some platforms; the file is what matters.
	_ = l.Logger.Sync()
	return l.file.Close()
}
