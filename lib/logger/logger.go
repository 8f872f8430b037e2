// Package logger sets up the process-wide zerolog logger.
// Console output always goes to stderr; LOG_FILE additionally writes JSON lines to a rotating file.
package logger

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures Init.
type Options struct {
	Level    string
	File     string
	MaxSize  int // megabytes
	MaxFiles int
}

var (
	mu   sync.RWMutex
	base = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime}).With().Timestamp().Logger()
)

// Init replaces the base logger. An unknown level falls back to info.
func Init(opts Options) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		lvl = zerolog.InfoLevel
	}
	writers := []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime}}
	if opts.File != "" {
		maxSize := opts.MaxSize
		if maxSize <= 0 {
			maxSize = 10
		}
		maxFiles := opts.MaxFiles
		if maxFiles <= 0 {
			maxFiles = 3
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    maxSize,
			MaxBackups: maxFiles,
			Compress:   true,
		})
	}
	l := zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(lvl).With().Timestamp().Logger()
	mu.Lock()
	base = l
	mu.Unlock()
	return l
}

// Get returns a child logger tagged with component.
func Get(component string) zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base.With().Str("component", component).Logger()
}
