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
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the process-wide log output.
type Options struct {
	// Level is the minimum level: debug, info, warn or error.
	Level string `json:"level"`
	// Format is "json" or "console".
	Format string `json:"format"`
	// File, when set, receives the logs instead of stdout and is rotated.
	File       string `json:"file"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (o *Options) SetDefaults() {
	if o.Level == "" {
		o.Level = "info"
	}
	if o.Format == "" {
		o.Format = "json"
	}
	if o.File != "" && o.MaxSizeMB <= 0 {
		o.MaxSizeMB = 50
	}
}

// Validate checks the level and format.
func (o Options) Validate() error {
	if _, err := zerolog.ParseLevel(strings.ToLower(o.Level)); err != nil {
		return fmt.Errorf("unknown log level %s", o.Level)
	}
	if o.Format != "json" && o.Format != "console" {
		return fmt.Errorf("unknown log format %s", o.Format)
	}
	return nil
}

var (
	mu      sync.RWMutex
	output  io.Writer
	level   string
	rotator *lumberjack.Logger
)

// Configure sets the output used by loggers created afterwards. LOG_LEVEL and
// APP_ENV still take precedence when set.
func Configure(o Options) error {
	o.SetDefaults()
	if err := o.Validate(); err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	var w io.Writer = os.Stdout
	if o.File != "" {
		if dir := filepath.Dir(o.File); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		if rotator != nil {
			_ = rotator.Close()
		}
		rotator = &lumberjack.Logger{
			Filename:   o.File,
			MaxSize:    o.MaxSizeMB,
			MaxBackups: o.MaxBackups,
			MaxAge:     o.MaxAgeDays,
		}
		w = rotator
	}
	if o.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: o.File != ""}
	}
	output = w
	level = o.Level
	return nil
}

// Close releases the rotating log file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if rotator == nil {
		return nil
	}
	err := rotator.Close()
	rotator = nil
	output = nil
	return err
}

func configured() (io.Writer, string) {
	mu.RLock()
	defer mu.RUnlock()
	return output, level
}
