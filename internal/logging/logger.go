// Package logging provides config-driven categorized file-based logging for the
// storefront client. Logs are written to <data_dir>/logs/ with one file per
// category per day. Category logging is controlled by logging.debug_mode in the
// config file; when false, Get returns a no-op logger.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"storefront/internal/config"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot     Category = "boot"     // Startup, config, wiring
	CategoryAPI      Category = "api"      // Remote HTTP calls
	CategoryAuth     Category = "auth"     // Login, OTP, profile, logout
	CategoryCatalog  Category = "catalog"  // Product fetch, search, derived view
	CategoryCart     Category = "cart"     // Cart mutations
	CategoryCheckout Category = "checkout" // Checkout wizard
	CategoryStore    Category = "store"    // Token persistence backends
	CategoryUI       Category = "ui"       // TUI events
)

// AllCategories lists every category in declaration order.
var AllCategories = []Category{
	CategoryBoot, CategoryAPI, CategoryAuth, CategoryCatalog,
	CategoryCart, CategoryCheckout, CategoryStore, CategoryUI,
}

// Logger is a category-scoped logger. The zero value (nil sugar) is a no-op.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
	file     *os.File
}

var (
	loggers   = make(map[Category]*Logger)
	loggersMu sync.Mutex

	logsDir  string
	cfg      config.LoggingConfig
	level    = zapcore.InfoLevel
	configMu sync.RWMutex
)

// Initialize sets up the logs directory and stores the logging config.
// It is a silent no-op in production mode (debug_mode false).
func Initialize(dir string, lc config.LoggingConfig) error {
	if dir == "" {
		return fmt.Errorf("logs directory required")
	}

	configMu.Lock()
	logsDir = dir
	cfg = lc
	level = parseLevel(lc.Level)
	configMu.Unlock()

	if !lc.DebugMode {
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	boot := Get(CategoryBoot)
	boot.Info("=== storefront logging initialized ===")
	boot.Info("Logs directory: %s", dir)
	boot.Info("Log level: %s", level)
	if len(lc.Categories) > 0 {
		enabled := 0
		for cat, on := range lc.Categories {
			if on {
				enabled++
			}
			boot.Debug("Category '%s': %v", cat, on)
		}
		boot.Info("Enabled categories: %d/%d", enabled, len(lc.Categories))
	} else {
		boot.Info("All categories enabled (no category filter)")
	}

	return nil
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// IsDebugMode returns whether category logging is enabled at all.
func IsDebugMode() bool {
	configMu.RLock()
	defer configMu.RUnlock()
	return cfg.DebugMode
}

// IsCategoryEnabled returns whether a specific category is enabled.
func IsCategoryEnabled(category Category) bool {
	configMu.RLock()
	defer configMu.RUnlock()
	return cfg.IsCategoryEnabled(string(category))
}

// Get returns the logger for category, opening its file on first use. A
// disabled category, or one whose file cannot be opened, gets a no-op logger.
func Get(category Category) *Logger {
	if !IsCategoryEnabled(category) {
		return &Logger{category: category}
	}

	loggersMu.Lock()
	defer loggersMu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}

	l, err := open(category)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] %v\n", err)
		return &Logger{category: category}
	}
	if l.sugar != nil {
		loggers[category] = l
	}
	return l
}

// open creates <dir>/<date>_<category>.log and a zap core writing to it.
func open(category Category) (*Logger, error) {
	configMu.RLock()
	dir, format, lvl := logsDir, cfg.Format, level
	configMu.RUnlock()
	if dir == "" {
		return &Logger{category: category}, nil
	}

	name := fmt.Sprintf("%s_%s.log", time.Now().Format(time.DateOnly), category)
	file, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open %s log: %w", category, err)
	}

	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "ts"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	enc := zapcore.NewJSONEncoder(ec)
	if format == "console" {
		enc = zapcore.NewConsoleEncoder(ec)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(file), lvl)
	return &Logger{
		category: category,
		file:     file,
		sugar:    zap.New(core).Named(string(category)).Sugar(),
	}, nil
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Debugf(format, args...)
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Infof(format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Warnf(format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	if l.sugar == nil {
		return
	}
	l.sugar.Errorf(format, args...)
}

// StructuredLog writes a log entry with custom fields.
func (l *Logger) StructuredLog(lvl string, msg string, fields map[string]interface{}) {
	if l.sugar == nil {
		return
	}
	kv := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		kv = append(kv, k, v)
	}
	switch parseLevel(lvl) {
	case zapcore.DebugLevel:
		l.sugar.Debugw(msg, kv...)
	case zapcore.WarnLevel:
		l.sugar.Warnw(msg, kv...)
	case zapcore.ErrorLevel:
		l.sugar.Errorw(msg, kv...)
	default:
		l.sugar.Infow(msg, kv...)
	}
}

// WithContext returns a logger that attaches ctx to every entry.
func (l *Logger) WithContext(ctx map[string]interface{}) *Logger {
	if l.sugar == nil {
		return l
	}
	kv := make([]interface{}, 0, len(ctx)*2)
	for k, v := range ctx {
		kv = append(kv, k, v)
	}
	return &Logger{category: l.category, sugar: l.sugar.With(kv...)}
}

// CloseAll syncs and closes every open log file. Later Get calls reopen.
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	for _, l := range loggers {
		if l.sugar != nil {
			_ = l.sugar.Sync()
		}
		if l.file != nil {
			l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
}

// Shorthands for one-off messages. They are no-ops for disabled categories.

// Boot logs to the boot category
func Boot(format string, args ...interface{}) { Get(CategoryBoot).Info(format, args...) }

// BootDebug logs debug to the boot category
func BootDebug(format string, args ...interface{}) { Get(CategoryBoot).Debug(format, args...) }

// API logs to the api category
func API(format string, args ...interface{}) { Get(CategoryAPI).Info(format, args...) }

// APIDebug logs debug to the api category
func APIDebug(format string, args ...interface{}) { Get(CategoryAPI).Debug(format, args...) }

// Auth logs to the auth category
func Auth(format string, args ...interface{}) { Get(CategoryAuth).Info(format, args...) }

// AuthDebug logs debug to the auth category
func AuthDebug(format string, args ...interface{}) { Get(CategoryAuth).Debug(format, args...) }

// AuthWarn logs a warning to the auth category
func AuthWarn(format string, args ...interface{}) { Get(CategoryAuth).Warn(format, args...) }

// Catalog logs to the catalog category
func Catalog(format string, args ...interface{}) { Get(CategoryCatalog).Info(format, args...) }

// CatalogDebug logs debug to the catalog category
func CatalogDebug(format string, args ...interface{}) { Get(CategoryCatalog).Debug(format, args...) }

// Cart logs to the cart category
func Cart(format string, args ...interface{}) { Get(CategoryCart).Info(format, args...) }

// Checkout logs to the checkout category
func Checkout(format string, args ...interface{}) { Get(CategoryCheckout).Info(format, args...) }

// Store logs to the store category
func Store(format string, args ...interface{}) { Get(CategoryStore).Info(format, args...) }

// StoreDebug logs debug to the store category
func StoreDebug(format string, args ...interface{}) { Get(CategoryStore).Debug(format, args...) }

// UI logs to the ui category
func UI(format string, args ...interface{}) { Get(CategoryUI).Info(format, args...) }

// UIDebug logs debug to the ui category
func UIDebug(format string, args ...interface{}) { Get(CategoryUI).Debug(format, args...) }

// Timer logs how long an operation took when stopped.
type Timer struct {
	log   *Logger
	op    string
	begun time.Time
}

// StartTimer begins timing op. The category logger is resolved now, so a
// timer started while the category is off stays silent.
func StartTimer(category Category, op string) *Timer {
	return &Timer{log: Get(category), op: op, begun: time.Now()}
}

// Stop logs the elapsed time at debug level and returns it.
func (t *Timer) Stop() time.Duration {
	return t.StopWithThreshold(0)
}

// StopWithThreshold is Stop, but logs a warning when a positive threshold is
// exceeded.
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.begun)
	if threshold > 0 && elapsed > threshold {
		t.log.Warn("%s slow: %v (limit %v)", t.op, elapsed, threshold)
		return elapsed
	}
	t.log.Debug("%s done in %v", t.op, elapsed)
	return elapsed
}
