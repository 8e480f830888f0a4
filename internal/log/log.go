package log

import (
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

var base atomic.Pointer[zap.Logger]

func init() {
	base.Store(newLogger(zapcore.AddSync(os.Stdout), "json", zapcore.InfoLevel))
}

// Init replaces the process logger. The returned logger is also reachable through L.
func Init(cfg Config) (*zap.Logger, error) {
	w, err := writer(cfg.Output)
	if err != nil {
		return nil, err
	}
	l := newLogger(w, cfg.Format, parseLevel(cfg.Level))
	base.Store(l)
	return l, nil
}

// L returns the process logger for code that has no request context.
func L() *zap.Logger { return base.Load() }

// SetOutput points the logger at w (JSON, debug level) and returns a func restoring the previous one.
func SetOutput(w io.Writer) (restore func()) {
	prev := base.Swap(newLogger(zapcore.AddSync(w), "json", zapcore.DebugLevel))
	return func() { base.Store(prev) }
}

func newLogger(w zapcore.WriteSyncer, format string, level zapcore.Level) *zap.Logger {
	encCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		MessageKey:     "action",
		CallerKey:      zapcore.OmitKey,
		StacktraceKey:  zapcore.OmitKey,
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.RFC3339TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
	}
	var enc zapcore.Encoder
	if format == "console" {
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encCfg)
	}
	return zap.New(zapcore.NewCore(enc, w, level))
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
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

func writer(output string) (zapcore.WriteSyncer, error) {
	switch strings.ToLower(output) {
	case "", "stdout":
		return zapcore.AddSync(os.Stdout), nil
	case "stderr":
		return zapcore.AddSync(os.Stderr), nil
	}
	f, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	// tee to stdout like the file sink always did
	return zapcore.NewMultiWriteSyncer(zapcore.AddSync(os.Stdout), zapcore.AddSync(f)), nil
}

func requestFields(c *fiber.Ctx, category string, fields map[string]any) []zap.Field {
	out := []zap.Field{zap.String("category", category)}
	if c != nil {
		out = append(out,
			zap.String("ip", c.IP()),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
		)
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			out = append(out, zap.String("req_id", rid))
		}
		if sid, ok := c.Locals("sellerID").(int64); ok && sid != 0 {
			out = append(out, zap.Int64("seller_id", sid))
		}
	}
	if len(fields) > 0 {
		out = append(out, zap.Any("fields", fields))
	}
	return out
}

func Info(c *fiber.Ctx, action string, fields map[string]any) {
	L().Info(action, requestFields(c, "app", fields)...)
}

func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	L().Info(action, requestFields(c, "audit", fields)...)
}

func Security(c *fiber.Ctx, action string, fields map[string]any) {
	L().Warn(action, requestFields(c, "security", fields)...)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	L().Error(action, append(requestFields(c, "app", fields), zap.Error(err))...)
}
