package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logger settings.
type Config struct {
	Level      string // debug, info, warn, error; info when empty or unknown
	Encoding   string // json (default) or console
	OutputPath string // file path; stdout when empty
	Service    string // "service" field on every entry
	Env        string // "development" adds caller and error stack traces
}

// New builds the service logger: ISO8601 "timestamp", capital levels and a
// "service" field, written to cfg.OutputPath.
func New(cfg Config) (*zap.Logger, error) {
	level, ok := parseLevel(cfg.Level)
	if !ok {
		// no logger yet
		fmt.Fprintf(os.Stderr, "Invalid log level '%s', using 'info'\n", cfg.Level)
	}

	path := cfg.OutputPath
	if path == "" {
		path = "stdout"
	}
	sink, _, err := zap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log output %q: %w", path, err)
	}

	development := cfg.Env == "development"
	core := zapcore.NewCore(newEncoder(cfg.Encoding, development), sink, zap.NewAtomicLevelAt(level))

	opts := []zap.Option{zap.ErrorOutput(zapcore.Lock(os.Stderr))}
	if development {
		opts = append(opts, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	}
	if cfg.Service != "" {
		opts = append(opts, zap.Fields(zap.String("service", cfg.Service)))
	}
	return zap.New(core, opts...), nil
}

func parseLevel(raw string) (zapcore.Level, bool) {
	if raw == "" {
		return zapcore.InfoLevel, true
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(raw))); err != nil {
		return zapcore.InfoLevel, false
	}
	return level, true
}

func newEncoder(encoding string, development bool) zapcore.Encoder {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	if strings.EqualFold(encoding, "console") {
		if development {
			encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		return zapcore.NewConsoleEncoder(encoderCfg)
	}
	return zapcore.NewJSONEncoder(encoderCfg)
}
