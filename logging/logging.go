// Package logging builds the structured logger shared by the server and
// the CLI.
package logging

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/esime/ielec/config"
)

// New creates a zap logger from the logging configuration. Output "stdout"
// and "stderr" write to the given writers; anything else is a file path.
// The returned close function releases the file, if one was opened.
func New(cfg config.LoggingConfig, stdout, stderr io.Writer) (*zap.Logger, func(), error) {
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	if cfg.Quiet {
		level.SetLevel(zap.ErrorLevel)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if cfg.Format == "json" {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	closeFn := func() {}
	var ws zapcore.WriteSyncer
	switch cfg.Output {
	case "", "stderr":
		ws = zapcore.AddSync(stderr)
	case "stdout":
		ws = zapcore.AddSync(stdout)
	default:
		sink, closeSink, err := zap.Open(cfg.Output)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log output %s: %w", cfg.Output, err)
		}
		ws = sink
		closeFn = closeSink
	}

	logger := zap.New(zapcore.NewCore(enc, ws, level), zap.AddCaller())
	return logger, closeFn, nil
}

// Nop returns a logger that discards everything, for tests and library
// callers that do not care about logs.
func Nop() *zap.Logger {
	return zap.NewNop()
}
