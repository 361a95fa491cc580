// Package logging builds the zap logger used across ttlctl.
package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const timeLayout = "2006-01-02T15:04:05"

// Options controls logger construction.
type Options struct {
	Level string // debug, info, warn, error
	Color bool   // colored level names on the console
	JSON  bool   // JSON encoding instead of console
	File  string // optional log file, always written at debug level

	// Output is the console destination (default: stderr). Stdout carries
	// command output and the plugin protocol, so logs never go there.
	Output io.Writer
}

// New creates a sugared logger from opts. The returned close function flushes
// buffered entries and closes the log file, if any.
func New(opts Options) (*zap.SugaredLogger, func() error, error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		var err error
		level, err = zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, nil, err
		}
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	cores := []zapcore.Core{
		zapcore.NewCore(newEncoder(opts.Color, opts.JSON), zapcore.AddSync(out), level),
	}

	var file *os.File
	if opts.File != "" {
		var err error
		file, err = os.OpenFile(opts.File, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
		if err != nil {
			return nil, nil, err
		}
		cores = append(cores, zapcore.NewCore(newEncoder(false, opts.JSON), zapcore.AddSync(file), zapcore.DebugLevel))
	}

	core := cores[0]
	if len(cores) > 1 {
		core = zapcore.NewTee(cores...)
	}

	log := zap.New(core, zap.AddStacktrace(zap.DPanicLevel)).Sugar()

	closeFn := func() error {
		// Syncing a console fd fails with EINVAL on some platforms; only
		// the file result matters.
		_ = log.Sync()
		if file == nil {
			return nil
		}
		return file.Close()
	}
	return log, closeFn, nil
}

func newEncoder(color, json bool) zapcore.Encoder {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout(timeLayout)

	if json {
		cfg = zap.NewProductionEncoderConfig()
		return zapcore.NewJSONEncoder(cfg)
	}
	if color {
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return zapcore.NewConsoleEncoder(cfg)
}
