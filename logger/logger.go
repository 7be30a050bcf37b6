// Package logger builds the zap logger used by the heapdb command.
package logger

import (
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	// Level is the minimum level: debug, info, warn or error. Unknown values
	// fall back to info.
	Level string
	// Format is "json" or "console".
	Format string
	// OutputFile is a path, or "stdout" / "stderr". Empty means stderr.
	OutputFile string
}

// New returns the logger and a function that flushes it and closes its
// output. Sync failures on a console are not reported.
func New(config Config) (*zap.Logger, func() error, error) {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(config.Level)); err != nil {
		level.SetLevel(zap.InfoLevel)
	}
	output := strings.ToLower(config.OutputFile)
	if output == "" {
		output = "stderr"
	}
	if output != "stderr" && output != "stdout" {
		output = config.OutputFile
	}
	ws, closeOutput, err := zap.Open(output)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open log file %s", config.OutputFile)
	}
	core := zapcore.NewCore(encoder(config.Format), ws, level)
	log := zap.New(core, zap.AddCaller())
	closeLog := func() error {
		err := log.Sync()
		closeOutput()
		if output == "stderr" || output == "stdout" {
			return nil
		}
		return err
	}
	return log, closeLog, nil
}

func encoder(format string) zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	if strings.ToLower(format) == "json" {
		return zapcore.NewJSONEncoder(cfg)
	}
	return zapcore.NewConsoleEncoder(cfg)
}
