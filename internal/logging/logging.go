// Package logging builds the process-wide zap logger.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is set by InitLogger. It is a no-op logger until then.
var Logger = zap.NewNop().Sugar()

// New returns a console logger. Debug mode logs everything with caller info;
// otherwise only warnings and errors are written so command output stays clean.
func New(debug bool) (*zap.SugaredLogger, error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		cfg.Sampling = nil
	}
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger.Sugar(), nil
}

// InitLogger replaces Logger with New(debug).
func InitLogger(debug bool) (*zap.SugaredLogger, error) {
	l, err := New(debug)
	if err != nil {
		return nil, err
	}
	Logger = l
	return l, nil
}
