package main

import (
	"go.uber.org/zap"
)

// newLogger builds the run logger. Logs go to stderr so that labels written
// to stdout stay machine readable. Without -v only warnings are shown; -v
// adds the progress messages and -vv switches to the development encoder
// with debug output.
func newLogger(verbosity int) (*zap.Logger, error) {
	var cfg zap.Config
	switch {
	case verbosity >= 2:
		cfg = zap.NewDevelopmentConfig()
	case verbosity == 1:
		cfg = zap.NewProductionConfig()
		cfg.Encoding = "console"
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	default:
		cfg = zap.NewProductionConfig()
		cfg.Encoding = "console"
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = ""
	return cfg.Build()
}
