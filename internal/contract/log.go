package contract

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log formats supported by InitLogger.
const (
	ConsoleLogFormat = "console"
	JSONLogFormat    = "json"
)

// InitLogger builds the global zap logger. Logs go to stderr so that
// stdout stays reserved for results. Verbose lowers the level to debug,
// otherwise only warnings and errors are shown.
func InitLogger(verbose bool, format string) error {
	zapCfg := zap.NewProductionConfig()
	switch format {
	case "", ConsoleLogFormat:
		zapCfg.Encoding = ConsoleLogFormat
		zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		zapCfg.DisableStacktrace = true
	case JSONLogFormat:
	default:
		return fmt.Errorf("invalid log format '%s'. must be console, json", format)
	}

	zapCfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	zap.ReplaceGlobals(logger)
	return nil
}
