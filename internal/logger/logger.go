// Package logger provides the module-wide structured logger. It mirrors
// the teacher's zap wrapper: a package-level *zap.Logger plus thin
// level functions, so call sites read `logger.Info(...)` rather than
// threading a logger through every constructor.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Log *zap.Logger

func init() {
	// A usable default so packages that log during init (bootstrap
	// pattern seeding, config defaults) never hit a nil logger; Init
	// replaces it once the caller knows whether this is a dev build.
	Log, _ = zap.NewProduction(zap.AddCallerSkip(1))
}

// Init (re)configures the package logger for development or production.
func Init(development bool) error {
	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	built, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}
	Log = built
	return nil
}

func Info(msg string, fields ...zap.Field)  { Log.Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { Log.Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { Log.Error(msg, fields...) }
func Debug(msg string, fields ...zap.Field) { Log.Debug(msg, fields...) }
func Fatal(msg string, fields ...zap.Field) { Log.Fatal(msg, fields...) }

func Sync() error { return Log.Sync() }
