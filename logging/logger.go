package logging

import "go.uber.org/zap"

// Logger interface for logging to.
type Logger interface {
	// Sublogger returns a new logger whose name is this logger's name with `subname` appended.
	// The sublogger shares appenders with its parent and starts at the parent's level.
	Sublogger(subname string) Logger
	AddAppender(appender Appender)
	SetLevel(level Level)
	GetLevel() Level
	// AsZap converts the logger into a zap SugaredLogger for libraries that require one.
	AsZap() *zap.SugaredLogger
	Sync() error

	Debug(args ...interface{})
	Debugf(template string, args ...interface{})
	Debugw(msg string, keysAndValues ...interface{})

	Info(args ...interface{})
	Infof(template string, args ...interface{})
	Infow(msg string, keysAndValues ...interface{})

	Warn(args ...interface{})
	Warnf(template string, args ...interface{})
	Warnw(msg string, keysAndValues ...interface{})

	Error(args ...interface{})
	Errorf(template string, args ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
}
