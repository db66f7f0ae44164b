package logging

import "go.uber.org/zap"

// CronLogger adapts zap to the logger interface of robfig/cron.
type CronLogger struct {
	sugar *zap.SugaredLogger
}

func NewCronLogger(l *zap.Logger) CronLogger {
	return CronLogger{sugar: l.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

func (c CronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.sugar.Debugw("cron_"+msg, keysAndValues...)
}

func (c CronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.sugar.Errorw("cron_"+msg, append(keysAndValues, "error", err)...)
}
