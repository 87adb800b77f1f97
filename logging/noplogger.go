package logging

// NewNopLogger returns a logger that discards everything. Useful in tests
// that exercise code which logs through the context helpers.
func NewNopLogger() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Debug(args ...interface{})                       {}
func (nopLogger) Debugw(msg string, keysAndValues ...interface{}) {}
func (nopLogger) Debugf(msg string, args ...interface{})          {}
func (nopLogger) Info(args ...interface{})                        {}
func (nopLogger) Infow(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Infof(msg string, args ...interface{})           {}
func (nopLogger) Warn(args ...interface{})                        {}
func (nopLogger) Warnw(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Warnf(msg string, args ...interface{})           {}
func (nopLogger) Error(args ...interface{})                       {}
func (nopLogger) Errorw(msg string, keysAndValues ...interface{}) {}
func (nopLogger) Errorf(msg string, args ...interface{})          {}
func (nopLogger) Fatal(args ...interface{})                       {}
func (nopLogger) Fatalw(msg string, keysAndValues ...interface{}) {}
func (nopLogger) Fatalf(msg string, args ...interface{})          {}
func (nopLogger) Named(name string) Logger                        { return nopLogger{} }
func (nopLogger) With(field string, value interface{}) Logger     { return nopLogger{} }
