// Package log is a small structured logger with asynchronous delivery to
// pluggable transporters and context-carried fields.
package log

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
)

const defaultCapacity = 1000

// Logger filters entries by level and hands them to a Buffer.
// Loggers derived with With share the buffer and level of their parent.
type Logger struct {
	level  *atomic.Int32
	buffer *Buffer
	base   []Field
}

// New creates a logger emitting entries at level and above.
func New(level Level, transporters ...Transporter) *Logger {
	l := &Logger{
		level:  new(atomic.Int32),
		buffer: NewBuffer(defaultCapacity, transporters...),
	}
	l.level.Store(int32(level))
	return l
}

// SetLevel changes the minimum level for this logger and its children.
func (l *Logger) SetLevel(level Level) {
	l.level.Store(int32(level))
}

// Level returns the current minimum level.
func (l *Logger) Level() Level {
	return Level(l.level.Load())
}

// Enabled reports whether entries at level would be emitted.
func (l *Logger) Enabled(level Level) bool {
	return l.Level().Enables(level)
}

// With returns a child logger that adds the given fields to every entry.
func (l *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{
		level:  l.level,
		buffer: l.buffer,
		base:   appendPairs(append([]Field(nil), l.base...), keysAndValues...),
	}
}

// Flush waits until queued entries have been written.
func (l *Logger) Flush() {
	l.buffer.Flush()
}

// Close flushes queued entries and closes the transporters.
func (l *Logger) Close() {
	l.buffer.Close()
	l.buffer.closeTransporters()
}

// log builds the entry: base fields, then context fields, then call-site
// fields, each overriding earlier keys.
func (l *Logger) log(level Level, ctx context.Context, msg string, keysAndValues ...any) {
	if !l.Enabled(level) {
		return
	}

	entry := NewEntry(level, msg)
	entry.Caller = caller(3)
	entry.Fields = append(entry.Fields, l.base...)
	if ctx != nil {
		entry.RequestID = RequestIDFromContext(ctx)
		entry.Fields = mergeFields(entry.Fields, FieldsFromContext(ctx))
	}
	entry.Fields = appendPairs(entry.Fields, keysAndValues...)

	l.buffer.Send(*entry)
}

// caller returns file:line skip frames up the stack.
func caller(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}

func (l *Logger) Trace(msg string, keysAndValues ...any) { l.log(Trace, nil, msg, keysAndValues...) }
func (l *Logger) Debug(msg string, keysAndValues ...any) { l.log(Debug, nil, msg, keysAndValues...) }
func (l *Logger) Info(msg string, keysAndValues ...any)  { l.log(Info, nil, msg, keysAndValues...) }
func (l *Logger) Warn(msg string, keysAndValues ...any)  { l.log(Warn, nil, msg, keysAndValues...) }
func (l *Logger) Error(msg string, keysAndValues ...any) { l.log(Error, nil, msg, keysAndValues...) }

// Fatal logs at Fatal level. Exiting is left to the caller.
func (l *Logger) Fatal(msg string, keysAndValues ...any) { l.log(Fatal, nil, msg, keysAndValues...) }

func (l *Logger) TraceCtx(ctx context.Context, msg string, keysAndValues ...any) {
	l.log(Trace, ctx, msg, keysAndValues...)
}

func (l *Logger) DebugCtx(ctx context.Context, msg string, keysAndValues ...any) {
	l.log(Debug, ctx, msg, keysAndValues...)
}

func (l *Logger) InfoCtx(ctx context.Context, msg string, keysAndValues ...any) {
	l.log(Info, ctx, msg, keysAndValues...)
}

func (l *Logger) WarnCtx(ctx context.Context, msg string, keysAndValues ...any) {
	l.log(Warn, ctx, msg, keysAndValues...)
}

func (l *Logger) ErrorCtx(ctx context.Context, msg string, keysAndValues ...any) {
	l.log(Error, ctx, msg, keysAndValues...)
}

func (l *Logger) FatalCtx(ctx context.Context, msg string, keysAndValues ...any) {
	l.log(Fatal, ctx, msg, keysAndValues...)
}

var (
	globalMu     sync.RWMutex
	globalLogger *Logger

	discardOnce   sync.Once
	discardLogger *Logger
)

// SetDefault installs the logger used by the Global* helpers.
func SetDefault(l *Logger) {
	globalMu.Lock()
	globalLogger = l
	globalMu.Unlock()
}

// Default returns the installed logger or a shared logger that discards
// everything.
func Default() *Logger {
	globalMu.RLock()
	l := globalLogger
	globalMu.RUnlock()
	if l != nil {
		return l
	}

	discardOnce.Do(func() {
		discardLogger = New(Off, discard{})
	})
	return discardLogger
}

// The Global helpers log through Default().

func GlobalTrace(msg string, keysAndValues ...any) { Default().log(Trace, nil, msg, keysAndValues...) }
func GlobalDebug(msg string, keysAndValues ...any) { Default().log(Debug, nil, msg, keysAndValues...) }
func GlobalInfo(msg string, keysAndValues ...any)  { Default().log(Info, nil, msg, keysAndValues...) }
func GlobalWarn(msg string, keysAndValues ...any)  { Default().log(Warn, nil, msg, keysAndValues...) }
func GlobalError(msg string, keysAndValues ...any) { Default().log(Error, nil, msg, keysAndValues...) }
func GlobalFatal(msg string, keysAndValues ...any) { Default().log(Fatal, nil, msg, keysAndValues...) }

func GlobalTraceCtx(ctx context.Context, msg string, keysAndValues ...any) {
	Default().log(Trace, ctx, msg, keysAndValues...)
}

func GlobalDebugCtx(ctx context.Context, msg string, keysAndValues ...any) {
	Default().log(Debug, ctx, msg, keysAndValues...)
}

func GlobalInfoCtx(ctx context.Context, msg string, keysAndValues ...any) {
	Default().log(Info, ctx, msg, keysAndValues...)
}

func GlobalWarnCtx(ctx context.Context, msg string, keysAndValues ...any) {
	Default().log(Warn, ctx, msg, keysAndValues...)
}

func GlobalErrorCtx(ctx context.Context, msg string, keysAndValues ...any) {
	Default().log(Error, ctx, msg, keysAndValues...)
}

func GlobalFatalCtx(ctx context.Context, msg string, keysAndValues ...any) {
	Default().log(Fatal, ctx, msg, keysAndValues...)
}
