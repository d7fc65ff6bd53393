// Package logger wires zap behind a logr facade for treepick.
//
// The interactive browser owns the terminal, so a TUI run sends its logs to a
// file (see Options.File) instead of stderr.
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"syscall"

	"github.com/oakwood-commons/treepick/pkg/settings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type loggerContextKey struct{}

const (
	RootCommandKey = "root_command"
	SubCommandKey  = "sub_command"
	CommitKey      = "commit"
	VersionKey     = "version"
	BuildTimeKey   = "build_time"
	GoVersionKey   = "go_version"
	TimeStampKey   = "timestamp"
	MessageKey     = "message"
	SessionKey     = "session"
	SourceKey      = "source"
)

// Options controls the global logger.
type Options struct {
	// Level is a zapcore level: -1 debug, 0 info, 1 warn, 2 error.
	Level int8
	// File, when set, receives the log stream instead of stderr.
	File string
}

var (
	once sync.Once

	// globalZapLogger backs Sync.
	globalZapLogger *zap.Logger

	// globalLogrLogger is handed out when no logger rides on the context.
	globalLogrLogger *logr.Logger

	defaultNoopLogger logr.Logger = logr.Discard()

	setupErr error
)

// Get initializes the global logger writing to stderr at logLevel.
// Only the first call to Get or Setup has any effect.
func Get(logLevel int8) *logr.Logger {
	lgr, _ := Setup(Options{Level: logLevel})
	return lgr
}

// Setup initializes the global logger from opts. Only the first call has any
// effect; later calls return the logger (and error) of the first.
func Setup(opts Options) (*logr.Logger, error) {
	once.Do(func() {
		sink := zapcore.Lock(os.Stderr)
		if opts.File != "" {
			ws, _, err := zap.Open(opts.File)
			if err != nil {
				setupErr = fmt.Errorf("opening log file %q: %w", opts.File, err)
				return
			}
			sink = ws
		}
		globalZapLogger = build(sink, opts.Level)
		gl := zapr.NewLogger(globalZapLogger)
		globalLogrLogger = &gl
	})
	if globalLogrLogger == nil {
		return &defaultNoopLogger, setupErr
	}
	return globalLogrLogger, setupErr
}

// New returns a standalone JSON logger writing to w. It does not touch the
// global logger.
func New(w io.Writer, logLevel int8) *logr.Logger {
	lgr := zapr.NewLogger(build(zapcore.AddSync(w), logLevel))
	return &lgr
}

func build(sink zapcore.WriteSyncer, logLevel int8) *zap.Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.TimeKey = TimeStampKey
	encoderCfg.MessageKey = MessageKey

	goVersion := "unknown"
	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		goVersion = buildInfo.GoVersion
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		sink,
		zap.NewAtomicLevelAt(zapcore.Level(logLevel)),
	).With(
		[]zapcore.Field{
			zap.String(CommitKey, settings.VersionInformation.Commit),
			zap.String(VersionKey, settings.VersionInformation.BuildVersion),
			zap.String(BuildTimeKey, settings.VersionInformation.BuildTime),
			zap.String(GoVersionKey, goVersion),
		},
	)

	return zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zap.ErrorLevel),
		zap.WithFatalHook(zapcore.WriteThenPanic),
	)
}

// WithLogger returns a context carrying log. A context that already carries
// the same logger is returned unchanged.
func WithLogger(ctx context.Context, log *logr.Logger) context.Context {
	if lp, ok := ctx.Value(loggerContextKey{}).(*logr.Logger); ok {
		if lp == log {
			return ctx
		}
	}
	return context.WithValue(ctx, loggerContextKey{}, log)
}

// FromContext returns the context logger, else the global one, else a no-op.
func FromContext(ctx context.Context) *logr.Logger {
	if log, ok := ctx.Value(loggerContextKey{}).(*logr.Logger); ok {
		return log
	} else if log := globalLogrLogger; log != nil {
		return log
	}
	return &defaultNoopLogger
}

// Sync flushes buffered log entries. Call it before exit.
func Sync() {
	if globalZapLogger != nil {
		if err := globalZapLogger.Sync(); err != nil {
			if isIgnorableSyncError(err) {
				return
			}
			fmt.Fprintf(os.Stderr, "WARNING: failed to sync zap logger: %v\n", err)
		}
	}
}

// isIgnorableSyncError reports Sync errors that pipes and TTYs return
// routinely. Windows consoles wrap ERROR_INVALID_HANDLE in *os.PathError, so
// that one is matched by text.
func isIgnorableSyncError(err error) bool {
	if errors.Is(err, syscall.ENOTTY) || errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.EIO) || errors.Is(err, syscall.EBADF) {
		return true
	}
	if strings.Contains(err.Error(), "The handle is invalid") {
		return true
	}
	return false
}

// GetGlobalLogger returns the global logger, or a no-op before Setup.
func GetGlobalLogger() *logr.Logger {
	if globalLogrLogger != nil {
		return globalLogrLogger
	}
	return &defaultNoopLogger
}

func GetNoopLogger() *logr.Logger {
	return &defaultNoopLogger
}

// WithValues returns a copy of lgr carrying keysAndValues.
func WithValues(lgr *logr.Logger, keysAndValues ...any) *logr.Logger {
	nlgr := lgr.WithValues(keysAndValues...)
	return &nlgr
}
