package logger

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
	slogzerolog "github.com/samber/slog-zerolog/v2"
)

// Logger is the structured logging interface used across the application.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type Opts struct {
	Env       string
	SentryUrl string
}

type Impl struct {
	log *slog.Logger
}

// New builds a logger that writes to a zerolog console handler and, when a
// Sentry DSN is configured, forwards error-level records to Sentry.
func New(opts Opts) *Impl {
	level := slog.LevelDebug
	if opts.Env == "production" {
		level = slog.LevelInfo
	}

	zl := zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
		w.TimeFormat = time.RFC3339
	})).With().Timestamp().Logger()

	handlers := []slog.Handler{
		slogzerolog.Option{Level: level, Logger: &zl}.NewZerologHandler(),
	}

	if opts.SentryUrl != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         opts.SentryUrl,
			Environment: opts.Env,
		}); err != nil {
			zl.Warn().Err(err).Msg("Failed to initialize sentry, continuing without it")
		} else {
			handlers = append(handlers, slogsentry.Option{Level: slog.LevelError}.NewSentryHandler())
		}
	}

	return &Impl{log: slog.New(slogmulti.Fanout(handlers...))}
}

// NewNop returns a logger that discards everything. Intended for tests.
func NewNop() *Impl {
	return &Impl{log: slog.New(slog.DiscardHandler)}
}

var _ Logger = (*Impl)(nil)

func (i *Impl) Debug(msg string, args ...any) { i.log.Debug(msg, args...) }
func (i *Impl) Info(msg string, args ...any)  { i.log.Info(msg, args...) }
func (i *Impl) Warn(msg string, args ...any)  { i.log.Warn(msg, args...) }
func (i *Impl) Error(msg string, args ...any) { i.log.Error(msg, args...) }

// Printf satisfies fx.Printer so the fx event log can reuse this logger.
func (i *Impl) Printf(format string, args ...interface{}) {
	i.log.Info(fmt.Sprintf(format, args...))
}
