package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns the CLI logger, stamped to the hundredth of a second.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// stage times one step of a command (import and layout, edits, render)
// and logs its outcome with the elapsed time.
type stage struct {
	logger *log.Logger
	name   string
	start  time.Time
}

func startStage(l *log.Logger, name string) *stage {
	return &stage{logger: l, name: name, start: time.Now()}
}

// done logs msg at info level with the stage name, the extra key-value
// pairs and the elapsed time rounded to the millisecond, e.g.
//
//	14:32:01.45 INFO settled stage=layout nodes=42 elapsed=1.234s
func (s *stage) done(msg string, keyvals ...any) {
	kv := append([]any{"stage", s.name}, keyvals...)
	kv = append(kv, "elapsed", time.Since(s.start).Round(time.Millisecond))
	s.logger.Info(msg, kv...)
}

type loggerKey struct{}

// withLogger attaches l to ctx for helpers that only see the context.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
