package audit

import (
	"context"
	"log/slog"

	"bloodbank/pkg/requestcontext"
)

// Emitter is the interface for audit event emission.
// Satisfied by publisher.Publisher.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// Logger writes every audit event as a structured log line and forwards it
// to an optional emitter. Services hold one instead of talking to sinks.
type Logger struct {
	textLogger *slog.Logger
	emitter    Emitter
}

// NewLogger creates an audit logger. Both arguments are optional.
func NewLogger(textLogger *slog.Logger, emitter Emitter) *Logger {
	return &Logger{
		textLogger: textLogger,
		emitter:    emitter,
	}
}

// Log enriches the event with request metadata from ctx, logs it with
// log_type=audit and emits it. Emission failures are logged, never returned:
// auditing must not fail the business operation.
func (l *Logger) Log(ctx context.Context, event Event) {
	if l == nil {
		return
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.ActorID.IsNil() {
		event.ActorID = requestcontext.UserID(ctx)
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}

	l.logToText(ctx, event)
	l.emitToAudit(ctx, event)
}

func (l *Logger) logToText(ctx context.Context, event Event) {
	if l.textLogger == nil {
		return
	}
	args := []any{
		"event", string(event.Action),
		"log_type", "audit",
		"request_id", event.RequestID,
	}
	if !event.ActorID.IsNil() {
		args = append(args, "actor_id", event.ActorID.String())
	}
	for _, kv := range [][2]string{
		{"resource", event.Resource},
		{"subject", event.Subject},
		{"decision", event.Decision},
		{"reason", event.Reason},
		{"email", event.Email},
		{"device", event.Device},
	} {
		if kv[1] != "" {
			args = append(args, kv[0], kv[1])
		}
	}
	l.textLogger.InfoContext(ctx, string(event.Action), args...)
}

func (l *Logger) emitToAudit(ctx context.Context, event Event) {
	if l.emitter == nil {
		return
	}
	if err := l.emitter.Emit(ctx, event); err != nil && l.textLogger != nil {
		l.textLogger.ErrorContext(ctx, "failed to emit audit event",
			"error", err,
			"event", string(event.Action),
		)
	}
}
