package audit

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/whispering.depths/internal/platform/requestctx"
	"github.com/louisbranch/whispering.depths/internal/services/game/storage"
)

// Severity describes the audit severity level.
type Severity string

const (
	SeverityInfo  Severity = "INFO"
	SeverityWarn  Severity = "WARN"
	SeverityError Severity = "ERROR"
)

// Emitter records operational audit events.
type Emitter struct {
	store storage.AuditEventStore
	clock func() time.Time
}

// NewEmitter creates a new audit event emitter. A nil store disables auditing.
func NewEmitter(store storage.AuditEventStore) *Emitter {
	return &Emitter{store: store, clock: time.Now}
}

// Emit records an audit event. It is a no-op when the store is nil.
//
// Request and trace identifiers missing from evt are taken from ctx.
func (e *Emitter) Emit(ctx context.Context, evt storage.AuditEvent) error {
	if e == nil || e.store == nil {
		return nil
	}
	if evt.Timestamp.IsZero() {
		if e.clock == nil {
			evt.Timestamp = time.Now().UTC()
		} else {
			evt.Timestamp = e.clock().UTC()
		}
	}
	if evt.Severity == "" {
		evt.Severity = string(SeverityInfo)
	}
	if evt.RequestID == "" {
		evt.RequestID = requestctx.RequestIDFromContext(ctx)
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		if evt.TraceID == "" {
			evt.TraceID = sc.TraceID().String()
		}
		if evt.SpanID == "" {
			evt.SpanID = sc.SpanID().String()
		}
	}
	return e.store.AppendAuditEvent(ctx, evt)
}

// Record emits an INFO event for a session.
func (e *Emitter) Record(ctx context.Context, name, sessionID string, attrs map[string]any) error {
	return e.Emit(ctx, storage.AuditEvent{
		EventName:  name,
		Severity:   string(SeverityInfo),
		SessionID:  sessionID,
		Attributes: attrs,
	})
}

// Enabled reports whether events are persisted.
func (e *Emitter) Enabled() bool {
	return e != nil && e.store != nil
}
