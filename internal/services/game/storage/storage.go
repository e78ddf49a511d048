package storage

import (
	"context"
	"time"
)

// AuditEvent is one operational audit record.
//
// Attributes are marshaled to AttributesJSON by the store when AttributesJSON
// is empty.
type AuditEvent struct {
	Timestamp      time.Time
	EventName      string
	Severity       string
	SessionID      string
	RequestID      string
	TraceID        string
	SpanID         string
	Attributes     map[string]any
	AttributesJSON []byte
}

// AuditEventStore persists audit events.
type AuditEventStore interface {
	AppendAuditEvent(ctx context.Context, evt AuditEvent) error
}

// AuditEventReader lists persisted audit events, newest last.
type AuditEventReader interface {
	ListAuditEvents(ctx context.Context, sessionID string, limit int) ([]AuditEvent, error)
}
