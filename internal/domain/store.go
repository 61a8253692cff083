package domain

import (
	"context"
	"time"
)

// ListOpts provides pagination and time filtering for list queries.
type ListOpts struct {
	Limit  int
	Offset int
	Since  *time.Time
	Until  *time.Time
}

// ResultStore persists the append-only result log. Records are only ever
// appended by a finalized sale or an unsold marking, and only Clear (driven
// by an auction reset) removes them.
type ResultStore interface {
	Append(ctx context.Context, rec ResultRecord) error
	Clear(ctx context.Context) error
	List(ctx context.Context, opts ListOpts) ([]ResultRecord, error)
	Count(ctx context.Context) (int64, error)
}

// AuditEntry is a single audit log row.
type AuditEntry struct {
	ID        int64
	Event     string
	Detail    map[string]any
	CreatedAt time.Time
}

// AuditStore persists an append-only audit log of every accepted command.
type AuditStore interface {
	Log(ctx context.Context, event string, detail map[string]any) error
	List(ctx context.Context, opts ListOpts) ([]AuditEntry, error)
}
