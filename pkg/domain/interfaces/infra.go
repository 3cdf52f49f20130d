package interfaces

import (
	"context"

	"github.com/refsyncd/refsyncd/pkg/domain/model"
)

// RefMirror copies refs from the source repository to the mirror repository.
type RefMirror interface {
	// MirrorRef fetches the ref from the source and force-pushes it to the
	// mirror. Returns the source commit hash that was mirrored.
	MirrorRef(ctx context.Context, ref model.Ref) (string, error)

	// ListRefs lists branch and tag refs advertised by the source repository.
	ListRefs(ctx context.Context) ([]model.Ref, error)
}

// Journal persists the outcome of mirror runs.
type Journal interface {
	// Append stores a finished sync record.
	Append(ctx context.Context, record *model.SyncRecord) error

	// List returns the most recent records, newest first. If failedOnly is
	// set, only failed runs are returned. limit <= 0 means no limit.
	List(ctx context.Context, limit int, failedOnly bool) ([]*model.SyncRecord, error)

	// Close releases the underlying store.
	Close() error
}
