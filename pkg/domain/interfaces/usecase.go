package interfaces

import (
	"context"

	"github.com/refsyncd/refsyncd/pkg/domain/model"
	"github.com/refsyncd/refsyncd/pkg/domain/types"
)

// MirrorUseCase defines the operations for ref mirroring.
type MirrorUseCase interface {
	// ProcessPush handles a push webhook event: classify the ref, match it
	// against the ruleset, and mirror it when it matches.
	ProcessPush(ctx context.Context, event *model.PushEvent) (*model.SyncRecord, error)

	// SyncRef mirrors a single ref regardless of trigger origin.
	SyncRef(ctx context.Context, ref model.Ref, trigger types.Trigger) (*model.SyncRecord, error)

	// SyncAll lists the source repository's refs and mirrors every one that
	// matches the ruleset.
	SyncAll(ctx context.Context) ([]*model.SyncRecord, error)
}
