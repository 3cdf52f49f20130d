package usecase

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/refsyncd/refsyncd/pkg/domain/interfaces"
	"github.com/refsyncd/refsyncd/pkg/domain/model"
	"github.com/refsyncd/refsyncd/pkg/domain/types"
	"github.com/refsyncd/refsyncd/pkg/infra/git"
	"github.com/refsyncd/refsyncd/pkg/rules"
)

// RetryConfig configures retry behavior for transient mirror failures.
type RetryConfig struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	JitterFraction float64 // 0.0 to 1.0
}

// DefaultRetryConfig returns sensible retry defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     30 * time.Second,
		JitterFraction: 0.25,
	}
}

type mirrorUseCase struct {
	mirror  interfaces.RefMirror
	journal interfaces.Journal
	rules   *rules.RuleSet
	retry   RetryConfig
}

// Option configures the mirror use case.
type Option func(*mirrorUseCase)

// WithRetry overrides the default retry configuration.
func WithRetry(cfg RetryConfig) Option {
	return func(uc *mirrorUseCase) {
		if cfg.MaxAttempts > 0 {
			uc.retry = cfg
		}
	}
}

// NewMirror creates a new instance of MirrorUseCase. A nil ruleset falls back
// to the built-in default rules.
func NewMirror(mirror interfaces.RefMirror, journal interfaces.Journal, rs *rules.RuleSet, opts ...Option) interfaces.MirrorUseCase {
	if rs == nil {
		rs = rules.Default()
	}

	uc := &mirrorUseCase{
		mirror:  mirror,
		journal: journal,
		rules:   rs,
		retry:   DefaultRetryConfig(),
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// ProcessPush handles a push webhook event. The ref is classified, checked
// against the ruleset, and mirrored when it matches. Deletions and
// non-matching refs are journaled as skips and leave the mirror untouched.
func (uc *mirrorUseCase) ProcessPush(ctx context.Context, event *model.PushEvent) (*model.SyncRecord, error) {
	logger := ctxlog.From(ctx)

	ref, err := model.ParseRef(event.Ref)
	if err != nil {
		return nil, goerr.Wrap(err, "push event carries an unparsable ref", goerr.V("ref", event.Ref))
	}

	logger.Info("Processing push event",
		"id", event.ID,
		"ref", event.Ref,
		"repository", event.Repository,
		"sender", event.Sender,
		"deleted", event.IsDelete(),
	)

	if event.IsDelete() {
		return uc.recordSkip(ctx, ref, types.TriggerWebhook, "ref was deleted on source")
	}

	if ref.Kind == model.KindUnknown {
		return uc.recordSkip(ctx, ref, types.TriggerWebhook, "ref is neither a branch nor a tag")
	}

	rule, ok := uc.rules.Match(ref)
	if !ok {
		return uc.recordSkip(ctx, ref, types.TriggerWebhook, "no matching rule")
	}

	return uc.mirrorAndRecord(ctx, ref, rule, types.TriggerWebhook)
}

// SyncRef mirrors a single ref. Manual dispatch is not filtered by the
// ruleset: naming a ref is an explicit request to mirror it.
func (uc *mirrorUseCase) SyncRef(ctx context.Context, ref model.Ref, trigger types.Trigger) (*model.SyncRecord, error) {
	rule, _ := uc.rules.Match(ref)
	return uc.mirrorAndRecord(ctx, ref, rule, trigger)
}

// SyncAll mirrors every source ref that matches the ruleset.
func (uc *mirrorUseCase) SyncAll(ctx context.Context) ([]*model.SyncRecord, error) {
	logger := ctxlog.From(ctx)

	refs, err := uc.mirror.ListRefs(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list source refs")
	}

	var records []*model.SyncRecord
	var lastErr error

	for _, ref := range refs {
		rule, ok := uc.rules.Match(ref)
		if !ok {
			logger.Debug("Skipping ref outside ruleset", "ref", ref.Name, "kind", ref.Kind)
			continue
		}

		record, err := uc.mirrorAndRecord(ctx, ref, rule, types.TriggerManual)
		if err != nil {
			if ctx.Err() != nil {
				return records, ctx.Err()
			}
			lastErr = err
		}
		if record != nil {
			records = append(records, record)
		}
	}

	return records, lastErr
}

func (uc *mirrorUseCase) mirrorAndRecord(ctx context.Context, ref model.Ref, rule string, trigger types.Trigger) (*model.SyncRecord, error) {
	logger := ctxlog.From(ctx)

	record := &model.SyncRecord{
		ID:        uuid.NewString(),
		Ref:       ref.Name,
		Kind:      ref.Kind,
		Trigger:   trigger,
		Rule:      rule,
		StartedAt: time.Now(),
	}

	hash, attempts, err := uc.mirrorWithRetry(ctx, ref)
	record.Attempts = attempts
	record.FinishedAt = time.Now()

	if err != nil {
		record.Status = model.StatusFailed
		record.Error = err.Error()
		logger.Error("Mirror run failed",
			"ref", ref.Name,
			"kind", ref.Kind,
			"attempts", attempts,
			"error", err,
		)
	} else {
		record.Status = model.StatusMirrored
		record.Hash = hash
		logger.Info("Mirrored ref",
			"ref", ref.Name,
			"kind", ref.Kind,
			"hash", hash,
			"attempts", attempts,
			"duration_ms", record.Duration().Milliseconds(),
		)
	}

	if jerr := uc.journal.Append(ctx, record); jerr != nil {
		logger.Warn("Failed to journal mirror run", "error", jerr, "ref", ref.Name)
	}

	return record, err
}

func (uc *mirrorUseCase) recordSkip(ctx context.Context, ref model.Ref, trigger types.Trigger, reason string) (*model.SyncRecord, error) {
	logger := ctxlog.From(ctx)

	now := time.Now()
	record := &model.SyncRecord{
		ID:         uuid.NewString(),
		Ref:        ref.Name,
		Kind:       ref.Kind,
		Trigger:    trigger,
		Status:     model.StatusSkipped,
		Reason:     reason,
		StartedAt:  now,
		FinishedAt: now,
	}

	logger.Info("Skipping ref", "ref", ref.Name, "kind", ref.Kind, "reason", reason)

	if err := uc.journal.Append(ctx, record); err != nil {
		logger.Warn("Failed to journal skip", "error", err, "ref", ref.Name)
	}

	return record, nil
}

// mirrorWithRetry runs the mirror operation, retrying transient failures
// with exponential backoff and jitter.
func (uc *mirrorUseCase) mirrorWithRetry(ctx context.Context, ref model.Ref) (string, int, error) {
	var lastErr error

	for attempt := 0; attempt < uc.retry.MaxAttempts; attempt++ {
		hash, err := uc.mirror.MirrorRef(ctx, ref)
		if err == nil {
			return hash, attempt + 1, nil
		}
		lastErr = err

		if !isTransient(err) {
			return "", attempt + 1, err
		}

		if attempt < uc.retry.MaxAttempts-1 {
			if err := sleep(ctx, uc.backoff(attempt)); err != nil {
				return "", attempt + 1, goerr.Wrap(lastErr, "retry cancelled")
			}
		}
	}

	return "", uc.retry.MaxAttempts, goerr.Wrap(lastErr, "mirror failed", goerr.V("retries", uc.retry.MaxAttempts-1))
}

// isTransient returns true for errors worth retrying. Credential failures,
// unknown refs and cancelled contexts never resolve on their own.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, git.ErrAuthFailed) || errors.Is(err, git.ErrRefNotFound) || errors.Is(err, git.ErrInvalidRef) {
		return false
	}
	return true
}

// backoff computes the delay for the given attempt with jitter.
func (uc *mirrorUseCase) backoff(attempt int) time.Duration {
	base := float64(uc.retry.InitialBackoff) * math.Pow(2, float64(attempt))
	if base > float64(uc.retry.MaxBackoff) {
		base = float64(uc.retry.MaxBackoff)
	}
	jitter := base * uc.retry.JitterFraction * (rand.Float64()*2 - 1)
	d := time.Duration(base + jitter)
	if d < 0 {
		d = 0
	}
	return d
}

// sleep waits for the given duration or until the context is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
