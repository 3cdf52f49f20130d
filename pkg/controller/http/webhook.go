package http

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/refsyncd/refsyncd/pkg/domain/interfaces"
	"github.com/refsyncd/refsyncd/pkg/domain/model"
	"github.com/refsyncd/refsyncd/pkg/utils/async"
)

// WebhookHandler handles GitHub push webhooks
type WebhookHandler struct {
	secret     string
	mirrorUC   interfaces.MirrorUseCase
	dispatcher *async.Dispatcher
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(secret string, mirrorUC interfaces.MirrorUseCase, dispatcher *async.Dispatcher) *WebhookHandler {
	if dispatcher == nil {
		dispatcher = async.New()
	}
	return &WebhookHandler{
		secret:     secret,
		mirrorUC:   mirrorUC,
		dispatcher: dispatcher,
	}
}

// Handle processes webhook requests. Push events are acknowledged
// immediately and mirrored asynchronously; everything else is ignored.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := ctxlog.From(ctx)

	// Read payload
	body, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Error("Failed to read request body", "error", err)
		writeError(w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	// Verify signature
	signature := r.Header.Get("X-Hub-Signature-256")
	if !h.verifySignature(body, signature) {
		logger.Warn("Invalid webhook signature")
		writeError(w, goerr.New("invalid signature"), http.StatusUnauthorized)
		return
	}

	// Parse event using GitHub SDK
	eventType := r.Header.Get("X-GitHub-Event")
	payload, err := github.ParseWebHook(eventType, body)
	if err != nil {
		logger.Error("Failed to parse webhook payload", "error", err)
		writeError(w, goerr.Wrap(err, "invalid JSON payload"), http.StatusBadRequest)
		return
	}

	pushEvent, ok := payload.(*github.PushEvent)
	if !ok {
		logger.Info("Ignoring unsupported event type", "event_type", eventType)
		writeStatus(w, "ignored")
		return
	}

	event := extractPushEvent(r.Header.Get("X-GitHub-Delivery"), pushEvent)
	if event.Ref == "" {
		logger.Warn("Push event has no ref")
		writeError(w, goerr.New("push event has no ref"), http.StatusBadRequest)
		return
	}

	// Mirroring talks to two remotes; do it off the request goroutine and
	// acknowledge the delivery right away.
	h.dispatcher.Dispatch(ctx, func(ctx context.Context) error {
		_, err := h.mirrorUC.ProcessPush(ctx, event)
		return err
	})

	writeStatus(w, "accepted")
}

// extractPushEvent maps the GitHub SDK payload onto the domain model.
func extractPushEvent(deliveryID string, e *github.PushEvent) *model.PushEvent {
	return &model.PushEvent{
		ID:         deliveryID,
		Ref:        e.GetRef(),
		Before:     e.GetBefore(),
		After:      e.GetAfter(),
		Repository: e.GetRepo().GetFullName(),
		Sender:     e.GetSender().GetLogin(),
		Created:    e.GetCreated(),
		Deleted:    e.GetDeleted(),
		Forced:     e.GetForced(),
		ReceivedAt: time.Now(),
	}
}

// verifySignature verifies the webhook signature
func (h *WebhookHandler) verifySignature(payload []byte, signature string) bool {
	if signature == "" {
		return false
	}

	// Remove "sha256=" prefix if present
	signature = strings.TrimPrefix(signature, "sha256=")

	// Calculate HMAC-SHA256
	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(payload)
	expectedMAC := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(signature), []byte(expectedMAC))
}

// writeStatus writes a success response
func writeStatus(w http.ResponseWriter, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status": status,
	}); err != nil {
		ctxlog.From(context.Background()).Error("Failed to encode success response", "error", err)
	}
}
