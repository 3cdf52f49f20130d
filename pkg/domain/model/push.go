package model

import "time"

// ZeroHash is the all-zero object ID that push events carry for created or
// deleted refs.
const ZeroHash = "0000000000000000000000000000000000000000"

// PushEvent represents a push event received from GitHub.
type PushEvent struct {
	ID         string    // Retrieved from X-GitHub-Delivery header
	Ref        string    // Fully qualified ref path (refs/heads/..., refs/tags/...)
	Before     string    // Commit hash before the push
	After      string    // Commit hash after the push
	Repository string    // Repository full name
	Sender     string    // Sender username
	Created    bool      // Ref was created by this push
	Deleted    bool      // Ref was deleted by this push
	Forced     bool      // Push was forced
	ReceivedAt time.Time // Time when the event was received
}

// IsDelete reports whether the push removed the ref. Deleted refs have
// nothing to fetch and are never mirrored.
func (e *PushEvent) IsDelete() bool {
	return e.Deleted || e.After == ZeroHash
}
