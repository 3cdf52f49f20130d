package git

import "errors"

// Sentinel errors for mirror operations. All of them can be checked with
// errors.Is() even after wrapping.

// ErrRefNotFound is returned when the requested ref does not exist on the
// source repository.
var ErrRefNotFound = errors.New("ref not found on source repository")

// ErrAuthFailed is returned when the source or mirror remote rejects the
// provided credentials.
var ErrAuthFailed = errors.New("authentication failed")

// ErrInvalidRef is returned when a ref cannot be mirrored because it is
// neither a branch nor a tag.
var ErrInvalidRef = errors.New("invalid reference")
