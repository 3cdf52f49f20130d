package model

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// RefKind classifies a git reference.
type RefKind string

const (
	KindBranch  RefKind = "branch"
	KindTag     RefKind = "tag"
	KindUnknown RefKind = "unknown"
)

const (
	branchPrefix = "refs/heads/"
	tagPrefix    = "refs/tags/"
)

// Ref is a classified git reference with its short name.
type Ref struct {
	Kind RefKind
	Name string
}

// ParseRef classifies a fully qualified reference path (e.g. "refs/heads/main").
// A short name without a refs/ prefix is treated as a branch name.
func ParseRef(full string) (Ref, error) {
	switch {
	case strings.HasPrefix(full, branchPrefix):
		name := strings.TrimPrefix(full, branchPrefix)
		if name == "" {
			return Ref{Kind: KindUnknown}, goerr.New("empty branch name", goerr.V("ref", full))
		}
		return Ref{Kind: KindBranch, Name: name}, nil

	case strings.HasPrefix(full, tagPrefix):
		name := strings.TrimPrefix(full, tagPrefix)
		if name == "" {
			return Ref{Kind: KindUnknown}, goerr.New("empty tag name", goerr.V("ref", full))
		}
		return Ref{Kind: KindTag, Name: name}, nil

	case strings.HasPrefix(full, "refs/"):
		return Ref{Kind: KindUnknown, Name: full}, nil

	case full == "":
		return Ref{Kind: KindUnknown}, goerr.New("empty reference")

	default:
		return Ref{Kind: KindBranch, Name: full}, nil
	}
}

// FullName returns the fully qualified reference path.
func (r Ref) FullName() string {
	switch r.Kind {
	case KindBranch:
		return branchPrefix + r.Name
	case KindTag:
		return tagPrefix + r.Name
	default:
		return r.Name
	}
}

// Refspec returns the forced refspec that copies this ref verbatim.
func (r Ref) Refspec() string {
	full := r.FullName()
	return "+" + full + ":" + full
}

func (r Ref) String() string {
	return string(r.Kind) + " " + r.Name
}
