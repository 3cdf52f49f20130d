// Package rules decides which refs of the source repository are mirrored.
// A RuleSet holds glob patterns for branches and tags; refs that match no
// pattern are left alone.
package rules

import (
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"

	"github.com/refsyncd/refsyncd/pkg/domain/model"
)

// RuleSet holds the mirroring patterns for branch and tag names.
// Patterns support "*" and "?" wildcards; "*" matches across "/".
type RuleSet struct {
	Branches []string `toml:"branches"`
	Tags     []string `toml:"tags"`
}

// Default returns the built-in ruleset used when no rules file is given.
func Default() *RuleSet {
	return &RuleSet{
		Branches: []string{"main", "latest", "develop", "pre/*", "demo/test/*"},
		Tags:     []string{"v*", "demo/*"},
	}
}

// Load reads a RuleSet from a TOML file.
func Load(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read rules file", goerr.V("path", path))
	}

	var rs RuleSet
	if err := toml.Unmarshal(data, &rs); err != nil {
		return nil, goerr.Wrap(err, "failed to parse rules file", goerr.V("path", path))
	}

	if len(rs.Branches) == 0 && len(rs.Tags) == 0 {
		return nil, goerr.New("rules file defines no patterns", goerr.V("path", path))
	}

	return &rs, nil
}

// Match returns the pattern matching the ref, if any. Branch refs are only
// matched against branch patterns and tag refs against tag patterns; unknown
// refs never match.
func (rs *RuleSet) Match(ref model.Ref) (string, bool) {
	switch ref.Kind {
	case model.KindBranch:
		return matchAny(ref.Name, rs.Branches)
	case model.KindTag:
		return matchAny(ref.Name, rs.Tags)
	default:
		return "", false
	}
}

func matchAny(name string, patterns []string) (string, bool) {
	for _, p := range patterns {
		if matchPattern(name, p) {
			return p, true
		}
	}
	return "", false
}

// matchPattern checks a name against a pattern with "*" and "?" wildcards.
func matchPattern(name, pattern string) bool {
	if pattern == "" {
		return false
	}

	if strings.Contains(pattern, "*") {
		return matchStarPattern(name, pattern)
	}

	if strings.Contains(pattern, "?") {
		return matchQuestionPattern(name, pattern)
	}

	return name == pattern
}

// matchStarPattern matches names against patterns containing "*" wildcards.
// "*" matches any run of characters, including "/".
func matchStarPattern(name, pattern string) bool {
	parts := strings.Split(pattern, "*")

	// Leading literal must anchor at the start.
	if parts[0] != "" {
		if !strings.HasPrefix(name, parts[0]) {
			return false
		}
		name = name[len(parts[0]):]
	}

	// Trailing literal must anchor at the end.
	last := parts[len(parts)-1]
	if last != "" {
		if !strings.HasSuffix(name, last) {
			return false
		}
		name = name[:len(name)-len(last)]
	}

	// Middle literals must appear in order.
	for _, part := range parts[1 : len(parts)-1] {
		if part == "" {
			continue
		}
		idx := strings.Index(name, part)
		if idx == -1 {
			return false
		}
		name = name[idx+len(part):]
	}

	return true
}

// matchQuestionPattern matches names against patterns with "?" wildcards,
// where each "?" stands for exactly one character.
func matchQuestionPattern(name, pattern string) bool {
	if len(name) != len(pattern) {
		return false
	}

	for i := 0; i < len(pattern); i++ {
		if pattern[i] == '?' {
			continue
		}
		if pattern[i] != name[i] {
			return false
		}
	}

	return true
}
