package rules_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/refsyncd/refsyncd/pkg/domain/model"
	"github.com/refsyncd/refsyncd/pkg/rules"
)

func TestRuleSet_Match_DefaultRules(t *testing.T) {
	rs := rules.Default()

	tests := []struct {
		name     string
		ref      model.Ref
		wantRule string
		wantOK   bool
	}{
		{
			name:     "main branch",
			ref:      model.Ref{Kind: model.KindBranch, Name: "main"},
			wantRule: "main",
			wantOK:   true,
		},
		{
			name:     "latest branch",
			ref:      model.Ref{Kind: model.KindBranch, Name: "latest"},
			wantRule: "latest",
			wantOK:   true,
		},
		{
			name:     "develop branch",
			ref:      model.Ref{Kind: model.KindBranch, Name: "develop"},
			wantRule: "develop",
			wantOK:   true,
		},
		{
			name:     "pre release branch",
			ref:      model.Ref{Kind: model.KindBranch, Name: "pre/2.9"},
			wantRule: "pre/*",
			wantOK:   true,
		},
		{
			name:     "demo test branch",
			ref:      model.Ref{Kind: model.KindBranch, Name: "demo/test/widgets"},
			wantRule: "demo/test/*",
			wantOK:   true,
		},
		{
			name:   "feature branch is ignored",
			ref:    model.Ref{Kind: model.KindBranch, Name: "feature/foo"},
			wantOK: false,
		},
		{
			name:   "demo branch without test segment is ignored",
			ref:    model.Ref{Kind: model.KindBranch, Name: "demo/other"},
			wantOK: false,
		},
		{
			name:     "version tag",
			ref:      model.Ref{Kind: model.KindTag, Name: "v2.9.0rc1"},
			wantRule: "v*",
			wantOK:   true,
		},
		{
			name:     "demo tag",
			ref:      model.Ref{Kind: model.KindTag, Name: "demo/widget"},
			wantRule: "demo/*",
			wantOK:   true,
		},
		{
			name:   "other tag is ignored",
			ref:    model.Ref{Kind: model.KindTag, Name: "nightly"},
			wantOK: false,
		},
		{
			name:   "tag named main does not match branch rules",
			ref:    model.Ref{Kind: model.KindTag, Name: "main"},
			wantOK: false,
		},
		{
			name:   "branch named v1 does not match tag rules",
			ref:    model.Ref{Kind: model.KindBranch, Name: "v1"},
			wantOK: false,
		},
		{
			name:   "unknown kind never matches",
			ref:    model.Ref{Kind: model.KindUnknown, Name: "refs/pull/1/head"},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, ok := rs.Match(tt.ref)
			gt.Value(t, ok).Equal(tt.wantOK)
			gt.Value(t, rule).Equal(tt.wantRule)
		})
	}
}

func TestRuleSet_Match_Wildcards(t *testing.T) {
	rs := &rules.RuleSet{
		Branches: []string{"release/*/hotfix", "wip-?"},
		Tags:     []string{"*"},
	}

	branch := func(name string) model.Ref { return model.Ref{Kind: model.KindBranch, Name: name} }

	_, ok := rs.Match(branch("release/2.9/hotfix"))
	gt.True(t, ok)
	_, ok = rs.Match(branch("release/hotfix"))
	gt.False(t, ok)
	_, ok = rs.Match(branch("wip-1"))
	gt.True(t, ok)
	_, ok = rs.Match(branch("wip-12"))
	gt.False(t, ok)

	_, ok = rs.Match(model.Ref{Kind: model.KindTag, Name: "anything/goes"})
	gt.True(t, ok)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid rules file", func(t *testing.T) {
		path := filepath.Join(dir, "rules.toml")
		content := "branches = [\"main\", \"stable/*\"]\ntags = [\"v*\"]\n"
		gt.NoError(t, os.WriteFile(path, []byte(content), 0644))

		rs, err := rules.Load(path)
		gt.NoError(t, err)
		gt.Value(t, rs.Branches).Equal([]string{"main", "stable/*"})
		gt.Value(t, rs.Tags).Equal([]string{"v*"})

		_, ok := rs.Match(model.Ref{Kind: model.KindBranch, Name: "stable/1.0"})
		gt.True(t, ok)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := rules.Load(filepath.Join(dir, "missing.toml"))
		gt.Error(t, err)
	})

	t.Run("empty rules file", func(t *testing.T) {
		path := filepath.Join(dir, "empty.toml")
		gt.NoError(t, os.WriteFile(path, []byte(""), 0644))

		_, err := rules.Load(path)
		gt.Error(t, err)
	})

	t.Run("malformed toml", func(t *testing.T) {
		path := filepath.Join(dir, "bad.toml")
		gt.NoError(t, os.WriteFile(path, []byte("branches = ["), 0644))

		_, err := rules.Load(path)
		gt.Error(t, err)
	})
}
