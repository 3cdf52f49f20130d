package model_test

import (
	"testing"

	"github.com/refsyncd/refsyncd/pkg/domain/model"
)

func TestParseRef(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantKind model.RefKind
		wantName string
		wantErr  bool
	}{
		{
			name:     "branch ref",
			input:    "refs/heads/main",
			wantKind: model.KindBranch,
			wantName: "main",
		},
		{
			name:     "nested branch ref",
			input:    "refs/heads/pre/2.9",
			wantKind: model.KindBranch,
			wantName: "pre/2.9",
		},
		{
			name:     "tag ref",
			input:    "refs/tags/v2.9.0",
			wantKind: model.KindTag,
			wantName: "v2.9.0",
		},
		{
			name:     "nested tag ref",
			input:    "refs/tags/demo/widget",
			wantKind: model.KindTag,
			wantName: "demo/widget",
		},
		{
			name:     "short name defaults to branch",
			input:    "develop",
			wantKind: model.KindBranch,
			wantName: "develop",
		},
		{
			name:     "other ref namespace",
			input:    "refs/pull/42/head",
			wantKind: model.KindUnknown,
			wantName: "refs/pull/42/head",
		},
		{
			name:    "empty ref",
			input:   "",
			wantErr: true,
		},
		{
			name:    "empty branch name",
			input:   "refs/heads/",
			wantErr: true,
		},
		{
			name:    "empty tag name",
			input:   "refs/tags/",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := model.ParseRef(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseRef(%q) expected error, got %v", tt.input, ref)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRef(%q) unexpected error: %v", tt.input, err)
			}
			if ref.Kind != tt.wantKind {
				t.Errorf("Kind = %v, want %v", ref.Kind, tt.wantKind)
			}
			if ref.Name != tt.wantName {
				t.Errorf("Name = %v, want %v", ref.Name, tt.wantName)
			}
		})
	}
}

func TestRef_Refspec(t *testing.T) {
	tests := []struct {
		name string
		ref  model.Ref
		want string
	}{
		{
			name: "branch refspec",
			ref:  model.Ref{Kind: model.KindBranch, Name: "main"},
			want: "+refs/heads/main:refs/heads/main",
		},
		{
			name: "tag refspec",
			ref:  model.Ref{Kind: model.KindTag, Name: "v1.0.0"},
			want: "+refs/tags/v1.0.0:refs/tags/v1.0.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ref.Refspec(); got != tt.want {
				t.Errorf("Refspec() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPushEvent_IsDelete(t *testing.T) {
	tests := []struct {
		name     string
		event    *model.PushEvent
		expected bool
	}{
		{
			name: "normal push",
			event: &model.PushEvent{
				Ref:   "refs/heads/main",
				After: "a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2",
			},
			expected: false,
		},
		{
			name: "deleted flag set",
			event: &model.PushEvent{
				Ref:     "refs/heads/old",
				Deleted: true,
				After:   "a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2",
			},
			expected: true,
		},
		{
			name: "zero after hash",
			event: &model.PushEvent{
				Ref:   "refs/heads/old",
				After: model.ZeroHash,
			},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.IsDelete(); got != tt.expected {
				t.Errorf("IsDelete() = %v, want %v", got, tt.expected)
			}
		})
	}
}
