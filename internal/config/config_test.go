package config

import (
	"testing"
	"time"
)

func TestSplitPaths(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", nil},
		{"single", "/media/public", []string{"/media/public"}},
		{"multiple with spaces", "/media/public, /media/assets", []string{"/media/public", "/media/assets"}},
		{"trailing slash trimmed", "/media/public/", []string{"/media/public"}},
		{"empty entries dropped", ",/media/public,,", []string{"/media/public"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitPaths(tt.raw)
			if len(got) != len(tt.want) {
				t.Fatalf("splitPaths(%q) = %v, want %v", tt.raw, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("splitPaths(%q)[%d] = %q, want %q", tt.raw, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestGetDuration(t *testing.T) {
	t.Setenv("TEST_SESSION_TTL", "48h")
	if got := getDuration("TEST_SESSION_TTL", time.Hour); got != 48*time.Hour {
		t.Fatalf("expected 48h, got %s", got)
	}

	t.Setenv("TEST_SESSION_TTL", "not-a-duration")
	if got := getDuration("TEST_SESSION_TTL", time.Hour); got != time.Hour {
		t.Fatalf("expected fallback 1h, got %s", got)
	}

	if got := getDuration("TEST_SESSION_TTL_UNSET", 2*time.Hour); got != 2*time.Hour {
		t.Fatalf("expected fallback 2h, got %s", got)
	}
}
