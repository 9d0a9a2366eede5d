package version

import (
	"strings"
	"testing"
)

func setBuild(t *testing.T, version, commit, buildTime string) {
	t.Helper()
	origVersion, origCommit, origBuildTime := Version, GitCommit, BuildTime
	t.Cleanup(func() {
		Version, GitCommit, BuildTime = origVersion, origCommit, origBuildTime
	})
	Version, GitCommit, BuildTime = version, commit, buildTime
}

func TestGetWithLdflags(t *testing.T) {
	setBuild(t, "1.0.0", "abc1234def", "2024-01-15T10:30:00Z")

	info := Get()
	if info.Version != "1.0.0" {
		t.Errorf("expected '1.0.0', got %q", info.Version)
	}
	if info.GitCommit != "abc1234" {
		t.Errorf("expected commit shortened to 'abc1234', got %q", info.GitCommit)
	}
	if info.BuildDate.Year() != 2024 {
		t.Errorf("expected build year 2024, got %d", info.BuildDate.Year())
	}
}

func TestIsRelease(t *testing.T) {
	tests := []struct {
		info Info
		want bool
	}{
		{Info{Version: "dev"}, false},
		{Info{Version: "1.0.0"}, true},
		{Info{Version: "1.0.0-dirty"}, false},
		{Info{Version: "1.0.0", Dirty: true}, false},
	}
	for _, tc := range tests {
		if got := tc.info.IsRelease(); got != tc.want {
			t.Errorf("%+v: IsRelease() = %v, want %v", tc.info, got, tc.want)
		}
	}
}

func TestShort(t *testing.T) {
	setBuild(t, "1.0.0", "abc1234", "")
	if got := Short(); !strings.HasPrefix(got, "1.0.0-abc1234") {
		t.Errorf("expected '1.0.0-abc1234' prefix, got %q", got)
	}
}

func TestFull(t *testing.T) {
	setBuild(t, "2.1.0", "abc1234", "2024-01-15T10:30:00Z")
	got := Full()
	for _, want := range []string{"2.1.0-abc1234", "built 2024-01-15T10:30:00Z"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in %q", want, got)
		}
	}
}
