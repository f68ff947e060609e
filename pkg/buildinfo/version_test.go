package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func stubBuildInfo(t *testing.T, bi *debug.BuildInfo) {
	t.Helper()
	old := readBuildInfo
	readBuildInfo = func() (*debug.BuildInfo, bool) { return bi, bi != nil }
	t.Cleanup(func() { readBuildInfo = old })
}

func stubVars(t *testing.T, version, commit, date string) {
	t.Helper()
	ov, oc, od := Version, Commit, Date
	Version, Commit, Date = version, commit, date
	t.Cleanup(func() { Version, Commit, Date = ov, oc, od })
}

func TestGet(t *testing.T) {
	installed := &debug.BuildInfo{
		GoVersion: "go1.25.0",
		Main:      debug.Module{Version: "v0.4.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2025-01-02T03:04:05Z"},
		},
	}

	tests := []struct {
		name string
		vars [3]string
		bi   *debug.BuildInfo
		want Info
	}{
		{
			name: "ldflags win",
			vars: [3]string{"v0.3.0", "deadbeef", "2024-06-01"},
			bi:   installed,
			want: Info{"v0.3.0", "deadbeef", "2024-06-01", "go1.25.0"},
		},
		{
			name: "go install stamps",
			vars: [3]string{"dev", "none", "unknown"},
			bi:   installed,
			want: Info{"v0.4.1", "abc123", "2025-01-02T03:04:05Z", "go1.25.0"},
		},
		{
			name: "devel module version ignored",
			vars: [3]string{"dev", "none", "unknown"},
			bi:   &debug.BuildInfo{GoVersion: "go1.25.0", Main: debug.Module{Version: "(devel)"}},
			want: Info{"dev", "none", "unknown", "go1.25.0"},
		},
		{
			name: "no build info",
			vars: [3]string{"dev", "none", "unknown"},
			want: Info{"dev", "none", "unknown", "unknown"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubVars(t, tt.vars[0], tt.vars[1], tt.vars[2])
			stubBuildInfo(t, tt.bi)
			if got := Get(); got != tt.want {
				t.Errorf("Get() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestTemplate(t *testing.T) {
	stubVars(t, "v0.3.0", "deadbeef", "2024-06-01")
	stubBuildInfo(t, nil)

	got := Template()
	if !strings.HasPrefix(got, "{{.Name}} version v0.3.0\n") {
		t.Errorf("Template() = %q", got)
	}
	if s := Get().String(); !strings.Contains(s, "commit: deadbeef") {
		t.Errorf("String() = %q", s)
	}
}
