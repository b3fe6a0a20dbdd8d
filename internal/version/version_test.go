package version

import (
	"runtime/debug"
	"testing"
)

func TestResolveUsesBuildSettings(t *testing.T) {
	read := func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		}}, true
	}
	info := resolve("v1.0.0", "", "", read)
	if info.Commit != "0123456789abcdef" {
		t.Fatalf("unexpected commit: %q", info.Commit)
	}
	if info.BuildTime != "2026-01-02T03:04:05Z" {
		t.Fatalf("unexpected build time: %q", info.BuildTime)
	}
	if got := info.String(); got != "v1.0.0 (0123456)" {
		t.Fatalf("unexpected string: %q", got)
	}
}

func TestResolveKeepsLdflagsValues(t *testing.T) {
	called := false
	read := func() (*debug.BuildInfo, bool) {
		called = true
		return nil, false
	}
	info := resolve("", "abc", "yesterday", read)
	if called {
		t.Fatal("build info should not be read when commit is set")
	}
	if info.Version != "dev" || info.Commit != "abc" || info.BuildTime != "yesterday" {
		t.Fatalf("unexpected info: %+v", info)
	}
	if got := info.String(); got != "dev (abc)" {
		t.Fatalf("unexpected string: %q", got)
	}
	if info.GoVersion == "" {
		t.Fatal("expected go version")
	}
}

func TestStringWithoutCommit(t *testing.T) {
	info := resolve("v2", "", "", func() (*debug.BuildInfo, bool) { return nil, false })
	if got := info.String(); got != "v2" {
		t.Fatalf("unexpected string: %q", got)
	}
}
