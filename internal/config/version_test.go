package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetFullVersion(t *testing.T) {
	fv := GetFullVersion()
	expected := "dev (build: unknown, commit: unknown)"
	if fv != expected {
		t.Errorf("expected full version %q, got %q", expected, fv)
	}
}

func TestLoadVersionFile(t *testing.T) {
	defer func() {
		Version, Build, GitCommit = "dev", "unknown", "unknown"
	}()

	dir := t.TempDir()
	path := filepath.Join(dir, ".version")
	content := "# build info\nversion: 1.2.3\nbuild: 2026-03-01\ncommit: abc1234\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	loadVersionFile(path)

	if GetVersion() != "1.2.3" {
		t.Errorf("expected version 1.2.3, got %s", GetVersion())
	}
	if GetBuild() != "2026-03-01" {
		t.Errorf("expected build 2026-03-01, got %s", GetBuild())
	}
	if GetGitCommit() != "abc1234" {
		t.Errorf("expected commit abc1234, got %s", GetGitCommit())
	}
}

func TestLoadVersionFile_LdflagsWin(t *testing.T) {
	defer func() {
		Version = "dev"
	}()
	Version = "9.9.9"

	dir := t.TempDir()
	path := filepath.Join(dir, ".version")
	if err := os.WriteFile(path, []byte("version: 1.0.0\n"), 0644); err != nil {
		t.Fatal(err)
	}

	loadVersionFile(path)

	if GetVersion() != "9.9.9" {
		t.Errorf("expected ldflags version to win, got %s", GetVersion())
	}
}
