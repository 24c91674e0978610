package config

import (
	"path/filepath"
	"testing"
)

func TestLanguagesMatch(t *testing.T) {
	cfg := DefaultLanguages()

	if got := cfg.Match("bash"); got == nil || got.Grammar != "bash" {
		t.Fatalf("Match bash = %#v, want bash", got)
	}
	if got := cfg.Match("SH"); got == nil || got.Name != "bash" {
		t.Fatalf("Match SH = %#v, want bash", got)
	}
	if got := cfg.Match("py"); got == nil || got.WordChars != "._" {
		t.Fatalf("Match py = %#v, want python with ._ word chars", got)
	}
	if got := cfg.Match("cobol"); got != nil {
		t.Fatalf("Match cobol = %#v, want nil", got)
	}
	if got := cfg.Match(""); got != nil {
		t.Fatalf("Match empty = %#v, want nil", got)
	}
}

func TestLoadLanguages(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("QLINE_CONFIG_HOME", dir)

	writeFile(t, filepath.Join(dir, "languages.toml"), `
[[language]]
name = "python"
grammar = "python"
word-chars = "_"

[[language]]
name = "zsh"
grammar = "bash"
aliases = ["z"]
`)

	cfg, err := LoadLanguages()
	if err != nil {
		t.Fatalf("LoadLanguages error: %v", err)
	}
	want := len(DefaultLanguages().Languages) + 1
	if len(cfg.Languages) != want {
		t.Fatalf("Languages len = %d, want %d", len(cfg.Languages), want)
	}
	if got := cfg.Match("python"); got == nil || got.WordChars != "_" {
		t.Fatalf("python = %#v, want overridden word chars", got)
	}
	if got := cfg.Match("z"); got == nil || got.Grammar != "bash" {
		t.Fatalf("z = %#v, want zsh with bash grammar", got)
	}
}

func TestLoadLanguagesMissing(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("QLINE_CONFIG_HOME", dir)

	cfg, err := LoadLanguages()
	if err != nil {
		t.Fatalf("LoadLanguages error: %v", err)
	}
	if len(cfg.Languages) != len(DefaultLanguages().Languages) {
		t.Fatalf("Languages len = %d, want built-ins only", len(cfg.Languages))
	}
}
