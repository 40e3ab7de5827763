package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeBase(t *testing.T) {
	cases := map[string]string{
		"127.0.0.1:7621":         "http://127.0.0.1:7621",
		"http://127.0.0.1:7621/": "http://127.0.0.1:7621",
		"https://pods.example":   "https://pods.example",
	}
	for in, want := range cases {
		if got := normalizeBase(in); got != want {
			t.Fatalf("normalizeBase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolveBasePrefersFlag(t *testing.T) {
	opts := &cliOptions{apiBase: "10.0.0.5:9000"}
	base, err := opts.resolveBase()
	if err != nil {
		t.Fatalf("resolveBase: %v", err)
	}
	if base != "http://10.0.0.5:9000" {
		t.Fatalf("base = %q", base)
	}
}

func TestResolveBaseFallsBackToConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[paths]\napi_bind = \"127.0.0.1:9000\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	opts := &cliOptions{configPath: path}
	base, err := opts.resolveBase()
	if err != nil {
		t.Fatalf("resolveBase: %v", err)
	}
	if base != "http://127.0.0.1:9000" {
		t.Fatalf("base = %q", base)
	}
}
