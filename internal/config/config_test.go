package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg != Default() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadOverridesOnlySetFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ggtool.yaml")
	if err := os.WriteFile(path, []byte("jobs: 4\nquiet: true\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Jobs != 4 || !cfg.Quiet {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.CatalogPath != Default().CatalogPath {
		t.Fatalf("expected default catalog path to survive, got %q", cfg.CatalogPath)
	}
}
