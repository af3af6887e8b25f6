package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFixture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.txt")
	if err := os.WriteFile(path, []byte("fixture content"), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	if got := string(LoadFixture(t, path)); got != "fixture content" {
		t.Errorf("expected fixture content, got %q", got)
	}
}

func TestLoadFixtureYAML(t *testing.T) {
	path := WriteConfig(t, "caches:\n  default:\n    engine: memory\n    duration: 30m\n")

	var doc struct {
		Caches map[string]struct {
			Engine   string `yaml:"engine"`
			Duration string `yaml:"duration"`
		} `yaml:"caches"`
	}
	LoadFixtureYAML(t, path, &doc)

	def, ok := doc.Caches["default"]
	if !ok {
		t.Fatalf("expected default cache, got %+v", doc)
	}
	if def.Engine != "memory" || def.Duration != "30m" {
		t.Errorf("unexpected cache %+v", def)
	}
}

func TestWriteConfig(t *testing.T) {
	path := WriteConfig(t, "disabled: true\n")

	if filepath.Base(path) != "cacher.yaml" {
		t.Errorf("unexpected file name %s", path)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("expected 0600, got %v", info.Mode().Perm())
	}
}

func TestFixturePath(t *testing.T) {
	if got := FixturePath("cacher.yaml"); got != filepath.Join("testdata", "cacher.yaml") {
		t.Errorf("unexpected path %s", got)
	}
}
