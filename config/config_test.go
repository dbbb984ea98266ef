package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lixenwraith/tileworld/parameter"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tileworld.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.World.Cols != parameter.DefaultCols || cfg.World.ElevationStep != parameter.ElevationStep {
		t.Errorf("Unexpected world defaults %+v", cfg.World)
	}
	if cfg.Pathfinding.Classes["open"] != parameter.PathCostOpen {
		t.Errorf("Expected open cost default, got %v", cfg.Pathfinding.Classes)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected defaults to validate, got %v", err)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeFile(t, `
[world]
cols = 12
rows = 8

[pathfinding]
max_concurrent = 2

[log]
level = "debug"
`)
	t.Setenv("TILEWORLD_WORLD_ROWS", "9")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.World.Cols != 12 {
		t.Errorf("Expected cols 12, got %d", cfg.World.Cols)
	}
	if cfg.World.Rows != 9 {
		t.Errorf("Expected env override rows 9, got %d", cfg.World.Rows)
	}
	if cfg.Pathfinding.MaxConcurrent != 2 || cfg.Log.Level != "debug" {
		t.Errorf("Unexpected values %+v %+v", cfg.Pathfinding, cfg.Log)
	}
	if cfg.Storage.Driver != StorageFile {
		t.Errorf("Expected default storage driver, got %q", cfg.Storage.Driver)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero size", "[world]\ncols = 0\n"},
		{"unknown driver", "[storage]\ndriver = \"s3\"\n"},
		{"postgres without dsn", "[storage]\ndriver = \"postgres\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.body))
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("Expected error for missing explicit config file")
	}
}
