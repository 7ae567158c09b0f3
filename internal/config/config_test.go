package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 9090
  read_timeout: 15s
  write_timeout: 1m30s
database:
  mysql:
    conn_max_lifetime: 5m
  redis:
    save_prefix: "test:save:"
game:
  content_path: "content/story.yaml"
  typewriter_cps: 25
  generation_timeout: 45s
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9090 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Server.ReadTimeout.Std() != 15*time.Second {
		t.Errorf("read_timeout = %v", cfg.Server.ReadTimeout.Std())
	}
	if cfg.Server.WriteTimeout.Std() != 90*time.Second {
		t.Errorf("write_timeout = %v", cfg.Server.WriteTimeout.Std())
	}
	if cfg.Database.MySQL.ConnMaxLifetime.Std() != 5*time.Minute {
		t.Errorf("conn_max_lifetime = %v", cfg.Database.MySQL.ConnMaxLifetime.Std())
	}
	if cfg.Game.TypewriterCPS != 25 || cfg.Game.GenerationTimeout.Std() != 45*time.Second {
		t.Errorf("game = %+v", cfg.Game)
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := writeConfig(t, "server:\n  read_timeout: sideways\n")
	if _, err := Load(path); err == nil {
		t.Error("bad duration accepted")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("missing file accepted")
	}
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
ai:
  generator:
    api_key: "from-file"
game:
  content_path: "content/story.yaml"
`)
	t.Setenv("WAYFARER_API_KEY", "from-env")
	t.Setenv("WAYFARER_CONTENT", "elsewhere/story.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AI.Generator.APIKey != "from-env" {
		t.Errorf("api key = %q", cfg.AI.Generator.APIKey)
	}
	if cfg.Game.ContentPath != "elsewhere/story.yaml" {
		t.Errorf("content path = %q", cfg.Game.ContentPath)
	}
}
