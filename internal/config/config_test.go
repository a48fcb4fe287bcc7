package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), DefaultFile))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if c.KDF.MemoryKiB != 512*1024 {
		t.Errorf("Expected default memory cost, got %d", c.KDF.MemoryKiB)
	}
	if c.Guard.MaxAttempts != 5 {
		t.Errorf("Expected default max attempts, got %d", c.Guard.MaxAttempts)
	}
	if c.Sharding.Shares != 0 {
		t.Errorf("Expected sharding off by default, got %d", c.Sharding.Shares)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	content := `
kdf:
  memory_kib: 65536
  time: 2
  parallelism: 4
guard:
  window_start: "08:00"
  window_end: "20:00"
  max_attempts: 3
  interval_seconds: 120
sharding:
  shares: 5
  threshold: 3
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if c.Params().Memory != 65536 || c.Params().Time != 2 || c.Params().Parallelism != 4 {
		t.Errorf("KDF override not applied: %+v", c.Params())
	}
	if c.GuardPolicy().WindowStart != "08:00" || c.GuardPolicy().MaxAttempts != 3 {
		t.Errorf("Guard override not applied: %+v", c.GuardPolicy())
	}
	if c.Sharding.Shares != 5 || c.Sharding.Threshold != 3 {
		t.Errorf("Sharding override not applied: %+v", c.Sharding)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"zero kdf time", "kdf:\n  memory_kib: 65536\n  time: 0\n  parallelism: 1\n"},
		{"threshold above shares", "sharding:\n  shares: 3\n  threshold: 5\n"},
		{"bad guard window", "guard:\n  window_start: \"9am\"\n  window_end: \"17:00\"\n  max_attempts: 5\n  interval_seconds: 60\n"},
		{"unknown key", "cipher: rot13\n"},
		{"malformed yaml", "kdf: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), DefaultFile)
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatalf("Failed to write config: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Expected error for invalid config")
			}
		})
	}
}
