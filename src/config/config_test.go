package config

import (
	"os"
	"path/filepath"
	"testing"
)

const validYAML = `
name: "test-engine"
host: "127.0.0.1"
port: 9000
log_level: "DEBUG"
storage:
  db_type: "sqlite"
  db_path: "test.db"
network:
  timeout: 10
  retries: 2
  concurrent_requests: 2
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNewConfigAppliesDefaults(t *testing.T) {
	cfg, err := NewConfig(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	if cfg.Exchange.CloseHour != 16 {
		t.Fatalf("default close hour should be 16, got %d", cfg.Exchange.CloseHour)
	}
	if cfg.Engine.BaseIntervalMinutes != 5 || cfg.Engine.ClusterWindowMinutes != 5 {
		t.Fatalf("engine defaults missing: %+v", cfg.Engine)
	}
	if cfg.Engine.ClusterConfidenceWeight != 0.55 || cfg.Engine.DecompConfidenceWeight != 0.45 {
		t.Fatalf("confidence weight defaults missing: %+v", cfg.Engine)
	}
	if cfg.Engine.ProximityThresholdPct != 1.5 {
		t.Fatalf("proximity default missing: %v", cfg.Engine.ProximityThresholdPct)
	}
	w := cfg.Engine.Options
	sum := w.UnusualActivity + w.OpenInterest + w.TimeConfluence + w.IVEnvironment + w.MaxPain + w.RiskReward
	if sum < 0.99 || sum > 1.01 {
		t.Fatalf("default options weights should sum to 1.0, got %v", sum)
	}
	if cfg.DataSource.HistoryYears != 2 {
		t.Fatalf("history default missing: %d", cfg.DataSource.HistoryYears)
	}
}

func TestNewConfigRejectsBadPort(t *testing.T) {
	bad := `
name: "test-engine"
host: "127.0.0.1"
port: 80
storage:
  db_type: "sqlite"
  db_path: "test.db"
network:
  timeout: 10
  retries: 2
  concurrent_requests: 2
`
	if _, err := NewConfig(writeConfig(t, bad)); err == nil {
		t.Fatal("port 80 should fail validation")
	}
}

func TestNewConfigRequiresPostgresConnString(t *testing.T) {
	bad := `
name: "test-engine"
host: "127.0.0.1"
port: 9000
storage:
  db_type: "postgres"
network:
  timeout: 10
  retries: 2
  concurrent_requests: 2
`
	if _, err := NewConfig(writeConfig(t, bad)); err == nil {
		t.Fatal("postgres without a connection string should fail validation")
	}
}

func TestNewConfigRejectsUnbalancedWeights(t *testing.T) {
	bad := validYAML + `
engine:
  cluster_confidence_weight: 0.9
  decomp_confidence_weight: 0.9
`
	if _, err := NewConfig(writeConfig(t, bad)); err == nil {
		t.Fatal("weights summing to 1.8 should fail validation")
	}
}

func TestNewConfigMissingFile(t *testing.T) {
	if _, err := NewConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("missing file should error")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	cfg, err := NewConfig(writeConfig(t, validYAML))
	if err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(t.TempDir(), "saved.yaml")
	if err := cfg.Save(out); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	reloaded, err := NewConfig(out)
	if err != nil {
		t.Fatalf("saved config did not reload: %v", err)
	}
	if reloaded.Name != cfg.Name || reloaded.Port != cfg.Port {
		t.Fatalf("round trip lost fields: %+v", reloaded.MConfig)
	}
}
