package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const fullYAML = `
paths:
  raw_data: /data/f1/raw
  interim_data: /data/f1/interim
  processed_data: /data/f1/processed
  sql_dir: /data/f1/sql

database:
  driver: mysql
  host: 10.0.0.5
  port: 3307
  name: pitwall_prod

logging:
  debug: true
`

const minimalYAML = `
paths:
  raw_data: data/raw
`

func TestParse_FullConfig(t *testing.T) {
	cfg, err := Parse([]byte(fullYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Paths.RawData != "/data/f1/raw" {
		t.Errorf("RawData = %q, want /data/f1/raw", cfg.Paths.RawData)
	}
	if cfg.Paths.SQLDir != "/data/f1/sql" {
		t.Errorf("SQLDir = %q, want /data/f1/sql", cfg.Paths.SQLDir)
	}
	if cfg.Database.Driver != "mysql" {
		t.Errorf("Driver = %q, want mysql", cfg.Database.Driver)
	}
	if cfg.Database.Host != "10.0.0.5" {
		t.Errorf("Host = %q, want 10.0.0.5", cfg.Database.Host)
	}
	if cfg.Database.Port != 3307 {
		t.Errorf("Port = %d, want 3307", cfg.Database.Port)
	}
	if !cfg.Logging.Debug {
		t.Error("Logging.Debug = false, want true")
	}
}

func TestParse_MinimalAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Paths.InterimData != "data/interim" {
		t.Errorf("InterimData = %q, want data/interim", cfg.Paths.InterimData)
	}
	if cfg.Paths.ProcessedData != "data/processed" {
		t.Errorf("ProcessedData = %q, want data/processed", cfg.Paths.ProcessedData)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Driver = %q, want sqlite", cfg.Database.Driver)
	}
	want := filepath.Join("data/processed", "pitwall.db")
	if cfg.Database.Path != want {
		t.Errorf("Path = %q, want %q", cfg.Database.Path, want)
	}
	if cfg.Database.Port != 3306 {
		t.Errorf("Port = %d, want default 3306", cfg.Database.Port)
	}
}

func TestParse_InvalidDriver(t *testing.T) {
	_, err := Parse([]byte("database:\n  driver: postgres\n"))
	if err == nil {
		t.Fatal("expected validation error for unknown driver")
	}
	if !strings.Contains(err.Error(), "database.driver") {
		t.Errorf("error = %v, want mention of database.driver", err)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("paths: ["))
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Paths.RawData != "data/raw" {
		t.Errorf("RawData = %q, want default data/raw", cfg.Paths.RawData)
	}
}

func TestLoad_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pitwall.yaml")
	if err := os.WriteFile(path, []byte(minimalYAML), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Paths.RawData != "data/raw" {
		t.Errorf("RawData = %q, want data/raw", cfg.Paths.RawData)
	}
}

func TestArtifactPaths(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cfg.CleanFile("results"); got != filepath.Join("data/interim", "results_clean.csv") {
		t.Errorf("CleanFile = %q", got)
	}
	if got := cfg.RawFile("results"); got != filepath.Join("data/raw", "results.csv") {
		t.Errorf("RawFile = %q", got)
	}
	if got := cfg.MergedFile(); got != filepath.Join("data/interim", "cleaned_merged.csv") {
		t.Errorf("MergedFile = %q", got)
	}
	if got := cfg.MasterTableFile(); got != filepath.Join("data/processed", "master_race_table.csv") {
		t.Errorf("MasterTableFile = %q", got)
	}
	if got := cfg.ViewsFile(); got != filepath.Join("sql", "views.sql") {
		t.Errorf("ViewsFile = %q", got)
	}
}
