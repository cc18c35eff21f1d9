package server

import (
	"os"
	"path/filepath"
	"testing"
)

const testConfig = `
[logging]
logfile = "logs/ninjato.log"
max_log_size = 500
max_log_age = 30

[store]
path = "db"

[blobs]
dir = "blobs"

[kafka]
servers = ["kafka1:9092", "kafka2:9092"]
topic = "jobs"

[workflow]
buffer_factor = 2.5
max_retries = 7
`

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(testConfig), 0o644); err != nil {
		t.Fatalf("error writing config: %v", err)
	}

	if err := LoadConfig(path); err != nil {
		t.Fatalf("error loading config: %v", err)
	}
	if ConfigLocation() != path {
		t.Errorf("config location: got %q, want %q", ConfigLocation(), path)
	}

	// Relative paths resolve against the config file's directory.
	if tc.Store.Path != filepath.Join(dir, "db") {
		t.Errorf("store path: got %q, want %q", tc.Store.Path, filepath.Join(dir, "db"))
	}
	if tc.Blobs.Dir != filepath.Join(dir, "blobs") {
		t.Errorf("blobs dir: got %q, want %q", tc.Blobs.Dir, filepath.Join(dir, "blobs"))
	}
	if tc.Logging.Logfile != filepath.Join(dir, "logs/ninjato.log") {
		t.Errorf("logfile: got %q, want under %q", tc.Logging.Logfile, dir)
	}

	if len(tc.Kafka.Servers) != 2 || tc.Kafka.Topic != "jobs" {
		t.Errorf("kafka config not parsed: %+v", tc.Kafka)
	}
	if !KafkaAvailable() {
		t.Errorf("kafka should be available")
	}
	if tc.Workflow.BufferFactor != 2.5 || tc.Workflow.MaxRetries != 7 {
		t.Errorf("workflow config not parsed: %+v", tc.Workflow)
	}
}

func TestLoadConfigMissing(t *testing.T) {
	if err := LoadConfig(""); err == nil {
		t.Errorf("expected error for empty config filename")
	}
	if err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Errorf("expected error for missing config file")
	}
}
