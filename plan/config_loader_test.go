package plan

import (
	"os"
	"path/filepath"
	"testing"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func validConfigYAML() string {
	return `engine:
  wallThickness: 20
  directSnapThreshold: 4
  jointClustering: union-find
mqtt:
  broker: tcp://localhost:1883
  publishPrefix: house
  clientId: roomplan-test
http:
  port: 9090
render:
  gridSpacing: 50
  showJoints: true
`
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config fixture: %v", err)
	}
	return path
}

// ---------------------------------------------------------------------------
// LoadConfig
// ---------------------------------------------------------------------------

func TestLoadConfig_NotExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.yaml")
	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected error for missing config file, got nil")
	}
}

func TestLoadConfig_ValidYAML(t *testing.T) {
	path := writeConfig(t, validConfigYAML())

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Engine.WallThickness != 20 {
		t.Errorf("WallThickness = %v, want 20", cfg.Engine.WallThickness)
	}
	if cfg.Engine.DirectSnapThreshold != 4 {
		t.Errorf("DirectSnapThreshold = %v, want 4", cfg.Engine.DirectSnapThreshold)
	}
	if cfg.Engine.JointClustering != ClusterUnionFind {
		t.Errorf("JointClustering = %q, want %q", cfg.Engine.JointClustering, ClusterUnionFind)
	}
	if cfg.MQTT.Broker != "tcp://localhost:1883" {
		t.Errorf("Broker = %q, want %q", cfg.MQTT.Broker, "tcp://localhost:1883")
	}
	if cfg.MQTT.PublishPrefix != "house" {
		t.Errorf("PublishPrefix = %q, want house", cfg.MQTT.PublishPrefix)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.HTTP.Port)
	}
	if cfg.Render.GridSpacing != 50 || !cfg.Render.ShowJoints {
		t.Errorf("Render = %+v, want grid 50 with joints", cfg.Render)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, "mqtt:\n  broker: tcp://localhost:1883\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Engine != DefaultSettings() {
		t.Errorf("Engine = %+v, want defaults", cfg.Engine)
	}
	if cfg.HTTP.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.HTTP.Port)
	}
}

func TestLoadConfig_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "invalid yaml",
			yaml: "engine: [unclosed",
		},
		{
			name: "direct threshold above wall threshold",
			yaml: `engine:
  directSnapThreshold: 30
  wallSnapThreshold: 20
`,
		},
		{
			name: "negative hysteresis",
			yaml: `engine:
  connectionHysteresis: -1
`,
		},
		{
			name: "unknown clustering",
			yaml: `engine:
  jointClustering: k-means
`,
		},
		{
			name: "port out of range",
			yaml: `http:
  port: 70000
`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.yaml)
			_, err := LoadConfig(path)
			if err == nil {
				t.Errorf("expected validation error for %q, got nil", tc.name)
			}
		})
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

// ---------------------------------------------------------------------------
// SaveConfig
// ---------------------------------------------------------------------------

func TestSaveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")

	cfg := DefaultConfig()
	cfg.Engine.WallThickness = 12
	cfg.MQTT.Broker = "tcp://broker:1883"

	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig after save: %v", err)
	}
	if loaded.Engine.WallThickness != 12 {
		t.Errorf("WallThickness = %v, want 12", loaded.Engine.WallThickness)
	}
	if loaded.MQTT.Broker != "tcp://broker:1883" {
		t.Errorf("Broker = %q", loaded.MQTT.Broker)
	}
}

func TestSaveConfig_BadPath(t *testing.T) {
	err := SaveConfig(filepath.Join(t.TempDir(), "missing", "out.yaml"), DefaultConfig())
	if err == nil {
		t.Error("expected error writing into a missing directory")
	}
}
