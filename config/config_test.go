package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

//nolint:gocyclo
func TestLoad(t *testing.T) {
	path := writeConfig(t, "config.yaml", `server:
  addr: ":9000"
store:
  driver: "memory"
  dataset: "venue.yaml"
replay:
  bucket_minutes: 10
  speed: 120
queue:
  wait_cap_minutes: 25
recommend:
  walking_speed: 70
  periods:
    - name: "first half"
      start_offset_minutes: 0
      end_offset_minutes: 45
mqtt:
  enabled: true
  broker: "tcp://localhost:1883"
  topic_prefix: "venue"
metrics:
  sinks:
    - type: "nop"
  prometheus_addr: ":9100"
logging:
  level: "debug"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"server.addr", cfg.Server.Addr, ":9000"},
		{"server.shutdown", cfg.Server.ShutdownTimeoutSec, 10},
		{"store.driver", cfg.Store.Driver, DriverMemory},
		{"replay.bucket_minutes", cfg.Replay.BucketMinutes, 10},
		{"replay.speed", cfg.Replay.Speed, 120.0},
		{"replay.capacity_factor", cfg.Replay.CapacityFactor, 0.65},
		{"queue.wait_cap", cfg.Queue.WaitCap, 25.0},
		{"recommend.walking_speed", cfg.Recommend.WalkingSpeed, 70.0},
		{"recommend.periods", len(cfg.Recommend.Periods), 1},
		{"capacity.default_rate", cfg.Capacity.DefaultRate, 1.5},
		{"mqtt.broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"mqtt.retries", cfg.MQTT.MaxRetries, 3},
		{"kafka.topic", cfg.Kafka.Topic, "standwait.replay"},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"metrics.prometheus_addr", cfg.Metrics.PrometheusAddr, ":9100"},
		{"export.format", cfg.Export.Format, "json"},
		{"sentry.service_name", cfg.Sentry.ServiceName, "standwait"},
		{"logging.level", cfg.Logging.Level, "debug"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: got %v want %v", c.name, c.got, c.want)
		}
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "config.json", `{"store": {"driver": "memory", "dataset": "venue.yaml"}}`)
	t.Setenv("SW_STORE__DRIVER", "sqlite")
	t.Setenv("SW_REPLAY__SPEED", "30")
	t.Setenv("SW_KAFKA__BROKERS", "k1:9092,k2:9092")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Store.Driver != DriverSQLite || cfg.Store.SQLitePath != "standwait.db" {
		t.Fatalf("store override not applied: %+v", cfg.Store)
	}
	if cfg.Replay.Speed != 30 {
		t.Fatalf("speed override not applied: %v", cfg.Replay.Speed)
	}
	if got := cfg.Kafka.BrokerList(); len(got) != 2 {
		t.Fatalf("brokers override not applied: %v", got)
	}
}

func TestLoadFromEnvOnly(t *testing.T) {
	t.Setenv("SW_STORE__DATASET", "venue.yaml")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Store.Dataset != "venue.yaml" || cfg.Server.Addr != ":8080" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoadValidation(t *testing.T) {
	cases := map[string]string{
		"unknown driver":   "store:\n  driver: oracle\n",
		"missing dataset":  "store:\n  driver: memory\n",
		"postgres dsn":     "store:\n  driver: postgres\n",
		"mqtt broker":      "store:\n  dataset: v.yaml\nmqtt:\n  enabled: true\n",
		"kafka brokers":    "store:\n  dataset: v.yaml\nkafka:\n  enabled: true\n",
		"export format":    "store:\n  dataset: v.yaml\nexport:\n  format: xml\n",
		"bucket too wide":  "store:\n  dataset: v.yaml\nreplay:\n  bucket_minutes: 90\n",
		"bad logging mode": "store:\n  dataset: v.yaml\nlogging:\n  format: xml\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, "config.yaml", data)); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	if _, err := Load(writeConfig(t, "config.toml", "")); err == nil {
		t.Fatalf("expected format error")
	}
}

func TestLoadSampleConfig(t *testing.T) {
	cfg, err := Load("../config.yaml")
	if err != nil {
		t.Fatalf("sample config: %v", err)
	}
	if cfg.Store.Driver != DriverMemory || cfg.Store.Dataset != "data/venue.yaml" {
		t.Fatalf("unexpected store section %+v", cfg.Store)
	}
	if _, err := os.Stat(filepath.Join("..", cfg.Store.Dataset)); err != nil {
		t.Fatalf("sample dataset missing: %v", err)
	}
}
