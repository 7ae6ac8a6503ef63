package config

import (
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	cleanup := setEnvs(t, map[string]string{
		"MQTT_BROKER_URL": "tcp://localhost:1883",
	})
	defer cleanup()

	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load(Overrides{EnvFile: "nonexistent.env"})
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.HTTPAddr != ":9090" {
			t.Errorf("HTTPAddr = %q, want :9090", cfg.HTTPAddr)
		}
		if cfg.LogLevel != "info" {
			t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
		}
		if !cfg.CaptureEnabled {
			t.Error("CaptureEnabled = false, want true")
		}
		if cfg.PeakRelease != 0.85 {
			t.Errorf("PeakRelease = %v, want 0.85", cfg.PeakRelease)
		}
	})

	t.Run("cli_overrides_take_priority", func(t *testing.T) {
		cfg, err := Load(Overrides{
			EnvFile:        "nonexistent.env",
			HTTPAddr:       ":9999",
			LogLevel:       "debug",
			PipeWireRemote: "/tmp/pipewire-test",
		})
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.HTTPAddr != ":9999" {
			t.Errorf("HTTPAddr = %q, want :9999", cfg.HTTPAddr)
		}
		if cfg.LogLevel != "debug" {
			t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
		}
		if cfg.PipeWireRemote != "/tmp/pipewire-test" {
			t.Errorf("PipeWireRemote = %q, want override", cfg.PipeWireRemote)
		}
	})

	t.Run("env_vars_read", func(t *testing.T) {
		cfg, err := Load(Overrides{EnvFile: "nonexistent.env"})
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.MQTTBrokerURL != "tcp://localhost:1883" {
			t.Errorf("MQTTBrokerURL = %q, want tcp://localhost:1883", cfg.MQTTBrokerURL)
		}
	})
}

func TestLoadRejectsInvalidBallistics(t *testing.T) {
	cleanup := setEnvs(t, map[string]string{"PEAK_ATTACK": "2.0"})
	defer cleanup()

	_, err := Load(Overrides{EnvFile: "nonexistent.env"})
	if err == nil {
		t.Error("expected error for PEAK_ATTACK out of [0,1]")
	}
}

func TestLoadAuthTokenAutoGenerated(t *testing.T) {
	cleanup := setEnvs(t, map[string]string{"AUTH_TOKEN": ""})
	defer cleanup()
	os.Unsetenv("AUTH_TOKEN")

	cfg, err := Load(Overrides{EnvFile: "nonexistent.env"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AuthToken == "" {
		t.Error("expected auto-generated AuthToken when AUTH_ENABLED and no AUTH_TOKEN set")
	}
	if !cfg.AuthTokenGenerated {
		t.Error("expected AuthTokenGenerated = true")
	}
}

// setEnvs sets environment variables and returns a cleanup function.
func setEnvs(t *testing.T, envs map[string]string) func() {
	t.Helper()
	originals := make(map[string]string)
	unset := make([]string, 0)

	for k, v := range envs {
		if orig, ok := os.LookupEnv(k); ok {
			originals[k] = orig
		} else {
			unset = append(unset, k)
		}
		os.Setenv(k, v)
	}

	return func() {
		for k, v := range originals {
			os.Setenv(k, v)
		}
		for _, k := range unset {
			os.Unsetenv(k)
		}
	}
}
