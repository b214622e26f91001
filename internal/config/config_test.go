package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dokzlo13/ledd/internal/pwm"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Log.Level != "info" {
		t.Errorf("log level = %q, want info", cfg.Log.Level)
	}
	if cfg.Database.Path != "./ledd.sqlite" {
		t.Errorf("database path = %q", cfg.Database.Path)
	}
	if cfg.Server.Port != 8080 || cfg.Server.Host != "0.0.0.0" {
		t.Errorf("server = %s:%d, want 0.0.0.0:8080", cfg.Server.Host, cfg.Server.Port)
	}
	if cfg.Server.RateLimitRPS != 10.0 {
		t.Errorf("rate limit = %v, want 10", cfg.Server.RateLimitRPS)
	}
	if cfg.PWM.Driver != "memory" || cfg.PWM.Resolution != 255 {
		t.Errorf("pwm = %s/%d, want memory/255", cfg.PWM.Driver, cfg.PWM.Resolution)
	}
	if cfg.PWM.Period.Duration() != time.Millisecond {
		t.Errorf("pwm period = %v, want 1ms", cfg.PWM.Period.Duration())
	}
	if cfg.ShutdownTimeout.Duration() != 5*time.Second {
		t.Errorf("shutdown timeout = %v, want 5s", cfg.ShutdownTimeout.Duration())
	}
	if cfg.Calibration != nil {
		t.Error("calibration should be nil when unset")
	}
}

func TestLoadFullConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
log:
  level: debug
  json: true
database:
  path: /var/lib/ledd/state.sqlite
server:
  enabled: true
  host: 127.0.0.1
  port: 9090
  rate_limit_rps: 2.5
pwm:
  driver: sysfs
  chip: 1
  period: 500us
  resolution: 1023
  channels:
    red: 4
    green: 5
    blue: 6
script: /etc/ledd/scene.lua
shutdown_timeout: 10s
calibration:
  max_lum: 2.0
  red:
    uv: {u: 0.55, v: 0.52}
    flux: 0.4
`))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Log.Level != "debug" || !cfg.Log.UseJSON {
		t.Errorf("log = %+v", cfg.Log)
	}
	if cfg.Server.Port != 9090 || cfg.Server.RateLimitRPS != 2.5 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.PWM.Driver != "sysfs" || cfg.PWM.Chip != 1 {
		t.Errorf("pwm = %+v", cfg.PWM)
	}
	if cfg.PWM.Period.Duration() != 500*time.Microsecond {
		t.Errorf("period = %v, want 500us", cfg.PWM.Period.Duration())
	}
	if cfg.Script != "/etc/ledd/scene.lua" {
		t.Errorf("script = %q", cfg.Script)
	}
	if cfg.Calibration == nil {
		t.Fatal("calibration not parsed")
	}
	if cfg.Calibration.MaxLum != 2.0 || cfg.Calibration.Red.Flux != 0.4 {
		t.Errorf("calibration = %+v", cfg.Calibration)
	}
	if cfg.Calibration.Red.UV.U != 0.55 {
		t.Errorf("red u = %v, want 0.55", cfg.Calibration.Red.UV.U)
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	if _, err := Load(writeConfig(t, "shutdown_timeout: soon\n")); err == nil {
		t.Fatal("expected error for malformed duration")
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("LEDD_DB", "/tmp/custom.sqlite")
	os.Unsetenv("LEDD_PORT")

	cfg, err := Load(writeConfig(t, `
database:
  path: ${LEDD_DB}
server:
  port: ${LEDD_PORT:9000}
`))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Database.Path != "/tmp/custom.sqlite" {
		t.Errorf("database path = %q, want env value", cfg.Database.Path)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d, want fallback 9000", cfg.Server.Port)
	}
}

func TestLinesResolvesChannels(t *testing.T) {
	p := PWMConfig{Channels: map[string]int{"red": 2, "warm": 7}}

	lines, err := p.Lines()
	if err != nil {
		t.Fatalf("Lines() error: %v", err)
	}
	if lines[pwm.Red] != 2 || lines[pwm.Warm] != 7 {
		t.Errorf("lines = %v", lines)
	}

	p.Channels["ultraviolet"] = 9
	if _, err := p.Lines(); err == nil {
		t.Fatal("expected error for unknown channel name")
	}
}
