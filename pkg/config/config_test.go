package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-teleop/armbridge/domain/teleop"
)

func TestLoadConfig(t *testing.T) {
	tempDir := t.TempDir()

	configContent := `
version: "1.0"
config_id: "test-bridge-config"
lastUpdated: "2024-01-01T00:00:00Z"
robot_id: "ur5e-lab"

safety:
  min_z: 0.1
  max_radius: 0.6
  strategy: "actuator"

timing:
  cycle_time: 0.02
  sub_interval: 0.05
  total_duration: 0.5

cadence:
  policy: "single_shot"

interpolation:
  steps: 20

command:
  acceleration: 0.5
  max_speed: 0.25

start:
  pose: [0.0, -0.3, 0.4, 0.0, 3.14, 0.0]
  speed: 0.2
  acceleration: 0.2
`
	configPath := filepath.Join(tempDir, "teleop_bridge.yaml")
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.ConfigID != "test-bridge-config" {
		t.Errorf("Expected config_id test-bridge-config, got %s", config.ConfigID)
	}
	if config.RobotID != "ur5e-lab" {
		t.Errorf("Expected robot_id ur5e-lab, got %s", config.RobotID)
	}

	assert.Equal(t, teleop.SafetyLimits{MinZ: 0.1, MaxRadius: 0.6}, config.Limits())
	assert.Equal(t, teleop.StrategyActuator, config.Safety.Strategy)
	assert.Equal(t, teleop.CycleTiming{CycleTime: 0.02, SubInterval: 0.05, TotalDuration: 0.5}, config.CycleTiming())
	assert.Equal(t, teleop.PolicySingleShot, config.Cadence.Policy)
	assert.Equal(t, 20, config.Interpolation.Steps)
	assert.Equal(t, teleop.Synthesizer{Acceleration: 0.5, MaxSpeed: 0.25}, config.Synthesizer())

	start, err := config.StartPose()
	require.NoError(t, err)
	assert.Equal(t, teleop.Pose{X: 0, Y: -0.3, Z: 0.4, RX: 0, RY: 3.14, RZ: 0}, start)
}

func TestParseAppliesDefaults(t *testing.T) {
	config, err := Parse([]byte("robot_id: bare\n"))
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, "bare", config.RobotID)
	assert.Equal(t, def.Safety, config.Safety)
	assert.Equal(t, def.Timing, config.Timing)
	assert.Equal(t, teleop.PolicySubInterval, config.Cadence.Policy)
	assert.Equal(t, teleop.DefaultInterpolationSteps, config.Interpolation.Steps)
	assert.Equal(t, []float64{0.02, -0.3, 0.375, 1.39, 2.314, -0.36}, config.Start.Pose)
	assert.Equal(t, 0.25, config.Command.Acceleration)
}

func TestParseOverridesStartPose(t *testing.T) {
	config, err := Parse([]byte("start:\n  pose: [0.1, 0.1, 0.2, 0, 0, 0]\n"))
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.1, 0.2, 0, 0, 0}, config.Start.Pose)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"floor above radius", func(c *Config) { c.Safety.MinZ = 0.6 }, "min_z"},
		{"unknown strategy", func(c *Config) { c.Safety.Strategy = "lidar" }, "safety.strategy"},
		{"zero cycle time", func(c *Config) { c.Timing.CycleTime = 0 }, "timing values"},
		{"negative total", func(c *Config) { c.Timing.TotalDuration = -1 }, "timing values"},
		{"sub interval too long", func(c *Config) { c.Timing.SubInterval = 2 }, "sub_interval"},
		{"unknown policy", func(c *Config) { c.Cadence.Policy = "burst" }, "cadence.policy"},
		{"no steps", func(c *Config) { c.Interpolation.Steps = 0 }, "interpolation.steps"},
		{"short start pose", func(c *Config) { c.Start.Pose = []float64{1, 2, 3} }, "start.pose"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	c := Default()
	assert.NoError(t, c.Validate())
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("safety: [unclosed"), 0644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid YAML format")
}

func TestLoadBootstrapConfig(t *testing.T) {
	tempDir := t.TempDir()

	bootstrapContent := `
logging:
  level: "debug"
  log_path: "/var/log/bridge"
  max_size_mb: 10
  max_backups: 2
server:
  http_port: 9090
transport:
  kind: "tcp"
  listen_address: ":9999"
zeromq:
  publish_bind_address: "tcp://*:7777"
  actuator_address: "tcp://localhost:5560"
  request_timeout_ms: 250
actuator:
  kind: "zeromq"
data:
  directory: "/data/bridge"
  bridge_config_file: "my_bridge.yaml"
reporting:
  workers: 2
  queue_size: 64
`
	configPath := filepath.Join(tempDir, BootstrapFilename)
	if err := os.WriteFile(configPath, []byte(bootstrapContent), 0644); err != nil {
		t.Fatalf("Failed to write test bootstrap config: %v", err)
	}

	bootstrapCfg, err := LoadBootstrapConfig(tempDir)
	if err != nil {
		t.Fatalf("LoadBootstrapConfig failed: %v", err)
	}

	if bootstrapCfg.Logging.Level != "debug" {
		t.Errorf("Expected logging level 'debug', got '%s'", bootstrapCfg.Logging.Level)
	}
	if bootstrapCfg.Logging.LogPath != "/var/log/bridge" {
		t.Errorf("Expected log path '/var/log/bridge', got '%s'", bootstrapCfg.Logging.LogPath)
	}
	if bootstrapCfg.Server.HTTPPort != 9090 {
		t.Errorf("Expected server http_port 9090, got %d", bootstrapCfg.Server.HTTPPort)
	}
	if bootstrapCfg.Transport.ListenAddress != ":9999" {
		t.Errorf("Expected listen address ':9999', got '%s'", bootstrapCfg.Transport.ListenAddress)
	}
	if bootstrapCfg.ZeroMQ.ActuatorAddress != "tcp://localhost:5560" {
		t.Errorf("Expected actuator address, got '%s'", bootstrapCfg.ZeroMQ.ActuatorAddress)
	}
	if bootstrapCfg.ZeroMQ.RequestTimeoutMs != 250 {
		t.Errorf("Expected request_timeout_ms 250, got %d", bootstrapCfg.ZeroMQ.RequestTimeoutMs)
	}
	if bootstrapCfg.Actuator.Kind != ActuatorZeroMQ {
		t.Errorf("Expected actuator kind zeromq, got '%s'", bootstrapCfg.Actuator.Kind)
	}
	if bootstrapCfg.Reporting.Workers != 2 || bootstrapCfg.Reporting.QueueSize != 64 {
		t.Errorf("Unexpected reporting config %+v", bootstrapCfg.Reporting)
	}
	assert.Equal(t, filepath.Join("/data/bridge", "my_bridge.yaml"), bootstrapCfg.OperationalConfigPath())
}

func TestLoadBootstrapConfigDefaults(t *testing.T) {
	tempDir := t.TempDir()
	content := `
transport:
  listen_address: ":9999"
data:
  directory: "/data"
  bridge_config_file: "teleop_bridge.yaml"
`
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, BootstrapFilename), []byte(content), 0644))

	cfg, err := LoadBootstrapConfig(tempDir)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, TransportTCP, cfg.Transport.Kind)
	assert.Equal(t, ActuatorSim, cfg.Actuator.Kind)
	assert.Equal(t, 1000, cfg.ZeroMQ.RequestTimeoutMs)
	assert.Equal(t, 1, cfg.Reporting.Workers)
	assert.Equal(t, 256, cfg.Reporting.QueueSize)
}

// Test case for missing required fields validation in LoadBootstrapConfig
func TestLoadBootstrapConfigMissingRequired(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name: "listen address",
			content: `
transport:
  kind: "tcp"
data:
  directory: "/data"
  bridge_config_file: "op.yaml"
`,
			want: "missing required field in bootstrap config: transport.listen_address",
		},
		{
			name: "actuator address",
			content: `
transport:
  listen_address: ":9999"
actuator:
  kind: "zeromq"
data:
  directory: "/data"
  bridge_config_file: "op.yaml"
`,
			want: "missing required field in bootstrap config: zeromq.actuator_address",
		},
		{
			name: "data directory",
			content: `
transport:
  listen_address: ":9999"
data:
  bridge_config_file: "op.yaml"
`,
			want: "missing required field in bootstrap config: data.directory",
		},
		{
			name: "unknown transport",
			content: `
transport:
  kind: "udp"
  listen_address: ":9999"
data:
  directory: "/data"
  bridge_config_file: "op.yaml"
`,
			want: "invalid transport.kind 'udp'",
		},
		{
			name: "websocket without http",
			content: `
transport:
  kind: "websocket"
data:
  directory: "/data"
  bridge_config_file: "op.yaml"
`,
			want: "websocket transport needs server.http_port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			configPath := filepath.Join(tempDir, BootstrapFilename)
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to write test bootstrap config: %v", err)
			}

			_, err := LoadBootstrapConfig(tempDir)
			if err == nil {
				t.Fatalf("Expected error when loading bootstrap config, but got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error message to contain '%s', but got: %v", tt.want, err)
			}
		})
	}
}

func TestLoadBootstrapConfigMissingFile(t *testing.T) {
	_, err := LoadBootstrapConfig(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading bootstrap config file")
}
