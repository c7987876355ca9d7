package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// BootstrapFilename is the bootstrap config file looked up in the config dir.
const BootstrapFilename = "bridge_config.yaml"

// Transport kinds
const (
	TransportTCP       = "tcp"
	TransportWebSocket = "websocket"
)

// Actuator kinds
const (
	ActuatorSim    = "sim"
	ActuatorZeroMQ = "zeromq"
)

// BootstrapConfig holds the process-level settings loaded from bridge_config.yaml
type BootstrapConfig struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	ZeroMQ    ZeroMQConfig    `yaml:"zeromq"`
	Actuator  ActuatorConfig  `yaml:"actuator"`
	Data      DataConfig      `yaml:"data"`
	Reporting ReportingConfig `yaml:"reporting"`
}

// LoggingConfig holds logging settings from bootstrap
type LoggingConfig struct {
	Level      string `yaml:"level"`
	LogPath    string `yaml:"log_path,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb,omitempty"`
	MaxBackups int    `yaml:"max_backups,omitempty"`
}

// ServerConfig holds the status API settings. A zero port disables the API.
// A non-empty AuthSecret requires HS256 bearer tokens for config updates.
type ServerConfig struct {
	HTTPPort   int    `yaml:"http_port"`
	AuthSecret string `yaml:"auth_secret,omitempty"`
}

// TransportConfig selects where velocity frames come from
type TransportConfig struct {
	Kind          string `yaml:"kind"`
	ListenAddress string `yaml:"listen_address"`
}

// ZeroMQConfig holds the telemetry bus and remote driver endpoints
type ZeroMQConfig struct {
	PublishBindAddress string `yaml:"publish_bind_address"`
	ActuatorAddress    string `yaml:"actuator_address"`
	RequestTimeoutMs   int    `yaml:"request_timeout_ms"`
}

// ActuatorConfig selects the arm implementation
type ActuatorConfig struct {
	Kind string `yaml:"kind"`
}

// DataConfig holds data directory settings from bootstrap
type DataConfig struct {
	Directory            string `yaml:"directory"`
	BridgeConfigFilename string `yaml:"bridge_config_file"`
}

// ReportingConfig sizes the cycle report worker pool
type ReportingConfig struct {
	Workers   int `yaml:"workers"`
	QueueSize int `yaml:"queue_size"`
}

// OperationalConfigPath is where the operational config file lives.
func (b *BootstrapConfig) OperationalConfigPath() string {
	return filepath.Join(b.Data.Directory, b.Data.BridgeConfigFilename)
}

// LoadBootstrapConfig loads the bootstrap configuration from bridge_config.yaml
func LoadBootstrapConfig(configDir string) (*BootstrapConfig, error) {
	bootstrapConfigPath := filepath.Join(configDir, BootstrapFilename)

	data, err := os.ReadFile(bootstrapConfigPath)
	if err != nil {
		return nil, fmt.Errorf("error reading bootstrap config file '%s': %w", bootstrapConfigPath, err)
	}

	var bootstrapCfg BootstrapConfig
	if err := yaml.Unmarshal(data, &bootstrapCfg); err != nil {
		return nil, fmt.Errorf("error parsing bootstrap config file '%s': %w", bootstrapConfigPath, err)
	}

	bootstrapCfg.applyDefaults()

	if bootstrapCfg.Transport.ListenAddress == "" && bootstrapCfg.Transport.Kind == TransportTCP {
		return nil, fmt.Errorf("missing required field in bootstrap config: transport.listen_address")
	}
	if bootstrapCfg.Actuator.Kind == ActuatorZeroMQ && bootstrapCfg.ZeroMQ.ActuatorAddress == "" {
		return nil, fmt.Errorf("missing required field in bootstrap config: zeromq.actuator_address")
	}
	if bootstrapCfg.Data.Directory == "" {
		return nil, fmt.Errorf("missing required field in bootstrap config: data.directory")
	}
	if bootstrapCfg.Data.BridgeConfigFilename == "" {
		return nil, fmt.Errorf("missing required field in bootstrap config: data.bridge_config_file")
	}

	switch bootstrapCfg.Transport.Kind {
	case TransportTCP, TransportWebSocket:
	default:
		return nil, fmt.Errorf("invalid transport.kind '%s' in bootstrap config", bootstrapCfg.Transport.Kind)
	}
	switch bootstrapCfg.Actuator.Kind {
	case ActuatorSim, ActuatorZeroMQ:
	default:
		return nil, fmt.Errorf("invalid actuator.kind '%s' in bootstrap config", bootstrapCfg.Actuator.Kind)
	}
	if bootstrapCfg.Transport.Kind == TransportWebSocket && bootstrapCfg.Server.HTTPPort == 0 {
		return nil, fmt.Errorf("websocket transport needs server.http_port")
	}

	return &bootstrapCfg, nil
}

func (b *BootstrapConfig) applyDefaults() {
	if b.Logging.Level == "" {
		b.Logging.Level = "info"
	}
	if b.Transport.Kind == "" {
		b.Transport.Kind = TransportTCP
	}
	if b.Actuator.Kind == "" {
		b.Actuator.Kind = ActuatorSim
	}
	if b.ZeroMQ.RequestTimeoutMs <= 0 {
		b.ZeroMQ.RequestTimeoutMs = 1000
	}
	if b.Reporting.Workers <= 0 {
		b.Reporting.Workers = 1
	}
	if b.Reporting.QueueSize <= 0 {
		b.Reporting.QueueSize = 256
	}
}
