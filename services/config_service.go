package services

import (
	"fmt"
	"os"
	"sync"

	"github.com/open-teleop/armbridge/pkg/config"
	customlog "github.com/open-teleop/armbridge/pkg/log"
)

// ConfigPublisher announces that a new operational configuration was stored.
type ConfigPublisher interface {
	PublishConfigUpdatedNotification(configID string) error
}

// BridgeConfigService manages the operational bridge configuration file.
// The running control loop keeps the configuration it started with; an update
// only takes effect at the next start.
type BridgeConfigService interface {
	LoadConfig() error
	GetCurrentConfig() *config.Config
	GetCurrentConfigYAML() ([]byte, error)
	UpdateConfig(newConfigYAML []byte) error
	PersistConfig(yamlData []byte) error
	SetPublisher(p ConfigPublisher)
}

type bridgeConfigService struct {
	operationalConfigPath string
	logger                customlog.Logger
	configPublisher       ConfigPublisher
	currentConfig         *config.Config
	mu                    sync.RWMutex
}

// NewBridgeConfigService creates the service and performs an initial load.
// A failed initial load is logged and leaves the current config nil.
func NewBridgeConfigService(operationalConfigPath string, logger customlog.Logger) (BridgeConfigService, error) {
	if operationalConfigPath == "" {
		return nil, fmt.Errorf("operational configuration path cannot be empty")
	}
	if logger == nil {
		logger = customlog.Nop()
	}

	service := &bridgeConfigService{
		operationalConfigPath: operationalConfigPath,
		logger:                logger.WithField("component", "config"),
	}

	if err := service.LoadConfig(); err != nil {
		service.logger.Warnf("Initial load of operational config '%s' failed: %v. Service created, but config is nil.", operationalConfigPath, err)
		return service, nil
	}

	service.logger.Infof("BridgeConfigService initialized for path: %s", operationalConfigPath)
	return service, nil
}

// LoadConfig reads and validates the operational config file.
func (s *bridgeConfigService) LoadConfig() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Infof("Loading operational configuration from: %s", s.operationalConfigPath)
	cfg, err := config.LoadConfig(s.operationalConfigPath)
	if err != nil {
		s.currentConfig = nil
		return err
	}

	s.currentConfig = cfg
	s.logger.Infof("Loaded operational configuration ID: %s, Version: %s", cfg.ConfigID, cfg.Version)
	return nil
}

// GetCurrentConfig returns the loaded configuration. Treat it as read-only.
func (s *bridgeConfigService) GetCurrentConfig() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentConfig
}

// GetCurrentConfigYAML returns the raw file content as stored on disk.
func (s *bridgeConfigService) GetCurrentConfigYAML() ([]byte, error) {
	s.mu.RLock()
	path := s.operationalConfigPath
	s.mu.RUnlock()

	s.logger.Debugf("Reading raw operational configuration YAML from: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading operational config file '%s': %w", path, err)
	}
	return data, nil
}

// UpdateConfig validates the YAML, persists it and notifies the publisher.
func (s *bridgeConfigService) UpdateConfig(newConfigYAML []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	newCfg, err := config.Parse(newConfigYAML)
	if err != nil {
		s.logger.Errorf("Rejected configuration update: %v", err)
		return err
	}
	if newCfg.ConfigID == "" || newCfg.RobotID == "" {
		return fmt.Errorf("%w: missing required fields (config_id, robot_id)", config.ErrValidation)
	}

	if err := s.persistConfigUnlocked(newConfigYAML); err != nil {
		return err
	}

	oldID := "N/A"
	if s.currentConfig != nil {
		oldID = s.currentConfig.ConfigID
	}
	s.currentConfig = newCfg
	s.logger.Infof("Operational configuration updated. ID %s -> %s (applies on next start)", oldID, newCfg.ConfigID)

	if s.configPublisher != nil {
		go func(publisher ConfigPublisher, id string) {
			if err := publisher.PublishConfigUpdatedNotification(id); err != nil {
				s.logger.Warnf("Failed to publish config update notification: %v", err)
			}
		}(s.configPublisher, newCfg.ConfigID)
	}
	return nil
}

// PersistConfig writes yamlData to the operational config path as is.
func (s *bridgeConfigService) PersistConfig(yamlData []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistConfigUnlocked(yamlData)
}

func (s *bridgeConfigService) persistConfigUnlocked(yamlData []byte) error {
	if err := os.WriteFile(s.operationalConfigPath, yamlData, 0644); err != nil {
		s.logger.Errorf("Error writing operational config file '%s': %v", s.operationalConfigPath, err)
		return fmt.Errorf("error writing operational config file '%s': %w", s.operationalConfigPath, err)
	}
	s.logger.Infof("Persisted configuration to %s", s.operationalConfigPath)
	return nil
}

// SetPublisher injects the update publisher after construction.
func (s *bridgeConfigService) SetPublisher(p ConfigPublisher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configPublisher = p
}
