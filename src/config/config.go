package config

import (
	"fmt"
	"os"

	"confluence-engine/src/models"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new MConfig instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.applyDefaults()

	// 3. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// applyDefaults fills in the tunables most deployments never touch.
func (c *Config) applyDefaults() {
	if c.Exchange.CloseHour == 0 && c.Exchange.CloseMinute == 0 {
		c.Exchange.CloseHour = 16
	}
	if c.Engine.BaseIntervalMinutes <= 0 {
		c.Engine.BaseIntervalMinutes = 5
	}
	if c.Engine.ClusterWindowMinutes <= 0 {
		c.Engine.ClusterWindowMinutes = 5
	}
	if c.Engine.ClusterConfidenceWeight <= 0 && c.Engine.DecompConfidenceWeight <= 0 {
		c.Engine.ClusterConfidenceWeight = 0.55
		c.Engine.DecompConfidenceWeight = 0.45
	}
	if c.Engine.ProximityThresholdPct <= 0 {
		c.Engine.ProximityThresholdPct = 1.5
	}
	if c.Engine.LearningMaxAgeMinutes <= 0 {
		c.Engine.LearningMaxAgeMinutes = 240
	}
	if c.Engine.LearningStepBars <= 0 {
		c.Engine.LearningStepBars = 12
	}
	if c.Engine.ScanHistorySize <= 0 {
		c.Engine.ScanHistorySize = 100
	}

	w := &c.Engine.Options
	if w.UnusualActivity <= 0 && w.OpenInterest <= 0 && w.TimeConfluence <= 0 {
		w.UnusualActivity = 0.25
		w.OpenInterest = 0.20
		w.TimeConfluence = 0.20
		w.IVEnvironment = 0.15
		w.MaxPain = 0.10
		w.RiskReward = 0.10
	}
	if c.DataSource.HistoryYears <= 0 {
		c.DataSource.HistoryYears = 2
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	// Validate App configuration (Flattened)
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Validate Server configuration (Flattened)
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}

	// Validate Storage configuration
	if c.Storage.DBType == "" {
		return fmt.Errorf("database type cannot be empty")
	}
	if c.Storage.DBType == "sqlite" && c.Storage.DBPath == "" {
		return fmt.Errorf("database path cannot be empty for sqlite")
	}
	if c.Storage.DBType == "postgres" && c.Storage.DBConnectionString == "" {
		return fmt.Errorf("connection string cannot be empty for postgres")
	}

	// Validate Network configuration
	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if c.Network.ConcurrentRequests <= 0 {
		return fmt.Errorf("concurrent requests must be greater than 0")
	}

	// Validate Engine configuration
	if c.Engine.ClusterConfidenceWeight < 0 || c.Engine.DecompConfidenceWeight < 0 {
		return fmt.Errorf("confidence weights cannot be negative")
	}
	sum := c.Engine.ClusterConfidenceWeight + c.Engine.DecompConfidenceWeight
	if sum < 0.99 || sum > 1.01 {
		return fmt.Errorf("confidence weights must sum to 1.0, got %.2f", sum)
	}
	w := c.Engine.Options
	optSum := w.UnusualActivity + w.OpenInterest + w.TimeConfluence + w.IVEnvironment + w.MaxPain + w.RiskReward
	if optSum < 0.99 || optSum > 1.01 {
		return fmt.Errorf("options composite weights must sum to 1.0, got %.2f", optSum)
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
