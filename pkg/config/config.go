package config

import (
	"fmt"
	"os"

	"github.com/wsprhub/wsprd/pkg/wspr"
	"gopkg.in/yaml.v2"
)

// Config represents the wsprd configuration
type Config struct {
	Station struct {
		Callsign string `yaml:"callsign"`
		Grid     string `yaml:"grid"`
		PowerDBm int    `yaml:"power_dbm"`
	} `yaml:"station"`

	Web struct {
		Port        int    `yaml:"port"`
		BindAddress string `yaml:"bind_address"`
	} `yaml:"web"`

	Storage struct {
		DatabasePath string `yaml:"database_path"`
		MaxEncodings int    `yaml:"max_encodings"`
	} `yaml:"storage"`

	Logging struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		Console    bool   `yaml:"console"`
		Structured bool   `yaml:"structured"`
		MaxSize    int    `yaml:"max_size"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAge     int    `yaml:"max_age"`
		Compress   bool   `yaml:"compress"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults
	if config.Station.PowerDBm == 0 {
		config.Station.PowerDBm = 23 // 200 mW, the common WSPR level
	}
	if config.Web.Port == 0 {
		config.Web.Port = 8080
	}
	if config.Web.BindAddress == "" {
		config.Web.BindAddress = "0.0.0.0"
	}
	if config.Storage.DatabasePath == "" {
		config.Storage.DatabasePath = "./wsprd.db"
	}
	if config.Storage.MaxEncodings == 0 {
		config.Storage.MaxEncodings = 10000
	}
	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}
	if config.Logging.MaxSize == 0 {
		config.Logging.MaxSize = 10 // megabytes
	}
	if config.Logging.MaxBackups == 0 {
		config.Logging.MaxBackups = 5
	}
	if config.Logging.MaxAge == 0 {
		config.Logging.MaxAge = 30 // days
	}

	return &config, nil
}

// Validate checks if the configuration is valid. The station fields
// must actually encode, not just be present.
func (c *Config) Validate() error {
	if c.Station.Callsign == "" {
		return fmt.Errorf("station callsign is required")
	}
	if c.Station.Grid == "" {
		return fmt.Errorf("station grid is required")
	}
	if _, err := wspr.EncodeCallsign(c.Station.Callsign); err != nil {
		return fmt.Errorf("station callsign %q: %w", c.Station.Callsign, err)
	}
	if _, err := wspr.EncodeGrid(c.Station.Grid); err != nil {
		return fmt.Errorf("station grid %q: %w", c.Station.Grid, err)
	}
	if _, err := wspr.EncodePower(c.Station.PowerDBm); err != nil {
		return fmt.Errorf("station power %d dBm: %w", c.Station.PowerDBm, err)
	}
	if c.Web.Port < 1 || c.Web.Port > 65535 {
		return fmt.Errorf("invalid web port: %d", c.Web.Port)
	}
	return nil
}
