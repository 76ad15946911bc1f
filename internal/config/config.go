// Package config provides YAML-based configuration loading for Pitwall.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level Pitwall configuration, loaded from
// pitwall.yaml. It is constructed once at process start and passed by
// reference into every stage; no stage re-reads the file.
type Config struct {
	Paths    PathsConfig    `yaml:"paths"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// PathsConfig holds the data and SQL directory layout.
type PathsConfig struct {
	RawData       string `yaml:"raw_data"`
	InterimData   string `yaml:"interim_data"`
	ProcessedData string `yaml:"processed_data"`
	SQLDir        string `yaml:"sql_dir"`
}

// DatabaseConfig selects the analytical store target. The default
// "sqlite" driver writes a database file under the processed data
// directory; "mysql" loads into a server instead.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	Name   string `yaml:"name"`
}

// LoggingConfig controls logger construction.
type LoggingConfig struct {
	Debug bool `yaml:"debug"`
}

// Load reads a YAML config file from path and returns a validated
// Config. A missing file is not an error: the defaults describe a
// conventional data/ layout.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := &Config{}
			cfg.applyDefaults()
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Paths.RawData == "" {
		c.Paths.RawData = "data/raw"
	}
	if c.Paths.InterimData == "" {
		c.Paths.InterimData = "data/interim"
	}
	if c.Paths.ProcessedData == "" {
		c.Paths.ProcessedData = "data/processed"
	}
	if c.Paths.SQLDir == "" {
		c.Paths.SQLDir = "sql"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Path == "" {
		c.Database.Path = filepath.Join(c.Paths.ProcessedData, "pitwall.db")
	}
	if c.Database.Host == "" {
		c.Database.Host = "127.0.0.1"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 3306
	}
	if c.Database.Name == "" {
		c.Database.Name = "pitwall"
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Sprintf("database.driver must be sqlite or mysql, got %q", c.Database.Driver))
	}
	if c.Database.Port < 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port %d out of range", c.Database.Port))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// MergedFile is the path of the merged intermediate artifact.
func (c *Config) MergedFile() string {
	return filepath.Join(c.Paths.InterimData, "cleaned_merged.csv")
}

// MasterTableFile is the path of the final master table artifact.
func (c *Config) MasterTableFile() string {
	return filepath.Join(c.Paths.ProcessedData, "master_race_table.csv")
}

// ViewsFile is the path of the analytical view definitions.
func (c *Config) ViewsFile() string {
	return filepath.Join(c.Paths.SQLDir, "views.sql")
}

// CleanFile is the path of one table's cleaned intermediate artifact.
func (c *Config) CleanFile(table string) string {
	return filepath.Join(c.Paths.InterimData, table+"_clean.csv")
}

// RawFile is the path of one table's raw source file.
func (c *Config) RawFile(table string) string {
	return filepath.Join(c.Paths.RawData, table+".csv")
}
