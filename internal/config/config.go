// =============================================================================
// Sample Reducer - Configuration Module
// =============================================================================
//
// This module loads the application configuration from a YAML file and
// layers environment and command-line overrides on top of it.
//
// PRECEDENCE (lowest to highest):
//   1. Built-in defaults
//   2. config.yaml
//   3. REDUCER_* environment variables and flags (see Apply)
//
// Every setting has one key, used verbatim in YAML, upper-cased with the
// REDUCER_ prefix in the environment.
//
// =============================================================================

package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/sample-reducer/internal/errors"
	"github.com/ginjaninja78/sample-reducer/internal/logging"
	"github.com/ginjaninja78/sample-reducer/internal/validation"
)

// Setting keys.
const (
	KeyInventoryDB      = "inventory_db"
	KeyOutputDir        = "output_dir"
	KeySectionsFile     = "sections_file"
	KeyLogLevel         = "log_level"
	KeyLogJSON          = "log_json"
	KeyWriteReport      = "write_report"
	KeyReportNameFormat = "report_name_format"
	KeyValidationPolicy = "validation_policy"
)

// Keys lists every setting key.
var Keys = []string{
	KeyInventoryDB,
	KeyOutputDir,
	KeySectionsFile,
	KeyLogLevel,
	KeyLogJSON,
	KeyWriteReport,
	KeyReportNameFormat,
	KeyValidationPolicy,
}

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the application configuration.
type Config struct {
	// =========================================================================
	// STORAGE SETTINGS
	// =========================================================================

	// InventoryDB is the path of the SQLite inventory database.
	// Default: "./inventory.db"
	InventoryDB string `yaml:"inventory_db"`

	// SectionsFile is the default YAML/JSON file of notebook sections used
	// when --sections is not given.
	SectionsFile string `yaml:"sections_file"`

	// =========================================================================
	// REPORT SETTINGS
	// =========================================================================

	// OutputDir is where run reports are written.
	// Default: "./reports"
	OutputDir string `yaml:"output_dir"`

	// WriteReport controls whether a report is written after each run.
	// Default: true
	WriteReport *bool `yaml:"write_report"`

	// ReportNameFormat is the report file name pattern.
	// Placeholders: {timestamp}, {run_id}, {status}
	// Default: "{timestamp}_{status}_{run_id}"
	ReportNameFormat string `yaml:"report_name_format"`

	// =========================================================================
	// BEHAVIOUR SETTINGS
	// =========================================================================

	// ValidationPolicy is "all-or-nothing" or "skip-invalid".
	// Default: "all-or-nothing"
	ValidationPolicy string `yaml:"validation_policy"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel is one of debug, info, warn, error.
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogJSON switches to JSON log output.
	LogJSON bool `yaml:"log_json"`
}

// ReportsEnabled reports whether run reports should be written.
func (c *Config) ReportsEnabled() bool {
	return c.WriteReport == nil || *c.WriteReport
}

// Policy returns the parsed validation policy.
func (c *Config) Policy() validation.Policy {
	p, _ := validation.ParsePolicy(c.ValidationPolicy)
	return p
}

// =============================================================================
// LOADING FUNCTIONS
// =============================================================================

// Default returns a configuration with every default applied.
func Default() *Config {
	c := &Config{}
	applyDefaults(c)
	return c
}

// Load reads the configuration file at configPath.
//
// PARAMETERS:
//   - configPath: Path to the YAML file.
//   - optional: When true a missing file yields the defaults.
//
// RETURNS:
//   - The loaded, defaulted and validated configuration.
func Load(configPath string, optional bool) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) && optional {
		return Default(), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return &config, nil
}

// Apply overrides settings from an external source such as the environment
// or command-line flags. get returns the value of a key and whether the
// source sets it.
func (c *Config) Apply(get func(key string) (string, bool)) error {
	for _, key := range Keys {
		value, ok := get(key)
		if !ok {
			continue
		}

		switch key {
		case KeyInventoryDB:
			c.InventoryDB = value
		case KeyOutputDir:
			c.OutputDir = value
		case KeySectionsFile:
			c.SectionsFile = value
		case KeyLogLevel:
			c.LogLevel = value
		case KeyReportNameFormat:
			c.ReportNameFormat = value
		case KeyValidationPolicy:
			c.ValidationPolicy = value
		case KeyLogJSON:
			b, err := strconv.ParseBool(value)
			if err != nil {
				return errors.Wrapf(err, "%s", key)
			}
			c.LogJSON = b
		case KeyWriteReport:
			b, err := strconv.ParseBool(value)
			if err != nil {
				return errors.Wrapf(err, "%s", key)
			}
			c.WriteReport = &b
		}
	}

	applyDefaults(c)
	return c.Validate()
}

// applyDefaults sets default values for empty fields.
func applyDefaults(config *Config) {
	if config.InventoryDB == "" {
		config.InventoryDB = "./inventory.db"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./reports"
	}
	if config.ReportNameFormat == "" {
		config.ReportNameFormat = "{timestamp}_{status}_{run_id}"
	}
	if config.ValidationPolicy == "" {
		config.ValidationPolicy = validation.AllOrNothing.String()
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
}

// Validate checks settings that cannot be defaulted.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := validation.ParsePolicy(c.ValidationPolicy); err != nil {
		return err
	}
	return nil
}
