// Package config loads the progresso run configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	progresso "github.com/axondata/go-progresso"
)

// Config is the run configuration. Pacing thresholds are fixed and not part of it.
type Config struct {
	Input        string  `yaml:"input"`
	OutputDir    string  `yaml:"output_dir"`
	OutputPrefix string  `yaml:"output_prefix"`
	Backend      string  `yaml:"backend"`
	ServiceDir   string  `yaml:"service_dir"`
	Sc           Sc      `yaml:"sc"`
	Systemd      Systemd `yaml:"systemd"`
	StopFile     string  `yaml:"stop_file"`
	StrictParse  bool    `yaml:"strict_parse"`
	MetricsAddr  string  `yaml:"metrics_addr"`
	Log          Log     `yaml:"log"`
}

// Sc configures the sc backend
type Sc struct {
	Path string `yaml:"path"`
}

// Systemd configures the systemd backend
type Systemd struct {
	UseSudo       *bool  `yaml:"use_sudo"`
	SudoCommand   string `yaml:"sudo_command"`
	SystemctlPath string `yaml:"systemctl_path"`
}

// Log configures structured logging
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns the defaults used when no configuration file exists.
func DefaultConfig() Config {
	return Config{
		Input:        progresso.DefaultInputFile,
		OutputDir:    ".",
		OutputPrefix: progresso.DefaultOutputPrefix,
		Backend:      progresso.DefaultBackendType().String(),
		ServiceDir:   "/etc/service",
		StopFile:     progresso.DefaultStopFile,
		Log: Log{
			Level:  "INFO",
			Format: "text",
		},
	}
}

// Load reads configuration from a yaml file. Missing files fall back to defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate fills empty fields with defaults and rejects unusable values
func (c *Config) Validate() error {
	def := DefaultConfig()
	if strings.TrimSpace(c.Input) == "" {
		return errors.New("configuration must name an input document")
	}
	if c.OutputDir == "" {
		c.OutputDir = def.OutputDir
	}
	if c.OutputPrefix == "" {
		c.OutputPrefix = def.OutputPrefix
	}
	if c.Backend == "" {
		c.Backend = def.Backend
	}
	if _, err := progresso.ParseBackendType(c.Backend); err != nil {
		return fmt.Errorf("backend: %w", err)
	}
	if c.StopFile == "" {
		c.StopFile = def.StopFile
	}
	return nil
}

// BackendType returns the parsed backend kind
func (c *Config) BackendType() progresso.BackendType {
	bt, err := progresso.ParseBackendType(c.Backend)
	if err != nil {
		return progresso.BackendUnknown
	}
	return bt
}

// BackendConfig maps the configuration onto progresso.BackendConfig
func (c *Config) BackendConfig() progresso.BackendConfig {
	bc := progresso.BackendConfig{
		ServiceDir:    c.ServiceDir,
		SudoCommand:   c.Systemd.SudoCommand,
		SystemctlPath: c.Systemd.SystemctlPath,
		ScPath:        c.Sc.Path,
		UseSudo:       os.Geteuid() > 0,
	}
	if c.Systemd.UseSudo != nil {
		bc.UseSudo = *c.Systemd.UseSudo
	}
	return bc
}
