package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration: the provisioning
// manifest plus the job launcher settings.
type Config struct {
	Environment EnvironmentConfig `yaml:"environment"`
	Steps       []Step            `yaml:"steps"`
	Launcher    LauncherConfig    `yaml:"launcher"`
	History     *HistoryConfig    `yaml:"history,omitempty"`
}

// EnvironmentConfig holds settings for the provisioned environment itself.
type EnvironmentConfig struct {
	Workspace string `yaml:"workspace"` // root for checkouts and unpacked resources
}

// StepKind enumerates the supported dependency step kinds.
type StepKind string

const (
	StepOSPackage     StepKind = "os_package"
	StepPythonPackage StepKind = "python_package"
	StepGitCheckout   StepKind = "git_checkout"
	StepResource      StepKind = "resource"
	StepCommand       StepKind = "command"
)

// Step is one ordered dependency step of the provisioning manifest.
// Steps execute in declared order; Requires may only reference steps
// declared earlier.
type Step struct {
	Name     string            `yaml:"name"`
	Kind     StepKind          `yaml:"kind"`
	Packages []string          `yaml:"packages,omitempty"` // os_package, python_package
	URL      string            `yaml:"url,omitempty"`      // git_checkout, resource
	Rev      string            `yaml:"rev,omitempty"`      // git_checkout: full commit hash pin
	Install  string            `yaml:"install,omitempty"`  // git_checkout: command run inside the checkout
	Dest     string            `yaml:"dest,omitempty"`     // resource: path under workspace
	Unpack   string            `yaml:"unpack,omitempty"`   // resource: "zip" or "tar.gz"
	Run      string            `yaml:"run,omitempty"`      // command
	Requires []string          `yaml:"requires,omitempty"`
	Tags     map[string]string `yaml:"tags,omitempty"` // additional metadata
}

// LauncherConfig represents job launch wrapper configuration.
type LauncherConfig struct {
	Entrypoint []string `yaml:"entrypoint"`         // training entry point command
	JobIDEnv   string   `yaml:"job_id_env"`         // env var carrying the scheduler job identifier
	EnvFiles   []string `yaml:"env_files,omitempty"` // KEY=VALUE files resolved into the child environment
	LogDir     string   `yaml:"log_dir"`            // directory for <job id>.txt capture files
	Trace      bool     `yaml:"trace"`              // log every wrapper action at debug level
}

// HistoryConfig enables the optional sqlite run ledger.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// Load loads configuration from the specified file
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	if err := loadEnvFile(); err != nil {
		// Don't fail if .env doesn't exist, just log it
		fmt.Fprintf(os.Stderr, "Note: .env file not found or couldn't be loaded: %v\n", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// applyDefaults fills zero-valued fields with their documented defaults.
func (c *Config) applyDefaults() {
	if c.Environment.Workspace == "" {
		c.Environment.Workspace = "./mlenv-workspace"
	}
	if len(c.Launcher.Entrypoint) == 0 {
		c.Launcher.Entrypoint = []string{"python", "train_extractive_qa.py"}
	}
	if c.Launcher.JobIDEnv == "" {
		c.Launcher.JobIDEnv = "JOB_ID"
	}
	if c.Launcher.LogDir == "" {
		c.Launcher.LogDir = "."
	}
}
