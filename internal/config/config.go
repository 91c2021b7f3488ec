// Package config provides pgbranch configuration management,
// including reading and writing .pgbranch.yml files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	pgbrancherrors "pgbranch.dev/pgbranch/internal/errors"
	"pgbranch.dev/pgbranch/internal/naming"
)

// FileNames are the recognized configuration file names, checked in order.
var FileNames = []string{".pgbranch.yml", ".pgbranch.yaml"}

// AuthMethod is one entry of the authentication preference order.
type AuthMethod string

const (
	AuthPassword    AuthMethod = "password"
	AuthEnvironment AuthMethod = "environment"
	AuthPgpass      AuthMethod = "pgpass"
	AuthService     AuthMethod = "service"
	AuthPrompt      AuthMethod = "prompt"
	AuthSystem      AuthMethod = "system"
)

// Config is the full pgbranch configuration. It is immutable for the
// lifetime of the engine; all defaults are applied during load.
type Config struct {
	Database     DatabaseConfig `yaml:"database"`
	Git          GitConfig      `yaml:"git"`
	Behavior     BehaviorConfig `yaml:"behavior"`
	PostCommands []PostCommand  `yaml:"post_commands,omitempty"`
}

// DatabaseConfig holds connection and naming settings.
type DatabaseConfig struct {
	Host             string     `yaml:"host"`
	Port             uint16     `yaml:"port"`
	User             string     `yaml:"user"`
	Password         string     `yaml:"password,omitempty"`
	TemplateDatabase string     `yaml:"template_database"`
	DatabasePrefix   string     `yaml:"database_prefix"`
	Auth             AuthConfig `yaml:"auth"`
}

// AuthConfig holds the authentication method preference order and
// per-method settings.
type AuthConfig struct {
	Methods           []AuthMethod `yaml:"methods"`
	PgpassFile        string       `yaml:"pgpass_file,omitempty"`
	ServiceName       string       `yaml:"service_name,omitempty"`
	PromptForPassword bool         `yaml:"prompt_for_password"`
}

// GitConfig controls how git branch events map to database branches.
type GitConfig struct {
	AutoCreateOnBranch bool     `yaml:"auto_create_on_branch"`
	AutoSwitchOnBranch bool     `yaml:"auto_switch_on_branch"`
	MainBranch         string   `yaml:"main_branch"`
	BranchFilterRegex  string   `yaml:"branch_filter_regex,omitempty"`
	ExcludeBranches    []string `yaml:"exclude_branches"`
}

// BehaviorConfig holds cleanup and naming behavior.
type BehaviorConfig struct {
	AutoCleanup    bool            `yaml:"auto_cleanup"`
	MaxBranches    int             `yaml:"max_branches"`
	NamingStrategy naming.Strategy `yaml:"naming_strategy"`
}

// Default returns the configuration used when a field is absent from the
// config file. Every default is stated here, once.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:             "localhost",
			Port:             5432,
			User:             "postgres",
			TemplateDatabase: "template0",
			DatabasePrefix:   "pgbranch",
			Auth: AuthConfig{
				Methods: []AuthMethod{AuthEnvironment, AuthPgpass, AuthPassword, AuthPrompt},
			},
		},
		Git: GitConfig{
			AutoCreateOnBranch: true,
			AutoSwitchOnBranch: true,
			MainBranch:         "main",
			ExcludeBranches:    []string{"main", "master"},
		},
		Behavior: BehaviorConfig{
			AutoCleanup:    false,
			MaxBranches:    10,
			NamingStrategy: naming.StrategyPrefix,
		},
	}
}

// Load reads and validates the configuration file at path. Absent fields
// take their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pgbrancherrors.NewConfigError(path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, pgbrancherrors.NewConfigError(path, err)
	}

	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, pgbrancherrors.NewConfigError(path, err)
	}

	return cfg, nil
}

// applyDefaults restores defaults for fields that were set to their zero
// value by an explicit empty entry in the file.
func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Database.Host == "" {
		cfg.Database.Host = def.Database.Host
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = def.Database.Port
	}
	if cfg.Database.User == "" {
		cfg.Database.User = def.Database.User
	}
	if cfg.Database.TemplateDatabase == "" {
		cfg.Database.TemplateDatabase = def.Database.TemplateDatabase
	}
	if cfg.Database.DatabasePrefix == "" {
		cfg.Database.DatabasePrefix = def.Database.DatabasePrefix
	}
	if len(cfg.Database.Auth.Methods) == 0 {
		cfg.Database.Auth.Methods = def.Database.Auth.Methods
	}
	if cfg.Git.MainBranch == "" {
		cfg.Git.MainBranch = def.Git.MainBranch
	}
	if cfg.Behavior.MaxBranches == 0 {
		cfg.Behavior.MaxBranches = def.Behavior.MaxBranches
	}
	if cfg.Behavior.NamingStrategy == "" {
		cfg.Behavior.NamingStrategy = def.Behavior.NamingStrategy
	}
}

// Validate checks the configuration for values the engine cannot work with.
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("database host cannot be empty")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database port must be greater than 0")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user cannot be empty")
	}
	if c.Database.TemplateDatabase == "" {
		return fmt.Errorf("template database cannot be empty")
	}
	if c.Database.DatabasePrefix == "" {
		return fmt.Errorf("database prefix cannot be empty")
	}
	switch c.Behavior.NamingStrategy {
	case naming.StrategyPrefix, naming.StrategySuffix, naming.StrategyReplace:
	default:
		return fmt.Errorf("unknown naming strategy %q", c.Behavior.NamingStrategy)
	}
	if c.Git.BranchFilterRegex != "" {
		if _, err := regexp.Compile(c.Git.BranchFilterRegex); err != nil {
			return fmt.Errorf("invalid branch filter regex: %w", err)
		}
	}
	for i := range c.PostCommands {
		if err := c.PostCommands[i].validate(); err != nil {
			return fmt.Errorf("post_commands[%d]: %w", i, err)
		}
	}
	return nil
}

// Save writes the configuration to path as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// DatabaseName resolves the physical database name for a branch using the
// configured naming strategy and prefix.
func (c *Config) DatabaseName(branch string) string {
	return naming.Resolve(branch, c.Behavior.NamingStrategy, c.Database.DatabasePrefix)
}

// Find walks up from dir looking for a recognized configuration file.
// It returns the empty string when no file exists; that is not an error.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for {
		for _, name := range FileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}
