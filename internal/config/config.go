package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	goconfig "github.com/tpodg/go-config"
)

const (
	DefaultConfigFileName = ".serverprep.yaml"
	EnvPrefix             = "SERVERPREP"
)

type Config struct {
	// StepTimeout bounds each step. Zero keeps the runner default.
	StepTimeout time.Duration `yaml:"step_timeout"`
	// Tasks applies to every target, servers merge their own tasks on top.
	Tasks   map[string]any `yaml:"tasks"`
	Servers []ServerConfig `yaml:"servers"`
}

type ServerConfig struct {
	Name             string         `yaml:"name"`
	Address          string         `yaml:"address"`
	User             UserConfig     `yaml:"user"`
	KnownHostsPath   string         `yaml:"known_hosts"`
	UseAgent         *bool          `yaml:"use_agent"`
	HandshakeTimeout time.Duration  `yaml:"handshake_timeout"`
	Tasks            map[string]any `yaml:"tasks"`
}

type UserConfig struct {
	Name         string `yaml:"name"`
	SSHKey       string `yaml:"ssh_key"`
	SudoPassword string `yaml:"sudo_password"`
}

// Load the configuration from the given file or default locations. Without
// any file the zero Config is returned, which plans the built-in defaults
// against the local host.
func Load(cfgFile string) (*Config, error) {
	path, err := findConfigFile(cfgFile)
	if err != nil {
		return nil, err
	}

	c := goconfig.New()
	if path != "" {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for %s: %w", path, err)
		}
		c.WithProviders(&goconfig.Yaml{Path: absPath})
	}

	c.WithProviders(&goconfig.Env{Prefix: EnvPrefix})

	cfg := &Config{}
	if err := c.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the server list.
func (c *Config) Validate() error {
	if c.StepTimeout < 0 {
		return errors.New("step_timeout cannot be negative")
	}
	seen := make(map[string]struct{}, len(c.Servers))
	for i, s := range c.Servers {
		if s.Name == "" {
			return fmt.Errorf("server %d has no name", i+1)
		}
		if s.Address == "" {
			return fmt.Errorf("server %s has no address", s.Name)
		}
		if s.User.Name == "" {
			return fmt.Errorf("server %s has no user name", s.Name)
		}
		if _, exists := seen[s.Name]; exists {
			return fmt.Errorf("duplicate server name: %s", s.Name)
		}
		seen[s.Name] = struct{}{}
	}
	return nil
}

// Server returns the server with the given name.
func (c *Config) Server(name string) (ServerConfig, bool) {
	for _, s := range c.Servers {
		if s.Name == name {
			return s, true
		}
	}
	return ServerConfig{}, false
}

func findConfigFile(cfgFile string) (string, error) {
	if cfgFile != "" {
		if _, err := os.Stat(cfgFile); err != nil {
			return "", fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
		return cfgFile, nil
	}

	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, DefaultConfigFileName)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	if _, err := os.Stat(DefaultConfigFileName); err == nil {
		return DefaultConfigFileName, nil
	}

	return "", nil
}
