package endpoints

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Profile describes one remote search index the widget can talk to.
type Profile struct {
	Name          string            `yaml:"name"`
	Endpoint      string            `yaml:"endpoint"`
	Transport     string            `yaml:"transport"` // xhr or jsonp
	CallbackParam string            `yaml:"callback_param"`
	Timeout       string            `yaml:"timeout"`
	Username      string            `yaml:"username"`
	Password      string            `yaml:"password"`
	Headers       map[string]string `yaml:"headers,omitempty"`
}

// TimeoutDuration returns the profile timeout as a time.Duration.
func (p *Profile) TimeoutDuration() time.Duration {
	if p.Timeout == "" {
		return 5 * time.Second
	}
	d, err := time.ParseDuration(p.Timeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// Config represents the endpoint profiles configuration.
type Config struct {
	Profiles []Profile `yaml:"profiles"`
}

// LoadConfig loads endpoint profiles from a YAML file.
func LoadConfig(configPath string) (*Config, error) {
	configPath = os.ExpandEnv(configPath)

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Expand environment variables in the YAML content, so profiles can
	// reference credentials without inlining them.
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse endpoint profiles: %w", err)
	}
	return &cfg, nil
}

// Lookup returns the named profile, or nil when it does not exist.
func (c *Config) Lookup(name string) *Profile {
	if c == nil || name == "" {
		return nil
	}
	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			return &c.Profiles[i]
		}
	}
	return nil
}
