// Package config loads the inventory source file.
//
// The source file names the switch to query and carries the grouping rules,
// cache and transport settings. Runtime settings such as log level and output
// format live in viper and are bound in the commands package.
//
// The --inventory flag names the file explicitly; otherwise the first
// existing SearchPaths entry is used.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"lldpinventory/internal/adapter"
	"lldpinventory/internal/inventory"

	"gopkg.in/yaml.v3"
)

// Plugin tokens accepted in the plugin field
const (
	PluginName      = "lldp"
	PluginNameLong  = "lldpinventory"
	DefaultCacheTTL = time.Hour
)

// Config is the inventory source file
type Config struct {
	Plugin     string `yaml:"plugin" validate:"required,oneof=lldp lldpinventory"`
	SwitchAddr string `yaml:"sw_addr" validate:"required,ipv4"`

	Compose          map[string]string      `yaml:"compose,omitempty"`
	Groups           map[string]string      `yaml:"groups,omitempty"`
	KeyedGroups      []inventory.KeyedGroup `yaml:"keyed_groups,omitempty"`
	Strict           bool                   `yaml:"strict"`
	LeadingSeparator *bool                  `yaml:"leading_separator,omitempty"`

	Cache           bool     `yaml:"cache"`
	CacheTimeout    Duration `yaml:"cache_timeout,omitempty"`
	CacheConnection string   `yaml:"cache_connection,omitempty"`

	Transport string    `yaml:"transport,omitempty" validate:"oneof=exec native"`
	Command   string    `yaml:"command,omitempty"`
	SSH       SSHConfig `yaml:"ssh,omitempty"`

	Verify        bool     `yaml:"verify"`
	VerifyTimeout Duration `yaml:"verify_timeout,omitempty"`
}

// SSHConfig holds connection settings for the switch
type SSHConfig struct {
	Binary       string   `yaml:"binary,omitempty"`
	User         string   `yaml:"user,omitempty"`
	Port         int      `yaml:"port,omitempty" validate:"min=0,max=65535"`
	IdentityFile string   `yaml:"identity_file,omitempty"`
	KnownHosts   string   `yaml:"known_hosts,omitempty"`
	Timeout      Duration `yaml:"timeout,omitempty"`
	Args         []string `yaml:"args,omitempty"`
}

// Load finds the source file and loads it. explicit overrides the search.
func Load(explicit string) (*Config, string, error) {
	path := explicit
	if path == "" {
		path = FindConfigPath()
	}
	if path == "" {
		return nil, "", fmt.Errorf("no inventory source file found (searched %s)", strings.Join(SearchPaths(), ", "))
	}

	cfg, err := LoadFromPath(path)
	return cfg, path, err
}

// LoadFromPath verifies, reads and validates the source file at path
func LoadFromPath(path string) (*Config, error) {
	if err := VerifyFile(path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse decodes and validates a source document
func Parse(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("parse config: empty document")
		}
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Transport == "" {
		c.Transport = string(adapter.TransportExec)
	}
	if c.Command == "" {
		c.Command = adapter.DefaultCommand
	}
	if c.CacheTimeout == 0 {
		c.CacheTimeout = Duration(DefaultCacheTTL)
	}
	if c.LeadingSeparator == nil {
		on := true
		c.LeadingSeparator = &on
	}
}

// Rules returns the grouping rules of the source
func (c *Config) Rules() inventory.GroupingConfig {
	return inventory.GroupingConfig{
		Compose:     c.Compose,
		Groups:      c.Groups,
		KeyedGroups: c.KeyedGroups,
		Strict:      c.Strict,
	}
}

// UseLeadingSeparator reports the effective leading_separator setting
func (c *Config) UseLeadingSeparator() bool {
	return c.LeadingSeparator == nil || *c.LeadingSeparator
}

// FetcherConfig converts the transport settings for the adapter package
func (c *Config) FetcherConfig() adapter.SSHConfig {
	return adapter.SSHConfig{
		Binary:         c.SSH.Binary,
		User:           c.SSH.User,
		Port:           c.SSH.Port,
		IdentityFile:   ExpandHome(c.SSH.IdentityFile),
		KnownHostsFile: ExpandHome(c.SSH.KnownHosts),
		Timeout:        c.SSH.Timeout.Duration(),
		Command:        c.Command,
		ExtraArgs:      c.SSH.Args,
	}
}

// TransportType returns the configured transport
func (c *Config) TransportType() adapter.TransportType {
	return adapter.TransportType(c.Transport)
}

// CachePath returns cache_connection or the default cache location
func (c *Config) CachePath() string {
	if c.CacheConnection != "" {
		return ExpandHome(c.CacheConnection)
	}
	return DefaultCachePath()
}
