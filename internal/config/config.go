// Package config loads cmwctl settings from a file and CMW_* environment variables.
package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/nanoncore/cmw-southbound/internal/logging"
	"github.com/nanoncore/cmw-southbound/types"
)

// EnvPrefix prefixes every environment override, e.g. CMW_DEFAULTS_TIMEOUT
const EnvPrefix = "CMW"

// Config is the cmwctl configuration
type Config struct {
	Log      logging.Config          `mapstructure:"log"`
	Defaults DeviceConfig            `mapstructure:"defaults"`
	Devices  map[string]DeviceConfig `mapstructure:"devices"`
}

// DeviceConfig is one devices entry. Zero fields inherit from defaults.
type DeviceConfig struct {
	Type           string            `mapstructure:"type"`
	Address        string            `mapstructure:"address"`
	Port           int               `mapstructure:"port"`
	Transport      string            `mapstructure:"transport"`
	Username       string            `mapstructure:"username"`
	Password       string            `mapstructure:"password"`
	Secret         string            `mapstructure:"secret"`
	Timeout        time.Duration     `mapstructure:"timeout"`
	ConnectTimeout time.Duration     `mapstructure:"connect_timeout"`
	IdleTimeout    time.Duration     `mapstructure:"idle_timeout"`
	InterfaceNames string            `mapstructure:"interface_names"`
	Prompts        PromptConfig      `mapstructure:"prompts"`
	SNMP           SNMPConfig        `mapstructure:"snmp"`
	OptionalArgs   map[string]string `mapstructure:"optional_args"`
}

// PromptConfig mirrors types.PromptConfig
type PromptConfig struct {
	Prompt        string   `mapstructure:"prompt"`
	More          string   `mapstructure:"more"`
	Username      string   `mapstructure:"username"`
	Password      string   `mapstructure:"password"`
	AuthFailure   string   `mapstructure:"auth_failure"`
	SetupCommands []string `mapstructure:"setup_commands"`
}

// SNMPConfig mirrors types.SNMPConfig
type SNMPConfig struct {
	Community string `mapstructure:"community"`
	Version   string `mapstructure:"version"`
	Port      int    `mapstructure:"port"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.output", "console")
	v.SetDefault("log.file_path", "./logs/cmwctl.log")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age", 30)

	v.SetDefault("defaults.type", "h3c_cmw")
	v.SetDefault("defaults.transport", string(types.TransportSSH))
	v.SetDefault("defaults.timeout", types.DefaultTimeout)
	v.SetDefault("defaults.connect_timeout", types.DefaultConnectTimeout)
	v.SetDefault("defaults.interface_names", string(types.InterfaceNamesLong))
}

// Load reads path when given. Without a file only defaults and the
// environment apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// DeviceNames lists the configured devices, sorted
func (c *Config) DeviceNames() []string {
	names := make([]string, 0, len(c.Devices))
	for name := range c.Devices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Device merges defaults into the named entry. It also returns the
// registry type of the device. Names match case-insensitively, since viper
// stores map keys lowercased.
func (c *Config) Device(name string) (*types.DeviceConfig, string, error) {
	entry, ok := c.Devices[name]
	if !ok {
		entry, ok = c.Devices[strings.ToLower(name)]
	}
	if !ok {
		return nil, "", fmt.Errorf("device %q not found in config", name)
	}
	merged := entry.merge(c.Defaults)
	dc := merged.DeviceConfig(name)
	if dc.Address == "" {
		return nil, "", fmt.Errorf("device %q has no address", name)
	}
	return dc, merged.Type, nil
}

// Host builds an ad-hoc device from defaults, named after its address
func (c *Config) Host(address string) (*types.DeviceConfig, string) {
	merged := DeviceConfig{Address: address}.merge(c.Defaults)
	return merged.DeviceConfig(address), merged.Type
}

func (d DeviceConfig) merge(def DeviceConfig) DeviceConfig {
	out := d
	str := func(v *string, fallback string) {
		if *v == "" {
			*v = fallback
		}
	}
	str(&out.Type, def.Type)
	str(&out.Address, def.Address)
	str(&out.Transport, def.Transport)
	str(&out.Username, def.Username)
	str(&out.Password, def.Password)
	str(&out.Secret, def.Secret)
	str(&out.InterfaceNames, def.InterfaceNames)
	str(&out.Prompts.Prompt, def.Prompts.Prompt)
	str(&out.Prompts.More, def.Prompts.More)
	str(&out.Prompts.Username, def.Prompts.Username)
	str(&out.Prompts.Password, def.Prompts.Password)
	str(&out.Prompts.AuthFailure, def.Prompts.AuthFailure)
	str(&out.SNMP.Community, def.SNMP.Community)
	str(&out.SNMP.Version, def.SNMP.Version)
	if out.Port == 0 {
		out.Port = def.Port
	}
	if out.SNMP.Port == 0 {
		out.SNMP.Port = def.SNMP.Port
	}
	if out.Timeout == 0 {
		out.Timeout = def.Timeout
	}
	if out.ConnectTimeout == 0 {
		out.ConnectTimeout = def.ConnectTimeout
	}
	if out.IdleTimeout == 0 {
		out.IdleTimeout = def.IdleTimeout
	}
	if out.Prompts.SetupCommands == nil {
		out.Prompts.SetupCommands = def.Prompts.SetupCommands
	}
	if len(def.OptionalArgs) > 0 {
		args := make(map[string]string, len(def.OptionalArgs)+len(out.OptionalArgs))
		for k, v := range def.OptionalArgs {
			args[k] = v
		}
		for k, v := range out.OptionalArgs {
			args[k] = v
		}
		out.OptionalArgs = args
	}
	return out
}

// DeviceConfig converts the entry to the driver configuration
func (d DeviceConfig) DeviceConfig(name string) *types.DeviceConfig {
	return &types.DeviceConfig{
		Name:           name,
		Address:        d.Address,
		Port:           d.Port,
		Transport:      types.Transport(strings.ToLower(d.Transport)),
		Username:       d.Username,
		Password:       d.Password,
		Secret:         d.Secret,
		Timeout:        d.Timeout,
		ConnectTimeout: d.ConnectTimeout,
		IdleTimeout:    d.IdleTimeout,
		Prompts: types.PromptConfig{
			Prompt:        d.Prompts.Prompt,
			More:          d.Prompts.More,
			Username:      d.Prompts.Username,
			Password:      d.Prompts.Password,
			AuthFailure:   d.Prompts.AuthFailure,
			SetupCommands: d.Prompts.SetupCommands,
		},
		InterfaceNames: types.InterfaceNameMode(strings.ToLower(d.InterfaceNames)),
		SNMP: types.SNMPConfig{
			Community: d.SNMP.Community,
			Version:   d.SNMP.Version,
			Port:      d.SNMP.Port,
		},
		OptionalArgs: d.OptionalArgs,
	}
}
