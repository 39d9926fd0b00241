package cli

import (
	"fmt"
	"strings"

	"github.com/nanoncore/cmw-southbound/types"
	"github.com/nanoncore/cmw-southbound/vendors/common"
)

// ResolveConfig returns a copy of cfg with OptionalArgs applied and defaults filled in
func ResolveConfig(cfg *types.DeviceConfig) (*types.DeviceConfig, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	c := *cfg
	opts := cfg.OptionalArgs

	if v, ok := common.GetOptionString(opts, "transport"); ok && v != "" {
		c.Transport = types.Transport(strings.ToLower(v))
	}
	if c.Transport == "" {
		c.Transport = types.TransportSSH
	}
	if c.Transport != types.TransportSSH && c.Transport != types.TransportTelnet {
		return nil, fmt.Errorf("unsupported transport %q", c.Transport)
	}

	if v, ok := common.GetOptionInt(opts, "port"); ok && c.Port == 0 {
		c.Port = v
	}
	if c.Port == 0 {
		c.Port = types.DefaultSSHPort
		if c.Transport == types.TransportTelnet {
			c.Port = types.DefaultTelnetPort
		}
	}

	if v, ok := common.GetOptionString(opts, "secret", "super_password"); ok && c.Secret == "" {
		c.Secret = v
	}

	if v, ok := common.GetOptionDuration(opts, "timeout", "read_timeout"); ok && c.Timeout == 0 {
		c.Timeout = v
	}
	if c.Timeout == 0 {
		c.Timeout = types.DefaultTimeout
	}
	if v, ok := common.GetOptionDuration(opts, "conn_timeout", "connect_timeout"); ok && c.ConnectTimeout == 0 {
		c.ConnectTimeout = v
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = types.DefaultConnectTimeout
	}
	if v, ok := common.GetOptionDuration(opts, "idle_timeout", "session_timeout"); ok && c.IdleTimeout == 0 {
		c.IdleTimeout = v
	}

	if v, ok := common.GetOptionString(opts, "prompt_pattern"); ok && c.Prompts.Prompt == "" {
		c.Prompts.Prompt = v
	}
	if v, ok := common.GetOptionString(opts, "more_pattern"); ok && c.Prompts.More == "" {
		c.Prompts.More = v
	}
	if v, ok := common.GetOptionList(opts, ";", "setup_commands"); ok && c.Prompts.SetupCommands == nil {
		c.Prompts.SetupCommands = v
	}
	if v, ok := common.GetOptionBool(opts, "disable_paging"); ok && !v && c.Prompts.SetupCommands == nil {
		c.Prompts.SetupCommands = []string{}
	}
	if c.Prompts.SetupCommands == nil {
		c.Prompts.SetupCommands = append([]string(nil), DefaultSetupCommands...)
	}

	if v, ok := common.GetOptionString(opts, "interface_names"); ok && c.InterfaceNames == "" {
		c.InterfaceNames = types.InterfaceNameMode(strings.ToLower(v))
	}
	switch c.InterfaceNames {
	case "":
		c.InterfaceNames = types.InterfaceNamesLong
	case types.InterfaceNamesLong, types.InterfaceNamesShort, types.InterfaceNamesRaw:
	default:
		return nil, fmt.Errorf("unsupported interface name mode %q", c.InterfaceNames)
	}

	if v, ok := common.GetOptionString(opts, "snmp_community"); ok && c.SNMP.Community == "" {
		c.SNMP.Community = v
	}
	if v, ok := common.GetOptionString(opts, "snmp_version"); ok && c.SNMP.Version == "" {
		c.SNMP.Version = v
	}
	if v, ok := common.GetOptionInt(opts, "snmp_port"); ok && c.SNMP.Port == 0 {
		c.SNMP.Port = v
	}

	if c.Name == "" {
		c.Name = c.Address
	}
	return &c, nil
}
