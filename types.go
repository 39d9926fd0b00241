package southbound

// Re-export types from the types sub-package so hosts can depend on the
// root package alone.

import (
	"github.com/nanoncore/cmw-southbound/types"
)

// Type aliases
type (
	Driver       = types.Driver
	DeviceConfig = types.DeviceConfig
	CLIExecutor  = types.CLIExecutor
	SNMPExecutor = types.SNMPExecutor
	Transport    = types.Transport
	ConfigSource = types.ConfigSource
	PingOptions  = types.PingOptions
	ParseWarning = types.ParseWarning
)

// Re-export constants
const (
	TransportSSH    = types.TransportSSH
	TransportTelnet = types.TransportTelnet

	ConfigRunning   = types.ConfigRunning
	ConfigStartup   = types.ConfigStartup
	ConfigCandidate = types.ConfigCandidate

	InterfaceNamesLong  = types.InterfaceNamesLong
	InterfaceNamesShort = types.InterfaceNamesShort
	InterfaceNamesRaw   = types.InterfaceNamesRaw
)

// Re-export sentinel errors for errors.Is
var (
	ErrConnection         = types.ErrConnection
	ErrCommandTimeout     = types.ErrCommandTimeout
	ErrUnsupportedCommand = types.ErrUnsupportedCommand
	ErrUsage              = types.ErrUsage
	ErrNormalization      = types.ErrNormalization
)
