package types

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Transport selects the byte-stream carrying the CLI session
type Transport string

const (
	TransportSSH    Transport = "ssh"
	TransportTelnet Transport = "telnet"
)

// InterfaceNameMode selects how interface names are rendered in records
type InterfaceNameMode string

const (
	InterfaceNamesLong  InterfaceNameMode = "long"  // GigabitEthernet1/0/1
	InterfaceNamesShort InterfaceNameMode = "short" // GE1/0/1
	InterfaceNamesRaw   InterfaceNameMode = "raw"   // as printed by the device
)

// ConfigSource identifies which configuration GetConfig returns
type ConfigSource string

const (
	ConfigRunning   ConfigSource = "running"
	ConfigStartup   ConfigSource = "startup"
	ConfigCandidate ConfigSource = "candidate"
)

// Default connection values
const (
	DefaultSSHPort        = 22
	DefaultTelnetPort     = 23
	DefaultTimeout        = 60 * time.Second
	DefaultConnectTimeout = 10 * time.Second
)

// PromptConfig overrides the patterns used to drive the interactive shell.
// Empty fields fall back to the built-in Comware patterns.
type PromptConfig struct {
	// Prompt matches the operational prompt at the end of output, e.g. <HOST> or [HOST]
	Prompt string

	// More matches the pagination marker
	More string

	// Username and Password match login challenges (Telnet, console servers)
	Username string
	Password string

	// AuthFailure matches a rejected login
	AuthFailure string

	// SetupCommands run once after login. nil means the default set;
	// an empty non-nil slice disables setup entirely.
	SetupCommands []string
}

// SNMPConfig enables the SNMP counters source when Community is set
type SNMPConfig struct {
	Community string
	Version   string // "1", "2c" (default)
	Port      int
}

// DeviceConfig contains configuration for one managed device
type DeviceConfig struct {
	// Name is a unique identifier for this device, used in logs
	Name string

	// Address is the management IP/hostname
	Address string

	// Port is the management port (if not default)
	Port int

	// Transport is ssh (default) or telnet
	Transport Transport

	// Username for authentication
	Username string

	// Password for authentication
	Password string

	// Secret is the "super" password for privilege elevation (optional)
	Secret string

	// Timeout is the default per-command timeout
	Timeout time.Duration

	// ConnectTimeout bounds dialing and the login handshake
	ConnectTimeout time.Duration

	// IdleTimeout closes the transport after this much inactivity (0 disables)
	IdleTimeout time.Duration

	Prompts PromptConfig

	// InterfaceNames selects long, short or raw interface naming
	InterfaceNames InterfaceNameMode

	// InterfaceAliases adds short->long interface prefix pairs
	InterfaceAliases map[string]string

	SNMP SNMPConfig

	// OptionalArgs carries loosely typed settings from host frameworks
	OptionalArgs map[string]string

	// Logger receives driver logs. nil uses the package logger.
	Logger logrus.FieldLogger
}

// Driver is the public operation set of a device driver.
// Every query re-issues commands; nothing is cached between calls.
type Driver interface {
	// Open establishes the session
	Open(ctx context.Context) error

	// Close releases the session. Safe to call more than once.
	Close() error

	// IsActive probes the session; lower-layer errors yield false
	IsActive(ctx context.Context) bool

	// CLI runs raw commands and returns output keyed by command
	CLI(ctx context.Context, commands []string) (map[string]string, error)

	GetFacts(ctx context.Context) (*Facts, error)
	GetConfig(ctx context.Context, source ConfigSource) (string, error)
	GetLLDPNeighbors(ctx context.Context) (*LLDPNeighbors, error)
	GetArpTable(ctx context.Context) (*ArpTable, error)
	GetMACAddressTable(ctx context.Context) (*MACTable, error)
	GetInterfaces(ctx context.Context) (*Interfaces, error)
	GetInterfacesIP(ctx context.Context) (*InterfacesIP, error)
	GetInterfacesCounters(ctx context.Context) (*InterfaceCounters, error)
	Ping(ctx context.Context, destination string, opts PingOptions) (*PingResult, error)
}

// CLIExecutor is implemented by drivers that can run raw CLI commands.
// Vendor code depends on this interface, not on the session type.
type CLIExecutor interface {
	// ExecCommand executes a single CLI command and returns the output
	ExecCommand(ctx context.Context, command string) (string, error)

	// ExecCommands executes multiple CLI commands sequentially
	ExecCommands(ctx context.Context, commands []string) ([]string, error)
}

// SNMPExecutor is implemented by drivers that can read SNMP objects
type SNMPExecutor interface {
	// GetSNMP retrieves a single SNMP value
	GetSNMP(ctx context.Context, oid string) (interface{}, error)

	// WalkSNMP walks a subtree, keyed by the index below oid
	WalkSNMP(ctx context.Context, oid string) (map[string]interface{}, error)
}
