package comware

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/nanoncore/cmw-southbound/types"
	"github.com/nanoncore/cmw-southbound/vendors/common"
)

// Query names, used as the Query of parse warnings
const (
	QueryFacts        = "facts"
	QueryConfig       = "config"
	QueryInterfaces   = "interfaces"
	QueryInterfacesIP = "interfaces_ip"
	QueryARP          = "arp"
	QueryMAC          = "mac"
	QueryLLDP         = "lldp"
	QueryCounters     = "counters"
	QueryPing         = "ping"
)

// Strategy binds the commands of one query to the parser of their output
type Strategy[T any] struct {
	Name     string
	Commands []string
	// Optional commands may be rejected by the device; the rejection becomes
	// a warning and the command is missing from the raw map.
	Optional []string
	Parse    func(out Output, n *common.Normalizer) (T, []types.ParseWarning)
}

// Output is what a strategy's commands printed. Parsers address commands by
// position, so a strategy can swap a command without touching its parser.
type Output struct {
	Commands []string
	Raw      map[string]string
}

// NewOutput pairs commands with their output keyed by command
func NewOutput(commands []string, raw map[string]string) Output {
	return Output{Commands: commands, Raw: raw}
}

// Get returns the output of the i-th command. ok is false when there is no
// such command or it printed nothing the driver could collect.
func (o Output) Get(i int) (string, bool) {
	if i < 0 || i >= len(o.Commands) {
		return "", false
	}
	text, ok := o.Raw[o.Commands[i]]
	return text, ok
}

// Require is Get for output the parser cannot do without; a missing output
// is reported as a warning
func (o Output) Require(query string, i int, warnings *[]types.ParseWarning) string {
	text, ok := o.Get(i)
	if !ok {
		cmd := fmt.Sprintf("command #%d", i+1)
		if i >= 0 && i < len(o.Commands) {
			cmd = o.Commands[i]
		}
		*warnings = append(*warnings, types.ParseWarning{Query: query, Reason: "no output for " + cmd})
	}
	return text
}

// Collect runs the strategy commands in order and keys their output by command
func (s Strategy[T]) Collect(ctx context.Context, exec types.CLIExecutor) (map[string]string, []types.ParseWarning, error) {
	raw := make(map[string]string, len(s.Commands))
	var warnings []types.ParseWarning
	for _, cmd := range s.Commands {
		out, err := exec.ExecCommand(ctx, cmd)
		if err != nil {
			if errors.Is(err, types.ErrUnsupportedCommand) && slices.Contains(s.Optional, cmd) {
				warnings = append(warnings, types.ParseWarning{Query: s.Name, Reason: "command not supported: " + cmd})
				continue
			}
			return nil, nil, fmt.Errorf("%s: %w", s.Name, err)
		}
		raw[cmd] = out
	}
	return raw, warnings, nil
}

// Run collects and parses. Parser warnings without a query get the strategy name.
func (s Strategy[T]) Run(ctx context.Context, exec types.CLIExecutor, n *common.Normalizer) (T, []types.ParseWarning, error) {
	raw, warnings, err := s.Collect(ctx, exec)
	if err != nil {
		var zero T
		return zero, nil, err
	}
	v, pw := s.Parse(NewOutput(s.Commands, raw), n)
	for i := range pw {
		if pw[i].Query == "" {
			pw[i].Query = s.Name
		}
	}
	return v, append(warnings, pw...), nil
}

// PingStrategy builds the device ping command and parses its output
type PingStrategy struct {
	Command func(destination string, opts types.PingOptions) string
	Parse   func(output, destination string, opts types.PingOptions) (*types.PingResult, []types.ParseWarning)
}

// Parsers is the explicit query to parser mapping used by the Driver.
// Replace single fields to adapt to unusual firmware.
type Parsers struct {
	Facts        Strategy[*types.Facts]
	Config       map[types.ConfigSource]Strategy[string]
	Interfaces   Strategy[map[string]types.Interface]
	InterfacesIP Strategy[map[string][]types.InterfaceIP]
	ARP          Strategy[[]types.ArpEntry]
	MAC          Strategy[[]types.MacEntry]
	LLDP         Strategy[map[string][]types.LLDPNeighbor]
	Counters     Strategy[map[string]types.Counters]
	Ping         PingStrategy
}

// Comware commands
const (
	cmdVersion        = "display version"
	cmdSysname        = "display current-configuration | include sysname"
	cmdManuinfo       = "display device manuinfo"
	cmdInterfaceBrief = "display interface brief"
	cmdInterface      = "display interface"
	cmdIPInterface    = "display ip interface"
	cmdIPv6Interface  = "display ipv6 interface"
	cmdARP            = "display arp"
	cmdMAC            = "display mac-address"
	cmdLLDP           = "display lldp neighbor-information list"
	cmdRunning        = "display current-configuration"
	cmdStartup        = "display saved-configuration"
)

// DefaultParsers returns the parsers for Comware V5 and V7 output
func DefaultParsers() *Parsers {
	return &Parsers{
		Facts: Strategy[*types.Facts]{
			Name:     QueryFacts,
			Commands: []string{cmdVersion, cmdSysname, cmdManuinfo, cmdInterfaceBrief},
			Optional: []string{cmdManuinfo},
			Parse:    parseFacts,
		},
		Config: map[types.ConfigSource]Strategy[string]{
			types.ConfigRunning:   configStrategy(cmdRunning),
			types.ConfigStartup:   configStrategy(cmdStartup),
			types.ConfigCandidate: configStrategy(""),
		},
		Interfaces: Strategy[map[string]types.Interface]{
			Name:     QueryInterfaces,
			Commands: []string{cmdInterface},
			Parse:    parseInterfaces,
		},
		InterfacesIP: Strategy[map[string][]types.InterfaceIP]{
			Name:     QueryInterfacesIP,
			Commands: []string{cmdIPInterface, cmdIPv6Interface},
			Optional: []string{cmdIPv6Interface},
			Parse:    parseInterfacesIP,
		},
		ARP: Strategy[[]types.ArpEntry]{
			Name:     QueryARP,
			Commands: []string{cmdARP},
			Parse:    parseARP,
		},
		MAC: Strategy[[]types.MacEntry]{
			Name:     QueryMAC,
			Commands: []string{cmdMAC},
			Parse:    parseMAC,
		},
		LLDP: Strategy[map[string][]types.LLDPNeighbor]{
			Name:     QueryLLDP,
			Commands: []string{cmdLLDP},
			Parse:    parseLLDP,
		},
		Counters: Strategy[map[string]types.Counters]{
			Name:     QueryCounters,
			Commands: []string{cmdInterface},
			Parse:    parseCounters,
		},
		Ping: PingStrategy{
			Command: pingCommand,
			Parse:   parsePing,
		},
	}
}

// configStrategy returns the command output unchanged. An empty command
// yields an empty config, which is how Comware reports a candidate.
func configStrategy(command string) Strategy[string] {
	s := Strategy[string]{Name: QueryConfig, Parse: parseConfig}
	if command != "" {
		s.Commands = []string{command}
	}
	return s
}

func parseConfig(out Output, _ *common.Normalizer) (string, []types.ParseWarning) {
	if len(out.Commands) == 0 {
		return "", nil
	}
	var warnings []types.ParseWarning
	text := out.Require(QueryConfig, 0, &warnings)
	return text, warnings
}
