package comware

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nanoncore/cmw-southbound/drivers/cli"
	"github.com/nanoncore/cmw-southbound/drivers/snmp"
	"github.com/nanoncore/cmw-southbound/internal/logging"
	"github.com/nanoncore/cmw-southbound/types"
	"github.com/nanoncore/cmw-southbound/vendors/common"
)

// probeTimeout bounds the IsActive round trip
const probeTimeout = 5 * time.Second

type driverState int

const (
	stateNew driverState = iota
	stateOpened
	stateClosed
)

func (s driverState) String() string {
	switch s {
	case stateNew:
		return "new"
	case stateOpened:
		return "opened"
	case stateClosed:
		return "closed"
	}
	return "unknown"
}

// connector is implemented by SNMP sources that hold a socket
type connector interface {
	Connect(ctx context.Context) error
	Close() error
}

// Option configures a Driver
type Option func(*Driver)

// WithDialer replaces the CLI transport, e.g. with a simulated device
func WithDialer(d cli.Dialer) Option {
	return func(drv *Driver) { drv.cliOpts = append(drv.cliOpts, cli.WithDialer(d)) }
}

// WithParsers replaces the query parsers
func WithParsers(p *Parsers) Option {
	return func(drv *Driver) { drv.parsers = p }
}

// WithSNMP sets the SNMP counters source. Without it a gosnmp client is
// created when the config carries an SNMP community.
func WithSNMP(exec types.SNMPExecutor) Option {
	return func(drv *Driver) { drv.snmp = exec }
}

// Driver is the Comware implementation of types.Driver. It owns one CLI
// session; every query re-issues its commands.
type Driver struct {
	config  *types.DeviceConfig
	base    *cli.Driver
	cliOpts []cli.Option
	parsers *Parsers
	norm    *common.Normalizer
	snmp    types.SNMPExecutor
	log     logrus.FieldLogger

	// openMu serializes Open so concurrent callers dial once
	openMu sync.Mutex
	mu     sync.Mutex
	state  driverState
}

// New creates a Comware driver. Nothing is dialed until Open.
func New(config *types.DeviceConfig, opts ...Option) (*Driver, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	d := &Driver{}
	for _, opt := range opts {
		opt(d)
	}

	log := logging.ForDevice(config.Logger, config.Name).WithField("driver", "comware")
	base, err := cli.NewDriver(config, append([]cli.Option{cli.WithLogger(log)}, d.cliOpts...)...)
	if err != nil {
		return nil, err
	}
	d.base = base
	d.config = base.Config()
	d.log = log
	if d.parsers == nil {
		d.parsers = DefaultParsers()
	}
	d.norm = common.NewNormalizer(d.config.InterfaceNames, d.config.InterfaceAliases)

	if d.snmp == nil && d.config.SNMP.Community != "" {
		client, err := snmp.NewClient(d.config)
		if err != nil {
			return nil, fmt.Errorf("snmp: %w", err)
		}
		d.snmp = client
	}
	return d, nil
}

// Session exposes the CLI session for diagnostics, nil before Open
func (d *Driver) Session() *cli.Session {
	return d.base.Session()
}

// Open connects and logs in. It is allowed once from New, and again only
// after the session has failed.
func (d *Driver) Open(ctx context.Context) error {
	d.openMu.Lock()
	defer d.openMu.Unlock()

	d.mu.Lock()
	state := d.state
	d.mu.Unlock()

	switch {
	case state == stateNew:
	case state == stateOpened && d.base.State() == cli.StateFailed:
		d.log.Info("reopening failed session")
	default:
		return &types.UsageError{Op: "open", State: state.String()}
	}

	if err := d.base.Connect(ctx); err != nil {
		_ = d.base.Disconnect()
		d.setState(stateNew)
		return err
	}

	if c, ok := d.snmp.(connector); ok {
		if err := c.Connect(ctx); err != nil {
			d.log.WithError(err).Warn("snmp unavailable, counters will use the CLI")
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == stateClosed {
		_ = d.base.Disconnect()
		return &types.UsageError{Op: "open", State: stateClosed.String()}
	}
	d.state = stateOpened
	return nil
}

func (d *Driver) setState(s driverState) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != stateClosed {
		d.state = s
	}
}

// Close releases the session and the SNMP client. It never fails.
func (d *Driver) Close() error {
	d.mu.Lock()
	d.state = stateClosed
	d.mu.Unlock()

	if err := d.base.Disconnect(); err != nil {
		d.log.WithError(err).Debug("cli close")
	}
	if c, ok := d.snmp.(connector); ok {
		if err := c.Close(); err != nil {
			d.log.WithError(err).Debug("snmp close")
		}
	}
	return nil
}

// ready checks that a query may run
func (d *Driver) ready(op string) error {
	d.mu.Lock()
	state := d.state
	d.mu.Unlock()
	if state != stateOpened {
		return &types.UsageError{Op: op, State: state.String()}
	}
	if d.base.State() == cli.StateFailed {
		return &types.ConnectionError{Device: d.config.Name, Op: op, Err: errors.New("session failed, reopen required")}
	}
	return nil
}

// IsActive probes the session with an empty command. Errors yield false.
func (d *Driver) IsActive(ctx context.Context) bool {
	if d.ready("is_active") != nil {
		return false
	}
	timeout := probeTimeout
	if d.config.Timeout < timeout {
		timeout = d.config.Timeout
	}
	if err := d.base.Probe(ctx, timeout); err != nil {
		d.log.WithError(err).Debug("liveness probe failed")
		return false
	}
	return true
}

// CLI runs raw commands. Device rejections do not stop the run; they are
// joined into the returned error next to the partial output.
func (d *Driver) CLI(ctx context.Context, commands []string) (map[string]string, error) {
	if err := d.ready("cli"); err != nil {
		return nil, err
	}
	result := make(map[string]string, len(commands))
	var rejected []error
	for _, cmd := range commands {
		out, err := d.base.ExecCommand(ctx, cmd)
		if err != nil {
			if errors.Is(err, types.ErrUnsupportedCommand) {
				result[cmd] = out
				rejected = append(rejected, err)
				continue
			}
			return result, err
		}
		result[cmd] = out
	}
	return result, errors.Join(rejected...)
}

// run executes a strategy and logs its warnings
func run[T any](ctx context.Context, d *Driver, s Strategy[T]) (T, []types.ParseWarning, error) {
	var zero T
	if err := d.ready(s.Name); err != nil {
		return zero, nil, err
	}
	v, warnings, err := s.Run(ctx, d.base, d.norm)
	if err != nil {
		return zero, nil, err
	}
	d.logWarnings(warnings)
	return v, warnings, nil
}

func (d *Driver) logWarnings(warnings []types.ParseWarning) {
	for _, w := range warnings {
		d.log.WithFields(logrus.Fields{"query": w.Query, "line": w.Line}).Debug(w.Reason)
	}
}

// GetFacts returns device identity. The hostname falls back to the prompt.
func (d *Driver) GetFacts(ctx context.Context) (*types.Facts, error) {
	facts, warnings, err := run(ctx, d, d.parsers.Facts)
	if err != nil {
		return nil, err
	}
	if facts.Hostname == "" {
		if sess := d.base.Session(); sess != nil {
			facts.Hostname = sess.Hostname()
			facts.FQDN = facts.Hostname
		}
	}
	facts.Warnings = append(facts.Warnings, warnings...)
	return facts, nil
}

// GetConfig returns the running or saved configuration text. Comware has
// no candidate datastore, so candidate is always empty.
func (d *Driver) GetConfig(ctx context.Context, source types.ConfigSource) (string, error) {
	if source == "" {
		source = types.ConfigRunning
	}
	s, ok := d.parsers.Config[source]
	if !ok {
		return "", fmt.Errorf("unknown config source %q", source)
	}
	config, _, err := run(ctx, d, s)
	return config, err
}

// GetLLDPNeighbors returns neighbors keyed by local interface
func (d *Driver) GetLLDPNeighbors(ctx context.Context) (*types.LLDPNeighbors, error) {
	neighbors, warnings, err := run(ctx, d, d.parsers.LLDP)
	if err != nil {
		return nil, err
	}
	return &types.LLDPNeighbors{Neighbors: neighbors, Warnings: warnings}, nil
}

// GetArpTable returns the ARP table
func (d *Driver) GetArpTable(ctx context.Context) (*types.ArpTable, error) {
	entries, warnings, err := run(ctx, d, d.parsers.ARP)
	if err != nil {
		return nil, err
	}
	return &types.ArpTable{Entries: entries, Warnings: warnings}, nil
}

// GetMACAddressTable returns the MAC address table
func (d *Driver) GetMACAddressTable(ctx context.Context) (*types.MACTable, error) {
	entries, warnings, err := run(ctx, d, d.parsers.MAC)
	if err != nil {
		return nil, err
	}
	return &types.MACTable{Entries: entries, Warnings: warnings}, nil
}

// GetInterfaces returns interfaces keyed by name
func (d *Driver) GetInterfaces(ctx context.Context) (*types.Interfaces, error) {
	ifaces, warnings, err := run(ctx, d, d.parsers.Interfaces)
	if err != nil {
		return nil, err
	}
	return &types.Interfaces{Interfaces: ifaces, Warnings: warnings}, nil
}

// GetInterfacesIP returns IPv4 and IPv6 addresses keyed by interface
func (d *Driver) GetInterfacesIP(ctx context.Context) (*types.InterfacesIP, error) {
	addrs, warnings, err := run(ctx, d, d.parsers.InterfacesIP)
	if err != nil {
		return nil, err
	}
	return &types.InterfacesIP{Interfaces: addrs, Warnings: warnings}, nil
}

// GetInterfacesCounters reads IF-MIB when SNMP is configured and falls back
// to "display interface" when the walk fails
func (d *Driver) GetInterfacesCounters(ctx context.Context) (*types.InterfaceCounters, error) {
	if err := d.ready(QueryCounters); err != nil {
		return nil, err
	}

	var fallback []types.ParseWarning
	if d.snmp != nil {
		counters, warnings, err := snmpCounters(ctx, d.snmp, d.norm)
		if err == nil {
			d.logWarnings(warnings)
			return &types.InterfaceCounters{Counters: counters, Source: types.CountersSourceSNMP, Warnings: warnings}, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		d.log.WithError(err).Warn("snmp counters failed, falling back to the CLI")
		fallback = append(fallback, types.ParseWarning{Query: QueryCounters, Reason: "snmp unavailable: " + err.Error()})
	}

	counters, warnings, err := run(ctx, d, d.parsers.Counters)
	if err != nil {
		return nil, err
	}
	return &types.InterfaceCounters{
		Counters: counters,
		Source:   types.CountersSourceCLI,
		Warnings: append(fallback, warnings...),
	}, nil
}

// Ping runs the device ping. An unreachable destination is a result with
// 100% loss, not an error.
func (d *Driver) Ping(ctx context.Context, destination string, opts types.PingOptions) (*types.PingResult, error) {
	if destination == "" {
		return nil, fmt.Errorf("ping destination is required")
	}
	if err := d.ready(QueryPing); err != nil {
		return nil, err
	}

	cmd := d.parsers.Ping.Command(destination, opts)
	withDefaults := pingDefaults(opts)
	// every probe may take the full per-probe timeout
	timeout := time.Duration(withDefaults.Count*withDefaults.Timeout)*time.Second + d.config.Timeout

	resp, err := d.base.Exec(ctx, cli.CommandRequest{Command: cmd, Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", QueryPing, err)
	}
	result, warnings := d.parsers.Ping.Parse(resp.Body, destination, opts)
	d.logWarnings(warnings)
	result.Warnings = append(result.Warnings, warnings...)
	return result, nil
}

// Ensure Driver implements types.Driver
var _ types.Driver = (*Driver)(nil)
