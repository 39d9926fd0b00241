package cli

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nanoncore/cmw-southbound/internal/logging"
	"github.com/nanoncore/cmw-southbound/types"
)

// Option configures a Driver
type Option func(*Driver)

// WithDialer replaces the transport dialer, mainly for tests
func WithDialer(d Dialer) Option {
	return func(drv *Driver) { drv.dial = d }
}

// WithLogger sets the logger used by the driver and its sessions
func WithLogger(l logrus.FieldLogger) Option {
	return func(drv *Driver) { drv.log = l }
}

// WithObserver registers a session state observer
func WithObserver(fn func(from, to State)) Option {
	return func(drv *Driver) { drv.observer = fn }
}

// Driver runs CLI commands over a single Session. Commands are serialized.
// A command timeout triggers one resync and retry before the session is
// declared Failed.
type Driver struct {
	config   *types.DeviceConfig
	dial     Dialer
	log      logrus.FieldLogger
	observer func(from, to State)

	execMu  sync.Mutex
	mu      sync.Mutex
	session *Session
}

// NewDriver creates a CLI driver. The config is resolved but not dialed.
func NewDriver(config *types.DeviceConfig, opts ...Option) (*Driver, error) {
	cfg, err := ResolveConfig(config)
	if err != nil {
		return nil, err
	}
	d := &Driver{config: cfg}
	for _, opt := range opts {
		opt(d)
	}
	if d.dial == nil {
		if cfg.Address == "" {
			return nil, fmt.Errorf("address is required")
		}
		if d.dial, err = DialerFor(cfg.Transport); err != nil {
			return nil, err
		}
	}
	if d.log == nil {
		d.log = logging.ForDevice(cfg.Logger, cfg.Name)
	}
	return d, nil
}

// Config returns the resolved device config
func (d *Driver) Config() *types.DeviceConfig { return d.config }

// Connect opens a fresh session, replacing any previous one
func (d *Driver) Connect(ctx context.Context) error {
	opts := []SessionOption{WithSessionLogger(d.log)}
	if d.observer != nil {
		opts = append(opts, WithStateObserver(d.observer))
	}
	sess, err := NewSession(d.config, d.dial, opts...)
	if err != nil {
		return err
	}

	d.mu.Lock()
	old := d.session
	d.session = sess
	d.mu.Unlock()
	if old != nil {
		_ = old.Close()
	}

	d.log.WithFields(logrus.Fields{"transport": d.config.Transport, "port": d.config.Port}).Debug("connecting")
	return sess.Open(ctx)
}

// Disconnect closes the current session
func (d *Driver) Disconnect() error {
	d.mu.Lock()
	sess := d.session
	d.mu.Unlock()
	if sess == nil {
		return nil
	}
	return sess.Close()
}

// Session returns the current session, or nil before Connect
func (d *Driver) Session() *Session {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.session
}

// State returns the state of the current session
func (d *Driver) State() State {
	if sess := d.Session(); sess != nil {
		return sess.State()
	}
	return StateDisconnected
}

// IsConnected reports whether the session is Ready
func (d *Driver) IsConnected() bool {
	return d.State() == StateReady
}

// Exec runs one command with the retry policy applied
func (d *Driver) Exec(ctx context.Context, req CommandRequest) (*RawResponse, error) {
	d.execMu.Lock()
	defer d.execMu.Unlock()

	sess := d.Session()
	if sess == nil {
		return nil, &types.UsageError{Op: "execute", State: StateDisconnected.String()}
	}

	resp, err := sess.Execute(ctx, req)
	var timeout *types.CommandTimeoutError
	if !errors.As(err, &timeout) || sess.State() != StateReady {
		return resp, err
	}

	log := d.log.WithField("command", req.Command)
	log.Warnf("command timed out after %s, resynchronizing", timeout.Timeout)
	if rerr := sess.Resync(ctx, d.config.ConnectTimeout); rerr != nil {
		sess.fail(rerr)
		timeout.Retried = true
		return nil, timeout
	}

	resp, err = sess.Execute(ctx, req)
	if errors.As(err, &timeout) {
		log.Error("command timed out again, failing session")
		timeout.Retried = true
		sess.fail(timeout)
		return nil, timeout
	}
	return resp, err
}

// Probe sends an empty line and waits for the prompt, without retry
func (d *Driver) Probe(ctx context.Context, timeout time.Duration) error {
	d.execMu.Lock()
	defer d.execMu.Unlock()

	sess := d.Session()
	if sess == nil {
		return &types.UsageError{Op: "probe", State: StateDisconnected.String()}
	}
	_, err := sess.Execute(ctx, CommandRequest{Command: "", Timeout: timeout})
	return err
}

// ExecCommand implements types.CLIExecutor. On a device rejection the
// output is returned together with the error.
func (d *Driver) ExecCommand(ctx context.Context, command string) (string, error) {
	resp, err := d.Exec(ctx, CommandRequest{Command: command})
	if resp != nil {
		return resp.Body, err
	}
	return "", err
}

// ExecCommands implements types.CLIExecutor - executes commands sequentially
// and stops at the first failure.
func (d *Driver) ExecCommands(ctx context.Context, commands []string) ([]string, error) {
	results := make([]string, 0, len(commands))
	for _, cmd := range commands {
		output, err := d.ExecCommand(ctx, cmd)
		if err != nil {
			return results, fmt.Errorf("command %q failed: %w", cmd, err)
		}
		results = append(results, output)
	}
	return results, nil
}

// Ensure Driver implements CLIExecutor
var _ types.CLIExecutor = (*Driver)(nil)
