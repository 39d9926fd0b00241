package cli

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	expect "github.com/google/goexpect"
	"github.com/sirupsen/logrus"

	"github.com/nanoncore/cmw-southbound/internal/logging"
	"github.com/nanoncore/cmw-southbound/types"
)

// State is the lifecycle state of a Session
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateAuthenticating
	StateNegotiating
	StateReady
	StateClosed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateAuthenticating:
		return "authenticating"
	case StateNegotiating:
		return "negotiating"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Mode is the privilege level reached on the device
type Mode int

const (
	ModeUnauthenticated Mode = iota
	ModeAuthenticated
	ModePrivileged
)

func (m Mode) String() string {
	switch m {
	case ModeAuthenticated:
		return "authenticated"
	case ModePrivileged:
		return "privileged"
	default:
		return "unauthenticated"
	}
}

const (
	// pollInterval bounds each blocking wait so cancellation is noticed promptly
	pollInterval = 250 * time.Millisecond
	// settleWindow is how long a resync waits for stray prompts to drain
	settleWindow = 200 * time.Millisecond
	checkDuration = 100 * time.Millisecond
)

var errAwaitTimeout = errors.New("timed out waiting for device")

// SessionOption configures a Session
type SessionOption func(*Session)

// WithStateObserver registers fn to be called on every state transition
func WithStateObserver(fn func(from, to State)) SessionOption {
	return func(s *Session) { s.observer = fn }
}

// WithSessionLogger sets the session logger
func WithSessionLogger(l logrus.FieldLogger) SessionOption {
	return func(s *Session) { s.log = l }
}

// Session is one interactive CLI session driven by goexpect
type Session struct {
	cfg  *types.DeviceConfig
	dial Dialer
	log  logrus.FieldLogger
	pat  *patterns

	mu       sync.Mutex
	state    State
	mode     Mode
	hostname string
	prompt   string
	observer func(from, to State)
	ch       Channel
	exp      *expect.GExpect

	closeOnce sync.Once
	closed    chan struct{}
}

// NewSession builds a Session. cfg is expected to have passed ResolveConfig.
func NewSession(cfg *types.DeviceConfig, dial Dialer, opts ...SessionOption) (*Session, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if dial == nil {
		return nil, fmt.Errorf("dialer is required")
	}
	pat, err := compilePatterns(cfg.Prompts.Prompt, cfg.Prompts.More, cfg.Prompts.Username, cfg.Prompts.Password, cfg.Prompts.AuthFailure)
	if err != nil {
		return nil, err
	}
	s := &Session{
		cfg:    cfg,
		dial:   dial,
		pat:    pat,
		closed: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logging.ForDevice(cfg.Logger, cfg.Name)
	}
	return s, nil
}

// State returns the current lifecycle state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Mode returns the privilege mode reached after login
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Hostname returns the hostname learned from the first prompt
func (s *Session) Hostname() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hostname
}

// Prompt returns the last prompt seen
func (s *Session) Prompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prompt
}

// Width is the terminal width requested from the device
func (s *Session) Width() int { return TerminalWidth }

func (s *Session) setState(to State) {
	s.mu.Lock()
	from := s.state
	if from == to || from == StateClosed {
		s.mu.Unlock()
		return
	}
	s.state = to
	obs := s.observer
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{"from": from.String(), "to": to.String()}).Debug("session state change")
	if obs != nil {
		obs(from, to)
	}
}

// fail marks the session Failed and drops the channel
func (s *Session) fail(reason error) {
	if st := s.State(); st == StateClosed || st == StateFailed {
		return
	}
	s.log.WithError(reason).Warn("session failed")
	s.setState(StateFailed)
	s.mu.Lock()
	ch := s.ch
	s.mu.Unlock()
	if ch != nil {
		_ = ch.Close()
	}
}

func (s *Session) connErr(op string, err error) error {
	return &types.ConnectionError{Device: s.cfg.Name, Op: op, Err: err}
}

// Open dials, logs in and negotiates the terminal. On success the session is Ready.
func (s *Session) Open(ctx context.Context) error {
	if st := s.State(); st != StateDisconnected {
		return &types.UsageError{Op: "session open", State: st.String()}
	}
	s.setState(StateConnecting)

	loginCtx, cancel := context.WithTimeout(ctx, s.cfg.ConnectTimeout)
	defer cancel()

	ch, err := s.dial(loginCtx, s.cfg)
	if err != nil {
		s.setState(StateFailed)
		var ce *types.ConnectionError
		if errors.As(err, &ce) {
			return err
		}
		return s.connErr("dial", err)
	}
	if s.cfg.IdleTimeout > 0 {
		ch.SetIdleTimeout(s.cfg.IdleTimeout)
	}

	exp, _, err := expect.SpawnGeneric(&expect.GenOptions{
		In:  ch,
		Out: ch,
		Wait: func() error {
			<-ch.Done()
			return nil
		},
		Close: ch.Close,
		Check: ch.Alive,
	}, s.cfg.Timeout, expect.Verbose(false), expect.CheckDuration(checkDuration))
	if err != nil {
		_ = ch.Close()
		s.setState(StateFailed)
		return s.connErr("spawn", err)
	}

	s.mu.Lock()
	s.ch, s.exp = ch, exp
	s.mu.Unlock()
	go s.watch(ch)

	s.setState(StateAuthenticating)
	if err := s.login(loginCtx); err != nil {
		s.fail(err)
		return err
	}

	s.setState(StateNegotiating)
	if err := s.negotiate(ctx); err != nil {
		s.fail(err)
		return err
	}
	if s.cfg.Secret != "" {
		if err := s.elevate(ctx); err != nil {
			s.fail(err)
			return err
		}
	}

	s.setState(StateReady)
	s.log.WithFields(logrus.Fields{"hostname": s.Hostname(), "mode": s.Mode().String()}).Info("session ready")
	return nil
}

// watch marks the session Failed when the channel goes away underneath it
func (s *Session) watch(ch Channel) {
	select {
	case <-ch.Done():
		if st := s.State(); st != StateClosed && st != StateFailed {
			s.log.Warn("channel closed by peer")
			s.setState(StateFailed)
		}
	case <-s.closed:
	}
}

// Close tears the session down. It is safe to call more than once.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.setState(StateClosed)
		close(s.closed)
		s.mu.Lock()
		exp, ch := s.exp, s.ch
		s.mu.Unlock()
		if exp != nil {
			err = exp.Close()
		}
		if ch != nil {
			_ = ch.Close()
		}
	})
	return err
}

func (s *Session) send(data string) error {
	s.mu.Lock()
	exp := s.exp
	s.mu.Unlock()
	if exp == nil {
		return fmt.Errorf("session not open")
	}
	return exp.Send(data)
}

// await waits for one of cases. Each blocking wait lasts at most pollInterval
// so ctx is checked between slices; output is accumulated across slices and
// re-matched so a pattern split over two reads is still found.
func (s *Session) await(ctx context.Context, cases []*regexp.Regexp, deadline time.Time) (string, []string, int, error) {
	casers := make([]expect.Caser, len(cases))
	for i, re := range cases {
		casers[i] = &expect.Case{R: re, T: expect.OK()}
	}
	var acc strings.Builder
	for {
		if err := ctx.Err(); err != nil {
			return acc.String(), nil, -1, err
		}
		wait := time.Until(deadline)
		if d, ok := ctx.Deadline(); ok {
			if left := time.Until(d); left < wait {
				wait = left
			}
		}
		if wait <= 0 {
			if err := ctx.Err(); err != nil {
				return acc.String(), nil, -1, err
			}
			return acc.String(), nil, -1, errAwaitTimeout
		}
		if wait > pollInterval {
			wait = pollInterval
		}

		out, match, idx, err := s.exp.ExpectSwitchCase(casers, wait)
		acc.WriteString(out)
		if err == nil {
			return acc.String(), match, idx, nil
		}
		var te expect.TimeoutError
		if !errors.As(err, &te) {
			return acc.String(), nil, -1, err
		}
		if out != "" {
			text := acc.String()
			for i, re := range cases {
				if m := re.FindStringSubmatch(text); m != nil {
					return text, m, i, nil
				}
			}
		}
	}
}

const (
	loginAuthFail = iota
	loginPrompt
	loginUsername
	loginPassword
	loginPressEnter
)

// login answers username and password prompts until the CLI prompt shows up
func (s *Session) login(ctx context.Context) error {
	cases := []*regexp.Regexp{s.pat.authFail, s.pat.prompt, s.pat.username, s.pat.password, s.pat.enter}
	deadline := time.Now().Add(s.cfg.ConnectTimeout)
	var usernames, passwords int

	for {
		out, match, idx, err := s.await(ctx, cases, deadline)
		if err != nil {
			if errors.Is(err, errAwaitTimeout) {
				logging.DebugOutput(s.log, "login", out, 5, 5)
				return s.connErr("login", fmt.Errorf("no prompt within %s", s.cfg.ConnectTimeout))
			}
			return s.connErr("login", err)
		}

		switch idx {
		case loginAuthFail:
			return s.connErr("login", fmt.Errorf("authentication failed: %s", strings.TrimSpace(match[0])))
		case loginPrompt:
			s.learnPrompt(match[1])
			s.mu.Lock()
			s.mode = ModeAuthenticated
			s.mu.Unlock()
			return nil
		case loginUsername:
			usernames++
			if usernames > 1 && passwords > 0 {
				return s.connErr("login", fmt.Errorf("authentication failed"))
			}
			err = s.send(s.cfg.Username + "\n")
		case loginPassword:
			passwords++
			if passwords > 1 {
				return s.connErr("login", fmt.Errorf("authentication failed"))
			}
			err = s.send(s.cfg.Password + "\n")
		case loginPressEnter:
			err = s.send("\n")
		}
		if err != nil {
			return s.connErr("login", err)
		}
	}
}

// learnPrompt records the hostname and narrows the prompt pattern to it
func (s *Session) learnPrompt(prompt string) {
	host := hostnameFromPrompt(prompt)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompt = strings.TrimSpace(prompt)
	if s.hostname == "" && host != "" {
		s.hostname = host
		if !s.pat.customPrompt {
			s.pat.prompt = hostPromptRegexp(host)
		}
	}
}

// negotiate runs the setup commands. Rejected commands are logged and skipped.
func (s *Session) negotiate(ctx context.Context) error {
	for _, cmd := range s.cfg.Prompts.SetupCommands {
		_, err := s.execute(ctx, CommandRequest{Command: cmd, Timeout: s.cfg.ConnectTimeout})
		var unsupported *types.UnsupportedCommandError
		switch {
		case err == nil:
		case errors.As(err, &unsupported):
			s.log.WithField("command", cmd).Warnf("setup command rejected: %s", unsupported.Message)
		default:
			return err
		}
	}
	return nil
}

// elevate enters the privileged level with super. A wrong secret is not fatal.
func (s *Session) elevate(ctx context.Context) error {
	deadline := time.Now().Add(s.cfg.ConnectTimeout)
	if err := s.send("super\n"); err != nil {
		return s.connErr("super", err)
	}
	out, _, idx, err := s.await(ctx, []*regexp.Regexp{s.pat.prompt, s.pat.password}, deadline)
	if err == nil && idx == 1 {
		if err = s.send(s.cfg.Secret + "\n"); err != nil {
			return s.connErr("super", err)
		}
		var rest string
		rest, _, _, err = s.await(ctx, []*regexp.Regexp{s.pat.prompt, s.pat.password}, deadline)
		out += rest
	}
	if err != nil {
		if errors.Is(err, errAwaitTimeout) {
			s.log.Warn("no prompt after super, resynchronizing")
			return s.Resync(ctx, s.cfg.ConnectTimeout)
		}
		return s.connErr("super", err)
	}
	if s.pat.superFail.MatchString(out) || s.pat.password.MatchString(strings.TrimSpace(out)) {
		s.log.Warn("privilege elevation failed, staying at current level")
		if s.pat.password.MatchString(strings.TrimSpace(out)) {
			return s.Resync(ctx, s.cfg.ConnectTimeout)
		}
		return nil
	}
	s.mu.Lock()
	s.mode = ModePrivileged
	s.mu.Unlock()
	return nil
}

// Resync aborts whatever the device is doing and waits for a fresh prompt.
// Stray prompts produced by the abort are drained afterwards.
func (s *Session) Resync(ctx context.Context, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = s.cfg.ConnectTimeout
	}
	deadline := time.Now().Add(timeout)
	if err := s.send("\x03"); err != nil {
		return s.connErr("resync", err)
	}
	if err := s.send("\n"); err != nil {
		return s.connErr("resync", err)
	}
	for {
		_, match, idx, err := s.await(ctx, []*regexp.Regexp{s.pat.prompt, s.pat.more}, deadline)
		if err != nil {
			return s.connErr("resync", err)
		}
		if idx == 0 {
			s.learnPrompt(match[1])
			break
		}
		if err := s.send("q"); err != nil {
			return s.connErr("resync", err)
		}
	}
	s.drain()
	return nil
}

// drain discards output until the device has been quiet for settleWindow
func (s *Session) drain() {
	deadline := time.Now().Add(settleWindow)
	for time.Now().Before(deadline) {
		out, _, _, err := s.await(context.Background(), []*regexp.Regexp{s.pat.prompt}, time.Now().Add(settleWindow))
		if err != nil && out == "" {
			return
		}
	}
}
