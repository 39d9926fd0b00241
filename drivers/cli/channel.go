package cli

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/nanoncore/cmw-southbound/types"
)

// Channel is a bidirectional byte stream to a device CLI.
// Done is closed once the stream is gone, whether closed locally,
// by the peer or by the idle timer.
type Channel interface {
	io.ReadWriteCloser
	Alive() bool
	Done() <-chan struct{}
	SetIdleTimeout(d time.Duration)
}

// Dialer opens a Channel for a device
type Dialer func(ctx context.Context, cfg *types.DeviceConfig) (Channel, error)

// DialerFor returns the built-in dialer for a transport
func DialerFor(t types.Transport) (Dialer, error) {
	switch t {
	case types.TransportSSH, "":
		return DialSSH, nil
	case types.TransportTelnet:
		return DialTelnet, nil
	default:
		return nil, fmt.Errorf("unsupported transport %q", t)
	}
}

// stream adapts a reader/writer pair into a Channel
type stream struct {
	r       io.Reader
	w       io.Writer
	closeFn func() error

	done     chan struct{}
	once     sync.Once
	closeErr error
	idle     *idleWatcher
}

func newStream(r io.Reader, w io.Writer, closeFn func() error) *stream {
	s := &stream{
		r:       r,
		w:       w,
		closeFn: closeFn,
		done:    make(chan struct{}),
	}
	s.idle = &idleWatcher{onIdle: func() { _ = s.Close() }}
	return s
}

func (s *stream) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if n > 0 {
		s.idle.touch()
	}
	if err != nil {
		_ = s.Close()
	}
	return n, err
}

func (s *stream) Write(p []byte) (int, error) {
	if !s.Alive() {
		return 0, io.ErrClosedPipe
	}
	n, err := s.w.Write(p)
	if n > 0 {
		s.idle.touch()
	}
	return n, err
}

func (s *stream) Close() error {
	s.once.Do(func() {
		close(s.done)
		s.idle.stop()
		if s.closeFn != nil {
			s.closeErr = s.closeFn()
		}
	})
	return s.closeErr
}

func (s *stream) Alive() bool {
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

func (s *stream) Done() <-chan struct{} { return s.done }

func (s *stream) SetIdleTimeout(d time.Duration) { s.idle.set(d) }

// idleWatcher fires onIdle when no traffic was seen for the configured timeout
type idleWatcher struct {
	mu      sync.Mutex
	timeout time.Duration
	timer   *time.Timer
	stopped bool
	onIdle  func()
}

func (w *idleWatcher) set(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.timeout = d
	if d > 0 && !w.stopped {
		w.timer = time.AfterFunc(d, w.onIdle)
	}
}

func (w *idleWatcher) touch() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil && !w.stopped {
		w.timer.Reset(w.timeout)
	}
}

func (w *idleWatcher) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
}

// dialTimeout picks the tighter of the configured connect budget and the context deadline
func dialTimeout(ctx context.Context, cfg *types.DeviceConfig) time.Duration {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = types.DefaultConnectTimeout
	}
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	return timeout
}
