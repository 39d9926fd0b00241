package mock

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"time"
)

// Login enables an interactive username/password exchange before the prompt
type Login struct {
	Username string
	Password string
}

// Options describes how a simulated device behaves
type Options struct {
	Hostname string
	Banner   string
	// Responses maps a command to its output. Unknown commands are rejected.
	Responses map[string]string
	Login     *Login
	// SuperPassword is the password asked by super. Empty means none is asked.
	SuperPassword string
	// PageLines enables paging with that many lines per page
	PageLines int
	// PagingLocked keeps paging on even after screen-length disable
	PagingLocked bool
	RejectSetup  bool
	// Hang makes a command produce nothing the first N times it runs.
	// A negative count hangs forever and ignores Ctrl+C.
	Hang  map[string]int
	Delay map[string]time.Duration
}

type deviceMode int

const (
	modeUsername deviceMode = iota
	modePassword
	modeCLI
	modeSuper
	modePaging
	modeBusy
)

const (
	moreMarker = "  ---- More ----"
	eraseMore  = "\x1b[16D                \x1b[16D"
	rejection  = "                ^\r\n % Unrecognized command found at '^' position.\r\n"
)

// Device simulates a Comware CLI on the far side of a byte stream.
// It satisfies the CLI channel contract so sessions can run against it.
type Device struct {
	opts Options

	mu       sync.Mutex
	cond     *sync.Cond
	out      bytes.Buffer
	line     []byte
	lastCR   bool
	mode     deviceMode
	paging   bool
	pending  []string
	busyHard bool
	hangs    map[string]int
	username string
	closed   bool
	done     chan struct{}

	cmdHistory  []string
	idleTimeout time.Duration
}

// NewDevice creates a device and queues its banner and first prompt
func NewDevice(opts Options) *Device {
	if opts.Hostname == "" {
		opts.Hostname = "H3C"
	}
	if opts.Responses == nil {
		opts.Responses = DefaultResponses(opts.Hostname)
	}
	d := &Device{
		opts:   opts,
		paging: opts.PageLines > 0,
		hangs:  make(map[string]int, len(opts.Hang)),
		done:   make(chan struct{}),
	}
	for k, v := range opts.Hang {
		d.hangs[k] = v
	}
	d.cond = sync.NewCond(&d.mu)

	if opts.Banner != "" {
		d.emit(opts.Banner + "\r\n")
	}
	if opts.Login != nil {
		d.mode = modeUsername
		d.emit("\r\nLogin authentication\r\n\r\n\r\nUsername:")
	} else {
		d.mode = modeCLI
		d.emit("\r\n" + d.prompt())
	}
	return d
}

func (d *Device) prompt() string { return "<" + d.opts.Hostname + ">" }

// emit queues output for the reader. Caller holds mu or owns d exclusively.
func (d *Device) emit(s string) {
	d.out.WriteString(s)
	if d.cond != nil {
		d.cond.Broadcast()
	}
}

// Read blocks until output is queued or the device is closed
func (d *Device) Read(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for d.out.Len() == 0 && !d.closed {
		d.cond.Wait()
	}
	if d.out.Len() == 0 {
		return 0, io.EOF
	}
	return d.out.Read(p)
}

// Write feeds keystrokes to the device
func (d *Device) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, io.ErrClosedPipe
	}
	for _, b := range p {
		d.input(b)
	}
	return len(p), nil
}

func (d *Device) input(b byte) {
	// LF after CR belongs to the same keystroke in every mode
	if b == '\n' && d.lastCR {
		d.lastCR = false
		return
	}
	d.lastCR = b == '\r'

	switch d.mode {
	case modePaging:
		d.page(b)
		return
	case modeBusy:
		if b == 0x03 && !d.busyHard {
			d.mode = modeCLI
			d.emit("\r\n" + d.prompt())
		}
		return
	}

	if b == 0x03 {
		return
	}
	if b != '\r' && b != '\n' {
		d.line = append(d.line, b)
		return
	}
	line := string(d.line)
	d.line = d.line[:0]
	d.handleLine(line)
}

func (d *Device) handleLine(line string) {
	switch d.mode {
	case modeUsername:
		d.username = line
		d.emit(line + "\r\nPassword:")
		d.mode = modePassword
	case modePassword:
		if d.username == d.opts.Login.Username && line == d.opts.Login.Password {
			d.mode = modeCLI
			d.emit("\r\n\r\n" + d.prompt())
			return
		}
		d.emit("\r\n% Login failed!\r\n\r\nUsername:")
		d.mode = modeUsername
	case modeSuper:
		d.mode = modeCLI
		if line == d.opts.SuperPassword {
			d.emit("\r\nUser privilege level is 15, and only those commands that can be used at this level are permitted.\r\n" + d.prompt())
			return
		}
		d.emit("\r\nPassword is wrong.\r\n" + d.prompt())
	case modeCLI:
		d.command(line)
	}
}

func (d *Device) command(line string) {
	cmd := strings.TrimSpace(line)
	d.emit(line + "\r\n")
	if cmd == "" {
		d.emit(d.prompt())
		return
	}
	d.recordCommand(cmd)

	if n, ok := d.hangs[cmd]; ok && n != 0 {
		if n > 0 {
			d.hangs[cmd] = n - 1
		}
		d.mode = modeBusy
		d.busyHard = n < 0
		return
	}

	switch cmd {
	case "screen-length disable":
		if d.opts.RejectSetup {
			d.emit(rejection + d.prompt())
			return
		}
		if !d.opts.PagingLocked {
			d.paging = false
		}
		d.emit(d.prompt())
		return
	case "super":
		if d.opts.SuperPassword != "" {
			d.mode = modeSuper
			d.emit(" Password:")
			return
		}
		d.emit("User privilege level is 15, and only those commands that can be used at this level are permitted.\r\n" + d.prompt())
		return
	case "quit":
		d.closeLocked()
		return
	}

	body, ok := d.opts.Responses[cmd]
	if !ok {
		d.emit(rejection + d.prompt())
		return
	}
	if delay, ok := d.opts.Delay[cmd]; ok && delay > 0 {
		d.mode = modeBusy
		d.busyHard = false
		time.AfterFunc(delay, func() {
			d.mu.Lock()
			defer d.mu.Unlock()
			if d.closed || d.mode != modeBusy {
				return
			}
			d.mode = modeCLI
			d.respond(body)
		})
		return
	}
	d.respond(body)
}

// respond writes body, paging it when paging is on
func (d *Device) respond(body string) {
	body = strings.ReplaceAll(strings.TrimRight(body, "\r\n"), "\r\n", "\n")
	if body == "" {
		d.emit(d.prompt())
		return
	}
	lines := strings.Split(body, "\n")
	if !d.paging || len(lines) <= d.opts.PageLines {
		d.emit(strings.Join(lines, "\r\n") + "\r\n" + d.prompt())
		return
	}
	d.emit(strings.Join(lines[:d.opts.PageLines], "\r\n") + "\r\n" + moreMarker)
	d.pending = lines[d.opts.PageLines:]
	d.mode = modePaging
}

// page handles a keystroke at the More marker: space shows the next page,
// enter the next line, anything else aborts
func (d *Device) page(b byte) {
	n := 0
	switch b {
	case ' ':
		n = d.opts.PageLines
	case '\r', '\n':
		n = 1
	default:
		d.pending = nil
		d.mode = modeCLI
		d.emit(eraseMore + "\r\n" + d.prompt())
		return
	}
	if n >= len(d.pending) {
		d.emit(eraseMore + strings.Join(d.pending, "\r\n") + "\r\n" + d.prompt())
		d.pending = nil
		d.mode = modeCLI
		return
	}
	d.emit(eraseMore + strings.Join(d.pending[:n], "\r\n") + "\r\n" + moreMarker)
	d.pending = d.pending[n:]
}

// Close drops the connection as the peer would
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closeLocked()
	return nil
}

func (d *Device) closeLocked() {
	if d.closed {
		return
	}
	d.closed = true
	close(d.done)
	d.cond.Broadcast()
}

// Alive reports whether the device is still connected
func (d *Device) Alive() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.closed
}

// Done is closed when the device disconnects
func (d *Device) Done() <-chan struct{} { return d.done }

// SetIdleTimeout records the timeout; the simulated device never idles out
func (d *Device) SetIdleTimeout(t time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.idleTimeout = t
}

// IdleTimeout returns the last idle timeout set
func (d *Device) IdleTimeout() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.idleTimeout
}

// SetResponse adds or replaces the output of a command
func (d *Device) SetResponse(command, output string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.opts.Responses[command] = output
}

// GetCommandHistory returns the commands received, excluding login input
func (d *Device) GetCommandHistory() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	history := make([]string, len(d.cmdHistory))
	copy(history, d.cmdHistory)
	return history
}

func (d *Device) recordCommand(cmd string) {
	d.cmdHistory = append(d.cmdHistory, cmd)
}
