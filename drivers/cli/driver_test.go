package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanoncore/cmw-southbound/drivers/mock"
	"github.com/nanoncore/cmw-southbound/types"
)

func newTestDriver(t *testing.T, dev *mock.Device) *Driver {
	t.Helper()
	drv, err := NewDriver(testConfig(func(c *types.DeviceConfig) {
		c.Timeout = 300 * time.Millisecond
	}), WithDialer(mockDialer(dev)))
	require.NoError(t, err)
	require.NoError(t, drv.Connect(context.Background()))
	t.Cleanup(func() { _ = drv.Disconnect() })
	return drv
}

func countCommand(history []string, cmd string) int {
	n := 0
	for _, c := range history {
		if c == cmd {
			n++
		}
	}
	return n
}

func TestDriverRetriesOnceAfterTimeout(t *testing.T) {
	dev := mock.NewDevice(mock.Options{
		Hang:      map[string]int{"display version": 1},
		Responses: map[string]string{"display version": "H3C Comware Software, Version 7.1.070, Release 3208P03"},
	})
	drv := newTestDriver(t, dev)

	out, err := drv.ExecCommand(context.Background(), "display version")

	require.NoError(t, err)
	assert.Contains(t, out, "Release 3208P03")
	assert.Equal(t, 2, countCommand(dev.GetCommandHistory(), "display version"))
	assert.Equal(t, StateReady, drv.State())
}

func TestDriverSecondTimeoutFailsSession(t *testing.T) {
	dev := mock.NewDevice(mock.Options{
		Hang:      map[string]int{"display version": 2},
		Responses: map[string]string{"display version": "unused"},
	})
	drv := newTestDriver(t, dev)

	_, err := drv.ExecCommand(context.Background(), "display version")

	var timeout *types.CommandTimeoutError
	require.ErrorAs(t, err, &timeout)
	assert.True(t, timeout.Retried)
	assert.Equal(t, StateFailed, drv.State())

	_, err = drv.ExecCommand(context.Background(), "display version")
	assert.ErrorIs(t, err, types.ErrConnection)
}

func TestDriverResyncFailureFailsSession(t *testing.T) {
	dev := mock.NewDevice(mock.Options{
		Hang:      map[string]int{"display version": -1},
		Responses: map[string]string{"display version": "unused"},
	})
	drv, err := NewDriver(testConfig(func(c *types.DeviceConfig) {
		c.Timeout = 300 * time.Millisecond
		c.ConnectTimeout = 500 * time.Millisecond
	}), WithDialer(mockDialer(dev)))
	require.NoError(t, err)
	require.NoError(t, drv.Connect(context.Background()))
	defer drv.Disconnect()

	_, err = drv.ExecCommand(context.Background(), "display version")

	var timeout *types.CommandTimeoutError
	require.ErrorAs(t, err, &timeout)
	assert.True(t, timeout.Retried)
	assert.Equal(t, StateFailed, drv.State())
	assert.Equal(t, 1, countCommand(dev.GetCommandHistory(), "display version"))
}

func TestDriverExecCommandsStopsAtFirstFailure(t *testing.T) {
	dev := mock.NewDevice(mock.Options{Responses: map[string]string{
		"display clock": "now",
		"display users": "none",
	}})
	drv := newTestDriver(t, dev)

	got, err := drv.ExecCommands(context.Background(), []string{"display clock", "display bogus", "display users"})

	assert.ErrorIs(t, err, types.ErrUnsupportedCommand)
	assert.Equal(t, []string{"now"}, got)
}

func TestDriverProbe(t *testing.T) {
	dev := mock.NewDevice(mock.Options{})
	drv := newTestDriver(t, dev)

	assert.NoError(t, drv.Probe(context.Background(), time.Second))

	require.NoError(t, dev.Close())
	assert.Eventually(t, func() bool { return drv.State() == StateFailed }, 2*time.Second, 10*time.Millisecond)
	assert.Error(t, drv.Probe(context.Background(), time.Second))
}

func TestDriverBeforeConnect(t *testing.T) {
	drv, err := NewDriver(testConfig(nil), WithDialer(mockDialer(mock.NewDevice(mock.Options{}))))
	require.NoError(t, err)

	_, err = drv.ExecCommand(context.Background(), "display version")
	assert.ErrorIs(t, err, types.ErrUsage)
	assert.Equal(t, StateDisconnected, drv.State())
	assert.NoError(t, drv.Disconnect())
}

func TestNewDriverRequiresAddressForRealTransport(t *testing.T) {
	_, err := NewDriver(&types.DeviceConfig{Username: "admin"})
	assert.Error(t, err)

	_, err = NewDriver(&types.DeviceConfig{Address: "192.0.2.1", Transport: "serial"})
	assert.Error(t, err)
}

func TestResolveConfig(t *testing.T) {
	tests := []struct {
		name  string
		cfg   types.DeviceConfig
		check func(t *testing.T, c *types.DeviceConfig)
	}{
		{
			name: "defaults",
			cfg:  types.DeviceConfig{Address: "192.0.2.1"},
			check: func(t *testing.T, c *types.DeviceConfig) {
				assert.Equal(t, types.TransportSSH, c.Transport)
				assert.Equal(t, 22, c.Port)
				assert.Equal(t, types.DefaultTimeout, c.Timeout)
				assert.Equal(t, types.DefaultConnectTimeout, c.ConnectTimeout)
				assert.Equal(t, []string{"screen-length disable"}, c.Prompts.SetupCommands)
				assert.Equal(t, types.InterfaceNamesLong, c.InterfaceNames)
				assert.Equal(t, "192.0.2.1", c.Name)
			},
		},
		{
			name: "telnet default port",
			cfg:  types.DeviceConfig{Address: "192.0.2.1", Transport: types.TransportTelnet},
			check: func(t *testing.T, c *types.DeviceConfig) {
				assert.Equal(t, 23, c.Port)
			},
		},
		{
			name: "optional args",
			cfg: types.DeviceConfig{Address: "192.0.2.1", OptionalArgs: map[string]string{
				"transport":       "TELNET",
				"port":            "2323",
				"conn_timeout":    "5",
				"timeout":         "90s",
				"secret":          "s3cret",
				"interface_names": "short",
				"setup_commands":  "screen-length disable;undo terminal monitor",
				"snmp_community":  "public",
			}},
			check: func(t *testing.T, c *types.DeviceConfig) {
				assert.Equal(t, types.TransportTelnet, c.Transport)
				assert.Equal(t, 2323, c.Port)
				assert.Equal(t, 5*time.Second, c.ConnectTimeout)
				assert.Equal(t, 90*time.Second, c.Timeout)
				assert.Equal(t, "s3cret", c.Secret)
				assert.Equal(t, types.InterfaceNamesShort, c.InterfaceNames)
				assert.Equal(t, []string{"screen-length disable", "undo terminal monitor"}, c.Prompts.SetupCommands)
				assert.Equal(t, "public", c.SNMP.Community)
			},
		},
		{
			name: "paging left enabled",
			cfg:  types.DeviceConfig{Address: "192.0.2.1", OptionalArgs: map[string]string{"disable_paging": "no"}},
			check: func(t *testing.T, c *types.DeviceConfig) {
				assert.NotNil(t, c.Prompts.SetupCommands)
				assert.Empty(t, c.Prompts.SetupCommands)
			},
		},
		{
			name: "explicit fields win over optional args",
			cfg:  types.DeviceConfig{Address: "192.0.2.1", Port: 830, OptionalArgs: map[string]string{"port": "2222"}},
			check: func(t *testing.T, c *types.DeviceConfig) {
				assert.Equal(t, 830, c.Port)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			got, err := ResolveConfig(&cfg)
			require.NoError(t, err)
			tt.check(t, got)
		})
	}
}

func TestResolveConfigRejectsUnknownModes(t *testing.T) {
	_, err := ResolveConfig(&types.DeviceConfig{Transport: "serial"})
	assert.Error(t, err)

	_, err = ResolveConfig(&types.DeviceConfig{InterfaceNames: "tiny"})
	assert.Error(t, err)
}

func TestBuildResponse(t *testing.T) {
	tests := []struct {
		name     string
		command  string
		raw      string
		wantBody string
		wantEcho string
	}{
		{
			name:     "echo and prompt removed",
			command:  "display clock",
			raw:      "display clock\r\n10:20:30 UTC\r\n<H3C>",
			wantBody: "10:20:30 UTC",
			wantEcho: "display clock",
		},
		{
			name:     "indentation kept",
			command:  "display current-configuration",
			raw:      "display current-configuration\r\n#\r\ninterface GigabitEthernet1/0/1\r\n port link-mode bridge\r\n#\r\n<H3C>",
			wantBody: "#\ninterface GigabitEthernet1/0/1\n port link-mode bridge\n#",
			wantEcho: "display current-configuration",
		},
		{
			name:     "paging markers removed",
			command:  "display arp",
			raw:      "display arp\r\nrow1\r\n  ---- More ----\x1b[16D                \x1b[16Drow2\r\n<H3C>",
			wantBody: "row1\nrow2",
			wantEcho: "display arp",
		},
		{
			name:     "empty command",
			command:  "",
			raw:      "\r\n<H3C>",
			wantBody: "",
			wantEcho: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := buildResponse(tt.command, tt.raw, "<H3C>", 0)
			if resp.Body != tt.wantBody {
				t.Errorf("buildResponse() body = %q, want %q", resp.Body, tt.wantBody)
			}
			if resp.Echo != tt.wantEcho {
				t.Errorf("buildResponse() echo = %q, want %q", resp.Echo, tt.wantEcho)
			}
		})
	}
}

func TestPromptPatterns(t *testing.T) {
	pat, err := compilePatterns("", "", "", "", "")
	require.NoError(t, err)
	host := hostPromptRegexp("core-sw1")

	tests := []struct {
		name     string
		input    string
		wantAny  bool
		wantHost bool
	}{
		{"user view", "\r\n<core-sw1>", true, true},
		{"system view", "\r\n[core-sw1]", true, true},
		{"interface view", "\r\n[core-sw1-GigabitEthernet1/0/1]", true, true},
		{"uncommitted marker", "\r\n[~core-sw1]", true, true},
		{"other host", "\r\n<edge>", true, false},
		{"bracket in output", "\r\n  [Sub-interface] text", false, false},
		{"prompt mid buffer", "<core-sw1>\r\nmore output", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pat.prompt.MatchString(tt.input); got != tt.wantAny {
				t.Errorf("default prompt match(%q) = %v, want %v", tt.input, got, tt.wantAny)
			}
			if got := host.MatchString(tt.input); got != tt.wantHost {
				t.Errorf("host prompt match(%q) = %v, want %v", tt.input, got, tt.wantHost)
			}
		})
	}
}

func TestHostnameFromPrompt(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"<H3C>", "H3C"},
		{"[core-sw1]", "core-sw1"},
		{"[~core-sw1]", "core-sw1"},
		{" <edge> ", "edge"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := hostnameFromPrompt(tt.input); got != tt.want {
				t.Errorf("hostnameFromPrompt(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDialerFor(t *testing.T) {
	tests := []struct {
		transport types.Transport
		wantErr   bool
	}{
		{types.TransportSSH, false},
		{types.TransportTelnet, false},
		{"", false},
		{"serial", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.transport), func(t *testing.T) {
			d, err := DialerFor(tt.transport)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DialerFor(%q) error = %v, wantErr %v", tt.transport, err, tt.wantErr)
			}
			if err == nil && d == nil {
				t.Errorf("DialerFor(%q) returned nil dialer", tt.transport)
			}
		})
	}
}

func TestIdleWatcherClosesStream(t *testing.T) {
	closed := make(chan struct{})
	s := newStream(nil, nil, func() error {
		close(closed)
		return nil
	})
	s.SetIdleTimeout(20 * time.Millisecond)

	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("stream was not closed by idle timer")
	}
	assert.False(t, s.Alive())
	assert.NoError(t, s.Close())
}
