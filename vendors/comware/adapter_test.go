package comware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanoncore/cmw-southbound/drivers/cli"
	"github.com/nanoncore/cmw-southbound/drivers/mock"
	"github.com/nanoncore/cmw-southbound/types"
)

func testConfig() *types.DeviceConfig {
	return &types.DeviceConfig{
		Name:           "core-sw1",
		Address:        "192.0.2.10",
		Username:       "admin",
		Password:       "admin",
		Timeout:        2 * time.Second,
		ConnectTimeout: 2 * time.Second,
	}
}

// sequenceDialer hands out one device per dial; a nil device fails the dial
type sequenceDialer struct {
	mu      sync.Mutex
	devices []*mock.Device
	dials   int
}

func (s *sequenceDialer) dial(ctx context.Context, cfg *types.DeviceConfig) (cli.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dials >= len(s.devices) {
		return nil, errors.New("no more devices")
	}
	dev := s.devices[s.dials]
	s.dials++
	if dev == nil {
		return nil, errors.New("connection refused")
	}
	return dev, nil
}

func newDevice() *mock.Device {
	return mock.NewDevice(mock.Options{Hostname: "core-sw1"})
}

func openDriver(t *testing.T, dev *mock.Device, opts ...Option) *Driver {
	t.Helper()
	seq := &sequenceDialer{devices: []*mock.Device{dev}}
	drv, err := New(testConfig(), append([]Option{WithDialer(seq.dial)}, opts...)...)
	require.NoError(t, err)
	require.NoError(t, drv.Open(context.Background()))
	t.Cleanup(func() { _ = drv.Close() })
	return drv
}

func TestDriverConcurrentOpenDialsOnce(t *testing.T) {
	seq := &sequenceDialer{devices: []*mock.Device{newDevice(), newDevice()}}
	drv, err := New(testConfig(), WithDialer(seq.dial))
	require.NoError(t, err)
	t.Cleanup(func() { _ = drv.Close() })

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = drv.Open(context.Background())
		}(i)
	}
	wg.Wait()

	var ok, usage int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, types.ErrUsage):
			usage++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, usage)
	seq.mu.Lock()
	assert.Equal(t, 1, seq.dials)
	seq.mu.Unlock()
}

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestDriverLifecycle(t *testing.T) {
	seq := &sequenceDialer{devices: []*mock.Device{newDevice()}}
	drv, err := New(testConfig(), WithDialer(seq.dial))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = drv.GetFacts(ctx)
	assert.ErrorIs(t, err, types.ErrUsage, "query before open")
	assert.False(t, drv.IsActive(ctx))

	require.NoError(t, drv.Open(ctx))
	assert.True(t, drv.IsActive(ctx))

	err = drv.Open(ctx)
	var usage *types.UsageError
	require.ErrorAs(t, err, &usage)
	assert.Equal(t, "opened", usage.State)

	assert.NoError(t, drv.Close())
	assert.NoError(t, drv.Close())
	assert.False(t, drv.IsActive(ctx))

	_, err = drv.GetArpTable(ctx)
	assert.ErrorIs(t, err, types.ErrUsage)
	assert.ErrorIs(t, drv.Open(ctx), types.ErrUsage, "closed drivers stay closed")
}

func TestDriverFailedOpenCanRetry(t *testing.T) {
	seq := &sequenceDialer{devices: []*mock.Device{nil, newDevice()}}
	drv, err := New(testConfig(), WithDialer(seq.dial))
	require.NoError(t, err)
	defer drv.Close()

	require.Error(t, drv.Open(context.Background()))
	_, err = drv.GetFacts(context.Background())
	assert.ErrorIs(t, err, types.ErrUsage)

	require.NoError(t, drv.Open(context.Background()))
	assert.True(t, drv.IsActive(context.Background()))
}

func TestDriverReopenAfterPeerClose(t *testing.T) {
	first, second := newDevice(), newDevice()
	seq := &sequenceDialer{devices: []*mock.Device{first, second}}
	drv, err := New(testConfig(), WithDialer(seq.dial))
	require.NoError(t, err)
	defer drv.Close()
	ctx := context.Background()

	require.NoError(t, drv.Open(ctx))
	require.NoError(t, first.Close())
	require.Eventually(t, func() bool {
		return drv.Session().State() == cli.StateFailed
	}, 2*time.Second, 10*time.Millisecond)

	assert.False(t, drv.IsActive(ctx))
	_, err = drv.GetInterfaces(ctx)
	assert.ErrorIs(t, err, types.ErrConnection)

	require.NoError(t, drv.Open(ctx))
	facts, err := drv.GetFacts(ctx)
	require.NoError(t, err)
	assert.Equal(t, "core-sw1", facts.Hostname)
	assert.Contains(t, second.GetCommandHistory(), "display version")
}

func TestDriverGetFacts(t *testing.T) {
	drv := openDriver(t, newDevice())

	facts, err := drv.GetFacts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, VendorH3C, facts.Vendor)
	assert.Equal(t, "S5560X-30C-EI", facts.Model)
	assert.Equal(t, "219801A2DE8193Q00012", facts.SerialNumber)
	assert.Equal(t, "core-sw1", facts.Hostname)
	assert.Equal(t, int64(274320), facts.Uptime)
	assert.Contains(t, facts.InterfaceList, "Ten-GigabitEthernet1/0/49")
	assert.Empty(t, facts.Warnings)
}

func TestDriverGetFactsHostnameFromPrompt(t *testing.T) {
	dev := newDevice()
	dev.SetResponse(cmdSysname, "")
	drv := openDriver(t, dev)

	facts, err := drv.GetFacts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "core-sw1", facts.Hostname)
	assert.Equal(t, "core-sw1", facts.FQDN)
}

func TestDriverGetConfig(t *testing.T) {
	drv := openDriver(t, newDevice())
	ctx := context.Background()

	running, err := drv.GetConfig(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, running, "sysname core-sw1")
	assert.Contains(t, running, "description uplink")

	startup, err := drv.GetConfig(ctx, types.ConfigStartup)
	require.NoError(t, err)
	assert.Contains(t, startup, "sysname core-sw1")

	candidate, err := drv.GetConfig(ctx, types.ConfigCandidate)
	require.NoError(t, err)
	assert.Empty(t, candidate)

	_, err = drv.GetConfig(ctx, types.ConfigSource("rollback"))
	assert.Error(t, err)
}

func TestDriverCLI(t *testing.T) {
	drv := openDriver(t, newDevice())

	out, err := drv.CLI(context.Background(), []string{"display version", "display bogus", "display arp"})

	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrUnsupportedCommand)
	require.Len(t, out, 3)
	assert.Contains(t, out["display version"], "Release 3208P03")
	assert.Contains(t, out["display arp"], "192.168.1.10")
	assert.True(t, drv.IsActive(context.Background()), "rejections keep the session")
}

func TestDriverArpTableWithMalformedRow(t *testing.T) {
	dev := newDevice()
	dev.SetResponse(cmdARP, mock.DisplayARP+"\n192.168.1.99    0cda-41b5")
	drv := openDriver(t, dev)

	table, err := drv.GetArpTable(context.Background())
	require.NoError(t, err)
	assert.Len(t, table.Entries, 3)
	require.Len(t, table.Warnings, 1)
	assert.Equal(t, 6, table.Warnings[0].Line)
}

func TestDriverTables(t *testing.T) {
	drv := openDriver(t, newDevice())
	ctx := context.Background()

	mac, err := drv.GetMACAddressTable(ctx)
	require.NoError(t, err)
	assert.Len(t, mac.Entries, 3)

	lldp, err := drv.GetLLDPNeighbors(ctx)
	require.NoError(t, err)
	assert.Len(t, lldp.Neighbors, 2)

	ifaces, err := drv.GetInterfaces(ctx)
	require.NoError(t, err)
	assert.Len(t, ifaces.Interfaces, 3)
	assert.True(t, ifaces.Interfaces["GigabitEthernet1/0/1"].IsUp)

	ips, err := drv.GetInterfacesIP(ctx)
	require.NoError(t, err)
	assert.Len(t, ips.Interfaces["Vlan-interface1"], 3)
}

func TestDriverInterfaceNamesShort(t *testing.T) {
	cfg := testConfig()
	cfg.InterfaceNames = types.InterfaceNamesShort
	seq := &sequenceDialer{devices: []*mock.Device{newDevice()}}
	drv, err := New(cfg, WithDialer(seq.dial))
	require.NoError(t, err)
	defer drv.Close()
	require.NoError(t, drv.Open(context.Background()))

	arp, err := drv.GetArpTable(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "XGE1/0/49", arp.Entries[2].Interface)
}

type fakeSNMP struct {
	walks    map[string]map[string]interface{}
	walkErr  error
	connects int
	closes   int
}

func (f *fakeSNMP) GetSNMP(ctx context.Context, oid string) (interface{}, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeSNMP) WalkSNMP(ctx context.Context, oid string) (map[string]interface{}, error) {
	if f.walkErr != nil {
		return nil, f.walkErr
	}
	if w, ok := f.walks[oid]; ok {
		return w, nil
	}
	return nil, errors.New("no such object")
}

func (f *fakeSNMP) Connect(ctx context.Context) error {
	f.connects++
	return nil
}

func (f *fakeSNMP) Close() error {
	f.closes++
	return nil
}

func TestDriverCountersFromSNMP(t *testing.T) {
	snmp := &fakeSNMP{walks: map[string]map[string]interface{}{
		OIDIfName:              {"1": "GE1/0/1", "2": []byte("Vlan-interface1")},
		OIDIfHCInOctets:        {"1": uint64(1000), "2": uint64(20)},
		OIDIfHCInUcastPkts:     {"1": uint64(10), "2": uint64(2)},
		OIDIfHCInBroadcastPkts: {"1": uint64(3)},
		OIDIfHCOutOctets:       {"1": uint64(500)},
		OIDIfInErrors:          {"1": uint(4)},
	}}
	drv := openDriver(t, newDevice(), WithSNMP(snmp))

	result, err := drv.GetInterfacesCounters(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, snmp.connects)
	assert.Equal(t, types.CountersSourceSNMP, result.Source)
	ge := result.Counters["GigabitEthernet1/0/1"]
	assert.Equal(t, uint64(1000), ge.RxOctets)
	assert.Equal(t, uint64(13), ge.RxPackets)
	assert.Equal(t, uint64(500), ge.TxOctets)
	assert.Equal(t, uint64(4), ge.RxErrors)
	assert.Equal(t, uint64(2), result.Counters["Vlan-interface1"].RxPackets)
	// columns missing from the agent are reported, not fatal
	assert.NotEmpty(t, result.Warnings)

	require.NoError(t, drv.Close())
	assert.Equal(t, 1, snmp.closes)
}

func TestDriverCountersFallBackToCLI(t *testing.T) {
	snmp := &fakeSNMP{walkErr: errors.New("request timeout")}
	drv := openDriver(t, newDevice(), WithSNMP(snmp))

	result, err := drv.GetInterfacesCounters(context.Background())
	require.NoError(t, err)

	assert.Equal(t, types.CountersSourceCLI, result.Source)
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0].Reason, "snmp unavailable")
	assert.Equal(t, uint64(98765432), result.Counters["GigabitEthernet1/0/1"].RxOctets)
}

func TestDriverCountersWithoutSNMP(t *testing.T) {
	drv := openDriver(t, newDevice())

	result, err := drv.GetInterfacesCounters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.CountersSourceCLI, result.Source)
	assert.Empty(t, result.Warnings)
	assert.Len(t, result.Counters, 3)
}

func TestDriverPing(t *testing.T) {
	dev := newDevice()
	drv := openDriver(t, dev)
	ctx := context.Background()

	res, err := drv.Ping(ctx, "192.168.1.10", types.PingOptions{})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Received)
	assert.Equal(t, 20.0, res.PacketLoss)
	assert.Contains(t, dev.GetCommandHistory(), "ping -c 5 -s 100 -t 2000 192.168.1.10")

	res, err = drv.Ping(ctx, "nosuch.example", types.PingOptions{})
	require.NoError(t, err, "unresolvable destinations are a result")
	assert.Equal(t, 100.0, res.PacketLoss)
	assert.NotEmpty(t, res.Warnings)

	_, err = drv.Ping(ctx, "", types.PingOptions{})
	assert.Error(t, err)
}

func TestDriverCustomParsers(t *testing.T) {
	parsers := DefaultParsers()
	parsers.ARP.Commands = []string{"display arp all"}
	dev := newDevice()
	dev.SetResponse("display arp all", mock.DisplayARP)
	drv := openDriver(t, dev, WithParsers(parsers))

	table, err := drv.GetArpTable(context.Background())
	require.NoError(t, err)
	assert.Len(t, table.Entries, 3)
	assert.Contains(t, dev.GetCommandHistory(), "display arp all")
}
