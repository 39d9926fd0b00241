package cli

import (
	"context"
	"net"
	"strconv"

	"github.com/ziutek/telnet"

	"github.com/nanoncore/cmw-southbound/types"
)

// DialTelnet opens a telnet connection. Login is handled by the session
// because telnet has no authentication of its own.
func DialTelnet(ctx context.Context, cfg *types.DeviceConfig) (Channel, error) {
	port := cfg.Port
	if port == 0 {
		port = types.DefaultTelnetPort
	}
	addr := net.JoinHostPort(cfg.Address, strconv.Itoa(port))

	conn, err := telnet.DialTimeout("tcp", addr, dialTimeout(ctx, cfg))
	if err != nil {
		return nil, &types.ConnectionError{Device: cfg.Name, Op: "telnet dial", Err: err}
	}
	// "\n" goes out as "\r\n"
	conn.SetUnixWriteMode(true)

	return newStream(conn, conn, conn.Close), nil
}
