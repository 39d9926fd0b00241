package snmp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gosnmp/gosnmp"
	"github.com/sirupsen/logrus"

	"github.com/nanoncore/cmw-southbound/internal/logging"
	"github.com/nanoncore/cmw-southbound/types"
	"github.com/nanoncore/cmw-southbound/vendors/common"
)

// DefaultPort is the standard SNMP agent port
const DefaultPort = 161

// Client is a read-only SNMP client used as an optional data source
// next to the CLI session
// Note: only v1 and v2c communities are supported
type Client struct {
	config *types.DeviceConfig
	log    logrus.FieldLogger

	mu   sync.Mutex
	snmp *gosnmp.GoSNMP
}

// NewClient creates an SNMP client from the device SNMP settings
func NewClient(config *types.DeviceConfig) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if config.Address == "" {
		return nil, fmt.Errorf("address is required")
	}
	if config.SNMP.Community == "" {
		return nil, fmt.Errorf("snmp community is required")
	}
	if _, err := parseVersion(config.SNMP.Version); err != nil {
		return nil, err
	}
	return &Client{
		config: config,
		log:    logging.ForDevice(config.Logger, config.Name).WithField("source", "snmp"),
	}, nil
}

func parseVersion(v string) (gosnmp.SnmpVersion, error) {
	switch v {
	case "", "2c", "2", "v2c":
		return gosnmp.Version2c, nil
	case "1", "v1":
		return gosnmp.Version1, nil
	default:
		return 0, fmt.Errorf("unsupported snmp version %q", v)
	}
}

// Connect opens the UDP socket to the agent
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snmp != nil {
		return nil
	}

	version, _ := parseVersion(c.config.SNMP.Version)
	port := c.config.SNMP.Port
	if port <= 0 || port > 65535 {
		port = DefaultPort
	}
	timeout := c.config.ConnectTimeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	client := &gosnmp.GoSNMP{
		Context:   ctx,
		Target:    c.config.Address,
		Port:      uint16(port), //nolint:gosec // validated above
		Community: c.config.SNMP.Community,
		Version:   version,
		Timeout:   timeout,
		Retries:   2,
		MaxOids:   gosnmp.MaxOids,
	}
	if err := client.Connect(); err != nil {
		return &types.ConnectionError{Device: c.config.Name, Op: "snmp connect", Err: err}
	}
	c.snmp = client
	c.log.WithField("version", version.String()).Debug("snmp connected")
	return nil
}

// Close releases the socket. It is safe to call on a closed client.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snmp == nil {
		return nil
	}
	err := c.snmp.Conn.Close()
	c.snmp = nil
	return err
}

// IsConnected returns true if connected
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snmp != nil
}

func (c *Client) handle(ctx context.Context) (*gosnmp.GoSNMP, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snmp == nil {
		return nil, fmt.Errorf("not connected")
	}
	c.snmp.Context = ctx
	return c.snmp, nil
}

// GetSNMP implements types.SNMPExecutor - retrieves a single SNMP value
func (c *Client) GetSNMP(ctx context.Context, oid string) (interface{}, error) {
	client, err := c.handle(ctx)
	if err != nil {
		return nil, err
	}

	result, err := client.Get([]string{oid})
	if err != nil {
		return nil, fmt.Errorf("SNMP GET failed: %w", err)
	}
	if len(result.Variables) == 0 {
		return nil, fmt.Errorf("no result for OID %s", oid)
	}
	variable := result.Variables[0]
	if variable.Type == gosnmp.NoSuchObject || variable.Type == gosnmp.NoSuchInstance {
		return nil, fmt.Errorf("no such object %s", oid)
	}
	return convertValue(variable), nil
}

// WalkSNMP implements types.SNMPExecutor - walks a subtree and returns values
// keyed by the index below the base OID
func (c *Client) WalkSNMP(ctx context.Context, oid string) (map[string]interface{}, error) {
	client, err := c.handle(ctx)
	if err != nil {
		return nil, err
	}

	results := make(map[string]interface{})
	walkFn := func(pdu gosnmp.SnmpPDU) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		index, ok := common.OIDIndex(pdu.Name, oid)
		if !ok {
			return nil
		}
		results[index] = convertValue(pdu)
		return nil
	}

	if client.Version == gosnmp.Version1 {
		err = client.Walk(oid, walkFn)
	} else {
		err = client.BulkWalk(oid, walkFn)
	}
	if err != nil {
		return nil, fmt.Errorf("SNMP WALK %s failed: %w", oid, err)
	}
	c.log.WithFields(logrus.Fields{"oid": oid, "rows": len(results)}).Debug("snmp walk complete")
	return results, nil
}

// convertValue flattens PDU values: strings for octet strings, uint64 for
// counters and gauges, int64 for integers
func convertValue(pdu gosnmp.SnmpPDU) interface{} {
	switch pdu.Type {
	case gosnmp.OctetString:
		if b, ok := pdu.Value.([]byte); ok {
			return string(b)
		}
	case gosnmp.Integer:
		if v, ok := pdu.Value.(int); ok {
			return int64(v)
		}
	case gosnmp.Counter32, gosnmp.Gauge32, gosnmp.TimeTicks:
		if v, ok := pdu.Value.(uint); ok {
			return uint64(v)
		}
		if v, ok := pdu.Value.(uint32); ok {
			return uint64(v)
		}
	case gosnmp.Counter64:
		if v, ok := pdu.Value.(uint64); ok {
			return v
		}
	}
	return pdu.Value
}

// Ensure Client implements SNMPExecutor
var _ types.SNMPExecutor = (*Client)(nil)
