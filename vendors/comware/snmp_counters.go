package comware

import (
	"context"
	"fmt"

	"github.com/nanoncore/cmw-southbound/types"
	"github.com/nanoncore/cmw-southbound/vendors/common"
)

// IF-MIB objects used for interface counters (RFC 2863)
const (
	OIDIfName = "1.3.6.1.2.1.31.1.1.1.1"

	OIDIfHCInOctets         = "1.3.6.1.2.1.31.1.1.1.6"
	OIDIfHCInUcastPkts      = "1.3.6.1.2.1.31.1.1.1.7"
	OIDIfHCInMulticastPkts  = "1.3.6.1.2.1.31.1.1.1.8"
	OIDIfHCInBroadcastPkts  = "1.3.6.1.2.1.31.1.1.1.9"
	OIDIfHCOutOctets        = "1.3.6.1.2.1.31.1.1.1.10"
	OIDIfHCOutUcastPkts     = "1.3.6.1.2.1.31.1.1.1.11"
	OIDIfHCOutMulticastPkts = "1.3.6.1.2.1.31.1.1.1.12"
	OIDIfHCOutBroadcastPkts = "1.3.6.1.2.1.31.1.1.1.13"
	OIDIfInDiscards         = "1.3.6.1.2.1.2.2.1.13"
	OIDIfInErrors           = "1.3.6.1.2.1.2.2.1.14"
	OIDIfOutDiscards        = "1.3.6.1.2.1.2.2.1.19"
	OIDIfOutErrors          = "1.3.6.1.2.1.2.2.1.20"
)

// counterColumns maps each walked column to its Counters field
var counterColumns = []struct {
	oid string
	set func(*types.Counters, uint64)
}{
	{OIDIfHCInOctets, func(c *types.Counters, v uint64) { c.RxOctets = v }},
	{OIDIfHCInUcastPkts, func(c *types.Counters, v uint64) { c.RxUnicastPackets = v }},
	{OIDIfHCInMulticastPkts, func(c *types.Counters, v uint64) { c.RxMulticastPackets = v }},
	{OIDIfHCInBroadcastPkts, func(c *types.Counters, v uint64) { c.RxBroadcastPackets = v }},
	{OIDIfHCOutOctets, func(c *types.Counters, v uint64) { c.TxOctets = v }},
	{OIDIfHCOutUcastPkts, func(c *types.Counters, v uint64) { c.TxUnicastPackets = v }},
	{OIDIfHCOutMulticastPkts, func(c *types.Counters, v uint64) { c.TxMulticastPackets = v }},
	{OIDIfHCOutBroadcastPkts, func(c *types.Counters, v uint64) { c.TxBroadcastPackets = v }},
	{OIDIfInDiscards, func(c *types.Counters, v uint64) { c.RxDiscards = v }},
	{OIDIfInErrors, func(c *types.Counters, v uint64) { c.RxErrors = v }},
	{OIDIfOutDiscards, func(c *types.Counters, v uint64) { c.TxDiscards = v }},
	{OIDIfOutErrors, func(c *types.Counters, v uint64) { c.TxErrors = v }},
}

// snmpCounters walks IF-MIB and keys counters by normalized ifName. A failed
// ifName walk is an error; a failed counter column only warns. Packet totals
// are the sum of unicast, multicast and broadcast packets.
func snmpCounters(ctx context.Context, exec types.SNMPExecutor, n *common.Normalizer) (map[string]types.Counters, []types.ParseWarning, error) {
	names, err := exec.WalkSNMP(ctx, OIDIfName)
	if err != nil {
		return nil, nil, fmt.Errorf("walk ifName: %w", err)
	}
	if len(names) == 0 {
		return nil, nil, fmt.Errorf("walk ifName: no interfaces")
	}

	byIndex := make(map[string]*types.Counters, len(names))
	nameOf := make(map[string]string, len(names))
	for index, v := range names {
		name, ok := common.ParseStringSNMPValue(v)
		if !ok || name == "" {
			continue
		}
		byIndex[index] = &types.Counters{}
		nameOf[index] = n.Interface(name)
	}

	var warnings []types.ParseWarning
	for _, col := range counterColumns {
		values, err := exec.WalkSNMP(ctx, col.oid)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			warnings = append(warnings, types.ParseWarning{Query: QueryCounters, Reason: fmt.Sprintf("walk %s: %v", col.oid, err)})
			continue
		}
		for index, v := range values {
			c, ok := byIndex[index]
			if !ok {
				continue
			}
			if u, ok := common.ParseUint64SNMPValue(v); ok {
				col.set(c, u)
			}
		}
	}

	result := make(map[string]types.Counters, len(byIndex))
	for index, c := range byIndex {
		c.RxPackets = c.RxUnicastPackets + c.RxMulticastPackets + c.RxBroadcastPackets
		c.TxPackets = c.TxUnicastPackets + c.TxMulticastPackets + c.TxBroadcastPackets
		result[nameOf[index]] = *c
	}
	return result, warnings, nil
}
