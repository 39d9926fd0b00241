package comware

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/nanoncore/cmw-southbound/types"
	"github.com/nanoncore/cmw-southbound/vendors/common"
)

var (
	protocolRegex    = regexp.MustCompile(`(?i)^line protocol (?:current )?state\s*:\s*(.+)$`)
	descriptionRegex = regexp.MustCompile(`(?i)^description\s*:\s*(.*)$`)
	hwAddressRegex   = regexp.MustCompile(`(?i)hardware address(?:\s+is|\s*:)\s*([0-9a-f]{4}[-.][0-9a-f]{4}[-.][0-9a-f]{4})`)
	mtuRegex         = regexp.MustCompile(`(?i)(?:maximum transmit unit(?:\s+is|\s*:)|maximum transmission unit\s*:)\s*(\d+)`)
	speedModeRegex   = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*([kmgt])bps-speed mode`)
	speedRegex       = regexp.MustCompile(`(?i)^speed\s*:\s*(\S+)`)
	bandwidthRegex   = regexp.MustCompile(`(?i)^bandwidth\s*:\s*(\d+)\s*kbps`)
	flappedRegex     = regexp.MustCompile(`(?i)^last link flapped\s*:\s*(.+)$`)

	counterSection = regexp.MustCompile(`^(Input|Output)\b`)
	counterValue   = regexp.MustCompile(`(-|\d[\d,]*)\s+(packets|bytes|unicasts|broadcasts|multicasts|input errors|output errors|errors|drops|discards)\b`)
)

func parseInterfaces(out Output, n *common.Normalizer) (map[string]types.Interface, []types.ParseWarning) {
	result := make(map[string]types.Interface)
	var warnings []types.ParseWarning

	text := out.Require(QueryInterfaces, 0, &warnings)
	for _, block := range splitInterfaceBlocks(text) {
		iface, w := parseInterfaceBlock(block, n)
		warnings = append(warnings, w...)
		if _, dup := result[iface.Name]; dup {
			warnings = append(warnings, blockWarn(QueryInterfaces, block, "duplicate interface"))
			continue
		}
		result[iface.Name] = iface
	}
	if len(result) == 0 && strings.TrimSpace(text) != "" {
		warnings = append(warnings, types.ParseWarning{Query: QueryInterfaces, Reason: "no interface blocks found"})
	}
	return result, warnings
}

func parseCounters(out Output, n *common.Normalizer) (map[string]types.Counters, []types.ParseWarning) {
	result := make(map[string]types.Counters)
	var warnings []types.ParseWarning
	for _, block := range splitInterfaceBlocks(out.Require(QueryCounters, 0, &warnings)) {
		c, w := parseBlockCounters(block)
		warnings = append(warnings, w...)
		result[n.Interface(block.name)] = c
	}
	return result, warnings
}

func blockWarn(query string, block interfaceBlock, reason string) types.ParseWarning {
	return types.ParseWarning{Query: query, Line: block.line, Text: block.name, Reason: reason}
}

func parseInterfaceBlock(block interfaceBlock, n *common.Normalizer) (types.Interface, []types.ParseWarning) {
	var warnings []types.ParseWarning
	iface := types.Interface{
		Name:        n.Interface(block.name),
		AdminState:  types.StateUp,
		LastFlapped: -1,
	}

	state := block.state
	if strings.Contains(strings.ToLower(state), "administratively") {
		iface.AdminState = types.StateDown
	}
	iface.OperState = common.ParseState(state)

	var speedMode, speedField string
	var bandwidth uint64
	for _, line := range block.lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case protocolRegex.MatchString(trimmed):
			// physical up with protocol down is reported as down
			proto := common.ParseState(protocolRegex.FindStringSubmatch(trimmed)[1])
			if iface.OperState == types.StateUp && proto != types.StateUp {
				iface.OperState = proto
			}
		case descriptionRegex.MatchString(trimmed) && iface.Description == "":
			iface.Description = strings.TrimSpace(descriptionRegex.FindStringSubmatch(trimmed)[1])
		case speedRegex.MatchString(trimmed):
			speedField = speedRegex.FindStringSubmatch(trimmed)[1]
		case bandwidthRegex.MatchString(trimmed):
			kbps, _ := strconv.ParseUint(bandwidthRegex.FindStringSubmatch(trimmed)[1], 10, 64)
			bandwidth = kbps * 1000
		case flappedRegex.MatchString(trimmed):
			if secs, ok := parseDuration(flappedRegex.FindStringSubmatch(trimmed)[1]); ok {
				iface.LastFlapped = float64(secs)
			}
		}
		if m := hwAddressRegex.FindStringSubmatch(trimmed); m != nil && iface.MACAddress == "" {
			mac, err := common.NormalizeMAC(m[1])
			if err != nil {
				warnings = append(warnings, blockWarn(QueryInterfaces, block, err.Error()))
			} else {
				iface.MACAddress = mac
			}
		}
		if m := mtuRegex.FindStringSubmatch(trimmed); m != nil && iface.MTU == 0 {
			iface.MTU, _ = strconv.Atoi(m[1])
		}
		if m := speedModeRegex.FindStringSubmatch(trimmed); m != nil && speedMode == "" {
			speedMode = m[1] + m[2]
		}
	}

	switch {
	case speedMode != "":
		iface.Speed = mustSpeed(speedMode, block, &warnings)
	case speedField != "" && !strings.EqualFold(speedField, "auto") && !strings.EqualFold(speedField, "unknown"):
		iface.Speed = mustSpeed(speedField, block, &warnings)
	default:
		iface.Speed = bandwidth
	}

	iface.IsEnabled = iface.AdminState == types.StateUp
	iface.IsUp = iface.OperState == types.StateUp

	counters, w := parseBlockCounters(block)
	iface.Counters = counters
	warnings = append(warnings, w...)
	return iface, warnings
}

func mustSpeed(s string, block interfaceBlock, warnings *[]types.ParseWarning) uint64 {
	v, err := common.ParseSpeed(s)
	if err != nil {
		*warnings = append(*warnings, blockWarn(QueryInterfaces, block, err.Error()))
		return 0
	}
	return v
}

// parseBlockCounters reads the Input and Output sections of one interface.
// A section starts at a line beginning with Input or Output and continues on
// indented lines that start with a number or "-". "(normal)" sections repeat
// the totals and are ignored. The first value of each kind wins.
func parseBlockCounters(block interfaceBlock) (types.Counters, []types.ParseWarning) {
	var c types.Counters
	var warnings []types.ParseWarning
	seen := make(map[string]bool)

	dir := ""
	ignore := false
	for _, line := range block.lines {
		trimmed := strings.TrimSpace(line)
		if m := counterSection.FindStringSubmatch(trimmed); m != nil {
			dir = strings.ToLower(m[1])
			ignore = strings.Contains(strings.ToLower(trimmed), "(normal)")
		} else if dir == "" || trimmed == "" || !(trimmed[0] == '-' || (trimmed[0] >= '0' && trimmed[0] <= '9')) {
			dir = ""
			continue
		}
		if ignore {
			continue
		}
		for _, m := range counterValue.FindAllStringSubmatch(trimmed, -1) {
			kind := m[2]
			if kind == "input errors" || kind == "output errors" {
				kind = "errors"
			}
			if kind == "drops" {
				kind = "discards"
			}
			key := dir + " " + kind
			if seen[key] {
				continue
			}
			v, err := common.ParseCounter(m[1])
			if err != nil {
				warnings = append(warnings, blockWarn(QueryCounters, block, fmt.Sprintf("%s: %v", key, err)))
				continue
			}
			seen[key] = true
			setCounter(&c, dir, kind, v)
		}
	}
	return c, warnings
}

func setCounter(c *types.Counters, dir, kind string, v uint64) {
	rx := dir == "input"
	var field *uint64
	switch kind {
	case "packets":
		field = pick(rx, &c.RxPackets, &c.TxPackets)
	case "bytes":
		field = pick(rx, &c.RxOctets, &c.TxOctets)
	case "unicasts":
		field = pick(rx, &c.RxUnicastPackets, &c.TxUnicastPackets)
	case "broadcasts":
		field = pick(rx, &c.RxBroadcastPackets, &c.TxBroadcastPackets)
	case "multicasts":
		field = pick(rx, &c.RxMulticastPackets, &c.TxMulticastPackets)
	case "errors":
		field = pick(rx, &c.RxErrors, &c.TxErrors)
	case "discards":
		field = pick(rx, &c.RxDiscards, &c.TxDiscards)
	default:
		return
	}
	*field = v
}

func pick(rx bool, in, out *uint64) *uint64 {
	if rx {
		return in
	}
	return out
}
