package comware

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/nanoncore/cmw-southbound/vendors/common"
)

// Output layouts differ between Comware V5 and V7 releases. Each difference
// is handled by one small function or table definition in this file so the
// parsers themselves stay layout agnostic.

var (
	// V5: "GigabitEthernet1/0/1 current state: UP"
	v5BlockStart = regexp.MustCompile(`(?i)^(\S+)\s+current state\s*:\s*(.*)$`)
	// V7: bare name line, then "Current state: UP"
	v7BlockName  = regexp.MustCompile(`^[A-Za-z][\w\-]*\d[\w/.:\-]*$`)
	v7StateLine  = regexp.MustCompile(`(?i)^current state\s*:\s*(.*)$`)
	durationPart = regexp.MustCompile(`(?i)(\d+)\s*(year|week|day|hour|minute|min|second|sec)s?\b`)
)

// interfaceBlock is the text of one interface in "display interface" or
// "display ip interface" output
type interfaceBlock struct {
	name  string
	state string
	line  int // 1-based line of the block start
	lines []string
}

// splitInterfaceBlocks cuts output into per-interface blocks, accepting the
// V5 one-line header and the V7 two-line header
func splitInterfaceBlocks(output string) []interfaceBlock {
	lines := common.Lines(common.StripANSI(output))
	var blocks []interfaceBlock
	var cur *interfaceBlock
	for i := 0; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if m := v5BlockStart.FindStringSubmatch(trimmed); m != nil {
			blocks = append(blocks, interfaceBlock{name: m[1], state: strings.TrimSpace(m[2]), line: i + 1})
			cur = &blocks[len(blocks)-1]
			continue
		}
		if v7BlockName.MatchString(trimmed) && lines[i] == trimmed {
			if next, ok := nextNonEmpty(lines, i+1); ok {
				if m := v7StateLine.FindStringSubmatch(strings.TrimSpace(lines[next])); m != nil {
					blocks = append(blocks, interfaceBlock{name: trimmed, state: strings.TrimSpace(m[1]), line: i + 1})
					cur = &blocks[len(blocks)-1]
					i = next
					continue
				}
			}
		}
		if cur != nil {
			cur.lines = append(cur.lines, lines[i])
		}
	}
	return blocks
}

func nextNonEmpty(lines []string, from int) (int, bool) {
	for i := from; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) != "" {
			return i, true
		}
	}
	return 0, false
}

// parseDuration sums "3 days 4 hours 10 minutes" (V7) or
// "0 weeks, 3 days, 4 hours, 12 minutes" (V5 and V7 uptime) into seconds.
// ok is false when no component is present, e.g. "Never".
func parseDuration(s string) (int64, bool) {
	matches := durationPart.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return 0, false
	}
	var total int64
	for _, m := range matches {
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return 0, false
		}
		switch strings.ToLower(m[2]) {
		case "year":
			total += n * 365 * 86400
		case "week":
			total += n * 7 * 86400
		case "day":
			total += n * 86400
		case "hour":
			total += n * 3600
		case "minute", "min":
			total += n * 60
		default:
			total += n
		}
	}
	return total, true
}

// Header synonyms per table. The first entry is the V7 text, later entries
// cover V5 and localized builds.
var (
	arpColumns = []common.Column{
		{Key: "ip", Headers: []string{"IP address", "IP ADDRESS"}, Required: true},
		{Key: "mac", Headers: []string{"MAC address"}, Required: true},
		{Key: "vlan", Headers: []string{"VLAN/VSI name", "VLAN/VSI", "VLAN ID", "VLAN"}},
		{Key: "interface", Headers: []string{"Interface", "Port Name / AL ID", "Port Name", "Port"}, Required: true},
		{Key: "aging", Headers: []string{"Aging", "Aging(min)"}},
		{Key: "type", Headers: []string{"Type"}},
	}

	macColumns = []common.Column{
		{Key: "mac", Headers: []string{"MAC Address", "MAC ADDR"}, Required: true},
		{Key: "vlan", Headers: []string{"VLAN ID", "VLAN/VSI", "VLAN"}, Required: true},
		{Key: "state", Headers: []string{"State"}, MultiWord: true},
		{Key: "interface", Headers: []string{"Port/Nickname", "Port/NickName", "PORT INDEX", "Interface", "Port"}, Required: true},
		{Key: "aging", Headers: []string{"AGING TIME(s)", "Aging"}},
	}

	// V7 prints "Local Interface Chassis ID Port ID System Name", V5 puts
	// System Name first and may omit the chassis
	lldpColumns = []common.Column{
		{Key: "local", Headers: []string{"Local Interface", "Local Intf"}, Required: true},
		{Key: "chassis", Headers: []string{"Chassis ID"}},
		{Key: "port", Headers: []string{"Port ID"}, Required: true},
		{Key: "system", Headers: []string{"System Name"}, MultiWord: true},
	}

	// route mode and bridge mode sections of "display interface brief"
	// carry different headers; both start with Interface and Link
	briefColumns = []common.Column{
		{Key: "interface", Headers: []string{"Interface"}, Required: true},
		{Key: "link", Headers: []string{"Link"}, Required: true},
		{Key: "protocol", Headers: []string{"Protocol"}},
		{Key: "ip", Headers: []string{"Primary IP", "Main IP"}},
		{Key: "speed", Headers: []string{"Speed"}},
		{Key: "duplex", Headers: []string{"Duplex"}},
		{Key: "type", Headers: []string{"Type"}},
		{Key: "pvid", Headers: []string{"PVID"}},
		{Key: "description", Headers: []string{"Description", "Cause"}, MultiWord: true},
	}

	briefSkip = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^\s*brief information on interfaces?\b`),
		regexp.MustCompile(`(?i)^\s*the brief information of interface`),
		// legend lines such as "Link: ADM - administratively down; Stby - standby"
		regexp.MustCompile(`^\s*[A-Za-z]+:\s.*\s-\s`),
	}
)

// arpType expands the one-letter V7 type codes. V5 uses the same letters.
func arpType(code string) string {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "D":
		return "dynamic"
	case "S":
		return "static"
	case "O":
		return "openflow"
	case "R":
		return "rule"
	case "M":
		return "multiport"
	case "I":
		return "invalid"
	case "A":
		return "authorized"
	case "":
		return ""
	}
	return strings.ToLower(code)
}

// Ping output formats
var (
	// V7: "56 bytes from 192.168.1.10: icmp_seq=0 ttl=255 time=1.000 ms"
	pingReplyV7 = regexp.MustCompile(`(?i)\d+\s+bytes from\s+([^\s:]+):\s*icmp_seq=(\d+)\s+ttl=\d+\s+time\s*[=<]\s*([\d.]+)\s*ms`)
	// V5: "Reply from 192.168.1.10: bytes=56 Sequence=1 ttl=255 time=2 ms"
	pingReplyV5 = regexp.MustCompile(`(?i)reply from\s+([^\s:]+):\s*bytes=\d+\s+sequence=(\d+)\s+ttl=\d+\s+time\s*[=<]\s*([\d.]+)\s*ms`)
	pingTimeout = regexp.MustCompile(`(?i)^\s*request time\s*out`)

	pingTarget      = regexp.MustCompile(`(?i)^\s*ping\s+\S+\s+\(([^)]+)\)`)
	pingSent        = regexp.MustCompile(`(?i)(\d+)\s+packet\(s\)\s+transmitted`)
	pingReceived    = regexp.MustCompile(`(?i)(\d+)\s+packet\(s\)\s+received`)
	pingLoss        = regexp.MustCompile(`(?i)([\d.]+)%\s+packet loss`)
	pingRoundTrip   = regexp.MustCompile(`(?i)round-trip\s+min/avg/max(?:/std-dev)?\s*=\s*([\d.]+)/([\d.]+)/([\d.]+)(?:/([\d.]+))?\s*ms`)
	pingUnreachable = regexp.MustCompile(`(?i)unknown host|host not found|could not resolve|failed to resolve`)
)

// pingFirstSequence is 1 on V5, which numbers replies from one, and 0 on V7
func pingFirstSequence(output string) int {
	if strings.Contains(strings.ToLower(output), "sequence=") {
		return 1
	}
	return 0
}
