package common

import (
	"math"
	"net/netip"
	"regexp"
	"strconv"
	"strings"

	"github.com/nanoncore/cmw-southbound/types"
)

// interfaceAliases pairs Comware short interface prefixes with their long form
var interfaceAliases = [][2]string{
	{"GE", "GigabitEthernet"},
	{"XGE", "Ten-GigabitEthernet"},
	{"FGE", "FortyGigE"},
	{"HGE", "HundredGigE"},
	{"WGE", "TwentyFiveGigE"},
	{"Eth", "Ethernet"},
	{"M-GE", "M-GigabitEthernet"},
	{"BAGG", "Bridge-Aggregation"},
	{"RAGG", "Route-Aggregation"},
	{"Vlan", "Vlan-interface"},
	{"Loop", "LoopBack"},
	{"InLoop", "InLoopBack"},
	{"Tun", "Tunnel"},
	{"NULL", "NULL"},
}

// Normalizer renders interface names according to the configured mode
type Normalizer struct {
	mode    types.InterfaceNameMode
	toLong  map[string]string
	toShort map[string]string
}

// NewNormalizer builds a normalizer. extra adds short->long pairs and wins over built-ins.
func NewNormalizer(mode types.InterfaceNameMode, extra map[string]string) *Normalizer {
	if mode == "" {
		mode = types.InterfaceNamesLong
	}
	n := &Normalizer{
		mode:    mode,
		toLong:  make(map[string]string),
		toShort: make(map[string]string),
	}
	for _, pair := range interfaceAliases {
		n.add(pair[0], pair[1])
	}
	for short, long := range extra {
		n.add(short, long)
	}
	return n
}

func (n *Normalizer) add(short, long string) {
	for _, name := range []string{short, long} {
		key := strings.ToLower(name)
		n.toLong[key] = long
		n.toShort[key] = short
	}
}

// Mode returns the interface naming mode
func (n *Normalizer) Mode() types.InterfaceNameMode {
	return n.mode
}

// Interface converts an interface name to the configured form.
// Unknown prefixes are returned unchanged.
func (n *Normalizer) Interface(name string) string {
	name = strings.TrimSpace(name)
	if n == nil || n.mode == types.InterfaceNamesRaw || name == "" {
		return name
	}

	i := strings.IndexAny(name, "0123456789")
	if i <= 0 {
		return name
	}
	prefix, rest := strings.ToLower(name[:i]), name[i:]

	switch n.mode {
	case types.InterfaceNamesShort:
		if short, ok := n.toShort[prefix]; ok {
			return short + rest
		}
	default:
		if long, ok := n.toLong[prefix]; ok {
			return long + rest
		}
	}
	return name
}

var hexDigits = regexp.MustCompile(`^[0-9a-fA-F]{12}$`)

// NormalizeMAC converts dotted, dashed, colon or bare hex MAC addresses to
// lowercase colon-separated form.
func NormalizeMAC(s string) (string, error) {
	raw := strings.TrimSpace(s)
	hex := strings.NewReplacer(".", "", "-", "", ":", "").Replace(raw)
	if !hexDigits.MatchString(hex) || !validMACGrouping(raw) {
		return "", &types.NormalizeError{Kind: "mac", Value: s}
	}

	hex = strings.ToLower(hex)
	var b strings.Builder
	for i := 0; i < 12; i += 2 {
		if i > 0 {
			b.WriteByte(':')
		}
		b.WriteString(hex[i : i+2])
	}
	return b.String(), nil
}

// validMACGrouping rejects mixed or misplaced separators like "00-11.2233:4455"
func validMACGrouping(s string) bool {
	seps := 0
	var sep rune
	for _, r := range s {
		switch r {
		case '.', '-', ':':
			if seps > 0 && r != sep {
				return false
			}
			sep = r
			seps++
		}
	}
	switch seps {
	case 0:
		return true
	case 2:
		// aabb.ccdd.eeff or aabb-ccdd-eeff
		return len(s) == 14 && s[4] == byte(sep) && s[9] == byte(sep)
	case 5:
		return len(s) == 17
	}
	return false
}

var speedRegex = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?)\s*([kmgt]?)(?:bps|b/s|b)?$`)

// maxSpeed is 2^64; larger values do not convert to uint64
const maxSpeed = float64(math.MaxUint64)

var speedUnits = map[string]float64{
	"":  1,
	"k": 1e3,
	"m": 1e6,
	"g": 1e9,
	"t": 1e12,
}

// ParseSpeed converts "1000M", "10G", "100Mbps" or "1G(a)" to bits per second.
// A bare number is taken as bits per second.
func ParseSpeed(s string) (uint64, error) {
	v := strings.TrimSpace(s)
	v = strings.TrimSuffix(v, "(a)")
	m := speedRegex.FindStringSubmatch(v)
	if m == nil {
		return 0, &types.NormalizeError{Kind: "speed", Value: s}
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, &types.NormalizeError{Kind: "speed", Value: s}
	}
	bps := math.Round(f * speedUnits[strings.ToLower(m[2])])
	if bps >= maxSpeed {
		return 0, &types.NormalizeError{Kind: "speed", Value: s}
	}
	return uint64(bps), nil
}

// ParseState maps Comware state strings to the closed state enumeration
func ParseState(s string) types.State {
	v := strings.ToLower(strings.TrimSpace(s))
	switch {
	case v == "":
		return types.StateUnknown
	case strings.HasPrefix(v, "up"):
		// covers "UP", "UP(spoofing)", "UP (spoofing)"
		return types.StateUp
	case strings.Contains(v, "down"), v == "adm", v == "stby", v == "standby", v == "dormant":
		return types.StateDown
	case strings.HasPrefix(v, "test"):
		return types.StateTesting
	}
	return types.StateUnknown
}

// ParseCounter converts a counter field to uint64. Placeholders map to zero.
func ParseCounter(s string) (uint64, error) {
	v := strings.TrimSpace(s)
	switch strings.ToUpper(v) {
	case "", "-", "--", "N/A", "NA":
		return 0, nil
	}
	n, err := strconv.ParseUint(strings.ReplaceAll(v, ",", ""), 10, 64)
	if err != nil {
		return 0, &types.NormalizeError{Kind: "counter", Value: s}
	}
	return n, nil
}

// NormalizeIP canonicalises an IPv4 or IPv6 address
func NormalizeIP(s string) (string, error) {
	addr, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil {
		return "", &types.NormalizeError{Kind: "ip", Value: s}
	}
	return addr.String(), nil
}

// IPFamily returns the record family of a normalized address
func IPFamily(addr string) string {
	if strings.Contains(addr, ":") {
		return types.FamilyIPv6
	}
	return types.FamilyIPv4
}
