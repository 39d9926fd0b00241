package comware

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/nanoncore/cmw-southbound/types"
	"github.com/nanoncore/cmw-southbound/vendors/common"
)

// linkLocalPrefix is reported for link-local addresses, which Comware prints
// without a prefix length
const linkLocalPrefix = 64

var (
	ipv4AddrRegex    = regexp.MustCompile(`(?i)internet address is\s+(\d{1,3}(?:\.\d{1,3}){3})/(\d{1,2})`)
	ipv6LinkLocal    = regexp.MustCompile(`(?i)link-local address is\s+([0-9a-f:]+)`)
	ipv6GlobalRegex  = regexp.MustCompile(`(?i)^\s*([0-9a-f:]*:[0-9a-f:]*)\s*,\s*subnet is\s+[0-9a-f:]+/(\d{1,3})`)
	ipv6EnabledRegex = regexp.MustCompile(`(?i)ipv6 is enabled`)
)

func parseInterfacesIP(out Output, n *common.Normalizer) (map[string][]types.InterfaceIP, []types.ParseWarning) {
	result := make(map[string][]types.InterfaceIP)
	var warnings []types.ParseWarning

	for _, block := range splitInterfaceBlocks(out.Require(QueryInterfacesIP, 0, &warnings)) {
		name := n.Interface(block.name)
		for _, line := range block.lines {
			m := ipv4AddrRegex.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			if ip, ok := interfaceIP(m[1], m[2], block, &warnings); ok {
				result[name] = append(result[name], ip)
			}
		}
	}

	// IPv6 is optional; V5 images without it reject the command
	ipv6, _ := out.Get(1)
	for _, block := range splitInterfaceBlocks(ipv6) {
		name := n.Interface(block.name)
		for _, line := range block.lines {
			if ipv6EnabledRegex.MatchString(line) {
				if m := ipv6LinkLocal.FindStringSubmatch(line); m != nil {
					if ip, ok := interfaceIP(m[1], strconv.Itoa(linkLocalPrefix), block, &warnings); ok {
						result[name] = append(result[name], ip)
					}
				}
				continue
			}
			if m := ipv6GlobalRegex.FindStringSubmatch(line); m != nil {
				if ip, ok := interfaceIP(m[1], m[2], block, &warnings); ok {
					result[name] = append(result[name], ip)
				}
			}
		}
	}
	return result, warnings
}

func interfaceIP(addr, prefix string, block interfaceBlock, warnings *[]types.ParseWarning) (types.InterfaceIP, bool) {
	ip, err := common.NormalizeIP(addr)
	if err != nil {
		*warnings = append(*warnings, blockWarn(QueryInterfacesIP, block, err.Error()))
		return types.InterfaceIP{}, false
	}
	family := common.IPFamily(ip)
	length, err := strconv.Atoi(prefix)
	limit := 32
	if family == types.FamilyIPv6 {
		limit = 128
	}
	if err != nil || length < 0 || length > limit {
		*warnings = append(*warnings, blockWarn(QueryInterfacesIP, block, "invalid prefix length "+strings.TrimSpace(prefix)))
		return types.InterfaceIP{}, false
	}
	return types.InterfaceIP{Address: ip, PrefixLength: length, Family: family}, true
}
