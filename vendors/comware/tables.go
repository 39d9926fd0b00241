package comware

import (
	"strconv"
	"strings"

	"github.com/nanoncore/cmw-southbound/types"
	"github.com/nanoncore/cmw-southbound/vendors/common"
)

func parseARP(out Output, n *common.Normalizer) ([]types.ArpEntry, []types.ParseWarning) {
	var missing []types.ParseWarning
	text := out.Require(QueryARP, 0, &missing)
	table := &common.Table{Query: QueryARP, Columns: arpColumns}
	rows, warnings := table.Parse(text)
	warnings = append(missing, warnings...)

	entries := make([]types.ArpEntry, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		ip, err := common.NormalizeIP(row.Get("ip"))
		if err != nil {
			warnings = append(warnings, row.Warn(QueryARP, err.Error()))
			continue
		}
		mac, err := common.NormalizeMAC(row.Get("mac"))
		if err != nil {
			warnings = append(warnings, row.Warn(QueryARP, err.Error()))
			continue
		}
		iface := n.Interface(row.Get("interface"))
		key := ip + "|" + iface
		if seen[key] {
			warnings = append(warnings, row.Warn(QueryARP, "duplicate entry"))
			continue
		}
		seen[key] = true

		entry := types.ArpEntry{
			IP:        ip,
			MAC:       mac,
			Interface: iface,
			Age:       -1,
			VLAN:      row.Get("vlan"),
			Type:      arpType(row.Get("type")),
		}
		// aging is printed in minutes; static entries show N/A
		if minutes, err := strconv.ParseFloat(row.Get("aging"), 64); err == nil && entry.Type != "static" {
			entry.Age = minutes * 60
		}
		entries = append(entries, entry)
	}
	return entries, warnings
}

func parseMAC(out Output, n *common.Normalizer) ([]types.MacEntry, []types.ParseWarning) {
	var missing []types.ParseWarning
	text := out.Require(QueryMAC, 0, &missing)
	table := &common.Table{Query: QueryMAC, Columns: macColumns}
	rows, warnings := table.Parse(text)
	warnings = append(missing, warnings...)

	entries := make([]types.MacEntry, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		mac, err := common.NormalizeMAC(row.Get("mac"))
		if err != nil {
			warnings = append(warnings, row.Warn(QueryMAC, err.Error()))
			continue
		}
		vlan, err := strconv.Atoi(row.Get("vlan"))
		if err != nil {
			warnings = append(warnings, row.Warn(QueryMAC, "invalid vlan "+row.Get("vlan")))
			continue
		}
		key := strconv.Itoa(vlan) + "|" + mac
		if seen[key] {
			warnings = append(warnings, row.Warn(QueryMAC, "duplicate entry"))
			continue
		}
		seen[key] = true

		state := strings.ToLower(row.Get("state"))
		static := strings.Contains(state, "static")
		entry := types.MacEntry{
			VLAN:      vlan,
			MAC:       mac,
			Interface: n.Interface(row.Get("interface")),
			Type:      types.MacTypeDynamic,
			Static:    static,
			Active:    !static && (state == "" || strings.Contains(state, "learned") || strings.Contains(state, "dynamic")),
			Moves:     -1,
			LastMove:  -1,
		}
		if static {
			entry.Type = types.MacTypeStatic
		}
		entries = append(entries, entry)
	}
	return entries, warnings
}

func parseLLDP(out Output, n *common.Normalizer) (map[string][]types.LLDPNeighbor, []types.ParseWarning) {
	var missing []types.ParseWarning
	text := out.Require(QueryLLDP, 0, &missing)
	table := &common.Table{Query: QueryLLDP, Columns: lldpColumns}
	rows, warnings := table.Parse(text)
	warnings = append(missing, warnings...)

	result := make(map[string][]types.LLDPNeighbor)
	for _, row := range rows {
		local := n.Interface(row.Get("local"))
		chassis := row.Get("chassis")
		if mac, err := common.NormalizeMAC(chassis); err == nil {
			chassis = mac
		}
		result[local] = append(result[local], types.LLDPNeighbor{
			LocalInterface:   local,
			RemoteSystemName: row.Get("system"),
			RemotePortID:     row.Get("port"),
			RemoteChassisID:  chassis,
		})
	}
	return result, warnings
}
