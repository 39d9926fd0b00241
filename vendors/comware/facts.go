package comware

import (
	"regexp"
	"strings"

	"github.com/nanoncore/cmw-southbound/types"
	"github.com/nanoncore/cmw-southbound/vendors/common"
)

var (
	versionRegex = regexp.MustCompile(`(?i)comware software,\s*version\s+([^\r\n]+?)\s*$`)
	uptimeRegex  = regexp.MustCompile(`(?im)^\s*(?:(?:H3C|HPE|HP)\s+)?(.+?)\s+uptime is\s+(.+?)\s*$`)
	sysnameRegex = regexp.MustCompile(`(?m)^\s*sysname\s+(\S+)`)
	serialRegex  = regexp.MustCompile(`(?i)^\s*device_serial_number\s*:\s*(\S*)`)

	// stack members and chassis; fans and power supplies are other sections
	memberSection = regexp.MustCompile(`(?i)^\s*(slot|chassis)\b.*:\s*$`)
	otherSection  = regexp.MustCompile(`^\s*[A-Za-z][\w ]*:\s*$`)
)

// Vendor names reported in facts
const (
	VendorH3C = "H3C"
	VendorHPE = "HPE"
)

// Positions of the facts commands
const (
	factsVersion = iota
	factsSysname
	factsManuinfo
	factsInterfaceBrief
)

func parseFacts(out Output, n *common.Normalizer) (*types.Facts, []types.ParseWarning) {
	var warnings []types.ParseWarning
	facts := &types.Facts{Vendor: VendorH3C, Uptime: -1, InterfaceList: []string{}}

	version := common.NormalizeNewlines(out.Require(QueryFacts, factsVersion, &warnings))
	if strings.Contains(version, "HPE Comware") || strings.Contains(version, "HP Comware") {
		facts.Vendor = VendorHPE
	}
	for _, line := range common.Lines(version) {
		if m := versionRegex.FindStringSubmatch(line); m != nil && facts.OSVersion == "" {
			facts.OSVersion = m[1]
		}
	}
	if m := uptimeRegex.FindStringSubmatch(version); m != nil {
		facts.Model = m[1]
		if secs, ok := parseDuration(m[2]); ok {
			facts.Uptime = secs
		} else {
			warnings = append(warnings, types.ParseWarning{Query: QueryFacts, Text: m[0], Reason: "unparsable uptime"})
		}
	}
	if facts.OSVersion == "" {
		warnings = append(warnings, types.ParseWarning{Query: QueryFacts, Reason: "os version not found"})
	}
	if facts.Model == "" {
		warnings = append(warnings, types.ParseWarning{Query: QueryFacts, Reason: "model not found"})
	}

	sysname, _ := out.Get(factsSysname)
	if m := sysnameRegex.FindStringSubmatch(sysname); m != nil {
		facts.Hostname = m[1]
		facts.FQDN = m[1]
	}

	manuinfo, _ := out.Get(factsManuinfo)
	facts.SerialNumber = strings.Join(parseSerials(manuinfo), " / ")

	brief, _ := out.Get(factsInterfaceBrief)
	names, w := parseInterfaceBrief(brief, n)
	facts.InterfaceList = append(facts.InterfaceList, names...)
	warnings = append(warnings, w...)

	return facts, warnings
}

// parseSerials returns the chassis or slot serial numbers from
// "display device manuinfo". Component serials are used only when no
// member section exists.
func parseSerials(output string) []string {
	var members, all []string
	inMember := false
	seen := make(map[string]bool)
	for _, line := range common.Lines(output) {
		switch {
		case memberSection.MatchString(line):
			inMember = true
			continue
		case otherSection.MatchString(line) && !strings.Contains(line, "_"):
			inMember = false
			continue
		}
		m := serialRegex.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		serial := m[1]
		if serial == "" || strings.EqualFold(serial, "NONE") || seen[serial] {
			continue
		}
		seen[serial] = true
		all = append(all, serial)
		if inMember {
			members = append(members, serial)
		}
	}
	if len(members) > 0 {
		return members
	}
	return all
}

// parseInterfaceBrief lists interface names from every section of
// "display interface brief"
func parseInterfaceBrief(output string, n *common.Normalizer) ([]string, []types.ParseWarning) {
	table := &common.Table{Query: QueryFacts, Columns: briefColumns, Skip: briefSkip}
	rows, warnings := table.Parse(output)
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, n.Interface(row.Get("interface")))
	}
	return names, warnings
}
