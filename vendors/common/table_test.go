package common

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var arpTable = &Table{
	Query: "arp",
	Columns: []Column{
		{Key: "ip", Headers: []string{"IP address"}, Required: true},
		{Key: "mac", Headers: []string{"MAC address"}, Required: true},
		{Key: "vlan", Headers: []string{"VLAN/VSI name", "VLAN ID"}},
		{Key: "interface", Headers: []string{"Interface"}, Required: true},
		{Key: "aging", Headers: []string{"Aging"}},
		{Key: "type", Headers: []string{"Type"}},
	},
}

func TestTableParseDerivesColumnsFromHeader(t *testing.T) {
	tests := []struct {
		name   string
		output string
	}{
		{
			name: "V7 widths",
			output: `  Type: S-Static   D-Dynamic   O-Openflow   R-Rule   M-Multiport  I-Invalid
IP address      MAC address    VLAN/VSI name Interface                Aging Type
10.0.0.1        0cda-41b5-cc7d 1             GE1/0/1                  20    D`,
		},
		{
			name: "V5 widths",
			output: `                Type: S-Static    D-Dynamic    A-Authorized
IP Address       MAC Address     VLAN ID  Interface              Aging Type
10.0.0.1         0cda-41b5-cc7d  1        GE1/0/1                20    D
---   1 entry found   ---`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, warnings := arpTable.Parse(tt.output)
			require.Empty(t, warnings)
			require.Len(t, rows, 1)
			row := rows[0]
			assert.Equal(t, "10.0.0.1", row.Get("ip"))
			assert.Equal(t, "0cda-41b5-cc7d", row.Get("mac"))
			assert.Equal(t, "1", row.Get("vlan"))
			assert.Equal(t, "GE1/0/1", row.Get("interface"))
			assert.Equal(t, "20", row.Get("aging"))
			assert.Equal(t, "D", row.Get("type"))
			assert.Equal(t, 3, row.Line)
		})
	}
}

func TestTableParseMalformedRowWarns(t *testing.T) {
	output := `IP address      MAC address    VLAN/VSI name Interface                Aging Type
10.0.0.1        0cda-41b5-cc7d 1             GE1/0/1                  20    D
10.0.0.2        0cda-41b5-cc7e 1             GE1/0/2                  19    D
10.0.0.99       incomplete
10.0.0.3        0cda-41b5-cc7f 1             GE1/0/3                  18    D`

	rows, warnings := arpTable.Parse(output)

	require.Len(t, rows, 3)
	require.Len(t, warnings, 1)
	assert.Equal(t, 4, warnings[0].Line)
	assert.Equal(t, "arp", warnings[0].Query)
	assert.Equal(t, "10.0.0.99       incomplete", warnings[0].Text)
	assert.Equal(t, "10.0.0.3", rows[2].Get("ip"))
}

func TestTableParseExtraFieldsWarn(t *testing.T) {
	table := &Table{
		Query: "arp",
		Columns: []Column{
			{Key: "ip", Headers: []string{"IP address"}, Required: true},
			{Key: "mac", Headers: []string{"MAC address"}, Required: true},
			{Key: "type", Headers: []string{"Type"}},
		},
	}
	output := `IP address      MAC address    Type
10.0.0.1        0011-2233-4455 D
10.0.0.2        0011-2233-4456 D  EXTRA JUNK
10.0.0.3        0011-2233-4457 S`

	rows, warnings := table.Parse(output)

	require.Len(t, rows, 2)
	assert.Equal(t, "D", rows[0].Get("type"))
	assert.Equal(t, "10.0.0.3", rows[1].Get("ip"))
	require.Len(t, warnings, 1)
	assert.Equal(t, 3, warnings[0].Line)
	assert.Contains(t, warnings[0].Reason, "EXTRA")
}

func TestTableParseMultiWordCells(t *testing.T) {
	table := &Table{
		Query: "mac",
		Columns: []Column{
			{Key: "mac", Headers: []string{"MAC Address"}, Required: true},
			{Key: "vlan", Headers: []string{"VLAN ID"}, Required: true},
			{Key: "state", Headers: []string{"State"}, MultiWord: true},
			{Key: "port", Headers: []string{"Port/NickName", "Port"}, Required: true},
			{Key: "aging", Headers: []string{"Aging"}},
		},
	}
	output := `MAC Address      VLAN ID    State            Port/NickName            Aging
0011-2233-4455   10         Config static    BAGG1                    N`

	rows, warnings := table.Parse(output)

	require.Empty(t, warnings)
	require.Len(t, rows, 1)
	assert.Equal(t, "Config static", rows[0].Get("state"))
	assert.Equal(t, "BAGG1", rows[0].Get("port"))
}

func TestTableParseEmptyAndNoEntries(t *testing.T) {
	tests := []struct {
		name   string
		table  *Table
		output string
	}{
		{"empty output", arpTable, ""},
		{"blank lines", arpTable, "\n  \n"},
		{"default marker", arpTable, "No ARP entries found."},
		{"total zero", arpTable, "Total number of entries: 0"},
		{
			name: "custom marker",
			table: &Table{
				Query:     "lldp",
				Columns:   []Column{{Key: "local", Headers: []string{"Local Interface"}, Required: true}},
				NoEntries: regexp.MustCompile(`(?i)lldp is not enabled`),
			},
			output: "LLDP is not enabled.",
		},
		{"header only", arpTable, "IP address      MAC address    VLAN/VSI name Interface                Aging Type\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, warnings := tt.table.Parse(tt.output)
			assert.Empty(t, rows)
			assert.Empty(t, warnings)
		})
	}
}

func TestTableParseMissingHeaderWarns(t *testing.T) {
	rows, warnings := arpTable.Parse("garbage that is not a table")

	assert.Empty(t, rows)
	require.Len(t, warnings, 1)
	assert.Equal(t, "table header not found", warnings[0].Reason)
}

func TestTableParseIsIdempotent(t *testing.T) {
	output := `IP address      MAC address    VLAN/VSI name Interface                Aging Type
10.0.0.1        0cda-41b5-cc7d 1             GE1/0/1                  20    D
bad row`

	rows1, warn1 := arpTable.Parse(output)
	rows2, warn2 := arpTable.Parse(output)

	assert.Equal(t, rows1, rows2)
	assert.Equal(t, warn1, warn2)
}

func TestTableParseRepeatedHeaderChangesLayout(t *testing.T) {
	table := &Table{
		Query: "brief",
		Columns: []Column{
			{Key: "interface", Headers: []string{"Interface"}, Required: true},
			{Key: "link", Headers: []string{"Link"}, Required: true},
			{Key: "protocol", Headers: []string{"Protocol"}},
			{Key: "ip", Headers: []string{"Primary IP"}},
			{Key: "speed", Headers: []string{"Speed"}},
			{Key: "duplex", Headers: []string{"Duplex"}},
			{Key: "type", Headers: []string{"Type"}},
			{Key: "pvid", Headers: []string{"PVID"}},
			{Key: "description", Headers: []string{"Description"}, MultiWord: true},
		},
	}
	output := `Interface            Link Protocol Primary IP      Description
Vlan1                UP   UP       192.168.1.1     mgmt
Interface            Link Speed   Duplex Type PVID Description
GE1/0/1              UP   1G(a)   F(a)   A    1    uplink`

	rows, warnings := table.Parse(output)

	require.Empty(t, warnings)
	require.Len(t, rows, 2)
	assert.Equal(t, "mgmt", rows[0].Get("description"))
	assert.Equal(t, "1G(a)", rows[1].Get("speed"))
	assert.Equal(t, "uplink", rows[1].Get("description"))
	assert.Equal(t, 4, rows[1].Line)
}
