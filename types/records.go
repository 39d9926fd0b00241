package types

// State is the normalized administrative or operational state of an interface
type State string

const (
	StateUp      State = "up"
	StateDown    State = "down"
	StateTesting State = "testing"
	StateUnknown State = "unknown"
)

// Facts is basic device identity
type Facts struct {
	Vendor        string   `json:"vendor" yaml:"vendor"`
	Model         string   `json:"model" yaml:"model"`
	SerialNumber  string   `json:"serial_number" yaml:"serial_number"`
	OSVersion     string   `json:"os_version" yaml:"os_version"`
	Uptime        int64    `json:"uptime" yaml:"uptime"` // seconds, -1 when unknown
	Hostname      string   `json:"hostname" yaml:"hostname"`
	FQDN          string   `json:"fqdn" yaml:"fqdn"`
	InterfaceList []string `json:"interface_list" yaml:"interface_list"`

	Warnings []ParseWarning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Counters is a per-interface traffic snapshot
type Counters struct {
	RxOctets           uint64 `json:"rx_octets" yaml:"rx_octets"`
	TxOctets           uint64 `json:"tx_octets" yaml:"tx_octets"`
	RxPackets          uint64 `json:"rx_packets" yaml:"rx_packets"`
	TxPackets          uint64 `json:"tx_packets" yaml:"tx_packets"`
	RxUnicastPackets   uint64 `json:"rx_unicast_packets" yaml:"rx_unicast_packets"`
	TxUnicastPackets   uint64 `json:"tx_unicast_packets" yaml:"tx_unicast_packets"`
	RxMulticastPackets uint64 `json:"rx_multicast_packets" yaml:"rx_multicast_packets"`
	TxMulticastPackets uint64 `json:"tx_multicast_packets" yaml:"tx_multicast_packets"`
	RxBroadcastPackets uint64 `json:"rx_broadcast_packets" yaml:"rx_broadcast_packets"`
	TxBroadcastPackets uint64 `json:"tx_broadcast_packets" yaml:"tx_broadcast_packets"`
	RxErrors           uint64 `json:"rx_errors" yaml:"rx_errors"`
	TxErrors           uint64 `json:"tx_errors" yaml:"tx_errors"`
	RxDiscards         uint64 `json:"rx_discards" yaml:"rx_discards"`
	TxDiscards         uint64 `json:"tx_discards" yaml:"tx_discards"`
}

// Interface is one entry of GetInterfaces
type Interface struct {
	Name        string  `json:"name" yaml:"name"`
	AdminState  State   `json:"admin_state" yaml:"admin_state"`
	OperState   State   `json:"oper_state" yaml:"oper_state"`
	IsEnabled   bool    `json:"is_enabled" yaml:"is_enabled"`
	IsUp        bool    `json:"is_up" yaml:"is_up"`
	Speed       uint64  `json:"speed" yaml:"speed"` // bits per second
	MTU         int     `json:"mtu" yaml:"mtu"`     // 0 when not reported
	MACAddress  string  `json:"mac_address" yaml:"mac_address"`
	Description string  `json:"description" yaml:"description"`
	LastFlapped float64 `json:"last_flapped" yaml:"last_flapped"` // seconds, -1 when unknown

	Counters Counters `json:"counters" yaml:"counters"`
}

// Address families
const (
	FamilyIPv4 = "ipv4"
	FamilyIPv6 = "ipv6"
)

// InterfaceIP is one address configured on an interface
type InterfaceIP struct {
	Address      string `json:"address" yaml:"address"`
	PrefixLength int    `json:"prefix_length" yaml:"prefix_length"`
	Family       string `json:"family" yaml:"family"`
}

// ArpEntry is one row of the ARP table
type ArpEntry struct {
	IP        string  `json:"ip" yaml:"ip"`
	MAC       string  `json:"mac" yaml:"mac"`
	Interface string  `json:"interface" yaml:"interface"`
	Age       float64 `json:"age" yaml:"age"` // seconds, -1 when static or unknown
	VLAN      string  `json:"vlan,omitempty" yaml:"vlan,omitempty"`
	Type      string  `json:"type,omitempty" yaml:"type,omitempty"`
}

// MAC entry types
const (
	MacTypeDynamic = "dynamic"
	MacTypeStatic  = "static"
)

// MacEntry is one row of the MAC address table
type MacEntry struct {
	VLAN      int     `json:"vlan" yaml:"vlan"`
	MAC       string  `json:"mac" yaml:"mac"`
	Interface string  `json:"interface" yaml:"interface"`
	Type      string  `json:"type" yaml:"type"`
	Static    bool    `json:"static" yaml:"static"`
	Active    bool    `json:"active" yaml:"active"`
	Moves     int     `json:"moves" yaml:"moves"`
	LastMove  float64 `json:"last_move" yaml:"last_move"`
}

// LLDPNeighbor is one neighbor learned on a local interface
type LLDPNeighbor struct {
	LocalInterface        string `json:"local_interface" yaml:"local_interface"`
	RemoteSystemName      string `json:"remote_system_name" yaml:"remote_system_name"`
	RemotePortID          string `json:"remote_port_id" yaml:"remote_port_id"`
	RemotePortDescription string `json:"remote_port_description" yaml:"remote_port_description"`
	RemoteChassisID       string `json:"remote_chassis_id" yaml:"remote_chassis_id"`
}

// PingOptions configures a device-side ping. Zero values take defaults.
type PingOptions struct {
	Count   int    // default 5
	Size    int    // payload bytes, default 100
	Timeout int    // seconds per probe, default 2
	Source  string // source address or interface
	TTL     int
	VRF     string
}

// PingProbe is one round-trip sample
type PingProbe struct {
	Sequence int     `json:"sequence" yaml:"sequence"`
	Address  string  `json:"address" yaml:"address"`
	Success  bool    `json:"success" yaml:"success"`
	RTT      float64 `json:"rtt" yaml:"rtt"` // milliseconds
}

// PingResult aggregates a ping run
type PingResult struct {
	Destination string      `json:"destination" yaml:"destination"`
	Sent        int         `json:"sent" yaml:"sent"`
	Received    int         `json:"received" yaml:"received"`
	PacketLoss  float64     `json:"packet_loss" yaml:"packet_loss"` // percent
	RTTMin      float64     `json:"rtt_min" yaml:"rtt_min"`
	RTTAvg      float64     `json:"rtt_avg" yaml:"rtt_avg"`
	RTTMax      float64     `json:"rtt_max" yaml:"rtt_max"`
	RTTStddev   float64     `json:"rtt_stddev" yaml:"rtt_stddev"`
	Probes      []PingProbe `json:"probes" yaml:"probes"`

	Warnings []ParseWarning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// ArpTable is the result of GetArpTable
type ArpTable struct {
	Entries  []ArpEntry     `json:"entries" yaml:"entries"`
	Warnings []ParseWarning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// MACTable is the result of GetMACAddressTable
type MACTable struct {
	Entries  []MacEntry     `json:"entries" yaml:"entries"`
	Warnings []ParseWarning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// LLDPNeighbors is the result of GetLLDPNeighbors, keyed by local interface
type LLDPNeighbors struct {
	Neighbors map[string][]LLDPNeighbor `json:"neighbors" yaml:"neighbors"`
	Warnings  []ParseWarning            `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Interfaces is the result of GetInterfaces, keyed by interface name
type Interfaces struct {
	Interfaces map[string]Interface `json:"interfaces" yaml:"interfaces"`
	Warnings   []ParseWarning       `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// InterfacesIP is the result of GetInterfacesIP, keyed by interface name
type InterfacesIP struct {
	Interfaces map[string][]InterfaceIP `json:"interfaces" yaml:"interfaces"`
	Warnings   []ParseWarning           `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Counter sources
const (
	CountersSourceCLI  = "cli"
	CountersSourceSNMP = "snmp"
)

// InterfaceCounters is the result of GetInterfacesCounters
type InterfaceCounters struct {
	Counters map[string]Counters `json:"counters" yaml:"counters"`
	Source   string              `json:"source" yaml:"source"`
	Warnings []ParseWarning      `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}
