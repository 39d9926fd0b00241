package mock

import "strings"

// Comware V7 sample outputs served by DefaultResponses
const (
	DisplayVersion = `H3C Comware Software, Version 7.1.070, Release 3208P03
Copyright (c) 2004-2024 New H3C Technologies Co., Ltd. All rights reserved.
H3C S5560X-30C-EI uptime is 0 weeks, 3 days, 4 hours, 12 minutes
Last reboot reason : Cold reboot

Boot image: flash:/S5560X_EI-CMW710-BOOT-R3208P03.bin
Boot image version: 7.1.070, Release 3208P03
  Compiled Jan 10 2024 16:00:00
System image: flash:/S5560X_EI-CMW710-SYSTEM-R3208P03.bin
System image version: 7.1.070, Release 3208P03
  Compiled Jan 10 2024 16:00:00`

	DisplayManuinfo = `Slot 1 CPU 0:
DEVICE_NAME          : S5560X-30C-EI
DEVICE_SERIAL_NUMBER : 219801A2DE8193Q00012
MAC_ADDRESS          : 0CDA-41B5-CC00
MANUFACTURING_DATE   : 2019-03-20
VENDOR_NAME          : H3C
Fan 1:
DEVICE_NAME          : LSPM1FANSA
DEVICE_SERIAL_NUMBER : 210231A2HMH19300F001
MANUFACTURING_DATE   : 2019-03-01
VENDOR_NAME          : H3C`

	DisplayInterfaceBrief = `Brief information on interfaces in route mode:
Link: ADM - administratively down; Stby - standby
Protocol: (s) - spoofing
Interface            Link Protocol Primary IP      Description
InLoop0              UP   UP(s)    --
M-GE0/0/0            DOWN DOWN     --
Vlan1                UP   UP       192.168.1.1

Brief information on interfaces in bridge mode:
Link: ADM - administratively down; Stby - standby
Speed: (a) - auto
Duplex: (a)/A - auto; H - half; F - full
Type: A - access; T - trunk; H - hybrid
Interface            Link Speed   Duplex Type PVID Description
GE1/0/1              UP   1G(a)   F(a)   A    1    uplink
GE1/0/2              ADM  auto    A      A    1
XGE1/0/49            UP   10G(a)  F(a)   T    1`

	DisplayInterface = `GigabitEthernet1/0/1
Current state: UP
Line protocol state: UP
IP packet frame type: Ethernet II, hardware address: 0cda-41b5-cc01
Description: uplink
Bandwidth: 1000000 kbps
Loopback is not set
Media type is twisted pair
Port hardware type is 1000_BASE_T
1000Mbps-speed mode, full-duplex mode
Link speed type is autonegotiation, link duplex type is autonegotiation
Flow-control is not enabled
Maximum frame length: 10000
PVID: 1
Port link-type: Access
 Tagged VLANs:   None
 Untagged VLANs: 1
Last link flapped: 3 days 4 hours 10 minutes
Last clearing of counters: Never
 Peak input rate: 1024 bytes/sec, at 2024-01-01 10:00:00
 Peak output rate: 2048 bytes/sec, at 2024-01-01 10:00:00
 Last 300 second input: 10 packets/sec 1500 bytes/sec 0%
 Last 300 second output: 12 packets/sec 1800 bytes/sec 0%
 Input (total):  123456 packets, 98765432 bytes
          120000 unicasts, 3000 broadcasts, 456 multicasts, 0 pauses
 Input (normal):  123456 packets, - bytes
          120000 unicasts, 3000 broadcasts, 456 multicasts, 0 pauses
 Input:  2 input errors, 0 runts, 0 giants, 0 throttles
          0 CRC, 0 frame, - overruns, 0 aborts
          - ignored, - parity errors
 Output (total): 234567 packets, 187654321 bytes
          230000 unicasts, 4000 broadcasts, 567 multicasts, 0 pauses
 Output (normal): 234567 packets, - bytes
          230000 unicasts, 4000 broadcasts, 567 multicasts, 0 pauses
 Output: 1 output errors, - underruns, - buffer failures
          0 aborts, 0 deferred, 0 collisions, 0 late collisions
          0 lost carrier, - no carrier

GigabitEthernet1/0/2
Current state: Administratively DOWN
Line protocol state: DOWN
IP packet frame type: Ethernet II, hardware address: 0cda-41b5-cc02
Description: GigabitEthernet1/0/2 Interface
Bandwidth: 1000000 kbps
Unknown-speed mode, unknown-duplex mode
Last link flapped: Never
 Input (total):  0 packets, 0 bytes
          0 unicasts, 0 broadcasts, 0 multicasts, 0 pauses
 Input:  0 input errors, 0 runts, 0 giants, 0 throttles
 Output (total): 0 packets, 0 bytes
          0 unicasts, 0 broadcasts, 0 multicasts, 0 pauses
 Output: 0 output errors, - underruns, - buffer failures

Vlan-interface1
Current state: UP
Line protocol state: UP
Description: management
Bandwidth: 1000000 kbps
Maximum transmission unit: 1500
Internet address: 192.168.1.1/24 (primary)
IP packet frame type: Ethernet II, hardware address: 0cda-41b5-cc00
IPv6 packet frame type: Ethernet II, hardware address: 0cda-41b5-cc00
Last clearing of counters: Never
Last 300 seconds input rate: 0 bytes/sec, 0 bits/sec, 0 packets/sec
Last 300 seconds output rate: 0 bytes/sec, 0 bits/sec, 0 packets/sec
Input: 1200 packets, 96000 bytes, 3 drops
Output: 1500 packets, 120000 bytes, 0 drops`

	DisplayIPInterface = `Vlan-interface1 current state: UP
Line protocol current state: UP
Internet Address is 192.168.1.1/24 Primary
Broadcast address: 192.168.1.255
The Maximum Transmit Unit: 1500 bytes
input packets: 1200, bytes: 96000, multicasts: 0
output packets: 1500, bytes: 120000, multicasts: 0
ICMP packet input number: 10

LoopBack0 current state: UP
Line protocol current state: UP (spoofing)
Internet Address is 10.255.0.1/32 Primary
Internet Address is 10.255.0.2/32 Sub
Broadcast address: 10.255.0.1
The Maximum Transmit Unit: 1536 bytes`

	DisplayIPv6Interface = `Vlan-interface1 current state: UP
Line protocol current state: UP
IPv6 is enabled, link-local address is FE80::CDA:41FF:FEB5:CC00
  Global unicast address(es):
    2001:DB8::1, subnet is 2001:DB8::/64
  Joined group address(es):
    FF02::1
    FF02::2
    FF02::1:FF00:1
  MTU is 1500 bytes
  ND DAD is enabled, number of DAD attempts: 1`

	DisplayARP = `  Type: S-Static   D-Dynamic   O-Openflow   R-Rule   M-Multiport  I-Invalid
IP address      MAC address    VLAN/VSI name Interface                Aging Type
192.168.1.10    0cda-41b5-aa01 1             GE1/0/1                  18    D
192.168.1.11    0cda-41b5-aa02 1             GE1/0/2                  5     D
192.168.1.254   0cda-41b5-aa03 100           XGE1/0/49                N/A   S`

	DisplayMACAddress = `MAC Address      VLAN ID    State            Port/Nickname            Aging
0cda-41b5-aa01   1          Learned          GE1/0/1                  Y
0cda-41b5-aa02   1          Learned          GE1/0/2                  Y
0cda-41b5-aa03   100        Config static    XGE1/0/49                N`

	DisplayLLDPList = `Chassis ID: * -- -- Nearest nontpmr bridge neighbor
            # -- -- Nearest customer bridge neighbor
            Default -- -- Nearest bridge neighbor
Local Interface Chassis ID      Port ID                  System Name
GE1/0/1         0cda-41b5-bb00  Ten-GigabitEthernet1/0/1 core-sw2
XGE1/0/49       0cda-41b5-bc00  GigabitEthernet0/0/1     dist sw 3`

	DisplayCurrentConfiguration = `#
 version 7.1.070, Release 3208P03
#
 sysname {{host}}
#
vlan 1
#
interface Vlan-interface1
 ip address 192.168.1.1 255.255.255.0
#
interface GigabitEthernet1/0/1
 port link-mode bridge
 description uplink
#
return`

	DisplaySavedConfiguration = `#
 version 7.1.070, Release 3208P03
#
 sysname {{host}}
#
vlan 1
#
return`

	PingReachable = `Ping 192.168.1.10 (192.168.1.10): 100 data bytes, press CTRL_C to break
108 bytes from 192.168.1.10: icmp_seq=0 ttl=255 time=1.000 ms
108 bytes from 192.168.1.10: icmp_seq=1 ttl=255 time=3.000 ms
Request time out
108 bytes from 192.168.1.10: icmp_seq=3 ttl=255 time=1.000 ms
108 bytes from 192.168.1.10: icmp_seq=4 ttl=255 time=2.000 ms

--- Ping statistics for 192.168.1.10 ---
5 packet(s) transmitted, 4 packet(s) received, 20.0% packet loss
round-trip min/avg/max/std-dev = 1.000/1.750/3.000/0.829 ms`

	PingUnknownHost = `Ping nosuch.example: Unknown host nosuch.example.`
)

// DefaultResponses returns the outputs of a small V7 access switch
func DefaultResponses(hostname string) map[string]string {
	sub := func(s string) string { return strings.ReplaceAll(s, "{{host}}", hostname) }
	return map[string]string{
		"display version": DisplayVersion,
		"display current-configuration | include sysname": " sysname " + hostname,
		"display device manuinfo":                          DisplayManuinfo,
		"display interface brief":                          DisplayInterfaceBrief,
		"display interface":                                DisplayInterface,
		"display ip interface":                             DisplayIPInterface,
		"display ipv6 interface":                           DisplayIPv6Interface,
		"display arp":                                      DisplayARP,
		"display mac-address":                              DisplayMACAddress,
		"display lldp neighbor-information list":           DisplayLLDPList,
		"display current-configuration":                    sub(DisplayCurrentConfiguration),
		"display saved-configuration":                      sub(DisplaySavedConfiguration),
		"ping -c 5 -s 100 -t 2000 192.168.1.10":            PingReachable,
		"ping -c 5 -s 100 -t 2000 nosuch.example":          PingUnknownHost,
	}
}
