package common

import "strings"

// OIDIndex returns the instance index of name below base, e.g.
// OIDIndex(".1.3.6.1.2.1.31.1.1.1.1.7", "1.3.6.1.2.1.31.1.1.1.1") == "7".
// gosnmp returns names with a leading dot while constants usually omit it,
// so both forms are accepted on either side.
func OIDIndex(name, base string) (string, bool) {
	n := strings.TrimPrefix(name, ".")
	b := strings.TrimPrefix(base, ".")
	if !strings.HasPrefix(n, b+".") {
		return "", false
	}
	return n[len(b)+1:], true
}

// ParseUint64SNMPValue extracts a uint64 from SNMP counter values.
// gosnmp decodes Counter32/Gauge32 as uint and Counter64 as uint64.
func ParseUint64SNMPValue(value interface{}) (uint64, bool) {
	switch v := value.(type) {
	case uint:
		return uint64(v), true
	case uint32:
		return uint64(v), true
	case uint64:
		return v, true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}

// ParseStringSNMPValue extracts a string from SNMP result.
// Handles both string and []byte types.
func ParseStringSNMPValue(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	default:
		return "", false
	}
}
