package common

import (
	"reflect"
	"testing"
	"time"
)

func TestGetOptionString(t *testing.T) {
	tests := []struct {
		name      string
		opts      map[string]string
		keys      []string
		wantValue string
		wantFound bool
	}{
		{"nil options", nil, []string{"transport"}, "", false},
		{"key found", map[string]string{"transport": "telnet"}, []string{"transport"}, "telnet", true},
		{"fallback key found", map[string]string{"conn_timeout": "5"}, []string{"connect_timeout", "conn_timeout"}, "5", true},
		{"first key wins", map[string]string{"a": "1", "b": "2"}, []string{"a", "b"}, "1", true},
		{"empty value is valid", map[string]string{"secret": ""}, []string{"secret"}, "", true},
		{"no keys provided", map[string]string{"a": "1"}, nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotValue, gotFound := GetOptionString(tt.opts, tt.keys...)
			if gotValue != tt.wantValue {
				t.Errorf("GetOptionString() value = %v, want %v", gotValue, tt.wantValue)
			}
			if gotFound != tt.wantFound {
				t.Errorf("GetOptionString() found = %v, want %v", gotFound, tt.wantFound)
			}
		})
	}
}

func TestGetOptionInt(t *testing.T) {
	tests := []struct {
		name      string
		opts      map[string]string
		keys      []string
		wantValue int
		wantFound bool
	}{
		{"valid integer", map[string]string{"port": "2222"}, []string{"port"}, 2222, true},
		{"invalid skipped", map[string]string{"port": "ssh", "snmp_port": "161"}, []string{"port", "snmp_port"}, 161, true},
		{"whitespace trimmed", map[string]string{"port": " 23 "}, []string{"port"}, 23, true},
		{"empty string is invalid", map[string]string{"port": ""}, []string{"port"}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotValue, gotFound := GetOptionInt(tt.opts, tt.keys...)
			if gotValue != tt.wantValue || gotFound != tt.wantFound {
				t.Errorf("GetOptionInt() = (%v, %v), want (%v, %v)", gotValue, gotFound, tt.wantValue, tt.wantFound)
			}
		})
	}
}

func TestGetOptionBool(t *testing.T) {
	tests := []struct {
		value     string
		wantValue bool
		wantFound bool
	}{
		{"true", true, true},
		{"YES", true, true},
		{"1", true, true},
		{"off", false, true},
		{"maybe", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			gotValue, gotFound := GetOptionBool(map[string]string{"k": tt.value}, "k")
			if gotValue != tt.wantValue || gotFound != tt.wantFound {
				t.Errorf("GetOptionBool(%q) = (%v, %v), want (%v, %v)", tt.value, gotValue, gotFound, tt.wantValue, tt.wantFound)
			}
		})
	}
}

func TestGetOptionDuration(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		wantValue time.Duration
		wantFound bool
	}{
		{"bare seconds", "30", 30 * time.Second, true},
		{"go duration", "1m30s", 90 * time.Second, true},
		{"milliseconds", "250ms", 250 * time.Millisecond, true},
		{"garbage", "soon", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotValue, gotFound := GetOptionDuration(map[string]string{"timeout": tt.value}, "timeout")
			if gotValue != tt.wantValue || gotFound != tt.wantFound {
				t.Errorf("GetOptionDuration(%q) = (%v, %v), want (%v, %v)", tt.value, gotValue, gotFound, tt.wantValue, tt.wantFound)
			}
		})
	}
}

func TestGetOptionList(t *testing.T) {
	got, ok := GetOptionList(map[string]string{"setup_commands": "screen-length disable; ;undo terminal monitor"}, ";", "setup_commands")
	if !ok {
		t.Fatalf("GetOptionList() found = false, want true")
	}
	want := []string{"screen-length disable", "undo terminal monitor"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GetOptionList() = %v, want %v", got, want)
	}

	got, ok = GetOptionList(map[string]string{"setup_commands": ""}, ";", "setup_commands")
	if !ok || len(got) != 0 || got == nil {
		t.Errorf("GetOptionList(empty) = (%v, %v), want non-nil empty slice", got, ok)
	}
}
