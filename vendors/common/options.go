package common

import (
	"strconv"
	"strings"
	"time"
)

// GetOptionString retrieves a string value from optional args with fallback keys.
// Keys are checked in order - first match wins.
// Returns the value and true if found, empty string and false otherwise.
func GetOptionString(opts map[string]string, keys ...string) (string, bool) {
	if opts == nil {
		return "", false
	}
	for _, key := range keys {
		if value, ok := opts[key]; ok {
			return value, true
		}
	}
	return "", false
}

// GetOptionInt retrieves an integer value from optional args with fallback keys.
// Values that do not parse are skipped.
func GetOptionInt(opts map[string]string, keys ...string) (int, bool) {
	if opts == nil {
		return 0, false
	}
	for _, key := range keys {
		if valueStr, ok := opts[key]; ok {
			if value, err := strconv.Atoi(strings.TrimSpace(valueStr)); err == nil {
				return value, true
			}
		}
	}
	return 0, false
}

// GetOptionBool retrieves a boolean ("true", "1", "yes", ...) from optional args
func GetOptionBool(opts map[string]string, keys ...string) (bool, bool) {
	if opts == nil {
		return false, false
	}
	for _, key := range keys {
		if valueStr, ok := opts[key]; ok {
			switch strings.ToLower(strings.TrimSpace(valueStr)) {
			case "1", "true", "yes", "on":
				return true, true
			case "0", "false", "no", "off":
				return false, true
			}
		}
	}
	return false, false
}

// GetOptionDuration retrieves a duration from optional args. A bare integer is seconds.
func GetOptionDuration(opts map[string]string, keys ...string) (time.Duration, bool) {
	if opts == nil {
		return 0, false
	}
	for _, key := range keys {
		valueStr, ok := opts[key]
		if !ok {
			continue
		}
		valueStr = strings.TrimSpace(valueStr)
		if secs, err := strconv.Atoi(valueStr); err == nil {
			return time.Duration(secs) * time.Second, true
		}
		if d, err := time.ParseDuration(valueStr); err == nil {
			return d, true
		}
	}
	return 0, false
}

// GetOptionList splits a separated option value, dropping empty items
func GetOptionList(opts map[string]string, sep string, keys ...string) ([]string, bool) {
	value, ok := GetOptionString(opts, keys...)
	if !ok {
		return nil, false
	}
	items := []string{}
	for _, item := range strings.Split(value, sep) {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items, true
}
