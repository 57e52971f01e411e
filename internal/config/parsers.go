// Package config provides configuration loading and parsing for ratelimit-probe.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// lookupSetting returns the value stored under the first candidate key present
// in settings. Viper lowercases keys, so each candidate is tried lowercased too.
func lookupSetting(settings map[string]interface{}, candidates ...string) (interface{}, bool) {
	for _, key := range candidates {
		if val, ok := settings[key]; ok {
			return val, true
		}
		if val, ok := settings[strings.ToLower(key)]; ok {
			return val, true
		}
	}
	return nil, false
}

// blankToNil treats empty or whitespace-only strings as unset and trims the rest.
func blankToNil(value interface{}) interface{} {
	if s, ok := value.(string); ok {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
		return nil
	}
	return value
}

func asString(value interface{}) (string, error) {
	return cast.ToStringE(value)
}

func asInt(value interface{}) (int, error) {
	return cast.ToIntE(blankToNil(value))
}

func asFloat64(value interface{}) (float64, error) {
	return cast.ToFloat64E(blankToNil(value))
}

func asBool(value interface{}) (bool, error) {
	return cast.ToBoolE(blankToNil(value))
}

// asDuration accepts Go duration strings; bare numbers are seconds.
func asDuration(value interface{}) (time.Duration, error) {
	switch v := blankToNil(value).(type) {
	case nil:
		return 0, nil
	case time.Duration:
		return v, nil
	case string:
		if d, err := time.ParseDuration(v); err == nil {
			return d, nil
		}
		secs, err := cast.ToFloat64E(v)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", v)
		}
		return time.Duration(secs * float64(time.Second)), nil
	default:
		secs, err := cast.ToFloat64E(v)
		if err != nil {
			return 0, err
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
}

// toStringKeyMap accepts a nested settings block and lowercases its keys.
func toStringKeyMap(value interface{}) (map[string]interface{}, error) {
	raw, err := cast.ToStringMapE(value)
	if err != nil {
		return nil, err
	}
	result := make(map[string]interface{}, len(raw))
	for key, val := range raw {
		result[strings.ToLower(strings.TrimSpace(key))] = val
	}
	return result, nil
}
