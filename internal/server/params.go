package server

import "strings"

// StringParam reads a string argument, trimming surrounding space.
func StringParam(params map[string]any, key, def string) string {
	if v, ok := params[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return def
}

// BoolParam reads a boolean argument. MCP clients sometimes send "true" as a string.
func BoolParam(params map[string]any, key string, def bool) bool {
	switch v := params[key].(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return def
}

// IntParam reads an integer argument. JSON numbers arrive as float64.
func IntParam(params map[string]any, key string, def int) int {
	switch v := params[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	}
	return def
}

// FloatParam reads a numeric argument.
func FloatParam(params map[string]any, key string, def float64) float64 {
	switch v := params[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return def
}
