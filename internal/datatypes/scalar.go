package datatypes

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Scalar units normalize to a base unit: bytes for size, seconds for
// time, hertz for frequency.
var (
	sizeUnits = map[string]float64{
		"b":   1,
		"kb":  1000, "kib": 1024,
		"mb": 1000 * 1000, "mib": 1024 * 1024,
		"gb": 1000 * 1000 * 1000, "gib": 1024 * 1024 * 1024,
		"tb": 1e12, "tib": 1024 * 1024 * 1024 * 1024,
	}
	timeUnits = map[string]float64{
		"ns": 1e-9, "us": 1e-6, "ms": 1e-3,
		"s": 1, "m": 60, "h": 3600, "d": 86400,
	}
	frequencyUnits = map[string]float64{
		"hz": 1, "khz": 1000, "mhz": 1e6, "ghz": 1e9,
	}
)

var scalarRe = regexp.MustCompile(`^\s*([0-9.]+)\s*([A-Za-z]+)\s*$`)

// parseScalarUnit parses "<number> <unit>" and returns the magnitude in
// the base unit.
func parseScalarUnit(value any, units map[string]float64, typeName string) (float64, error) {
	s, ok := value.(string)
	if !ok {
		return 0, typeError(typeName, value)
	}
	m := scalarRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("malformed %s value %q", typeName, s)
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("malformed %s value %q", typeName, s)
	}
	factor, ok := units[strings.ToLower(m[2])]
	if !ok {
		return 0, fmt.Errorf("unknown %s unit %q", typeName, m[2])
	}
	return n * factor, nil
}
