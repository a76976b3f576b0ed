package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// WireToHex converts a "r,g,b" triplet of floats in [0,1] into #RRGGBB.
// Components outside the range are clamped. A fourth (alpha) component is
// accepted and ignored.
func WireToHex(wire string) (string, bool) {
	parts := strings.Split(strings.TrimSpace(wire), ",")
	if len(parts) != 3 && len(parts) != 4 {
		return "", false
	}
	var channels [3]int
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil || math.IsNaN(v) {
			return "", false
		}
		channels[i] = int(math.Round(clampUnit(v) * 255))
	}
	return fmt.Sprintf("#%02X%02X%02X", channels[0], channels[1], channels[2]), true
}

// HexToWire converts #RRGGBB (or #RGB) into a "r,g,b" float triplet.
func HexToWire(hex string) (string, bool) {
	channels, ok := parseHex(hex)
	if !ok {
		return "", false
	}
	parts := make([]string, 3)
	for i, c := range channels {
		parts[i] = formatUnit(float64(c) / 255)
	}
	return strings.Join(parts, ","), true
}

// NormalizeHex returns the canonical upper-case #RRGGBB form of hex.
func NormalizeHex(hex string) (string, bool) {
	channels, ok := parseHex(hex)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("#%02X%02X%02X", channels[0], channels[1], channels[2]), true
}

func parseHex(hex string) ([3]int, bool) {
	var out [3]int
	trimmed := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(trimmed) == 3 {
		trimmed = string([]byte{trimmed[0], trimmed[0], trimmed[1], trimmed[1], trimmed[2], trimmed[2]})
	}
	if len(trimmed) != 6 {
		return out, false
	}
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseUint(trimmed[i*2:i*2+2], 16, 8)
		if err != nil {
			return out, false
		}
		out[i] = int(v)
	}
	return out, true
}

func clampUnit(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// formatUnit renders a [0,1] float with six decimals and no trailing zeros.
func formatUnit(v float64) string {
	s := strconv.FormatFloat(v, 'f', 6, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}
