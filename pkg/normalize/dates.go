package normalize

import (
	"strings"
	"time"
)

// Wire layouts are compact digit strings; edit layouts follow HTML input
// conventions.
const (
	WireDateLayout          = "20060102"
	WireTimeLayout          = "150405"
	WireDateTimeLayout      = "20060102150405"
	EditDateLayout          = "2006-01-02"
	EditTimeLayout          = "15:04:05"
	EditTimeShortLayout     = "15:04"
	EditDateTimeLayout      = "2006-01-02T15:04:05"
	EditDateTimeShortLayout = "2006-01-02T15:04"

	wireTimeShortLayout     = "1504"
	wireDateTimeShortLayout = "200601021504"
)

// WireToEditDate converts YYYYMMDD into YYYY-MM-DD.
func WireToEditDate(wire string) (string, bool) {
	wire = strings.TrimSpace(wire)
	if len(wire) != len(WireDateLayout) || !allDigits(wire) {
		return "", false
	}
	t, err := time.Parse(WireDateLayout, wire)
	if err != nil {
		return "", false
	}
	return t.Format(EditDateLayout), true
}

// EditToWireDate converts YYYY-MM-DD into YYYYMMDD.
func EditToWireDate(edit string) (string, bool) {
	t, err := time.Parse(EditDateLayout, strings.TrimSpace(edit))
	if err != nil {
		return "", false
	}
	return t.Format(WireDateLayout), true
}

// WireToEditTime converts HHMMSS (or HHMM) into HH:MM:SS (or HH:MM).
func WireToEditTime(wire string) (string, bool) {
	wire = strings.TrimSpace(wire)
	if !allDigits(wire) {
		return "", false
	}
	switch len(wire) {
	case len(WireTimeLayout):
		t, err := time.Parse(WireTimeLayout, wire)
		if err != nil {
			return "", false
		}
		return t.Format(EditTimeLayout), true
	case len(wireTimeShortLayout):
		t, err := time.Parse(wireTimeShortLayout, wire)
		if err != nil {
			return "", false
		}
		return t.Format(EditTimeShortLayout), true
	default:
		return "", false
	}
}

// EditToWireTime converts HH:MM[:SS] into HHMMSS. Missing seconds become 00.
func EditToWireTime(edit string) (string, bool) {
	t, ok := parseEditTime(strings.TrimSpace(edit))
	if !ok {
		return "", false
	}
	return t.Format(WireTimeLayout), true
}

// WireToEditDateTime converts YYYYMMDDHHMMSS (or the 12-digit form without
// seconds) into 2006-01-02T15:04:05 (or 2006-01-02T15:04).
func WireToEditDateTime(wire string) (string, bool) {
	wire = strings.TrimSpace(wire)
	if !allDigits(wire) {
		return "", false
	}
	switch len(wire) {
	case len(WireDateTimeLayout):
		t, err := time.Parse(WireDateTimeLayout, wire)
		if err != nil {
			return "", false
		}
		return t.Format(EditDateTimeLayout), true
	case len(wireDateTimeShortLayout):
		t, err := time.Parse(wireDateTimeShortLayout, wire)
		if err != nil {
			return "", false
		}
		return t.Format(EditDateTimeShortLayout), true
	default:
		return "", false
	}
}

// EditToWireDateTime converts an edit datetime into YYYYMMDDHHMMSS. Both "T"
// and a single space are accepted as the date/time separator; missing seconds
// become 00.
func EditToWireDateTime(edit string) (string, bool) {
	t, ok := ParseEditDateTime(edit)
	if !ok {
		return "", false
	}
	return t.Format(WireDateTimeLayout), true
}

// ParseEditDateTime parses the edit representation of a datetime.
func ParseEditDateTime(edit string) (time.Time, bool) {
	edit = strings.TrimSpace(edit)
	idx := strings.IndexAny(edit, "T ")
	if idx <= 0 {
		return time.Time{}, false
	}
	day, err := time.Parse(EditDateLayout, edit[:idx])
	if err != nil {
		return time.Time{}, false
	}
	clock, ok := parseEditTime(edit[idx+1:])
	if !ok {
		return time.Time{}, false
	}
	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), clock.Second(), 0, time.UTC), true
}

// ParseWireDateTime parses either datetime wire form into a time.Time (UTC).
func ParseWireDateTime(wire string) (time.Time, bool) {
	wire = strings.TrimSpace(wire)
	if !allDigits(wire) {
		return time.Time{}, false
	}
	layout := ""
	switch len(wire) {
	case len(WireDateTimeLayout):
		layout = WireDateTimeLayout
	case len(wireDateTimeShortLayout):
		layout = wireDateTimeShortLayout
	case len(WireDateLayout):
		layout = WireDateLayout
	default:
		return time.Time{}, false
	}
	t, err := time.Parse(layout, wire)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatWireDateTime renders t as YYYYMMDDHHMMSS.
func FormatWireDateTime(t time.Time) string {
	return t.Format(WireDateTimeLayout)
}

func parseEditTime(edit string) (time.Time, bool) {
	for _, layout := range []string{EditTimeLayout, EditTimeShortLayout} {
		if t, err := time.Parse(layout, edit); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
