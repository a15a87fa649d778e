package normalizer

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayoutBR is the display layout for ledger dates (DD/MM/YYYY).
const DateLayoutBR = "02/01/2006"

var (
	dateOnlyPattern = regexp.MustCompile(`^\s*(\d{1,2})/(\d{1,2})/(\d{4})\s*$`)
	dateTimePattern = regexp.MustCompile(`^\s*(\d{1,2})/(\d{1,2})/(\d{4})\s+(\d{1,2}):(\d{2})\s*$`)
)

// monthNames maps normalized Portuguese month names to zero-based indexes.
var monthNames = map[string]int{
	"janeiro": 0, "fevereiro": 1, "marco": 2, "abril": 3,
	"maio": 4, "junho": 5, "julho": 6, "agosto": 7,
	"setembro": 8, "outubro": 9, "novembro": 10, "dezembro": 11,
}

// monthLabels holds display names indexed by zero-based month.
var monthLabels = [12]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// ParseDateOnly parses a DD/MM/YYYY string, enforcing calendar legality
// (32/01/2026 and 29/02/2025 are both rejected). The second return value is
// false when the string does not parse or names an impossible date.
func ParseDateOnly(s string) (time.Time, bool) {
	m := dateOnlyPattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	return legalDate(m[3], m[2], m[1], 0, 0)
}

// ParseDateTime parses a DD/MM/YYYY HH:MM string with the same calendar
// legality rules as ParseDateOnly.
func ParseDateTime(s string) (time.Time, bool) {
	m := dateTimePattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	hour, _ := strconv.Atoi(m[4])
	minute, _ := strconv.Atoi(m[5])
	if hour > 23 || minute > 59 {
		return time.Time{}, false
	}
	return legalDate(m[3], m[2], m[1], hour, minute)
}

func legalDate(yearStr, monthStr, dayStr string, hour, minute int) (time.Time, bool) {
	year, _ := strconv.Atoi(yearStr)
	month, _ := strconv.Atoi(monthStr)
	day, _ := strconv.Atoi(dayStr)
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.Local)
	// time.Date normalizes overflow (32/01 becomes 01/02), so a changed
	// component means the input named an impossible date.
	if t.Day() != day || int(t.Month()) != month || t.Year() != year {
		return time.Time{}, false
	}
	return t, true
}

// MonthIndex resolves a Portuguese month name (accents optional) or a 0-11
// numeric value to a zero-based month index.
func MonthIndex(v any) (int, bool) {
	switch m := v.(type) {
	case nil:
		return 0, false
	case int:
		if m >= 0 && m <= 11 {
			return m, true
		}
		return 0, false
	case float64:
		if m != math.Trunc(m) {
			return 0, false
		}
		return MonthIndex(int(m))
	case string:
		name := Normalize(strings.TrimSpace(m))
		if idx, ok := monthNames[name]; ok {
			return idx, true
		}
		if n, err := strconv.Atoi(name); err == nil {
			return MonthIndex(n)
		}
		return 0, false
	default:
		return 0, false
	}
}

// MonthLabel returns the display name of a zero-based month index, e.g.
// MonthLabel(0) == "Janeiro". Out-of-range indexes return "".
func MonthLabel(idx int) string {
	if idx < 0 || idx > 11 {
		return ""
	}
	return monthLabels[idx]
}

// BillingLabel formats the statement label used by the card ledgers,
// e.g. "Março de 2026".
func BillingLabel(monthIdx, year int) string {
	return fmt.Sprintf("%s de %d", MonthLabel(monthIdx), year)
}
