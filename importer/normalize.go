package importer

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const isoDate = "2006-01-02"

// excelEpochOffset is the Excel serial of 1970-01-01.
const excelEpochOffset = 25569

var (
	dmyPattern  = regexp.MustCompile(`^(\d{1,2})[-/](\d{1,2})[-/](\d{4})$`)
	isoPattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern = regexp.MustCompile(`^(\d{1,2})(?:[:.](\d{2}))?\s*([AaPp]\.?[Mm]\.?)?$`)
	rangeSplit  = regexp.MustCompile(`\s*(?:-|–|—|\bto\b)\s*`)
)

// Layouts tried when a date string is neither DD-MM-YYYY nor ISO.
var freeTextLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"02.01.2006",
	"2.1.2006",
	"2 January 2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"2-Jan-2006",
	"2-Jan-06",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"Monday, January 2, 2006",
	"Mon, 2 Jan 2006",
	"1/2/2006 15:04:05",
}

// NormalizeDate converts a raw cell into YYYY-MM-DD. It accepts native
// time values, Excel serials (numbers or numeric strings), DD-MM-YYYY and
// DD/MM/YYYY, ISO dates and a handful of free-text layouts.
func NormalizeDate(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case time.Time:
		if val.IsZero() {
			return "", false
		}
		return fmt.Sprintf("%04d-%02d-%02d", val.Year(), int(val.Month()), val.Day()), true
	case float64:
		return serialToDate(val)
	case int:
		return serialToDate(float64(val))
	case int64:
		return serialToDate(float64(val))
	case string:
		return normalizeDateString(val)
	default:
		return normalizeDateString(CellText(v))
	}
}

func normalizeDateString(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}

	if m := dmyPattern.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		return validDate(year, month, day)
	}

	if isoPattern.MatchString(s) {
		if _, err := time.Parse(isoDate, s); err != nil {
			return "", false
		}
		return s, true
	}

	// Raw xlsx cells carry date serials as text
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return serialToDate(f)
	}

	for _, layout := range freeTextLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(isoDate), true
		}
	}
	return "", false
}

func validDate(year, month, day int) (string, bool) {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return "", false
	}
	return t.Format(isoDate), true
}

func serialToDate(serial float64) (string, bool) {
	if math.IsNaN(serial) || math.IsInf(serial, 0) || serial < 1 {
		return "", false
	}
	seconds := math.Round((serial - excelEpochOffset) * 86400)
	return time.Unix(int64(seconds), 0).UTC().Format(isoDate), true
}

// NormalizeTime converts "H:MM" with an optional AM/PM marker into 24-hour
// "HH:MM". Without a marker, hours below 8 are read as afternoon classes.
func NormalizeTime(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case time.Time:
		return fmt.Sprintf("%02d:%02d", val.Hour(), val.Minute()), true
	case float64:
		return dayFractionToTime(val)
	case string:
		return normalizeTimeString(val)
	default:
		return normalizeTimeString(CellText(v))
	}
}

func normalizeTimeString(s string) (string, bool) {
	s = strings.TrimSpace(s)
	m := timePattern.FindStringSubmatch(s)
	if m == nil {
		// Raw xlsx time cells arrive as day fractions
		if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 && f < 1 {
			return dayFractionToTime(f)
		}
		return "", false
	}

	hour, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	} else if m[3] == "" {
		// a bare number is not a time
		return "", false
	}

	marker := strings.ToLower(strings.ReplaceAll(m[3], ".", ""))
	switch marker {
	case "pm":
		if hour < 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	default:
		if hour < 8 {
			hour += 12
		}
	}

	if hour > 23 || minute > 59 {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), true
}

func dayFractionToTime(f float64) (string, bool) {
	if f < 0 || math.IsNaN(f) {
		return "", false
	}
	_, frac := math.Modf(f)
	minutes := int(math.Round(frac * 24 * 60))
	if minutes >= 24*60 {
		minutes = 0
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60), true
}

// SplitTimeRange parses "10:00-11:00" style cells into normalized start and
// end times.
func SplitTimeRange(v any) (start, end string, ok bool) {
	text := CellText(v)
	parts := rangeSplit.Split(strings.TrimSpace(text), 2)
	if len(parts) != 2 {
		start, ok = NormalizeTime(v)
		return start, "", ok
	}

	start, ok = NormalizeTime(parts[0])
	if !ok {
		return "", "", false
	}
	end, ok = NormalizeTime(parts[1])
	if !ok {
		return "", "", false
	}
	return start, end, true
}

// CellText renders any cell value as trimmed text.
func CellText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return cleanValue(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case time.Time:
		return val.Format(isoDate)
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}

// cleanValue trims the cell and unwraps ="text" formulas.
func cleanValue(value string) string {
	value = strings.TrimSpace(value)

	if strings.HasPrefix(value, "=") {
		value = strings.TrimPrefix(value, "=")
		value = strings.Trim(value, "\"")
	}

	value = strings.TrimSpace(value)
	if value == "\"\"" {
		return ""
	}
	return value
}
