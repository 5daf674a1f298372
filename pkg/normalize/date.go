package normalize

import (
	"fmt"
	"strings"
	"time"
)

// DateConverter is implemented by cell values that know their own date.
type DateConverter interface {
	Time() time.Time
}

var isoLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.RFC3339,
	"2006/01/02",
	"2006/1/2",
	"2006.01.02",
	"2006-1-2",
	"20060102",
}

var monthFirstLayouts = []string{
	"01/02/2006", "1/2/2006", "01/02/06", "1/2/06",
	"01/02/2006 15:04:05", "01/02/2006 15:04", "1/2/2006 15:04:05",
	"01/02/2006 03:04:05 PM", "1/2/2006 3:04:05 PM", "01/02/2006 03:04 PM",
	"01-02-2006", "1-2-2006", "01-02-06", "1-2-06",
	"01-02-2006 15:04:05", "01-02-2006 15:04",
}

var dayFirstLayouts = []string{
	"02/01/2006", "2/1/2006", "02/01/06", "2/1/06",
	"02/01/2006 15:04:05", "02/01/2006 15:04", "2/1/2006 15:04:05",
	"02/01/2006 03:04:05 PM", "2/1/2006 3:04:05 PM", "02/01/2006 03:04 PM",
	"02-01-2006", "2-1-2006", "02-01-06", "2-1-06",
	"02-01-2006 15:04:05", "02-01-2006 15:04",
	"02.01.2006", "2.1.2006", "02.01.06",
}

var namedLayouts = []string{
	"02-Jan-2006", "2-Jan-2006", "02-Jan-06", "2-Jan-06",
	"02/Jan/2006", "2/Jan/2006", "02/Jan/06",
	"02 Jan 2006", "2 Jan 2006", "02 Jan 06",
	"02-Jan-2006 15:04:05", "02-Jan-2006 15:04", "02-Jan-2006 03:04:05 PM",
	"02 January 2006", "2 January 2006", "January 2, 2006", "Jan 2, 2006",
	"02-January-2006", "Jan 02 2006", "02Jan2006",
	"Mon, 02 Jan 2006", "Mon 02 Jan 2006",
}

// Ambiguous numeric dates are month-first by default: 03/04/2024 is the 4th
// of March, while 13/01/2024 still falls through to the day-first reading.
var (
	monthFirst = concat(isoLayouts, monthFirstLayouts, dayFirstLayouts, namedLayouts)
	dayFirst   = concat(isoLayouts, dayFirstLayouts, monthFirstLayouts, namedLayouts)
)

func concat(lists ...[]string) []string {
	out := []string{}
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

// Date resolves a cell into a calendar date. With a non-empty format the value
// must match it exactly; otherwise a fixed list of layouts is tried in order.
// The boolean is false when no date could be resolved.
func Date(v interface{}, format string) (time.Time, bool) {
	switch d := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return valid(d)
	case *time.Time:
		if d == nil {
			return time.Time{}, false
		}
		return valid(*d)
	case DateConverter:
		return valid(d.Time())
	case string:
		return DateString(d, format)
	case []byte:
		return DateString(string(d), format)
	case fmt.Stringer:
		return DateString(d.String(), format)
	}
	return DateString(fmt.Sprint(v), format)
}

// DateString is Date for string cells.
func DateString(s, format string) (time.Time, bool) {
	return parse(s, format, monthFirst)
}

// DateStringDayFirst is DateString with ambiguous numeric dates read
// day-first (03/04/2024 is the 3rd of April).
func DateStringDayFirst(s, format string) (time.Time, bool) {
	return parse(s, format, dayFirst)
}

func parse(s, format string, layouts []string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if format != "" {
		d, err := time.Parse(Layout(format), s)
		if err != nil {
			return time.Time{}, false
		}
		return valid(d)
	}

	for _, layout := range layouts {
		if d, err := time.Parse(layout, s); err == nil {
			return valid(d)
		}
	}
	return time.Time{}, false
}

func valid(d time.Time) (time.Time, bool) {
	if d.IsZero() {
		return time.Time{}, false
	}
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC), true
}

var strftime = strings.NewReplacer(
	"%Y", "2006",
	"%y", "06",
	"%m", "01",
	"%d", "02",
	"%b", "Jan",
	"%B", "January",
	"%a", "Mon",
	"%A", "Monday",
	"%H", "15",
	"%I", "03",
	"%M", "04",
	"%S", "05",
	"%p", "PM",
	"%%", "%",
)

// Layout turns a strftime-style format ("%d-%b-%Y") into a Go layout.
// Formats without a '%' are assumed to be Go layouts already.
func Layout(format string) string {
	if !strings.Contains(format, "%") {
		return format
	}
	return strftime.Replace(format)
}
