package datetime

import (
	"strconv"
	"strings"
	"time"

	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/culture"
	ferrors "github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/errors"
	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/options"
)

// Messages of the format errors raised for literals no mask accepts.
const (
	InvalidDateTime = "Invalid DateTime format."
	InvalidTimeSpan = "Invalid TimeSpan format."
)

// TwoDigitYearMax is the last year a two-digit year can denote.
const TwoDigitYearMax = 2049

// Clock holds the scanned components of a time of day.
type Clock struct {
	Hour, Minute, Second string

	// HasSeconds is set when a seconds component was scanned.
	HasSeconds bool

	// Designator is the AM/PM text as written, or empty.
	Designator string
}

// Converter turns scanned literal components into time values for one
// option set.
type Converter struct {
	culture  culture.Culture
	order    Order
	dateSeps []string
	timeSeps []string
	clock12  bool
	loc      *time.Location
}

// NewConverter builds the converter for o.
func NewConverter(o options.Options) *Converter {
	c := o.Culture
	if c.ShortDatePattern == "" {
		c = culture.Invariant
	}
	return &Converter{
		culture:  c,
		order:    OrderOf(c),
		dateSeps: Separators(o.Advanced.DateSeparatorFor(c), options.BuiltInDateSeparator, o.HasAdvanced(options.SkipBuiltInDateSeparator)),
		timeSeps: Separators(o.Advanced.TimeSeparatorFor(c), options.BuiltInTimeSeparator, o.HasAdvanced(options.SkipBuiltInTimeSeparator)),
		clock12:  c.Uses12HourClock(),
		loc:      time.Local,
	}
}

// Order returns the date component order in effect.
func (c *Converter) Order() Order { return c.order }

// DateSeparators returns the accepted date separators in trial order.
func (c *Converter) DateSeparators() []string { return c.dateSeps }

// TimeSeparators returns the accepted time separators in trial order.
func (c *Converter) TimeSeparators() []string { return c.timeSeps }

// Uses12HourClock reports whether AM/PM designators are recognised.
func (c *Converter) Uses12HourClock() bool { return c.clock12 }

// MatchDesignator matches an AM/PM designator at the start of s, case
// insensitively. Full designators are tried before their first characters.
// It returns the number of bytes consumed.
func (c *Converter) MatchDesignator(s string) (int, bool) {
	if !c.clock12 {
		return 0, false
	}
	for _, d := range []string{c.culture.AMDesignator, c.culture.PMDesignator} {
		if d != "" && len(s) >= len(d) && strings.EqualFold(s[:len(d)], d) {
			return len(d), true
		}
	}
	for _, d := range []string{c.culture.AMDesignator, c.culture.PMDesignator} {
		if first := firstRune(d); first != "" && len(s) >= len(first) && strings.EqualFold(s[:len(first)], first) {
			return len(first), true
		}
	}
	return 0, false
}

// canonicalDesignator maps a written designator, or its first character,
// to "AM" or "PM".
func (c *Converter) canonicalDesignator(d string) (string, bool) {
	switch {
	case strings.EqualFold(d, c.culture.AMDesignator), strings.EqualFold(d, firstRune(c.culture.AMDesignator)):
		return "AM", true
	case strings.EqualFold(d, c.culture.PMDesignator), strings.EqualFold(d, firstRune(c.culture.PMDesignator)):
		return "PM", true
	}
	return "", false
}

func firstRune(s string) string {
	for _, r := range s {
		return string(r)
	}
	return ""
}

// Date converts three date components in written order.
func (c *Converter) Date(parts [3]string) (time.Time, error) {
	for _, m := range DateMasks(c.order) {
		if t, ok := c.try(m, parts, nil); ok {
			return t, nil
		}
	}
	return time.Time{}, &ferrors.FormatError{Message: InvalidDateTime, Text: strings.Join(parts[:], "/")}
}

// DateTime converts date components followed by a time of day.
func (c *Converter) DateTime(parts [3]string, clock Clock) (time.Time, error) {
	for _, m := range DateTimeMasks(c.order, c.clock12) {
		if t, ok := c.try(m, parts, &clock); ok {
			return t, nil
		}
	}
	return time.Time{}, &ferrors.FormatError{Message: InvalidDateTime, Text: strings.Join(parts[:], "/") + " " + clockText(clock)}
}

// TimeOfDay converts a time literal to the duration since midnight.
func (c *Converter) TimeOfDay(clock Clock) (time.Duration, error) {
	text, ok := c.canonicalClock(clock)
	if ok {
		for _, m := range TimeMasks(c.clock12) {
			if m.Seconds != clock.HasSeconds || m.Clock12 != (clock.Designator != "") {
				continue
			}
			t, err := time.Parse(m.Layout, text)
			if err != nil {
				continue
			}
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, nil
		}
	}
	return 0, &ferrors.FormatError{Message: InvalidTimeSpan, Text: clockText(clock)}
}

func (c *Converter) try(m Mask, parts [3]string, clock *Clock) (time.Time, bool) {
	if clock != nil && (m.Seconds != clock.HasSeconds || m.Clock12 != (clock.Designator != "")) {
		return time.Time{}, false
	}

	layout := m.Layout
	if m.ShortYear {
		yi := 2
		if c.order == YearFirst {
			yi = 0
		}
		year, ok := expandYear(parts[yi])
		if !ok {
			return time.Time{}, false
		}
		parts[yi] = year
		layout = strings.Replace(layout, "06", "2006", 1)
	}

	text := strings.Join(parts[:], "/")
	if clock != nil {
		ct, ok := c.canonicalClock(*clock)
		if !ok {
			return time.Time{}, false
		}
		text += " " + ct
	}

	t, err := time.ParseInLocation(layout, text, c.loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (c *Converter) canonicalClock(clock Clock) (string, bool) {
	text := clock.Hour + ":" + clock.Minute
	if clock.HasSeconds {
		text += ":" + clock.Second
	}
	if clock.Designator != "" {
		d, ok := c.canonicalDesignator(clock.Designator)
		if !ok {
			return "", false
		}
		text += " " + d
	}
	return text, true
}

// expandYear widens a one or two digit year into the window ending at
// TwoDigitYearMax.
func expandYear(s string) (string, bool) {
	if len(s) == 0 || len(s) > 2 {
		return "", false
	}
	y, err := strconv.Atoi(s)
	if err != nil {
		return "", false
	}
	century := (TwoDigitYearMax / 100) * 100
	year := century + y
	if year > TwoDigitYearMax {
		year -= 100
	}
	return strconv.Itoa(year), true
}

func clockText(c Clock) string {
	s := c.Hour + ":" + c.Minute
	if c.HasSeconds {
		s += ":" + c.Second
	}
	if c.Designator != "" {
		s += " " + c.Designator
	}
	return s
}
