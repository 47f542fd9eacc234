// Package datetime derives the date and time masks used for '#'-delimited
// literals from a culture and the configured separators, and converts the
// numeric components the parser scanned into time values.
//
// Masks are Go layouts over a canonical text in which the date separator
// is always "/", the time separator is always ":" and the AM/PM designator
// is always "AM" or "PM". The parser accepts the culture or custom
// separators and the Converter rewrites the components before trying the
// masks, so the same mask list serves every separator configuration.
package datetime

import (
	"strings"

	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/culture"
)

// Order is the order of the day, month and year components of a date.
type Order int

const (
	DayFirst Order = iota
	MonthFirst
	YearFirst
)

// String returns the order name.
func (o Order) String() string {
	switch o {
	case MonthFirst:
		return "month-first"
	case YearFirst:
		return "year-first"
	default:
		return "day-first"
	}
}

// OrderOf derives the component order from the first field letter of the
// culture's short date pattern. Unknown patterns are day-first.
func OrderOf(c culture.Culture) Order {
	p := strings.TrimSpace(c.ShortDatePattern)
	if p == "" {
		return DayFirst
	}
	switch p[0] {
	case 'M':
		return MonthFirst
	case 'y':
		return YearFirst
	}
	return DayFirst
}

// Mask is one candidate layout for a date, time or date-time literal.
type Mask struct {
	// Layout is a Go time layout over the canonical text. A "06" year
	// stands for a two-digit year that is expanded before parsing.
	Layout string

	// ShortYear marks a two-digit year mask.
	ShortYear bool

	// Clock12 marks a mask that needs an AM/PM designator.
	Clock12 bool

	// Seconds marks a mask whose time part has seconds.
	Seconds bool
}

const (
	timeLong    = "15:4:5"
	timeShort   = "15:4"
	time12Long  = "3:4:5 PM"
	time12Short = "3:4 PM"
)

// DateMasks returns the date masks for order o: four-digit year first,
// then two-digit year.
func DateMasks(o Order) []Mask {
	switch o {
	case MonthFirst:
		return []Mask{{Layout: "1/2/2006"}, {Layout: "1/2/06", ShortYear: true}}
	case YearFirst:
		return []Mask{{Layout: "2006/1/2"}, {Layout: "06/1/2", ShortYear: true}}
	}
	return []Mask{{Layout: "2/1/2006"}, {Layout: "2/1/06", ShortYear: true}}
}

// TimeMasks returns the masks for a time-of-day literal. Forms with
// seconds come before forms without, and 12-hour forms come first when
// clock12 is set.
func TimeMasks(clock12 bool) []Mask {
	var masks []Mask
	if clock12 {
		masks = append(masks,
			Mask{Layout: time12Long, Clock12: true, Seconds: true},
			Mask{Layout: time12Short, Clock12: true},
		)
	}
	return append(masks,
		Mask{Layout: timeLong, Seconds: true},
		Mask{Layout: timeShort},
	)
}

// DateTimeMasks combines every date mask for o with every time mask, time
// form major, so long forms precede short forms and 12-hour forms precede
// 24-hour forms.
func DateTimeMasks(o Order, clock12 bool) []Mask {
	dates := DateMasks(o)
	times := TimeMasks(clock12)
	masks := make([]Mask, 0, len(dates)*len(times))
	for _, t := range times {
		for _, d := range dates {
			masks = append(masks, Mask{
				Layout:    d.Layout + " " + t.Layout,
				ShortYear: d.ShortYear,
				Clock12:   t.Clock12,
				Seconds:   t.Seconds,
			})
		}
	}
	return masks
}

// Separators returns the accepted spellings of a separator in trial
// order. The configured separator comes first. When it contains spaces
// its trimmed form follows, and the built-in separator comes last unless
// skipBuiltIn is set or it is the configured one.
func Separators(configured, builtIn string, skipBuiltIn bool) []string {
	if configured == "" {
		configured = builtIn
	}
	seps := []string{configured}
	if trimmed := strings.TrimSpace(configured); trimmed != configured && trimmed != "" {
		seps = append(seps, trimmed)
	}
	if configured != builtIn && !skipBuiltIn {
		seps = append(seps, builtIn)
	}
	return seps
}
