// Package culture describes the locale-dependent conventions the parser and
// evaluator need: date/time patterns, separators, AM/PM designators and
// string collation.
package culture

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Culture is a small locale descriptor.
type Culture struct {
	// Name is the BCP 47 tag. The invariant culture has an empty name.
	Name string

	// ShortDatePattern is the .NET style short date pattern, e.g. "M/d/yyyy".
	ShortDatePattern string

	// ShortTimePattern is the .NET style short time pattern, e.g. "h:mm tt".
	ShortTimePattern string

	DateSeparator string
	TimeSeparator string

	AMDesignator string
	PMDesignator string
}

// Invariant is the culture used when none is configured.
var Invariant = Culture{
	Name:             "",
	ShortDatePattern: "MM/dd/yyyy",
	ShortTimePattern: "HH:mm",
	DateSeparator:    "/",
	TimeSeparator:    ":",
	AMDesignator:     "AM",
	PMDesignator:     "PM",
}

var known = []Culture{
	{Name: "en-US", ShortDatePattern: "M/d/yyyy", ShortTimePattern: "h:mm tt", DateSeparator: "/", TimeSeparator: ":", AMDesignator: "AM", PMDesignator: "PM"},
	{Name: "en-GB", ShortDatePattern: "dd/MM/yyyy", ShortTimePattern: "HH:mm", DateSeparator: "/", TimeSeparator: ":", AMDesignator: "am", PMDesignator: "pm"},
	{Name: "de-DE", ShortDatePattern: "dd.MM.yyyy", ShortTimePattern: "HH:mm", DateSeparator: ".", TimeSeparator: ":", AMDesignator: "AM", PMDesignator: "PM"},
	{Name: "fr-FR", ShortDatePattern: "dd/MM/yyyy", ShortTimePattern: "HH:mm", DateSeparator: "/", TimeSeparator: ":", AMDesignator: "AM", PMDesignator: "PM"},
	{Name: "sk-SK", ShortDatePattern: "d. M. yyyy", ShortTimePattern: "H:mm", DateSeparator: ". ", TimeSeparator: ":", AMDesignator: "AM", PMDesignator: "PM"},
	{Name: "ja-JP", ShortDatePattern: "yyyy/MM/dd", ShortTimePattern: "H:mm", DateSeparator: "/", TimeSeparator: ":", AMDesignator: "午前", PMDesignator: "午後"},
	{Name: "ko-KR", ShortDatePattern: "yyyy-MM-dd", ShortTimePattern: "tt h:mm", DateSeparator: "-", TimeSeparator: ":", AMDesignator: "오전", PMDesignator: "오후"},
}

var (
	knownTags = func() []language.Tag {
		tags := make([]language.Tag, len(known))
		for i, c := range known {
			tags[i] = language.MustParse(c.Name)
		}
		return tags
	}()
	matcher = language.NewMatcher(knownTags)
)

// Lookup returns the culture best matching tag. An empty tag or "invariant"
// yields Invariant. Tags that match no known culture with at least high
// confidence are an error.
func Lookup(tag string) (Culture, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" || strings.EqualFold(tag, "invariant") {
		return Invariant, nil
	}

	t, err := language.Parse(tag)
	if err != nil {
		return Culture{}, fmt.Errorf("culture: parse %q: %w", tag, err)
	}

	_, idx, conf := matcher.Match(t)
	if conf < language.High {
		return Culture{}, fmt.Errorf("culture: no match for %q", tag)
	}
	return known[idx], nil
}

// MustLookup is like Lookup but panics on error. Intended for tests and
// package-level variables.
func MustLookup(tag string) Culture {
	c, err := Lookup(tag)
	if err != nil {
		panic(err)
	}
	return c
}

// IsInvariant reports whether c is the invariant culture.
func (c Culture) IsInvariant() bool {
	return c.Name == ""
}

// Tag returns the language tag of c, language.Und for the invariant culture.
func (c Culture) Tag() language.Tag {
	if c.IsInvariant() {
		return language.Und
	}
	t, err := language.Parse(c.Name)
	if err != nil {
		return language.Und
	}
	return t
}

// Uses12HourClock reports whether the short time pattern carries an AM/PM
// designator.
func (c Culture) Uses12HourClock() bool {
	return strings.Contains(c.ShortTimePattern, "t")
}

// Collator returns a collator for culture-aware comparison. Collators are
// not safe for concurrent use; callers keep one per evaluation.
func (c Culture) Collator(ignoreCase bool) *collate.Collator {
	if ignoreCase {
		return collate.New(c.Tag(), collate.IgnoreCase)
	}
	return collate.New(c.Tag())
}

// Upper returns s mapped to upper case under c.
func (c Culture) Upper(s string) string {
	return cases.Upper(c.Tag()).String(s)
}

// Lower returns s mapped to lower case under c.
func (c Culture) Lower(s string) string {
	return cases.Lower(c.Tag()).String(s)
}

// Fold returns the case folded form of s, used for case-insensitive
// matching.
func Fold(s string) string {
	return cases.Fold().String(s)
}
