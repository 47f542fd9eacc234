package options

import (
	"fmt"

	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/config"
	"github.com/Allied-Bits-Ltd/ncalc/pkg/ncalc/culture"
)

// Options is the option bag attached to a parsed expression and consulted
// during evaluation.
type Options struct {
	Flags    Flags
	Culture  culture.Culture
	Advanced Advanced
}

// Default returns options with no flags under the invariant culture.
func Default() Options {
	return Options{Culture: culture.Invariant}
}

// New returns default options with flags set.
func New(flags Flags) Options {
	o := Default()
	o.Flags = flags
	return o
}

// Has reports whether f is set.
func (o Options) Has(f Flags) bool {
	return o.Flags.Has(f)
}

// HasAdvanced reports whether the advanced flag f is set.
func (o Options) HasAdvanced(f AdvancedFlags) bool {
	return o.Advanced.Flags.Has(f)
}

// Clone returns a copy of o.
func (o *Options) Clone() *Options {
	if o == nil {
		return nil
	}
	c := *o
	return &c
}

// DateSeparator returns the configured date separator.
func (o Options) DateSeparator() string {
	return o.Advanced.DateSeparatorFor(o.Culture)
}

// TimeSeparator returns the configured time separator.
func (o Options) TimeSeparator() string {
	return o.Advanced.TimeSeparatorFor(o.Culture)
}

// FromConfig reads options from cfg.
//
// Recognised keys: flags, culture, advanced.flags, advanced.date_separator_type,
// advanced.date_separator, advanced.time_separator_type, advanced.time_separator.
func FromConfig(cfg config.Config) (Options, error) {
	opts := Default()

	flags, err := ParseFlags(cfg.StringSlice("flags", nil))
	if err != nil {
		return Options{}, err
	}
	opts.Flags = flags

	if tag := cfg.String("culture", ""); tag != "" {
		c, err := culture.Lookup(tag)
		if err != nil {
			return Options{}, fmt.Errorf("options: %w", err)
		}
		opts.Culture = c
	}

	adv := cfg.Sub("advanced")
	if opts.Advanced.Flags, err = ParseAdvancedFlags(adv.StringSlice("flags", nil)); err != nil {
		return Options{}, err
	}
	if opts.Advanced.DateSeparatorType, err = ParseSeparatorType(adv.String("date_separator_type", "")); err != nil {
		return Options{}, err
	}
	if opts.Advanced.TimeSeparatorType, err = ParseSeparatorType(adv.String("time_separator_type", "")); err != nil {
		return Options{}, err
	}
	opts.Advanced.DateSeparator = adv.String("date_separator", "")
	opts.Advanced.TimeSeparator = adv.String("time_separator", "")

	return opts, nil
}

// Load reads options from a YAML or JSON file.
func Load(path string) (Options, error) {
	cfg, err := config.FromFile(path)
	if err != nil {
		return Options{}, err
	}
	return FromConfig(cfg)
}
