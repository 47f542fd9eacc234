/*
Package config provides typed extraction from decoded YAML/JSON documents.

# Overview

Config wraps a map[string]any and resolves dotted paths into nested
sections. Missing keys and type mismatches return the supplied default, so
callers can read optional settings without nil checks.

# Expression settings

The options package reads engine settings from a Config:

	flags: [DecimalAsDefault, OverflowProtection]
	culture: de-DE
	timeout: 250ms
	advanced:
	  flags: CalculatePercent|AcceptUnderscoresInNumbers
	  date_separator_type: custom
	  date_separator: "-"
	parameters:
	  rate: 0.2

	cfg, err := config.FromFile("ncalc.yaml")
	opts, err := options.FromConfig(cfg)
	timeout := cfg.Duration("timeout", 0)

# Type Coercion

Duration accepts a time.ParseDuration string or a number of seconds.
StringSlice accepts a YAML list or a single string separated by '|' or ','.
Int accepts int, int64 and integral floats. JSON integers decode as int64
and YAML integers as int, so parameter values keep their integer kind.
*/
package config
