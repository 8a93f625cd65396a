// SPDX-FileCopyrightText: 2026 The htrack Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/htrack/htrack-go/pkg/endpoint"
)

// OptionErrorKind tells what is wrong with an option.
type OptionErrorKind uint

const (
	// BadValue is a missing or unparsable option value.
	BadValue OptionErrorKind = iota

	// Mandatory is a required option which was not given.
	Mandatory

	// Unknown is an unsupported option name.
	Unknown
)

// OptionError reports a problem with the named option.
type OptionError struct {
	Name string
	Kind OptionErrorKind
	Err  error
}

func (oe *OptionError) Error() string {
	switch oe.Kind {
	case Mandatory:
		return fmt.Sprintf("option '%s' is mandatory", oe.Name)
	case Unknown:
		return fmt.Sprintf("unknown option '%s'", oe.Name)
	default:
		return fmt.Sprintf("bad value for option '%s'", oe.Name)
	}
}

func (oe *OptionError) Unwrap() error {
	return oe.Err
}

// Logging configuration, which is not part of the tracker's Config but may be
// set within a configuration file.
type Logging struct {
	Level        string
	Format       string
	ReportCaller bool
}

// Options are the raw, not yet validated values a Config is built of.
type Options struct {
	Host netip.Addr
	Port uint16
	Bind netip.Addr
	Send []byte

	// Timeout is the common value for the connect timeout, the retry interval
	// and the keepalive idle and interval time. Each of them might be
	// overwritten by its own, more specific option.
	Timeout        time.Duration
	ConnectTimeout *time.Duration
	Interval       *time.Duration
	KeepIdle       *time.Duration
	KeepIntvl      *time.Duration

	KeepCount int
	Keepalive bool
	FastOpen  bool
	BufSize   int
	Oneshot   bool

	Logging Logging
}

// DefaultOptions returns Options with htrack's defaults.
func DefaultOptions() Options {
	return Options{
		Port:      80,
		Timeout:   5 * time.Second,
		KeepCount: 3,
		Keepalive: true,
		FastOpen:  true,
		BufSize:   4096,
	}
}

// optionSetter parses an option's value into the Options.
type optionSetter func(o *Options, value string) error

var optionSetters = map[string]optionSetter{
	"host": func(o *Options, value string) (err error) {
		o.Host, err = parseAddr(value)
		return
	},
	"port": func(o *Options, value string) (err error) {
		o.Port, err = parsePort(value)
		return
	},
	"bind": func(o *Options, value string) (err error) {
		o.Bind, err = parseAddr(value)
		return
	},
	"send": func(o *Options, value string) error {
		o.Send = []byte(value)
		return nil
	},
	"timeout": func(o *Options, value string) (err error) {
		o.Timeout, err = parseDuration(value)
		return
	},
	"connect-timeout": durationSetter(func(o *Options) **time.Duration { return &o.ConnectTimeout }),
	"interval":        durationSetter(func(o *Options) **time.Duration { return &o.Interval }),
	"keepidle":        durationSetter(func(o *Options) **time.Duration { return &o.KeepIdle }),
	"keepintvl":       durationSetter(func(o *Options) **time.Duration { return &o.KeepIntvl }),
	"count": func(o *Options, value string) (err error) {
		o.KeepCount, err = parseNatural(value)
		return
	},
	"bufsize": func(o *Options, value string) (err error) {
		if o.BufSize, err = parseNatural(value); err == nil && o.BufSize == 0 {
			err = fmt.Errorf("buffer size must be positive")
		}
		return
	},
	"keepalive": func(o *Options, value string) (err error) {
		o.Keepalive, err = parseSwitch(value)
		return
	},
	"fastopen": func(o *Options, value string) (err error) {
		o.FastOpen, err = parseSwitch(value)
		return
	},
}

// flagOptions are options without a value.
var flagOptions = map[string]func(o *Options){
	"oneshot": func(o *Options) { o.Oneshot = true },
}

func durationSetter(field func(o *Options) **time.Duration) optionSetter {
	return func(o *Options, value string) error {
		d, err := parseDuration(value)
		if err != nil {
			return err
		}
		*field(o) = &d
		return nil
	}
}

// Set a single option by its name. An empty name or an unknown option results
// in an OptionError of kind Unknown.
func (o *Options) Set(name, value string) error {
	setter, ok := optionSetters[name]
	if !ok {
		return &OptionError{Name: name, Kind: Unknown}
	}

	if err := setter(o, value); err != nil {
		return &OptionError{Name: name, Kind: BadValue, Err: err}
	}
	return nil
}

// ParseArgs reads keyword options, each name followed by its value, except
// for flag options like "oneshot". A later occurrence of an option overrides
// an earlier one.
func (o *Options) ParseArgs(args []string) error {
	for i := 0; i < len(args); i++ {
		name := args[i]

		if flag, ok := flagOptions[name]; ok {
			flag(o)
			continue
		}

		if _, ok := optionSetters[name]; !ok {
			return &OptionError{Name: name, Kind: Unknown}
		}

		if i+1 >= len(args) {
			return &OptionError{Name: name, Kind: BadValue, Err: fmt.Errorf("missing value")}
		}

		i++
		if err := o.Set(name, args[i]); err != nil {
			return err
		}
	}

	return nil
}

// Config creates and validates the Config for these Options.
func (o Options) Config() (*Config, error) {
	if !o.Host.IsValid() {
		return nil, &OptionError{Name: "host", Kind: Mandatory}
	}

	remote, err := endpoint.New(o.Host, o.Port)
	if err != nil {
		return nil, &OptionError{Name: "host", Kind: BadValue, Err: err}
	}

	var local endpoint.Endpoint
	if o.Bind.IsValid() {
		if local, err = endpoint.New(o.Bind, 0); err != nil {
			return nil, &OptionError{Name: "bind", Kind: BadValue, Err: err}
		}
	}

	if !endpoint.Compatible(local, remote) {
		return nil, ErrIncompatible
	}

	if o.BufSize <= 0 {
		return nil, &OptionError{Name: "bufsize", Kind: BadValue}
	}

	conf := &Config{
		Remote:         remote,
		Local:          local,
		ConnectTimeout: orDefault(o.ConnectTimeout, o.Timeout),
		RetryInterval:  orDefault(o.Interval, o.Timeout),
		FastOpen:       o.FastOpen,
		BufferSize:     o.BufSize,
		Oneshot:        o.Oneshot,
	}

	if len(o.Send) > 0 {
		conf.Payload = append([]byte(nil), o.Send...)
	}

	if o.Keepalive {
		conf.Keepalive = &Keepalive{
			Idle:     orDefault(o.KeepIdle, o.Timeout),
			Interval: orDefault(o.KeepIntvl, o.Timeout),
			Count:    o.KeepCount,
		}
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func orDefault(d *time.Duration, def time.Duration) time.Duration {
	if d != nil {
		return *d
	}
	return def
}

func parseAddr(value string) (netip.Addr, error) {
	addr, err := netip.ParseAddr(value)
	if err != nil {
		return netip.Addr{}, err
	}
	if addr.Zone() != "" {
		return netip.Addr{}, fmt.Errorf("zoned address %v", addr)
	}
	return addr, nil
}

// parsePort accepts decimal, octal and hexadecimal notation.
func parsePort(value string) (uint16, error) {
	port, err := strconv.ParseUint(value, 0, 16)
	return uint16(port), err
}

// parseNatural parses a non-negative int32 in decimal, octal or hexadecimal.
func parseNatural(value string) (int, error) {
	n, err := strconv.ParseInt(value, 0, 32)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("%d is negative", n)
	}
	return int(n), nil
}

// parseDuration accepts either a number of seconds or a duration like "1m30s".
func parseDuration(value string) (time.Duration, error) {
	if n, err := parseNatural(value); err == nil {
		return time.Duration(n) * time.Second, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("%v is negative", d)
	}
	return d, nil
}

func parseSwitch(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	default:
		return strconv.ParseBool(value)
	}
}
