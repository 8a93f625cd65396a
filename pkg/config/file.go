// SPDX-FileCopyrightText: 2026 The htrack Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/BurntSushi/toml"
)

// keepaliveKeys maps the keys of the "keepalive" table to option names.
var keepaliveKeys = map[string]string{
	"enabled":  "keepalive",
	"idle":     "keepidle",
	"interval": "keepintvl",
	"count":    "count",
}

// LoadFile applies a TOML configuration file to the Options. Top level keys
// are named like the command line options. Keepalive and logging settings can
// be placed within their own tables:
//
//	host = "192.0.2.1"
//	port = 443
//	interval = "10s"
//
//	[keepalive]
//	idle = 30
//	count = 5
//
//	[logging]
//	level = "debug"
func (o *Options) LoadFile(filename string) error {
	var tree map[string]interface{}
	if _, err := toml.DecodeFile(filename, &tree); err != nil {
		return err
	}

	return o.apply(tree)
}

// LoadString is like LoadFile, but reads the TOML data from a string.
func (o *Options) LoadString(data string) error {
	var tree map[string]interface{}
	if _, err := toml.Decode(data, &tree); err != nil {
		return err
	}

	return o.apply(tree)
}

func (o *Options) apply(tree map[string]interface{}) error {
	// Sorted keys result in reproducible errors for broken files.
	keys := make([]string, 0, len(tree))
	for key := range tree {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := tree[key]

		var err error
		switch key {
		case "keepalive":
			err = o.applyKeepalive(value)

		case "logging":
			err = o.applyLogging(value)

		case "oneshot":
			if b, ok := value.(bool); ok {
				o.Oneshot = b
			} else {
				err = &OptionError{Name: key, Kind: BadValue}
			}

		default:
			err = o.setValue(key, value)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

func (o *Options) applyKeepalive(value interface{}) error {
	table, ok := value.(map[string]interface{})
	if !ok {
		return o.setValue("keepalive", value)
	}

	for key, v := range table {
		name, ok := keepaliveKeys[key]
		if !ok {
			return &OptionError{Name: "keepalive." + key, Kind: Unknown}
		}

		if err := o.setValue(name, v); err != nil {
			return err
		}
	}

	return nil
}

func (o *Options) applyLogging(value interface{}) error {
	table, ok := value.(map[string]interface{})
	if !ok {
		return &OptionError{Name: "logging", Kind: BadValue}
	}

	for key, v := range table {
		var ok bool
		switch key {
		case "level":
			o.Logging.Level, ok = v.(string)
		case "format":
			o.Logging.Format, ok = v.(string)
		case "report-caller":
			o.Logging.ReportCaller, ok = v.(bool)
		default:
			return &OptionError{Name: "logging." + key, Kind: Unknown}
		}

		if !ok {
			return &OptionError{Name: "logging." + key, Kind: BadValue}
		}
	}

	return nil
}

// setValue converts a TOML scalar into its textual option value.
func (o *Options) setValue(name string, value interface{}) error {
	var text string
	switch v := value.(type) {
	case string:
		text = v
	case int64:
		text = strconv.FormatInt(v, 10)
	case bool:
		text = strconv.FormatBool(v)
	default:
		return &OptionError{Name: name, Kind: BadValue, Err: fmt.Errorf("unsupported type %T", value)}
	}

	return o.Set(name, text)
}
