// SPDX-FileCopyrightText: 2026 The htrack Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config builds the immutable Config consumed by the tracker.
//
// Values are collected into Options, first from the defaults, then from an
// optional TOML file and finally from keyword options on the command line,
// e.g.,
//
//	htrack host 192.0.2.1 port 443 timeout 2 send "HEAD / HTTP/1.0\r\n\r\n"
//
// Options.Config validates the collected values and returns a Config. Invalid
// or missing options are reported as an OptionError, whose message names the
// offending option.
package config
