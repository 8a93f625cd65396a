// SPDX-FileCopyrightText: 2026 The htrack Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/htrack/htrack-go/pkg/endpoint"
)

// Keepalive configures the kernel's TCP keepalive probes. Each field is only
// applied if it is greater than zero; otherwise the system default is kept.
type Keepalive struct {
	// Idle time before the first probe, TCP_KEEPIDLE.
	Idle time.Duration

	// Interval between probes, TCP_KEEPINTVL.
	Interval time.Duration

	// Count of unanswered probes before the connection is dropped, TCP_KEEPCNT.
	Count int
}

// Config for a tracker. A Config is created once and must not be altered
// afterwards.
type Config struct {
	// Remote endpoint to connect to; mandatory.
	Remote endpoint.Endpoint

	// Local endpoint to bind to before connecting; optional.
	Local endpoint.Endpoint

	// ConnectTimeout bounds the wait for the handshake to complete.
	ConnectTimeout time.Duration

	// RetryInterval is slept between two cycles.
	RetryInterval time.Duration

	// Keepalive enables TCP keepalive if not nil.
	Keepalive *Keepalive

	// FastOpen requests TCP_FASTOPEN on a best effort basis.
	FastOpen bool

	// Payload is sent after each successful connect, if not empty.
	Payload []byte

	// BufferSize of the scratch buffer incoming data is drained into.
	BufferSize int

	// Oneshot exits after the first successful connect.
	Oneshot bool
}

// ErrIncompatible is returned if the bind and host addresses are of different
// families.
var ErrIncompatible = errors.New("host and bind are not compatible")

// Validate checks all invariants of this Config. All violations are reported
// together.
func (c *Config) Validate() error {
	var errs *multierror.Error

	switch c.Remote.Family() {
	case endpoint.IPv4, endpoint.IPv6:
	default:
		errs = multierror.Append(errs, &OptionError{Name: "host", Kind: Mandatory})
	}

	if !endpoint.Compatible(c.Local, c.Remote) {
		errs = multierror.Append(errs, ErrIncompatible)
	}

	if c.BufferSize <= 0 {
		errs = multierror.Append(errs,
			fmt.Errorf("buffer size must be positive, not %d", c.BufferSize))
	}

	if c.ConnectTimeout < 0 {
		errs = multierror.Append(errs,
			fmt.Errorf("connect timeout %v is negative", c.ConnectTimeout))
	}
	if c.RetryInterval < 0 {
		errs = multierror.Append(errs,
			fmt.Errorf("retry interval %v is negative", c.RetryInterval))
	}

	if ka := c.Keepalive; ka != nil {
		if ka.Idle < 0 || ka.Interval < 0 || ka.Count < 0 {
			errs = multierror.Append(errs,
				fmt.Errorf("keepalive values must not be negative: %+v", *ka))
		}
	}

	if errs != nil {
		errs.ErrorFormat = listFormat
	}
	return errs.ErrorOrNil()
}

// listFormat joins multiple errors into one line.
func listFormat(errs []error) string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

func (c *Config) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "remote=%v", c.Remote)
	if c.Local.IsSet() {
		fmt.Fprintf(&b, " local=%v", c.Local)
	}
	fmt.Fprintf(&b, " connect-timeout=%v interval=%v", c.ConnectTimeout, c.RetryInterval)
	if ka := c.Keepalive; ka != nil {
		fmt.Fprintf(&b, " keepalive=%v/%v/%d", ka.Idle, ka.Interval, ka.Count)
	}
	fmt.Fprintf(&b, " fastopen=%t payload=%d bufsize=%d oneshot=%t",
		c.FastOpen, len(c.Payload), c.BufferSize, c.Oneshot)

	return b.String()
}
