// SPDX-FileCopyrightText: 2026 The htrack Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package endpoint

import (
	"fmt"
	"net/netip"
)

// Family of an Endpoint's address.
type Family uint8

const (
	// Unset is the Family of an empty Endpoint.
	Unset Family = iota

	// IPv4 addresses, AF_INET.
	IPv4

	// IPv6 addresses, AF_INET6.
	IPv6
)

func (f Family) String() string {
	switch f {
	case Unset:
		return "unset"
	case IPv4:
		return "IPv4"
	case IPv6:
		return "IPv6"
	default:
		return "unknown"
	}
}

// Endpoint is an IP address together with a TCP port. The zero value is an
// unset Endpoint.
type Endpoint struct {
	addr netip.Addr
	port uint16
}

// New creates an Endpoint for a valid address. Zoned IPv6 addresses are
// rejected.
func New(addr netip.Addr, port uint16) (Endpoint, error) {
	if !addr.IsValid() {
		return Endpoint{}, fmt.Errorf("invalid address")
	}
	if addr.Zone() != "" {
		return Endpoint{}, fmt.Errorf("address %v has a zone", addr)
	}

	return Endpoint{addr: addr, port: port}, nil
}

// Parse an IPv4 or IPv6 literal into an Endpoint with the given port.
// IPv4-mapped IPv6 literals like "::ffff:192.0.2.1" stay IPv6.
func Parse(text string, port uint16) (Endpoint, error) {
	addr, err := netip.ParseAddr(text)
	if err != nil {
		return Endpoint{}, err
	}

	return New(addr, port)
}

// MustParse is like Parse, but panics on an error.
func MustParse(text string, port uint16) Endpoint {
	e, err := Parse(text, port)
	if err != nil {
		panic(err)
	}
	return e
}

// Family of this Endpoint's address or Unset.
func (e Endpoint) Family() Family {
	switch {
	case !e.addr.IsValid():
		return Unset
	case e.addr.Is4():
		return IPv4
	default:
		return IPv6
	}
}

// IsSet reports whether this Endpoint carries an address.
func (e Endpoint) IsSet() bool {
	return e.Family() != Unset
}

// Addr returns the address, which is invalid for an unset Endpoint.
func (e Endpoint) Addr() netip.Addr {
	return e.addr
}

// Port returns the TCP port.
func (e Endpoint) Port() uint16 {
	return e.port
}

// AddrPort converts this Endpoint into a netip.AddrPort.
func (e Endpoint) AddrPort() netip.AddrPort {
	return netip.AddrPortFrom(e.addr, e.port)
}

func (e Endpoint) String() string {
	if !e.IsSet() {
		return "unset"
	}
	return e.AddrPort().String()
}

// Compatible reports whether local can be bound while connecting to remote.
// This holds for an unset local Endpoint or one of remote's Family.
func Compatible(local, remote Endpoint) bool {
	return !local.IsSet() || local.Family() == remote.Family()
}

