// SPDX-FileCopyrightText: 2026 The htrack Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package socket

import (
	"errors"
	"strings"
)

// ErrUnsupported is returned on platforms without a socket implementation.
var ErrUnsupported = errors.New("socket: unsupported platform")

// Event is a set of readiness conditions, both requested from and reported
// by Wait.
type Event uint16

const (
	// Readable signals available data or a closed read side.
	Readable Event = 1 << iota

	// Writable signals free buffer space or a completed handshake.
	Writable

	// Error signals a pending socket error. It is always reported.
	Error

	// HangUp signals that both directions are shut down. It is always
	// reported.
	HangUp

	// PeerHangUp signals that the peer closed its writing side.
	PeerHangUp
)

var eventNames = []struct {
	ev   Event
	name string
}{
	{Readable, "readable"},
	{Writable, "writable"},
	{Error, "error"},
	{HangUp, "hangup"},
	{PeerHangUp, "peer-hangup"},
}

// Has reports whether any of the events in o are set.
func (e Event) Has(o Event) bool {
	return e&o != 0
}

func (e Event) String() string {
	if e == 0 {
		return "none"
	}

	var names []string
	for _, n := range eventNames {
		if e.Has(n.ev) {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, "|")
}
