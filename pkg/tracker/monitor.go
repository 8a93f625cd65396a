// SPDX-FileCopyrightText: 2026 The htrack Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package tracker

import (
	"github.com/htrack/htrack-go/pkg/socket"
)

// Closure describes how a monitored connection ended.
type Closure struct {
	// HangUp is true if the close was signaled by a hang-up event instead of a
	// zero-length read.
	HangUp bool

	// Cause is the pending socket error at a hang-up, e.g., a reset by the
	// peer. It is nil for graceful closes.
	Cause error

	// Bytes received and discarded while monitoring.
	Bytes int64

	// Reads is the number of read calls.
	Reads int
}

// Monitor blocks until the peer closes the connection. Received data is read
// into buf and discarded; it does not end monitoring. The connection counts
// as closed after a zero-length read, a hang-up or a shutdown of the peer's
// writing side. Data still pending at a clean hang-up is drained first, while
// a hang-up with a pending socket error, e.g., a reset, ends monitoring at
// once and leaves unread data behind. A failing read or poll is returned as
// an error.
func Monitor(sock Socket, buf []byte) (c Closure, err error) {
	for {
		ev, waitErr := sock.Wait(socket.Readable|socket.PeerHangUp, -1)
		if waitErr != nil {
			err = waitErr
			return
		}

		switch {
		case ev.Has(socket.HangUp) && (ev.Has(socket.Error) || !ev.Has(socket.Readable)):
			c.HangUp = true
			if errno, soErr := sock.SocketError(); soErr == nil && errno != 0 {
				c.Cause = errno
			}
			return

		case ev.Has(socket.Readable | socket.Error):
			if ev.Has(socket.HangUp) {
				c.HangUp = true
			}

			n, readErr := sock.Read(buf)
			c.Reads++

			switch {
			case readErr != nil && temporary(readErr):
				continue
			case readErr != nil:
				err = readErr
				return
			case n == 0:
				return
			}

			c.Bytes += int64(n)

		case ev.Has(socket.PeerHangUp):
			c.HangUp = true
			return
		}
	}
}
