// SPDX-FileCopyrightText: 2026 The htrack Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package tracker

import (
	"github.com/htrack/htrack-go/pkg/socket"
)

// SendAll writes the whole payload to the Socket, continuing after partial
// writes. If the socket's buffer is full, SendAll polls for writability and
// retries. The number of sent bytes is returned, which equals the payload's
// length for a nil error. An empty payload results in no write at all.
func SendAll(sock Socket, payload []byte) (sent int, err error) {
	for sent < len(payload) {
		n, writeErr := sock.Write(payload[sent:])
		switch {
		case writeErr != nil && !temporary(writeErr):
			err = writeErr
			return

		case writeErr != nil || n == 0:
			if _, err = sock.Wait(socket.Writable, -1); err != nil {
				return
			}

		default:
			sent += n
		}
	}

	return
}
