// SPDX-FileCopyrightText: 2026 The htrack Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package socket wraps a non-blocking TCP socket descriptor.
//
// In contrast to a net.Conn, each step of establishing a connection is exposed
// on its own: Open creates the descriptor, Connect only issues the handshake,
// Wait polls for readiness and SocketError inspects the outcome. This allows
// the caller to tell apart a timed out handshake from a refused one and to
// observe a peer's hang-up without reading.
//
// The implementation is based on golang.org/x/sys/unix and is only available
// on Linux. On other platforms Open fails with ErrUnsupported.
package socket
