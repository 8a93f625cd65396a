// SPDX-FileCopyrightText: 2026 The htrack Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package tracker repeatedly connects to a remote TCP endpoint and watches
// each connection until it is closed by the peer or by a network element on
// the path.
//
// A cycle consists of an Attempt, establishing the connection by a
// non-blocking connect, sending the optional payload and monitoring the
// connection until it is closed. A Tracker runs cycles until an error occurs,
// sleeping a fixed interval between two of them. In oneshot mode the Tracker
// returns after the first established connection.
//
// Graceful closes and hang-ups end a cycle; every other failure is returned
// and is never retried.
package tracker
