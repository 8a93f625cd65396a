// SPDX-FileCopyrightText: 2026 The htrack Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

//go:build !linux
// +build !linux

package socket

import (
	"syscall"
	"time"

	"github.com/htrack/htrack-go/pkg/endpoint"
)

// This file implements a Socket for operating systems next to Linux. Every
// operation fails with ErrUnsupported, so the tracker reports the platform
// instead of probing.

// Socket is not available on this platform.
type Socket struct{}

// Open always fails with ErrUnsupported.
func Open(endpoint.Family) (*Socket, error) {
	return nil, ErrUnsupported
}

// SetKeepAlive is unsupported.
func (*Socket) SetKeepAlive(_, _ time.Duration, _ int) error { return ErrUnsupported }

// SetFastOpen is unsupported.
func (*Socket) SetFastOpen(bool) error { return ErrUnsupported }

// Bind is unsupported.
func (*Socket) Bind(endpoint.Endpoint) error { return ErrUnsupported }

// Connect is unsupported.
func (*Socket) Connect(endpoint.Endpoint) error { return ErrUnsupported }

// Wait is unsupported.
func (*Socket) Wait(Event, time.Duration) (Event, error) { return 0, ErrUnsupported }

// SocketError is unsupported.
func (*Socket) SocketError() (syscall.Errno, error) { return 0, ErrUnsupported }

// Write is unsupported.
func (*Socket) Write([]byte) (int, error) { return 0, ErrUnsupported }

// Read is unsupported.
func (*Socket) Read([]byte) (int, error) { return 0, ErrUnsupported }

// Close does nothing, as no descriptor exists.
func (*Socket) Close() error { return nil }

// LocalEndpoint is unsupported.
func (*Socket) LocalEndpoint() (endpoint.Endpoint, error) {
	return endpoint.Endpoint{}, ErrUnsupported
}
