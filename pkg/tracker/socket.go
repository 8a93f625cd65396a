// SPDX-FileCopyrightText: 2026 The htrack Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package tracker

import (
	"errors"
	"syscall"
	"time"

	"github.com/htrack/htrack-go/pkg/endpoint"
	"github.com/htrack/htrack-go/pkg/socket"
)

// Socket is a non-blocking TCP socket, as implemented by socket.Socket.
type Socket interface {
	SetKeepAlive(idle, interval time.Duration, count int) error
	SetFastOpen(enable bool) error

	Bind(local endpoint.Endpoint) error
	Connect(remote endpoint.Endpoint) error
	Wait(events socket.Event, timeout time.Duration) (socket.Event, error)
	SocketError() (syscall.Errno, error)

	Write(p []byte) (int, error)
	Read(p []byte) (int, error)
	Close() error

	LocalEndpoint() (endpoint.Endpoint, error)
}

// Opener creates a new Socket for an address family.
type Opener func(family endpoint.Family) (Socket, error)

// OpenSocket is the default Opener, creating a socket.Socket.
func OpenSocket(family endpoint.Family) (Socket, error) {
	s, err := socket.Open(family)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// temporary reports errors which should just be retried on a non-blocking
// socket.
func temporary(err error) bool {
	return errors.Is(err, syscall.EAGAIN) ||
		errors.Is(err, syscall.EWOULDBLOCK) ||
		errors.Is(err, syscall.EINTR)
}
