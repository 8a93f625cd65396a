// SPDX-FileCopyrightText: 2026 The htrack Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package tracker

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/htrack/htrack-go/pkg/config"
	"github.com/htrack/htrack-go/pkg/socket"
)

// State of an Attempt.
type State uint

const (
	// Init is the State before any socket exists.
	Init State = iota

	// Open is a created socket with its options set.
	Open

	// Bound is an Open socket bound to the local endpoint.
	Bound

	// Connecting is a socket with an issued, but not yet completed handshake.
	Connecting

	// Verified is an established connection.
	Verified

	// Failed is a final State of an unsuccessful Attempt.
	Failed
)

func (s State) String() string {
	switch s {
	case Init:
		return "init"
	case Open:
		return "open"
	case Bound:
		return "bound"
	case Connecting:
		return "connecting"
	case Verified:
		return "verified"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrConnectTimeout is returned if the handshake did not complete within
// the connect timeout.
var ErrConnectTimeout error = &os.SyscallError{Syscall: "poll", Err: syscall.ETIMEDOUT}

// Attempt establishes one connection. An Attempt must only be run once.
type Attempt struct {
	conf  *config.Config
	open  Opener
	sock  Socket
	state State
}

// NewAttempt for the given Config, using open to create its socket.
func NewAttempt(conf *config.Config, open Opener) *Attempt {
	return &Attempt{
		conf:  conf,
		open:  open,
		state: Init,
	}
}

// State of this Attempt.
func (a *Attempt) State() State {
	return a.state
}

func (a *Attempt) transit(s State) {
	log.WithFields(log.Fields{
		"remote": a.conf.Remote,
		"from":   a.state,
		"to":     s,
	}).Trace("Attempt changes state")

	a.state = s
}

// fail this Attempt, closing an existing socket.
func (a *Attempt) fail(err error) (Socket, error) {
	a.transit(Failed)

	if a.sock != nil {
		if closeErr := a.sock.Close(); closeErr != nil {
			log.WithError(closeErr).Debug("Closing failed attempt's socket errored")
		}
		a.sock = nil
	}

	return nil, err
}

// Run this Attempt. On success, the Attempt is Verified and the connected
// Socket is returned; its ownership passes to the caller. Otherwise the
// Attempt has Failed and its socket is already closed.
func (a *Attempt) Run() (Socket, error) {
	if a.state != Init {
		return nil, fmt.Errorf("attempt was already run, state %v", a.state)
	}

	sock, err := a.open(a.conf.Remote.Family())
	if err != nil {
		return a.fail(err)
	}
	a.sock = sock
	a.transit(Open)

	a.setOptions()

	if a.conf.Local.IsSet() {
		if err := a.sock.Bind(a.conf.Local); err != nil {
			return a.fail(err)
		}
		a.transit(Bound)
	}

	// A non-blocking connect is expected to be still in progress.
	if err := a.sock.Connect(a.conf.Remote); err != nil && !errors.Is(err, syscall.EINPROGRESS) {
		return a.fail(err)
	}
	a.transit(Connecting)

	ev, err := a.sock.Wait(socket.Writable, a.conf.ConnectTimeout)
	if err != nil {
		return a.fail(err)
	}
	if ev == 0 {
		return a.fail(ErrConnectTimeout)
	}

	// Readiness alone does not imply success, e.g., for a refused connection.
	errno, err := a.sock.SocketError()
	if err != nil {
		return a.fail(err)
	}
	if errno != 0 {
		return a.fail(os.NewSyscallError("connect", errno))
	}
	if !ev.Has(socket.Writable) {
		return a.fail(fmt.Errorf("connect: socket is not writable, events %v", ev))
	}

	a.transit(Verified)

	sock, a.sock = a.sock, nil
	return sock, nil
}

// setOptions applies keepalive and fast open. Failures are only logged.
func (a *Attempt) setOptions() {
	if ka := a.conf.Keepalive; ka != nil {
		if err := a.sock.SetKeepAlive(ka.Idle, ka.Interval, ka.Count); err != nil {
			log.WithFields(log.Fields{
				"remote": a.conf.Remote,
				"error":  err,
			}).Warn("couldn't setup keepalive")
		}
	}

	if a.conf.FastOpen {
		if err := a.sock.SetFastOpen(true); err != nil {
			log.WithFields(log.Fields{
				"remote": a.conf.Remote,
				"error":  err,
			}).Warn("couldn't setup fastopen")
		}
	}
}
