// SPDX-FileCopyrightText: 2026 The htrack Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package tracker

import (
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/htrack/htrack-go/pkg/endpoint"
	"github.com/htrack/htrack-go/pkg/socket"
)

type waitResult struct {
	ev  socket.Event
	err error
}

type readResult struct {
	n   int
	err error
}

// mockSocket mocks a Socket where all fields are directly editable. Scripted
// results are consumed in order.
type mockSocket struct {
	keepaliveErr error
	fastOpenErr  error
	bindErr      error
	connectErr   error

	// waits are returned by Wait. When exhausted, the requested Readable or
	// Writable events are reported as ready.
	waits []waitResult

	// errno is reported by SocketError, unless socketErr is set.
	errno     syscall.Errno
	socketErr error

	// writeLimit is the maximum number of bytes accepted by a single write;
	// zero means no limit. Every eagainEvery-th write blocks, if set. The
	// writeErrs are returned once each by the first writes.
	writeLimit  int
	eagainEvery int
	writeErr    error
	writeErrs   []error

	// local is reported by LocalEndpoint, unless localErr is set.
	local    endpoint.Endpoint
	localErr error

	// reads are returned by Read. When exhausted, Read returns zero bytes.
	reads []readResult

	calls      []string
	writes     int
	written    []byte
	waitEvents []socket.Event
	waitTimes  []time.Duration
	keepalive  []interface{}
	closed     int
}

func (m *mockSocket) record(call string) {
	m.calls = append(m.calls, call)
}

func (m *mockSocket) SetKeepAlive(idle, interval time.Duration, count int) error {
	m.record("keepalive")
	m.keepalive = []interface{}{idle, interval, count}
	return m.keepaliveErr
}

func (m *mockSocket) SetFastOpen(_ bool) error {
	m.record("fastopen")
	return m.fastOpenErr
}

func (m *mockSocket) Bind(_ endpoint.Endpoint) error {
	m.record("bind")
	return m.bindErr
}

func (m *mockSocket) Connect(_ endpoint.Endpoint) error {
	m.record("connect")
	return m.connectErr
}

func (m *mockSocket) Wait(events socket.Event, timeout time.Duration) (socket.Event, error) {
	m.record("wait")
	m.waitEvents = append(m.waitEvents, events)
	m.waitTimes = append(m.waitTimes, timeout)

	if len(m.waits) == 0 {
		return events & (socket.Readable | socket.Writable), nil
	}

	w := m.waits[0]
	m.waits = m.waits[1:]
	return w.ev, w.err
}

func (m *mockSocket) SocketError() (syscall.Errno, error) {
	m.record("getsockopt")
	return m.errno, m.socketErr
}

func (m *mockSocket) Write(p []byte) (int, error) {
	m.record("write")
	m.writes++

	if m.writeErr != nil {
		return 0, m.writeErr
	}
	if len(m.writeErrs) > 0 {
		err := m.writeErrs[0]
		m.writeErrs = m.writeErrs[1:]
		return 0, err
	}
	if m.eagainEvery > 0 && m.writes%m.eagainEvery == 0 {
		return 0, os.NewSyscallError("send", syscall.EAGAIN)
	}

	n := len(p)
	if m.writeLimit > 0 && n > m.writeLimit {
		n = m.writeLimit
	}
	m.written = append(m.written, p[:n]...)
	return n, nil
}

func (m *mockSocket) Read(p []byte) (int, error) {
	m.record("read")

	if len(m.reads) == 0 {
		return 0, nil
	}

	r := m.reads[0]
	m.reads = m.reads[1:]
	if r.n > len(p) {
		panic(fmt.Sprintf("mockSocket: read of %d bytes exceeds buffer of %d", r.n, len(p)))
	}
	return r.n, r.err
}

func (m *mockSocket) Close() error {
	m.record("close")
	m.closed++
	return nil
}

func (m *mockSocket) LocalEndpoint() (endpoint.Endpoint, error) {
	m.record("getsockname")
	return m.local, m.localErr
}

// mockOpener hands out the given sockets in order and fails afterwards with
// errExhausted.
type mockOpener struct {
	sockets  []*mockSocket
	opened   int
	families []endpoint.Family
	err      error
	log      *[]string
}

var errExhausted = fmt.Errorf("mockOpener: no sockets left")

func (mo *mockOpener) open(family endpoint.Family) (Socket, error) {
	if mo.log != nil {
		*mo.log = append(*mo.log, "open")
	}

	mo.families = append(mo.families, family)

	if mo.err != nil {
		return nil, mo.err
	}
	if mo.opened >= len(mo.sockets) {
		return nil, errExhausted
	}

	s := mo.sockets[mo.opened]
	mo.opened++
	return s, nil
}
