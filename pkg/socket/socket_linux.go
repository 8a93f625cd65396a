// SPDX-FileCopyrightText: 2026 The htrack Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

//go:build linux
// +build linux

package socket

import (
	"fmt"
	"math"
	"net/netip"
	"os"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sys/unix"

	"github.com/htrack/htrack-go/pkg/endpoint"
)

// The socket options are based on the Linux tcp(7) manual page.
// <https://man7.org/linux/man-pages/man7/tcp.7.html>

// Socket is a non-blocking TCP socket. A Socket must only be used by one
// goroutine at a time.
type Socket struct {
	fd     int
	family endpoint.Family
}

// Open a new non-blocking TCP socket for the given address family.
func Open(family endpoint.Family) (*Socket, error) {
	var domain int
	switch family {
	case endpoint.IPv4:
		domain = unix.AF_INET
	case endpoint.IPv6:
		domain = unix.AF_INET6
	default:
		return nil, os.NewSyscallError("socket", unix.EAFNOSUPPORT)
	}

	fd, err := unix.Socket(domain, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, unix.IPPROTO_TCP)
	if err != nil {
		return nil, os.NewSyscallError("socket", err)
	}

	return &Socket{fd: fd, family: family}, nil
}

// SetKeepAlive enables SO_KEEPALIVE and sets TCP_KEEPIDLE, TCP_KEEPINTVL and
// TCP_KEEPCNT for each positive value. Durations are rounded up to seconds.
// All failing options are reported together.
func (s *Socket) SetKeepAlive(idle, interval time.Duration, count int) error {
	if err := unix.SetsockoptInt(s.fd, unix.SOL_SOCKET, unix.SO_KEEPALIVE, 1); err != nil {
		return os.NewSyscallError("setsockopt SO_KEEPALIVE", err)
	}

	opts := []struct {
		name  string
		opt   int
		value int
	}{
		{"TCP_KEEPIDLE", unix.TCP_KEEPIDLE, seconds(idle)},
		{"TCP_KEEPINTVL", unix.TCP_KEEPINTVL, seconds(interval)},
		{"TCP_KEEPCNT", unix.TCP_KEEPCNT, count},
	}

	var errs error
	for _, opt := range opts {
		if opt.value <= 0 {
			continue
		}

		if err := unix.SetsockoptInt(s.fd, unix.IPPROTO_TCP, opt.opt, opt.value); err != nil {
			errs = multierror.Append(errs, os.NewSyscallError("setsockopt "+opt.name, err))
		}
	}

	return errs
}

// SetFastOpen sets TCP_FASTOPEN.
func (s *Socket) SetFastOpen(enable bool) error {
	value := 0
	if enable {
		value = 1
	}

	if err := unix.SetsockoptInt(s.fd, unix.IPPROTO_TCP, unix.TCP_FASTOPEN, value); err != nil {
		return os.NewSyscallError("setsockopt TCP_FASTOPEN", err)
	}
	return nil
}

// Bind the Socket to a local endpoint.
func (s *Socket) Bind(local endpoint.Endpoint) error {
	sa, err := s.sockaddr(local)
	if err != nil {
		return os.NewSyscallError("bind", err)
	}

	if err := unix.Bind(s.fd, sa); err != nil {
		return os.NewSyscallError("bind", err)
	}
	return nil
}

// Connect issues a non-blocking connect. Usually this returns an error
// wrapping EINPROGRESS; the outcome must be awaited by Wait and inspected by
// SocketError.
func (s *Socket) Connect(remote endpoint.Endpoint) error {
	sa, err := s.sockaddr(remote)
	if err != nil {
		return os.NewSyscallError("connect", err)
	}

	if err := unix.Connect(s.fd, sa); err != nil {
		return os.NewSyscallError("connect", err)
	}
	return nil
}

// Wait until one of the requested events occurs or the timeout expires. A
// negative timeout waits forever. On a timeout, zero events are returned.
// Error and HangUp might always be returned. Interrupted polls are resumed.
func (s *Socket) Wait(events Event, timeout time.Duration) (Event, error) {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	fds := []unix.PollFd{{Fd: int32(s.fd), Events: toPoll(events)}}

	for {
		n, err := unix.Poll(fds, milliseconds(timeout))
		switch {
		case err != nil && err != unix.EINTR:
			return 0, os.NewSyscallError("poll", err)

		case err == nil && n > 0:
			return fromPoll(fds[0].Revents), nil

		case timeout == 0:
			return 0, nil
		}

		// Interrupted or, for timeouts beyond poll's range, expired early.
		if timeout > 0 {
			if timeout = time.Until(deadline); timeout <= 0 {
				return 0, nil
			}
		}
	}
}

// SocketError reads and clears the pending error by SO_ERROR. An errno of
// zero indicates no error.
func (s *Socket) SocketError() (syscall.Errno, error) {
	v, err := unix.GetsockoptInt(s.fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		return 0, os.NewSyscallError("getsockopt", err)
	}
	return syscall.Errno(v), nil
}

// Write sends data without raising SIGPIPE. This might be a partial write.
func (s *Socket) Write(p []byte) (int, error) {
	n, err := unix.SendmsgN(s.fd, p, nil, nil, unix.MSG_NOSIGNAL)
	if err != nil {
		return 0, os.NewSyscallError("send", err)
	}
	return n, nil
}

// Read into p. Zero bytes without an error indicate a closed peer.
func (s *Socket) Read(p []byte) (int, error) {
	n, err := unix.Read(s.fd, p)
	if err != nil {
		return 0, os.NewSyscallError("read", err)
	}
	return n, nil
}

// Close the descriptor.
func (s *Socket) Close() error {
	if err := unix.Close(s.fd); err != nil {
		return os.NewSyscallError("close", err)
	}
	return nil
}

// LocalEndpoint returns the bound local address.
func (s *Socket) LocalEndpoint() (endpoint.Endpoint, error) {
	sa, err := unix.Getsockname(s.fd)
	if err != nil {
		return endpoint.Endpoint{}, os.NewSyscallError("getsockname", err)
	}
	return fromSockaddr(sa)
}

func (s *Socket) String() string {
	return fmt.Sprintf("tcp/%v(fd=%d)", s.family, s.fd)
}

// sockaddr converts an Endpoint of this Socket's family.
func (s *Socket) sockaddr(e endpoint.Endpoint) (unix.Sockaddr, error) {
	if e.Family() != s.family {
		return nil, unix.EAFNOSUPPORT
	}

	switch s.family {
	case endpoint.IPv4:
		return &unix.SockaddrInet4{Port: int(e.Port()), Addr: e.Addr().As4()}, nil
	default:
		return &unix.SockaddrInet6{Port: int(e.Port()), Addr: e.Addr().As16()}, nil
	}
}

func fromSockaddr(sa unix.Sockaddr) (endpoint.Endpoint, error) {
	switch sa := sa.(type) {
	case *unix.SockaddrInet4:
		return endpoint.New(netip.AddrFrom4(sa.Addr), uint16(sa.Port))
	case *unix.SockaddrInet6:
		return endpoint.New(netip.AddrFrom16(sa.Addr), uint16(sa.Port))
	default:
		return endpoint.Endpoint{}, fmt.Errorf("unsupported socket address %T", sa)
	}
}

var pollEvents = []struct {
	ev   Event
	poll int16
}{
	{Readable, unix.POLLIN},
	{Writable, unix.POLLOUT},
	{Error, unix.POLLERR},
	{HangUp, unix.POLLHUP},
	{PeerHangUp, unix.POLLRDHUP},
}

func toPoll(events Event) (p int16) {
	for _, pe := range pollEvents {
		if events.Has(pe.ev) {
			p |= pe.poll
		}
	}
	return
}

func fromPoll(p int16) (events Event) {
	for _, pe := range pollEvents {
		if p&pe.poll != 0 {
			events |= pe.ev
		}
	}
	return
}

// maxPollTimeout is the longest poll in milliseconds.
var maxPollTimeout = math.MaxInt32

// milliseconds converts a poll timeout, rounding up. Longer timeouts are
// capped to poll's maximum.
func milliseconds(d time.Duration) int {
	switch {
	case d < 0:
		return -1
	case d == 0:
		return 0
	}

	ms := d / time.Millisecond
	if d%time.Millisecond != 0 {
		ms++
	}
	if ms > time.Duration(maxPollTimeout) {
		return maxPollTimeout
	}
	return int(ms)
}

// seconds converts a socket option value, rounding up.
func seconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}

	secs := d / time.Second
	if d%time.Second != 0 {
		secs++
	}
	if secs > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(secs)
}
