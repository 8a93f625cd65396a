// SPDX-FileCopyrightText: 2026 The htrack Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

//go:build linux
// +build linux

package socket

import (
	"errors"
	"io"
	"net"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/htrack/htrack-go/pkg/endpoint"
)

func listen(t *testing.T) (*net.TCPListener, endpoint.Endpoint) {
	t.Helper()

	l, err := net.ListenTCP("tcp4", &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	port := uint16(l.Addr().(*net.TCPAddr).Port)
	return l, endpoint.MustParse("127.0.0.1", port)
}

// connect a new Socket and await the handshake.
func connect(t *testing.T, remote endpoint.Endpoint) *Socket {
	t.Helper()

	s, err := Open(remote.Family())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	if err := s.Connect(remote); err != nil {
		require.True(t, errors.Is(err, syscall.EINPROGRESS), err)
	}

	ev, err := s.Wait(Writable, 2*time.Second)
	require.NoError(t, err)
	require.True(t, ev.Has(Writable), ev)

	errno, err := s.SocketError()
	require.NoError(t, err)
	require.Zero(t, errno)

	return s
}

func TestOpenUnset(t *testing.T) {
	_, err := Open(endpoint.Unset)
	require.Error(t, err)
	assert.True(t, errors.Is(err, syscall.EAFNOSUPPORT))
	assert.Contains(t, err.Error(), "socket: ")
}

func TestOpenNonBlocking(t *testing.T) {
	s, err := Open(endpoint.IPv4)
	require.NoError(t, err)
	defer s.Close()

	flags, err := unix.FcntlInt(uintptr(s.fd), unix.F_GETFL, 0)
	require.NoError(t, err)
	assert.NotZero(t, flags&unix.O_NONBLOCK)
}

func TestSetKeepAlive(t *testing.T) {
	s, err := Open(endpoint.IPv4)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SetKeepAlive(1500*time.Millisecond, 7*time.Second, 4))

	for opt, expected := range map[int]int{
		unix.TCP_KEEPIDLE:  2,
		unix.TCP_KEEPINTVL: 7,
		unix.TCP_KEEPCNT:   4,
	} {
		v, err := unix.GetsockoptInt(s.fd, unix.IPPROTO_TCP, opt)
		require.NoError(t, err)
		assert.Equal(t, expected, v)
	}

	v, err := unix.GetsockoptInt(s.fd, unix.SOL_SOCKET, unix.SO_KEEPALIVE)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestSetKeepAliveSkipsZero(t *testing.T) {
	s, err := Open(endpoint.IPv4)
	require.NoError(t, err)
	defer s.Close()

	before, err := unix.GetsockoptInt(s.fd, unix.IPPROTO_TCP, unix.TCP_KEEPCNT)
	require.NoError(t, err)

	require.NoError(t, s.SetKeepAlive(0, 0, 0))

	after, err := unix.GetsockoptInt(s.fd, unix.IPPROTO_TCP, unix.TCP_KEEPCNT)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestConnectExchangeClose(t *testing.T) {
	l, remote := listen(t)

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := l.Accept()
		if err != nil {
			close(accepted)
			return
		}
		accepted <- conn
	}()

	s := connect(t, remote)

	peer, ok := <-accepted
	require.True(t, ok)
	defer peer.Close()

	lep, err := s.LocalEndpoint()
	require.NoError(t, err)
	assert.Equal(t, endpoint.IPv4, lep.Family())
	assert.Equal(t, lep.Port(), uint16(peer.RemoteAddr().(*net.TCPAddr).Port))

	n, err := s.Write([]byte("hello"))
	require.NoError(t, err)
	require.Equal(t, 5, n)

	buf := make([]byte, 5)
	_, err = io.ReadFull(peer, buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf))

	// Nothing to read yet.
	ev, err := s.Wait(Readable, 50*time.Millisecond)
	require.NoError(t, err)
	assert.Zero(t, ev)

	_, err = peer.Write([]byte("world"))
	require.NoError(t, err)
	require.NoError(t, peer.Close())

	ev, err = s.Wait(Readable|PeerHangUp, 2*time.Second)
	require.NoError(t, err)
	require.True(t, ev.Has(Readable), ev)

	n, err = s.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "world", string(buf[:n]))

	ev, err = s.Wait(Readable|PeerHangUp, 2*time.Second)
	require.NoError(t, err)
	assert.True(t, ev.Has(Readable|PeerHangUp), ev)

	n, err = s.Read(buf)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestConnectRefused(t *testing.T) {
	l, remote := listen(t)
	require.NoError(t, l.Close())

	s, err := Open(endpoint.IPv4)
	require.NoError(t, err)
	defer s.Close()

	err = s.Connect(remote)
	if err != nil && !errors.Is(err, syscall.EINPROGRESS) {
		assert.True(t, errors.Is(err, syscall.ECONNREFUSED), err)
		return
	}

	ev, err := s.Wait(Writable, 2*time.Second)
	require.NoError(t, err)
	require.NotZero(t, ev)

	errno, err := s.SocketError()
	require.NoError(t, err)
	assert.Equal(t, syscall.ECONNREFUSED, errno)
}

func TestBind(t *testing.T) {
	l, remote := listen(t)
	go func() {
		if conn, err := l.Accept(); err == nil {
			_ = conn.Close()
		}
	}()

	s, err := Open(endpoint.IPv4)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Bind(endpoint.MustParse("127.0.0.1", 0)))

	lep, err := s.LocalEndpoint()
	require.NoError(t, err)
	assert.Equal(t, endpoint.MustParse("127.0.0.1", 0).Addr(), lep.Addr())
	assert.NotZero(t, lep.Port())

	if err := s.Connect(remote); err != nil {
		require.True(t, errors.Is(err, syscall.EINPROGRESS), err)
	}
}

func TestBindWrongFamily(t *testing.T) {
	s, err := Open(endpoint.IPv4)
	require.NoError(t, err)
	defer s.Close()

	err = s.Bind(endpoint.MustParse("::1", 0))
	require.Error(t, err)
	assert.True(t, errors.Is(err, syscall.EAFNOSUPPORT))
	assert.Contains(t, err.Error(), "bind: ")
}

func TestWaitTimeout(t *testing.T) {
	_, remote := listen(t)
	s := connect(t, remote)

	const timeout = 50 * time.Millisecond
	start := time.Now()

	ev, err := s.Wait(Readable, timeout)
	require.NoError(t, err)
	assert.Zero(t, ev)
	assert.GreaterOrEqual(t, time.Since(start), timeout)
}

func TestWaitBeyondPollRange(t *testing.T) {
	defer func(max int) { maxPollTimeout = max }(maxPollTimeout)
	maxPollTimeout = 10

	_, remote := listen(t)
	s := connect(t, remote)

	const timeout = 100 * time.Millisecond
	start := time.Now()

	ev, err := s.Wait(Readable, timeout)
	require.NoError(t, err)
	assert.Zero(t, ev)
	assert.GreaterOrEqual(t, time.Since(start), timeout)
}

func TestWaitResumesAfterSignal(t *testing.T) {
	_, remote := listen(t)
	s := connect(t, remote)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGUSR1)
	defer signal.Stop(sigs)

	// The signal must hit the thread blocked in poll.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	pid, tid := unix.Getpid(), unix.Gettid()

	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = unix.Tgkill(pid, tid, syscall.SIGUSR1)
	}()

	const timeout = 300 * time.Millisecond
	start := time.Now()

	ev, err := s.Wait(Readable, timeout)
	require.NoError(t, err)
	assert.Zero(t, ev)
	assert.GreaterOrEqual(t, time.Since(start), timeout)

	select {
	case <-sigs:
	case <-time.After(time.Second):
		t.Fatal("SIGUSR1 was not delivered")
	}
}

func TestMilliseconds(t *testing.T) {
	assert.Equal(t, -1, milliseconds(-time.Second))
	assert.Equal(t, 0, milliseconds(0))
	assert.Equal(t, 1, milliseconds(time.Microsecond))
	assert.Equal(t, 1500, milliseconds(1500*time.Millisecond))
	assert.Equal(t, 1<<31-1, milliseconds(1<<62))
}

func TestSeconds(t *testing.T) {
	assert.Equal(t, 0, seconds(-time.Second))
	assert.Equal(t, 0, seconds(0))
	assert.Equal(t, 1, seconds(time.Millisecond))
	assert.Equal(t, 5, seconds(5*time.Second))
	assert.Equal(t, 6, seconds(5*time.Second+time.Nanosecond))
}
