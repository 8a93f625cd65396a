// SPDX-FileCopyrightText: 2026 The htrack Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

//go:build !linux
// +build !linux

package socket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/htrack/htrack-go/pkg/endpoint"
)

func TestUnsupported(t *testing.T) {
	_, err := Open(endpoint.IPv4)
	assert.Equal(t, ErrUnsupported, err)

	s := &Socket{}
	_, err = s.Wait(Readable, time.Second)
	assert.Equal(t, ErrUnsupported, err)
	assert.NoError(t, s.Close())
}
