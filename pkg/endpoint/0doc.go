// SPDX-FileCopyrightText: 2026 The htrack Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package endpoint describes the TCP endpoints htrack connects from and to.
//
// An Endpoint is either unset, an IPv4 address with a port or an IPv6 address
// with a port. Only literal addresses are accepted; there is no name
// resolution. Compatible checks whether a local bind endpoint can be used
// together with a remote endpoint.
package endpoint
