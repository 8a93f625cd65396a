// SPDX-FileCopyrightText: 2026 The htrack Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package tracker

import (
	"time"

	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"

	"github.com/htrack/htrack-go/pkg/config"
)

// Tracker runs connection cycles against one remote endpoint.
type Tracker struct {
	conf  *config.Config
	open  Opener
	sleep func(time.Duration)
	now   func() time.Time

	// buf is the scratch buffer for received data, shared by all cycles.
	buf    []byte
	cycles uint64
}

// Option to alter a Tracker, mostly for testing purpose.
type Option func(*Tracker)

// WithOpener replaces OpenSocket.
func WithOpener(open Opener) Option {
	return func(t *Tracker) { t.open = open }
}

// WithSleep replaces time.Sleep between two cycles.
func WithSleep(sleep func(time.Duration)) Option {
	return func(t *Tracker) { t.sleep = sleep }
}

// WithClock replaces time.Now, used to measure connection durations.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// NewTracker for a validated Config. The Config must not be altered
// afterwards.
func NewTracker(conf *config.Config, opts ...Option) (*Tracker, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	t := &Tracker{
		conf:  conf,
		open:  OpenSocket,
		sleep: time.Sleep,
		now:   time.Now,
		buf:   make([]byte, conf.BufferSize),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t, nil
}

// Cycles returns the number of started cycles.
func (t *Tracker) Cycles() uint64 {
	return t.cycles
}

// Run cycles until an error occurs, which is returned. A closed connection
// is followed by the retry interval before the next cycle starts. In oneshot
// mode Run returns nil after the first established connection.
func (t *Tracker) Run() error {
	for {
		if err := t.Cycle(); err != nil {
			return err
		}

		if t.conf.Oneshot {
			return nil
		}

		log.WithFields(log.Fields{
			"remote":   t.conf.Remote,
			"interval": t.conf.RetryInterval,
		}).Debug("Sleeping before next cycle")

		t.sleep(t.conf.RetryInterval)
	}
}

// Cycle performs one connection and, unless in oneshot mode, monitors it
// until it is closed. A nil error is returned for a closed connection.
func (t *Tracker) Cycle() (err error) {
	t.cycles++

	logger := log.WithFields(log.Fields{
		"remote": t.conf.Remote,
		"cycle":  t.cycles,
	})

	attempt := NewAttempt(t.conf, t.open)
	sock, err := attempt.Run()
	if err != nil {
		logger.WithError(err).Debug("Connection attempt failed")
		return
	}

	connected := t.now()
	if local, localErr := sock.LocalEndpoint(); localErr == nil {
		logger = logger.WithField("local", local)
	}
	logger.Info("Connected")

	defer func() {
		if closeErr := sock.Close(); closeErr != nil {
			logger.WithError(closeErr).Warn("Closing socket errored")
		}
	}()

	if len(t.conf.Payload) > 0 {
		sent, sendErr := SendAll(sock, t.conf.Payload)
		if sendErr != nil {
			logger.WithFields(log.Fields{
				"sent":  sent,
				"error": sendErr,
			}).Debug("Sending payload failed")

			err = sendErr
			return
		}

		logger.WithField("payload", humanize.Bytes(uint64(sent))).Debug("Sent payload")
	}

	if t.conf.Oneshot {
		return
	}

	closure, err := Monitor(sock, t.buf)
	if err != nil {
		logger.WithError(err).Debug("Monitoring failed")
		return
	}

	fields := log.Fields{
		"duration": t.now().Sub(connected).Round(time.Millisecond),
		"received": humanize.Bytes(uint64(closure.Bytes)),
		"reads":    closure.Reads,
		"hangup":   closure.HangUp,
	}
	if closure.Cause != nil {
		fields["cause"] = closure.Cause
	}
	logger.WithFields(fields).Info("Connection closed")

	return
}
