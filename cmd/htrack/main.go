// SPDX-FileCopyrightText: 2026 The htrack Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// htrack connects to a TCP endpoint, waits until the connection gets closed
// and connects again, forever. It reports any failure and exits with status 1.
//
//	htrack [flags] host ADDR [port N] [bind ADDR] [send DATA] [timeout T]
//	       [connect-timeout T] [interval T] [keepalive on|off] [keepidle T]
//	       [keepintvl T] [count N] [fastopen on|off] [bufsize N] [oneshot]
//
// Durations T are either seconds or values like "1500ms". Flags must precede
// the options.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/profile"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/htrack/htrack-go/pkg/config"
	"github.com/htrack/htrack-go/pkg/tracker"
)

type flags struct {
	configFile string
	logging    config.Logging
	profileDir string
}

func newRootCommand() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "htrack [flags] host ADDR [option value]... [oneshot]",
		Short: "Track the reachability of a TCP endpoint",
		Long: `htrack connects to a TCP endpoint and monitors the connection until it is
closed by the peer or a network element on the path. Afterwards it sleeps for
the retry interval and connects again. Any failure, e.g., a refused or timed
out connection, terminates htrack with exit status 1.

Options:
  host ADDR            IPv4 or IPv6 address to connect to, mandatory
  port N               TCP port, default 80
  bind ADDR            local address to bind to
  send DATA            payload to send after each connect
  timeout T            connect timeout, retry interval and keepalive times, default 5
  connect-timeout T    connect timeout
  interval T           retry interval
  keepalive on|off     TCP keepalive, default on
  keepidle T           keepalive idle time
  keepintvl T          keepalive probe interval
  count N              keepalive probe count, default 3
  fastopen on|off      TCP fast open, default on
  bufsize N            receive buffer size, default 4096
  oneshot              exit after the first established connection`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, f, args)
		},
	}

	// Options may have values starting with a dash, e.g., "send -".
	cmd.Flags().SetInterspersed(false)

	cmd.Flags().StringVarP(&f.configFile, "config", "c", "", "TOML configuration file, overwritten by options")
	cmd.Flags().StringVar(&f.logging.Level, "log-level", "", "log level: panic,fatal,error,warn,info,debug,trace (default info)")
	cmd.Flags().StringVar(&f.logging.Format, "log-format", "", "log format: text or json (default text)")
	cmd.Flags().BoolVar(&f.logging.ReportCaller, "log-report-caller", false, "report the calling function in logs")
	cmd.Flags().StringVar(&f.profileDir, "profile", "", "write a CPU profile into this directory")

	return cmd
}

func run(cmd *cobra.Command, f flags, args []string) error {
	opts := config.DefaultOptions()

	if f.configFile != "" {
		if err := opts.LoadFile(f.configFile); err != nil {
			return err
		}
	}

	if err := opts.ParseArgs(args); err != nil {
		return err
	}

	logging := opts.Logging
	if cmd.Flags().Changed("log-level") {
		logging.Level = f.logging.Level
	}
	if cmd.Flags().Changed("log-format") {
		logging.Format = f.logging.Format
	}
	if cmd.Flags().Changed("log-report-caller") {
		logging.ReportCaller = f.logging.ReportCaller
	}
	if err := configureLogging(logging); err != nil {
		return err
	}

	conf, err := opts.Config()
	if err != nil {
		return err
	}

	tr, err := tracker.NewTracker(conf)
	if err != nil {
		return err
	}

	if f.profileDir != "" {
		defer profile.Start(profile.ProfilePath(f.profileDir), profile.Quiet).Stop()
	}

	log.WithField("config", conf).Debug("Starting htrack")

	return tr.Run()
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
