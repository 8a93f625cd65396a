// SPDX-FileCopyrightText: 2026 The htrack Authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/htrack/htrack-go/pkg/config"
)

// configureLogging sets logrus' level, caller reporting and format.
func configureLogging(conf config.Logging) error {
	if conf.Level != "" {
		lvl, err := log.ParseLevel(conf.Level)
		if err != nil {
			return fmt.Errorf("bad value for option 'log-level': %w", err)
		}
		log.SetLevel(lvl)
	}

	log.SetReportCaller(conf.ReportCaller)

	switch conf.Format {
	case "", "text":
		log.SetFormatter(&log.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "15:04:05.000",
		})

	case "json":
		log.SetFormatter(&log.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})

	default:
		return fmt.Errorf("bad value for option 'log-format'")
	}

	return nil
}
