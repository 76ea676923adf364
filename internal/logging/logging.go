// Package logging configures the process logger for the CLI.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls logger construction.
type Options struct {
	Level   string // debug, info, warn, error
	Format  string // text, json
	LogPath string // rotating file target; empty logs to stderr only
	Quiet   bool   // suppress terminal output, keep the file
}

// Configure builds a logrus logger with optional file rotation.
func Configure(opts Options) *logrus.Logger {
	logger := logrus.New()
	switch strings.ToLower(opts.Format) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if lvl, err := logrus.ParseLevel(strings.ToLower(opts.Level)); err == nil {
		logger.SetLevel(lvl)
	}
	if opts.LogPath == "" {
		if opts.Quiet {
			logger.SetOutput(io.Discard)
		}
		return logger
	}
	rotator := &lumberjack.Logger{
		Filename:   opts.LogPath,
		MaxSize:    20, // megabytes
		MaxBackups: 3,
		MaxAge:     30,
	}
	if opts.Quiet {
		logger.SetOutput(rotator)
	} else {
		logger.SetOutput(io.MultiWriter(os.Stderr, rotator))
	}
	return logger
}
