// Copyright (c) 2026 The skhctl Authors.
// SPDX-License-Identifier: Apache-2.0

package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
)

var traceEnabled bool

// InitLogger sets up Apex with a custom handler and a log level from the
// SKH_LOG env variable. Lines go to stderr so stdout carries only command
// output. When SKH_LOG_FILE is set, every line is also appended to that file.
func InitLogger() {
	envLevel := strings.ToLower(os.Getenv("SKH_LOG"))
	if envLevel == "" {
		envLevel = "info"
	}
	traceEnabled = envLevel == "trace"

	log.SetHandler(NewHandler(os.Stderr, os.Getenv("SKH_LOG_FILE")))
	log.SetLevel(ParseLevel(envLevel))
}

// NewHandler returns a handler writing to out and, when path is not empty,
// appending to path as well. A file that cannot be opened is reported on
// stderr and skipped.
func NewHandler(out io.Writer, path string) *CustomHandler {
	h := &CustomHandler{Out: out}
	if path == "" {
		return h
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644) //nolint:mnd
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot open SKH_LOG_FILE %s: %v\n", path, err)
		return h
	}
	h.Out = io.MultiWriter(out, f)
	return h
}

// ParseLevel maps an SKH_LOG value to an apex level. Unknown values fall back
// to info.
func ParseLevel(s string) log.Level {
	switch strings.ToLower(s) {
	case "trace", "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// CustomHandler formats log messages as "timestamp level message" lines.
type CustomHandler struct {
	mu  sync.Mutex
	Out io.Writer
}

// HandleLog implements the log.Handler interface
func (h *CustomHandler) HandleLog(e *log.Entry) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	message := e.Message
	level := "?"
	if strings.HasPrefix(message, "TRACE: ") {
		level = "T"
		message = message[7:]
	} else {
		switch e.Level {
		case log.DebugLevel:
			level = "D"
		case log.InfoLevel:
			level = "I"
		case log.WarnLevel:
			level = "W"
		case log.ErrorLevel:
			level = "E"
		case log.FatalLevel:
			level = "F"
		}
	}

	// Fields set through WithError/WithField trail the message.
	for _, name := range e.Fields.Names() {
		message += fmt.Sprintf(" %s=%v", name, e.Fields.Get(name))
	}

	out := h.Out
	if out == nil {
		out = os.Stderr
	}
	_, err := fmt.Fprintf(out, "%s %s %s\n", timestamp, level, message)
	return err
}

// Tracef logs at Trace level (below Debug).
func Tracef(format string, args ...interface{}) {
	if traceEnabled {
		log.Debug("TRACE: " + fmt.Sprintf(format, args...))
	}
}

// Debugf logs at Debug level.
func Debugf(format string, args ...interface{}) {
	log.Debugf(format, args...)
}

// Infof logs at Info level.
func Infof(format string, args ...interface{}) {
	log.Infof(format, args...)
}

// Errorf logs at Error level.
func Errorf(format string, args ...interface{}) {
	log.Errorf(format, args...)
}

// Debug logs at Debug level.
func Debug(msg string) {
	log.Debug(msg)
}

// Info logs at Info level.
func Info(msg string) {
	log.Info(msg)
}

// Warnf logs at Warn level.
func Warnf(format string, args ...interface{}) {
	log.Warn(fmt.Sprintf(format, args...))
}

// WithError returns an entry with error.
func WithError(err error) *log.Entry {
	return log.WithError(err)
}
