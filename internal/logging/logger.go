package logging

import (
	"encoding/json"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

type Fields map[string]interface{}

// Level orders log severities.
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var minLevel atomic.Int32

func init() {
	minLevel.Store(int32(LevelInfo))
}

// ParseLevel maps "debug", "info", "warn" and "error" to a Level. Anything
// else is treated as info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// SetLevel drops every message below l.
func SetLevel(l Level) {
	minLevel.Store(int32(l))
}

func enabled(l Level) bool {
	return int32(l) >= minLevel.Load()
}

func output(level, msg string, fields Fields) {
	out := make(Fields, len(fields)+3)
	for k, v := range fields {
		out[k] = v
	}
	out["level"] = level
	out["ts"] = time.Now().UTC().Format(time.RFC3339)
	out["msg"] = msg
	b, err := json.Marshal(out)
	if err != nil {
		// fallback to plain logging
		log.Printf("%s: %s (%v)\n", level, msg, out)
		return
	}
	log.Println(string(b))
}

func withError(err error, fields Fields) Fields {
	out := make(Fields, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	if err != nil {
		out["error"] = err.Error()
	}
	return out
}

// Debug logs a diagnostic message.
func Debug(msg string, fields Fields) {
	if enabled(LevelDebug) {
		output("debug", msg, fields)
	}
}

// Info logs an informational message with optional fields.
func Info(msg string, fields Fields) {
	if enabled(LevelInfo) {
		output("info", msg, fields)
	}
}

// Warn logs a condition that needs attention but did not fail a request.
func Warn(msg string, fields Fields) {
	if enabled(LevelWarn) {
		output("warn", msg, fields)
	}
}

// Error logs an error message and includes the error text in the fields.
func Error(msg string, err error, fields Fields) {
	if enabled(LevelError) {
		output("error", msg, withError(err, fields))
	}
}

// Fatal logs a fatal error and exits the process.
func Fatal(msg string, err error, fields Fields) {
	output("fatal", msg, withError(err, fields))
	os.Exit(1)
}
