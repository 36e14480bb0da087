// Package logging is the process-wide logger. It exists so the CLI can
// silence all output with one call when running in quiet mode.
package logging

import (
	"log"
	"os"
)

var (
	disabled = false
	debug    = false
	logger   = log.New(os.Stdout, "", log.LstdFlags)
)

// Disable turns off all logging.
func Disable() {
	disabled = true
}

// Enable turns logging back on.
func Enable() {
	disabled = false
}

// SetDebug toggles debug-level output.
func SetDebug(on bool) {
	debug = on
}

// Infof logs a formatted info message.
func Infof(format string, v ...any) {
	if !disabled {
		logger.Printf(format, v...)
	}
}

// Warnf logs a formatted warning message.
func Warnf(format string, v ...any) {
	if !disabled {
		logger.Printf("WARN: "+format, v...)
	}
}

// Errorf logs a formatted error message.
func Errorf(format string, v ...any) {
	if !disabled {
		logger.Printf("ERROR: "+format, v...)
	}
}

// Debugf logs a formatted debug message when debug output is on.
func Debugf(format string, v ...any) {
	if !disabled && debug {
		logger.Printf("DEBUG: "+format, v...)
	}
}

// Tagged returns a logger that prefixes every line with [tag].
func Tagged(tag string) Tag {
	return Tag{prefix: "[" + tag + "] "}
}

// Tag is a subsystem-prefixed view of the process logger.
type Tag struct {
	prefix string
}

// Infof logs a formatted info message with the subsystem prefix.
func (t Tag) Infof(format string, v ...any) {
	Infof(t.prefix+format, v...)
}

// Warnf logs a formatted warning message with the subsystem prefix.
func (t Tag) Warnf(format string, v ...any) {
	Warnf(t.prefix+format, v...)
}

// Errorf logs a formatted error message with the subsystem prefix.
func (t Tag) Errorf(format string, v ...any) {
	Errorf(t.prefix+format, v...)
}

// Debugf logs a formatted debug message with the subsystem prefix.
func (t Tag) Debugf(format string, v ...any) {
	Debugf(t.prefix+format, v...)
}
