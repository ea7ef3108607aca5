package logging

import (
	"os"
)

// DebugEnv is the environment variable that turns on debug output.
const DebugEnv = "TODO_DEBUG"

// DebugEnabled returns true if debug mode is enabled via TODO_DEBUG
func DebugEnabled() bool {
	return os.Getenv(DebugEnv) != ""
}

// Debugf logs a formatted debug message only if debug mode is enabled
func Debugf(format string, args ...interface{}) {
	if DebugEnabled() {
		Logger().Debugf(format, args...)
	}
}

// Debugln logs a debug message only if debug mode is enabled
func Debugln(args ...interface{}) {
	if DebugEnabled() && len(args) > 0 {
		Logger().Debug(args[0], args[1:]...)
	}
}
