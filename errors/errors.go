// Package errors provides error constructors that record the file and line
// of the call site, so a failure deep in the supervision loop can be traced
// without stack traces.
package errors

import (
	"fmt"
	"path/filepath"
	"runtime"
)

// caller returns the base filename and line of the caller's caller.
func caller() (string, int) {
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		return "???", 0
	}
	return filepath.Base(file), line
}

// New creates an error annotated with the call site.
func New(format string, a ...interface{}) error {
	file, line := caller()
	return fmt.Errorf("[%s:%d] %s", file, line, fmt.Sprintf(format, a...))
}

// Wrapf adds call-site context to an existing error. Returns nil when err is
// nil, so it can wrap the final error of a call chain unconditionally.
func Wrapf(err error, format string, a ...interface{}) error {
	if err == nil {
		return nil
	}
	file, line := caller()
	return fmt.Errorf("[%s:%d] %s: %w", file, line, fmt.Sprintf(format, a...), err)
}
