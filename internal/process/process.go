// Package process terminates the browser processes started for PDF export.
package process

import "errors"

// ErrInvalidPID rejects pids that would signal the caller's own group.
var ErrInvalidPID = errors.New("invalid pid")
