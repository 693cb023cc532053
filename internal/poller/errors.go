package poller

import "errors"

var (
	ErrStopTimeout    = errors.New("poller did not stop within the grace period")
	ErrAlreadyRunning = errors.New("poller already running")
	ErrEmptyReply     = errors.New("empty status reply")
)
