package devices

import "fmt"

// SetupError reports a failed session-establishment hook. It is fatal to
// session setup; the caller surfaces it immediately and does not retry.
type SetupError struct {
	// Op is the setup step that failed, for a command hook the command
	// itself.
	Op  string
	Err error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("device session setup '%s' failed: %v", e.Op, e.Err)
}

func (e *SetupError) Unwrap() error { return e.Err }

// MalformedReplyError reports a reply that still fails to parse after any
// applicable repair. It fails the rpc in progress; the session itself
// carries on.
type MalformedReplyError struct {
	Raw string
	Err error
}

func (e *MalformedReplyError) Error() string {
	return fmt.Sprintf("malformed rpc reply: %v", e.Err)
}

func (e *MalformedReplyError) Unwrap() error { return e.Err }
