package xr

import (
	"errors"
	"fmt"
)

var (
	// ErrRuntimeUnusable is raised when the instance is about to be lost. It cannot be
	// recovered: the session object must be torn down.
	ErrRuntimeUnusable = errors.New("the instance is about to become unusable")
	// ErrSessionTerminated is raised on an explicit exiting transition.
	ErrSessionTerminated = errors.New("improper session exit")
)

// CommandError reports a runtime command that did not succeed.
type CommandError struct {
	Op  string
	Err error
}

func (e *CommandError) Error() string {
	if e.Err == nil {
		return e.Op + ": failed"
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *CommandError) Unwrap() error { return e.Err }

// ConfigError reports a setup-time invariant the runtime does not satisfy.
type ConfigError struct {
	What string
	Got  int
	Want int
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: got %d, want %d", e.What, e.Got, e.Want)
}

// Check wraps a failed runtime call into a CommandError labelled with op.
// A nil err passes through.
func Check(op string, err error) error {
	if err == nil {
		return nil
	}
	var ce *CommandError
	if errors.As(err, &ce) {
		return err
	}
	return &CommandError{Op: op, Err: err}
}

// IsFatal reports whether err belongs to the session-ending taxonomy.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRuntimeUnusable) || errors.Is(err, ErrSessionTerminated) {
		return true
	}
	var ce *CommandError
	var cfg *ConfigError
	return errors.As(err, &ce) || errors.As(err, &cfg)
}
