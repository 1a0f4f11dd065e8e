package action

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the action registry.
var (
	ErrUnknownAction     = errors.New("unknown action")
	ErrMissingParameters = errors.New("missing required parameters")
	ErrActionFailed      = errors.New("action failed")
	ErrEmptyName         = errors.New("action name is empty")
)

// MissingParametersError lists the required parameters absent from a call.
type MissingParametersError struct {
	Action string
	Names  []string
}

func (e *MissingParametersError) Error() string {
	return fmt.Sprintf("%s for %s: [%s]", ErrMissingParameters, e.Action, strings.Join(e.Names, ", "))
}

func (e *MissingParametersError) Is(target error) bool {
	return target == ErrMissingParameters
}

// ActionFailedError wraps an error returned (or panic raised) by a handler.
type ActionFailedError struct {
	Action string
	Err    error
}

func (e *ActionFailedError) Error() string {
	return fmt.Sprintf("action %s failed: %v", e.Action, e.Err)
}

func (e *ActionFailedError) Unwrap() error { return e.Err }

func (e *ActionFailedError) Is(target error) bool {
	return target == ErrActionFailed
}
