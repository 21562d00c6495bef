package draft

import "errors"

// ValidationError reports bad input: a malformed configuration or an impossible pick
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// StateError reports an operation the session cannot perform in its current state
type StateError struct {
	Msg string
}

func (e *StateError) Error() string { return e.Msg }

var (
	ErrNothingToUndo   = &StateError{Msg: "nothing to undo"}
	ErrNothingToRedo   = &StateError{Msg: "nothing to redo"}
	ErrSessionEnded    = &StateError{Msg: "session has ended"}
	ErrSessionNotFound = errors.New("session not found")
)

func invalid(msg string) error { return &ValidationError{Msg: msg} }

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsState reports whether err is a StateError
func IsState(err error) bool {
	var s *StateError
	return errors.As(err, &s)
}
