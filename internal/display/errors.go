package display

import "errors"

// Backend failures. They surface wrapped in a DisplayError.
var (
	ErrNoDisplay    = errors.New("no display available")
	ErrNoLayerShell = errors.New("compositor does not support wlr-layer-shell")
	ErrNoOutputs    = errors.New("no outputs available")
	ErrNoHandler    = errors.New("no event handler set")
	ErrNotBound     = errors.New("display not bound")
	ErrNoGL         = errors.New("OpenGL unavailable")
)

// DisplayError is a failure of one GTK backend operation.
type DisplayError struct {
	Op    string
	Err   error
	Cause error
}

func (e *DisplayError) Error() string {
	msg := "display " + e.Op + ": " + e.Err.Error()
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the underlying cause to errors.Is.
func (e *DisplayError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}
