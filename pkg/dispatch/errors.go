package dispatch

import "fmt"

// Signal names fired on the event emitter. Every dispatch-level failure
// fires SignalCommandError first, then the error's own kind-specific signal.
const (
	SignalCommandError     = "command_error"
	SignalMissingArgument  = "command_missing_argument"
	SignalConversionFailed = "command_conversion_failed"
	SignalInvokeFailed     = "command_invoke_failed"
	SignalHelp             = "command_help"
)

// DispatchError is the family of errors caught at the pipeline boundary and
// routed to the event emitter.
type DispatchError interface {
	error
	Signal() string
}

// MissingArgumentError reports a required parameter that had no token left
// and no declared default.
type MissingArgumentError struct {
	Param string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("missing required argument %q", e.Param)
}

// Signal returns the kind-specific signal name.
func (e *MissingArgumentError) Signal() string { return SignalMissingArgument }

// ConversionError reports a converter rejecting the token(s) consumed for a
// parameter.
type ConversionError struct {
	Param string
	Value string
	Err   error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot convert %q for parameter %q: %v", e.Value, e.Param, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// Signal returns the kind-specific signal name.
func (e *ConversionError) Signal() string { return SignalConversionFailed }

// InvokeError wraps a failure returned by a command handler.
type InvokeError struct {
	Command string
	Err     error
}

func (e *InvokeError) Error() string {
	return fmt.Sprintf("command %q failed: %v", e.Command, e.Err)
}

func (e *InvokeError) Unwrap() error { return e.Err }

// Signal returns the kind-specific signal name.
func (e *InvokeError) Signal() string { return SignalInvokeFailed }
