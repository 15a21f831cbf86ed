package spec

// DispatchError is returned by a method handler when it wants to answer
// with its own error object. The dispatcher forwards the embedded Error
// as is instead of mapping it to one of the standard errors.
type DispatchError struct {
	Err *Error
}

// Returns new DispatchError. Data member is attached only when data is
// passed, so NewDispatchError(c, m, nil) produces "data": null.
func NewDispatchError(code ErrorCode, message ErrorMsg, data ...interface{}) *DispatchError {
	e := &Error{Code: code, Message: message}
	if len(data) > 0 {
		e.SetData(data[0])
	}
	return &DispatchError{Err: e}
}

func (d *DispatchError) Error() string {
	return "dispatch error " + d.Err.Error()
}

func (d *DispatchError) Unwrap() error {
	return d.Err
}
