package spec

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// When a rpc call encounters an error, the Response Object MUST contain
// the error member with a value that is an Object of this shape.
type Error struct {

	// A Number that indicates the error type that occurred.
	// This MUST be an integer.
	Code ErrorCode

	// A String providing a short description of the error.
	// The message SHOULD be limited to a concise single sentence.
	Message ErrorMsg

	// A Primitive or Structured value that contains additional information about the error.
	// This may be omitted. Omitted and null are different states.
	data Optional
}

// Returns new Error object with provided ErrorCode.
// Sets Error message using ErrorCode and leaves data out.
func NewError(code ErrorCode) *Error {
	return &Error{
		Code:    code,
		Message: ErrorMessage(code),
	}
}

// Returns new Error object with provided ErrorCode and data attached.
// data is attached even if it is nil.
func NewErrorWithData(code ErrorCode, data interface{}) *Error {
	e := NewError(code)
	e.SetData(data)
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

// Data returns the data member and whether it was set.
func (e *Error) Data() (interface{}, bool) {
	return e.data.Value()
}

func (e *Error) SetData(data interface{}) {
	e.data = Some(data)
}

func (e *Error) DeleteData() {
	e.data = None()
}

// Equal reports whether both errors share code and message. Data is
// informational and not compared.
func (e *Error) Equal(other *Error) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.Code == other.Code && e.Message == other.Message
}

// Value returns generic representation of the error object.
func (e *Error) Value() map[string]interface{} {
	v := map[string]interface{}{
		"code":    int(e.Code),
		"message": string(e.Message),
	}
	if data, ok := e.data.Value(); ok {
		v["data"] = data
	}
	return v
}

func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Value())
}

// Builds Error from a decoded generic value. Code must be an integral
// number and message a string.
func ErrorFromValue(v interface{}) (*Error, error) {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: error must be an object", ErrInvalidError)
	}
	if !isInteger(obj["code"]) {
		return nil, fmt.Errorf("%w: error code should be integer", ErrInvalidError)
	}
	if _, ok := obj["message"].(string); !ok {
		return nil, fmt.Errorf("%w: error message should be string", ErrInvalidError)
	}
	var fields struct {
		Code    int    `mapstructure:"code"`
		Message string `mapstructure:"message"`
	}
	if err := mapstructure.Decode(obj, &fields); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidError, err)
	}
	e := &Error{
		Code:    ErrorCode(fields.Code),
		Message: ErrorMsg(fields.Message),
	}
	if data, ok := obj["data"]; ok {
		e.SetData(data)
	}
	return e, nil
}

type ErrorCode int

const (
	ParseErrorCode     ErrorCode = -32700
	InvalidRequestCode ErrorCode = -32600
	MethodNotFoundCode ErrorCode = -32601
	InvalidParamsCode  ErrorCode = -32602
	InternalErrorCode  ErrorCode = -32603
	ServerErrorCode    ErrorCode = -32000
)

type ErrorMsg string

const (
	ParseErrorMsg     ErrorMsg = "Parse error"
	InvalidRequestMsg ErrorMsg = "Invalid Request"
	MethodNotFoundMsg ErrorMsg = "Method not found"
	InvalidParamsMsg  ErrorMsg = "Invalid params"
	InternalErrorMsg  ErrorMsg = "Internal error"
	ServerErrorMsg    ErrorMsg = "Server error"
)

func ErrorMessage(code ErrorCode) ErrorMsg {
	switch code {
	case ParseErrorCode:
		return ParseErrorMsg
	case InvalidRequestCode:
		return InvalidRequestMsg
	case MethodNotFoundCode:
		return MethodNotFoundMsg
	case InvalidParamsCode:
		return InvalidParamsMsg
	case InternalErrorCode:
		return InternalErrorMsg
	default:
		return ServerErrorMsg
	}
}
