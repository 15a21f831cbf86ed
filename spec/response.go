package spec

import (
	"encoding/json"
	"fmt"
)

// Either the result member or error member MUST be included, but both
// members MUST NOT be included. Constructors enforce that.
type Response struct {

	// This member is REQUIRED on success.
	// This member MUST NOT exist if there was an error invoking the method.
	// The value of this member is determined by the method invoked on the Server.
	result Optional

	// This member is REQUIRED on error.
	// This member MUST NOT exist if there was no error triggered during invocation.
	err *Error

	// This member is REQUIRED.
	// It MUST be the same as the value of the id member in the Request Object.
	// If there was an error in detecting the id in the Request object
	// (e.g. Parse error/Invalid Request), it MUST be Null.
	id interface{}
}

// Returns new Response object with provided ID and result object.
// A nil result is still sent as "result": null.
func NewResponse(id interface{}, result interface{}) *Response {
	return &Response{
		id:     id,
		result: Some(result),
	}
}

// Returns new error Response object with provided ID and error object.
func NewResponseError(id interface{}, err *Error) *Response {
	if err == nil {
		err = NewError(InternalErrorCode)
	}
	return &Response{
		id:  id,
		err: err,
	}
}

// Returns response to the given request. The id is copied from the
// request, or null when the request has none.
func ResponseFor(req *Request, result interface{}) *Response {
	id, _ := req.ID()
	return NewResponse(id, result)
}

// Returns error response to the given request.
func ErrorResponseFor(req *Request, err *Error) *Response {
	id, _ := req.ID()
	return NewResponseError(id, err)
}

func (r *Response) ID() interface{} {
	return r.id
}

// Result returns result member and whether it exists.
func (r *Response) Result() (interface{}, bool) {
	return r.result.Value()
}

// Err returns error member or nil on success.
func (r *Response) Err() *Error {
	return r.err
}

func (r *Response) IsError() bool {
	return r.err != nil
}

// Value returns generic representation of the response object.
func (r *Response) Value() map[string]interface{} {
	v := map[string]interface{}{
		"jsonrpc": JsonRpcVersion,
		"id":      r.id,
	}
	if r.err != nil {
		v["error"] = r.err.Value()
	} else {
		// The zero Response encodes a null result.
		result, _ := r.result.Value()
		v["result"] = result
	}
	return v
}

func (r *Response) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Value())
}

func (r *Response) String() string {
	return fmt.Sprintf("%v", r.Value())
}

// Builds Response from a decoded generic value.
func ResponseFromValue(v interface{}) (*Response, error) {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: response must be an object", ErrInvalidResponse)
	}
	if version, _ := obj["jsonrpc"].(string); version != JsonRpcVersion {
		return nil, fmt.Errorf("%w: jsonrpc must be exactly %q", ErrInvalidResponse, JsonRpcVersion)
	}
	id, ok := obj["id"]
	if !ok {
		return nil, fmt.Errorf("%w: id member is required", ErrInvalidResponse)
	}
	if !isValidID(id) {
		return nil, fmt.Errorf("%w: id must be a string, number or null", ErrInvalidResponse)
	}
	result, hasResult := obj["result"]
	rawErr, hasErr := obj["error"]
	switch {
	case hasResult && hasErr:
		return nil, fmt.Errorf("%w: result and error are mutually exclusive", ErrInvalidResponse)
	case hasResult:
		return NewResponse(id, result), nil
	case hasErr:
		e, err := ErrorFromValue(rawErr)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidResponse, err)
		}
		return NewResponseError(id, e), nil
	}
	return nil, fmt.Errorf("%w: either result or error is required", ErrInvalidResponse)
}
