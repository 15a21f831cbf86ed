package spec

import (
	"encoding/json"
	"fmt"
)

// A rpc call is represented by sending a Request object to a Server.
//
// Fields are kept behind accessors so every mutation goes through the
// same validation as construction.
type Request struct {

	// A String containing the name of the method to be invoked.
	// Method names that begin with "rpc." are reserved.
	method string

	// A Structured value that holds the parameter values to be
	// used during the invocation of the method. Either []interface{}
	// or map[string]interface{}. nil means the member is omitted.
	params interface{}

	// An identifier established by the Client that MUST contain
	// a String, Number, or NULL value.
	//
	// If it is not included it is assumed to be a notification.
	id Optional
}

// Returns new Request object carrying an id. id may be nil, which is
// encoded as "id": null and still expects a response.
func NewRequest(method string, params interface{}, id interface{}) (*Request, error) {
	r := &Request{}
	if err := r.SetMethod(method); err != nil {
		return nil, err
	}
	if err := r.SetParams(params); err != nil {
		return nil, err
	}
	if err := r.SetID(id); err != nil {
		return nil, err
	}
	return r, nil
}

// Returns new Request object without id member.
func NewNotification(method string, params interface{}) (*Request, error) {
	r := &Request{}
	if err := r.SetMethod(method); err != nil {
		return nil, err
	}
	if err := r.SetParams(params); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Request) Method() string {
	return r.method
}

func (r *Request) SetMethod(method string) error {
	if err := validateMethod(method); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidMethod, err)
	}
	r.method = method
	return nil
}

// Params returns []interface{}, map[string]interface{} or nil.
func (r *Request) Params() interface{} {
	return r.params
}

// Sets params. nil or an empty array/object removes the member.
func (r *Request) SetParams(params interface{}) error {
	p, ok, err := normalizeParams(params)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidParams, err)
	}
	if !ok {
		r.params = nil
		return nil
	}
	r.params = p
	return nil
}

// ID returns id value and whether the member exists.
func (r *Request) ID() (interface{}, bool) {
	return r.id.Value()
}

func (r *Request) SetID(id interface{}) error {
	if !isValidID(id) {
		return fmt.Errorf("%w: id must be a string, number or null, got %T", ErrInvalidID, id)
	}
	r.id = Some(id)
	return nil
}

// Removes id member which turns request into a notification.
func (r *Request) DeleteID() {
	r.id = None()
}

// Checks if request is a notification.
// Only absence of the id member counts, "id": null is a regular call.
func (r *Request) IsNotification() bool {
	return !r.id.Present()
}

// Positional arguments. Empty when params are omitted or named.
func (r *Request) Args() []interface{} {
	if args, ok := r.params.([]interface{}); ok {
		return args
	}
	return []interface{}{}
}

// Named arguments. Empty when params are omitted or positional.
func (r *Request) Kwargs() map[string]interface{} {
	if kwargs, ok := r.params.(map[string]interface{}); ok {
		return kwargs
	}
	return map[string]interface{}{}
}

// Value returns generic representation of the request object.
func (r *Request) Value() map[string]interface{} {
	v := map[string]interface{}{
		"jsonrpc": JsonRpcVersion,
		"method":  r.method,
	}
	if r.params != nil {
		v["params"] = r.params
	}
	if id, ok := r.id.Value(); ok {
		v["id"] = id
	}
	return v
}

func (r *Request) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Value())
}

func (r *Request) String() string {
	return fmt.Sprintf("%v", r.Value())
}

// Builds Request from a decoded generic value. Every failure wraps
// ErrInvalidRequest.
func RequestFromValue(v interface{}) (*Request, error) {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: request must be an object", ErrInvalidRequest)
	}
	for key := range obj {
		switch key {
		case "jsonrpc", "method", "params", "id":
		default:
			return nil, fmt.Errorf("%w: unexpected member %q", ErrInvalidRequest, key)
		}
	}
	if version, _ := obj["jsonrpc"].(string); version != JsonRpcVersion {
		return nil, fmt.Errorf("%w: jsonrpc must be exactly %q", ErrInvalidRequest, JsonRpcVersion)
	}
	method, ok := obj["method"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: method has to be string", ErrInvalidRequest)
	}
	r := &Request{}
	if err := r.SetMethod(method); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, err)
	}
	if params, ok := obj["params"]; ok {
		if params == nil {
			return nil, fmt.Errorf("%w: params must be an array or an object", ErrInvalidRequest)
		}
		if err := r.SetParams(params); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, err)
		}
	}
	if id, ok := obj["id"]; ok {
		if err := r.SetID(id); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, err)
		}
	}
	return r, nil
}
