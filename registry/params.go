package registry

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"

	"github.com/mitchellh/mapstructure"
)

// Params are the arguments a method is invoked with. At most one of
// positional and named arguments is non empty for a JSON-RPC call.
type Params struct {
	args   []interface{}
	kwargs map[string]interface{}
	sig    Signature
}

func NewParams(sig Signature, args []interface{}, kwargs map[string]interface{}) Params {
	if args == nil {
		args = []interface{}{}
	}
	if kwargs == nil {
		kwargs = map[string]interface{}{}
	}
	return Params{args: args, kwargs: kwargs, sig: sig}
}

func (p Params) Args() []interface{} {
	return p.args
}

func (p Params) Kwargs() map[string]interface{} {
	return p.kwargs
}

// Get returns argument bound to the declared parameter name, looking at
// named arguments first and then at the positional slot of name.
func (p Params) Get(name string) (interface{}, bool) {
	if v, ok := p.kwargs[name]; ok {
		return v, true
	}
	for i, n := range p.sig.Names() {
		if n == name {
			if i < len(p.args) {
				return p.args[i], true
			}
			break
		}
	}
	return nil, false
}

// Map returns every bound argument keyed by parameter name. Extra
// positional arguments of variadic methods are left out.
func (p Params) Map() map[string]interface{} {
	m := make(map[string]interface{}, len(p.args)+len(p.kwargs))
	for i, name := range p.sig.Names() {
		if i < len(p.args) {
			m[name] = p.args[i]
		}
	}
	for k, v := range p.kwargs {
		m[k] = v
	}
	return m
}

// Decode binds arguments into out, a pointer to a struct whose json tags
// match the parameter names. Type mismatches, including numbers with a
// fraction bound to integer fields, wrap ErrInvalidParams. The dispatcher
// answers them with Server error; return a spec.DispatchError to answer
// Invalid params instead.
/*	// Example:
	var in struct {
		Minuend    int `json:"minuend"`
		Subtrahend int `json:"subtrahend"`
	}
	if err := p.Decode(&in); err != nil {
		return nil, err
	}
*/
func (p Params) Decode(out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:    "json",
		Result:     out,
		DecodeHook: integralHook,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(p.Map()); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidParams, err)
	}
	return nil
}

// Rejects numbers with a fraction bound to integer fields, mapstructure
// would truncate them.
func integralHook(_ reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		return data, nil
	}
	switch n := data.(type) {
	case float32:
		if math.Trunc(float64(n)) != float64(n) {
			return nil, fmt.Errorf("%v is not an integer", n)
		}
	case float64:
		if math.Trunc(n) != n {
			return nil, fmt.Errorf("%v is not an integer", n)
		}
	case json.Number:
		if _, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
			return data, nil
		}
		if _, err := strconv.ParseUint(n.String(), 10, 64); err == nil {
			return data, nil
		}
		f, err := n.Float64()
		if err != nil || math.Trunc(f) != f {
			return nil, fmt.Errorf("%s is not an integer", n)
		}
		return f, nil
	}
	return data, nil
}
