package spec

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
)

const (
	JsonRpcVersion = "2.0"

	// Method names that begin with "rpc." are reserved for rpc-internal
	// methods and extensions.
	ReservedMethodPrefix = "rpc."
)

var (
	ErrInvalidRequest  = errors.New("invalid request")
	ErrInvalidMethod   = errors.New("invalid method")
	ErrInvalidParams   = errors.New("invalid params")
	ErrInvalidID       = errors.New("invalid id")
	ErrInvalidError    = errors.New("invalid error object")
	ErrInvalidResponse = errors.New("invalid response")
)

func validateMethod(method string) error {
	if method == "" {
		return errors.New("method must not be empty")
	}
	if strings.HasPrefix(method, ReservedMethodPrefix) {
		return errors.New(`method names that begin with "rpc." are reserved`)
	}
	return nil
}

// String, Number or NULL.
func isValidID(id interface{}) bool {
	if id == nil {
		return true
	}
	if _, ok := id.(string); ok {
		return true
	}
	return isNumber(id)
}

func isNumber(v interface{}) bool {
	switch n := v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return true
	case float32:
		return !math.IsNaN(float64(n)) && !math.IsInf(float64(n), 0)
	case float64:
		return !math.IsNaN(n) && !math.IsInf(n, 0)
	case json.Number:
		_, err := n.Float64()
		return err == nil
	}
	return false
}

func isInteger(v interface{}) bool {
	switch n := v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return true
	case float32:
		return isNumber(n) && math.Trunc(float64(n)) == float64(n)
	case float64:
		return isNumber(n) && math.Trunc(n) == n
	case json.Number:
		_, err := n.Int64()
		return err == nil
	}
	return false
}

// Normalizes params into the two accepted shapes. nil and empty
// structures are reported as absent.
func normalizeParams(params interface{}) (interface{}, bool, error) {
	switch p := params.(type) {
	case nil:
		return nil, false, nil
	case []interface{}:
		if len(p) == 0 {
			return nil, false, nil
		}
		return p, true, nil
	case map[string]interface{}:
		if len(p) == 0 {
			return nil, false, nil
		}
		return p, true, nil
	}
	return nil, false, errors.New("params must be an array or an object")
}
