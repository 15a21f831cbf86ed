package spec

import "fmt"

// JsonType represents top level shape of a decoded payload.
type JsonType int

const (
	TypeJsonInvalid JsonType = iota
	TypeJsonArray
	TypeJsonObject
)

func (tp JsonType) String() string {
	switch tp {
	case TypeJsonArray:
		return "TypeJsonArray"
	case TypeJsonObject:
		return "TypeJsonObject"
	}
	return "TypeJsonInvalid"
}

// Checks if decoded value is json type [Array, Object, None]
func GetJsonType(v interface{}) JsonType {
	switch v.(type) {
	case []interface{}:
		return TypeJsonArray
	case map[string]interface{}:
		return TypeJsonObject
	}
	return TypeJsonInvalid
}

// Decodes a batch of generic values into requests. Unlike the dispatcher
// it stops at the first invalid member, which suits clients building
// batches from trusted input.
func BatchRequestFromValue(v interface{}) (BatchRequest, error) {
	items, ok := v.([]interface{})
	if !ok || len(items) == 0 {
		return nil, fmt.Errorf("%w: batch must be a non empty array", ErrInvalidRequest)
	}
	batch := make(BatchRequest, 0, len(items))
	for i, item := range items {
		r, err := RequestFromValue(item)
		if err != nil {
			return nil, fmt.Errorf("member %d: %w", i, err)
		}
		batch = append(batch, r)
	}
	return batch, nil
}
