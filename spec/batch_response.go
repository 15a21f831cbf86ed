package spec

import "fmt"

// If there are no Response objects contained within the Response
// array as it is to be sent to the client, the server
// MUST NOT return an empty Array and should return nothing at all.
// I.E. Client send: "[]" => Server does not reply at all
type BatchResponse []*Response

// Value returns generic representation of the batch.
func (b BatchResponse) Value() []interface{} {
	v := make([]interface{}, 0, len(b))
	for _, r := range b {
		v = append(v, r.Value())
	}
	return v
}

// Builds BatchResponse from a decoded generic value.
func BatchResponseFromValue(v interface{}) (BatchResponse, error) {
	items, ok := v.([]interface{})
	if !ok || len(items) == 0 {
		return nil, fmt.Errorf("%w: batch response must be a non empty array", ErrInvalidResponse)
	}
	batch := make(BatchResponse, 0, len(items))
	for _, item := range items {
		r, err := ResponseFromValue(item)
		if err != nil {
			return nil, err
		}
		batch = append(batch, r)
	}
	return batch, nil
}
