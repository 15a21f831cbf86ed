package spec

// To send several Request objects at the same time, the Client MAY send
// an Array filled with Request objects.
//
// If the batch rpc call itself fails to be recognized as an
// valid JSON or as an Array with at least one value,
// the response from the Server MUST be a single Response object.
type BatchRequest []*Request

// Value returns generic representation of the batch.
func (b BatchRequest) Value() []interface{} {
	v := make([]interface{}, 0, len(b))
	for _, r := range b {
		v = append(v, r.Value())
	}
	return v
}

// Number of members which expect a response.
func (b BatchRequest) Calls() int {
	n := 0
	for _, r := range b {
		if !r.IsNotification() {
			n++
		}
	}
	return n
}
