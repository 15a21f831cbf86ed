package spec

// Optional holds a value whose presence is significant on the wire.
//
// The zero value is absent. Some(nil) is present and encodes as null,
// which is not the same thing as leaving the member out.
type Optional struct {
	value   interface{}
	present bool
}

// Returns Optional holding v. v may be nil.
func Some(v interface{}) Optional {
	return Optional{value: v, present: true}
}

// Returns absent Optional.
func None() Optional {
	return Optional{}
}

func (o Optional) Present() bool {
	return o.present
}

// Value returns held value and its presence.
func (o Optional) Value() (interface{}, bool) {
	return o.value, o.present
}
