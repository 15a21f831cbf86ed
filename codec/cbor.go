package codec

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// CBOR encodes payloads as RFC 8949 CBOR. Maps always decode with string
// keys so decoded values have the same shapes JSON produces.
type CBOR struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

func NewCBOR() (*CBOR, error) {
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, err
	}
	dec, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]interface{}(nil)),
	}.DecMode()
	if err != nil {
		return nil, err
	}
	return &CBOR{enc: enc, dec: dec}, nil
}

func (*CBOR) Name() string {
	return "cbor"
}

func (*CBOR) ContentType() string {
	return "application/cbor"
}

func (c *CBOR) Encode(v interface{}) ([]byte, error) {
	return c.enc.Marshal(v)
}

func (c *CBOR) Decode(data []byte) (interface{}, error) {
	var v interface{}
	if err := c.dec.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDecode, err)
	}
	return v, nil
}
