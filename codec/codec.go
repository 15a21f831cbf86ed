// Package codec holds the wire encoders used by the dispatcher. A codec
// turns text into generic values (map[string]interface{}, []interface{},
// string, numbers, bool, nil) and back.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var ErrDecode = errors.New("decode payload")

type Codec interface {
	// Name used in configuration, e.g. "json".
	Name() string
	ContentType() string
	Encode(v interface{}) ([]byte, error)
	Decode(data []byte) (interface{}, error)
}

// Returns codec registered under name. Empty name selects JSON.
func ByName(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSON{}, nil
	case "cbor":
		return NewCBOR()
	}
	return nil, fmt.Errorf("unknown codec %q", name)
}

// JSON is the default codec built on encoding/json.
type JSON struct{}

func (JSON) Name() string {
	return "json"
}

func (JSON) ContentType() string {
	return "application/json"
}

func (JSON) Encode(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// Decode accepts exactly one JSON value. Trailing data is an error.
// Numbers are kept as json.Number so large integer ids survive.
func (JSON) Decode(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDecode, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: unexpected data after top level value", ErrDecode)
	}
	return v, nil
}
