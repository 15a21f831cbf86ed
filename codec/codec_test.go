package codec

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONDecode(t *testing.T) {
	c := JSON{}
	v, err := c.Decode([]byte(` {"jsonrpc":"2.0","method":"m","params":[1,"a"],"id":null} `))
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  "m",
		"params":  []interface{}{json.Number("1"), "a"},
		"id":      nil,
	}, v)

	for _, bad := range []string{
		`{"jsonrpc": "2.0", "method": "foobar, "params": "bar", "baz]`,
		``,
		`{} {}`,
		`{}]`,
	} {
		_, err := c.Decode([]byte(bad))
		assert.ErrorIs(t, err, ErrDecode, bad)
	}
}

func TestJSONDecodeKeepsLargeIntegers(t *testing.T) {
	c := JSON{}
	v, err := c.Decode([]byte(`{"id":9007199254740993}`))
	require.NoError(t, err)
	id := v.(map[string]interface{})["id"]
	assert.Equal(t, json.Number("9007199254740993"), id)

	data, err := c.Encode(map[string]interface{}{"id": id})
	require.NoError(t, err)
	assert.Equal(t, `{"id":9007199254740993}`, string(data))
}

func TestJSONEncode(t *testing.T) {
	data, err := JSON{}.Encode(map[string]interface{}{"jsonrpc": "2.0", "result": 2, "id": 0})
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","result":2,"id":0}`, string(data))
}

func TestCBORRoundTrip(t *testing.T) {
	c, err := NewCBOR()
	require.NoError(t, err)
	data, err := c.Encode(map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  "sum",
		"params":  []interface{}{"a", true},
		"id":      "1",
	})
	require.NoError(t, err)

	v, err := c.Decode(data)
	require.NoError(t, err)
	obj, ok := v.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "sum", obj["method"])
	assert.Equal(t, []interface{}{"a", true}, obj["params"])

	_, err = c.Decode([]byte{0xff, 0x00})
	assert.ErrorIs(t, err, ErrDecode)
}

func TestByName(t *testing.T) {
	c, err := ByName("")
	require.NoError(t, err)
	assert.Equal(t, "json", c.Name())

	c, err = ByName("cbor")
	require.NoError(t, err)
	assert.Equal(t, "application/cbor", c.ContentType())

	_, err = ByName("xml")
	assert.Error(t, err)
}
