package wireformat

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapOk_ExactEnvelope(t *testing.T) {
	// "hi" -> "aGk=" in standard padded base64; the envelope has no
	// whitespace beyond JSON's minimal requirements.
	out, err := WrapOk([]byte{0x68, 0x69})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":"aGk="}`, string(out))
}

func TestWrapOk_EmptyAndNil(t *testing.T) {
	out, err := WrapOk(nil)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":""}`, string(out))

	out, err = WrapOk([]byte{})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":""}`, string(out))
}

func TestWrapOk_RoundTrip(t *testing.T) {
	payload := []byte{0x00, 0xff, 0x10, 0x20}
	out, err := WrapOk(payload)
	require.NoError(t, err)

	var decoded OkResponse
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, payload, decoded.Ok)
}

func TestWrapErr(t *testing.T) {
	out, err := WrapErr("insufficient funds")
	require.NoError(t, err)
	assert.Equal(t, `{"error":"insufficient funds"}`, string(out))
}

func TestSchema_OkResponse(t *testing.T) {
	schema, err := Schema(OkResponse{})
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(schema, &doc))

	properties, ok := doc["properties"].(map[string]any)
	require.True(t, ok, "schema must describe the envelope's properties")
	assert.Contains(t, properties, "ok")
}
