// Package wireformat defines the JSON envelopes a contract returns to the
// host. These shapes are part of the ABI contract and must remain stable
// and backward compatible.
package wireformat

import "encoding/json"

// OkResponse is the canonical success envelope: {"ok":"<base64>"}.
// The payload renders as standard padded base64, which is exactly how
// encoding/json serializes a []byte field.
type OkResponse struct {
	Ok []byte `json:"ok"`
}

// ErrResponse is the matching failure envelope: {"error":"<message>"}.
type ErrResponse struct {
	Error string `json:"error"`
}

// WrapOk encodes result bytes into the success envelope. Nil is normalized
// to an empty payload so the envelope always carries a string, never null.
func WrapOk(data []byte) ([]byte, error) {
	if data == nil {
		data = []byte{}
	}
	return json.Marshal(OkResponse{Ok: data})
}

// WrapErr encodes a failure message into the error envelope.
func WrapErr(message string) ([]byte, error) {
	return json.Marshal(ErrResponse{Error: message})
}
