package wireformat

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Schema reflects a JSON schema (Draft 2020-12) for a wire type, so host
// implementations can validate envelopes without sharing Go code.
func Schema(v any) ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true, // Expand struct definitions inline
	}
	schema := reflector.Reflect(v)

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}
