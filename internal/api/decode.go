package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// envelopeKeys are the only members a {"data": ...} wrapper may carry.
var envelopeKeys = map[string]bool{
	"data":    true,
	"links":   true,
	"meta":    true,
	"message": true,
	"success": true,
}

// decodeBody fills dest from either a bare JSON document or a {"data": ...}
// envelope.
func decodeBody(raw []byte, dest interface{}) error {
	if dest == nil {
		return nil
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}

	if data, ok := unwrapEnvelope(trimmed); ok {
		trimmed = data
	}

	if err := json.Unmarshal(trimmed, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func unwrapEnvelope(raw []byte) (json.RawMessage, bool) {
	if raw[0] != '{' {
		return nil, false
	}

	var members map[string]json.RawMessage
	if err := json.Unmarshal(raw, &members); err != nil {
		return nil, false
	}

	data, ok := members["data"]
	if !ok {
		return nil, false
	}
	for key := range members {
		if !envelopeKeys[key] {
			return nil, false
		}
	}
	return data, true
}
