package gateway

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/kaptinlin/jsonrepair"
)

// actionSchema resolves the canonical ActionPayload schema once. The schema
// type-checks the fields but leaves socialMedia an open string: unrecognized
// targets are accepted and resolve to no social action.
var actionSchema = sync.OnceValues(func() (*jsonschema.Resolved, error) {
	s, err := jsonschema.For[ActionPayload](&jsonschema.ForOptions{})
	if err != nil {
		return nil, err
	}
	return s.Resolve(nil)
})

// DecodeActionPayload parses a reasoning-server flag bundle. The bundle may
// arrive as a JSON object or as a JSON string wrapping one. Model-produced
// JSON with syntax damage is repaired before schema validation.
func DecodeActionPayload(raw json.RawMessage) (ActionPayload, error) {
	data := []byte(raw)

	// Unwrap a string-encoded bundle.
	var inner string
	if err := json.Unmarshal(data, &inner); err == nil {
		data = []byte(inner)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		if _, ok := err.(*json.SyntaxError); !ok {
			return ActionPayload{}, fmt.Errorf("parse action payload: %w", err)
		}
		fixed, repairErr := jsonrepair.JSONRepair(string(data))
		if repairErr != nil {
			return ActionPayload{}, fmt.Errorf("repair action payload: %w", repairErr)
		}
		data = []byte(fixed)
		if err := json.Unmarshal(data, &doc); err != nil {
			return ActionPayload{}, fmt.Errorf("parse action payload: %w", err)
		}
	}

	resolved, err := actionSchema()
	if err != nil {
		return ActionPayload{}, fmt.Errorf("action payload schema: %w", err)
	}
	if err := resolved.Validate(doc); err != nil {
		return ActionPayload{}, fmt.Errorf("validate action payload: %w", err)
	}

	var p ActionPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return ActionPayload{}, fmt.Errorf("decode action payload: %w", err)
	}
	return p, nil
}
