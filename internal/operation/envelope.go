package operation

import (
	"encoding/json"
	"fmt"
)

// Envelope is the wire result: {"success": bool, <payload fields>..., "error": string}.
// Payload fields are flattened beside success and error.
type Envelope struct {
	Success bool
	Payload Payload
	Error   string
}

const (
	successField = "success"
	errorField   = "error"
)

// MarshalJSON flattens the payload into the top-level object.
func (e Envelope) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Payload)+2)
	for k, v := range e.Payload {
		if k == successField || k == errorField {
			return nil, fmt.Errorf("payload field %q is reserved", k)
		}
		out[k] = v
	}
	out[successField] = e.Success
	if e.Error != "" {
		out[errorField] = e.Error
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads an envelope, collecting every field other than success and
// error into Payload as raw JSON values.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*e = Envelope{}
	if raw, ok := fields[successField]; ok {
		if err := json.Unmarshal(raw, &e.Success); err != nil {
			return fmt.Errorf("invalid success field: %w", err)
		}
		delete(fields, successField)
	}
	if raw, ok := fields[errorField]; ok {
		if err := json.Unmarshal(raw, &e.Error); err != nil {
			return fmt.Errorf("invalid error field: %w", err)
		}
		delete(fields, errorField)
	}

	if len(fields) > 0 {
		e.Payload = make(Payload, len(fields))
		for k, v := range fields {
			e.Payload[k] = v
		}
	}
	return nil
}
