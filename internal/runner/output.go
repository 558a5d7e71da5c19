package runner

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// TrialRecord is one entry of the simulator's iterative-mode "tests" array.
type TrialRecord struct {
	Result   json.RawMessage `json:"result"`
	Duration *float64        `json:"duration"`
	Accepted *bool           `json:"accepted,omitempty"`
}

// IsAccepted reports whether the simulator accepted the trial. A record without
// an "accepted" marker counts as accepted.
func (r TrialRecord) IsAccepted() bool {
	return r.Accepted == nil || *r.Accepted
}

// IterativeOutput is the document printed for --iterations runs.
type IterativeOutput struct {
	Tests []TrialRecord `json:"tests"`
}

// SatOutput is the document printed for a single SAT-CLIQUE formula.
type SatOutput struct {
	Result            json.RawMessage `json:"result"`
	Duration          *float64        `json:"duration"`
	TransformDuration *float64        `json:"duration_transf"`
	Accepted          *bool           `json:"accepted,omitempty"`
}

// IsAccepted reports whether the formula run was accepted and carries both timings.
func (o SatOutput) IsAccepted() bool {
	if o.Accepted != nil && !*o.Accepted {
		return false
	}
	return o.Duration != nil && o.TransformDuration != nil
}

// ParseIterative decodes an iterative-mode document. A document without a
// "tests" array is malformed.
func ParseIterative(data []byte) (*IterativeOutput, error) {
	var raw struct {
		Tests *[]TrialRecord `json:"tests"`
	}
	if err := decodeStrict(data, &raw); err != nil {
		return nil, err
	}
	if raw.Tests == nil {
		return nil, fmt.Errorf("%w: missing \"tests\" array in %q", ErrMalformedOutput, excerpt(data))
	}
	return &IterativeOutput{Tests: *raw.Tests}, nil
}

// ParseSat decodes a single-formula SAT document.
func ParseSat(data []byte) (*SatOutput, error) {
	var out SatOutput
	if err := decodeStrict(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func decodeStrict(data []byte, v interface{}) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("%w: expected a JSON object, got %q", ErrMalformedOutput, excerpt(data))
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v in %q", ErrMalformedOutput, err, excerpt(data))
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after JSON document", ErrMalformedOutput)
	}
	return nil
}
