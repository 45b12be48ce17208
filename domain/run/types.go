package run

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"choicelab/domain/core"
)

// Kind names the analysis a run performed
type Kind string

const (
	KindStrategy     Kind = "strategy"
	KindReactionTime Kind = "reaction_time"
	KindParameters   Kind = "parameters"
	KindCorrelation  Kind = "correlation"
)

// Input identifies one file fed into a run
type Input struct {
	Label  string    `json:"label"`
	Path   string    `json:"path"`
	Source string    `json:"source,omitempty"`
	Hash   core.Hash `json:"hash"`
}

// Record is a persisted analysis run. Payload holds the kind-specific report
// as JSON so every kind shares one table.
type Record struct {
	ID          core.RunID      `json:"id" db:"id"`
	Kind        Kind            `json:"kind" db:"kind"`
	CreatedAt   core.Timestamp  `json:"created_at" db:"-"`
	Inputs      []Input         `json:"inputs" db:"-"`
	Fingerprint core.Hash       `json:"fingerprint" db:"fingerprint"`
	Payload     json.RawMessage `json:"payload" db:"-"`
}

// NewRecord stamps a fresh ID and time and computes the input fingerprint
func NewRecord(kind Kind, inputs []Input, payload interface{}) (*Record, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", kind, err)
	}
	return &Record{
		ID:          core.NewRunID(),
		Kind:        kind,
		CreatedAt:   core.Now(),
		Inputs:      inputs,
		Fingerprint: Fingerprint(kind, inputs),
		Payload:     body,
	}, nil
}

// Fingerprint hashes the kind and the inputs' labels, sources and content
// hashes. Two runs over the same files with the same profiles share a
// fingerprint regardless of input order.
func Fingerprint(kind Kind, inputs []Input) core.Hash {
	parts := make([]string, 0, len(inputs))
	for _, in := range inputs {
		parts = append(parts, fmt.Sprintf("%s|%s|%s", in.Label, in.Source, in.Hash))
	}
	sort.Strings(parts)
	return core.NewHash([]byte(string(kind) + "#" + strings.Join(parts, "#")))
}

// Decode unmarshals the payload into v
func (r *Record) Decode(v interface{}) error {
	if err := json.Unmarshal(r.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload of run %s: %w", r.Kind, r.ID, err)
	}
	return nil
}
