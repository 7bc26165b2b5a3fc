package ksym

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/korelang/ksym/internal/norm"
	"github.com/korelang/ksym/internal/unify"
)

// Query kinds understood by the engine.
const (
	KindCeil  = "ceil"
	KindUnify = "unify"
)

// Query is one entry of a query document. Term payloads are complete
// KORE-JSON documents; they stay raw until the engine resolves them
// against its definition.
type Query struct {
	Kind  string `json:"kind"`
	Label string `json:"label,omitempty"`

	// Term and Condition describe a ceil query: the term whose
	// definedness is wanted, and the predicates assumed to hold.
	Term      json.RawMessage   `json:"term,omitempty"`
	Condition []json.RawMessage `json:"condition,omitempty"`

	// Left and Right describe a unify query.
	Left  json.RawMessage `json:"left,omitempty"`
	Right json.RawMessage `json:"right,omitempty"`
}

// DecodeQueries parses a query document: a single query object or an
// array of them.
func DecodeQueries(data []byte) ([]Query, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("ksym: empty query document")
	}
	if trimmed[0] == '[' {
		var queries []Query
		if err := json.Unmarshal(data, &queries); err != nil {
			return nil, fmt.Errorf("ksym: parsing query list: %w", err)
		}
		return queries, nil
	}
	var q Query
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, fmt.Errorf("ksym: parsing query: %w", err)
	}
	return []Query{q}, nil
}

// Result is the engine's answer to one query.
type Result struct {
	// Path is the query file the result came from, when it came from
	// a file.
	Path string
	// Index is the query's position within its document.
	Index int
	Label string
	Kind  string

	// Ceil holds the simplified definedness condition for ceil
	// queries.
	Ceil norm.Form
	// Unification holds the outcome for unify queries.
	Unification unify.Result
}
