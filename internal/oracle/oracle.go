// Package oracle is the boundary to an optional native simplifier
// library. The simplifier answers two questions about concrete builtin
// terms: the value of a boolean-sorted term and whether a term denotes
// a value at all. Both calls are synchronous; any failure is reported
// to the caller and never retried, because a broken oracle invalidates
// the query that consulted it.
package oracle

import (
	"errors"
	"fmt"

	"github.com/korelang/ksym/internal/kore"
)

// Tristate is a three-valued definedness answer.
type Tristate int

const (
	Unknown Tristate = iota
	True
	False
)

func (t Tristate) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	case Unknown:
		return "unknown"
	default:
		return fmt.Sprintf("Tristate(%d)", int(t))
	}
}

// ErrUnavailable is returned by Load on platforms without dynamic
// loading support.
var ErrUnavailable = errors.New("oracle: native simplifier is unavailable on this platform")

// Oracle answers simplification queries for concrete terms. Terms are
// handed over in KORE-JSON, so the library needs no knowledge of this
// process's memory layout.
type Oracle interface {
	// SimplifyBool evaluates a concrete boolean-sorted term.
	SimplifyBool(t kore.Term) (bool, error)
	// Definedness reports whether a concrete term denotes a value.
	// Unknown means the library cannot decide; the caller falls back to
	// symbolic reasoning.
	Definedness(t kore.Term) (Tristate, error)
	// Close releases the library handle. The oracle must not be used
	// afterwards.
	Close() error
}

func encodeQuery(def *kore.Definition, t kore.Term) ([]byte, error) {
	data, err := kore.EncodeTerm(def, t)
	if err != nil {
		return nil, fmt.Errorf("oracle: encode query term: %w", err)
	}
	return data, nil
}
