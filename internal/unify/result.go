// Package unify implements syntactic term unification with sort
// constraints. Unifying two terms either produces a substitution, a
// partial substitution with residual pairs for a later decision
// procedure, a definite structural failure, or a sort error.
package unify

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/korelang/ksym/internal/kore"
)

// Result is the outcome of unifying two terms.
type Result interface {
	isResult()
	String() string
}

// Pair is a pending or residual unification problem.
type Pair struct {
	Left  kore.Term
	Right kore.Term
}

func (p Pair) String() string {
	return p.Left.String() + " =? " + p.Right.String()
}

// Success carries the unifying substitution and any sort-variable
// bindings discovered along the way.
type Success struct {
	Subst        kore.Substitution
	SortBindings map[string]kore.Sort
}

func (Success) isResult() {}

func (r Success) String() string {
	return "success " + r.Subst.String()
}

// Remainder is a partial outcome: the bindings found so far plus pairs
// the engine could not decide syntactically. Callers hand the pairs to
// a stronger decision procedure or keep them as predicates.
type Remainder struct {
	Subst        kore.Substitution
	Pairs        []Pair
	SortBindings map[string]kore.Sort
}

func (Remainder) isResult() {}

func (r Remainder) String() string {
	pairs := lo.Map(r.Pairs, func(p Pair, _ int) string { return p.String() })
	return "remainder [" + strings.Join(pairs, ", ") + "] " + r.Subst.String()
}

// FailReason classifies a definite unification failure.
type FailReason int

const (
	// DifferentSymbols: two constructor applications with distinct heads.
	DifferentSymbols FailReason = iota
	// VariableConflict: a variable is required to take two distinct values.
	VariableConflict
	// DifferentValues: two domain values of one sort with distinct bytes.
	DifferentValues
	// VariableRecursion: a variable would be bound to a term containing it.
	VariableRecursion
)

func (r FailReason) String() string {
	switch r {
	case DifferentSymbols:
		return "different-symbols"
	case VariableConflict:
		return "variable-conflict"
	case DifferentValues:
		return "different-values"
	case VariableRecursion:
		return "variable-recursion"
	default:
		return fmt.Sprintf("FailReason(%d)", int(r))
	}
}

// Failed is a definite structural failure: the two terms have no
// common instance.
type Failed struct {
	Reason FailReason
	Left   kore.Term
	Right  kore.Term
}

func (Failed) isResult() {}

func (r Failed) String() string {
	return fmt.Sprintf("failed (%s): %s vs %s", r.Reason, r.Left, r.Right)
}

// SortReason classifies a sort-level error.
type SortReason int

const (
	// IncompatibleSorts: two sorts with no subsort relation were required
	// to agree.
	IncompatibleSorts SortReason = iota
	// InconsistentSortVariable: one sort variable was bound to two
	// distinct concrete sorts.
	InconsistentSortVariable
)

func (r SortReason) String() string {
	switch r {
	case IncompatibleSorts:
		return "incompatible-sorts"
	case InconsistentSortVariable:
		return "inconsistent-sort-variable"
	default:
		return fmt.Sprintf("SortReason(%d)", int(r))
	}
}

// SortError reports that the terms cannot unify for sort reasons. It is
// distinct from Failed so callers can tell ill-sorted queries from
// genuinely disjoint terms. Var names the offending sort variable for
// InconsistentSortVariable; Left is its first recorded sort, Right the
// rejected one.
type SortError struct {
	Reason SortReason
	Var    string
	Left   kore.Sort
	Right  kore.Sort
}

func (SortError) isResult() {}

func (r SortError) String() string {
	if r.Var != "" {
		return fmt.Sprintf("sort error (%s): %s bound to %s vs %s", r.Reason, r.Var, r.Left, r.Right)
	}
	return fmt.Sprintf("sort error (%s): %s vs %s", r.Reason, r.Left, r.Right)
}
