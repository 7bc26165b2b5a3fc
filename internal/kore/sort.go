package kore

import (
	"strings"

	"github.com/samber/lo"
)

// Sort is a type in the term algebra. A sort is either an applied sort
// name (possibly with sort parameters, as in Map{K, V}) or a sort
// variable, which only occurs inside rule patterns and symbol
// declarations and is instantiated during unification.
type Sort interface {
	isSort()
	String() string
}

// SortApp is a concrete sort: a declared sort name applied to zero or
// more sort arguments.
type SortApp struct {
	Name string
	Args []Sort
}

func (SortApp) isSort() {}
func (s SortApp) String() string {
	if len(s.Args) == 0 {
		return s.Name
	}
	args := lo.Map(s.Args, func(a Sort, _ int) string { return a.String() })
	return s.Name + "{" + strings.Join(args, ", ") + "}"
}

// SortVar is a sort variable.
type SortVar struct {
	Name string
}

func (SortVar) isSort() {}
func (s SortVar) String() string {
	return s.Name
}

// MkSort builds a parameterless concrete sort.
func MkSort(name string) Sort {
	return SortApp{Name: name}
}

// SortEqual reports structural equality of two sorts.
func SortEqual(a, b Sort) bool {
	switch left := a.(type) {
	case SortApp:
		right, ok := b.(SortApp)
		if !ok || left.Name != right.Name || len(left.Args) != len(right.Args) {
			return false
		}
		for i := range left.Args {
			if !SortEqual(left.Args[i], right.Args[i]) {
				return false
			}
		}
		return true
	case SortVar:
		right, ok := b.(SortVar)
		return ok && left.Name == right.Name
	default:
		return false
	}
}

// substituteSortVars replaces sort variables by their bound sorts.
// Unbound variables are kept as-is.
func substituteSortVars(s Sort, bindings map[string]Sort) Sort {
	switch sort := s.(type) {
	case SortVar:
		if bound, ok := bindings[sort.Name]; ok {
			return bound
		}
		return sort
	case SortApp:
		if len(sort.Args) == 0 {
			return sort
		}
		args := make([]Sort, len(sort.Args))
		for i, a := range sort.Args {
			args[i] = substituteSortVars(a, bindings)
		}
		return SortApp{Name: sort.Name, Args: args}
	default:
		return s
	}
}
