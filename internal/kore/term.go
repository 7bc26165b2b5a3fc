package kore

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Term is a symbolic term. Terms are immutable values constructed
// bottom-up; every operation over them is pure and returns new terms.
type Term interface {
	isTerm()
	// Sort returns the sort the term lives in.
	Sort() Sort
	String() string
}

// SymbolApplication is an application of a declared symbol to argument
// terms, with one sort argument per sort variable of the symbol.
type SymbolApplication struct {
	Symbol     *Symbol
	SortParams []Sort
	Args       []Term
}

func (SymbolApplication) isTerm() {}

func (t SymbolApplication) Sort() Sort {
	if len(t.Symbol.SortVars) == 0 {
		return t.Symbol.ResultSort
	}
	bindings := make(map[string]Sort, len(t.Symbol.SortVars))
	for i, v := range t.Symbol.SortVars {
		if i < len(t.SortParams) {
			bindings[v] = t.SortParams[i]
		}
	}
	return substituteSortVars(t.Symbol.ResultSort, bindings)
}

func (t SymbolApplication) String() string {
	var sb strings.Builder
	sb.WriteString(t.Symbol.Name)
	if len(t.SortParams) > 0 {
		params := lo.Map(t.SortParams, func(s Sort, _ int) string { return s.String() })
		sb.WriteString("{" + strings.Join(params, ", ") + "}")
	}
	args := lo.Map(t.Args, func(a Term, _ int) string { return a.String() })
	sb.WriteString("(" + strings.Join(args, ", ") + ")")
	return sb.String()
}

// Variable is a named variable of a fixed sort.
type Variable struct {
	Name    string
	VarSort Sort
}

func (Variable) isTerm() {}

func (t Variable) Sort() Sort { return t.VarSort }

func (t Variable) String() string {
	return t.Name + ":" + t.VarSort.String()
}

// DomainValue is an opaque literal of a builtin sort, compared by exact
// byte equality within a sort.
type DomainValue struct {
	ValueSort Sort
	Value     []byte
}

func (DomainValue) isTerm() {}

func (t DomainValue) Sort() Sort { return t.ValueSort }

func (t DomainValue) String() string {
	return fmt.Sprintf("\\dv{%s}(%q)", t.ValueSort, t.Value)
}

// AndTerm is an unresolved conjunction of two terms pending unification.
// Both sides live in the same sort.
type AndTerm struct {
	Left  Term
	Right Term
}

func (AndTerm) isTerm() {}

func (t AndTerm) Sort() Sort { return t.Left.Sort() }

func (t AndTerm) String() string {
	return fmt.Sprintf("\\and(%s, %s)", t.Left, t.Right)
}

// Injection embeds a term of a subsort into a supersort. Nested
// injections are collapsed on construction, so Child is never itself an
// Injection.
type Injection struct {
	From  Sort
	To    Sort
	Child Term
}

func (Injection) isTerm() {}

func (t Injection) Sort() Sort { return t.To }

func (t Injection) String() string {
	return fmt.Sprintf("inj{%s, %s}(%s)", t.From, t.To, t.Child)
}

// MkInjection builds an injection, collapsing a nested injection into a
// single hop from the innermost source sort.
func MkInjection(from, to Sort, child Term) Term {
	if inner, ok := child.(Injection); ok {
		return Injection{From: inner.From, To: to, Child: inner.Child}
	}
	return Injection{From: from, To: to, Child: child}
}

// KList is an internalized builtin list: a concrete prefix of elements
// and an optional opaque frame (usually a variable) for the rest.
type KList struct {
	CollSort Sort
	Elems    []Term
	Frame    Term // nil when the list is fully concrete
}

func (KList) isTerm() {}

func (t KList) Sort() Sort { return t.CollSort }

func (t KList) String() string {
	elems := lo.Map(t.Elems, func(e Term, _ int) string { return e.String() })
	if t.Frame == nil {
		return "[" + strings.Join(elems, ", ") + "]"
	}
	return "[" + strings.Join(elems, ", ") + " | " + t.Frame.String() + "]"
}

// KV is one key/value entry of an internalized map.
type KV struct {
	Key   Term
	Value Term
}

// KMap is an internalized builtin map: concrete key/value pairs plus an
// optional opaque rest.
type KMap struct {
	CollSort Sort
	Pairs    []KV
	Rest     Term // nil when the map is fully concrete
}

func (KMap) isTerm() {}

func (t KMap) Sort() Sort { return t.CollSort }

func (t KMap) String() string {
	pairs := lo.Map(t.Pairs, func(kv KV, _ int) string {
		return kv.Key.String() + " -> " + kv.Value.String()
	})
	if t.Rest == nil {
		return "{" + strings.Join(pairs, ", ") + "}"
	}
	return "{" + strings.Join(pairs, ", ") + " | " + t.Rest.String() + "}"
}

// KSet is an internalized builtin set: concrete elements plus an
// optional opaque rest.
type KSet struct {
	CollSort Sort
	Elems    []Term
	Rest     Term // nil when the set is fully concrete
}

func (KSet) isTerm() {}

func (t KSet) Sort() Sort { return t.CollSort }

func (t KSet) String() string {
	elems := lo.Map(t.Elems, func(e Term, _ int) string { return e.String() })
	if t.Rest == nil {
		return "#{" + strings.Join(elems, ", ") + "}"
	}
	return "#{" + strings.Join(elems, ", ") + " | " + t.Rest.String() + "}"
}

// Helper constructors, mainly for tests and internalization code.

// App applies a symbol without sort parameters.
func App(sym *Symbol, args ...Term) Term {
	return SymbolApplication{Symbol: sym, Args: args}
}

// AppWithSorts applies a symbol with explicit sort parameters.
func AppWithSorts(sym *Symbol, sortParams []Sort, args ...Term) Term {
	return SymbolApplication{Symbol: sym, SortParams: sortParams, Args: args}
}

// Var builds a variable term.
func Var(name string, sort Sort) Variable {
	return Variable{Name: name, VarSort: sort}
}

// DV builds a domain value from a string literal.
func DV(sort Sort, value string) DomainValue {
	return DomainValue{ValueSort: sort, Value: []byte(value)}
}

// Children returns the direct subterms of a term in a fixed order.
// Leaves return nil.
func Children(t Term) []Term {
	switch term := t.(type) {
	case SymbolApplication:
		return term.Args
	case Variable, DomainValue:
		return nil
	case AndTerm:
		return []Term{term.Left, term.Right}
	case Injection:
		return []Term{term.Child}
	case KList:
		children := make([]Term, 0, len(term.Elems)+1)
		children = append(children, term.Elems...)
		if term.Frame != nil {
			children = append(children, term.Frame)
		}
		return children
	case KMap:
		children := make([]Term, 0, 2*len(term.Pairs)+1)
		for _, kv := range term.Pairs {
			children = append(children, kv.Key, kv.Value)
		}
		if term.Rest != nil {
			children = append(children, term.Rest)
		}
		return children
	case KSet:
		children := make([]Term, 0, len(term.Elems)+1)
		children = append(children, term.Elems...)
		if term.Rest != nil {
			children = append(children, term.Rest)
		}
		return children
	default:
		panic(fmt.Sprintf("kore: unhandled term shape %T", t))
	}
}
