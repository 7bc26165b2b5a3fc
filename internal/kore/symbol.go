package kore

// SymbolKind classifies a symbol's role in the term algebra. The kind
// drives unification: constructors are injective and pairwise disjoint,
// so two applications of distinct constructors can never be equal, while
// function symbols must be evaluated before anything can be concluded.
type SymbolKind int

const (
	// Constructor symbols are injective and pairwise disjoint.
	Constructor SymbolKind = iota
	// TotalFunction symbols are defined on their whole domain.
	TotalFunction
	// PartialFunction symbols may be undefined for some inputs,
	// requiring definedness (ceil) reasoning.
	PartialFunction
	// SortInjection is the subsort embedding symbol. Applications of it
	// are internalized into Injection terms.
	SortInjection
)

func (k SymbolKind) String() string {
	switch k {
	case Constructor:
		return "constructor"
	case TotalFunction:
		return "total-function"
	case PartialFunction:
		return "partial-function"
	case SortInjection:
		return "sort-injection"
	default:
		return "?"
	}
}

// CollectionKind distinguishes the builtin associative collections.
type CollectionKind int

const (
	CollectionList CollectionKind = iota
	CollectionMap
	CollectionSet
)

func (k CollectionKind) String() string {
	switch k {
	case CollectionList:
		return "list"
	case CollectionMap:
		return "map"
	case CollectionSet:
		return "set"
	default:
		return "?"
	}
}

// CollectionSpec is attached to the concatenation symbol of a builtin
// collection sort. It names the unit and element symbols so that chains
// of concatenations can be internalized into KList/KMap/KSet values.
type CollectionSpec struct {
	Kind    CollectionKind
	Unit    string
	Element string
}

// Symbol is a declared symbol: name, sort-variable parameters, argument
// sorts, result sort and attributes. Symbols are shared across all terms
// built from one definition, so they are handled by pointer.
type Symbol struct {
	Name       string
	SortVars   []string
	ArgSorts   []Sort
	ResultSort Sort
	Kind       SymbolKind

	Idempotent  bool
	Associative bool

	// Collection is non-nil on the concatenation symbol of a builtin
	// collection sort.
	Collection *CollectionSpec
}

// IsConstructor reports whether applications of this symbol decompose
// structurally during unification.
func (s *Symbol) IsConstructor() bool {
	return s.Kind == Constructor
}

// IsTotal reports whether the symbol is defined on its whole domain.
// Constructors and sort injections are always total.
func (s *Symbol) IsTotal() bool {
	return s.Kind == Constructor || s.Kind == TotalFunction || s.Kind == SortInjection
}

// IsFunction reports whether the symbol requires evaluation, i.e. it is
// not a constructor or injection.
func (s *Symbol) IsFunction() bool {
	return s.Kind == TotalFunction || s.Kind == PartialFunction
}

func (s *Symbol) String() string {
	return s.Name
}
