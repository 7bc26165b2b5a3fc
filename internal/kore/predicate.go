package kore

import "fmt"

// Predicate is a boolean-valued proposition over terms. Like terms,
// predicates are immutable values.
//
// Equal, IsTop and IsBottom give the normal-form algebra a uniform
// element interface without reflecting on the concrete shape.
type Predicate interface {
	isPredicate()
	String() string
	Equal(other Predicate) bool
	IsTop() bool
	IsBottom() bool
}

// Top is the always-true predicate.
type Top struct{}

func (Top) isPredicate()   {}
func (Top) String() string { return "\\top" }
func (Top) Equal(other Predicate) bool {
	_, ok := other.(Top)
	return ok
}
func (Top) IsTop() bool    { return true }
func (Top) IsBottom() bool { return false }

// Bottom is the always-false predicate.
type Bottom struct{}

func (Bottom) isPredicate()   {}
func (Bottom) String() string { return "\\bottom" }
func (Bottom) Equal(other Predicate) bool {
	_, ok := other.(Bottom)
	return ok
}
func (Bottom) IsTop() bool    { return false }
func (Bottom) IsBottom() bool { return true }

// Ceil asserts that a term is defined.
type Ceil struct {
	Of Term
}

func (Ceil) isPredicate() {}
func (p Ceil) String() string {
	return fmt.Sprintf("\\ceil(%s)", p.Of)
}
func (p Ceil) Equal(other Predicate) bool {
	o, ok := other.(Ceil)
	return ok && TermEqual(p.Of, o.Of)
}
func (Ceil) IsTop() bool    { return false }
func (Ceil) IsBottom() bool { return false }

// Equals asserts equality of two terms of the same sort.
type Equals struct {
	Left  Term
	Right Term
}

func (Equals) isPredicate() {}
func (p Equals) String() string {
	return fmt.Sprintf("\\equals(%s, %s)", p.Left, p.Right)
}
func (p Equals) Equal(other Predicate) bool {
	o, ok := other.(Equals)
	return ok && TermEqual(p.Left, o.Left) && TermEqual(p.Right, o.Right)
}
func (Equals) IsTop() bool    { return false }
func (Equals) IsBottom() bool { return false }

// In asserts that Element is contained in Container.
type In struct {
	Element   Term
	Container Term
}

func (In) isPredicate() {}
func (p In) String() string {
	return fmt.Sprintf("\\in(%s, %s)", p.Element, p.Container)
}
func (p In) Equal(other Predicate) bool {
	o, ok := other.(In)
	return ok && TermEqual(p.Element, o.Element) && TermEqual(p.Container, o.Container)
}
func (In) IsTop() bool    { return false }
func (In) IsBottom() bool { return false }

// Exists is existential quantification over a variable.
type Exists struct {
	Var  Variable
	Body Predicate
}

func (Exists) isPredicate() {}
func (p Exists) String() string {
	return fmt.Sprintf("\\exists(%s, %s)", p.Var, p.Body)
}
func (p Exists) Equal(other Predicate) bool {
	o, ok := other.(Exists)
	return ok && TermEqual(p.Var, o.Var) && p.Body.Equal(o.Body)
}
func (Exists) IsTop() bool    { return false }
func (Exists) IsBottom() bool { return false }

// Forall is universal quantification over a variable.
type Forall struct {
	Var  Variable
	Body Predicate
}

func (Forall) isPredicate() {}
func (p Forall) String() string {
	return fmt.Sprintf("\\forall(%s, %s)", p.Var, p.Body)
}
func (p Forall) Equal(other Predicate) bool {
	o, ok := other.(Forall)
	return ok && TermEqual(p.Var, o.Var) && p.Body.Equal(o.Body)
}
func (Forall) IsTop() bool    { return false }
func (Forall) IsBottom() bool { return false }

// And is binary conjunction. Flat conjunctions are normally carried as
// MultiAnd; the binary node exists for folded predicate trees.
type And struct {
	Left  Predicate
	Right Predicate
}

func (And) isPredicate() {}
func (p And) String() string {
	return fmt.Sprintf("\\and(%s, %s)", p.Left, p.Right)
}
func (p And) Equal(other Predicate) bool {
	o, ok := other.(And)
	return ok && p.Left.Equal(o.Left) && p.Right.Equal(o.Right)
}
func (And) IsTop() bool    { return false }
func (And) IsBottom() bool { return false }

// Or is binary disjunction.
type Or struct {
	Left  Predicate
	Right Predicate
}

func (Or) isPredicate() {}
func (p Or) String() string {
	return fmt.Sprintf("\\or(%s, %s)", p.Left, p.Right)
}
func (p Or) Equal(other Predicate) bool {
	o, ok := other.(Or)
	return ok && p.Left.Equal(o.Left) && p.Right.Equal(o.Right)
}
func (Or) IsTop() bool    { return false }
func (Or) IsBottom() bool { return false }

// Not is negation.
type Not struct {
	Body Predicate
}

func (Not) isPredicate() {}
func (p Not) String() string {
	return fmt.Sprintf("\\not(%s)", p.Body)
}
func (p Not) Equal(other Predicate) bool {
	o, ok := other.(Not)
	return ok && p.Body.Equal(o.Body)
}
func (Not) IsTop() bool    { return false }
func (Not) IsBottom() bool { return false }

// Iff is logical equivalence.
type Iff struct {
	Left  Predicate
	Right Predicate
}

func (Iff) isPredicate() {}
func (p Iff) String() string {
	return fmt.Sprintf("\\iff(%s, %s)", p.Left, p.Right)
}
func (p Iff) Equal(other Predicate) bool {
	o, ok := other.(Iff)
	return ok && p.Left.Equal(o.Left) && p.Right.Equal(o.Right)
}
func (Iff) IsTop() bool    { return false }
func (Iff) IsBottom() bool { return false }

// Implies is logical implication.
type Implies struct {
	Left  Predicate
	Right Predicate
}

func (Implies) isPredicate() {}
func (p Implies) String() string {
	return fmt.Sprintf("\\implies(%s, %s)", p.Left, p.Right)
}
func (p Implies) Equal(other Predicate) bool {
	o, ok := other.(Implies)
	return ok && p.Left.Equal(o.Left) && p.Right.Equal(o.Right)
}
func (Implies) IsTop() bool    { return false }
func (Implies) IsBottom() bool { return false }

// BoolTerm wraps a term of boolean sort as a predicate.
type BoolTerm struct {
	Term Term
}

func (BoolTerm) isPredicate() {}
func (p BoolTerm) String() string {
	return p.Term.String()
}
func (p BoolTerm) Equal(other Predicate) bool {
	o, ok := other.(BoolTerm)
	return ok && TermEqual(p.Term, o.Term)
}
func (BoolTerm) IsTop() bool    { return false }
func (BoolTerm) IsBottom() bool { return false }

// MkNotEquals builds the disequality of two terms, deciding it
// immediately when both sides are domain values of the same sort.
func MkNotEquals(left, right Term) Predicate {
	if TermEqual(left, right) {
		return Bottom{}
	}
	lv, lok := left.(DomainValue)
	rv, rok := right.(DomainValue)
	if lok && rok && SortEqual(lv.ValueSort, rv.ValueSort) {
		// Distinct byte values of one builtin sort denote distinct
		// elements.
		return Top{}
	}
	return Not{Body: Equals{Left: left, Right: right}}
}
