// Package norm keeps predicate collections in disjunctive normal form.
// MultiAnd and MultiOr are flattened, duplicate-free conjunction and
// disjunction layers over any element type that can report itself top
// or bottom; stacking them as MultiOr over MultiAnd gives the normal
// form the simplifiers pass around.
package norm

// Element is what the normal-form layers operate on. Equal drives
// deduplication, IsTop and IsBottom drive absorption.
type Element[T any] interface {
	Equal(T) bool
	IsTop() bool
	IsBottom() bool
}

// MultiAnd is a normalized conjunction: no top elements, no duplicates,
// and a bottom element only as its sole member. Insertion order is
// preserved, so rebuilding a conjunction from the same inputs is
// deterministic.
type MultiAnd[T Element[T]] struct {
	elems []T
}

// MakeAnd normalizes a conjunction. Top elements vanish, duplicates
// collapse, and any bottom element absorbs the whole conjunction.
func MakeAnd[T Element[T]](elems ...T) MultiAnd[T] {
	out := MultiAnd[T]{}
	for _, e := range elems {
		if e.IsBottom() {
			return MultiAnd[T]{elems: []T{e}}
		}
		if e.IsTop() || containsElem(out.elems, e) {
			continue
		}
		out.elems = append(out.elems, e)
	}
	return out
}

func containsElem[T Element[T]](elems []T, e T) bool {
	for _, have := range elems {
		if have.Equal(e) {
			return true
		}
	}
	return false
}

// Items returns the conjuncts in insertion order. Callers must not
// mutate the slice.
func (m MultiAnd[T]) Items() []T { return m.elems }

// Size returns the number of conjuncts.
func (m MultiAnd[T]) Size() int { return len(m.elems) }

// IsTop reports the empty conjunction.
func (m MultiAnd[T]) IsTop() bool { return len(m.elems) == 0 }

// IsBottom reports a conjunction absorbed by a bottom element.
func (m MultiAnd[T]) IsBottom() bool {
	return len(m.elems) == 1 && m.elems[0].IsBottom()
}

// Equal compares two normalized conjunctions as sets.
func (m MultiAnd[T]) Equal(other MultiAnd[T]) bool {
	if len(m.elems) != len(other.elems) {
		return false
	}
	for _, e := range m.elems {
		if !containsElem(other.elems, e) {
			return false
		}
	}
	return true
}

// With conjoins extra elements, renormalizing.
func (m MultiAnd[T]) With(elems ...T) MultiAnd[T] {
	return MakeAnd(append(append([]T{}, m.elems...), elems...)...)
}

// ConjoinAnds merges two conjunctions.
func ConjoinAnds[T Element[T]](a, b MultiAnd[T]) MultiAnd[T] {
	return a.With(b.elems...)
}

// MultiOr is a normalized disjunction: no bottom elements, no
// duplicates, and a top element only as its sole member. The empty
// disjunction is bottom.
type MultiOr[T Element[T]] struct {
	elems []T
}

// MakeOr normalizes a disjunction. Bottom elements vanish, duplicates
// collapse, and any top element absorbs the whole disjunction.
func MakeOr[T Element[T]](elems ...T) MultiOr[T] {
	out := MultiOr[T]{}
	for _, e := range elems {
		if e.IsTop() {
			return MultiOr[T]{elems: []T{e}}
		}
		if e.IsBottom() || containsElem(out.elems, e) {
			continue
		}
		out.elems = append(out.elems, e)
	}
	return out
}

// Items returns the disjuncts in insertion order. Callers must not
// mutate the slice.
func (m MultiOr[T]) Items() []T { return m.elems }

// Size returns the number of disjuncts.
func (m MultiOr[T]) Size() int { return len(m.elems) }

// IsBottom reports the empty disjunction.
func (m MultiOr[T]) IsBottom() bool { return len(m.elems) == 0 }

// IsTop reports a disjunction absorbed by a top element.
func (m MultiOr[T]) IsTop() bool {
	return len(m.elems) == 1 && m.elems[0].IsTop()
}

// Equal compares two normalized disjunctions as sets.
func (m MultiOr[T]) Equal(other MultiOr[T]) bool {
	if len(m.elems) != len(other.elems) {
		return false
	}
	for _, e := range m.elems {
		if !containsElem(other.elems, e) {
			return false
		}
	}
	return true
}

// With disjoins extra elements, renormalizing.
func (m MultiOr[T]) With(elems ...T) MultiOr[T] {
	return MakeOr(append(append([]T{}, m.elems...), elems...)...)
}

// DisjoinOrs merges two disjunctions.
func DisjoinOrs[T Element[T]](a, b MultiOr[T]) MultiOr[T] {
	return a.With(b.elems...)
}

// Distribute conjoins two DNF layers by cross product: every disjunct
// of a is conjoined with every disjunct of b.
func Distribute[T Element[T]](a, b MultiOr[MultiAnd[T]]) MultiOr[MultiAnd[T]] {
	if a.IsBottom() || b.IsBottom() {
		return MultiOr[MultiAnd[T]]{}
	}
	crossed := make([]MultiAnd[T], 0, len(a.elems)*len(b.elems))
	for _, left := range a.elems {
		for _, right := range b.elems {
			crossed = append(crossed, ConjoinAnds(left, right))
		}
	}
	return MakeOr(crossed...)
}
