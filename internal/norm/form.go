package norm

import (
	"strings"

	"github.com/korelang/ksym/internal/kore"
)

// Form is the engine's working constraint shape: a disjunction of
// conjunctions of predicates.
type Form = MultiOr[MultiAnd[kore.Predicate]]

// Conjunction is one disjunct of a Form.
type Conjunction = MultiAnd[kore.Predicate]

// TopForm is the always-true constraint: one empty conjunction.
func TopForm() Form {
	return MakeOr(MakeAnd[kore.Predicate]())
}

// BottomForm is the unsatisfiable constraint: no disjuncts.
func BottomForm() Form {
	return Form{}
}

// SingletonForm wraps one predicate as a one-disjunct form.
func SingletonForm(p kore.Predicate) Form {
	return MakeOr(MakeAnd(p))
}

// Conjoin crosses two forms.
func Conjoin(a, b Form) Form {
	return Distribute[kore.Predicate](a, b)
}

// Disjoin merges two forms.
func Disjoin(a, b Form) Form {
	return DisjoinOrs(a, b)
}

// FromPredicate normalizes a predicate tree into DNF. Conjunction and
// disjunction distribute; every other connective is kept whole as an
// atom.
func FromPredicate(p kore.Predicate) Form {
	switch pred := p.(type) {
	case kore.Top:
		return TopForm()
	case kore.Bottom:
		return BottomForm()
	case kore.And:
		return Conjoin(FromPredicate(pred.Left), FromPredicate(pred.Right))
	case kore.Or:
		return Disjoin(FromPredicate(pred.Left), FromPredicate(pred.Right))
	default:
		return SingletonForm(p)
	}
}

// ToPredicate folds a form back into a predicate tree. Conjuncts and
// disjuncts fold left in insertion order.
func ToPredicate(f Form) kore.Predicate {
	if f.IsBottom() {
		return kore.Bottom{}
	}
	disjuncts := f.Items()
	out := conjunctionToPredicate(disjuncts[0])
	for _, d := range disjuncts[1:] {
		out = kore.Or{Left: out, Right: conjunctionToPredicate(d)}
	}
	return out
}

func conjunctionToPredicate(c Conjunction) kore.Predicate {
	if c.IsTop() {
		return kore.Top{}
	}
	conjuncts := c.Items()
	out := conjuncts[0]
	for _, p := range conjuncts[1:] {
		out = kore.And{Left: out, Right: p}
	}
	return out
}

// FormString renders a form for logs and test failures.
func FormString(f Form) string {
	if f.IsBottom() {
		return "\\bottom"
	}
	parts := make([]string, 0, f.Size())
	for _, c := range f.Items() {
		if c.IsTop() {
			parts = append(parts, "\\top")
			continue
		}
		conj := make([]string, 0, c.Size())
		for _, p := range c.Items() {
			conj = append(conj, p.String())
		}
		parts = append(parts, "("+strings.Join(conj, " /\\ ")+")")
	}
	return strings.Join(parts, " \\/ ")
}
