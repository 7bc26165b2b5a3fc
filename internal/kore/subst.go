package kore

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-set/v2"
)

// Substitution maps variable names to terms. Keys are unique; the
// variable's declared sort is recoverable from where it occurs, and the
// unification engine only binds a name once.
type Substitution map[string]Term

// Clone returns a shallow copy; bound terms are immutable and shared.
func (s Substitution) Clone() Substitution {
	out := make(Substitution, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Equal reports whether two substitutions bind the same names to equal
// terms.
func (s Substitution) Equal(other Substitution) bool {
	if len(s) != len(other) {
		return false
	}
	for k, v := range s {
		w, ok := other[k]
		if !ok || !TermEqual(v, w) {
			return false
		}
	}
	return true
}

// SortedNames returns the bound names in lexicographic order, for
// deterministic iteration.
func (s Substitution) SortedNames() []string {
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (s Substitution) String() string {
	out := "{"
	for i, name := range s.SortedNames() {
		if i > 0 {
			out += ", "
		}
		out += name + " -> " + s[name].String()
	}
	return out + "}"
}

// FreeVariables collects the names of all variables occurring in a term.
func FreeVariables(t Term) *set.Set[string] {
	vars := set.New[string](4)
	collectTermVars(t, vars)
	return vars
}

func collectTermVars(t Term, vars *set.Set[string]) {
	if v, ok := t.(Variable); ok {
		vars.Insert(v.Name)
		return
	}
	for _, c := range Children(t) {
		collectTermVars(c, vars)
	}
}

// PredicateFreeVariables collects the free variable names of a
// predicate; variables bound by a quantifier are excluded within its
// body.
func PredicateFreeVariables(p Predicate) *set.Set[string] {
	vars := set.New[string](4)
	collectPredicateVars(p, vars)
	return vars
}

func collectPredicateVars(p Predicate, vars *set.Set[string]) {
	switch pred := p.(type) {
	case Top, Bottom:
	case Ceil:
		collectTermVars(pred.Of, vars)
	case Equals:
		collectTermVars(pred.Left, vars)
		collectTermVars(pred.Right, vars)
	case In:
		collectTermVars(pred.Element, vars)
		collectTermVars(pred.Container, vars)
	case Exists:
		inner := PredicateFreeVariables(pred.Body)
		inner.Remove(pred.Var.Name)
		vars.InsertSet(inner)
	case Forall:
		inner := PredicateFreeVariables(pred.Body)
		inner.Remove(pred.Var.Name)
		vars.InsertSet(inner)
	case And:
		collectPredicateVars(pred.Left, vars)
		collectPredicateVars(pred.Right, vars)
	case Or:
		collectPredicateVars(pred.Left, vars)
		collectPredicateVars(pred.Right, vars)
	case Not:
		collectPredicateVars(pred.Body, vars)
	case Iff:
		collectPredicateVars(pred.Left, vars)
		collectPredicateVars(pred.Right, vars)
	case Implies:
		collectPredicateVars(pred.Left, vars)
		collectPredicateVars(pred.Right, vars)
	case BoolTerm:
		collectTermVars(pred.Term, vars)
	default:
		panic(fmt.Sprintf("kore: unhandled predicate shape %T", p))
	}
}

// IsConcrete reports whether a term contains no variables.
func IsConcrete(t Term) bool {
	return FreeVariables(t).Empty()
}

// ApplyToTerm applies the substitution to a term. Terms contain no
// binders, so this is a plain structural replacement.
func (s Substitution) ApplyToTerm(t Term) Term {
	if len(s) == 0 {
		return t
	}
	switch term := t.(type) {
	case Variable:
		if bound, ok := s[term.Name]; ok {
			return bound
		}
		return term
	case DomainValue:
		return term
	case SymbolApplication:
		args := make([]Term, len(term.Args))
		for i, a := range term.Args {
			args[i] = s.ApplyToTerm(a)
		}
		return SymbolApplication{Symbol: term.Symbol, SortParams: term.SortParams, Args: args}
	case AndTerm:
		return AndTerm{Left: s.ApplyToTerm(term.Left), Right: s.ApplyToTerm(term.Right)}
	case Injection:
		return Injection{From: term.From, To: term.To, Child: s.ApplyToTerm(term.Child)}
	case KList:
		elems := make([]Term, len(term.Elems))
		for i, e := range term.Elems {
			elems[i] = s.ApplyToTerm(e)
		}
		var frame Term
		if term.Frame != nil {
			frame = s.ApplyToTerm(term.Frame)
		}
		return KList{CollSort: term.CollSort, Elems: elems, Frame: frame}
	case KMap:
		pairs := make([]KV, len(term.Pairs))
		for i, kv := range term.Pairs {
			pairs[i] = KV{Key: s.ApplyToTerm(kv.Key), Value: s.ApplyToTerm(kv.Value)}
		}
		var rest Term
		if term.Rest != nil {
			rest = s.ApplyToTerm(term.Rest)
		}
		return KMap{CollSort: term.CollSort, Pairs: pairs, Rest: rest}
	case KSet:
		elems := make([]Term, len(term.Elems))
		for i, e := range term.Elems {
			elems[i] = s.ApplyToTerm(e)
		}
		var rest Term
		if term.Rest != nil {
			rest = s.ApplyToTerm(term.Rest)
		}
		return KSet{CollSort: term.CollSort, Elems: elems, Rest: rest}
	default:
		panic(fmt.Sprintf("kore: unhandled term shape %T", t))
	}
}

// ApplyToPredicate applies the substitution to a predicate,
// alpha-renaming quantified variables where a substituted image would
// otherwise capture them.
func (s Substitution) ApplyToPredicate(p Predicate) Predicate {
	if len(s) == 0 {
		return p
	}
	switch pred := p.(type) {
	case Top, Bottom:
		return pred
	case Ceil:
		return Ceil{Of: s.ApplyToTerm(pred.Of)}
	case Equals:
		return Equals{Left: s.ApplyToTerm(pred.Left), Right: s.ApplyToTerm(pred.Right)}
	case In:
		return In{Element: s.ApplyToTerm(pred.Element), Container: s.ApplyToTerm(pred.Container)}
	case Exists:
		v, body := s.applyUnderBinder(pred.Var, pred.Body)
		return Exists{Var: v, Body: body}
	case Forall:
		v, body := s.applyUnderBinder(pred.Var, pred.Body)
		return Forall{Var: v, Body: body}
	case And:
		return And{Left: s.ApplyToPredicate(pred.Left), Right: s.ApplyToPredicate(pred.Right)}
	case Or:
		return Or{Left: s.ApplyToPredicate(pred.Left), Right: s.ApplyToPredicate(pred.Right)}
	case Not:
		return Not{Body: s.ApplyToPredicate(pred.Body)}
	case Iff:
		return Iff{Left: s.ApplyToPredicate(pred.Left), Right: s.ApplyToPredicate(pred.Right)}
	case Implies:
		return Implies{Left: s.ApplyToPredicate(pred.Left), Right: s.ApplyToPredicate(pred.Right)}
	case BoolTerm:
		return BoolTerm{Term: s.ApplyToTerm(pred.Term)}
	default:
		panic(fmt.Sprintf("kore: unhandled predicate shape %T", p))
	}
}

// applyUnderBinder applies the substitution to a quantifier body. The
// bound variable shadows any binding of the same name; when some
// substituted image mentions the bound name, the binder is renamed to a
// fresh variant first.
func (s Substitution) applyUnderBinder(v Variable, body Predicate) (Variable, Predicate) {
	inner := s.Clone()
	delete(inner, v.Name)
	if len(inner) == 0 {
		return v, body
	}

	captured := false
	avoid := set.New[string](8)
	for name, img := range inner {
		if !PredicateFreeVariables(body).Contains(name) {
			continue
		}
		imgVars := FreeVariables(img)
		if imgVars.Contains(v.Name) {
			captured = true
		}
		avoid.InsertSet(imgVars)
	}
	if !captured {
		return v, inner.ApplyToPredicate(body)
	}

	avoid.InsertSet(PredicateFreeVariables(body))
	fresh := freshName(v.Name, avoid)
	renamed := Variable{Name: fresh, VarSort: v.VarSort}
	rename := Substitution{v.Name: renamed}
	return renamed, inner.ApplyToPredicate(rename.ApplyToPredicate(body))
}

func freshName(base string, avoid *set.Set[string]) string {
	for i := 0; ; i++ {
		candidate := fmt.Sprintf("%s%d", base, i)
		if !avoid.Contains(candidate) {
			return candidate
		}
	}
}

// OccursIn reports whether the named variable occurs anywhere in the
// term.
func OccursIn(name string, t Term) bool {
	return FreeVariables(t).Contains(name)
}
