// Package equation narrows function equations against an argument
// that has been simplified into a disjunction. Narrowing consumes the
// equation's distinguished argument slot: each surviving output
// equation has the disjunct folded into its sides and requires clause,
// with no reference to the original disjunction left behind.
package equation

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-set/v2"
	"github.com/samber/lo"

	"github.com/korelang/ksym/internal/kore"
	"github.com/korelang/ksym/internal/norm"
	"github.com/korelang/ksym/internal/unify"
)

// Equation is the working form of a function-definition axiom: the
// argument slot extracted as a pattern and the requires clause
// flattened into a conjunction list.
type Equation struct {
	Label    string
	Requires []kore.Predicate
	Left     kore.Term
	Right    kore.Term

	// Argument is the slot pattern narrowing operates on. Nil after
	// the slot has been consumed.
	Argument kore.Term
}

// FromAxiom extracts the working form of a definition axiom.
func FromAxiom(ax *kore.Equation) (Equation, error) {
	app, ok := ax.LeftApp()
	if !ok {
		return Equation{}, fmt.Errorf("equation: %s: left-hand side is not a symbol application", ax.Label)
	}
	if ax.Argument < 0 || ax.Argument >= len(app.Args) {
		return Equation{}, fmt.Errorf("equation: %s: argument slot %d out of range for %s/%d",
			ax.Label, ax.Argument, app.Symbol.Name, len(app.Args))
	}
	return Equation{
		Label:    ax.Label,
		Requires: flatten(ax.Requires),
		Left:     ax.Left,
		Right:    ax.Right,
		Argument: app.Args[ax.Argument],
	}, nil
}

// ForSymbol converts every indexed axiom for a head symbol, in
// declaration order.
func ForSymbol(def *kore.Definition, symbolName string) ([]Equation, error) {
	axioms := def.EquationsFor(symbolName)
	out := make([]Equation, 0, len(axioms))
	for _, ax := range axioms {
		eq, err := FromAxiom(ax)
		if err != nil {
			return nil, err
		}
		out = append(out, eq)
	}
	return out, nil
}

// RequiresForm returns the requires clause as a normalized
// conjunction.
func (e Equation) RequiresForm() norm.Conjunction {
	return norm.MakeAnd(e.Requires...)
}

func (e Equation) String() string {
	s := e.Label + ": " + e.Left.String() + " => " + e.Right.String()
	if len(e.Requires) > 0 {
		reqs := lo.Map(e.Requires, func(p kore.Predicate, _ int) string { return p.String() })
		s += " requires " + strings.Join(reqs, " /\\ ")
	}
	return s
}

// SimplifyArgument narrows one equation against an argument
// disjunction. Each disjunct is tried independently, in order:
// a unification success substitutes the disjunct into the equation, a
// remainder keeps the equation with the residual pairs recorded as
// equality requirements, and a failure drops the disjunct. Disjuncts
// without a term contribute nothing.
func SimplifyArgument(def *kore.Definition, eq Equation, disjuncts kore.OrPattern) []Equation {
	if eq.Argument == nil {
		return nil
	}
	var out []Equation
	for _, d := range disjuncts {
		if d.IsBottom() || d.IsTrivialTerm() {
			continue
		}
		narrowed, ok := applyDisjunct(def, eq, d)
		if !ok {
			continue
		}
		out = append(out, narrowed)
	}
	return out
}

// SimplifyAll narrows every equation against the same argument
// disjunction and collects the survivors, equations in input order and
// disjuncts in disjunction order within each.
func SimplifyAll(def *kore.Definition, eqs []Equation, disjuncts kore.OrPattern) []Equation {
	var out []Equation
	for _, eq := range eqs {
		out = append(out, SimplifyArgument(def, eq, disjuncts)...)
	}
	return out
}

// applyDisjunct folds one disjunct into the equation. The requires
// clause accumulates, in order: the substituted original requirements,
// the disjunct's predicate and substitution, bindings the unifier
// imposed on the disjunct's own variables, and any residual pairs as
// equalities.
func applyDisjunct(def *kore.Definition, eq Equation, d kore.Pattern) (Equation, bool) {
	var subst kore.Substitution
	var residual []unify.Pair
	switch res := unify.Terms(def, eq.Argument, d.Term).(type) {
	case unify.Success:
		subst = res.Subst
	case unify.Remainder:
		subst = res.Subst
		residual = res.Pairs
	default:
		return Equation{}, false
	}

	requires := make([]kore.Predicate, 0, len(eq.Requires)+len(residual)+2)
	for _, p := range eq.Requires {
		requires = append(requires, flatten(subst.ApplyToPredicate(p))...)
	}
	if d.Predicate != nil {
		requires = append(requires, flatten(subst.ApplyToPredicate(d.Predicate))...)
	}
	requires = append(requires, bindingEqualities(d.Subst)...)

	eqVars := equationVariables(eq)
	imposed := kore.Substitution{}
	for name, img := range subst {
		if !eqVars.Contains(name) {
			imposed[name] = img
		}
	}
	requires = append(requires, bindingEqualities(imposed)...)

	for _, pair := range residual {
		requires = append(requires, kore.Equals{Left: pair.Left, Right: pair.Right})
	}

	return Equation{
		Label:    eq.Label,
		Requires: requires,
		Left:     subst.ApplyToTerm(eq.Left),
		Right:    subst.ApplyToTerm(eq.Right),
	}, true
}

// flatten splits a predicate into conjuncts, dropping tops.
func flatten(p kore.Predicate) []kore.Predicate {
	if p == nil || p.IsTop() {
		return nil
	}
	if and, ok := p.(kore.And); ok {
		return append(flatten(and.Left), flatten(and.Right)...)
	}
	return []kore.Predicate{p}
}

// bindingEqualities reads a substitution back as equality predicates,
// in name order.
func bindingEqualities(s kore.Substitution) []kore.Predicate {
	if len(s) == 0 {
		return nil
	}
	out := make([]kore.Predicate, 0, len(s))
	for _, name := range s.SortedNames() {
		img := s[name]
		out = append(out, kore.Equals{
			Left:  kore.Variable{Name: name, VarSort: img.Sort()},
			Right: img,
		})
	}
	return out
}

func equationVariables(eq Equation) *set.Set[string] {
	vars := kore.FreeVariables(eq.Left)
	vars.InsertSet(kore.FreeVariables(eq.Right))
	if eq.Argument != nil {
		vars.InsertSet(kore.FreeVariables(eq.Argument))
	}
	for _, p := range eq.Requires {
		vars.InsertSet(kore.PredicateFreeVariables(p))
	}
	return vars
}
