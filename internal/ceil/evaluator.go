package ceil

import (
	"go.uber.org/zap"

	"github.com/korelang/ksym/internal/kore"
	"github.com/korelang/ksym/internal/unify"
)

// AxiomEvaluator applies user definedness axioms to a term. The
// returned disjunction is the term's definedness condition; applied
// reports whether any axiom matched at all, so the caller can fall
// through to the builtin rules when none did.
type AxiomEvaluator interface {
	EvaluateCeil(side SideCondition, t kore.Term) (kore.OrPattern, bool, error)
}

// DefinitionEvaluator evaluates ceil axioms straight out of a loaded
// definition, by unifying each axiom pattern against the query term.
// Only clean unification successes apply an axiom; remainders mean the
// axiom cannot be committed to and are skipped.
type DefinitionEvaluator struct {
	def    *kore.Definition
	logger *zap.Logger
}

var _ AxiomEvaluator = (*DefinitionEvaluator)(nil)

// NewDefinitionEvaluator builds an evaluator over def. A nil logger
// means silent.
func NewDefinitionEvaluator(def *kore.Definition, logger *zap.Logger) *DefinitionEvaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefinitionEvaluator{def: def, logger: logger}
}

// EvaluateCeil tries every definedness axiom declared for the term's
// head symbol. Each match contributes one disjunct: the axiom's
// requires and result predicates under the unifier, plus any bindings
// the unifier imposed on the query term's own variables.
func (e *DefinitionEvaluator) EvaluateCeil(side SideCondition, t kore.Term) (kore.OrPattern, bool, error) {
	app, ok := t.(kore.SymbolApplication)
	if !ok {
		return nil, false, nil
	}
	axioms := e.def.CeilAxiomsFor(app.Symbol.Name)
	if len(axioms) == 0 {
		return nil, false, nil
	}

	var out kore.OrPattern
	applied := false
	for _, ax := range axioms {
		// The index guarantees the pattern is an application of the
		// same head, so unification starts at the arguments.
		result := unify.Arguments(e.def, ax.Pattern.(kore.SymbolApplication), app)
		success, ok := result.(unify.Success)
		if !ok {
			e.logger.Debug("ceil axiom did not apply",
				zap.String("axiom", ax.Label),
				zap.String("term", t.String()),
				zap.String("result", result.String()))
			continue
		}
		applied = true
		out = append(out, axiomDisjunct(ax, success.Subst))
		e.logger.Debug("ceil axiom applied",
			zap.String("axiom", ax.Label),
			zap.String("term", t.String()))
	}
	if !applied {
		return nil, false, nil
	}
	return out, true, nil
}

// axiomDisjunct instantiates one matched axiom. Bindings of the
// axiom's own variables are substituted away; bindings of the query
// term's variables are genuine constraints and surface in the
// pattern's substitution.
func axiomDisjunct(ax *kore.CeilAxiom, subst kore.Substitution) kore.Pattern {
	pred := kore.Predicate(kore.Top{})
	if ax.Requires != nil && !ax.Requires.IsTop() {
		pred = ax.Requires
	}
	if ax.Result != nil && !ax.Result.IsTop() {
		if pred.IsTop() {
			pred = ax.Result
		} else {
			pred = kore.And{Left: pred, Right: ax.Result}
		}
	}
	pred = subst.ApplyToPredicate(pred)

	axiomVars := kore.FreeVariables(ax.Pattern)
	queryBindings := kore.Substitution{}
	for name, img := range subst {
		if !axiomVars.Contains(name) {
			queryBindings[name] = img
		}
	}
	return kore.Pattern{Predicate: pred, Subst: queryBindings}
}
