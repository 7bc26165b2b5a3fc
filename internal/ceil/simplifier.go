// Package ceil computes definedness conditions. A term of a partial
// algebra may fail to denote a value; SimplifyTerm answers "under which
// disjunction of predicate conjunctions is this term defined", as a
// norm.Form. Strategies that cannot decide a term leave behind an
// explicit Ceil predicate for the surrounding engine to discharge.
package ceil

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/korelang/ksym/internal/kore"
	"github.com/korelang/ksym/internal/norm"
	"github.com/korelang/ksym/internal/oracle"
)

// ErrNotPredicate reports an axiom evaluation that kept a non-trivial
// term component. Ceil queries must reduce to pure predicates; a term
// here means the rule set and the simplifier disagree, so the query is
// aborted rather than coerced.
var ErrNotPredicate = errors.New("ceil: axiom result is not a predicate")

// strategy is one partial simplification rule. apply either decides
// the term (ok true) or declines, passing it to the next strategy.
type strategy struct {
	name  string
	apply func(s *Simplifier, side SideCondition, t kore.Term) (norm.Form, bool, error)
}

// allStrategies is tried first to last. The order is load-bearing:
// user axioms run before the builtin total-symbol and collection rules
// because axioms can be more specific, and the side-condition lookup
// runs before both so known facts short-circuit everything.
// Assigned in init: the strategy methods call back into SimplifyTerm,
// which reads this slice, so a declaration-time initializer would be an
// initialization cycle.
var allStrategies []strategy

func init() {
	allStrategies = []strategy{
		{"trivially-defined", (*Simplifier).applyTrivial},
		{"side-condition", (*Simplifier).applySideCondition},
		{"user-axioms", (*Simplifier).applyAxioms},
		{"total-symbol", (*Simplifier).applyTotalSymbol},
		{"collections", (*Simplifier).applyCollections},
		{"injection", (*Simplifier).applyInjection},
	}
}

// StrategyNames returns the chain's strategy names in order. The
// config layer uses it to reject unknown names in disable lists.
func StrategyNames() []string {
	names := make([]string, len(allStrategies))
	for i, st := range allStrategies {
		names[i] = st.name
	}
	return names
}

// Options configures a Simplifier. The zero value works: without an
// evaluator the axiom strategy declines, without an oracle concrete
// lookups decline, and a nil logger means silent.
type Options struct {
	Evaluator AxiomEvaluator
	Oracle    oracle.Oracle
	Logger    *zap.Logger
	// Disabled switches strategies off by name. Validate names against
	// StrategyNames before constructing the simplifier.
	Disabled []string
}

// Simplifier runs the definedness strategy chain over terms. It is
// safe for concurrent use; the memo table is the only shared state.
type Simplifier struct {
	def    *kore.Definition
	eval   AxiomEvaluator
	oracle oracle.Oracle
	logger *zap.Logger

	disabled map[string]bool

	mu   sync.Mutex
	memo map[memoKey]norm.Form
}

// memoKey identifies a term already simplified under one side
// condition.
type memoKey struct {
	side string
	term uint64
}

// New builds a simplifier over def.
func New(def *kore.Definition, opts Options) *Simplifier {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Simplifier{
		def:    def,
		eval:   opts.Evaluator,
		oracle: opts.Oracle,
		logger: logger,
		memo:   make(map[memoKey]norm.Form),
	}
	if len(opts.Disabled) > 0 {
		s.disabled = make(map[string]bool, len(opts.Disabled))
		for _, name := range opts.Disabled {
			s.disabled[name] = true
		}
	}
	return s
}

// SimplifyTerm computes the definedness condition of a term. A nil
// side condition assumes nothing.
func (s *Simplifier) SimplifyTerm(side SideCondition, t kore.Term) (norm.Form, error) {
	if side == nil {
		side = NewSideCondition()
	}
	key := memoKey{side: side.Key(), term: kore.Fingerprint(t)}
	if form, ok := s.lookup(key); ok {
		return form, nil
	}

	for _, st := range allStrategies {
		if s.disabled[st.name] {
			continue
		}
		form, ok, err := st.apply(s, side, t)
		if err != nil {
			return norm.Form{}, err
		}
		if !ok {
			continue
		}
		s.logger.Debug("ceil: strategy decided term",
			zap.String("strategy", st.name),
			zap.String("term", t.String()))
		s.store(key, form)
		return form, nil
	}

	form, err := s.fallback(side, t)
	if err != nil {
		return norm.Form{}, err
	}
	s.store(key, form)
	return form, nil
}

// SimplifyPattern computes the definedness of a constrained term. The
// attached predicate and substitution are conjoined into the result,
// not discarded.
func (s *Simplifier) SimplifyPattern(side SideCondition, p kore.Pattern) (norm.Form, error) {
	if p.IsBottom() {
		return norm.BottomForm(), nil
	}
	form := norm.TopForm()
	if !p.IsTrivialTerm() {
		var err error
		form, err = s.SimplifyTerm(side, p.Term)
		if err != nil {
			return norm.Form{}, err
		}
	}
	return norm.Conjoin(form, patternForm(p)), nil
}

// SimplifyOrPattern distributes definedness over a disjunction of
// patterns: ceil(a \/ b) = ceil(a) \/ ceil(b). The empty disjunction
// is bottom.
func (s *Simplifier) SimplifyOrPattern(side SideCondition, o kore.OrPattern) (norm.Form, error) {
	form := norm.BottomForm()
	for _, p := range o {
		disjunct, err := s.SimplifyPattern(side, p)
		if err != nil {
			return norm.Form{}, err
		}
		form = norm.Disjoin(form, disjunct)
	}
	return form, nil
}

func (s *Simplifier) lookup(key memoKey) (norm.Form, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	form, ok := s.memo[key]
	return form, ok
}

func (s *Simplifier) store(key memoKey, form norm.Form) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memo[key] = form
}

// applyTrivial decides the shapes that always denote a value:
// variables range over values and domain values are literals.
func (s *Simplifier) applyTrivial(_ SideCondition, t kore.Term) (norm.Form, bool, error) {
	switch t.(type) {
	case kore.Variable, kore.DomainValue:
		return norm.TopForm(), true, nil
	}
	return norm.Form{}, false, nil
}

// applySideCondition consults what is already known: an exact
// definedness fact in the side condition, or, for concrete terms, the
// native oracle. An oracle failure aborts the query.
func (s *Simplifier) applySideCondition(side SideCondition, t kore.Term) (norm.Form, bool, error) {
	if side.IsDefined(t) {
		return norm.TopForm(), true, nil
	}
	if s.oracle == nil || !kore.IsConcrete(t) {
		return norm.Form{}, false, nil
	}
	answer, err := s.oracle.Definedness(t)
	if err != nil {
		return norm.Form{}, false, fmt.Errorf("ceil: oracle definedness of %s: %w", t, err)
	}
	switch answer {
	case oracle.True:
		return norm.TopForm(), true, nil
	case oracle.False:
		return norm.BottomForm(), true, nil
	default:
		return norm.Form{}, false, nil
	}
}

// applyAxioms runs the injected axiom evaluator. Its result must be
// predicate-only: a disjunct that kept a term component aborts the
// query with ErrNotPredicate.
func (s *Simplifier) applyAxioms(side SideCondition, t kore.Term) (norm.Form, bool, error) {
	if s.eval == nil {
		return norm.Form{}, false, nil
	}
	disjuncts, applied, err := s.eval.EvaluateCeil(side, t)
	if err != nil {
		return norm.Form{}, false, fmt.Errorf("ceil: evaluate axioms for %s: %w", t, err)
	}
	if !applied {
		return norm.Form{}, false, nil
	}
	form := norm.BottomForm()
	for _, pat := range disjuncts {
		if !pat.IsTrivialTerm() {
			return norm.Form{}, false, fmt.Errorf("%w: %s", ErrNotPredicate, pat.Term)
		}
		form = norm.Disjoin(form, patternForm(pat))
	}
	return form, true, nil
}

// applyTotalSymbol handles applications of total symbols: defined
// exactly when every argument is.
func (s *Simplifier) applyTotalSymbol(side SideCondition, t kore.Term) (norm.Form, bool, error) {
	app, ok := t.(kore.SymbolApplication)
	if !ok || !app.Symbol.IsTotal() {
		return norm.Form{}, false, nil
	}
	form, err := s.childCeils(side, app.Args)
	if err != nil {
		return norm.Form{}, false, err
	}
	return form, true, nil
}

// applyCollections handles the internalized builtin collections.
func (s *Simplifier) applyCollections(side SideCondition, t kore.Term) (norm.Form, bool, error) {
	switch coll := t.(type) {
	case kore.KList:
		// A list is defined when its elements and frame are.
		form, err := s.childCeils(side, kore.Children(coll))
		if err != nil {
			return norm.Form{}, false, err
		}
		return form, true, nil
	case kore.KMap:
		form, err := s.mapCeil(side, coll)
		if err != nil {
			return norm.Form{}, false, err
		}
		return form, true, nil
	case kore.KSet:
		form, err := s.setCeil(side, coll)
		if err != nil {
			return norm.Form{}, false, err
		}
		return form, true, nil
	}
	return norm.Form{}, false, nil
}

// mapCeil requires every key and value defined, the concrete keys
// pairwise distinct, and no concrete key hidden in the opaque rest.
// Two syntactically equal keys collapse the whole form to bottom
// through MkNotEquals.
func (s *Simplifier) mapCeil(side SideCondition, m kore.KMap) (norm.Form, error) {
	form := norm.TopForm()
	for _, kv := range m.Pairs {
		keyForm, err := s.SimplifyTerm(side, kv.Key)
		if err != nil {
			return norm.Form{}, err
		}
		valueForm, err := s.SimplifyTerm(side, kv.Value)
		if err != nil {
			return norm.Form{}, err
		}
		form = norm.Conjoin(form, norm.Conjoin(keyForm, valueForm))
	}

	var constraints []kore.Predicate
	for i := range m.Pairs {
		for j := i + 1; j < len(m.Pairs); j++ {
			constraints = append(constraints, kore.MkNotEquals(m.Pairs[i].Key, m.Pairs[j].Key))
		}
	}
	if m.Rest != nil {
		restForm, err := s.SimplifyTerm(side, m.Rest)
		if err != nil {
			return norm.Form{}, err
		}
		form = norm.Conjoin(form, restForm)
		for _, kv := range m.Pairs {
			constraints = append(constraints, kore.Not{Body: kore.In{Element: kv.Key, Container: m.Rest}})
		}
	}
	if len(constraints) > 0 {
		form = norm.Conjoin(form, norm.MakeOr(norm.MakeAnd(constraints...)))
	}
	return form, nil
}

// setCeil mirrors mapCeil over set elements.
func (s *Simplifier) setCeil(side SideCondition, set kore.KSet) (norm.Form, error) {
	form := norm.TopForm()
	for _, el := range set.Elems {
		elemForm, err := s.SimplifyTerm(side, el)
		if err != nil {
			return norm.Form{}, err
		}
		form = norm.Conjoin(form, elemForm)
	}

	var constraints []kore.Predicate
	for i := range set.Elems {
		for j := i + 1; j < len(set.Elems); j++ {
			constraints = append(constraints, kore.MkNotEquals(set.Elems[i], set.Elems[j]))
		}
	}
	if set.Rest != nil {
		restForm, err := s.SimplifyTerm(side, set.Rest)
		if err != nil {
			return norm.Form{}, err
		}
		form = norm.Conjoin(form, restForm)
		for _, el := range set.Elems {
			constraints = append(constraints, kore.Not{Body: kore.In{Element: el, Container: set.Rest}})
		}
	}
	if len(constraints) > 0 {
		form = norm.Conjoin(form, norm.MakeOr(norm.MakeAnd(constraints...)))
	}
	return form, nil
}

// applyInjection delegates to the injected child: an embedding into a
// supersort is defined exactly when the embedded term is.
func (s *Simplifier) applyInjection(side SideCondition, t kore.Term) (norm.Form, bool, error) {
	inj, ok := t.(kore.Injection)
	if !ok {
		return norm.Form{}, false, nil
	}
	form, err := s.SimplifyTerm(side, inj.Child)
	if err != nil {
		return norm.Form{}, false, err
	}
	return form, true, nil
}

// fallback wraps the term in an explicit unresolved Ceil. Shapes whose
// definedness is not captured wholesale by that predicate additionally
// conjoin their children's conditions.
func (s *Simplifier) fallback(side SideCondition, t kore.Term) (norm.Form, error) {
	form := norm.SingletonForm(kore.Ceil{Of: t})
	if !needsChildCeils(t) {
		return form, nil
	}
	children, err := s.childCeils(side, kore.Children(t))
	if err != nil {
		return norm.Form{}, err
	}
	return norm.Conjoin(form, children), nil
}

// needsChildCeils classifies every term shape: whether an unresolved
// parent must still propagate its children's definedness. A new shape
// must be added here explicitly.
func needsChildCeils(t kore.Term) bool {
	switch t.(type) {
	case kore.AndTerm, kore.SymbolApplication, kore.Injection, kore.DomainValue,
		kore.KList, kore.KMap, kore.KSet:
		return true
	case kore.Variable:
		return false
	default:
		panic(fmt.Sprintf("ceil: unhandled term shape %T", t))
	}
}

func (s *Simplifier) childCeils(side SideCondition, children []kore.Term) (norm.Form, error) {
	form := norm.TopForm()
	for _, child := range children {
		childForm, err := s.SimplifyTerm(side, child)
		if err != nil {
			return norm.Form{}, err
		}
		form = norm.Conjoin(form, childForm)
	}
	return form, nil
}

// patternForm flattens a predicate-only pattern: the predicate in
// normal form, conjoined with the substitution read back as
// equalities.
func patternForm(p kore.Pattern) norm.Form {
	form := norm.TopForm()
	if p.Predicate != nil {
		form = norm.FromPredicate(p.Predicate)
	}
	if len(p.Subst) == 0 {
		return form
	}
	eqs := make([]kore.Predicate, 0, len(p.Subst))
	for _, name := range p.Subst.SortedNames() {
		img := p.Subst[name]
		eqs = append(eqs, kore.Equals{
			Left:  kore.Variable{Name: name, VarSort: img.Sort()},
			Right: img,
		})
	}
	return norm.Conjoin(form, norm.MakeOr(norm.MakeAnd(eqs...)))
}
