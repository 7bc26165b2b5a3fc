package unify

import (
	"github.com/korelang/ksym/internal/kore"
)

// Terms unifies two terms against a definition. The engine is a FIFO
// work queue over term pairs sharing one substitution and one set of
// sort-variable bindings. A definite failure or sort error aborts the
// run; pairs the engine cannot decide syntactically accumulate into a
// Remainder.
func Terms(def *kore.Definition, left, right kore.Term) Result {
	u := newUnifier(def)
	u.push(left, right)
	return u.run()
}

// Arguments unifies two applications of one symbol argument by
// argument, skipping the head comparison. Axiom application lands
// here: the axiom index already matched the head, so even a function
// head decomposes instead of deferring.
func Arguments(def *kore.Definition, left, right kore.SymbolApplication) Result {
	if left.Symbol.Name != right.Symbol.Name ||
		len(left.SortParams) != len(right.SortParams) ||
		len(left.Args) != len(right.Args) {
		return Failed{Reason: DifferentSymbols, Left: left, Right: right}
	}
	u := newUnifier(def)
	for i := range left.SortParams {
		if err := u.checker.exact(left.SortParams[i], right.SortParams[i]); err != nil {
			return *err
		}
	}
	for i := range left.Args {
		u.push(left.Args[i], right.Args[i])
	}
	return u.run()
}

func newUnifier(def *kore.Definition) *unifier {
	return &unifier{
		def:     def,
		checker: newSortChecker(def),
		subst:   kore.Substitution{},
	}
}

func (u *unifier) run() Result {
	for len(u.queue) > 0 {
		next := u.queue[0]
		u.queue = u.queue[1:]
		// Earlier bindings must be visible before dispatch.
		l := u.subst.ApplyToTerm(next.Left)
		r := u.subst.ApplyToTerm(next.Right)
		if res := u.step(l, r); res != nil {
			return res
		}
	}
	if len(u.residual) > 0 {
		pairs := make([]Pair, len(u.residual))
		for i, p := range u.residual {
			pairs[i] = Pair{
				Left:  u.subst.ApplyToTerm(p.Left),
				Right: u.subst.ApplyToTerm(p.Right),
			}
		}
		return Remainder{Subst: u.subst, Pairs: pairs, SortBindings: u.checker.snapshot()}
	}
	return Success{Subst: u.subst, SortBindings: u.checker.snapshot()}
}

type unifier struct {
	def      *kore.Definition
	checker  *sortChecker
	subst    kore.Substitution
	queue    []Pair
	residual []Pair
}

func (u *unifier) push(left, right kore.Term) {
	u.queue = append(u.queue, Pair{Left: left, Right: right})
}

func (u *unifier) defer_(left, right kore.Term) {
	u.residual = append(u.residual, Pair{Left: left, Right: right})
}

// step decides one pair. A nil result means the pair was consumed
// (solved, decomposed, or deferred); anything else aborts the run.
func (u *unifier) step(left, right kore.Term) Result {
	// A term conjunction constrains both operands to the other side.
	if and, ok := left.(kore.AndTerm); ok {
		u.push(and.Left, right)
		u.push(and.Right, right)
		return nil
	}
	if and, ok := right.(kore.AndTerm); ok {
		u.push(left, and.Left)
		u.push(left, and.Right)
		return nil
	}

	if lv, ok := left.(kore.DomainValue); ok {
		if rv, ok := right.(kore.DomainValue); ok {
			return u.stepValues(lv, rv)
		}
	}

	lVar, leftIsVar := left.(kore.Variable)
	rVar, rightIsVar := right.(kore.Variable)
	switch {
	case leftIsVar && rightIsVar:
		return u.stepVariables(lVar, rVar)
	case leftIsVar:
		return u.bind(lVar, right)
	case rightIsVar:
		return u.bind(rVar, left)
	}

	if lApp, ok := left.(kore.SymbolApplication); ok {
		if rApp, ok := right.(kore.SymbolApplication); ok {
			return u.stepApplications(lApp, rApp)
		}
	}

	if lInj, ok := left.(kore.Injection); ok {
		if rInj, ok := right.(kore.Injection); ok {
			return u.stepInjections(lInj, rInj)
		}
	}

	if lList, ok := left.(kore.KList); ok {
		if rList, ok := right.(kore.KList); ok {
			return u.stepLists(lList, rList)
		}
	}
	if lMap, ok := left.(kore.KMap); ok {
		if rMap, ok := right.(kore.KMap); ok {
			return u.stepMaps(lMap, rMap)
		}
	}
	if lSet, ok := left.(kore.KSet); ok {
		if rSet, ok := right.(kore.KSet); ok {
			return u.stepSets(lSet, rSet)
		}
	}

	// Mixed shapes are not decidable syntactically.
	u.defer_(left, right)
	return nil
}

func (u *unifier) stepValues(left, right kore.DomainValue) Result {
	ls := u.checker.resolve(left.ValueSort)
	rs := u.checker.resolve(right.ValueSort)
	_, lIsVar := ls.(kore.SortVar)
	_, rIsVar := rs.(kore.SortVar)
	if !lIsVar && !rIsVar && !kore.SortEqual(ls, rs) {
		// Byte equality across related sorts is undecidable here: an
		// injected Nat literal may or may not denote the Int literal
		// with the same spelling.
		if err := u.checker.compatible(ls, rs); err != nil {
			return *err
		}
		u.defer_(left, right)
		return nil
	}
	if err := u.checker.exact(ls, rs); err != nil {
		return *err
	}
	if string(left.Value) != string(right.Value) {
		return Failed{Reason: DifferentValues, Left: left, Right: right}
	}
	return nil
}

func (u *unifier) stepVariables(left, right kore.Variable) Result {
	if left.Name == right.Name {
		if !kore.SortEqual(left.VarSort, right.VarSort) {
			return Failed{Reason: VariableConflict, Left: left, Right: right}
		}
		// One name, one sort: nothing to learn, but the pair is kept
		// visible for downstream consumers.
		u.defer_(left, right)
		return nil
	}
	return u.bind(left, right)
}

// bind records v := t, composing the new binding into existing targets
// so the substitution stays idempotent.
func (u *unifier) bind(v kore.Variable, t kore.Term) Result {
	if kore.OccursIn(v.Name, t) {
		return Failed{Reason: VariableRecursion, Left: v, Right: t}
	}
	if err := u.checker.compatible(v.VarSort, t.Sort()); err != nil {
		return *err
	}
	if existing, ok := u.subst[v.Name]; ok {
		// Queue entries are substituted at pop, so a bound name cannot
		// normally resurface; an unequal rebinding is a conflict.
		if kore.TermEqual(existing, t) {
			return nil
		}
		return Failed{Reason: VariableConflict, Left: existing, Right: t}
	}
	single := kore.Substitution{v.Name: t}
	for name, target := range u.subst {
		u.subst[name] = single.ApplyToTerm(target)
	}
	u.subst[v.Name] = t
	return nil
}

func (u *unifier) stepApplications(left, right kore.SymbolApplication) Result {
	if left.Symbol.Name != right.Symbol.Name {
		if left.Symbol.IsConstructor() && right.Symbol.IsConstructor() {
			return Failed{Reason: DifferentSymbols, Left: left, Right: right}
		}
		// At least one side is a function: a decision procedure may
		// still equate them.
		u.defer_(left, right)
		return nil
	}

	if len(left.SortParams) != len(right.SortParams) || len(left.Args) != len(right.Args) {
		return Failed{Reason: DifferentSymbols, Left: left, Right: right}
	}
	for i := range left.SortParams {
		if err := u.checker.exact(left.SortParams[i], right.SortParams[i]); err != nil {
			return *err
		}
	}

	if !left.Symbol.IsConstructor() {
		// Same function symbol: keep the whole pair, even when the
		// applications are syntactically identical.
		u.defer_(left, right)
		return nil
	}
	for i := range left.Args {
		u.push(left.Args[i], right.Args[i])
	}
	return nil
}

func (u *unifier) stepInjections(left, right kore.Injection) Result {
	if err := u.checker.exact(left.To, right.To); err != nil {
		return *err
	}
	if kore.SortEqual(left.From, right.From) {
		u.push(left.Child, right.Child)
		return nil
	}
	// Distinct source sorts: constructor children cannot be equal
	// across them, anything else is undecided.
	lApp, lCtor := left.Child.(kore.SymbolApplication)
	rApp, rCtor := right.Child.(kore.SymbolApplication)
	if lCtor && rCtor && lApp.Symbol.IsConstructor() && rApp.Symbol.IsConstructor() {
		return Failed{Reason: DifferentSymbols, Left: left, Right: right}
	}
	u.defer_(left, right)
	return nil
}

func (u *unifier) stepLists(left, right kore.KList) Result {
	switch {
	case left.Frame == nil && right.Frame == nil:
		if len(left.Elems) != len(right.Elems) {
			return Failed{Reason: DifferentValues, Left: left, Right: right}
		}
		for i := range left.Elems {
			u.push(left.Elems[i], right.Elems[i])
		}
		return nil
	case left.Frame != nil && right.Frame == nil:
		return u.stepFramedList(left, right)
	case left.Frame == nil && right.Frame != nil:
		return u.stepFramedList(right, left)
	default:
		if len(left.Elems) == len(right.Elems) {
			for i := range left.Elems {
				u.push(left.Elems[i], right.Elems[i])
			}
			u.push(left.Frame, right.Frame)
			return nil
		}
		u.defer_(left, right)
		return nil
	}
}

// stepFramedList matches a framed list prefix against a concrete list,
// binding the frame to the leftover suffix.
func (u *unifier) stepFramedList(framed, concrete kore.KList) Result {
	if len(framed.Elems) > len(concrete.Elems) {
		return Failed{Reason: DifferentValues, Left: framed, Right: concrete}
	}
	for i := range framed.Elems {
		u.push(framed.Elems[i], concrete.Elems[i])
	}
	suffix := kore.KList{
		CollSort: concrete.CollSort,
		Elems:    concrete.Elems[len(framed.Elems):],
	}
	u.push(framed.Frame, suffix)
	return nil
}

func (u *unifier) stepMaps(left, right kore.KMap) Result {
	// Only the aligned concrete case decomposes: equal key sets by
	// structural equality, no rest on either side. AC matching beyond
	// that is left to a decision procedure.
	if left.Rest != nil || right.Rest != nil || len(left.Pairs) != len(right.Pairs) {
		u.defer_(left, right)
		return nil
	}
	matched := make([]Pair, 0, len(left.Pairs))
	for _, lkv := range left.Pairs {
		found := false
		for _, rkv := range right.Pairs {
			if kore.TermEqual(lkv.Key, rkv.Key) {
				matched = append(matched, Pair{Left: lkv.Value, Right: rkv.Value})
				found = true
				break
			}
		}
		if !found {
			u.defer_(left, right)
			return nil
		}
	}
	for _, p := range matched {
		u.push(p.Left, p.Right)
	}
	return nil
}

func (u *unifier) stepSets(left, right kore.KSet) Result {
	if left.Rest != nil || right.Rest != nil || len(left.Elems) != len(right.Elems) {
		u.defer_(left, right)
		return nil
	}
	for _, le := range left.Elems {
		if !containsTerm(right.Elems, le) {
			u.defer_(left, right)
			return nil
		}
	}
	return nil
}

func containsTerm(elems []kore.Term, t kore.Term) bool {
	for _, e := range elems {
		if kore.TermEqual(e, t) {
			return true
		}
	}
	return false
}
