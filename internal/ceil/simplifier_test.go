package ceil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korelang/ksym/internal/kore"
	"github.com/korelang/ksym/internal/norm"
	"github.com/korelang/ksym/internal/oracle"
)

// fakeOracle answers definedness queries from a fingerprint table and
// records every term it was asked about.
type fakeOracle struct {
	answers map[uint64]oracle.Tristate
	calls   []kore.Term
	err     error
}

func (f *fakeOracle) SimplifyBool(kore.Term) (bool, error) {
	return false, f.err
}

func (f *fakeOracle) Definedness(t kore.Term) (oracle.Tristate, error) {
	f.calls = append(f.calls, t)
	if f.err != nil {
		return oracle.Unknown, f.err
	}
	return f.answers[kore.Fingerprint(t)], nil
}

func (f *fakeOracle) Close() error { return nil }

// fakeEvaluator returns one canned answer and counts invocations.
type fakeEvaluator struct {
	result  kore.OrPattern
	applied bool
	err     error
	calls   int
}

func (f *fakeEvaluator) EvaluateCeil(SideCondition, kore.Term) (kore.OrPattern, bool, error) {
	f.calls++
	return f.result, f.applied, f.err
}

// requireSingleConjunction asserts the form is one conjunction with
// exactly the given predicates in order.
func requireSingleConjunction(t *testing.T, form norm.Form, want ...kore.Predicate) {
	t.Helper()
	require.Equal(t, 1, form.Size(), "form: %s", norm.FormString(form))
	got := form.Items()[0].Items()
	require.Len(t, got, len(want), "form: %s", norm.FormString(form))
	for i, p := range want {
		assert.True(t, got[i].Equal(p), "conjunct %d: got %s, want %s", i, got[i], p)
	}
}

func TestSimplifyTerm_TriviallyDefined(t *testing.T) {
	def := newTestDef(t)
	s := New(def, Options{})

	for _, term := range []kore.Term{intVar("X"), intDV("42")} {
		form, err := s.SimplifyTerm(nil, term)
		require.NoError(t, err)
		assert.True(t, form.IsTop(), "ceil(%s) = %s", term, norm.FormString(form))
	}
}

func TestSimplifyTerm_TotalSymbol(t *testing.T) {
	def := newTestDef(t)
	s := New(def, Options{})
	div := def.MustSymbol("div")
	plus := def.MustSymbol("plus")
	x, y := intVar("X"), intVar("Y")

	t.Run("children trivially defined", func(t *testing.T) {
		form, err := s.SimplifyTerm(nil, kore.App(plus, x, y))
		require.NoError(t, err)
		assert.True(t, form.IsTop())
	})

	t.Run("nullary constructor", func(t *testing.T) {
		form, err := s.SimplifyTerm(nil, kore.App(def.MustSymbol("zero")))
		require.NoError(t, err)
		assert.True(t, form.IsTop())
	})

	t.Run("conjunction of child ceils in argument order", func(t *testing.T) {
		left := kore.App(div, x, intDV("1"))
		right := kore.App(div, y, intDV("1"))
		form, err := s.SimplifyTerm(nil, kore.App(plus, left, right))
		require.NoError(t, err)
		requireSingleConjunction(t, form, kore.Ceil{Of: left}, kore.Ceil{Of: right})
	})
}

func TestSimplifyTerm_UnresolvedFallback(t *testing.T) {
	def := newTestDef(t)
	s := New(def, Options{})
	div := def.MustSymbol("div")
	x, y := intVar("X"), intVar("Y")

	t.Run("partial application", func(t *testing.T) {
		term := kore.App(div, x, y)
		form, err := s.SimplifyTerm(nil, term)
		require.NoError(t, err)
		requireSingleConjunction(t, form, kore.Ceil{Of: term})
	})

	t.Run("nested partial application propagates child ceils", func(t *testing.T) {
		inner := kore.App(div, x, intDV("2"))
		term := kore.App(div, inner, y)
		form, err := s.SimplifyTerm(nil, term)
		require.NoError(t, err)
		requireSingleConjunction(t, form, kore.Ceil{Of: term}, kore.Ceil{Of: inner})
	})

	t.Run("term conjunction keeps both operands", func(t *testing.T) {
		left := kore.App(div, x, y)
		term := kore.AndTerm{Left: left, Right: intVar("Z")}
		form, err := s.SimplifyTerm(nil, term)
		require.NoError(t, err)
		requireSingleConjunction(t, form, kore.Ceil{Of: term}, kore.Ceil{Of: left})
	})
}

func TestSimplifyTerm_SideCondition(t *testing.T) {
	def := newTestDef(t)
	s := New(def, Options{})
	div := def.MustSymbol("div")
	x, y := intVar("X"), intVar("Y")

	t.Run("known defined term is top", func(t *testing.T) {
		term := kore.App(div, x, y)
		form, err := s.SimplifyTerm(NewSideCondition(kore.Ceil{Of: term}), term)
		require.NoError(t, err)
		assert.True(t, form.IsTop())
	})

	t.Run("known defined child drops out of the fallback", func(t *testing.T) {
		inner := kore.App(div, x, intDV("2"))
		outer := kore.App(div, inner, y)
		form, err := s.SimplifyTerm(NewSideCondition(kore.Ceil{Of: inner}), outer)
		require.NoError(t, err)
		requireSingleConjunction(t, form, kore.Ceil{Of: outer})
	})
}

func TestSimplifyTerm_Oracle(t *testing.T) {
	def := newTestDef(t)
	div := def.MustSymbol("div")
	defined := kore.App(div, intDV("4"), intDV("2"))
	undefined := kore.App(div, intDV("4"), intDV("0"))
	unknown := kore.App(div, intDV("1"), intDV("3"))

	orc := &fakeOracle{answers: map[uint64]oracle.Tristate{
		kore.Fingerprint(defined):   oracle.True,
		kore.Fingerprint(undefined): oracle.False,
	}}
	s := New(def, Options{Oracle: orc})

	form, err := s.SimplifyTerm(nil, defined)
	require.NoError(t, err)
	assert.True(t, form.IsTop())

	form, err = s.SimplifyTerm(nil, undefined)
	require.NoError(t, err)
	assert.True(t, form.IsBottom())

	// Unknown falls through to the unresolved fallback.
	form, err = s.SimplifyTerm(nil, unknown)
	require.NoError(t, err)
	requireSingleConjunction(t, form, kore.Ceil{Of: unknown})

	// Symbolic terms never reach the oracle.
	_, err = s.SimplifyTerm(nil, kore.App(div, intVar("X"), intDV("2")))
	require.NoError(t, err)
	for _, asked := range orc.calls {
		assert.True(t, kore.IsConcrete(asked), "oracle asked about %s", asked)
	}
}

func TestSimplifyTerm_OracleFailureIsFatal(t *testing.T) {
	def := newTestDef(t)
	s := New(def, Options{Oracle: &fakeOracle{err: errors.New("library corrupted")}})

	_, err := s.SimplifyTerm(nil, kore.App(def.MustSymbol("div"), intDV("1"), intDV("0")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "library corrupted")
}

func TestSimplifyTerm_UserAxioms(t *testing.T) {
	def := newTestDef(t)
	div := def.MustSymbol("div")
	a, b := intVar("A"), intVar("B")
	require.NoError(t, def.AddCeilAxiom(&kore.CeilAxiom{
		Label:    "ceil-div",
		Pattern:  kore.App(div, a, b),
		Requires: kore.Top{},
		Result:   kore.Not{Body: kore.Equals{Left: b, Right: intDV("0")}},
	}))
	s := New(def, Options{Evaluator: NewDefinitionEvaluator(def, nil)})
	x, y := intVar("X"), intVar("Y")

	form, err := s.SimplifyTerm(nil, kore.App(div, x, y))
	require.NoError(t, err)
	requireSingleConjunction(t, form, kore.Not{Body: kore.Equals{Left: y, Right: intDV("0")}})

	// Symbols the axioms do not cover still go through the builtin
	// rules.
	form, err = s.SimplifyTerm(nil, kore.App(def.MustSymbol("plus"), x, y))
	require.NoError(t, err)
	assert.True(t, form.IsTop())
}

func TestSimplifyTerm_AxiomResultKeepsTerm(t *testing.T) {
	def := newTestDef(t)
	eval := &fakeEvaluator{
		result:  kore.OrPattern{{Term: intDV("1"), Predicate: kore.Top{}}},
		applied: true,
	}
	s := New(def, Options{Evaluator: eval})

	_, err := s.SimplifyTerm(nil, kore.App(def.MustSymbol("div"), intVar("X"), intVar("Y")))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotPredicate)
}

func TestSimplifyTerm_Collections(t *testing.T) {
	def := newTestDef(t)
	s := New(def, Options{})
	div := def.MustSymbol("div")
	x, y := intVar("X"), intVar("Y")

	t.Run("list elements", func(t *testing.T) {
		opaque := kore.App(div, x, intDV("2"))
		list := kore.KList{CollSort: listSort, Elems: []kore.Term{x, opaque}}
		form, err := s.SimplifyTerm(nil, list)
		require.NoError(t, err)
		requireSingleConjunction(t, form, kore.Ceil{Of: opaque})
	})

	t.Run("distinct concrete map keys", func(t *testing.T) {
		m := kore.KMap{CollSort: mapSort, Pairs: []kore.KV{
			{Key: intDV("1"), Value: x},
			{Key: intDV("2"), Value: y},
		}}
		form, err := s.SimplifyTerm(nil, m)
		require.NoError(t, err)
		assert.True(t, form.IsTop(), "got %s", norm.FormString(form))
	})

	t.Run("symbolic map keys require distinctness", func(t *testing.T) {
		m := kore.KMap{CollSort: mapSort, Pairs: []kore.KV{
			{Key: x, Value: intDV("1")},
			{Key: y, Value: intDV("2")},
		}}
		form, err := s.SimplifyTerm(nil, m)
		require.NoError(t, err)
		requireSingleConjunction(t, form, kore.Not{Body: kore.Equals{Left: x, Right: y}})
	})

	t.Run("duplicate map keys are bottom", func(t *testing.T) {
		m := kore.KMap{CollSort: mapSort, Pairs: []kore.KV{
			{Key: x, Value: intDV("1")},
			{Key: x, Value: intDV("2")},
		}}
		form, err := s.SimplifyTerm(nil, m)
		require.NoError(t, err)
		assert.True(t, form.IsBottom(), "got %s", norm.FormString(form))
	})

	t.Run("map rest stays disjoint from concrete keys", func(t *testing.T) {
		rest := kore.Var("M", mapSort)
		m := kore.KMap{CollSort: mapSort, Pairs: []kore.KV{{Key: x, Value: intDV("1")}}, Rest: rest}
		form, err := s.SimplifyTerm(nil, m)
		require.NoError(t, err)
		requireSingleConjunction(t, form, kore.Not{Body: kore.In{Element: x, Container: rest}})
	})

	t.Run("set distinctness and rest disjointness", func(t *testing.T) {
		rest := kore.Var("S", setSort)
		set := kore.KSet{CollSort: setSort, Elems: []kore.Term{x, y}, Rest: rest}
		form, err := s.SimplifyTerm(nil, set)
		require.NoError(t, err)
		requireSingleConjunction(t, form,
			kore.Not{Body: kore.Equals{Left: x, Right: y}},
			kore.Not{Body: kore.In{Element: x, Container: rest}},
			kore.Not{Body: kore.In{Element: y, Container: rest}},
		)
	})
}

func TestSimplifyTerm_Injection(t *testing.T) {
	def := newTestDef(t)
	s := New(def, Options{})

	t.Run("variable child", func(t *testing.T) {
		form, err := s.SimplifyTerm(nil, kore.MkInjection(natSort, intSort, kore.Var("N", natSort)))
		require.NoError(t, err)
		assert.True(t, form.IsTop())
	})

	t.Run("partial child", func(t *testing.T) {
		child := kore.App(def.MustSymbol("div"), intVar("X"), intVar("Y"))
		form, err := s.SimplifyTerm(nil, kore.MkInjection(intSort, kore.MkSort("SortKItem"), child))
		require.NoError(t, err)
		requireSingleConjunction(t, form, kore.Ceil{Of: child})
	})
}

func TestSimplifyPattern(t *testing.T) {
	def := newTestDef(t)
	s := New(def, Options{})
	div := def.MustSymbol("div")
	x, y := intVar("X"), intVar("Y")

	t.Run("predicate and substitution are conjoined", func(t *testing.T) {
		term := kore.App(div, x, y)
		p := kore.Pattern{
			Term:      term,
			Predicate: kore.Equals{Left: x, Right: intDV("1")},
			Subst:     kore.Substitution{"Z": intDV("2")},
		}
		form, err := s.SimplifyPattern(nil, p)
		require.NoError(t, err)
		requireSingleConjunction(t, form,
			kore.Ceil{Of: term},
			kore.Equals{Left: x, Right: intDV("1")},
			kore.Equals{Left: kore.Var("Z", intSort), Right: intDV("2")},
		)
	})

	t.Run("trivial term keeps only the predicate", func(t *testing.T) {
		p := kore.Pattern{Predicate: kore.Or{
			Left:  kore.Equals{Left: x, Right: intDV("1")},
			Right: kore.Equals{Left: x, Right: intDV("2")},
		}}
		form, err := s.SimplifyPattern(nil, p)
		require.NoError(t, err)
		assert.Equal(t, 2, form.Size())
	})

	t.Run("bottom pattern", func(t *testing.T) {
		form, err := s.SimplifyPattern(nil, kore.Pattern{Term: x, Predicate: kore.Bottom{}})
		require.NoError(t, err)
		assert.True(t, form.IsBottom())
	})
}

func TestSimplifyOrPattern(t *testing.T) {
	def := newTestDef(t)
	s := New(def, Options{})
	div := def.MustSymbol("div")
	x, y := intVar("X"), intVar("Y")

	t.Run("distributes over disjuncts", func(t *testing.T) {
		d1 := kore.App(div, x, intDV("1"))
		d2 := kore.App(div, y, intDV("2"))
		form, err := s.SimplifyOrPattern(nil, kore.OrPattern{kore.MkPattern(d1), kore.MkPattern(d2)})
		require.NoError(t, err)
		require.Equal(t, 2, form.Size(), "got %s", norm.FormString(form))
		assert.True(t, form.Items()[0].Items()[0].Equal(kore.Ceil{Of: d1}))
		assert.True(t, form.Items()[1].Items()[0].Equal(kore.Ceil{Of: d2}))
	})

	t.Run("top pattern collapses to top", func(t *testing.T) {
		form, err := s.SimplifyOrPattern(nil, kore.OrPattern{{Predicate: kore.Top{}}})
		require.NoError(t, err)
		assert.True(t, form.IsTop())
	})

	t.Run("bottom disjunction is the empty form", func(t *testing.T) {
		form, err := s.SimplifyOrPattern(nil, kore.OrPattern{{Predicate: kore.Bottom{}}})
		require.NoError(t, err)
		assert.True(t, form.IsBottom())

		form, err = s.SimplifyOrPattern(nil, nil)
		require.NoError(t, err)
		assert.True(t, form.IsBottom())
	})
}

func TestSimplifierMemoizesPerSideCondition(t *testing.T) {
	def := newTestDef(t)
	eval := &fakeEvaluator{
		result:  kore.OrPattern{{Predicate: kore.Equals{Left: intVar("Y"), Right: intDV("0")}}},
		applied: true,
	}
	s := New(def, Options{Evaluator: eval})
	term := kore.App(def.MustSymbol("div"), intVar("X"), intVar("Y"))

	first, err := s.SimplifyTerm(nil, term)
	require.NoError(t, err)
	second, err := s.SimplifyTerm(nil, term)
	require.NoError(t, err)
	assert.True(t, first.Equal(second))
	assert.Equal(t, 1, eval.calls, "second query must hit the memo")

	_, err = s.SimplifyTerm(NewSideCondition(kore.Ceil{Of: intVar("Z")}), term)
	require.NoError(t, err)
	assert.Equal(t, 2, eval.calls, "a new side condition is a new memo key")
}

func TestSimplifierDisabledStrategy(t *testing.T) {
	def := newTestDef(t)
	s := New(def, Options{Disabled: []string{"total-symbol"}})
	term := kore.App(def.MustSymbol("plus"), intVar("X"), intVar("Y"))

	form, err := s.SimplifyTerm(nil, term)
	require.NoError(t, err)
	requireSingleConjunction(t, form, kore.Ceil{Of: term})
}

func TestStrategyNames(t *testing.T) {
	assert.Equal(t, []string{
		"trivially-defined",
		"side-condition",
		"user-axioms",
		"total-symbol",
		"collections",
		"injection",
	}, StrategyNames())
}
