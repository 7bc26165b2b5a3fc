package kore

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTerm(t *testing.T) {
	def := newTestDef(t)

	doc := []byte(`{
		"format": "KORE",
		"version": 1,
		"term": {
			"tag": "App",
			"name": "plus",
			"sorts": [],
			"args": [
				{"tag": "EVar", "name": "X", "sort": {"tag": "SortApp", "name": "SortInt"}},
				{"tag": "DV", "sort": {"tag": "SortApp", "name": "SortInt"}, "value": "1"}
			]
		}
	}`)

	term, err := DecodeTerm(def, doc)
	require.NoError(t, err)
	want := App(def.MustSymbol("plus"), intVar("X"), intDV("1"))
	assert.True(t, TermEqual(term, want), "got %s", term)
}

func TestDecodeTerm_InjectionInternalized(t *testing.T) {
	def := newTestDef(t)

	doc := []byte(`{
		"format": "KORE",
		"version": 1,
		"term": {
			"tag": "App",
			"name": "inj",
			"sorts": [
				{"tag": "SortApp", "name": "SortNat"},
				{"tag": "SortApp", "name": "SortInt"}
			],
			"args": [{"tag": "DV", "sort": {"tag": "SortApp", "name": "SortNat"}, "value": "0"}]
		}
	}`)

	term, err := DecodeTerm(def, doc)
	require.NoError(t, err)
	_, ok := term.(Injection)
	assert.True(t, ok, "got %T", term)
}

func TestDecodeTerm_Errors(t *testing.T) {
	def := newTestDef(t)

	tests := []struct {
		name string
		doc  string
	}{
		{"wrong format", `{"format":"XML","version":1,"term":{"tag":"Top"}}`},
		{"wrong version", `{"format":"KORE","version":9,"term":{"tag":"Top"}}`},
		{"undeclared symbol", `{"format":"KORE","version":1,"term":{"tag":"App","name":"nope","args":[]}}`},
		{"predicate tag", `{"format":"KORE","version":1,"term":{"tag":"Top"}}`},
		{"missing variable sort", `{"format":"KORE","version":1,"term":{"tag":"EVar","name":"X"}}`},
		{"arity mismatch", `{"format":"KORE","version":1,"term":{"tag":"App","name":"plus","args":[{"tag":"DV","sort":{"tag":"SortApp","name":"SortInt"},"value":"1"}]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTerm(def, []byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestTermCodecRoundTrip(t *testing.T) {
	def := newTestDef(t)
	plus := def.MustSymbol("plus")
	pair := def.MustSymbol("pair")

	terms := []Term{
		intDV("42"),
		intVar("X"),
		App(plus, intVar("X"), intDV("1")),
		App(pair, App(plus, intVar("X"), intVar("Y")), intDV("0")),
		AndTerm{Left: intVar("X"), Right: intDV("1")},
		MkInjection(MkSort("SortNat"), MkSort("SortInt"), DV(MkSort("SortNat"), "0")),
		KList{CollSort: MkSort("SortList"), Elems: []Term{intDV("1"), intDV("2")}},
		KMap{CollSort: MkSort("SortMap"), Pairs: []KV{{Key: intDV("1"), Value: intDV("2")}}, Rest: Var("M", MkSort("SortMap"))},
	}
	for i, term := range terms {
		t.Run(fmt.Sprintf("term_%d", i), func(t *testing.T) {
			data, err := EncodeTerm(def, term)
			require.NoError(t, err)
			back, err := DecodeTerm(def, data)
			require.NoError(t, err)
			assert.True(t, TermEqual(term, back), "in %s, out %s", term, back)
		})
	}
}

func TestPredicateCodecRoundTrip(t *testing.T) {
	def := newTestDef(t)
	plus := def.MustSymbol("plus")
	div := def.MustSymbol("div")

	preds := []Predicate{
		Top{},
		Bottom{},
		Ceil{Of: App(div, intVar("X"), intVar("Y"))},
		Equals{Left: intVar("X"), Right: intDV("1")},
		In{Element: intVar("X"), Container: intVar("Y")},
		Not{Body: Equals{Left: intVar("Y"), Right: intDV("0")}},
		And{
			Left:  Ceil{Of: App(plus, intVar("X"), intDV("1"))},
			Right: Equals{Left: intVar("X"), Right: intDV("2")},
		},
		Or{Left: Top{}, Right: Bottom{}},
		Implies{Left: Equals{Left: intVar("X"), Right: intDV("1")}, Right: Top{}},
		Iff{Left: Top{}, Right: Top{}},
		Exists{Var: intVar("X"), Body: Equals{Left: intVar("X"), Right: intDV("1")}},
		Forall{Var: intVar("X"), Body: Ceil{Of: intVar("X")}},
		BoolTerm{Term: DV(MkSort("SortBool"), "true")},
	}
	for i, pred := range preds {
		t.Run(fmt.Sprintf("pred_%d", i), func(t *testing.T) {
			data, err := EncodePredicate(def, pred)
			require.NoError(t, err)
			back, err := DecodePredicate(def, data)
			require.NoError(t, err)
			assert.True(t, pred.Equal(back), "in %s, out %s", pred, back)
		})
	}
}

func TestLoadDefinition(t *testing.T) {
	doc := []byte(`{
		"format": "KORE-DEFINITION",
		"version": 1,
		"sorts": [
			{"name": "SortInt"},
			{"name": "SortNat"},
			{"name": "SortBool"}
		],
		"subsorts": [{"sub": "SortNat", "super": "SortInt"}],
		"symbols": [
			{
				"name": "plus",
				"argSorts": [
					{"tag": "SortApp", "name": "SortInt"},
					{"tag": "SortApp", "name": "SortInt"}
				],
				"resultSort": {"tag": "SortApp", "name": "SortInt"},
				"kind": "total-function"
			},
			{
				"name": "div",
				"argSorts": [
					{"tag": "SortApp", "name": "SortInt"},
					{"tag": "SortApp", "name": "SortInt"}
				],
				"resultSort": {"tag": "SortApp", "name": "SortInt"},
				"kind": "partial-function"
			}
		],
		"equations": [
			{
				"label": "plus-zero",
				"argument": 1,
				"left": {
					"tag": "App", "name": "plus", "args": [
						{"tag": "EVar", "name": "X", "sort": {"tag": "SortApp", "name": "SortInt"}},
						{"tag": "DV", "sort": {"tag": "SortApp", "name": "SortInt"}, "value": "0"}
					]
				},
				"right": {"tag": "EVar", "name": "X", "sort": {"tag": "SortApp", "name": "SortInt"}}
			}
		],
		"ceilAxioms": [
			{
				"label": "div-defined",
				"pattern": {
					"tag": "App", "name": "div", "args": [
						{"tag": "EVar", "name": "X", "sort": {"tag": "SortApp", "name": "SortInt"}},
						{"tag": "EVar", "name": "Y", "sort": {"tag": "SortApp", "name": "SortInt"}}
					]
				},
				"result": {
					"tag": "Not",
					"arg": {
						"tag": "Equals",
						"first": {"tag": "EVar", "name": "Y", "sort": {"tag": "SortApp", "name": "SortInt"}},
						"second": {"tag": "DV", "sort": {"tag": "SortApp", "name": "SortInt"}, "value": "0"}
					}
				}
			}
		]
	}`)

	def, err := LoadDefinition(doc)
	require.NoError(t, err)

	assert.True(t, def.IsSubsort(MkSort("SortNat"), MkSort("SortInt")))

	plus, ok := def.Symbol("plus")
	require.True(t, ok)
	assert.Equal(t, TotalFunction, plus.Kind)
	assert.True(t, plus.IsTotal())

	eqs := def.EquationsFor("plus")
	require.Len(t, eqs, 1)
	assert.Equal(t, "plus-zero", eqs[0].Label)
	assert.Equal(t, 1, eqs[0].Argument)
	assert.True(t, eqs[0].Requires.IsTop(), "missing requires defaults to top")

	axs := def.CeilAxiomsFor("div")
	require.Len(t, axs, 1)
	not, ok := axs[0].Result.(Not)
	require.True(t, ok)
	_, ok = not.Body.(Equals)
	assert.True(t, ok)
}

func TestLoadDefinition_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"bad json", `{`},
		{"wrong format", `{"format":"KORE","version":1,"sorts":[],"symbols":[]}`},
		{"wrong version", `{"format":"KORE-DEFINITION","version":2,"sorts":[],"symbols":[]}`},
		{"unknown kind", `{"format":"KORE-DEFINITION","version":1,"sorts":[{"name":"S"}],"symbols":[{"name":"f","resultSort":{"tag":"SortApp","name":"S"},"kind":"weird"}]}`},
		{"equation with undeclared symbol", `{"format":"KORE-DEFINITION","version":1,"sorts":[{"name":"S"}],"symbols":[],"equations":[{"label":"e","left":{"tag":"App","name":"f","args":[]},"right":{"tag":"App","name":"f","args":[]}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadDefinition([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}
