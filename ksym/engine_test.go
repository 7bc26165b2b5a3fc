package ksym

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korelang/ksym/internal/kore"
	"github.com/korelang/ksym/internal/norm"
	"github.com/korelang/ksym/internal/unify"
)

// testDefinition is a small arithmetic definition: naturals embed into
// integers, plus is total, div is partial with one definedness axiom.
const testDefinition = `{
  "format": "KORE-DEFINITION",
  "version": 1,
  "sorts": [
    {"name": "SortInt", "hook": "INT.Int"},
    {"name": "SortNat"}
  ],
  "subsorts": [{"sub": "SortNat", "super": "SortInt"}],
  "symbols": [
    {"name": "zero",
     "resultSort": {"tag": "SortApp", "name": "SortNat"},
     "kind": "constructor"},
    {"name": "succ",
     "argSorts": [{"tag": "SortApp", "name": "SortNat"}],
     "resultSort": {"tag": "SortApp", "name": "SortNat"},
     "kind": "constructor"},
    {"name": "plus",
     "argSorts": [{"tag": "SortApp", "name": "SortInt"}, {"tag": "SortApp", "name": "SortInt"}],
     "resultSort": {"tag": "SortApp", "name": "SortInt"},
     "kind": "total-function"},
    {"name": "div",
     "argSorts": [{"tag": "SortApp", "name": "SortInt"}, {"tag": "SortApp", "name": "SortInt"}],
     "resultSort": {"tag": "SortApp", "name": "SortInt"},
     "kind": "partial-function"}
  ],
  "ceilAxioms": [
    {"label": "div-defined",
     "pattern": {"tag": "App", "name": "div", "args": [
       {"tag": "EVar", "name": "A", "sort": {"tag": "SortApp", "name": "SortInt"}},
       {"tag": "EVar", "name": "B", "sort": {"tag": "SortApp", "name": "SortInt"}}
     ]},
     "result": {"tag": "Not", "arg": {"tag": "Equals",
       "first": {"tag": "EVar", "name": "B", "sort": {"tag": "SortApp", "name": "SortInt"}},
       "second": {"tag": "DV", "sort": {"tag": "SortApp", "name": "SortInt"}, "value": "0"}}}}
  ]
}`

// writeEngineFixture writes the definition snapshot and a pointing
// configuration into dir and returns the configuration path.
func writeEngineFixture(t *testing.T, dir string) string {
	t.Helper()

	defPath := filepath.Join(dir, "definition.json")
	require.NoError(t, os.WriteFile(defPath, []byte(testDefinition), 0o644))

	cfgPath := filepath.Join(dir, ".ksym.yaml")
	cfg := fmt.Sprintf("name: ksym\ndefinition: %s\nlog-level: error\n", defPath)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	return cfgPath
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "test")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	engine, err := New(writeEngineFixture(t, tempDir))
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })

	return engine
}

func TestNewLoadsDefinition(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)

	stats := engine.Definition().Stats()
	assert.Equal(t, 2, stats.Sorts)
	assert.Equal(t, 4, stats.Symbols)
	assert.Equal(t, 1, stats.CeilAxioms)
}

func TestEngineCeilQuery(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)

	results, err := engine.RunSource([]byte(`{
	  "kind": "ceil",
	  "label": "div-by-var",
	  "term": {"format": "KORE", "version": 1, "term":
	    {"tag": "App", "name": "div", "args": [
	      {"tag": "EVar", "name": "X", "sort": {"tag": "SortApp", "name": "SortInt"}},
	      {"tag": "EVar", "name": "Y", "sort": {"tag": "SortApp", "name": "SortInt"}}]}}
	}`))
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	assert.Equal(t, KindCeil, res.Kind)
	assert.Equal(t, "div-by-var", res.Label)

	intSort := kore.MkSort("SortInt")
	want := kore.Not{Body: kore.Equals{
		Left:  kore.Var("Y", intSort),
		Right: kore.DomainValue{ValueSort: intSort, Value: []byte("0")},
	}}
	require.Equal(t, 1, res.Ceil.Size(), "form: %s", norm.FormString(res.Ceil))
	preds := res.Ceil.Items()[0].Items()
	require.Len(t, preds, 1)
	assert.True(t, preds[0].Equal(want), "form: %s", norm.FormString(res.Ceil))
}

func TestEngineCeilQueryWithCondition(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)

	// The condition already asserts the query term's definedness, so
	// the side-condition strategy answers before the axiom does.
	results, err := engine.RunSource([]byte(`{
	  "kind": "ceil",
	  "label": "assumed-defined",
	  "term": {"format": "KORE", "version": 1, "term":
	    {"tag": "App", "name": "div", "args": [
	      {"tag": "EVar", "name": "X", "sort": {"tag": "SortApp", "name": "SortInt"}},
	      {"tag": "EVar", "name": "Y", "sort": {"tag": "SortApp", "name": "SortInt"}}]}},
	  "condition": [
	    {"format": "KORE", "version": 1, "term":
	      {"tag": "Ceil", "arg":
	        {"tag": "App", "name": "div", "args": [
	          {"tag": "EVar", "name": "X", "sort": {"tag": "SortApp", "name": "SortInt"}},
	          {"tag": "EVar", "name": "Y", "sort": {"tag": "SortApp", "name": "SortInt"}}]}}}
	  ]
	}`))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Ceil.IsTop(), "form: %s", norm.FormString(results[0].Ceil))
}

func TestEngineUnifyQuery(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)

	results, err := engine.RunSource([]byte(`{
	  "kind": "unify",
	  "label": "var-vs-zero",
	  "left":  {"format": "KORE", "version": 1, "term":
	    {"tag": "EVar", "name": "X", "sort": {"tag": "SortApp", "name": "SortNat"}}},
	  "right": {"format": "KORE", "version": 1, "term": {"tag": "App", "name": "zero"}}
	}`))
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	assert.Equal(t, KindUnify, res.Kind)

	success, ok := res.Unification.(unify.Success)
	require.True(t, ok, "got %s", res.Unification)
	zero := kore.App(engine.Definition().MustSymbol("zero"))
	require.Contains(t, success.Subst, "X")
	assert.True(t, kore.TermEqual(success.Subst["X"], zero))
}

func TestEngineRunFile(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)

	tempDir, err := os.MkdirTemp("", "test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	queries := `[
	  {"kind": "ceil", "label": "plus-total",
	   "term": {"format": "KORE", "version": 1, "term":
	     {"tag": "App", "name": "plus", "args": [
	       {"tag": "EVar", "name": "X", "sort": {"tag": "SortApp", "name": "SortInt"}},
	       {"tag": "EVar", "name": "Y", "sort": {"tag": "SortApp", "name": "SortInt"}}]}}},
	  {"kind": "unify", "label": "var-vs-zero",
	   "left":  {"format": "KORE", "version": 1, "term":
	     {"tag": "EVar", "name": "X", "sort": {"tag": "SortApp", "name": "SortNat"}}},
	   "right": {"format": "KORE", "version": 1, "term": {"tag": "App", "name": "zero"}}}
	]`
	path := filepath.Join(tempDir, "queries.json")
	require.NoError(t, os.WriteFile(path, []byte(queries), 0o644))

	results, err := engine.RunFile(path)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, path, results[0].Path)
	assert.Equal(t, 0, results[0].Index)
	assert.True(t, results[0].Ceil.IsTop(), "form: %s", norm.FormString(results[0].Ceil))

	assert.Equal(t, path, results[1].Path)
	assert.Equal(t, 1, results[1].Index)
	_, ok := results[1].Unification.(unify.Success)
	assert.True(t, ok)
}

func TestEngineRejectsUnknownKind(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)

	_, err := engine.RunSource([]byte(`{"kind": "frobnicate"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown query kind "frobnicate"`)
}

func TestEngineRejectsIncompleteQueries(t *testing.T) {
	t.Parallel()
	engine := newTestEngine(t)

	_, err := engine.RunSource([]byte(`{"kind": "ceil", "label": "empty"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no term")

	_, err = engine.RunSource([]byte(`{"kind": "unify", "label": "half", "left":
	  {"format": "KORE", "version": 1, "term": {"tag": "App", "name": "zero"}}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs left and right terms")
}

func TestNewRejectsBadLogLevel(t *testing.T) {
	t.Parallel()

	tempDir, err := os.MkdirTemp("", "test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	defPath := filepath.Join(tempDir, "definition.json")
	require.NoError(t, os.WriteFile(defPath, []byte(testDefinition), 0o644))
	cfgPath := filepath.Join(tempDir, ".ksym.yaml")
	cfg := fmt.Sprintf("definition: %s\nlog-level: chatty\n", defPath)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	_, err = New(cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log-level")
}

func TestNewReportsOracleLoadFailure(t *testing.T) {
	t.Parallel()

	tempDir, err := os.MkdirTemp("", "test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	defPath := filepath.Join(tempDir, "definition.json")
	require.NoError(t, os.WriteFile(defPath, []byte(testDefinition), 0o644))
	cfgPath := filepath.Join(tempDir, ".ksym.yaml")
	cfg := fmt.Sprintf("definition: %s\noracle: %s\nlog-level: error\n",
		defPath, filepath.Join(tempDir, "libmissing.so"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	_, err = New(cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading oracle")
}
