package ksym

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/korelang/ksym/internal/ceil"
	"github.com/korelang/ksym/internal/kore"
	"github.com/korelang/ksym/internal/oracle"
	"github.com/korelang/ksym/internal/unify"
)

// Engine answers ceil and unification queries against one loaded
// definition snapshot. It is safe for concurrent use.
type Engine struct {
	def    *kore.Definition
	simp   *ceil.Simplifier
	orc    oracle.Oracle
	logger *zap.Logger
}

var _ QueryEngine = (*Engine)(nil)

// NewEngine builds an engine from an already validated configuration.
// A nil logger means silent.
func NewEngine(config Config, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	def, err := kore.LoadDefinitionFile(config.Definition)
	if err != nil {
		return nil, err
	}
	stats := def.Stats()
	logger.Info("definition loaded",
		zap.String("path", config.Definition),
		zap.Int("sorts", stats.Sorts),
		zap.Int("symbols", stats.Symbols),
		zap.Int("equations", stats.Equations),
		zap.Int("ceilAxioms", stats.CeilAxioms),
	)

	var orc oracle.Oracle
	if config.Oracle != "" {
		lib, err := oracle.Load(config.Oracle, def)
		if err != nil {
			return nil, fmt.Errorf("ksym: loading oracle %s: %w", config.Oracle, err)
		}
		orc = lib
		logger.Info("oracle loaded", zap.String("path", config.Oracle))
	}

	simp := ceil.New(def, ceil.Options{
		Evaluator: ceil.NewDefinitionEvaluator(def, logger),
		Oracle:    orc,
		Logger:    logger,
		Disabled:  config.Disable,
	})

	return &Engine{def: def, simp: simp, orc: orc, logger: logger}, nil
}

// Definition exposes the loaded snapshot for callers that decode
// their own terms.
func (e *Engine) Definition() *kore.Definition { return e.def }

// Logger exposes the engine's logger so commands can share it.
func (e *Engine) Logger() *zap.Logger { return e.logger }

// Close releases the native oracle, when one was loaded.
func (e *Engine) Close() error {
	if e.orc == nil {
		return nil
	}
	return e.orc.Close()
}

// RunFile answers every query in one file.
func (e *Engine) RunFile(path string) ([]Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ksym: reading queries %s: %w", path, err)
	}
	results, err := e.RunSource(data)
	if err != nil {
		return nil, fmt.Errorf("ksym: %s: %w", path, err)
	}
	for i := range results {
		results[i].Path = path
	}
	return results, nil
}

// RunSource answers every query in one document.
func (e *Engine) RunSource(source []byte) ([]Result, error) {
	queries, err := DecodeQueries(source)
	if err != nil {
		return nil, err
	}
	results := make([]Result, 0, len(queries))
	for i, q := range queries {
		res, err := e.RunQuery(q)
		if err != nil {
			return nil, fmt.Errorf("query #%d: %w", i, err)
		}
		res.Index = i
		results = append(results, res)
	}
	return results, nil
}

// RunQuery answers a single query.
func (e *Engine) RunQuery(q Query) (Result, error) {
	switch q.Kind {
	case KindCeil:
		return e.runCeil(q)
	case KindUnify:
		return e.runUnify(q)
	default:
		return Result{}, fmt.Errorf("ksym: unknown query kind %q", q.Kind)
	}
}

func (e *Engine) runCeil(q Query) (Result, error) {
	if len(q.Term) == 0 {
		return Result{}, fmt.Errorf("ksym: ceil query %q has no term", q.Label)
	}
	t, err := kore.DecodeTerm(e.def, q.Term)
	if err != nil {
		return Result{}, err
	}
	preds := make([]kore.Predicate, len(q.Condition))
	for i, raw := range q.Condition {
		p, err := kore.DecodePredicate(e.def, raw)
		if err != nil {
			return Result{}, err
		}
		preds[i] = p
	}

	form, err := e.simp.SimplifyTerm(ceil.NewSideCondition(preds...), t)
	if err != nil {
		return Result{}, err
	}
	e.logger.Debug("ceil query answered",
		zap.String("label", q.Label),
		zap.Int("disjuncts", form.Size()),
	)
	return Result{Label: q.Label, Kind: KindCeil, Ceil: form}, nil
}

func (e *Engine) runUnify(q Query) (Result, error) {
	if len(q.Left) == 0 || len(q.Right) == 0 {
		return Result{}, fmt.Errorf("ksym: unify query %q needs left and right terms", q.Label)
	}
	left, err := kore.DecodeTerm(e.def, q.Left)
	if err != nil {
		return Result{}, err
	}
	right, err := kore.DecodeTerm(e.def, q.Right)
	if err != nil {
		return Result{}, err
	}

	res := unify.Terms(e.def, left, right)
	e.logger.Debug("unify query answered",
		zap.String("label", q.Label),
		zap.String("outcome", fmt.Sprintf("%T", res)),
	)
	return Result{Label: q.Label, Kind: KindUnify, Unification: res}, nil
}

func buildLogger(level string) (*zap.Logger, error) {
	if level == "" {
		return zap.NewProduction()
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("ksym: config log-level: %w", err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
