package formatter

import (
	"github.com/samber/lo"

	"github.com/korelang/ksym/internal/equation"
	"github.com/korelang/ksym/internal/kore"
	"github.com/korelang/ksym/internal/norm"
	"github.com/korelang/ksym/internal/unify"
)

// UnificationReport is the machine-readable view of a unification
// outcome, shaped for json.Marshal in the command layer.
type UnificationReport struct {
	Kind      string            `json:"kind"`
	Bindings  map[string]string `json:"bindings,omitempty"`
	Sorts     map[string]string `json:"sorts,omitempty"`
	Undecided []PairReport      `json:"undecided,omitempty"`
	Reason    string            `json:"reason,omitempty"`
	Var       string            `json:"var,omitempty"`
	Left      string            `json:"left,omitempty"`
	Right     string            `json:"right,omitempty"`
}

// PairReport is one undecided pair.
type PairReport struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// NewUnificationReport flattens a unification outcome.
func NewUnificationReport(res unify.Result) UnificationReport {
	switch r := res.(type) {
	case unify.Success:
		return UnificationReport{
			Kind:     "success",
			Bindings: substStrings(r.Subst),
			Sorts:    sortStrings(r.SortBindings),
		}
	case unify.Remainder:
		return UnificationReport{
			Kind:     "remainder",
			Bindings: substStrings(r.Subst),
			Sorts:    sortStrings(r.SortBindings),
			Undecided: lo.Map(r.Pairs, func(p unify.Pair, _ int) PairReport {
				return PairReport{Left: p.Left.String(), Right: p.Right.String()}
			}),
		}
	case unify.Failed:
		return UnificationReport{
			Kind:   "failed",
			Reason: r.Reason.String(),
			Left:   r.Left.String(),
			Right:  r.Right.String(),
		}
	case unify.SortError:
		return UnificationReport{
			Kind:   "sort-error",
			Reason: r.Reason.String(),
			Var:    r.Var,
			Left:   r.Left.String(),
			Right:  r.Right.String(),
		}
	default:
		return UnificationReport{Kind: "unknown"}
	}
}

// FormReport is the machine-readable view of a definedness result: one
// string list per disjunct. An empty report is bottom; an empty inner
// list is an all-top disjunct.
type FormReport [][]string

// NewFormReport flattens a form.
func NewFormReport(form norm.Form) FormReport {
	out := make(FormReport, 0, form.Size())
	for _, c := range form.Items() {
		out = append(out, lo.Map(c.Items(), func(p kore.Predicate, _ int) string { return p.String() }))
	}
	return out
}

// EquationReport is the machine-readable view of a narrowed equation.
type EquationReport struct {
	Label    string   `json:"label"`
	Left     string   `json:"left"`
	Right    string   `json:"right"`
	Requires []string `json:"requires,omitempty"`
}

// NewEquationReports flattens narrowed equations in order.
func NewEquationReports(eqs []equation.Equation) []EquationReport {
	return lo.Map(eqs, func(eq equation.Equation, _ int) EquationReport {
		return EquationReport{
			Label: eq.Label,
			Left:  eq.Left.String(),
			Right: eq.Right.String(),
			Requires: lo.Map(eq.Requires, func(p kore.Predicate, _ int) string {
				return p.String()
			}),
		}
	})
}

func substStrings(s kore.Substitution) map[string]string {
	if len(s) == 0 {
		return nil
	}
	out := make(map[string]string, len(s))
	for name, img := range s {
		out[name] = img.String()
	}
	return out
}

func sortStrings(m map[string]kore.Sort) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for name, sort := range m {
		out[name] = sort.String()
	}
	return out
}
