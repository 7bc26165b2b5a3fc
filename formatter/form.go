package formatter

import (
	"strings"

	"github.com/samber/lo"

	"github.com/korelang/ksym/internal/equation"
	"github.com/korelang/ksym/internal/kore"
	"github.com/korelang/ksym/internal/norm"
)

// FormatForm renders a definedness result. Each disjunct becomes an
// indented block of its conjuncts.
func FormatForm(form norm.Form) string {
	var b strings.Builder
	switch {
	case form.IsBottom():
		b.WriteString(failureStyle.Sprint("ceil: \\bottom\n"))
		return b.String()
	case form.IsTop():
		b.WriteString(successStyle.Sprint("ceil: \\top\n"))
		return b.String()
	}

	b.WriteString(successStyle.Sprintf("ceil: %d disjuncts\n", form.Size()))
	for i, c := range form.Items() {
		b.WriteString(labelStyle.Sprintf("  #%d:\n", i+1))
		if c.IsTop() {
			b.WriteString(termStyle.Sprint("    \\top\n"))
			continue
		}
		for _, p := range c.Items() {
			b.WriteString(termStyle.Sprintf("    %s\n", p))
		}
	}
	return b.String()
}

// FormatEquations renders narrowed equations with aligned labels.
func FormatEquations(eqs []equation.Equation) string {
	var b strings.Builder
	if len(eqs) == 0 {
		b.WriteString(failureStyle.Sprint("equations: none apply\n"))
		return b.String()
	}

	b.WriteString(successStyle.Sprintf("equations: %d\n", len(eqs)))
	width := 0
	for _, eq := range eqs {
		if len(eq.Label) > width {
			width = len(eq.Label)
		}
	}
	for _, eq := range eqs {
		b.WriteString(labelStyle.Sprintf("  %-*s ", width+1, eq.Label+":"))
		b.WriteString(termStyle.Sprint(eq.Left.String()))
		b.WriteString(arrowStyle.Sprint(" => "))
		b.WriteString(termStyle.Sprint(eq.Right.String()))
		if len(eq.Requires) > 0 {
			reqs := lo.Map(eq.Requires, func(p kore.Predicate, _ int) string { return p.String() })
			b.WriteString(labelStyle.Sprint(" requires "))
			b.WriteString(termStyle.Sprint(strings.Join(reqs, " /\\ ")))
		}
		b.WriteString("\n")
	}
	return b.String()
}
