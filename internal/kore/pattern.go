package kore

import "strings"

// Pattern is a constrained term: a term component together with a
// predicate constraint and an accumulated substitution. A nil Term
// stands for the trivial (top) term component, which is how
// predicate-only results are represented.
type Pattern struct {
	Term      Term
	Predicate Predicate
	Subst     Substitution
}

// MkPattern builds an unconstrained pattern around a term.
func MkPattern(t Term) Pattern {
	return Pattern{Term: t, Predicate: Top{}, Subst: Substitution{}}
}

// IsTrivialTerm reports whether the term component is the trivial top
// term.
func (p Pattern) IsTrivialTerm() bool {
	return p.Term == nil
}

// IsBottom reports whether the constraint is syntactically bottom.
func (p Pattern) IsBottom() bool {
	return p.Predicate != nil && p.Predicate.IsBottom()
}

// WithPredicate conjoins an extra constraint onto the pattern.
func (p Pattern) WithPredicate(q Predicate) Pattern {
	switch {
	case q == nil || q.IsTop():
		return p
	case p.Predicate == nil || p.Predicate.IsTop():
		p.Predicate = q
	default:
		p.Predicate = And{Left: p.Predicate, Right: q}
	}
	return p
}

// ApplySubst pushes the pattern's substitution through its own term and
// predicate, returning the instantiated pattern. The substitution
// itself is kept so callers can still read the bindings.
func (p Pattern) ApplySubst() Pattern {
	if len(p.Subst) == 0 {
		return p
	}
	out := p
	if out.Term != nil {
		out.Term = p.Subst.ApplyToTerm(out.Term)
	}
	if out.Predicate != nil {
		out.Predicate = p.Subst.ApplyToPredicate(out.Predicate)
	}
	return out
}

func (p Pattern) String() string {
	var b strings.Builder
	if p.Term == nil {
		b.WriteString("\\top-term")
	} else {
		b.WriteString(p.Term.String())
	}
	if p.Predicate != nil && !p.Predicate.IsTop() {
		b.WriteString(" /\\ ")
		b.WriteString(p.Predicate.String())
	}
	if len(p.Subst) > 0 {
		b.WriteString(" | ")
		b.WriteString(p.Subst.String())
	}
	return b.String()
}

// OrPattern is a disjunction of patterns. An empty OrPattern is bottom.
type OrPattern []Pattern

// MkOrPattern wraps a single pattern.
func MkOrPattern(ps ...Pattern) OrPattern {
	return OrPattern(ps)
}

// IsBottom reports whether the disjunction has no feasible branch.
func (o OrPattern) IsBottom() bool {
	for _, p := range o {
		if !p.IsBottom() {
			return false
		}
	}
	return true
}

// Prune drops syntactically bottom branches.
func (o OrPattern) Prune() OrPattern {
	out := make(OrPattern, 0, len(o))
	for _, p := range o {
		if !p.IsBottom() {
			out = append(out, p)
		}
	}
	return out
}

func (o OrPattern) String() string {
	if len(o) == 0 {
		return "\\bottom"
	}
	parts := make([]string, len(o))
	for i, p := range o {
		parts[i] = p.String()
	}
	return strings.Join(parts, " \\/ ")
}
