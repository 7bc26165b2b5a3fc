package ceil

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/korelang/ksym/internal/kore"
)

// SideCondition is what the surrounding engine already knows to hold
// while a term is simplified. IsDefined answers exact-term definedness
// lookups. Key is a short stable token identifying the condition, used
// to recognize terms already simplified under the same assumptions.
type SideCondition interface {
	IsDefined(t kore.Term) bool
	Key() string
}

// Condition is a SideCondition backed by predicates assumed true.
// Ceil predicates assert their term defined; In predicates assert
// their element defined (membership presupposes a value).
type Condition struct {
	preds   []kore.Predicate
	defined []kore.Term
	key     string
}

var _ SideCondition = (*Condition)(nil)

// NewSideCondition builds a condition from assumed predicates.
// Conjunctions are flattened; everything else is kept whole.
func NewSideCondition(preds ...kore.Predicate) *Condition {
	c := &Condition{}
	for _, p := range preds {
		c.add(p)
	}
	c.key = conditionKey(c.preds)
	return c
}

func (c *Condition) add(p kore.Predicate) {
	if p == nil || p.IsTop() {
		return
	}
	if and, ok := p.(kore.And); ok {
		c.add(and.Left)
		c.add(and.Right)
		return
	}
	c.preds = append(c.preds, p)
	switch pred := p.(type) {
	case kore.Ceil:
		c.defined = append(c.defined, pred.Of)
	case kore.In:
		c.defined = append(c.defined, pred.Element)
	}
}

// IsDefined reports whether the condition asserts this exact term
// defined.
func (c *Condition) IsDefined(t kore.Term) bool {
	for _, d := range c.defined {
		if kore.TermEqual(d, t) {
			return true
		}
	}
	return false
}

// Key returns a token stable under reordering of the assumed
// predicates.
func (c *Condition) Key() string {
	return c.key
}

// Predicates returns the flattened assumptions in insertion order.
func (c *Condition) Predicates() []kore.Predicate {
	return c.preds
}

func (c *Condition) String() string {
	if len(c.preds) == 0 {
		return "\\top"
	}
	parts := make([]string, len(c.preds))
	for i, p := range c.preds {
		parts[i] = p.String()
	}
	return strings.Join(parts, " /\\ ")
}

func conditionKey(preds []kore.Predicate) string {
	prints := make([]uint64, len(preds))
	for i, p := range preds {
		prints[i] = kore.PredicateFingerprint(p)
	}
	slices.Sort(prints)
	d := xxhash.New()
	var buf [8]byte
	for _, fp := range prints {
		for i := range buf {
			buf[i] = byte(fp >> (8 * i))
		}
		_, _ = d.Write(buf[:])
	}
	return fmt.Sprintf("%016x", d.Sum64())
}
