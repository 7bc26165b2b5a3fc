// Package formatter renders engine results for terminals. Every result
// kind has its own formatter; fatih/color drops the escape codes when
// the output is not a terminal, which is also what the tests assert
// against. Machine-readable views for the JSON output mode live in
// report.go.
package formatter

import (
	"fmt"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/samber/lo"

	"github.com/korelang/ksym/internal/kore"
	"github.com/korelang/ksym/internal/unify"
)

var (
	successStyle = color.New(color.FgGreen, color.Bold)
	partialStyle = color.New(color.FgHiYellow, color.Bold)
	failureStyle = color.New(color.FgRed, color.Bold)
	labelStyle   = color.New(color.FgCyan, color.Bold)
	arrowStyle   = color.New(color.FgHiBlue, color.Bold)
	termStyle    = color.New(color.FgWhite)
)

// resultFormatter is the interface that wraps the Format method.
// Implementations render one concrete unification outcome kind.
type resultFormatter interface {
	Format(res unify.Result) string
}

// getResultFormatter is a factory function that returns the
// appropriate formatter for a concrete outcome. Unknown kinds fall
// back to the raw String form.
func getResultFormatter(res unify.Result) resultFormatter {
	switch res.(type) {
	case unify.Success:
		return &successFormatter{}
	case unify.Remainder:
		return &remainderFormatter{}
	case unify.Failed:
		return &failedFormatter{}
	case unify.SortError:
		return &sortErrorFormatter{}
	default:
		return &rawFormatter{}
	}
}

// FormatResult renders a unification outcome as an aligned block.
func FormatResult(res unify.Result) string {
	return getResultFormatter(res).Format(res)
}

// writeBindings renders name -> image lines under a section label,
// names padded to a common width.
func writeBindings(b *strings.Builder, label string, names []string, image func(string) string) {
	if len(names) == 0 {
		return
	}
	b.WriteString(labelStyle.Sprintf("  %s:\n", label))
	width := 0
	for _, name := range names {
		if len(name) > width {
			width = len(name)
		}
	}
	for _, name := range names {
		b.WriteString(fmt.Sprintf("    %-*s ", width, name))
		b.WriteString(arrowStyle.Sprint("-> "))
		b.WriteString(termStyle.Sprintf("%s\n", image(name)))
	}
}

func writeSortBindings(b *strings.Builder, bindings map[string]kore.Sort) {
	writeBindings(b, "sorts", sortedKeys(bindings), func(name string) string {
		return bindings[name].String()
	})
}

func sortedKeys(m map[string]kore.Sort) []string {
	keys := lo.Keys(m)
	slices.Sort(keys)
	return keys
}
