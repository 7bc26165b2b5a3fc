package formatter

import (
	"strings"

	"github.com/korelang/ksym/internal/unify"
)

type successFormatter struct{}

func (f *successFormatter) Format(res unify.Result) string {
	success := res.(unify.Success)
	var b strings.Builder
	b.WriteString(successStyle.Sprint("unification: success\n"))
	writeBindings(&b, "bindings", success.Subst.SortedNames(), func(name string) string {
		return success.Subst[name].String()
	})
	writeSortBindings(&b, success.SortBindings)
	return b.String()
}

type remainderFormatter struct{}

func (f *remainderFormatter) Format(res unify.Result) string {
	rem := res.(unify.Remainder)
	var b strings.Builder
	b.WriteString(partialStyle.Sprint("unification: remainder\n"))
	writeBindings(&b, "bindings", rem.Subst.SortedNames(), func(name string) string {
		return rem.Subst[name].String()
	})
	writeSortBindings(&b, rem.SortBindings)
	b.WriteString(labelStyle.Sprint("  undecided:\n"))
	for _, p := range rem.Pairs {
		b.WriteString("    ")
		b.WriteString(termStyle.Sprint(p.Left.String()))
		b.WriteString(arrowStyle.Sprint(" =? "))
		b.WriteString(termStyle.Sprintf("%s\n", p.Right))
	}
	return b.String()
}

type failedFormatter struct{}

func (f *failedFormatter) Format(res unify.Result) string {
	failed := res.(unify.Failed)
	var b strings.Builder
	b.WriteString(failureStyle.Sprintf("unification: failed (%s)\n", failed.Reason))
	b.WriteString(labelStyle.Sprint("  left:  "))
	b.WriteString(termStyle.Sprintf("%s\n", failed.Left))
	b.WriteString(labelStyle.Sprint("  right: "))
	b.WriteString(termStyle.Sprintf("%s\n", failed.Right))
	return b.String()
}

type sortErrorFormatter struct{}

func (f *sortErrorFormatter) Format(res unify.Result) string {
	sortErr := res.(unify.SortError)
	var b strings.Builder
	b.WriteString(failureStyle.Sprintf("unification: sort error (%s)\n", sortErr.Reason))
	if sortErr.Var != "" {
		b.WriteString(labelStyle.Sprint("  var:   "))
		b.WriteString(termStyle.Sprintf("%s\n", sortErr.Var))
	}
	b.WriteString(labelStyle.Sprint("  left:  "))
	b.WriteString(termStyle.Sprintf("%s\n", sortErr.Left))
	b.WriteString(labelStyle.Sprint("  right: "))
	b.WriteString(termStyle.Sprintf("%s\n", sortErr.Right))
	return b.String()
}

type rawFormatter struct{}

func (f *rawFormatter) Format(res unify.Result) string {
	return termStyle.Sprintf("%s\n", res)
}
