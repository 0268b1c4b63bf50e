package report

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Diff renders a unified diff between the error text of two error lists,
// one error per line, for showing *why* an error list changed across a
// revision rather than just asserting that it did.
func Diff(fromName string, from []error, toName string, to []error) (string, error) {
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(joinErrors(from)),
		B:        difflib.SplitLines(joinErrors(to)),
		FromFile: fromName,
		ToFile:   toName,
		Context:  3,
	}
	return difflib.GetUnifiedDiffString(ud)
}

func joinErrors(errs []error) string {
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = e.Error()
	}
	return strings.Join(lines, "\n")
}
