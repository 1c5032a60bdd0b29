package report

import (
	"io"

	"github.com/pmezard/go-difflib/difflib"
)

// WriteDiff emits a unified diff of one pending change, for --diff previews.
func WriteDiff(w io.Writer, path string, original, updated []byte) error {
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(original)),
		B:        difflib.SplitLines(string(updated)),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, text)
	return err
}
