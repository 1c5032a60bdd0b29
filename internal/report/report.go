// Package report aggregates per-file results into a run summary and renders
// it as aligned text tables (TOON-style tabular encoding) or JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/odoorg/odoorg/internal/model"
)

// Summary is the aggregated outcome of one batch run.
type Summary struct {
	Files     []model.FileResult `json:"files"`
	Changed   int                `json:"changed"`
	Unchanged int                `json:"unchanged"`
	Skipped   int                `json:"skipped"`
	Failed    int                `json:"failed"`
	DryRun    bool               `json:"dry_run"`
}

// Add records one file result and updates the counters.
func (s *Summary) Add(r model.FileResult) {
	s.Files = append(s.Files, r)
	switch r.Status {
	case model.StatusChanged:
		s.Changed++
	case model.StatusUnchanged:
		s.Unchanged++
	case model.StatusSkipped:
		s.Skipped++
	case model.StatusFailed:
		s.Failed++
	}
}

// OK reports whether every file processed cleanly. "No changes needed" is
// still success; the process exit code is derived from this.
func (s *Summary) OK() bool {
	return s.Failed == 0
}

// WriteJSON renders the summary as JSON.
func (s *Summary) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// WriteText renders the summary as a tabular report.
func (s *Summary) WriteText(w io.Writer) error {
	var rows [][]string
	for i := range s.Files {
		f := &s.Files[i]
		detail := strings.Join(f.Categories, " ")
		if f.Err != "" {
			detail = f.Err
		}
		rows = append(rows, []string{
			f.Path,
			string(f.Status),
			fmt.Sprintf("%d", f.Changes),
			detail,
		})
	}

	if _, err := io.WriteString(w, formatTabular("files", []string{"path", "status", "changes", "detail"}, rows)); err != nil {
		return err
	}

	verb := "applied"
	if s.DryRun {
		verb = "pending (dry-run)"
	}
	_, err := fmt.Fprintf(w, "\ntotal[1]{changed,unchanged,skipped,failed}:\n  %d,%d,%d,%d (%s)\n",
		s.Changed, s.Unchanged, s.Skipped, s.Failed, verb)
	return err
}

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		b.WriteString("\n  " + strings.Join(encoded, ","))
	}
	b.WriteString("\n")
	return b.String()
}

func encodeValue(s string) string {
	if s == "" {
		return `""`
	}
	_, isKeyword := keywords[s]
	if needsQuoting.MatchString(s) || isKeyword ||
		(looksNumeric.MatchString(s) && strings.Contains(s, ".")) ||
		strings.TrimSpace(s) != s {
		return fmt.Sprintf("%q", s)
	}
	return s
}
