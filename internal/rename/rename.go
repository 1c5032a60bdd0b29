// Package rename applies CSV-driven field and method renames across Python
// and XML sources. It only applies renames someone else decided on: there is
// no detection or scoring here, just word-boundary substitution with a
// confidence cutoff over the CSV's own column.
package rename

import (
	"encoding/csv"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Entry is one rename instruction. Module and Model identify where the rename
// originated; they are validated and retained but do not scope substitution,
// which is applied to every discovered file (a rename of a field shared by
// several models must hit the views of all of them).
type Entry struct {
	Old        string
	New        string
	ItemType   string // "field" or "method"
	Module     string
	Model      string
	Confidence float64

	re *regexp.Regexp
}

// LoadCSV parses rename instructions with columns
// old_name,new_name,item_type,module,model,confidence. A header row is
// detected and skipped. Rows below minConfidence are dropped. The module and
// model columns are informational only; see Entry. A malformed file is a
// configuration error and fails the whole run, unlike per-file processing
// errors.
func LoadCSV(r io.Reader, minConfidence float64) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "reading rename csv")
	}

	var entries []Entry
	for i, rec := range records {
		if i == 0 && len(rec) > 0 && rec[0] == "old_name" {
			continue
		}
		if len(rec) < 3 {
			return nil, errors.Errorf("rename csv row %d: want at least 3 columns, got %d", i+1, len(rec))
		}

		e := Entry{
			Old:        strings.TrimSpace(rec[0]),
			New:        strings.TrimSpace(rec[1]),
			ItemType:   strings.TrimSpace(rec[2]),
			Confidence: 1,
		}
		if e.Old == "" || e.New == "" {
			return nil, errors.Errorf("rename csv row %d: empty name", i+1)
		}
		if e.ItemType != "field" && e.ItemType != "method" {
			return nil, errors.Errorf("rename csv row %d: item_type %q (want field or method)", i+1, e.ItemType)
		}
		if len(rec) > 3 {
			e.Module = strings.TrimSpace(rec[3])
		}
		if len(rec) > 4 {
			e.Model = strings.TrimSpace(rec[4])
		}
		if len(rec) > 5 && strings.TrimSpace(rec[5]) != "" {
			c, err := strconv.ParseFloat(strings.TrimSpace(rec[5]), 64)
			if err != nil {
				return nil, errors.Wrapf(err, "rename csv row %d: confidence", i+1)
			}
			e.Confidence = c
		}

		if e.Confidence < minConfidence {
			continue
		}
		e.re = regexp.MustCompile(`\b` + regexp.QuoteMeta(e.Old) + `\b`)
		entries = append(entries, e)
	}
	return entries, nil
}

// Apply performs all renames on one file's content and returns the updated
// bytes plus the number of substitutions. Word-boundary matching covers both
// Python identifiers and XML attribute values (name="...", domains, xpath
// expressions) without touching partial matches.
func Apply(source []byte, entries []Entry) ([]byte, int) {
	text := string(source)
	total := 0
	for _, e := range entries {
		matches := e.re.FindAllStringIndex(text, -1)
		if len(matches) == 0 {
			continue
		}
		total += len(matches)
		text = e.re.ReplaceAllString(text, e.New)
	}
	return []byte(text), total
}
