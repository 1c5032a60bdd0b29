// Package apply writes regenerated source back to disk under dry-run and
// backup policies. It owns the only side effects in the pipeline: everything
// upstream is a pure text transform.
package apply

import (
	"bytes"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Options controls how changes are persisted.
type Options struct {
	DryRun    bool
	Backup    bool
	BackupDir string // defaults to alongside the file
}

// Outcome reports what Apply did.
type Outcome struct {
	Written    bool
	BackupPath string
}

// ReadFile reads a source file as UTF-8, falling back to latin-1 when the
// bytes do not decode, so legacy-encoded files still round-trip.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading file")
	}
	if utf8.Valid(data) {
		return data, nil
	}
	return latin1ToUTF8(data), nil
}

func latin1ToUTF8(data []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(len(data))
	for _, b := range data {
		buf.WriteRune(rune(b))
	}
	return buf.Bytes()
}

// Apply persists updated content for path. The backup copy, when enabled,
// happens-before the write; a write failure after a successful backup is a
// recoverable file-scoped error, never a process abort. Dry-run performs no
// side effects at all: the caller has already computed the full result, so
// previews are exactly what a real run would write.
func Apply(path string, original, updated []byte, opts Options) (Outcome, error) {
	if bytes.Equal(original, updated) {
		return Outcome{}, nil
	}
	if opts.DryRun {
		return Outcome{}, nil
	}

	var out Outcome
	if opts.Backup {
		bp, err := writeBackup(path, original, opts.BackupDir)
		if err != nil {
			return out, errors.Wrap(err, "creating backup")
		}
		out.BackupPath = bp
	}

	info, err := os.Stat(path)
	mode := os.FileMode(0o644)
	if err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(path, updated, mode); err != nil {
		return out, errors.Wrapf(err, "writing %s", path)
	}
	out.Written = true
	return out, nil
}

// writeBackup copies the original bytes to a timestamped sibling (or into
// dir when given) and returns the backup path.
func writeBackup(path string, original []byte, dir string) (string, error) {
	stamp := time.Now().Format("20060102-150405")
	name := filepath.Base(path) + "." + stamp + ".bak"

	var bp string
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
		bp = filepath.Join(dir, name)
	} else {
		bp = filepath.Join(filepath.Dir(path), name)
	}

	if err := os.WriteFile(bp, original, 0o644); err != nil {
		return "", err
	}
	return bp, nil
}
