// odoorg reorganizes Odoo source files into conventional order: field
// attributes, class sections and module layout. It can also apply CSV-driven
// batch renames across Python and XML.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/odoorg/odoorg/internal/apply"
	"github.com/odoorg/odoorg/internal/discover"
	"github.com/odoorg/odoorg/internal/extract"
	"github.com/odoorg/odoorg/internal/model"
	"github.com/odoorg/odoorg/internal/rename"
	"github.com/odoorg/odoorg/internal/reorg"
	"github.com/odoorg/odoorg/internal/report"
)

var version = "dev"

// errPartialFailure signals that some files failed while others succeeded;
// the summary has already been printed when it is returned.
var errPartialFailure = fmt.Errorf("some files failed")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if err != errPartialFailure {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

type config struct {
	root          string
	base          string // directory joined with discovered relative paths
	recursive     bool
	dryRun        bool
	backup        bool
	backupDir     string
	level         reorg.Level
	headers       bool
	showDiff      bool
	jsonOut       bool
	renameCSV     string
	minConfidence float64
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("odoorg", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		cfg         config
		mode        string
		showVersion bool
	)

	fs.BoolVar(&cfg.recursive, "r", false, "process directories recursively")
	fs.BoolVar(&cfg.recursive, "recursive", false, "process directories recursively")
	fs.BoolVar(&cfg.dryRun, "n", false, "compute changes but do not write them")
	fs.BoolVar(&cfg.dryRun, "dry-run", false, "compute changes but do not write them")
	fs.BoolVar(&cfg.backup, "backup", false, "copy originals to timestamped backups before writing")
	fs.StringVar(&cfg.backupDir, "backup-dir", "", "directory for backup copies (default: alongside each file)")
	fs.StringVar(&mode, "m", "attrs", "reorganization mode: attrs, class, module or all")
	fs.StringVar(&mode, "mode", "attrs", "reorganization mode: attrs, class, module or all")
	fs.BoolVar(&cfg.headers, "headers", false, "emit section-header comments between groups")
	fs.BoolVar(&cfg.showDiff, "diff", false, "print unified diffs of pending changes")
	fs.BoolVar(&cfg.jsonOut, "json", false, "print the summary as JSON")
	fs.StringVar(&cfg.renameCSV, "rename", "", "apply renames from a CSV file instead of reorganizing")
	fs.Float64Var(&cfg.minConfidence, "min-confidence", 0, "skip rename rows below this confidence")
	fs.BoolVar(&showVersion, "V", false, "show version and exit")
	fs.BoolVar(&showVersion, "version", false, "show version and exit")

	if err := fs.Parse(reorderArgs(args)); err != nil {
		return err
	}

	if showVersion {
		_, _ = fmt.Fprintf(stdout, "odoorg %s\n", version)
		return nil
	}

	level, err := reorg.ParseLevel(mode)
	if err != nil {
		return err
	}
	cfg.level = level

	root := "."
	if fs.NArg() > 0 {
		root = fs.Arg(0)
	}
	root, err = filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolving root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("root path: %w", err)
	}
	cfg.root = root
	cfg.base = root
	if !info.IsDir() {
		cfg.base = filepath.Dir(root)
	}

	var summary *report.Summary
	if cfg.renameCSV != "" {
		summary, err = runRename(cfg, stdout, stderr)
	} else {
		summary, err = runReorg(cfg, stdout, stderr)
	}
	if err != nil {
		return err
	}

	if cfg.jsonOut {
		if err := summary.WriteJSON(stdout); err != nil {
			return err
		}
	} else {
		if err := summary.WriteText(stdout); err != nil {
			return err
		}
	}

	if !summary.OK() {
		return errPartialFailure
	}
	return nil
}

// runReorg is the batch driver for reorganization. Files are processed one
// at a time, each with its own fresh inventory; a failure in one file never
// aborts its siblings.
func runReorg(cfg config, stdout, stderr io.Writer) (*report.Summary, error) {
	files, err := discover.Files(cfg.root, []string{".py"}, cfg.recursive)
	if err != nil {
		return nil, fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no Python files found under %s", cfg.root)
	}

	r := reorg.New(reorg.Options{Headers: cfg.headers})
	summary := &report.Summary{DryRun: cfg.dryRun}

	for _, rel := range files {
		path := filepath.Join(cfg.base, rel)
		summary.Add(processOne(r, cfg, path, rel, stdout, stderr))
	}
	return summary, nil
}

func processOne(r *reorg.Reorganizer, cfg config, path, rel string, stdout, stderr io.Writer) model.FileResult {
	source, err := apply.ReadFile(path)
	if err != nil {
		return model.FileResult{Path: rel, Status: model.StatusFailed, Err: err.Error()}
	}

	res, err := r.Reorganize(rel, source, cfg.level)
	if err != nil {
		if pe, ok := err.(*extract.ParseError); ok {
			_, _ = fmt.Fprintf(stderr, "Warning: %v (skipped)\n", pe)
			return model.FileResult{Path: rel, Status: model.StatusFailed, Err: pe.Error()}
		}
		return model.FileResult{Path: rel, Status: model.StatusFailed, Err: err.Error()}
	}

	updated := []byte(res.Text)
	if string(source) == res.Text {
		return model.FileResult{Path: rel, Status: model.StatusUnchanged, Categories: res.Categories}
	}

	if cfg.showDiff {
		if err := report.WriteDiff(stdout, rel, source, updated); err != nil {
			_, _ = fmt.Fprintf(stderr, "Warning: diff for %s: %v\n", rel, err)
		}
	}

	if _, err := apply.Apply(path, source, updated, applyOptions(cfg)); err != nil {
		return model.FileResult{Path: rel, Status: model.StatusFailed, Err: err.Error()}
	}

	return model.FileResult{
		Path:       rel,
		Status:     model.StatusChanged,
		Changes:    res.Changes,
		Categories: res.Categories,
	}
}

// runRename is the batch driver for CSV renames, covering Python and XML.
func runRename(cfg config, stdout, stderr io.Writer) (*report.Summary, error) {
	f, err := os.Open(cfg.renameCSV)
	if err != nil {
		return nil, fmt.Errorf("opening rename csv: %w", err)
	}
	defer f.Close()

	entries, err := rename.LoadCSV(f, cfg.minConfidence)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no rename entries above confidence %.2f", cfg.minConfidence)
	}

	files, err := discover.Files(cfg.root, []string{".py", ".xml"}, cfg.recursive)
	if err != nil {
		return nil, fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no Python or XML files found under %s", cfg.root)
	}

	summary := &report.Summary{DryRun: cfg.dryRun}
	for _, rel := range files {
		path := filepath.Join(cfg.base, rel)
		source, err := apply.ReadFile(path)
		if err != nil {
			summary.Add(model.FileResult{Path: rel, Status: model.StatusFailed, Err: err.Error()})
			continue
		}

		updated, count := rename.Apply(source, entries)
		if count == 0 {
			summary.Add(model.FileResult{Path: rel, Status: model.StatusUnchanged})
			continue
		}

		if cfg.showDiff {
			if err := report.WriteDiff(stdout, rel, source, updated); err != nil {
				_, _ = fmt.Fprintf(stderr, "Warning: diff for %s: %v\n", rel, err)
			}
		}

		if _, err := apply.Apply(path, source, updated, applyOptions(cfg)); err != nil {
			summary.Add(model.FileResult{Path: rel, Status: model.StatusFailed, Err: err.Error()})
			continue
		}
		summary.Add(model.FileResult{Path: rel, Status: model.StatusChanged, Changes: count})
	}
	return summary, nil
}

func applyOptions(cfg config) apply.Options {
	return apply.Options{
		DryRun:    cfg.dryRun,
		Backup:    cfg.backup,
		BackupDir: cfg.backupDir,
	}
}

// flagsWithValue lists flags that take a value argument.
var flagsWithValue = map[string]bool{
	"-m": true, "--m": true,
	"-mode": true, "--mode": true,
	"-backup-dir": true, "--backup-dir": true,
	"-rename": true, "--rename": true,
	"-min-confidence": true, "--min-confidence": true,
}

// reorderArgs moves positional arguments after all flags so Go's flag package
// can parse them correctly (it stops at the first non-flag arg).
func reorderArgs(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		if args[i] == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if len(args[i]) > 0 && args[i][0] == '-' {
			flags = append(flags, args[i])
			if flagsWithValue[args[i]] && i+1 < len(args) && !strings.Contains(args[i], "=") {
				i++
				flags = append(flags, args[i])
			}
		} else {
			positional = append(positional, args[i])
		}
	}
	return append(flags, positional...)
}
