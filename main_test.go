package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const goodModule = `from odoo import fields, models


class Partner(models.Model):
    _name = "res.partner.ext"

    partner_id = fields.Many2one(required=True, comodel_name="res.partner", string="Partner")
`

const canonicalModule = `from odoo import fields, models


class Partner(models.Model):
    _name = "res.partner.ext"

    partner_id = fields.Many2one(comodel_name="res.partner", string="Partner", required=True)
`

func TestRunRewritesFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeTestFile(t, dir, "partner.py", goodModule)

	var stdout, stderr bytes.Buffer
	if err := run([]string{dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}

	data, _ := os.ReadFile(path)
	if string(data) != canonicalModule {
		t.Errorf("file content:\n%s\nwant:\n%s", data, canonicalModule)
	}
	if !strings.Contains(stdout.String(), "partner.py,changed,1") {
		t.Errorf("summary missing changed row:\n%s", stdout.String())
	}
}

func TestRunDryRunLeavesDiskAlone(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeTestFile(t, dir, "partner.py", goodModule)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"-n", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}

	data, _ := os.ReadFile(path)
	if string(data) != goodModule {
		t.Errorf("dry-run modified the file:\n%s", data)
	}
	if !strings.Contains(stdout.String(), "dry-run") {
		t.Errorf("summary does not flag dry-run:\n%s", stdout.String())
	}
}

func TestRunContinuesPastBrokenFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTestFile(t, dir, "a_good.py", goodModule)
	writeTestFile(t, dir, "broken.py", "def broken(:\n    pass\n")
	other := writeTestFile(t, dir, "z_good.py", goodModule)

	var stdout, stderr bytes.Buffer
	err := run([]string{dir}, &stdout, &stderr)
	if err != errPartialFailure {
		t.Fatalf("run = %v, want errPartialFailure", err)
	}

	// The healthy siblings were still processed.
	data, _ := os.ReadFile(other)
	if string(data) != canonicalModule {
		t.Errorf("sibling of broken file not processed:\n%s", data)
	}
	if !strings.Contains(stderr.String(), "Warning:") {
		t.Errorf("missing warning for broken file:\n%s", stderr.String())
	}
	if !strings.Contains(stdout.String(), "broken.py,failed") {
		t.Errorf("summary missing failed row:\n%s", stdout.String())
	}
}

func TestRunSingleFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeTestFile(t, dir, "partner.py", goodModule)
	writeTestFile(t, dir, "other.py", goodModule)

	var stdout, stderr bytes.Buffer
	if err := run([]string{path}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}

	data, _ := os.ReadFile(path)
	if string(data) != canonicalModule {
		t.Errorf("target file untouched:\n%s", data)
	}
	// The sibling was out of scope.
	sibling, _ := os.ReadFile(filepath.Join(dir, "other.py"))
	if string(sibling) != goodModule {
		t.Error("sibling file was processed")
	}
}

func TestRunRecursive(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	nested := writeTestFile(t, dir, filepath.Join("models", "partner.py"), goodModule)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"-r", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}

	data, _ := os.ReadFile(nested)
	if string(data) != canonicalModule {
		t.Errorf("nested file untouched:\n%s", data)
	}
}

func TestRunJSONOutput(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTestFile(t, dir, "partner.py", goodModule)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"--json", "-n", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	out := stdout.String()
	if !strings.Contains(out, `"changed": 1`) || !strings.Contains(out, `"dry_run": true`) {
		t.Errorf("json output:\n%s", out)
	}
}

func TestRunDiffOutput(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTestFile(t, dir, "partner.py", goodModule)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"--diff", "-n", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	out := stdout.String()
	if !strings.Contains(out, "--- a/partner.py") || !strings.Contains(out, "+++ b/partner.py") {
		t.Errorf("missing diff headers:\n%s", out)
	}
	if !strings.Contains(out, `-    partner_id = fields.Many2one(required=True,`) {
		t.Errorf("missing removed line:\n%s", out)
	}
}

func TestRunRename(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	py := writeTestFile(t, dir, "sale.py", "class S:\n    date_order = 1\n")
	xml := writeTestFile(t, dir, "sale.xml", `<field name="date_order"/>`+"\n")
	csv := writeTestFile(t, dir, "renames.csv",
		"old_name,new_name,item_type,module,model,confidence\n"+
			"date_order,order_date,field,sale,sale.order,0.9\n"+
			"guess_me,guessed,field,sale,sale.order,0.2\n")

	var stdout, stderr bytes.Buffer
	if err := run([]string{"--rename", csv, "--min-confidence", "0.5", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}

	pyData, _ := os.ReadFile(py)
	if !strings.Contains(string(pyData), "order_date = 1") {
		t.Errorf("python not renamed:\n%s", pyData)
	}
	xmlData, _ := os.ReadFile(xml)
	if !strings.Contains(string(xmlData), `name="order_date"`) {
		t.Errorf("xml not renamed:\n%s", xmlData)
	}
}

func TestRunVersion(t *testing.T) {
	t.Parallel()
	var stdout, stderr bytes.Buffer
	if err := run([]string{"--version"}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout.String(), "odoorg") {
		t.Errorf("version output: %q", stdout.String())
	}
}

func TestRunRejectsUnknownMode(t *testing.T) {
	t.Parallel()
	var stdout, stderr bytes.Buffer
	err := run([]string{"-m", "bogus", t.TempDir()}, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "unknown mode") {
		t.Errorf("err = %v, want unknown mode", err)
	}
}

func TestReorderArgs(t *testing.T) {
	t.Parallel()
	got := reorderArgs([]string{"addons/sale", "-n", "-m", "class"})
	want := []string{"-n", "-m", "class", "addons/sale"}
	if len(got) != len(want) {
		t.Fatalf("reorderArgs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("reorderArgs = %v, want %v", got, want)
		}
	}
}
