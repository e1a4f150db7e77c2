package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(filepath.Join(dir, name)), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLintTargets(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ok.go", "package q\n\nconst QOne = `--sql 0f6f3c1e-8d4b-4a52-9e55-2a8c4d9b1f70\nselect 1;\n`\n")
	writeFile(t, dir, "dup.go", "package q\n\nconst QTwo = `--sql 0f6f3c1e-8d4b-4a52-9e55-2a8c4d9b1f70\nselect 2;\n`\n")
	writeFile(t, dir, "bare.go", "package q\n\nconst QThree = `update t set x = 1`\n")
	writeFile(t, dir, "prose.go", "package q\n\nconst msg = \"Issue deleted successfully!\"\n")
	writeFile(t, dir, "_skip/skip.go", "package skip\n\nconst QSkip = `select 3`\n")

	violations, err := lintTargets([]string{dir})
	if err != nil {
		t.Fatalf("lintTargets: %v", err)
	}
	if len(violations) != 2 {
		t.Fatalf("violations = %+v, want 2", violations)
	}
	var missing, dup bool
	for _, v := range violations {
		switch {
		case v.name == "QThree" && strings.Contains(v.message, "missing"):
			missing = true
		case strings.Contains(v.message, "already used"):
			dup = true
		}
	}
	if !missing || !dup {
		t.Fatalf("violations = %+v", violations)
	}
}

func TestLintRepositoryQueries(t *testing.T) {
	violations, err := lintTargets([]string{filepath.Join("..", "..", "sqlinline")})
	if err != nil {
		t.Fatalf("lintTargets: %v", err)
	}
	for _, v := range violations {
		t.Errorf("%s:%d %s (%s)", v.file, v.line, v.message, v.name)
	}
}
