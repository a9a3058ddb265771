package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestInternalImportForbiddenPredicate(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"amity/internal/core", true},
		{"amity/pkg/domain", false},
		{"github.com/xuri/excelize/v2", false},
	}
	for _, c := range cases {
		if got := InternalImportForbidden(c.in); got != c.want {
			t.Fatalf("InternalImportForbidden(%q)=%v want %v", c.in, got, c.want)
		}
	}
}

func TestImportsAnyPredicate(t *testing.T) {
	forbidden := ImportsAny("amity/internal/cli", "amity/internal/report")
	cases := []struct {
		in   string
		want bool
	}{
		{"amity/internal/cli", true},
		{"amity/internal/report/sub", true},
		{"amity/internal/client", false},
		{"amity/internal/core", false},
	}
	for _, c := range cases {
		if got := forbidden(c.in); got != c.want {
			t.Fatalf("ImportsAny(%q)=%v want %v", c.in, got, c.want)
		}
	}
}

type captureFatal struct{ msg string }

func (c *captureFatal) Fatalf(format string, args ...any) { c.msg = fmt.Sprintf(format, args...) }

func TestDirectImportViolations(t *testing.T) {
	dir := t.TempDir()
	src := "package x\n\nimport (\n\t\"fmt\"\n\t\"amity/internal/cli\"\n)\n"
	if err := os.WriteFile(filepath.Join(dir, "x.go"), []byte(src), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	testSrc := "package x\n\nimport \"amity/internal/report\"\n"
	if err := os.WriteFile(filepath.Join(dir, "x_test.go"), []byte(testSrc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	viols, err := directImportViolations(dir, InternalImportForbidden)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(viols) != 1 || viols[0] != "amity/internal/cli (in x.go)" {
		t.Fatalf("unexpected violations %v", viols)
	}

	var c captureFatal
	failIfDirectViolations(&c, "layering", viols)
	if c.msg == "" {
		t.Fatalf("expected failure message")
	}
	c.msg = ""
	failIfDirectViolations(&c, "layering", nil)
	if c.msg != "" {
		t.Fatalf("unexpected failure %q", c.msg)
	}

	if _, err := directImportViolations(filepath.Join(dir, "missing"), InternalImportForbidden); err == nil {
		t.Fatalf("expected error for missing dir")
	}
}
