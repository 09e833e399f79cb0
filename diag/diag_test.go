package diag

import (
	"bytes"
	"go/token"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	j "github.com/goccy/go-json"
	"go.lsp.dev/protocol"
)

func pos(file string, line, col int) token.Position {
	return token.Position{Filename: file, Line: line, Column: col}
}

func TestKindClassification(t *testing.T) {
	tests := []struct {
		kind     Kind
		class    Class
		severity Severity
	}{
		{OnlyStructs, StructuralError, Error},
		{OnlyProperties, StructuralError, Error},
		{ReferenceCycle, StructuralError, Error},
		{ExampleTypeMismatch, ValidationError, Warning},
		{InvalidLiteral, ValidationError, Error},
		{UnsupportedEnum, UnsupportedFeatureError, Warning},
	}
	for _, tt := range tests {
		if got := tt.kind.Class(); got != tt.class {
			t.Errorf("%s.Class() = %v, want %v", tt.kind, got, tt.class)
		}
		if got := tt.kind.Severity(); got != tt.severity {
			t.Errorf("%s.Severity() = %v, want %v", tt.kind, got, tt.severity)
		}
	}
}

func TestListErr(t *testing.T) {
	var l List
	l.Add(ExampleTypeMismatch, pos("a.go", 3, 2), "field %q", "x")
	if l.HasErrors() {
		t.Fatal("warning-only list reports errors")
	}
	if err := l.Err(); err != nil {
		t.Fatalf("Err() = %v, want nil", err)
	}
	l.Add(OnlyStructs, pos("a.go", 1, 6), "nope")
	if !l.HasErrors() {
		t.Fatal("HasErrors() = false")
	}
	err := l.Err()
	if err == nil {
		t.Fatal("Err() = nil")
	}
	if want := "a.go:1:6: error: nope [onlyStructs]"; err.Error() != want {
		t.Errorf("Err() = %q, want %q", err.Error(), want)
	}
}

func TestListSort(t *testing.T) {
	l := List{
		New(InvalidLiteral, pos("b.go", 1, 1), "b"),
		New(InvalidLiteral, pos("a.go", 9, 1), "a9"),
		New(InvalidLiteral, pos("a.go", 2, 5), "a2"),
	}
	l.Sort()
	var got []string
	for _, d := range l {
		got = append(got, d.Message)
	}
	if diff := cmp.Diff([]string{"a2", "a9", "b"}, got); diff != "" {
		t.Errorf("Sort() mismatch (-want +got):\n%s", diff)
	}
}

func TestPrinterText(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewPrinter(buf, TextFormat, false)
	l := List{New(UnsupportedEnum, pos("m.go", 4, 2), "field %q has enum type", "Color")}
	if err := p.Print(l); err != nil {
		t.Fatal(err)
	}
	want := "m.go:4:2: warning: field \"Color\" has enum type [unsupportedEnum]\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestPrinterJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewPrinter(buf, JSONFormat, false)
	l := List{New(OnlyStructs, pos("m.go", 7, 6), "only structs")}
	if err := p.Print(l); err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := j.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal %q: %v", buf.String(), err)
	}
	want := map[string]any{
		"kind":     "onlyStructs",
		"class":    "structural",
		"severity": "error",
		"message":  "only structs",
		"file":     "m.go",
		"line":     float64(7),
		"column":   float64(6),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("json mismatch (-want +got):\n%s", diff)
	}
}

func TestToLSP(t *testing.T) {
	l := List{
		New(OnlyProperties, pos("/tmp/a.go", 10, 3), "m1"),
		New(ExampleTypeMismatch, pos("/tmp/b.go", 1, 1), "m2"),
		New(OnlyProperties, pos("/tmp/a.go", 12, 3), "m3"),
	}
	got := ToLSP(l)
	if len(got) != 2 {
		t.Fatalf("got %d params, want 2", len(got))
	}
	if !strings.HasSuffix(string(got[0].URI), "/tmp/a.go") {
		t.Errorf("first URI = %s", got[0].URI)
	}
	if n := len(got[0].Diagnostics); n != 2 {
		t.Fatalf("a.go has %d diagnostics, want 2", n)
	}
	d := got[0].Diagnostics[0]
	if d.Range.Start.Line != 9 || d.Range.Start.Character != 2 {
		t.Errorf("start = %+v, want line 9 char 2", d.Range.Start)
	}
	if d.Severity != protocol.DiagnosticSeverityError {
		t.Errorf("severity = %v", d.Severity)
	}
	if got[1].Diagnostics[0].Severity != protocol.DiagnosticSeverityWarning {
		t.Errorf("b.go severity = %v", got[1].Diagnostics[0].Severity)
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"", "text", "json", "lsp"} {
		if _, err := ParseFormat(s); err != nil {
			t.Errorf("ParseFormat(%q) error = %v", s, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) succeeded")
	}
}
