package diag

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	j "github.com/goccy/go-json"
)

// Format selects how a Printer renders diagnostics.
type Format string

const (
	TextFormat Format = "text"
	JSONFormat Format = "json"
	LSPFormat  Format = "lsp"
)

// ParseFormat parses a diagnostics format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", TextFormat:
		return TextFormat, nil
	case JSONFormat, LSPFormat:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown diagnostics format %q (want text, json or lsp)", s)
}

// Printer writes diagnostics to an output stream.
type Printer struct {
	W      io.Writer
	Format Format
	Color  bool

	errColor  func(string, ...any) string
	warnColor func(string, ...any) string
	posColor  func(string, ...any) string
	kindColor func(string, ...any) string
}

// NewPrinter returns a printer for w.
func NewPrinter(w io.Writer, format Format, useColor bool) *Printer {
	p := &Printer{W: w, Format: format, Color: useColor}
	if useColor {
		errC := color.New(color.FgRed, color.Bold)
		errC.EnableColor()
		warnC := color.New(color.FgYellow, color.Bold)
		warnC.EnableColor()
		posC := color.New(color.Bold)
		posC.EnableColor()
		kindC := color.RGB(128, 128, 128)
		kindC.EnableColor()
		p.errColor = errC.SprintfFunc()
		p.warnColor = warnC.SprintfFunc()
		p.posColor = posC.SprintfFunc()
		p.kindColor = kindC.SprintfFunc()
	} else {
		p.errColor = fmt.Sprintf
		p.warnColor = fmt.Sprintf
		p.posColor = fmt.Sprintf
		p.kindColor = fmt.Sprintf
	}
	return p
}

type jsonDiagnostic struct {
	Kind     Kind   `json:"kind"`
	Class    string `json:"class"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	File     string `json:"file,omitempty"`
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
}

// Print writes every diagnostic in l.
func (p *Printer) Print(l List) error {
	switch p.Format {
	case JSONFormat:
		enc := j.NewEncoder(p.W)
		for _, d := range l {
			if err := enc.Encode(&jsonDiagnostic{
				Kind:     d.Kind,
				Class:    d.Class().String(),
				Severity: d.Severity().String(),
				Message:  d.Message,
				File:     d.Pos.Filename,
				Line:     d.Pos.Line,
				Column:   d.Pos.Column,
			}); err != nil {
				return fmt.Errorf("failed to encode diagnostic: %w", err)
			}
		}
		return nil
	case LSPFormat:
		enc := j.NewEncoder(p.W)
		for _, params := range ToLSP(l) {
			if err := enc.Encode(params); err != nil {
				return fmt.Errorf("failed to encode lsp diagnostics: %w", err)
			}
		}
		return nil
	}
	for _, d := range l {
		if _, err := fmt.Fprintln(p.W, p.text(d)); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) text(d *Diagnostic) string {
	pos := ""
	switch {
	case d.Pos.IsValid():
		pos = p.posColor("%s", d.Pos.String()) + ": "
	case d.Pos.Filename != "":
		pos = p.posColor("%s", d.Pos.Filename) + ": "
	}
	sev := p.errColor("%s", d.Severity())
	if d.Severity() == Warning {
		sev = p.warnColor("%s", d.Severity())
	}
	return fmt.Sprintf("%s%s: %s %s", pos, sev, d.Message, p.kindColor("[%s]", d.Kind))
}
