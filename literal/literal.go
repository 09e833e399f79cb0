// Package literal parses the constant expressions attached to struct fields
// (descriptions, examples and defaults) into kind-tagged values.
//
// A Literal keeps its source text verbatim. Generated code re-emits the text
// as written, so `19.990` stays `19.990` and `0x1F` stays `0x1F`.
package literal

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"strconv"
	"strings"
)

// Kind identifies the lexical kind of a literal.
type Kind int

const (
	String Kind = iota
	Integer
	Float
	Boolean
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Integer:
		return "integer"
	case Float:
		return "float"
	case Boolean:
		return "boolean"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Literal is a parsed constant. Text is a valid Go expression for the value.
type Literal struct {
	Kind Kind
	Text string
}

func (l Literal) String() string {
	return l.Text
}

// Parse parses text as a Go constant expression. Accepted forms are string
// literals (interpreted or raw), integer and floating point literals with an
// optional sign, and the identifiers true and false.
func Parse(text string) (Literal, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Literal{}, fmt.Errorf("empty literal")
	}
	expr, err := parser.ParseExpr(text)
	if err != nil {
		return Literal{}, fmt.Errorf("%q is not a literal: %w", text, err)
	}
	lit, err := fromExpr(text, expr)
	if err != nil {
		return Literal{}, err
	}
	if err := lit.checkRange(); err != nil {
		return Literal{}, err
	}
	return lit, nil
}

// checkRange rejects numbers that do not fit the type an untyped constant
// takes once stored in an interface value: int or float64.
func (l Literal) checkRange() error {
	var def string
	switch l.Kind {
	case Integer:
		def = "int"
	case Float:
		def = "float64"
	default:
		return nil
	}
	if _, err := types.Eval(token.NewFileSet(), nil, token.NoPos, "any("+l.Text+")"); err != nil {
		return fmt.Errorf("%s does not fit in %s", l.Text, def)
	}
	return nil
}

func fromExpr(text string, expr ast.Expr) (Literal, error) {
	switch x := expr.(type) {
	case *ast.BasicLit:
		switch x.Kind {
		case token.STRING:
			return Literal{Kind: String, Text: text}, nil
		case token.INT:
			return Literal{Kind: Integer, Text: text}, nil
		case token.FLOAT:
			return Literal{Kind: Float, Text: text}, nil
		default:
			return Literal{}, fmt.Errorf("%s literal %s is not supported", strings.ToLower(x.Kind.String()), text)
		}
	case *ast.Ident:
		if x.Name == "true" || x.Name == "false" {
			return Literal{Kind: Boolean, Text: text}, nil
		}
		return Literal{}, fmt.Errorf("%q is not a literal (quote strings)", text)
	case *ast.UnaryExpr:
		if x.Op != token.SUB && x.Op != token.ADD {
			break
		}
		lit, ok := x.X.(*ast.BasicLit)
		if !ok || (lit.Kind != token.INT && lit.Kind != token.FLOAT) {
			break
		}
		if lit.Kind == token.INT {
			return Literal{Kind: Integer, Text: text}, nil
		}
		return Literal{Kind: Float, Text: text}, nil
	case *ast.ParenExpr:
		return Literal{}, fmt.Errorf("%q: parenthesized expressions are not literals", text)
	}
	return Literal{}, fmt.Errorf("%q is not a literal", text)
}

// Quote returns the String literal whose value is s.
func Quote(s string) Literal {
	return Literal{Kind: String, Text: strconv.Quote(s)}
}

// Value evaluates the literal into a JSON compatible Go value: string,
// int64, float64 or bool. It is used when the literal must leave Go source,
// for instance in exported schema documents.
func (l Literal) Value() (any, error) {
	switch l.Kind {
	case String:
		s, err := strconv.Unquote(l.Text)
		if err != nil {
			return nil, fmt.Errorf("string literal %s: %w", l.Text, err)
		}
		return s, nil
	case Integer:
		i, err := strconv.ParseInt(l.Text, 0, 64)
		if err != nil {
			// out of int64 range but still a valid constant
			f, ferr := strconv.ParseFloat(strings.ReplaceAll(l.Text, "_", ""), 64)
			if ferr != nil {
				return nil, fmt.Errorf("integer literal %s: %w", l.Text, err)
			}
			return f, nil
		}
		return i, nil
	case Float:
		f, err := strconv.ParseFloat(strings.ReplaceAll(l.Text, "_", ""), 64)
		if err != nil {
			return nil, fmt.Errorf("float literal %s: %w", l.Text, err)
		}
		return f, nil
	case Boolean:
		return l.Text == "true", nil
	}
	return nil, fmt.Errorf("unknown literal kind %v", l.Kind)
}

// Unquoted returns the value of a String literal, or the text itself for
// other kinds.
func (l Literal) Unquoted() string {
	if l.Kind != String {
		return l.Text
	}
	s, err := strconv.Unquote(l.Text)
	if err != nil {
		return l.Text
	}
	return s
}
