package derive

import (
	"fmt"
	"strings"

	"github.com/signadot/schemagen/literal"
)

// Arg is one argument of a field annotation.
//
// The annotation syntax is a comma separated list of positional and
// labeled arguments:
//
//	schema:"'Full name','John',default='anonymous'"
//	schema:"description='Age in years',example=30"
//
// Single quoted values are strings. Double quoted and backquoted values are
// Go string literals and keep their exact text. Unquoted values are parsed
// as Go literals, except for the description which is always a string.
type Arg struct {
	// Key is empty for positional arguments.
	Key string
	// Value is the argument text. For single quoted values it is the
	// unescaped content; otherwise it is the text as written.
	Value string
	// Quote is the quote character the value was written with, or 0.
	Quote rune
}

// Literal converts the argument into a literal. If asString is set, an
// unquoted value is taken as string content rather than parsed.
func (a Arg) Literal(asString bool) (literal.Literal, error) {
	switch a.Quote {
	case '\'':
		return literal.Quote(a.Value), nil
	case '"', '`':
		return literal.Parse(a.Value)
	}
	if asString {
		return literal.Quote(a.Value), nil
	}
	return literal.Parse(a.Value)
}

// ParseAnnotation splits the content of a schema tag into arguments.
func ParseAnnotation(raw string) ([]Arg, error) {
	var (
		args    []Arg
		cur     strings.Builder
		quote   rune
		escaped bool
	)
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	flush := func() error {
		item := strings.TrimSpace(cur.String())
		cur.Reset()
		if item == "" {
			return fmt.Errorf("empty argument")
		}
		arg, err := parseArg(item)
		if err != nil {
			return err
		}
		args = append(args, arg)
		return nil
	}

	for _, r := range raw {
		switch {
		case quote != 0:
			cur.WriteRune(r)
			if escaped {
				escaped = false
				continue
			}
			if r == '\\' && quote != '`' {
				escaped = true
				continue
			}
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"' || r == '`':
			quote = r
			cur.WriteRune(r)
		case r == ',':
			if err := flush(); err != nil {
				return nil, err
			}
		default:
			cur.WriteRune(r)
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return args, nil
}

func parseArg(item string) (Arg, error) {
	var arg Arg
	eq := strings.IndexByte(item, '=')
	q := strings.IndexAny(item, "'\"`")
	if eq >= 0 && (q < 0 || eq < q) {
		arg.Key = strings.TrimSpace(item[:eq])
		if !isKey(arg.Key) {
			return Arg{}, fmt.Errorf("invalid argument label %q", arg.Key)
		}
		item = strings.TrimSpace(item[eq+1:])
		if item == "" {
			return Arg{}, fmt.Errorf("argument %q has no value", arg.Key)
		}
	}
	if q := rune(item[0]); q == '\'' || q == '"' || q == '`' {
		if len(item) < 2 || rune(item[len(item)-1]) != q || !closesAtEnd(item, q) {
			return Arg{}, fmt.Errorf("unexpected text after quoted value %s", item)
		}
		arg.Quote = q
		if q == '\'' {
			arg.Value = unescapeSingle(item[1 : len(item)-1])
		} else {
			arg.Value = item
		}
		return arg, nil
	}
	arg.Value = item
	return arg, nil
}

// closesAtEnd reports whether the quote opened at item[0] is closed by the
// last byte and nowhere before it.
func closesAtEnd(item string, q rune) bool {
	escaped := false
	for i, r := range item[1:] {
		if escaped {
			escaped = false
			continue
		}
		if r == '\\' && q != '`' {
			escaped = true
			continue
		}
		if r == q {
			return i+2 == len(item)
		}
	}
	return false
}

func unescapeSingle(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	escaped := false
	for _, r := range s {
		if escaped {
			if r != '\'' && r != '\\' {
				b.WriteRune('\\')
			}
			b.WriteRune(r)
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}
		b.WriteRune(r)
	}
	if escaped {
		b.WriteRune('\\')
	}
	return b.String()
}

func isKey(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r == '_' || r == '-' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9')) {
			return false
		}
	}
	return true
}

// metadata is the interpretation of an annotation's arguments.
type metadata struct {
	skip        bool
	description *Arg
	example     *Arg
	dflt        *Arg
}

const (
	argDescription = "description"
	argExample     = "example"
	argDefault     = "default"
)

func interpretArgs(args []Arg) (*metadata, error) {
	md := &metadata{}
	if len(args) == 1 && args[0].Key == "" && args[0].Quote == 0 && args[0].Value == "-" {
		md.skip = true
		return md, nil
	}
	set := func(name string, slot **Arg, a Arg) error {
		if *slot != nil {
			return fmt.Errorf("%s given more than once", name)
		}
		*slot = &a
		return nil
	}
	positional := 0
	for _, a := range args {
		var err error
		switch a.Key {
		case "":
			switch positional {
			case 0:
				err = set(argDescription, &md.description, a)
			case 1:
				err = set(argExample, &md.example, a)
			default:
				err = fmt.Errorf("too many positional arguments (at most description and example)")
			}
			positional++
		case argDescription:
			err = set(argDescription, &md.description, a)
		case argExample:
			err = set(argExample, &md.example, a)
		case argDefault:
			err = set(argDefault, &md.dflt, a)
		default:
			err = fmt.Errorf("unknown argument %q", a.Key)
		}
		if err != nil {
			return nil, err
		}
	}
	return md, nil
}
