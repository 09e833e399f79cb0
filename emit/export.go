package emit

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"

	"github.com/signadot/schemagen/derive"
	"github.com/signadot/schemagen/literal"
)

// ExportFormat selects the document encoding of exported schemas.
type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportYAML ExportFormat = "yaml"
)

// ParseExportFormat parses an export format name.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(s) {
	case ExportJSON, ExportYAML:
		return ExportFormat(s), nil
	case "yml":
		return ExportYAML, nil
	}
	return "", fmt.Errorf("unknown export format %q (want json or yaml)", s)
}

// RefKey replaces "properties" for object references that cannot be inlined
// because the referenced type is not derived in the package.
const RefKey = "x-schemagen-ref"

// Document builds the standalone schema document of a generated type.
// References to other generated types of the package are inlined; keys keep
// the accessor order.
func Document(pr *derive.PackageResult, typeName string) (yaml.MapSlice, error) {
	r := pr.Lookup(typeName)
	if r == nil || !r.Generated() {
		return nil, fmt.Errorf("no generated schema for %s", typeName)
	}
	return document(pr, r.Schema)
}

func document(pr *derive.PackageResult, n *derive.Node) (yaml.MapSlice, error) {
	doc := yaml.MapSlice{{Key: "type", Value: n.Type}}
	switch {
	case n.PropertiesRef != "":
		target := pr.Lookup(n.PropertiesRef)
		if target == nil || !target.Generated() {
			doc = append(doc, yaml.MapItem{Key: RefKey, Value: n.PropertiesRef})
			break
		}
		props, err := properties(pr, target.Schema)
		if err != nil {
			return nil, err
		}
		doc = append(doc, yaml.MapItem{Key: "properties", Value: props})
	case n.Properties != nil:
		props, err := properties(pr, n)
		if err != nil {
			return nil, err
		}
		doc = append(doc, yaml.MapItem{Key: "properties", Value: props})
	case n.Items != nil:
		items, err := document(pr, n.Items)
		if err != nil {
			return nil, err
		}
		doc = append(doc, yaml.MapItem{Key: "items", Value: items})
	case n.Enum != nil:
		values := make([]any, 0, len(n.Enum))
		for _, c := range n.Enum {
			v, err := c.Value()
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
		doc = append(doc, yaml.MapItem{Key: "enum", Value: values})
	}
	if n.Required != nil {
		doc = append(doc, yaml.MapItem{Key: "required", Value: *n.Required})
	}
	for _, kv := range []struct {
		key string
		lit *literal.Literal
	}{
		{"description", n.Description},
		{"example", n.Example},
		{"default", n.Default},
	} {
		if kv.lit == nil {
			continue
		}
		v, err := kv.lit.Value()
		if err != nil {
			return nil, err
		}
		doc = append(doc, yaml.MapItem{Key: kv.key, Value: v})
	}
	return doc, nil
}

func properties(pr *derive.PackageResult, n *derive.Node) (yaml.MapSlice, error) {
	props := make(yaml.MapSlice, 0, len(n.Properties))
	for _, p := range n.Properties {
		sub, err := document(pr, p.Node)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", p.Name, err)
		}
		props = append(props, yaml.MapItem{Key: p.Name, Value: sub})
	}
	return props, nil
}

// JSON encodes a document as indented JSON, preserving key order.
func JSON(doc yaml.MapSlice) ([]byte, error) {
	var compact bytes.Buffer
	if err := appendJSON(&compact, doc); err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

func appendJSON(buf *bytes.Buffer, v any) error {
	switch x := v.(type) {
	case yaml.MapSlice:
		buf.WriteByte('{')
		for i, item := range x {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(fmt.Sprint(item.Key))
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := appendJSON(buf, item.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case []any:
		buf.WriteByte('[')
		for i, e := range x {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := appendJSON(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		data, err := json.Marshal(x)
		if err != nil {
			return err
		}
		buf.Write(data)
	}
	return nil
}

// YAML encodes a document as YAML, preserving key order.
func YAML(doc yaml.MapSlice) ([]byte, error) {
	return yaml.Marshal(doc)
}

// Export renders the documents of every generated type of pr into dir,
// one <Type>.schema.<format> file per type, in dependency order.
func Export(pr *derive.PackageResult, dir string, format ExportFormat) ([]*Output, error) {
	var outs []*Output
	for _, r := range pr.Order {
		doc, err := Document(pr, r.Decl.TypeName)
		if err != nil {
			return nil, err
		}
		var data []byte
		switch format {
		case ExportYAML:
			data, err = YAML(doc)
		default:
			data, err = JSON(doc)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to encode schema of %s: %w", r.Decl.TypeName, err)
		}
		outs = append(outs, &Output{
			Source:  r.Decl.Pos.Filename,
			Path:    filepath.Join(dir, r.Decl.TypeName+".schema."+string(format)),
			Content: data,
		})
	}
	return outs, nil
}
