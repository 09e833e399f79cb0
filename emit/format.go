package emit

import (
	"fmt"

	"golang.org/x/tools/imports"
)

// Format formats Go source with goimports. With fixImports unset only
// formatting is applied and the import block is kept as written.
func Format(filename string, src []byte, fixImports bool) ([]byte, error) {
	options := &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: !fixImports,
	}
	out, err := imports.Process(filename, src, options)
	if err != nil {
		return nil, fmt.Errorf("error formatting %s: %w", filename, err)
	}
	return out, nil
}
