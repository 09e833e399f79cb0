package emit

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/signadot/schemagen/derive"
	"github.com/signadot/schemagen/source"
)

// Output is one generated file.
type Output struct {
	// Source is the source file the output derives from.
	Source string
	// Path is the generated file path.
	Path string
	// Content is the file content. A nil Content means the file must not
	// exist, because its source no longer holds generated declarations.
	Content []byte
}

// Plan renders the generated file of every source file in pkg. Accessors
// inside a file follow the dependency order of pr.
func Plan(pkg *source.Package, pr *derive.PackageResult, opts Options) ([]*Output, error) {
	byFile := make(map[string][]*derive.Result)
	for _, r := range pr.Order {
		byFile[r.Decl.Pos.Filename] = append(byFile[r.Decl.Pos.Filename], r)
	}
	var outs []*Output
	for _, f := range pkg.Files {
		out := &Output{Source: f.Path, Path: OutputPath(f.Path, opts.Suffix)}
		if results := byFile[f.Path]; len(results) > 0 {
			content, err := GoFile(f, pkg.Path, results, opts)
			if err != nil {
				return nil, fmt.Errorf("failed to generate code for %q: %w", f.Path, err)
			}
			out.Content = content
		}
		outs = append(outs, out)
	}
	return outs, nil
}

// Write writes every output whose content differs from the file on disk and
// removes stale generated files. It returns the paths it changed.
func Write(outs []*Output) ([]string, error) {
	var changed []string
	for _, out := range outs {
		current, err := readIfExists(out.Path)
		if err != nil {
			return changed, err
		}
		switch {
		case out.Content == nil && current != nil:
			if err := os.Remove(out.Path); err != nil {
				return changed, fmt.Errorf("failed to remove stale file %q: %w", out.Path, err)
			}
		case out.Content != nil && !bytes.Equal(current, out.Content):
			if err := os.WriteFile(out.Path, out.Content, 0o644); err != nil {
				return changed, fmt.Errorf("failed to write output file %q: %w", out.Path, err)
			}
		default:
			continue
		}
		changed = append(changed, out.Path)
	}
	return changed, nil
}

// Drift describes a generated file that does not match its source.
type Drift struct {
	Path string
	// Diff is a line diff from the file on disk to the expected content.
	Diff string
}

// Check compares outputs with the files on disk.
func Check(outs []*Output) ([]*Drift, error) {
	var drifts []*Drift
	for _, out := range outs {
		current, err := readIfExists(out.Path)
		if err != nil {
			return nil, err
		}
		if current == nil && out.Content == nil {
			continue
		}
		if bytes.Equal(current, out.Content) {
			continue
		}
		drifts = append(drifts, &Drift{
			Path: out.Path,
			Diff: Diff(out.Path, current, out.Content),
		})
	}
	return drifts, nil
}

// readIfExists returns nil content for a missing file.
func readIfExists(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", path, err)
	}
	return data, nil
}
