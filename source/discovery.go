package source

import (
	"fmt"
	"go/build"
	"os"
	"path/filepath"
	"strings"
)

// PackageInfo holds information about a Go package on disk.
type PackageInfo struct {
	// Path is the package import path, if known.
	Path string

	// Dir is the directory containing the package.
	Dir string

	// Name is the package name.
	Name string

	// Files contains paths to the non-test .go files of the package.
	Files []string
}

// DiscoverPackages discovers Go packages in the given directory.
// If recursive is true, it scans subdirectories recursively, skipping
// hidden, vendor and testdata directories.
func DiscoverPackages(dir string, recursive bool) ([]*PackageInfo, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for %q: %w", dir, err)
	}

	var packages []*PackageInfo
	visited := make(map[string]bool)

	err = filepath.Walk(absDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}

		base := filepath.Base(path)
		if path != absDir && (strings.HasPrefix(base, ".") || strings.HasPrefix(base, "_") ||
			base == "vendor" || base == "testdata") {
			return filepath.SkipDir
		}
		if !recursive && path != absDir {
			return filepath.SkipDir
		}

		pkg, err := build.ImportDir(path, 0)
		if err != nil {
			// not a Go package
			return nil
		}
		if len(pkg.GoFiles) == 0 || visited[path] {
			return nil
		}
		visited[path] = true

		files := make([]string, 0, len(pkg.GoFiles))
		for _, f := range pkg.GoFiles {
			files = append(files, filepath.Join(path, f))
		}
		packages = append(packages, &PackageInfo{
			Path:  pkg.ImportPath,
			Dir:   path,
			Name:  pkg.Name,
			Files: files,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %q: %w", dir, err)
	}
	return packages, nil
}
