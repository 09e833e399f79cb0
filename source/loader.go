package source

import (
	"context"
	"fmt"
	"go/ast"
	"go/types"
	"path/filepath"
	"sync"

	"golang.org/x/tools/go/packages"

	"github.com/signadot/schemagen/debug"
	"github.com/signadot/schemagen/derive"
)

// Loader loads packages with type information and caches them by
// directory.
type Loader struct {
	opts  Options
	cache map[string]*Package
	mu    sync.RWMutex
}

// NewLoader creates a Loader that extracts declarations with opts.
func NewLoader(opts Options) *Loader {
	return &Loader{
		opts:  opts,
		cache: make(map[string]*Package),
	}
}

// Load loads the package in dir. Type errors do not fail the load: the
// generated files of the package may be stale or missing, and syntax is
// all extraction needs. Type facts are added where the checker resolved
// the referenced types.
func (l *Loader) Load(ctx context.Context, dir string) (*Package, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for %q: %w", dir, err)
	}
	l.mu.RLock()
	if pkg, ok := l.cache[absDir]; ok {
		l.mu.RUnlock()
		return pkg, nil
	}
	l.mu.RUnlock()

	cfg := &packages.Config{
		Context: ctx,
		Dir:     absDir,
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedImports |
			packages.NeedTypes | packages.NeedSyntax | packages.NeedTypesInfo,
	}
	pkgs, err := packages.Load(cfg, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to load package in %q: %w", dir, err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no package found in %q", dir)
	}
	lp := pkgs[0]
	if debug.Load() {
		for _, e := range lp.Errors {
			debug.Logf("load %s: %v\n", lp.PkgPath, e)
		}
	}

	var files []*File
	var syntax []*ast.File
	for _, file := range lp.Syntax {
		if l.opts.IsGenerated(lp.Fset.Position(file.Pos()).Filename) {
			continue
		}
		files = append(files, l.opts.Extract(lp.Fset, file))
		syntax = append(syntax, file)
	}
	if len(files) == 0 && len(lp.Errors) > 0 {
		return nil, fmt.Errorf("failed to load package in %q: %v", dir, lp.Errors[0])
	}
	pkg := NewPackage(lp.PkgPath, absDir, lp.Name, files)
	if lp.TypesInfo != nil {
		addTypeFacts(pkg, lp.Types, lp.TypesInfo, syntax)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if cached, ok := l.cache[absDir]; ok {
		return cached, nil
	}
	l.cache[absDir] = pkg
	return pkg, nil
}

// addTypeFacts classifies every named type used by a derived field:
// named basic types with constants become enumerations, other named basic
// types primitives, types with a value Schema method
// are known, and other types from foreign packages that cannot provide a
// Schema accessor are opaque.
func addTypeFacts(pkg *Package, self *types.Package, info *types.Info, files []*ast.File) {
	derived := make(map[string]bool)
	for _, d := range pkg.Declarations() {
		derived[d.TypeName] = true
	}
	for _, file := range files {
		ast.Inspect(file, func(n ast.Node) bool {
			ts, ok := n.(*ast.TypeSpec)
			if !ok || !derived[ts.Name.Name] {
				return true
			}
			st, ok := ts.Type.(*ast.StructType)
			if !ok {
				return false
			}
			for _, field := range st.Fields.List {
				ast.Inspect(field.Type, func(n ast.Node) bool {
					var key string
					var id *ast.Ident
					switch x := n.(type) {
					case *ast.SelectorExpr:
						key, id = derive.TypeText(x), x.Sel
					case *ast.Ident:
						key, id = x.Name, x
					default:
						return true
					}
					if obj, ok := info.Uses[id].(*types.TypeName); ok {
						typeFact(pkg, self, key, obj)
					}
					return false
				})
			}
			return false
		})
	}
}

func typeFact(pkg *Package, self *types.Package, key string, obj *types.TypeName) {
	named, ok := obj.Type().(*types.Named)
	if !ok || obj.Pkg() == nil {
		// predeclared types and aliases of unnamed types
		return
	}
	if hasValueSchema(named) {
		pkg.Known[key] = true
		return
	}
	switch u := named.Underlying().(type) {
	case *types.Basic:
		pkg.addBasic(key, u.Name(), hasConsts(obj))
	case *types.Struct:
		if obj.Pkg() != self {
			pkg.Opaque[key] = fmt.Sprintf("type %s has no Schema accessor", key)
		}
	default:
		pkg.Opaque[key] = fmt.Sprintf("named type %s over %s", key, types.TypeString(u, types.RelativeTo(obj.Pkg())))
	}
}

func hasValueSchema(named *types.Named) bool {
	sel := types.NewMethodSet(named).Lookup(named.Obj().Pkg(), "Schema")
	if sel == nil {
		return false
	}
	sig, ok := sel.Type().(*types.Signature)
	return ok && sig.Params().Len() == 0 && sig.Results().Len() == 1
}

// hasConsts reports whether the package declaring obj has constants of its
// type.
func hasConsts(obj *types.TypeName) bool {
	scope := obj.Pkg().Scope()
	for _, name := range scope.Names() {
		if c, ok := scope.Lookup(name).(*types.Const); ok && types.Identical(c.Type(), obj.Type()) {
			return true
		}
	}
	return false
}
