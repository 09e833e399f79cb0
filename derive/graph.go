package derive

import (
	"fmt"
	"strings"

	"github.com/signadot/schemagen/diag"
)

// DependencyGraph is the directed graph of object references between the
// declarations of a package. An edge A -> B means a field of A refers to B,
// so the accessor of A calls the accessor of B.
type DependencyGraph struct {
	// Nodes maps type name to its result.
	Nodes map[string]*Result

	// Names lists node names in declaration order.
	Names []string

	// Edges maps type name to the type names it references, in field order.
	Edges map[string][]string

	// ReverseEdges maps type name to the type names that reference it.
	ReverseEdges map[string][]string
}

// Cycle is a reference cycle. Path starts and ends with the same name.
type Cycle struct {
	Path []string
}

func (c *Cycle) String() string {
	return strings.Join(c.Path, " -> ")
}

// BuildDependencyGraph builds the graph over generated results. Package
// qualified references and references to types outside the graph do not
// produce edges.
func BuildDependencyGraph(results []*Result) *DependencyGraph {
	graph := &DependencyGraph{
		Nodes:        make(map[string]*Result),
		Edges:        make(map[string][]string),
		ReverseEdges: make(map[string][]string),
	}
	for _, r := range results {
		if !r.Generated() {
			continue
		}
		name := r.Decl.TypeName
		if _, dup := graph.Nodes[name]; dup {
			continue
		}
		graph.Nodes[name] = r
		graph.Names = append(graph.Names, name)
		graph.Edges[name] = []string{}
		graph.ReverseEdges[name] = []string{}
	}
	for _, name := range graph.Names {
		seen := make(map[string]bool)
		for _, ref := range graph.Nodes[name].References {
			if _, ok := graph.Nodes[ref.TypeName]; !ok || seen[ref.TypeName] {
				continue
			}
			seen[ref.TypeName] = true
			graph.Edges[name] = append(graph.Edges[name], ref.TypeName)
			graph.ReverseEdges[ref.TypeName] = append(graph.ReverseEdges[ref.TypeName], name)
		}
	}
	return graph
}

// DetectCycles finds reference cycles with a depth first search started
// from each node in declaration order. A self reference is a cycle of
// length one.
func DetectCycles(graph *DependencyGraph) []*Cycle {
	var cycles []*Cycle
	visited := make(map[string]bool)
	recStack := make(map[string]bool)

	for _, name := range graph.Names {
		if !visited[name] {
			cycles = append(cycles, detectCyclesDFS(graph, name, visited, recStack, nil)...)
		}
	}
	return cycles
}

func detectCyclesDFS(graph *DependencyGraph, node string, visited, recStack map[string]bool, path []string) []*Cycle {
	var cycles []*Cycle

	visited[node] = true
	recStack[node] = true
	path = append(path, node)

	for _, dep := range graph.Edges[node] {
		if !visited[dep] {
			cycles = append(cycles, detectCyclesDFS(graph, dep, visited, recStack, path)...)
		} else if recStack[dep] {
			cycles = append(cycles, &Cycle{Path: findCyclePath(path, dep)})
		}
	}

	recStack[node] = false
	return cycles
}

// findCyclePath extracts the cycle closed by a back edge to cycleStart.
func findCyclePath(path []string, cycleStart string) []string {
	startIdx := -1
	for i, name := range path {
		if name == cycleStart {
			startIdx = i
			break
		}
	}
	if startIdx == -1 {
		return append(append([]string{}, path...), cycleStart)
	}
	cycle := make([]string, 0, len(path)-startIdx+1)
	cycle = append(cycle, path[startIdx:]...)
	cycle = append(cycle, cycleStart)
	return cycle
}

// TopologicalSort returns the graph's results with every type after the
// types it references. Ties keep declaration order.
func TopologicalSort(graph *DependencyGraph) ([]*Result, error) {
	if cycles := DetectCycles(graph); len(cycles) > 0 {
		return nil, fmt.Errorf("%s", FormatCycleError(cycles))
	}

	inDegree := make(map[string]int, len(graph.Nodes))
	for _, name := range graph.Names {
		inDegree[name] = len(graph.Edges[name])
	}

	var result []*Result
	done := make(map[string]bool, len(graph.Nodes))
	for len(result) < len(graph.Names) {
		progressed := false
		for _, name := range graph.Names {
			if done[name] || inDegree[name] != 0 {
				continue
			}
			done[name] = true
			progressed = true
			result = append(result, graph.Nodes[name])
			for _, dependent := range graph.ReverseEdges[name] {
				inDegree[dependent]--
			}
		}
		if !progressed {
			return nil, fmt.Errorf("topological sort incomplete: processed %d of %d types", len(result), len(graph.Names))
		}
	}
	return result, nil
}

// FormatCycleError formats cycles for display.
func FormatCycleError(cycles []*Cycle) string {
	msgs := make([]string, 0, len(cycles))
	for _, cycle := range cycles {
		msgs = append(msgs, "  "+cycle.String())
	}
	return fmt.Sprintf("circular references detected:\n%s", strings.Join(msgs, "\n"))
}

// PackageResult is the outcome of deriving all declarations of a package.
type PackageResult struct {
	// Results are in declaration order.
	Results []*Result

	// Order holds the generated results in dependency order.
	Order []*Result

	// Diagnostics collects the diagnostics of every result, sorted by
	// position.
	Diagnostics diag.List
}

// Lookup returns the result for a type name, or nil.
func (p *PackageResult) Lookup(typeName string) *Result {
	for _, r := range p.Results {
		if r.Decl.TypeName == typeName {
			return r
		}
	}
	return nil
}

// Package derives every declaration and checks references between them.
// Declarations on a reference cycle are reported and not generated, since
// their accessors would call each other without end. Fields making
// unqualified references to types that are neither generated nor declared
// known are reported and left out, as their accessor would not compile.
func Package(decls []*Declaration, opts ...Option) *PackageResult {
	o := newOptions(opts)
	pr := &PackageResult{Results: make([]*Result, 0, len(decls))}
	for _, decl := range decls {
		pr.Results = append(pr.Results, derive(decl, o))
	}

	graph := BuildDependencyGraph(pr.Results)
	onCycle := make(map[string]*Cycle)
	for _, c := range DetectCycles(graph) {
		for _, name := range c.Path[:len(c.Path)-1] {
			if _, ok := onCycle[name]; !ok {
				onCycle[name] = c
			}
		}
	}
	for _, r := range pr.Results {
		c, ok := onCycle[r.Decl.TypeName]
		if !ok || !r.Generated() {
			continue
		}
		r.Diagnostics.Add(diag.ReferenceCycle, r.Decl.Pos,
			"%s is part of a reference cycle (%s); its schema accessor would recurse without end",
			r.Decl.TypeName, c)
		r.Schema = nil
	}

	for _, r := range pr.Results {
		if !r.Generated() {
			continue
		}
		drop := make(map[string]bool)
		for _, ref := range r.References {
			if strings.Contains(ref.TypeName, ".") || o.known[ref.TypeName] {
				continue
			}
			if target, ok := graph.Nodes[ref.TypeName]; ok && target.Generated() {
				continue
			}
			r.Diagnostics.Add(diag.UnresolvedReference, ref.Pos,
				"field %q of %s refers to %s, which has no generated or declared Schema accessor; the field is left out of the schema",
				ref.Field, r.Decl.TypeName, ref.TypeName)
			drop[ref.Field] = true
		}
		if len(drop) > 0 {
			r.dropFields(drop)
		}
	}

	order, err := TopologicalSort(BuildDependencyGraph(pr.Results))
	if err == nil {
		pr.Order = order
	}
	for _, r := range pr.Results {
		pr.Diagnostics.Append(r.Diagnostics)
	}
	pr.Diagnostics.Sort()
	return pr
}

// dropFields removes the named properties from a generated result.
func (r *Result) dropFields(names map[string]bool) {
	var (
		fields []*FieldDescriptor
		cats   []*Category
		refs   []Reference
	)
	for i, fd := range r.Fields {
		if names[fd.Name] {
			continue
		}
		fields = append(fields, fd)
		cats = append(cats, r.Categories[i])
	}
	for _, ref := range r.References {
		if !names[ref.Field] {
			refs = append(refs, ref)
		}
	}
	r.Fields, r.Categories, r.References = fields, cats, refs
	r.Schema = BuildObject(fields, cats)
}
