// Package core contains the business logic for taskboard: the active
// dependency graph, cycle detection, topological ordering, status report
// assembly, and configuration.
package core

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/valter-silva-au/taskboard/pkg/models"
)

// depTokenPattern extracts numeric-looking dependency references from a
// dependency entry. Non-numeric text (including the legacy free-text form)
// is skipped, never fatal.
var depTokenPattern = regexp.MustCompile(`\d+`)

// Graph is the active dependency graph: non-merged tasks and the edges
// between them. Edges point from a task to the tasks it is blocked on.
// References to unknown or merged tasks are elided at build time, since a
// merged task can neither block anything nor participate in a future cycle.
type Graph struct {
	// Nodes holds non-merged task ids in record file-name order, which is
	// the deterministic tie-break for all orderings.
	Nodes []string
	// Edges maps a task id to its active dependencies, in declaration order
	// with duplicates removed.
	Edges map[string][]string

	records map[string]*models.TaskRecord
}

// ExtractDependencyRefs pulls the numeric reference tokens out of a record's
// dependency entries.
func ExtractDependencyRefs(deps []string) []string {
	var refs []string
	for _, d := range deps {
		refs = append(refs, depTokenPattern.FindAllString(d, -1)...)
	}
	return refs
}

// BuildGraph constructs the active dependency graph from loaded records.
// The input order (file-name order from the scan) is preserved.
func BuildGraph(records []*models.TaskRecord) *Graph {
	g := &Graph{
		Edges:   make(map[string][]string),
		records: make(map[string]*models.TaskRecord, len(records)),
	}
	for _, r := range records {
		g.records[r.ID] = r
	}
	for _, r := range records {
		if r.Status.IsTerminal() {
			continue
		}
		g.Nodes = append(g.Nodes, r.ID)

		seen := make(map[string]bool)
		var active []string
		for _, ref := range ExtractDependencyRefs(r.Dependencies) {
			dep, known := g.records[ref]
			if !known || dep.Status.IsTerminal() || seen[ref] {
				continue
			}
			seen[ref] = true
			active = append(active, ref)
		}
		g.Edges[r.ID] = active
	}
	return g
}

// Record returns the record for a node id, or nil if unknown.
func (g *Graph) Record(id string) *models.TaskRecord {
	return g.records[id]
}

// ActiveDependencies returns the filtered dependency list for a task: only
// references to known, non-merged tasks survive.
func (g *Graph) ActiveDependencies(id string) []string {
	return g.Edges[id]
}

// Cycle is one circular dependency chain. Nodes lists the ids along the
// cycle, ending where it started; Paths carries the originating record file
// of each node for diagnostics.
type Cycle struct {
	Nodes []string
	Paths []string
}

func (c Cycle) String() string {
	return strings.Join(c.Nodes, " -> ")
}

// CycleError reports every cycle found in the active graph.
type CycleError struct {
	Cycles []Cycle
}

func (e *CycleError) Error() string {
	descriptions := make([]string, len(e.Cycles))
	for i, c := range e.Cycles {
		descriptions[i] = c.String()
	}
	return fmt.Sprintf("dependency cycles detected: %s", strings.Join(descriptions, "; "))
}

// dfs colors.
const (
	white = iota
	gray
	black
)

// frame is one entry of the explicit traversal stack: a node plus the index
// of the next child edge to follow.
type frame struct {
	node string
	next int
}

// DetectCycles finds every distinct cycle in the active graph using an
// iterative depth-first traversal. The recursion stack is an explicit frame
// stack, so the "currently on stack" set is inspectable and cycle paths can
// be reported precisely. Every node is visited exactly once overall
// regardless of how many cycles exist.
func (g *Graph) DetectCycles() []Cycle {
	color := make(map[string]int, len(g.Nodes))
	var cycles []Cycle

	for _, root := range g.Nodes {
		if color[root] != white {
			continue
		}

		stack := []frame{{node: root}}
		color[root] = gray

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			edges := g.Edges[top.node]

			if top.next >= len(edges) {
				color[top.node] = black
				stack = stack[:len(stack)-1]
				continue
			}

			child := edges[top.next]
			top.next++

			switch color[child] {
			case gray:
				// child is on the stack: the subsequence from its first
				// occurrence through the current node is one cycle.
				start := 0
				for i, f := range stack {
					if f.node == child {
						start = i
						break
					}
				}
				nodes := make([]string, 0, len(stack)-start+1)
				for _, f := range stack[start:] {
					nodes = append(nodes, f.node)
				}
				nodes = append(nodes, child)
				cycles = append(cycles, g.newCycle(nodes))
			case white:
				color[child] = gray
				stack = append(stack, frame{node: child})
			}
		}
	}
	return cycles
}

func (g *Graph) newCycle(nodes []string) Cycle {
	paths := make([]string, len(nodes))
	for i, id := range nodes {
		if r := g.records[id]; r != nil {
			paths[i] = r.Path
		}
	}
	return Cycle{Nodes: nodes, Paths: paths}
}

// OrderWarning is the non-fatal signal that topological ordering fell back
// to file-name order because of a cycle involving Node.
type OrderWarning struct {
	Node string
}

func (w *OrderWarning) String() string {
	return fmt.Sprintf("dependency cycle at task %s: falling back to file-name order", w.Node)
}

// TopologicalOrder returns the node ids such that every active dependency
// appears before its dependent, using the same iterative traversal as cycle
// detection (post-order exit, which with task-to-dependency edges yields
// dependencies first). On a cycle it does not fail: the deterministic
// file-name order is returned together with a warning naming an offending
// node, so downstream reporting degrades instead of aborting.
func (g *Graph) TopologicalOrder() ([]string, *OrderWarning) {
	if cycles := g.DetectCycles(); len(cycles) > 0 {
		order := make([]string, len(g.Nodes))
		copy(order, g.Nodes)
		return order, &OrderWarning{Node: cycles[0].Nodes[0]}
	}

	color := make(map[string]int, len(g.Nodes))
	order := make([]string, 0, len(g.Nodes))

	for _, root := range g.Nodes {
		if color[root] != white {
			continue
		}

		stack := []frame{{node: root}}
		color[root] = gray

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			edges := g.Edges[top.node]

			if top.next >= len(edges) {
				color[top.node] = black
				order = append(order, top.node)
				stack = stack[:len(stack)-1]
				continue
			}

			child := edges[top.next]
			top.next++
			if color[child] == white {
				color[child] = gray
				stack = append(stack, frame{node: child})
			}
		}
	}
	return order, nil
}
