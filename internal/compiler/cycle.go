package compiler

import (
	"github.com/rpl/application-services/internal/model"
)

// RecordCycles reports records that contain themselves, directly or through
// other records. Records are by-value aggregates, so any containment cycle
// (including through optionals, sequences and maps) is rejected.
//
// The algorithm:
//  1. Build record -> contained records graph from field types
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with size > 1 or self-loops as a cycle path
//
// Paths are reported in declaration order and close on their first node,
// e.g. ["A", "B", "A"].
func RecordCycles(c *model.Component) [][]string {
	graph, order := buildContainmentGraph(c)
	if len(order) == 0 {
		return nil
	}

	var cycles [][]string
	for _, scc := range tarjanSCC(graph, order) {
		if len(scc) > 1 || hasSelfLoop(scc[0], graph) {
			cycles = append(cycles, reconstructCyclePath(scc, graph, order))
		}
	}
	return cycles
}

// containmentGraph maps record name -> records referenced by its fields.
type containmentGraph map[string][]string

func buildContainmentGraph(c *model.Component) (containmentGraph, []string) {
	graph := make(containmentGraph)
	var order []string

	for _, m := range c.Members {
		rec, ok := m.(*model.RecordType)
		if !ok {
			continue
		}
		if _, dup := graph[rec.Name]; dup {
			continue
		}
		order = append(order, rec.Name)
		graph[rec.Name] = []string{}

		for _, f := range rec.Fields {
			model.Walk(f.Type, func(t model.TypeRef) bool {
				if r, ok := t.(model.RecordRef); ok {
					graph[rec.Name] = append(graph[rec.Name], r.Name)
				}
				return true
			})
		}
	}
	return graph, order
}

// hasSelfLoop checks if a node has an edge to itself.
func hasSelfLoop(node string, graph containmentGraph) bool {
	for _, neighbor := range graph[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Nodes are visited in the given order so results are deterministic.
func tarjanSCC(graph containmentGraph, order []string) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, known := graph[w]; !known {
				// Unresolved reference; reported elsewhere.
				continue
			}
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// If v is a root node, pop the stack and create an SCC
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, node := range order {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

// reconstructCyclePath builds a closed path through an SCC, starting at
// the member declared first.
func reconstructCyclePath(scc []string, graph containmentGraph, order []string) []string {
	sccSet := make(map[string]bool, len(scc))
	for _, node := range scc {
		sccSet[node] = true
	}

	var start string
	for _, node := range order {
		if sccSet[node] {
			start = node
			break
		}
	}

	if len(scc) == 1 {
		return []string{start, start}
	}

	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph[current] {
			if sccSet[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}
		if next == "" {
			break
		}

		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}

	return path
}
