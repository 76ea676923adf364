// Package graph provides cycle detection and topological ordering over a
// string-keyed dependency map. It backs preset inheritance resolution but
// carries no preset-specific knowledge.
package graph

import (
	"sort"
	"strings"
)

// Cycle describes one dependency cycle. Nodes lists the node ids forming the
// cycle with the entry node repeated at the end (a self-loop is [A, A]).
type Cycle struct {
	Nodes []string
}

// Path renders the cycle as an arrow-joined chain, e.g. "A -> B -> A".
func (c *Cycle) Path() string {
	return strings.Join(c.Nodes, " -> ")
}

// DFS node states.
const (
	unvisited = iota
	visiting
	visited
)

// DetectCycles finds the first cycle in the dependency map, or nil if the
// graph is acyclic. Which cycle is "first" when several exist depends on key
// iteration order and is implementation-defined; callers may only rely on a
// cycle being found whenever one exists.
func DetectCycles(deps map[string][]string) *Cycle {
	state := make(map[string]int, len(deps))

	var path []string
	var found *Cycle

	var visit func(node string) bool
	visit = func(node string) bool {
		switch state[node] {
		case visiting:
			// Close the cycle: slice the current path from the first
			// occurrence of this node, then repeat it at the end.
			for i, n := range path {
				if n == node {
					nodes := append([]string{}, path[i:]...)
					nodes = append(nodes, node)
					found = &Cycle{Nodes: nodes}
					return true
				}
			}
			// node is on the stack but not in path; should not happen.
			found = &Cycle{Nodes: []string{node, node}}
			return true
		case visited:
			return false
		}

		state[node] = visiting
		path = append(path, node)
		for _, dep := range deps[node] {
			if visit(dep) {
				return true
			}
		}
		path = path[:len(path)-1]
		state[node] = visited
		return false
	}

	for _, node := range sortedKeys(deps) {
		if state[node] == unvisited && visit(node) {
			return found
		}
	}
	return nil
}

// LoadOrder returns a topological ordering of the dependency map: for every
// node, its dependencies appear before it. Returns nil if the graph has any
// cycle. Ordering among equally-ready nodes is implementation-defined.
func LoadOrder(deps map[string][]string) []string {
	if DetectCycles(deps) != nil {
		return nil
	}

	// Collect every node, including ones that appear only as dependencies.
	inDegree := make(map[string]int)
	dependents := make(map[string][]string)
	for node, nodeDeps := range deps {
		if _, ok := inDegree[node]; !ok {
			inDegree[node] = 0
		}
		for _, dep := range nodeDeps {
			if _, ok := inDegree[dep]; !ok {
				inDegree[dep] = 0
			}
			inDegree[node]++
			dependents[dep] = append(dependents[dep], node)
		}
	}

	var ready []string
	for _, node := range sortedKeys(inDegree) {
		if inDegree[node] == 0 {
			ready = append(ready, node)
		}
	}

	order := make([]string, 0, len(inDegree))
	for len(ready) > 0 {
		node := ready[0]
		ready = ready[1:]
		order = append(order, node)
		for _, dependent := range dependents[node] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
	}

	return order
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
