// Package graph implements the dependency-graph primitives shared by
// task scheduling and the file-import checker: a deterministic
// topological sort and depth-first cycle detection.
package graph

import "sort"

// Graph maps a node id to the ids it depends on. Edges pointing at ids
// not present as keys are dangling references and are ignored by every
// traversal; callers decide whether to warn about them.
type Graph map[string][]string

// Nodes returns the node ids in lexical order.
func (g Graph) Nodes() []string {
	nodes := make([]string, 0, len(g))
	for n := range g {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)
	return nodes
}

// TopoSort returns the nodes in dependency-first order using Kahn's
// algorithm: a node appears only after everything it depends on. When
// several nodes are ready at once, less picks the next one, which makes
// the order fully deterministic; a nil less falls back to lexical
// order. Nodes trapped on a dependency cycle can never become ready;
// they are returned separately, sorted by the same less.
func TopoSort(g Graph, less func(a, b string) bool) (order, cyclic []string) {
	if less == nil {
		less = func(a, b string) bool { return a < b }
	}

	indegree := make(map[string]int, len(g))
	dependents := make(map[string][]string, len(g))
	for n := range g {
		indegree[n] = 0
	}
	for n, deps := range g {
		for _, dep := range deps {
			if _, ok := g[dep]; !ok {
				continue
			}
			indegree[n]++
			dependents[dep] = append(dependents[dep], n)
		}
	}

	ready := make([]string, 0, len(g))
	for n, d := range indegree {
		if d == 0 {
			ready = append(ready, n)
		}
	}
	sortBy(ready, less)

	order = make([]string, 0, len(g))
	emitted := make(map[string]bool, len(g))
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)
		emitted[n] = true

		freed := false
		for _, m := range dependents[n] {
			indegree[m]--
			if indegree[m] == 0 {
				ready = append(ready, m)
				freed = true
			}
		}
		if freed {
			sortBy(ready, less)
		}
	}

	for n := range g {
		if !emitted[n] {
			cyclic = append(cyclic, n)
		}
	}
	sortBy(cyclic, less)

	return order, cyclic
}

// Cycles reports the dependency cycles reachable in g. The traversal
// keeps a visited set and an active-path set: meeting a node that is
// still on the active path means the path looped. The active marker is
// cleared on backtrack, so separate branches through a shared node do
// not produce false positives. Each cycle is returned in path order;
// duplicates found from different entry points are collapsed.
func Cycles(g Graph) [][]string {
	visited := make(map[string]bool, len(g))
	onPath := make(map[string]bool, len(g))
	seen := make(map[string]bool)
	var path []string
	var cycles [][]string

	var visit func(n string)
	visit = func(n string) {
		visited[n] = true
		onPath[n] = true
		path = append(path, n)

		for _, dep := range g[n] {
			if _, ok := g[dep]; !ok {
				continue
			}
			if onPath[dep] {
				cycle := extractCycle(path, dep)
				if key := cycleKey(cycle); !seen[key] {
					seen[key] = true
					cycles = append(cycles, cycle)
				}
				continue
			}
			if !visited[dep] {
				visit(dep)
			}
		}

		onPath[n] = false
		path = path[:len(path)-1]
	}

	for _, n := range g.Nodes() {
		if !visited[n] {
			visit(n)
		}
	}
	return cycles
}

// extractCycle copies the tail of path starting at the first occurrence
// of from, which closes the loop.
func extractCycle(path []string, from string) []string {
	for i, n := range path {
		if n == from {
			cycle := make([]string, len(path)-i)
			copy(cycle, path[i:])
			return cycle
		}
	}
	return nil
}

// cycleKey normalizes a cycle to a rotation-independent identity so the
// same loop found from two entry points is counted once.
func cycleKey(cycle []string) string {
	if len(cycle) == 0 {
		return ""
	}
	min := 0
	for i, n := range cycle {
		if n < cycle[min] {
			min = i
		}
	}
	key := ""
	for i := range cycle {
		key += cycle[(min+i)%len(cycle)] + "\x00"
	}
	return key
}

func sortBy(nodes []string, less func(a, b string) bool) {
	sort.SliceStable(nodes, func(i, j int) bool { return less(nodes[i], nodes[j]) })
}
