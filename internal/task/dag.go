package task

import "sort"

// adjacency maps each task to the ids it depends on.
func adjacency(edges []Edge) map[string][]string {
	adj := make(map[string][]string)
	for _, e := range edges {
		adj[e.TaskID] = append(adj[e.TaskID], e.DependsOnID)
	}
	return adj
}

// FindPath returns the depends-on chain from "from" to "to" (both inclusive),
// or nil if "to" is not reachable. Adding the edge to -> from would close
// exactly this path into a cycle.
func FindPath(edges []Edge, from, to string) []string {
	adj := adjacency(edges)
	prev := map[string]string{from: ""}
	queue := []string{from}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if id == to {
			var path []string
			for cur := to; cur != ""; cur = prev[cur] {
				path = append(path, cur)
			}
			for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
				path[i], path[j] = path[j], path[i]
			}
			return path
		}
		for _, next := range adj[id] {
			if _, seen := prev[next]; seen {
				continue
			}
			prev[next] = id
			queue = append(queue, next)
		}
	}
	return nil
}

// VerifyDAG checks that edges contain no cycle. The error names one offending
// edge and the path that closes it.
func VerifyDAG(edges []Edge) error {
	adj := adjacency(edges)

	ids := make([]string, 0, len(adj))
	for id := range adj {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	var stack []string

	var visit func(id string) error
	visit = func(id string) error {
		visited[id] = true
		onStack[id] = true
		stack = append(stack, id)

		for _, dep := range adj[id] {
			if onStack[dep] {
				start := 0
				for i, s := range stack {
					if s == dep {
						start = i
						break
					}
				}
				path := append([]string{}, stack[start:]...)
				return &CyclicDependencyError{TaskID: id, DependsOnID: dep, Path: path}
			}
			if !visited[dep] {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		onStack[id] = false
		stack = stack[:len(stack)-1]
		return nil
	}

	for _, id := range ids {
		if !visited[id] {
			if err := visit(id); err != nil {
				return err
			}
		}
	}
	return nil
}
