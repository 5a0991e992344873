package depgraph

import "sort"

// TopoSort returns a deployment order for the given repositories: a
// repository precedes everything that depends on it. Kahn's algorithm over
// the impact-flow edges restricted to the subset; ties broken by ascending
// repository name. Repositories stuck on a cycle are appended at the end
// in name order so the result is always total.
func (s *Snapshot) TopoSort(repos []string) []string {
	subset := make(map[string]bool, len(repos))
	for _, r := range repos {
		if s.HasRepository(r) {
			subset[r] = true
		}
	}

	inDegree := make(map[string]int, len(subset))
	for r := range subset {
		inDegree[r] = 0
	}
	for r := range subset {
		for _, e := range s.out[r] {
			if subset[e.Target] {
				inDegree[e.Target]++
			}
		}
	}

	var frontier []string
	for r, d := range inDegree {
		if d == 0 {
			frontier = append(frontier, r)
		}
	}
	sort.Strings(frontier)

	order := make([]string, 0, len(subset))
	for len(frontier) > 0 {
		r := frontier[0]
		frontier = frontier[1:]
		order = append(order, r)

		var released []string
		for _, e := range s.out[r] {
			if !subset[e.Target] {
				continue
			}
			inDegree[e.Target]--
			if inDegree[e.Target] == 0 {
				released = append(released, e.Target)
			}
		}
		if len(released) > 0 {
			frontier = append(frontier, released...)
			sort.Strings(frontier)
		}
	}

	if len(order) < len(subset) {
		var stuck []string
		placed := make(map[string]bool, len(order))
		for _, r := range order {
			placed[r] = true
		}
		for r := range subset {
			if !placed[r] {
				stuck = append(stuck, r)
			}
		}
		sort.Strings(stuck)
		order = append(order, stuck...)
	}

	return order
}
