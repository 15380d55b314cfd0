// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package registry

// Ordered returns items with every item placed after the items it depends on.
// Otherwise the input order is kept. Unknown dependencies are ignored and a
// cycle is cut where it closes.
func Ordered[T any](items []T, key func(T) string, deps func(T) []string) []T {
	index := make(map[string]int, len(items))
	for i, it := range items {
		if _, ok := index[key(it)]; !ok {
			index[key(it)] = i
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(items))
	out := make([]T, 0, len(items))
	var visit func(i int)
	visit = func(i int) {
		if state[i] != unvisited {
			return
		}
		state[i] = visiting
		for _, d := range deps(items[i]) {
			if j, ok := index[d]; ok {
				visit(j)
			}
		}
		state[i] = done
		out = append(out, items[i])
	}
	for i := range items {
		visit(i)
	}
	return out
}

// OrderReferences sorts refs so that a referenced subject precedes the
// subjects referencing it. dependsOn reports the reference names a
// reference's schema uses.
func OrderReferences(refs []Reference, dependsOn func(name string) []string) []Reference {
	return Ordered(refs,
		func(r Reference) string { return r.Name },
		func(r Reference) []string { return dependsOn(r.Name) },
	)
}
