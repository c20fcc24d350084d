// Package ontology loads the HPO term graph and answers membership,
// ancestry, and replacement queries. The index is built once per ontology
// release and is read-only afterwards, so it is safe to share across
// concurrent row validations.
package ontology

import (
	"fmt"
	"sort"
	"sync"

	"phetools/pkg/domain"
)

// Index is an arena-backed term graph: terms live in a flat slice and edges
// reference parent slots by index, which keeps the is-a DAG free of pointer
// cycles and makes ancestor-closure memoization cheap.
type Index struct {
	version string
	terms   []domain.OntologyTerm
	byID    map[domain.TermID]int
	byLabel map[string]domain.TermID // primary labels and exact synonyms, lowercased
	parents [][]int

	mu       sync.Mutex
	closures map[int]map[int]struct{} // memoized ancestor sets, grown lazily
}

// Version returns the data-version of the loaded release, when known.
func (x *Index) Version() string { return x.version }

// Len returns the number of loaded terms.
func (x *Index) Len() int { return len(x.terms) }

// Resolve returns the term for an identifier, or false when the identifier
// is not part of the loaded release.
func (x *Index) Resolve(id domain.TermID) (domain.OntologyTerm, bool) {
	slot, ok := x.byID[id]
	if !ok {
		return domain.OntologyTerm{}, false
	}
	return x.terms[slot], true
}

// ResolveLabel maps a primary label or exact synonym to its term identifier.
// Matching is case-insensitive.
func (x *Index) ResolveLabel(label string) (domain.TermID, bool) {
	id, ok := x.byLabel[foldLabel(label)]
	return id, ok
}

// IsObsolete reports whether the identifier names an obsolete term. Unknown
// identifiers report false; callers distinguish unknown via Resolve.
func (x *Index) IsObsolete(id domain.TermID) bool {
	slot, ok := x.byID[id]
	return ok && x.terms[slot].Obsolete
}

// ReplacementFor returns the replacement identifier recorded for an obsolete
// term, or empty when none exists.
func (x *Index) ReplacementFor(id domain.TermID) domain.TermID {
	slot, ok := x.byID[id]
	if !ok {
		return ""
	}
	return x.terms[slot].Replacement
}

// IsAncestor reports whether a is an ancestor of, or equal to, b.
func (x *Index) IsAncestor(a, b domain.TermID) bool {
	if a == b {
		if _, ok := x.byID[a]; ok {
			return true
		}
		return false
	}
	slotA, okA := x.byID[a]
	slotB, okB := x.byID[b]
	if !okA || !okB {
		return false
	}
	_, ok := x.closure(slotB)[slotA]
	return ok
}

// closure returns the memoized set of strict-ancestor slots of a term. The
// graph never changes after load, so entries are computed at most once per
// process lifetime.
func (x *Index) closure(slot int) map[int]struct{} {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.closureLocked(slot)
}

func (x *Index) closureLocked(slot int) map[int]struct{} {
	if c, ok := x.closures[slot]; ok {
		return c
	}
	set := make(map[int]struct{})
	for _, p := range x.parents[slot] {
		set[p] = struct{}{}
		for anc := range x.closureLocked(p) {
			set[anc] = struct{}{}
		}
	}
	x.closures[slot] = set
	return set
}

// ArrangeTerms orders curation terms via depth-first traversal of the
// hierarchy, so related terms end up adjacent in generated template columns.
// Terms not present in the index are appended at the end in input order.
func (x *Index) ArrangeTerms(ids []domain.TermID) []domain.TermID {
	wanted := make(map[int]struct{}, len(ids))
	var unknown []domain.TermID
	for _, id := range ids {
		if slot, ok := x.byID[id]; ok {
			wanted[slot] = struct{}{}
		} else {
			unknown = append(unknown, id)
		}
	}

	children := make([][]int, len(x.terms))
	for child, ps := range x.parents {
		for _, p := range ps {
			children[p] = append(children[p], child)
		}
	}
	for _, c := range children {
		sort.Ints(c)
	}

	roots := make([]int, 0)
	for slot := range x.terms {
		if len(x.parents[slot]) == 0 {
			roots = append(roots, slot)
		}
	}
	sort.Ints(roots)

	visited := make(map[int]struct{}, len(x.terms))
	ordered := make([]domain.TermID, 0, len(ids))
	var dfs func(slot int)
	dfs = func(slot int) {
		if _, seen := visited[slot]; seen {
			return
		}
		visited[slot] = struct{}{}
		if _, ok := wanted[slot]; ok {
			ordered = append(ordered, x.terms[slot].ID)
		}
		for _, child := range children[slot] {
			dfs(child)
		}
	}
	for _, r := range roots {
		dfs(r)
	}
	return append(ordered, unknown...)
}

// detectCycle runs a DFS with a visiting set over the is-a graph; any back
// edge to a node still on the current path is a cycle.
func detectCycle(parents [][]int) error {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make([]uint8, len(parents))
	var visit func(slot int, trail []int) error
	visit = func(slot int, trail []int) error {
		state[slot] = visiting
		trail = append(trail, slot)
		for _, p := range parents[slot] {
			switch state[p] {
			case visiting:
				return fmt.Errorf("is-a cycle through term slot %d", p)
			case unvisited:
				if err := visit(p, trail); err != nil {
					return err
				}
			}
		}
		state[slot] = done
		return nil
	}
	for slot := range parents {
		if state[slot] == unvisited {
			if err := visit(slot, nil); err != nil {
				return err
			}
		}
	}
	return nil
}
