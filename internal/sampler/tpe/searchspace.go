package tpe

import (
	"sort"

	"github.com/GoSim-25-26J-441/tpe-golden/internal/space"
)

// intersectionSpace is the set of parameters every finished trial sampled
// with an identical domain, sorted by name.
func intersectionSpace(trials []*frozenTrial) searchSpace {
	var common map[string]space.Domain
	for i := len(trials) - 1; i >= 0; i-- {
		t := trials[i]
		if !t.state.finished() {
			continue
		}
		if common == nil {
			common = make(map[string]space.Domain, len(t.domains))
			for name, d := range t.domains {
				common[name] = d
			}
			continue
		}
		for name, d := range common {
			if td, ok := t.domains[name]; !ok || !td.Equal(d) {
				delete(common, name)
			}
		}
	}
	return sortedSpace(common)
}

// groupSpaces splits the finished trials' parameters into groups that were
// always sampled together.
func groupSpaces(trials []*frozenTrial) []searchSpace {
	var groups []map[string]space.Domain
	for _, t := range trials {
		if !t.state.finished() {
			continue
		}
		groups = addToGroups(groups, t.order, t.domains)
	}

	out := make([]searchSpace, 0, len(groups))
	for _, g := range groups {
		out = append(out, sortedSpace(g))
	}
	return out
}

// addToGroups refines groups with one trial's parameters. Each group is split
// into the part the trial shares and the part it lacks; parameters new to
// every group form a group of their own.
func addToGroups(groups []map[string]space.Domain, order []string, domains map[string]space.Domain) []map[string]space.Domain {
	fresh := make(map[string]bool, len(domains))
	for name := range domains {
		fresh[name] = true
	}

	var next []map[string]space.Domain
	for _, g := range groups {
		shared := make(map[string]space.Domain)
		left := make(map[string]space.Domain)
		for name, d := range g {
			if _, ok := domains[name]; ok {
				shared[name] = d
			} else {
				left[name] = d
			}
			delete(fresh, name)
		}
		if len(shared) > 0 {
			next = append(next, shared)
		}
		if len(left) > 0 {
			next = append(next, left)
		}
	}

	right := make(map[string]space.Domain)
	for _, name := range order {
		if fresh[name] {
			right[name] = domains[name]
		}
	}
	if len(right) > 0 {
		next = append(next, right)
	}
	return next
}

func sortedSpace(m map[string]space.Domain) searchSpace {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(searchSpace, 0, len(names))
	for _, name := range names {
		out = append(out, param{name: name, domain: m[name]})
	}
	return out
}

// withoutSingles drops parameters whose domain has only one value
func withoutSingles(ss searchSpace) searchSpace {
	out := make(searchSpace, 0, len(ss))
	for _, p := range ss {
		if !p.domain.Single() {
			out = append(out, p)
		}
	}
	return out
}
