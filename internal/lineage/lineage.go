// Package lineage groups projects and finished works under the pattern
// they reference.
package lineage

import (
	"sort"

	"github.com/rogersnm/stitchbook/internal/model"
)

// Tree is the forest of patterns with the records that point at them.
// References are weak, so records whose pattern no longer exists are
// collected per missing id instead of being dropped.
type Tree struct {
	patterns map[string]*model.Pattern
	projects map[string][]*model.Project      // pattern id -> projects
	finished map[string][]*model.FinishedWork // pattern id -> finished works
}

func Build(patterns []*model.Pattern, projects []*model.Project, finished []*model.FinishedWork) *Tree {
	t := &Tree{
		patterns: make(map[string]*model.Pattern),
		projects: make(map[string][]*model.Project),
		finished: make(map[string][]*model.FinishedWork),
	}
	for _, p := range patterns {
		t.patterns[p.ID] = p
	}
	for _, p := range projects {
		if p.PatternID != "" {
			t.projects[p.PatternID] = append(t.projects[p.PatternID], p)
		}
	}
	for _, f := range finished {
		if f.PatternID != "" {
			t.finished[f.PatternID] = append(t.finished[f.PatternID], f)
		}
	}
	return t
}

// Roots returns pattern ids sorted by title, then id.
func (t *Tree) Roots() []string {
	ids := make([]string, 0, len(t.patterns))
	for id := range t.patterns {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := t.patterns[ids[i]], t.patterns[ids[j]]
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.ID < b.ID
	})
	return ids
}

// Dangling returns the referenced pattern ids that have no pattern, sorted.
func (t *Tree) Dangling() []string {
	seen := make(map[string]bool)
	for id := range t.projects {
		seen[id] = true
	}
	for id := range t.finished {
		seen[id] = true
	}
	var out []string
	for id := range seen {
		if _, ok := t.patterns[id]; !ok {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

func (t *Tree) Projects(patternID string) []*model.Project {
	return t.projects[patternID]
}

func (t *Tree) Finished(patternID string) []*model.FinishedWork {
	return t.finished[patternID]
}

// Unused returns patterns nothing refers to, in root order.
func (t *Tree) Unused() []string {
	var out []string
	for _, id := range t.Roots() {
		if len(t.projects[id]) == 0 && len(t.finished[id]) == 0 {
			out = append(out, id)
		}
	}
	return out
}
