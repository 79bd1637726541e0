package store

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rogersnm/stitchbook/internal/model"
)

type SearchResult struct {
	Collection model.Collection
	ID         string
	Title      string
	Snippet    string
}

// Search matches query case-insensitively against the names and free-text
// fields of every collection.
func (s *Store) Search(ctx context.Context, query string) ([]SearchResult, error) {
	q := strings.ToLower(query)
	var results []SearchResult

	patterns, err := s.patterns.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range patterns {
		if r, ok := match(q, model.Patterns, p.ID, p.Title,
			[]string{string(p.Category), strings.Join(p.Tags, " ")}, p.Content, p.Note); ok {
			results = append(results, r)
		}
	}

	projects, err := s.projects.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		if r, ok := match(q, model.Projects, p.ID, p.Name, nil, p.Notes); ok {
			results = append(results, r)
		}
	}

	yarns, err := s.yarns.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, y := range yarns {
		if r, ok := match(q, model.Yarns, y.ID, YarnLabel(y),
			[]string{y.Material, y.Weight, y.PurchasedFrom}); ok {
			results = append(results, r)
		}
	}

	finished, err := s.finished.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, f := range finished {
		if r, ok := match(q, model.Finished, f.ID, f.Name, nil, f.Notes); ok {
			results = append(results, r)
		}
	}

	return results, nil
}

// match checks the title and short fields first, then the long bodies, which
// also produce a snippet.
func match(q string, c model.Collection, recordID, title string, fields []string, bodies ...string) (SearchResult, bool) {
	r := SearchResult{Collection: c, ID: recordID, Title: title}
	if matchesQuery(q, title) {
		return r, true
	}
	for _, f := range fields {
		if matchesQuery(q, f) {
			return r, true
		}
	}
	for _, b := range bodies {
		if matchesQuery(q, b) {
			r.Snippet = snippet(b, q)
			return r, true
		}
	}
	return r, false
}

// FilterPatterns keeps patterns whose title or category contains query.
func FilterPatterns(patterns []*model.Pattern, query string) []*model.Pattern {
	if query == "" {
		return patterns
	}
	q := strings.ToLower(query)
	var out []*model.Pattern
	for _, p := range patterns {
		if matchesQuery(q, p.Title) || matchesQuery(q, string(p.Category)) {
			out = append(out, p)
		}
	}
	return out
}

// FilterYarns keeps yarns whose brand or color name contains query.
func FilterYarns(yarns []*model.Yarn, query string) []*model.Yarn {
	if query == "" {
		return yarns
	}
	q := strings.ToLower(query)
	var out []*model.Yarn
	for _, y := range yarns {
		if matchesQuery(q, y.Brand) || matchesQuery(q, y.Color) {
			out = append(out, y)
		}
	}
	return out
}

// YarnLabel is the display name of a yarn: brand and color name.
func YarnLabel(y *model.Yarn) string {
	return strings.TrimSpace(y.Brand + " " + y.Color)
}

func matchesQuery(q, text string) bool {
	return strings.Contains(strings.ToLower(text), q)
}

// snippetContext is how many runes of context surround a match.
const snippetContext = 40

// snippet cuts the text around the first case-insensitive match of query.
// Offsets come from body itself, since lowercasing can change byte lengths.
func snippet(body, query string) string {
	loc := regexp.MustCompile("(?i)" + regexp.QuoteMeta(query)).FindStringIndex(body)
	if loc == nil {
		return ""
	}
	start := loc[0]
	for n := 0; n < snippetContext && start > 0; n++ {
		_, size := utf8.DecodeLastRuneInString(body[:start])
		start -= size
	}
	end := loc[1]
	for n := 0; n < snippetContext && end < len(body); n++ {
		_, size := utf8.DecodeRuneInString(body[end:])
		end += size
	}
	s := body[start:end]
	if start > 0 {
		s = "..." + s
	}
	if end < len(body) {
		s = s + "..."
	}
	return strings.ReplaceAll(s, "\n", " ")
}
