package store

import (
	"context"

	"github.com/juju/errors"
	"github.com/rogersnm/stitchbook/internal/model"
)

// ResolvePattern follows a weak pattern reference. An empty or dangling
// reference yields found=false and no error.
func (s *Store) ResolvePattern(ctx context.Context, patternID string) (*model.Pattern, bool, error) {
	if patternID == "" {
		return nil, false, nil
	}
	p, err := s.patterns.GetByID(ctx, patternID)
	if errors.Is(err, errors.NotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return p, true, nil
}

// PatternUsage lists the projects and finished works whose weak reference
// points at patternID.
type PatternUsage struct {
	Projects []*model.Project
	Finished []*model.FinishedWork
}

func (s *Store) PatternUsage(ctx context.Context, patternID string) (*PatternUsage, error) {
	projects, err := s.projects.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	finished, err := s.finished.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	u := &PatternUsage{}
	for _, p := range projects {
		if p.PatternID == patternID {
			u.Projects = append(u.Projects, p)
		}
	}
	for _, f := range finished {
		if f.PatternID == patternID {
			u.Finished = append(u.Finished, f)
		}
	}
	return u, nil
}

// Stats holds the number of records per collection.
type Stats struct {
	Patterns int
	Projects int
	Yarns    int
	Finished int
}

func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	var err error
	if st.Patterns, err = s.patterns.Count(ctx); err != nil {
		return Stats{}, err
	}
	if st.Projects, err = s.projects.Count(ctx); err != nil {
		return Stats{}, err
	}
	if st.Yarns, err = s.yarns.Count(ctx); err != nil {
		return Stats{}, err
	}
	if st.Finished, err = s.finished.Count(ctx); err != nil {
		return Stats{}, err
	}
	return st, nil
}
