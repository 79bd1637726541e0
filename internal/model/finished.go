package model

import "fmt"

// FinishedWork records a completed piece.
type FinishedWork struct {
	Meta          `yaml:",inline"`
	Name          string `json:"name" yaml:"name"`
	CompletedDate string `json:"completedDate" yaml:"completed_date"`
	// PatternID is a weak reference: it is never validated and may dangle.
	PatternID string   `json:"patternId" yaml:"pattern_id"`
	TimeSpent string   `json:"timeSpent" yaml:"time_spent"`
	Rating    int      `json:"rating" yaml:"rating"`
	Notes     string   `json:"notes" yaml:"notes"`
	Images    []string `json:"images" yaml:"-"`
	Extra     Extra    `json:"-" yaml:"-"`
}

func (f *FinishedWork) Validate() error {
	if f.Name == "" {
		return fmt.Errorf("finished work name is required")
	}
	return validateScale("rating", f.Rating, 1, 5)
}

func (f FinishedWork) MarshalJSON() ([]byte, error) {
	type plain FinishedWork
	return marshalWithExtra(plain(f), f.Extra)
}

func (f *FinishedWork) UnmarshalJSON(data []byte) error {
	type plain FinishedWork
	var v plain
	extra, err := unmarshalWithExtra(data, &v)
	if err != nil {
		return fmt.Errorf("decoding finished work: %w", err)
	}
	*f = FinishedWork(v)
	f.Extra = extra
	return nil
}
