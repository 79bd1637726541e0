package model

import "fmt"

type Project struct {
	Meta      `yaml:",inline"`
	Name      string `json:"name" yaml:"name"`
	Status    Status `json:"status" yaml:"status"`
	StartDate string `json:"startDate" yaml:"start_date"`
	// PatternID is a weak reference: it is never validated and may dangle.
	PatternID string `json:"patternId" yaml:"pattern_id"`
	Progress  int    `json:"progress" yaml:"progress"`
	Notes     string `json:"notes" yaml:"notes"`
	Extra     Extra  `json:"-" yaml:"-"`
}

func (p *Project) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("project name is required")
	}
	if err := ValidateStatus(p.Status); err != nil {
		return err
	}
	return validateScale("progress", p.Progress, 0, 100)
}

func (p Project) MarshalJSON() ([]byte, error) {
	type plain Project
	return marshalWithExtra(plain(p), p.Extra)
}

func (p *Project) UnmarshalJSON(data []byte) error {
	type plain Project
	var v plain
	extra, err := unmarshalWithExtra(data, &v)
	if err != nil {
		return fmt.Errorf("decoding project: %w", err)
	}
	*p = Project(v)
	p.Extra = extra
	return nil
}
