package model

import "fmt"

type Pattern struct {
	Meta       `yaml:",inline"`
	Title      string   `json:"title" yaml:"title"`
	Category   Category `json:"category" yaml:"category"`
	Difficulty int      `json:"difficulty" yaml:"difficulty"`
	HookSize   string   `json:"hookSize" yaml:"hook_size"`
	Tags       []string `json:"tags" yaml:"tags"`
	Content    string   `json:"content" yaml:"-"`
	Note       string   `json:"note" yaml:"note"`
	Images     []string `json:"images" yaml:"-"`
	Extra      Extra    `json:"-" yaml:"-"`
}

func (p *Pattern) Validate() error {
	if p.Title == "" {
		return fmt.Errorf("pattern title is required")
	}
	if err := ValidateCategory(p.Category); err != nil {
		return err
	}
	return validateScale("difficulty", p.Difficulty, 1, 5)
}

func (p Pattern) MarshalJSON() ([]byte, error) {
	type plain Pattern
	return marshalWithExtra(plain(p), p.Extra)
}

func (p *Pattern) UnmarshalJSON(data []byte) error {
	type plain Pattern
	var v plain
	extra, err := unmarshalWithExtra(data, &v)
	if err != nil {
		return fmt.Errorf("decoding pattern: %w", err)
	}
	*p = Pattern(v)
	p.Extra = extra
	return nil
}
