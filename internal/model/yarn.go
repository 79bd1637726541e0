package model

import "fmt"

type Yarn struct {
	Meta          `yaml:",inline"`
	Brand         string   `json:"brand" yaml:"brand"`
	Color         string   `json:"color" yaml:"color"`
	ColorValue    string   `json:"colorValue" yaml:"color_value"`
	Material      string   `json:"material" yaml:"material"`
	Weight        string   `json:"weight" yaml:"weight"`
	Stock         float64  `json:"stock" yaml:"stock"`
	Unit          Unit     `json:"unit" yaml:"unit"`
	PurchasedFrom string   `json:"purchasedFrom" yaml:"purchased_from"`
	Price         float64  `json:"price" yaml:"price"`
	Images        []string `json:"images" yaml:"-"`
	Extra         Extra    `json:"-" yaml:"-"`
}

func (y *Yarn) Validate() error {
	if y.Brand == "" && y.Color == "" {
		return fmt.Errorf("yarn brand or color is required")
	}
	if y.Stock < 0 {
		return fmt.Errorf("yarn stock cannot be negative")
	}
	return ValidateUnit(y.Unit)
}

func (y Yarn) MarshalJSON() ([]byte, error) {
	type plain Yarn
	return marshalWithExtra(plain(y), y.Extra)
}

func (y *Yarn) UnmarshalJSON(data []byte) error {
	type plain Yarn
	var v plain
	extra, err := unmarshalWithExtra(data, &v)
	if err != nil {
		return fmt.Errorf("decoding yarn: %w", err)
	}
	*y = Yarn(v)
	y.Extra = extra
	return nil
}
