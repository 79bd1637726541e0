package model

import (
	"fmt"
	"strings"
)

type Category string

const (
	CategoryAmigurumi   Category = "Amigurumi"
	CategoryClothing    Category = "Clothing"
	CategoryHomeDecor   Category = "HomeDecor"
	CategoryAccessories Category = "Accessories"
	CategoryOther       Category = "Other"
)

var ValidCategories = []Category{CategoryAmigurumi, CategoryClothing, CategoryHomeDecor, CategoryAccessories, CategoryOther}

func ValidateCategory(c Category) error {
	for _, v := range ValidCategories {
		if c == v {
			return nil
		}
	}
	return fmt.Errorf("invalid category %q: must be one of %s", c, joinValues(ValidCategories))
}

type Status string

const (
	StatusPlan       Status = "plan"
	StatusInProgress Status = "in-progress"
	StatusPaused     Status = "paused"
	StatusCompleted  Status = "completed"
)

var ValidStatuses = []Status{StatusPlan, StatusInProgress, StatusPaused, StatusCompleted}

func ValidateStatus(s Status) error {
	for _, v := range ValidStatuses {
		if s == v {
			return nil
		}
	}
	return fmt.Errorf("invalid status %q: must be one of %s", s, joinValues(ValidStatuses))
}

type Unit string

const (
	UnitGrams  Unit = "g"
	UnitOunces Unit = "oz"
	UnitBalls  Unit = "balls"
	UnitMeters Unit = "m"
	UnitYards  Unit = "yds"
)

var ValidUnits = []Unit{UnitGrams, UnitOunces, UnitBalls, UnitMeters, UnitYards}

func ValidateUnit(u Unit) error {
	for _, v := range ValidUnits {
		if u == v {
			return nil
		}
	}
	return fmt.Errorf("invalid unit %q: must be one of %s", u, joinValues(ValidUnits))
}

func validateScale(field string, v, lo, hi int) error {
	if v < lo || v > hi {
		return fmt.Errorf("%s must be between %d and %d, got %d", field, lo, hi, v)
	}
	return nil
}

func joinValues[T ~string](vals []T) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
