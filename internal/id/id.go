package id

import (
	"fmt"

	"github.com/google/uuid"
)

// New returns a fresh random record identifier.
func New() (string, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generating id: %w", err)
	}
	return u.String(), nil
}
