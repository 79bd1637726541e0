package model

import (
	"fmt"
	"time"
)

// Collection names one of the four record collections.
type Collection string

const (
	Patterns Collection = "patterns"
	Projects Collection = "projects"
	Yarns    Collection = "yarns"
	Finished Collection = "finished_works"
)

var AllCollections = []Collection{Patterns, Projects, Yarns, Finished}

func ParseCollection(s string) (Collection, error) {
	for _, c := range AllCollections {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown collection %q", s)
}

// Record is implemented by pointers to the four record variants.
type Record interface {
	RecordID() string
	SetRecordID(id string)
	Created() string
	SetCreated(ts string)
	Updated() string
	SetUpdated(ts string)
	Validate() error
}

// TimestampLayout matches the ISO-8601 form written by existing backups.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// DateLayout is used for startDate and completedDate.
const DateLayout = "2006-01-02"

func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

// Meta holds the fields every record carries. ID and CreatedAt are
// assigned by the store on insert; UpdatedAt stays empty until the first
// update.
type Meta struct {
	ID        string `json:"id" yaml:"id"`
	CreatedAt string `json:"createdAt" yaml:"created_at"`
	UpdatedAt string `json:"updatedAt,omitempty" yaml:"updated_at,omitempty"`
}

func (m *Meta) RecordID() string      { return m.ID }
func (m *Meta) SetRecordID(id string) { m.ID = id }
func (m *Meta) Created() string       { return m.CreatedAt }
func (m *Meta) SetCreated(ts string)  { m.CreatedAt = ts }
func (m *Meta) Updated() string       { return m.UpdatedAt }
func (m *Meta) SetUpdated(ts string)  { m.UpdatedAt = ts }
