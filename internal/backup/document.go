package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/juju/errors"
	"github.com/rogersnm/stitchbook/internal/model"
	"github.com/rogersnm/stitchbook/internal/store"
)

const (
	// Version is the document format written by Export.
	Version = 1

	// FilePrefix starts the name of every backup file, local or remote.
	FilePrefix = "crochet_backup"
)

const (
	ErrInvalidFormat = errors.ConstError("backup has no data section")
	ErrParse         = errors.ConstError("backup is not valid JSON")
	ErrPartialImport = errors.ConstError("import partially failed")
)

// Document is a versioned snapshot of all four collections.
type Document struct {
	Version   int    `json:"version"`
	Timestamp string `json:"timestamp"`
	Data      *Data  `json:"data"`
}

// Data holds the records of each collection. Records are decoded one at a
// time: an entry that does not fit its record type is left nil in place,
// and its raw JSON is kept so it is written back unchanged and reported
// per item by Import.
type Data struct {
	Patterns []*model.Pattern      `json:"patterns"`
	Finished []*model.FinishedWork `json:"finished"`
	Yarns    []*model.Yarn         `json:"yarns"`
	Projects []*model.Project      `json:"projects"`

	undecoded []rawItem
}

type rawItem struct {
	collection model.Collection
	index      int
	id         string
	raw        json.RawMessage
	err        error
}

type rawData struct {
	Patterns []json.RawMessage `json:"patterns"`
	Finished []json.RawMessage `json:"finished"`
	Yarns    []json.RawMessage `json:"yarns"`
	Projects []json.RawMessage `json:"projects"`
}

func (d *Data) UnmarshalJSON(b []byte) error {
	var raw rawData
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*d = Data{}
	d.Patterns = decodeItems[*model.Pattern](d, model.Patterns, raw.Patterns)
	d.Finished = decodeItems[*model.FinishedWork](d, model.Finished, raw.Finished)
	d.Yarns = decodeItems[*model.Yarn](d, model.Yarns, raw.Yarns)
	d.Projects = decodeItems[*model.Project](d, model.Projects, raw.Projects)
	return nil
}

func (d Data) MarshalJSON() ([]byte, error) {
	var raw rawData
	var err error
	if raw.Patterns, err = encodeItems(&d, model.Patterns, d.Patterns); err != nil {
		return nil, err
	}
	if raw.Finished, err = encodeItems(&d, model.Finished, d.Finished); err != nil {
		return nil, err
	}
	if raw.Yarns, err = encodeItems(&d, model.Yarns, d.Yarns); err != nil {
		return nil, err
	}
	if raw.Projects, err = encodeItems(&d, model.Projects, d.Projects); err != nil {
		return nil, err
	}
	return json.Marshal(raw)
}

func decodeItems[T any](d *Data, c model.Collection, raw []json.RawMessage) []T {
	if raw == nil {
		return nil
	}
	out := make([]T, len(raw))
	for i, item := range raw {
		if err := json.Unmarshal(item, &out[i]); err != nil {
			var zero T
			out[i] = zero
			var ref struct {
				ID string `json:"id"`
			}
			_ = json.Unmarshal(item, &ref)
			d.undecoded = append(d.undecoded, rawItem{
				collection: c,
				index:      i,
				id:         ref.ID,
				raw:        item,
				err:        err,
			})
		}
	}
	return out
}

func encodeItems[T any](d *Data, c model.Collection, items []T) ([]json.RawMessage, error) {
	if items == nil {
		return nil, nil
	}
	out := make([]json.RawMessage, len(items))
	for i, item := range items {
		if u, ok := d.undecodedAt(c, i); ok {
			out[i] = u.raw
			continue
		}
		b, err := json.Marshal(item)
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}

func (d *Data) undecodedAt(c model.Collection, i int) (rawItem, bool) {
	for _, u := range d.undecoded {
		if u.collection == c && u.index == i {
			return u, true
		}
	}
	return rawItem{}, false
}

// Len returns the number of records in the document.
func (d *Document) Len() int {
	if d == nil || d.Data == nil {
		return 0
	}
	return len(d.Data.Patterns) + len(d.Data.Finished) + len(d.Data.Yarns) + len(d.Data.Projects)
}

// Export reads the full contents of every collection.
func Export(ctx context.Context, src *store.Store) (*Document, error) {
	patterns, err := src.Patterns().ListAll(ctx)
	if err != nil {
		return nil, err
	}
	finished, err := src.Finished().ListAll(ctx)
	if err != nil {
		return nil, err
	}
	yarns, err := src.Yarns().ListAll(ctx)
	if err != nil {
		return nil, err
	}
	projects, err := src.Projects().ListAll(ctx)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Version:   Version,
		Timestamp: model.Timestamp(time.Now()),
		Data: &Data{
			Patterns: orEmpty(patterns),
			Finished: orEmpty(finished),
			Yarns:    orEmpty(yarns),
			Projects: orEmpty(projects),
		},
	}
	log.WithField("records", doc.Len()).Info("exported backup")
	return doc, nil
}

// Marshal encodes doc as compact JSON, the form uploaded to remote storage.
func Marshal(doc *Document) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding backup: %w", err)
	}
	return data, nil
}

// Encode writes doc as indented JSON, the form saved to local files.
func Encode(w io.Writer, doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding backup: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing backup: %w", err)
	}
	return nil
}

// Decode parses a backup document. Content that is not JSON of the
// document's shape fails with ErrParse. A document without a data
// section decodes fine and is rejected later by Import.
func Decode(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading backup: %w", err)
	}
	return Unmarshal(data)
}

func Unmarshal(data []byte) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty content", ErrParse)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return &doc, nil
}

// LocalFileName is the default name for an exported file, one per day.
func LocalFileName(t time.Time) string {
	return fmt.Sprintf("%s_%s.json", FilePrefix, t.UTC().Format(model.DateLayout))
}

// RemoteFileName is the name an upload is stored under. The full timestamp
// keeps names unique; ':' and '.' are replaced so that every file server
// accepts it.
func RemoteFileName(t time.Time) string {
	stamp := strings.NewReplacer(":", "-", ".", "-").Replace(model.Timestamp(t))
	return fmt.Sprintf("%s_%s.json", FilePrefix, stamp)
}

// IsBackupName reports whether a file name looks like a backup.
func IsBackupName(name string) bool {
	return strings.Contains(name, FilePrefix)
}

func WriteFile(path string, doc *Document) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating backup directory: %w", err)
		}
	}
	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing backup: %w", err)
	}
	return nil
}

func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening backup: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
