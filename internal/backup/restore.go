package backup

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/juju/errors"
	"github.com/rogersnm/stitchbook/internal/logging"
	"github.com/rogersnm/stitchbook/internal/model"
	"github.com/rogersnm/stitchbook/internal/store"
	"golang.org/x/sync/errgroup"
)

var log = logging.NewLogger("backup")

// importConcurrency bounds the writes in flight during Import.
const importConcurrency = 8

// ItemFailure is one record that could not be written.
type ItemFailure struct {
	Collection model.Collection
	// Index is the record's position in its document array.
	Index int
	ID    string
	Err   error
}

func (f ItemFailure) Error() string {
	if f.ID == "" {
		return fmt.Sprintf("%s[%d]: %v", f.Collection, f.Index, f.Err)
	}
	return fmt.Sprintf("%s %s: %v", f.Collection, f.ID, f.Err)
}

func (f ItemFailure) Unwrap() error { return f.Err }

// BatchResult reports the outcome of an Import per record.
type BatchResult struct {
	Written  int
	Failures []ItemFailure
}

func (r *BatchResult) OK() bool { return len(r.Failures) == 0 }

// Retry returns a document holding only the records of doc that failed,
// so a caller can fix the fault and import just that subset again.
func (r *BatchResult) Retry(doc *Document) *Document {
	out := &Document{Version: doc.Version, Timestamp: doc.Timestamp, Data: &Data{}}
	if doc.Data == nil {
		return out
	}
	for _, f := range r.Failures {
		var at int
		switch f.Collection {
		case model.Patterns:
			at = len(out.Data.Patterns)
			out.Data.Patterns = pick(out.Data.Patterns, doc.Data.Patterns, f.Index)
		case model.Finished:
			at = len(out.Data.Finished)
			out.Data.Finished = pick(out.Data.Finished, doc.Data.Finished, f.Index)
		case model.Yarns:
			at = len(out.Data.Yarns)
			out.Data.Yarns = pick(out.Data.Yarns, doc.Data.Yarns, f.Index)
		case model.Projects:
			at = len(out.Data.Projects)
			out.Data.Projects = pick(out.Data.Projects, doc.Data.Projects, f.Index)
		}
		// records that never decoded are carried over as written
		if u, ok := doc.Data.undecodedAt(f.Collection, f.Index); ok {
			u.index = at
			out.Data.undecoded = append(out.Data.undecoded, u)
		}
	}
	return out
}

func pick[T any](dst, src []T, i int) []T {
	if i < 0 || i >= len(src) {
		return dst
	}
	return append(dst, src[i])
}

type restoreItem struct {
	collection model.Collection
	index      int
	id         string
	write      func(ctx context.Context) error
}

func restoreItems[T model.Record](repo *store.Repo[T], recs []T, d *Data) []restoreItem {
	items := make([]restoreItem, 0, len(recs))
	for i, rec := range recs {
		it := restoreItem{collection: repo.Collection(), index: i}
		if u, ok := d.undecodedAt(repo.Collection(), i); ok {
			it.id = u.id
			it.write = func(context.Context) error {
				return errors.NewNotValid(u.err, fmt.Sprintf("decoding %s record", repo.Collection()))
			}
		} else if isNil(rec) {
			it.write = func(context.Context) error {
				return errors.NotValidf("null %s record", repo.Collection())
			}
		} else {
			it.id = rec.RecordID()
			it.write = func(ctx context.Context) error {
				_, err := repo.Restore(ctx, rec)
				return err
			}
		}
		items = append(items, it)
	}
	return items
}

func isNil(v any) bool {
	rv := reflect.ValueOf(v)
	return !rv.IsValid() || (rv.Kind() == reflect.Pointer && rv.IsNil())
}

// Import writes every record of doc into dst, keyed by the record's own
// id. Records already present with the same id are replaced in full, new
// ids are added, and local records missing from doc are left alone.
//
// Writes run concurrently and are not rolled back. When any record fails,
// the result lists the failures and the returned error wraps
// ErrPartialImport; importing the same document again is safe.
func Import(ctx context.Context, dst *store.Store, doc *Document) (*BatchResult, error) {
	if doc == nil || doc.Data == nil {
		return nil, ErrInvalidFormat
	}

	var items []restoreItem
	items = append(items, restoreItems(dst.Patterns(), doc.Data.Patterns, doc.Data)...)
	items = append(items, restoreItems(dst.Finished(), doc.Data.Finished, doc.Data)...)
	items = append(items, restoreItems(dst.Yarns(), doc.Data.Yarns, doc.Data)...)
	items = append(items, restoreItems(dst.Projects(), doc.Data.Projects, doc.Data)...)

	var (
		mu  sync.Mutex
		res = &BatchResult{}
	)
	var g errgroup.Group
	g.SetLimit(importConcurrency)
	for _, it := range items {
		g.Go(func() error {
			err := ctx.Err()
			if err == nil {
				err = it.write(ctx)
			}
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Failures = append(res.Failures, ItemFailure{
					Collection: it.collection,
					Index:      it.index,
					ID:         it.id,
					Err:        err,
				})
				return nil
			}
			res.Written++
			return nil
		})
	}
	_ = g.Wait()

	slices.SortFunc(res.Failures, func(a, b ItemFailure) int {
		if c := collectionOrder(a.Collection) - collectionOrder(b.Collection); c != 0 {
			return c
		}
		return a.Index - b.Index
	})

	entry := log.WithField("written", res.Written).WithField("failed", len(res.Failures))
	if !res.OK() {
		entry.Warn("import finished with failures")
		return res, fmt.Errorf("%w: %d of %d records failed, first: %v",
			ErrPartialImport, len(res.Failures), len(items), res.Failures[0])
	}
	entry.Info("imported backup")
	return res, nil
}

func collectionOrder(c model.Collection) int {
	return slices.Index(model.AllCollections, c)
}
