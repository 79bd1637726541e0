package backup

import (
	"context"

	"github.com/rogersnm/stitchbook/internal/model"
	"github.com/rogersnm/stitchbook/internal/store"
)

// CollectionDiff is what an import would do to one collection.
type CollectionDiff struct {
	Collection  model.Collection
	Added       []string
	Overwritten []string
	// Invalid counts records that are null, have no id or do not decode,
	// and would fail.
	Invalid int
}

// Diff previews an Import without writing anything.
type Diff struct {
	Collections []CollectionDiff
}

func (d *Diff) Totals() (added, overwritten, invalid int) {
	for _, c := range d.Collections {
		added += len(c.Added)
		overwritten += len(c.Overwritten)
		invalid += c.Invalid
	}
	return added, overwritten, invalid
}

// DryRun reports, per collection, which records of doc would be added and
// which would replace an existing local record.
func DryRun(ctx context.Context, dst *store.Store, doc *Document) (*Diff, error) {
	if doc == nil || doc.Data == nil {
		return nil, ErrInvalidFormat
	}
	d := &Diff{}
	for _, step := range []func() (CollectionDiff, error){
		func() (CollectionDiff, error) { return diffCollection(ctx, dst.Patterns(), doc.Data.Patterns) },
		func() (CollectionDiff, error) { return diffCollection(ctx, dst.Finished(), doc.Data.Finished) },
		func() (CollectionDiff, error) { return diffCollection(ctx, dst.Yarns(), doc.Data.Yarns) },
		func() (CollectionDiff, error) { return diffCollection(ctx, dst.Projects(), doc.Data.Projects) },
	} {
		cd, err := step()
		if err != nil {
			return nil, err
		}
		d.Collections = append(d.Collections, cd)
	}
	return d, nil
}

func diffCollection[T model.Record](ctx context.Context, repo *store.Repo[T], recs []T) (CollectionDiff, error) {
	cd := CollectionDiff{Collection: repo.Collection()}
	for _, rec := range recs {
		if isNil(rec) || rec.RecordID() == "" {
			cd.Invalid++
			continue
		}
		exists, err := repo.Exists(ctx, rec.RecordID())
		if err != nil {
			return CollectionDiff{}, err
		}
		if exists {
			cd.Overwritten = append(cd.Overwritten, rec.RecordID())
		} else {
			cd.Added = append(cd.Added, rec.RecordID())
		}
	}
	return cd, nil
}
