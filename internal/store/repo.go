package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/juju/errors"
	"github.com/rogersnm/stitchbook/internal/id"
	"github.com/rogersnm/stitchbook/internal/model"
	"github.com/sirupsen/logrus"
)

// Repo is the storage for one collection. T is a pointer to a record
// variant, e.g. *model.Pattern.
type Repo[T model.Record] struct {
	db         *sql.DB
	collection model.Collection
	log        *logrus.Entry
}

func newRepo[T model.Record](db *sql.DB, c model.Collection, log *logrus.Entry) *Repo[T] {
	return &Repo[T]{db: db, collection: c, log: log.WithField("collection", string(c))}
}

func (r *Repo[T]) Collection() model.Collection { return r.collection }

// ListAll returns every record in the collection, oldest first.
func (r *Repo[T]) ListAll(ctx context.Context) ([]T, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT payload FROM records WHERE collection = ? ORDER BY created_at, id`, string(r.collection))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", r.collection, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", r.collection, err)
		}
		rec, err := decode[T](payload)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing %s: %w", r.collection, err)
	}
	return out, nil
}

// GetByID returns the record with the given id. A miss returns an error
// satisfying errors.Is(err, errors.NotFound).
func (r *Repo[T]) GetByID(ctx context.Context, recordID string) (T, error) {
	return r.get(ctx, r.db, recordID)
}

// Exists reports whether a record with the given id is stored.
func (r *Repo[T]) Exists(ctx context.Context, recordID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM records WHERE collection = ? AND id = ?`, string(r.collection), recordID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking %s %s: %w", r.collection, recordID, err)
	}
	return n > 0, nil
}

// Count returns the number of records in the collection.
func (r *Repo[T]) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM records WHERE collection = ?`, string(r.collection)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", r.collection, err)
	}
	return n, nil
}

// Insert stores rec as a new record. The store assigns the id and the
// creation timestamp; any id or timestamps on rec are overwritten.
func (r *Repo[T]) Insert(ctx context.Context, rec T) (T, error) {
	var zero T
	if err := rec.Validate(); err != nil {
		return zero, err
	}
	rid, err := id.New()
	if err != nil {
		return zero, err
	}
	rec.SetRecordID(rid)
	rec.SetCreated(now())
	rec.SetUpdated("")

	payload, err := json.Marshal(rec)
	if err != nil {
		return zero, fmt.Errorf("encoding %s: %w", r.collection, err)
	}
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO records(collection, id, created_at, payload) VALUES(?, ?, ?, ?)`,
		string(r.collection), rid, rec.Created(), payload); err != nil {
		return zero, fmt.Errorf("inserting %s: %w", r.collection, err)
	}
	r.log.WithField("id", rid).Debug("inserted record")
	return rec, nil
}

// Upsert replaces the stored record with rec in full and stamps the update
// time. A record without an id is inserted instead. The original creation
// timestamp is kept; it is never changed after insertion.
func (r *Repo[T]) Upsert(ctx context.Context, rec T) (T, error) {
	if rec.RecordID() == "" {
		return r.Insert(ctx, rec)
	}
	rec.SetUpdated(now())
	if err := r.put(ctx, rec, true); err != nil {
		var zero T
		return zero, err
	}
	r.log.WithField("id", rec.RecordID()).Debug("upserted record")
	return rec, nil
}

// Restore writes rec exactly as given, keyed by its own id, replacing any
// existing record with that id in full. It is the write path for backups:
// nothing is validated and no timestamps are stamped or carried over, so
// restoring the same record twice leaves the store unchanged.
func (r *Repo[T]) Restore(ctx context.Context, rec T) (T, error) {
	var zero T
	if rec.RecordID() == "" {
		return zero, errors.NotValidf("%s record without id", r.collection)
	}
	if err := r.put(ctx, rec, false); err != nil {
		return zero, err
	}
	return rec, nil
}

// DeleteByID removes a record immediately. Deleting a missing id returns
// a NotFound error.
func (r *Repo[T]) DeleteByID(ctx context.Context, recordID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM records WHERE collection = ? AND id = ?`, string(r.collection), recordID)
	if err != nil {
		return fmt.Errorf("deleting %s %s: %w", r.collection, recordID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting %s %s: %w", r.collection, recordID, err)
	}
	if n == 0 {
		return errors.NotFoundf("%s %q", r.collection, recordID)
	}
	r.log.WithField("id", recordID).Debug("deleted record")
	return nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *Repo[T]) get(ctx context.Context, q querier, recordID string) (T, error) {
	var zero T
	var payload []byte
	err := q.QueryRowContext(ctx,
		`SELECT payload FROM records WHERE collection = ? AND id = ?`, string(r.collection), recordID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, errors.NotFoundf("%s %q", r.collection, recordID)
	}
	if err != nil {
		return zero, fmt.Errorf("reading %s %s: %w", r.collection, recordID, err)
	}
	return decode[T](payload)
}

// put writes rec inside a transaction so that, with keepCreated, the
// existing creation timestamp is carried over atomically.
func (r *Repo[T]) put(ctx context.Context, rec T, keepCreated bool) (retErr error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("writing %s: %w", r.collection, err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	if keepCreated {
		existing, err := r.get(ctx, tx, rec.RecordID())
		switch {
		case err == nil:
			if existing.Created() != "" {
				rec.SetCreated(existing.Created())
			}
		case !errors.Is(err, errors.NotFound):
			return err
		}
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", r.collection, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO records(collection, id, created_at, payload) VALUES(?, ?, ?, ?)
		 ON CONFLICT(collection, id) DO UPDATE SET created_at = excluded.created_at, payload = excluded.payload`,
		string(r.collection), rec.RecordID(), rec.Created(), payload); err != nil {
		return fmt.Errorf("writing %s %s: %w", r.collection, rec.RecordID(), err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing %s %s: %w", r.collection, rec.RecordID(), err)
	}
	return nil
}

func decode[T model.Record](payload []byte) (T, error) {
	var rec T
	if err := json.Unmarshal(payload, &rec); err != nil {
		var zero T
		return zero, fmt.Errorf("decoding stored record: %w", err)
	}
	return rec, nil
}
