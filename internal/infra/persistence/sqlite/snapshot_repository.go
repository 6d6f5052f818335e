// Package sqlite implements the snapshot repository on a local SQLite
// database, so in-progress check-ins survive a process restart.
package sqlite

import (
	"context"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"checkin/internal/domain/entity"
	"checkin/internal/domain/repository"
	"checkin/internal/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS check_ins (
	point_id   INTEGER PRIMARY KEY,
	timestamp  TEXT NOT NULL,
	photo_url  TEXT NOT NULL DEFAULT ''
);
`

// SnapshotRepository stores the whole check-in record set as one replaceable
// document. There are no migrations; the schema is a single table.
type SnapshotRepository struct {
	db     *sqlx.DB
	logger *slog.Logger
}

var _ repository.SnapshotRepository = (*SnapshotRepository)(nil)

// NewSnapshotRepository opens (or creates) the SQLite database at dbPath and
// ensures the schema exists.
func NewSnapshotRepository(dbPath string, logger *slog.Logger) (*SnapshotRepository, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "opening sqlite db")
	}

	// WAL keeps reads cheap while the 1 Hz loop writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()

		return nil, errors.Wrap(err, "enabling WAL mode")
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()

		return nil, errors.Wrap(err, "creating schema")
	}

	return &SnapshotRepository{db: db, logger: logger}, nil
}

// Close closes the underlying database connection.
func (r *SnapshotRepository) Close() error {
	return r.db.Close()
}

// Save replaces the full record set in one transaction.
func (r *SnapshotRepository) Save(ctx context.Context, records []entity.CheckInRecord) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM check_ins"); err != nil {
		return errors.Wrap(err, "clearing check_ins")
	}

	const query = `INSERT INTO check_ins (point_id, timestamp, photo_url) VALUES (?, ?, ?)`
	for _, record := range records {
		_, err := tx.ExecContext(ctx, query,
			record.PointID,
			record.Timestamp.UTC().Format(time.RFC3339Nano),
			record.PhotoURL,
		)
		if err != nil {
			return errors.Wrapf(err, "inserting record for point %d", record.PointID)
		}
	}

	return tx.Commit()
}

// LoadSameDay returns the stored records ordered by timestamp. When the
// newest record's calendar date differs from now's, the whole snapshot is
// purged and an empty set returned: the daily-reset rule applies to the
// store as a whole, not per record. Rows that fail to parse count as
// corruption and are treated as absent state.
func (r *SnapshotRepository) LoadSameDay(ctx context.Context, now time.Time) ([]entity.CheckInRecord, error) {
	type row struct {
		PointID   int    `db:"point_id"`
		Timestamp string `db:"timestamp"`
		PhotoURL  string `db:"photo_url"`
	}

	var rows []row
	if err := r.db.SelectContext(ctx, &rows, "SELECT point_id, timestamp, photo_url FROM check_ins ORDER BY timestamp"); err != nil {
		return nil, errors.Wrap(err, "querying check_ins")
	}
	if len(rows) == 0 {
		return nil, nil
	}

	records := make([]entity.CheckInRecord, 0, len(rows))
	for _, rw := range rows {
		ts, err := time.Parse(time.RFC3339Nano, rw.Timestamp)
		if err != nil {
			r.logger.Warn("discarding corrupt check-in snapshot",
				slog.Int("point_id", rw.PointID),
				slog.Any("error", err),
			)
			if err := r.purge(ctx); err != nil {
				return nil, err
			}

			return nil, nil
		}
		records = append(records, entity.CheckInRecord{
			PointID:   rw.PointID,
			Timestamp: ts,
			PhotoURL:  rw.PhotoURL,
		})
	}

	newest := records[len(records)-1]
	if !entity.SameCalendarDay(newest.Timestamp, now) {
		r.logger.Info("daily reset: discarding previous day's check-ins",
			slog.Int("records", len(records)),
		)
		if err := r.purge(ctx); err != nil {
			return nil, err
		}

		return nil, nil
	}

	return records, nil
}

func (r *SnapshotRepository) purge(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM check_ins"); err != nil {
		return errors.Wrap(err, "purging check_ins")
	}

	return nil
}
