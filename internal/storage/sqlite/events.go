package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/tracker/internal/models"
	"github.com/mmynk/tracker/internal/storage"
)

const eventColumns = "e.id, e.user_id, e.series_id, e.kind, e.title, e.set_date, e.notes, e.created_at, e.updated_at"

// eventRepo serves the base events table. It sees every event of the owner,
// specialized or not, but only reads and writes base columns.
type eventRepo struct {
	db *sql.DB
}

func (r *eventRepo) List(ctx context.Context, ownerID string, filter storage.ListFilter) ([]*models.Event, error) {
	cond, args := rangeClause("e.set_date", filter)
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+eventColumns+" FROM events e WHERE e.user_id = ?"+cond+
			" ORDER BY e.set_date, e.created_at",
		append([]any{ownerID}, args...)...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := []*models.Event{}
	for rows.Next() {
		e := &models.Event{}
		if err := scanEvent(rows, e); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}

	return events, nil
}

func (r *eventRepo) Get(ctx context.Context, ownerID, id string) (*models.Event, error) {
	e := &models.Event{}
	err := scanEvent(r.db.QueryRowContext(ctx,
		"SELECT "+eventColumns+" FROM events e WHERE e.id = ? AND e.user_id = ?",
		id, ownerID,
	), e)
	if err != nil {
		return nil, notFound(err, "event", id)
	}
	return e, nil
}

func (r *eventRepo) Create(ctx context.Context, ownerID string, e *models.Event) error {
	e.Kind = models.KindEvent

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertEvent(ctx, tx, ownerID, e); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *eventRepo) Update(ctx context.Context, ownerID string, e *models.Event) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := updateEvent(ctx, tx, ownerID, e, ""); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Delete removes the base row; extension rows go with it via ON DELETE CASCADE.
func (r *eventRepo) Delete(ctx context.Context, ownerID, id string) error {
	return deleteEvent(ctx, r.db, ownerID, id, "")
}

func scanEvent(sc scanner, e *models.Event, extra ...any) error {
	var (
		seriesID                    sql.NullString
		setDate, createdAt, updated int64
	)
	dest := append([]any{
		&e.ID, &e.UserID, &seriesID, &e.Kind, &e.Title, &setDate, &e.Notes, &createdAt, &updated,
	}, extra...)
	if err := sc.Scan(dest...); err != nil {
		return err
	}

	e.SeriesID = nil
	if seriesID.Valid {
		id := seriesID.String
		e.SeriesID = &id
	}
	e.SetDate = fromUnix(setDate)
	e.CreatedAt = fromUnix(createdAt)
	e.UpdatedAt = fromUnix(updated)
	return nil
}

// insertEvent writes a base row inside tx, assigning ID, owner and timestamps.
// e.Kind must already be set by the caller.
func insertEvent(ctx context.Context, tx *sql.Tx, ownerID string, e *models.Event) error {
	if err := checkSeries(ctx, tx, ownerID, e.SeriesID); err != nil {
		return err
	}

	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	e.UserID = ownerID
	e.CreatedAt = now()
	e.UpdatedAt = e.CreatedAt

	_, err := tx.ExecContext(ctx,
		`INSERT INTO events (id, user_id, series_id, kind, title, set_date, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, nullString(e.SeriesID), e.Kind, e.Title, toUnix(e.SetDate), e.Notes,
		toUnix(e.CreatedAt), toUnix(e.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// updateEvent rewrites the mutable base columns. A non-empty kind restricts
// the update to rows of that kind so subtype endpoints cannot reach
// events of another type.
func updateEvent(ctx context.Context, tx *sql.Tx, ownerID string, e *models.Event, kind models.EventKind) error {
	if err := checkSeries(ctx, tx, ownerID, e.SeriesID); err != nil {
		return err
	}

	e.UpdatedAt = now()

	query := `UPDATE events SET series_id = ?, title = ?, set_date = ?, notes = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`
	args := []any{nullString(e.SeriesID), e.Title, toUnix(e.SetDate), e.Notes, toUnix(e.UpdatedAt), e.ID, ownerID}
	if kind != "" {
		query += " AND kind = ?"
		args = append(args, kind)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	return expectOneRow(res, "event", e.ID)
}

func deleteEvent(ctx context.Context, db *sql.DB, ownerID, id string, kind models.EventKind) error {
	query := "DELETE FROM events WHERE id = ? AND user_id = ?"
	args := []any{id, ownerID}
	if kind != "" {
		query += " AND kind = ?"
		args = append(args, kind)
	}

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return expectOneRow(res, "event", id)
}

// checkSeries rejects a series reference the owner cannot see.
func checkSeries(ctx context.Context, tx *sql.Tx, ownerID string, seriesID *string) error {
	if seriesID == nil {
		return nil
	}
	var exists int
	err := tx.QueryRowContext(ctx,
		"SELECT 1 FROM event_series WHERE id = ? AND user_id = ?", *seriesID, ownerID,
	).Scan(&exists)
	if err == sql.ErrNoRows {
		return fmt.Errorf("series %s: %w", *seriesID, storage.ErrInvalidReference)
	}
	if err != nil {
		return fmt.Errorf("failed to check series: %w", err)
	}
	return nil
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
