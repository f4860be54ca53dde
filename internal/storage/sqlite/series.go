package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/tracker/internal/models"
	"github.com/mmynk/tracker/internal/storage"
)

const seriesColumns = "id, user_id, title, description, frequency, interval_count, start_date, end_date, created_at, updated_at"

type seriesRepo struct {
	db *sql.DB
}

func (r *seriesRepo) List(ctx context.Context, ownerID string, filter storage.ListFilter) ([]*models.EventSeries, error) {
	cond, args := rangeClause("start_date", filter)
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+seriesColumns+" FROM event_series WHERE user_id = ?"+cond+
			" ORDER BY start_date, created_at",
		append([]any{ownerID}, args...)...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list series: %w", err)
	}
	defer rows.Close()

	series := []*models.EventSeries{}
	for rows.Next() {
		s, err := scanSeries(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan series: %w", err)
		}
		series = append(series, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate series: %w", err)
	}

	return series, nil
}

func (r *seriesRepo) Get(ctx context.Context, ownerID, id string) (*models.EventSeries, error) {
	s, err := scanSeries(r.db.QueryRowContext(ctx,
		"SELECT "+seriesColumns+" FROM event_series WHERE id = ? AND user_id = ?",
		id, ownerID,
	))
	if err != nil {
		return nil, notFound(err, "series", id)
	}
	return s, nil
}

func (r *seriesRepo) Create(ctx context.Context, ownerID string, s *models.EventSeries) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	s.UserID = ownerID
	s.CreatedAt = now()
	s.UpdatedAt = s.CreatedAt

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO event_series (id, user_id, title, description, frequency, interval_count, start_date, end_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.UserID, s.Title, s.Description, s.Frequency, s.Interval,
		toUnix(s.StartDate), nullTime(s.EndDate), toUnix(s.CreatedAt), toUnix(s.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert series: %w", err)
	}
	return nil
}

func (r *seriesRepo) Update(ctx context.Context, ownerID string, s *models.EventSeries) error {
	s.UpdatedAt = now()

	res, err := r.db.ExecContext(ctx,
		`UPDATE event_series SET title = ?, description = ?, frequency = ?, interval_count = ?,
		 start_date = ?, end_date = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		s.Title, s.Description, s.Frequency, s.Interval,
		toUnix(s.StartDate), nullTime(s.EndDate), toUnix(s.UpdatedAt),
		s.ID, ownerID,
	)
	if err != nil {
		return fmt.Errorf("failed to update series: %w", err)
	}
	return expectOneRow(res, "series", s.ID)
}

// Delete removes the series. Member events keep existing with series_id
// cleared by ON DELETE SET NULL.
func (r *seriesRepo) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM event_series WHERE id = ? AND user_id = ?", id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete series: %w", err)
	}
	return expectOneRow(res, "series", id)
}

func scanSeries(sc scanner) (*models.EventSeries, error) {
	s := &models.EventSeries{}
	var (
		start, createdAt, updatedAt int64
		end                         sql.NullInt64
	)
	if err := sc.Scan(&s.ID, &s.UserID, &s.Title, &s.Description, &s.Frequency, &s.Interval,
		&start, &end, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	s.StartDate = fromUnix(start)
	if end.Valid {
		t := fromUnix(end.Int64)
		s.EndDate = &t
	}
	s.CreatedAt = fromUnix(createdAt)
	s.UpdatedAt = fromUnix(updatedAt)
	return s, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return toUnix(*t)
}
