package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mmynk/tracker/internal/models"
	"github.com/mmynk/tracker/internal/storage"
)

// extension describes how a specialized event maps onto its extension table.
type extension[T any] struct {
	kind    models.EventKind
	table   string
	columns []string

	base   func(v *T) *models.Event
	values func(v *T) []any // column values, in columns order
	dests  func(v *T) []any // scan targets, in columns order
}

var medicalExtension = extension[models.MedicalEvent]{
	kind:    models.KindMedical,
	table:   "medical_events",
	columns: []string{"reason", "provider", "medication"},
	base:    func(v *models.MedicalEvent) *models.Event { return &v.Event },
	values: func(v *models.MedicalEvent) []any {
		return []any{v.Reason, v.Provider, v.Medication}
	},
	dests: func(v *models.MedicalEvent) []any {
		return []any{&v.Reason, &v.Provider, &v.Medication}
	},
}

var workExtension = extension[models.WorkEvent]{
	kind:    models.KindWork,
	table:   "work_events",
	columns: []string{"occurrence", "location"},
	base:    func(v *models.WorkEvent) *models.Event { return &v.Event },
	values: func(v *models.WorkEvent) []any {
		return []any{v.Occurrence, v.Location}
	},
	dests: func(v *models.WorkEvent) []any {
		return []any{&v.Occurrence, &v.Location}
	},
}

var financialExtension = extension[models.FinancialEvent]{
	kind:    models.KindFinancial,
	table:   "financial_events",
	columns: []string{"occurrence", "expected_amount", "is_recurring"},
	base:    func(v *models.FinancialEvent) *models.Event { return &v.Event },
	values: func(v *models.FinancialEvent) []any {
		return []any{v.Occurrence, v.ExpectedAmount.StringFixed(2), v.IsRecurring}
	},
	dests: func(v *models.FinancialEvent) []any {
		return []any{&v.Occurrence, &v.ExpectedAmount, &v.IsRecurring}
	},
}

// subtypeRepo serves one specialized event type: a base events row joined
// with its extension row. Base and extension are always written together.
type subtypeRepo[T any] struct {
	db  *sql.DB
	ext extension[T]
}

func (r *subtypeRepo[T]) selectSQL() string {
	cols := make([]string, len(r.ext.columns))
	for i, c := range r.ext.columns {
		cols[i] = "x." + c
	}
	return "SELECT " + eventColumns + ", " + strings.Join(cols, ", ") +
		" FROM events e JOIN " + r.ext.table + " x ON x.event_id = e.id"
}

func (r *subtypeRepo[T]) scan(sc scanner) (*T, error) {
	v := new(T)
	if err := scanEvent(sc, r.ext.base(v), r.ext.dests(v)...); err != nil {
		return nil, err
	}
	return v, nil
}

func (r *subtypeRepo[T]) List(ctx context.Context, ownerID string, filter storage.ListFilter) ([]*T, error) {
	cond, args := rangeClause("e.set_date", filter)
	rows, err := r.db.QueryContext(ctx,
		r.selectSQL()+" WHERE e.user_id = ? AND e.kind = ?"+cond+" ORDER BY e.set_date, e.created_at",
		append([]any{ownerID, r.ext.kind}, args...)...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.ext.table, err)
	}
	defer rows.Close()

	out := []*T{}
	for rows.Next() {
		v, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", r.ext.table, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", r.ext.table, err)
	}

	return out, nil
}

func (r *subtypeRepo[T]) Get(ctx context.Context, ownerID, id string) (*T, error) {
	v, err := r.scan(r.db.QueryRowContext(ctx,
		r.selectSQL()+" WHERE e.id = ? AND e.user_id = ? AND e.kind = ?",
		id, ownerID, r.ext.kind,
	))
	if err != nil {
		return nil, notFound(err, string(r.ext.kind)+" event", id)
	}
	return v, nil
}

func (r *subtypeRepo[T]) Create(ctx context.Context, ownerID string, v *T) error {
	base := r.ext.base(v)
	base.Kind = r.ext.kind

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertEvent(ctx, tx, ownerID, base); err != nil {
		return err
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(r.ext.columns)+1), ", ")
	_, err = tx.ExecContext(ctx,
		"INSERT INTO "+r.ext.table+" (event_id, "+strings.Join(r.ext.columns, ", ")+") VALUES ("+placeholders+")",
		append([]any{base.ID}, r.ext.values(v)...)...,
	)
	if err != nil {
		return fmt.Errorf("failed to insert %s: %w", r.ext.table, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *subtypeRepo[T]) Update(ctx context.Context, ownerID string, v *T) error {
	base := r.ext.base(v)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := updateEvent(ctx, tx, ownerID, base, r.ext.kind); err != nil {
		return err
	}

	sets := make([]string, len(r.ext.columns))
	for i, c := range r.ext.columns {
		sets[i] = c + " = ?"
	}
	res, err := tx.ExecContext(ctx,
		"UPDATE "+r.ext.table+" SET "+strings.Join(sets, ", ")+" WHERE event_id = ?",
		append(r.ext.values(v), base.ID)...,
	)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", r.ext.table, err)
	}
	if err := expectOneRow(res, string(r.ext.kind)+" event", base.ID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *subtypeRepo[T]) Delete(ctx context.Context, ownerID, id string) error {
	return deleteEvent(ctx, r.db, ownerID, id, r.ext.kind)
}
