package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/tracker/internal/models"
	"github.com/mmynk/tracker/internal/storage"
)

const transactionColumns = "id, user_id, title, amount, type, notes, transaction_date, created_at, updated_at"

type transactionRepo struct {
	db *sql.DB
}

// List returns the owner's transactions, newest first.
func (r *transactionRepo) List(ctx context.Context, ownerID string, filter storage.ListFilter) ([]*models.Transaction, error) {
	cond, args := rangeClause("transaction_date", filter)
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE user_id = ?"+cond+
			" ORDER BY transaction_date DESC, created_at DESC",
		append([]any{ownerID}, args...)...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	txns := []*models.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return txns, nil
}

func (r *transactionRepo) Get(ctx context.Context, ownerID, id string) (*models.Transaction, error) {
	t, err := scanTransaction(r.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ? AND user_id = ?",
		id, ownerID,
	))
	if err != nil {
		return nil, notFound(err, "transaction", id)
	}
	return t, nil
}

func (r *transactionRepo) Create(ctx context.Context, ownerID string, t *models.Transaction) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	t.UserID = ownerID
	t.CreatedAt = now()
	t.UpdatedAt = t.CreatedAt

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, user_id, title, amount, type, notes, transaction_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.Title, t.Amount.StringFixed(2), t.Type, t.Notes,
		toUnix(t.TransactionDate), toUnix(t.CreatedAt), toUnix(t.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

func (r *transactionRepo) Update(ctx context.Context, ownerID string, t *models.Transaction) error {
	t.UpdatedAt = now()

	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET title = ?, amount = ?, type = ?, notes = ?, transaction_date = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		t.Title, t.Amount.StringFixed(2), t.Type, t.Notes, toUnix(t.TransactionDate), toUnix(t.UpdatedAt),
		t.ID, ownerID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return expectOneRow(res, "transaction", t.ID)
}

func (r *transactionRepo) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM transactions WHERE id = ? AND user_id = ?", id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return expectOneRow(res, "transaction", id)
}

func scanTransaction(sc scanner) (*models.Transaction, error) {
	t := &models.Transaction{}
	var date, createdAt, updatedAt int64
	if err := sc.Scan(&t.ID, &t.UserID, &t.Title, &t.Amount, &t.Type, &t.Notes,
		&date, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	t.TransactionDate = fromUnix(date)
	t.CreatedAt = fromUnix(createdAt)
	t.UpdatedAt = fromUnix(updatedAt)
	return t, nil
}
