package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/billbatista/expensebook/money"
)

type Repository interface {
	Save(ctx context.Context, e *Expense) error
	List(ctx context.Context, userID uuid.UUID) ([]Expense, error)
	Delete(ctx context.Context, userID, expenseID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) (int64, error)
	Totals(ctx context.Context, userID uuid.UUID) (Totals, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *repository {
	return &repository{db: db}
}

func (r *repository) Save(ctx context.Context, e *Expense) error {
	query := `INSERT INTO expenses (id, user_id, date, item, amount_cents, quantity, mode, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		e.ID,
		e.UserID,
		e.Date,
		e.Item,
		int64(e.Amount),
		e.Quantity,
		e.Mode,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting expense: %w", err)
	}

	return nil
}

// List returns the ledger of userID by date, oldest first. Same-date
// expenses keep the order they were created in.
func (r *repository) List(ctx context.Context, userID uuid.UUID) ([]Expense, error) {
	query := `SELECT id, user_id, date, item, amount_cents, quantity, mode, created_at
              FROM expenses
              WHERE user_id = $1
              ORDER BY date ASC, created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying expenses: %w", err)
	}
	defer rows.Close()

	expenses := []Expense{}
	for rows.Next() {
		var (
			expense Expense
			amount  int64
		)
		err := rows.Scan(
			&expense.ID,
			&expense.UserID,
			&expense.Date,
			&expense.Item,
			&amount,
			&expense.Quantity,
			&expense.Mode,
			&expense.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning expense: %w", err)
		}
		expense.Amount = money.Cents(amount)
		expenses = append(expenses, expense)
	}

	return expenses, rows.Err()
}

func (r *repository) Delete(ctx context.Context, userID, expenseID uuid.UUID) error {
	query := `DELETE FROM expenses WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, expenseID, userID)
	if err != nil {
		return fmt.Errorf("deleting expense: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting expense: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	return nil
}

// Clear deletes every expense of userID and zeroes the budget in one transaction.
func (r *repository) Clear(ctx context.Context, userID uuid.UUID) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("deleting expenses: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deleting expenses: %w", err)
	}

	result, err = tx.ExecContext(ctx, `UPDATE users SET budget_cents = 0 WHERE id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("resetting budget: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return 0, fmt.Errorf("resetting budget: %w", err)
	} else if n == 0 {
		return 0, ErrNotFound
	}

	return removed, tx.Commit()
}

func (r *repository) Totals(ctx context.Context, userID uuid.UUID) (Totals, error) {
	query := `SELECT u.budget_cents, CAST(COALESCE(SUM(e.amount_cents), 0) AS BIGINT)
              FROM users u
              LEFT JOIN expenses e ON e.user_id = u.id
              WHERE u.id = $1
              GROUP BY u.budget_cents`

	var budget, spent int64
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&budget, &spent)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Totals{}, ErrNotFound
		}
		return Totals{}, fmt.Errorf("querying totals: %w", err)
	}

	return Totals{Budget: money.Cents(budget), Spent: money.Cents(spent)}, nil
}
