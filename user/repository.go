package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/billbatista/expensebook/database"
	"github.com/billbatista/expensebook/money"
)

const selectUser = `SELECT id, name, email, password_hash, budget_cents, created_at FROM users`

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, u *User) error {
	query := `INSERT INTO users (id, name, email, password_hash, budget_cents, created_at) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query, u.ID, u.Name, u.Email, u.PasswordHash, int64(u.Budget), u.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	return nil
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getOne(ctx, selectUser+` WHERE email = $1`, email)
}

func (r *repository) GetByName(ctx context.Context, name string) (*User, error) {
	return r.getOne(ctx, selectUser+` WHERE name = $1`, name)
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.getOne(ctx, selectUser+` WHERE id = $1`, id)
}

func (r *repository) SetBudget(ctx context.Context, id uuid.UUID, amount money.Cents) (money.Cents, error) {
	query := `UPDATE users SET budget_cents = $1 WHERE id = $2 RETURNING budget_cents`
	return r.updateBudget(ctx, query, int64(amount), id)
}

// AddBudget raises the budget by delta unless the total would reach
// money.MaxCents, in which case the budget is left as it was.
func (r *repository) AddBudget(ctx context.Context, id uuid.UUID, delta money.Cents) (money.Cents, error) {
	query := `UPDATE users SET budget_cents = budget_cents + $1
              WHERE id = $2 AND budget_cents < $3 - $1
              RETURNING budget_cents`

	var budget int64
	err := r.db.QueryRowContext(ctx, query, int64(delta), id, int64(money.MaxCents)).Scan(&budget)
	if errors.Is(err, sql.ErrNoRows) {
		u, lookupErr := r.GetByID(ctx, id)
		if lookupErr != nil {
			return 0, lookupErr
		}
		if u == nil {
			return 0, ErrNotFound
		}
		return 0, ErrBudgetLimit
	}
	if err != nil {
		return 0, fmt.Errorf("adding to budget: %w", err)
	}

	return money.Cents(budget), nil
}

func (r *repository) updateBudget(ctx context.Context, query string, amount int64, id uuid.UUID) (money.Cents, error) {
	var budget int64
	err := r.db.QueryRowContext(ctx, query, amount, id).Scan(&budget)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("updating budget: %w", err)
	}

	return money.Cents(budget), nil
}

func (r *repository) getOne(ctx context.Context, query string, arg any) (*User, error) {
	var (
		u      User
		budget int64
	)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&budget,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying user: %w", err)
	}
	u.Budget = money.Cents(budget)

	return &u, nil
}
