package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/billbatista/expensebook/money"
)

var (
	ErrNotFound  = errors.New("user not found")
	ErrDuplicate = errors.New("name or email already exists")

	// ErrBudgetLimit means the new budget would reach money.MaxCents.
	ErrBudgetLimit = errors.New("budget limit reached")
)

type User struct {
	ID           uuid.UUID   `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	Budget       money.Cents `json:"budget"`
	CreatedAt    time.Time   `json:"created_at"`
}

// Profile is the public view of a user. It never carries the password hash.
type Profile struct {
	ID     uuid.UUID   `json:"id"`
	Name   string      `json:"name"`
	Email  string      `json:"email"`
	Budget money.Cents `json:"budget"`
}

func (u *User) Profile() Profile {
	return Profile{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Budget: u.Budget,
	}
}

// Repository is the credential store. Lookups return nil, nil when nothing matches.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByName(ctx context.Context, name string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	SetBudget(ctx context.Context, id uuid.UUID, amount money.Cents) (money.Cents, error)
	AddBudget(ctx context.Context, id uuid.UUID, delta money.Cents) (money.Cents, error)
}
