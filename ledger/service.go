package ledger

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/billbatista/expensebook/apperr"
	"github.com/billbatista/expensebook/money"
)

// Alerter is told about an account's totals after every new expense.
type Alerter interface {
	ExpenseAdded(ctx context.Context, userID uuid.UUID, spent, budget money.Cents)
}

type Service struct {
	repo    Repository
	alerter Alerter
}

// NewService builds the ledger service. alerter may be nil.
func NewService(repo Repository, alerter Alerter) *Service {
	return &Service{repo: repo, alerter: alerter}
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]Expense, error) {
	return s.repo.List(ctx, userID)
}

func (s *Service) Add(ctx context.Context, userID uuid.UUID, d Draft) (*Expense, error) {
	expense, err := NewExpense(userID, d)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, expense); err != nil {
		return nil, err
	}

	if s.alerter != nil {
		totals, err := s.repo.Totals(ctx, userID)
		if err != nil {
			slog.WarnContext(ctx, "failed to compute totals for budget alert", "error", err, "user_id", userID)
		} else {
			s.alerter.ExpenseAdded(ctx, userID, totals.Spent, totals.Budget)
		}
	}

	return expense, nil
}

func (s *Service) Remove(ctx context.Context, userID, expenseID uuid.UUID) error {
	err := s.repo.Delete(ctx, userID, expenseID)
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("expense not found")
	}
	return err
}

// Clear empties the ledger and resets the budget to zero.
func (s *Service) Clear(ctx context.Context, userID uuid.UUID) (int64, error) {
	removed, err := s.repo.Clear(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return 0, apperr.Auth("unauthenticated")
	}
	return removed, err
}
