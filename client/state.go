package client

import (
	"slices"
	"sort"

	"github.com/google/uuid"

	"github.com/billbatista/expensebook/ledger"
	"github.com/billbatista/expensebook/money"
	"github.com/billbatista/expensebook/user"
)

type Phase int

const (
	Unauthenticated Phase = iota
	Loading
	Ready
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	default:
		return "unauthenticated"
	}
}

// State is the local mirror of one account. Update methods return a new
// State and leave the receiver untouched.
type State struct {
	Phase    Phase
	User     user.Profile
	Budget   money.Cents
	Expenses []ledger.Expense
}

func (s State) WithExpense(e ledger.Expense) State {
	s.Expenses = append(slices.Clone(s.Expenses), e)
	return s
}

func (s State) WithoutExpense(id uuid.UUID) State {
	s.Expenses = slices.DeleteFunc(slices.Clone(s.Expenses), func(e ledger.Expense) bool {
		return e.ID == id
	})
	return s
}

func (s State) WithBudget(budget money.Cents) State {
	s.Budget = budget
	s.User.Budget = budget
	return s
}

func (s State) Cleared() State {
	s.Expenses = nil
	return s.WithBudget(0)
}

// Row is one rendered ledger line.
type Row struct {
	Expense   ledger.Expense
	Balance   money.Cents
	Overdrawn bool
}

type Table struct {
	Budget    money.Cents
	Spent     money.Cents
	Remaining money.Cents
	Rows      []Row
}

// Render orders the mirror by date and walks it subtracting each amount
// from the budget. Rows whose running balance is below zero are flagged.
func Render(s State) Table {
	expenses := slices.Clone(s.Expenses)
	sort.SliceStable(expenses, func(i, j int) bool {
		return expenses[i].Date < expenses[j].Date
	})

	t := Table{Budget: s.Budget, Rows: make([]Row, 0, len(expenses))}
	balance := s.Budget
	for _, e := range expenses {
		balance -= e.Amount
		t.Spent += e.Amount
		t.Rows = append(t.Rows, Row{
			Expense:   e,
			Balance:   balance,
			Overdrawn: balance < 0,
		})
	}
	t.Remaining = balance

	return t
}
