package notify

import (
	"context"

	"github.com/google/uuid"

	"github.com/billbatista/expensebook/money"
)

// Spending above nearingPercent of the budget raises a "nearing" alert.
const nearingPercent = 80

// BudgetAlerter turns ledger totals into alert events.
type BudgetAlerter struct {
	worker *Worker
}

func NewBudgetAlerter(worker *Worker) *BudgetAlerter {
	return &BudgetAlerter{worker: worker}
}

func (a *BudgetAlerter) ExpenseAdded(_ context.Context, userID uuid.UUID, spent, budget money.Cents) {
	if event, ok := BudgetEvent(userID, spent, budget); ok {
		a.worker.Send(event)
	}
}

// BudgetEvent returns the alert warranted by spent against budget, if any.
// A zero budget never alerts.
func BudgetEvent(userID uuid.UUID, spent, budget money.Cents) (Event, bool) {
	if budget <= 0 {
		return Event{}, false
	}

	var eventType, msg string
	switch {
	case spent > budget:
		eventType, msg = TypeBudgetExceeded, "You have exceeded your budget!"
	case spent*100 > budget*nearingPercent:
		eventType, msg = TypeBudgetNearing, "You are nearing your budget!"
	default:
		return Event{}, false
	}

	return NewEvent(
		WithType(eventType),
		WithUser(userID),
		WithMessage(msg),
		WithData(map[string]string{
			"spent":     spent.String(),
			"budget":    budget.String(),
			"remaining": (budget - spent).String(),
		}),
	), true
}
