package ledger

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billbatista/expensebook/apperr"
	"github.com/billbatista/expensebook/money"
)

func draft(date, item, amount string) Draft {
	return Draft{
		Date:     date,
		Item:     item,
		Amount:   json.RawMessage(amount),
		Quantity: "1",
		Mode:     "Cash",
	}
}

func TestNewExpense(t *testing.T) {
	userID := uuid.New()

	e, err := NewExpense(userID, draft(" 2024-01-05 ", "Tea", `50`))
	require.NoError(t, err)
	assert.Equal(t, userID, e.UserID)
	assert.Equal(t, "2024-01-05", e.Date)
	assert.Equal(t, money.Cents(5000), e.Amount)
	assert.NotEqual(t, uuid.Nil, e.ID)
	assert.False(t, e.CreatedAt.IsZero())

	e, err = NewExpense(userID, draft("2024-01-05", "Tea", `"12.30"`))
	require.NoError(t, err)
	assert.Equal(t, money.Cents(1230), e.Amount, "numeric strings are coerced")
}

func TestNewExpenseValidation(t *testing.T) {
	missing := "date, item, amount, quantity and mode are required"

	tests := []struct {
		name  string
		draft Draft
		msg   string
	}{
		{"no date", draft("", "Tea", `50`), missing},
		{"no item", draft("2024-01-05", "  ", `50`), missing},
		{"no amount", draft("2024-01-05", "Tea", ``), missing},
		{"null amount", draft("2024-01-05", "Tea", `null`), missing},
		{"no quantity", Draft{Date: "2024-01-05", Item: "Tea", Amount: json.RawMessage(`1`), Mode: "Cash"}, missing},
		{"no mode", Draft{Date: "2024-01-05", Item: "Tea", Amount: json.RawMessage(`1`), Quantity: "1"}, missing},
		{"text amount", draft("2024-01-05", "Tea", `"lots"`), "amount must be a number"},
		{"zero amount", draft("2024-01-05", "Tea", `0`), "amount must be positive"},
		{"negative amount", draft("2024-01-05", "Tea", `-4`), "amount must be positive"},
		{"sub cent", draft("2024-01-05", "Tea", `1.234`), "amount can't have more than 2 decimal places"},
		{"bad date", draft("05/01/2024", "Tea", `50`), "date must be formatted as YYYY-MM-DD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewExpense(uuid.New(), tt.draft)
			require.ErrorIs(t, err, apperr.ErrValidation)
			assert.Equal(t, tt.msg, apperr.Message(err))
		})
	}
}

func TestCreationTimesStrictlyIncrease(t *testing.T) {
	prev := clock.next()
	for range 100 {
		next := clock.next()
		require.True(t, next.After(prev))
		prev = next
	}
}
