package ledger

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/billbatista/expensebook/apperr"
	"github.com/billbatista/expensebook/money"
)

// DateLayout is the only accepted expense date format. Stored as text,
// it sorts the same way the calendar does.
const DateLayout = "2006-01-02"

var ErrNotFound = errors.New("expense not found")

type Expense struct {
	ID        uuid.UUID   `json:"id"`
	UserID    uuid.UUID   `json:"-"`
	Date      string      `json:"date"`
	Item      string      `json:"item"`
	Amount    money.Cents `json:"amount"`
	Quantity  string      `json:"quantity"`
	Mode      string      `json:"mode"`
	CreatedAt time.Time   `json:"created_at"`
}

// Draft is an expense as submitted by a client, before validation.
// Amount may be a JSON number or a numeric string.
type Draft struct {
	Date     string          `json:"date"`
	Item     string          `json:"item"`
	Amount   json.RawMessage `json:"amount"`
	Quantity string          `json:"quantity"`
	Mode     string          `json:"mode"`
}

// Totals is the budget of an account next to what its ledger adds up to.
type Totals struct {
	Budget money.Cents
	Spent  money.Cents
}

func NewExpense(userID uuid.UUID, d Draft) (*Expense, error) {
	date := strings.TrimSpace(d.Date)
	item := strings.TrimSpace(d.Item)
	quantity := strings.TrimSpace(d.Quantity)
	mode := strings.TrimSpace(d.Mode)

	amount, amountErr := money.FromJSON(d.Amount)
	if date == "" || item == "" || quantity == "" || mode == "" || errors.Is(amountErr, money.ErrMissing) {
		return nil, apperr.Validation("date, item, amount, quantity and mode are required")
	}
	if amountErr != nil {
		return nil, apperr.Validation(amountErr.Error())
	}
	if amount <= 0 {
		return nil, apperr.Validation("amount must be positive")
	}

	if _, err := time.Parse(DateLayout, date); err != nil {
		return nil, apperr.Validation("date must be formatted as YYYY-MM-DD")
	}

	return &Expense{
		ID:        uuid.New(),
		UserID:    userID,
		Date:      date,
		Item:      item,
		Amount:    amount,
		Quantity:  quantity,
		Mode:      mode,
		CreatedAt: clock.next(),
	}, nil
}

var clock = &createdClock{}

// createdClock hands out strictly increasing creation times, so expenses
// added within the same microsecond still list in the order they were made.
type createdClock struct {
	mu   sync.Mutex
	last time.Time
}

func (c *createdClock) next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().UTC().Truncate(time.Microsecond)
	if !now.After(c.last) {
		now = c.last.Add(time.Microsecond)
	}
	c.last = now
	return now
}
