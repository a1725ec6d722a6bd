package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billbatista/expensebook/apperr"
	"github.com/billbatista/expensebook/database/dbtest"
	"github.com/billbatista/expensebook/money"
	"github.com/billbatista/expensebook/user"
)

type recordedAlert struct {
	userID        uuid.UUID
	spent, budget money.Cents
}

type fakeAlerter struct {
	mu     sync.Mutex
	alerts []recordedAlert
}

func (f *fakeAlerter) ExpenseAdded(_ context.Context, userID uuid.UUID, spent, budget money.Cents) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alerts = append(f.alerts, recordedAlert{userID, spent, budget})
}

type fixture struct {
	svc     *Service
	users   user.Repository
	alerter *fakeAlerter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.New(t)
	alerter := &fakeAlerter{}
	return &fixture{
		svc:     NewService(NewRepository(db), alerter),
		users:   user.NewRepository(db),
		alerter: alerter,
	}
}

func (f *fixture) newUser(t *testing.T, name string, budget money.Cents) uuid.UUID {
	t.Helper()
	u := &user.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        name + "@x.com",
		PasswordHash: "hash",
		Budget:       budget,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, f.users.Create(t.Context(), u))
	return u.ID
}

func TestAddAndList(t *testing.T) {
	f := newFixture(t)
	alice := f.newUser(t, "alice", 100000)

	created, err := f.svc.Add(t.Context(), alice, draft("2024-01-05", "Tea", `50`))
	require.NoError(t, err)

	list, err := f.svc.List(t.Context(), alice)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
	assert.Equal(t, "Tea", list[0].Item)
	assert.Equal(t, money.Cents(5000), list[0].Amount)
	assert.True(t, created.CreatedAt.Equal(list[0].CreatedAt))
}

func TestListOrdersByDateThenCreation(t *testing.T) {
	f := newFixture(t)
	alice := f.newUser(t, "alice", 0)

	for _, d := range []Draft{
		draft("2024-01-10", "first", `1`),
		draft("2024-01-02", "second", `2`),
		draft("2024-01-10", "third", `3`),
		draft("2024-01-02", "fourth", `4`),
	} {
		_, err := f.svc.Add(t.Context(), alice, d)
		require.NoError(t, err)
	}

	list, err := f.svc.List(t.Context(), alice)
	require.NoError(t, err)

	var items []string
	for _, e := range list {
		items = append(items, e.Item)
	}
	assert.Equal(t, []string{"second", "fourth", "first", "third"}, items)
}

func TestListIsEmptyNotNil(t *testing.T) {
	f := newFixture(t)
	alice := f.newUser(t, "alice", 0)

	list, err := f.svc.List(t.Context(), alice)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestRemoveIsScopedToOwner(t *testing.T) {
	f := newFixture(t)
	alice := f.newUser(t, "alice", 0)
	bob := f.newUser(t, "bob", 0)

	aliceTea, err := f.svc.Add(t.Context(), alice, draft("2024-01-05", "Tea", `50`))
	require.NoError(t, err)
	_, err = f.svc.Add(t.Context(), bob, draft("2024-01-06", "Coffee", `30`))
	require.NoError(t, err)

	err = f.svc.Remove(t.Context(), bob, aliceTea.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	aliceList, err := f.svc.List(t.Context(), alice)
	require.NoError(t, err)
	bobList, err := f.svc.List(t.Context(), bob)
	require.NoError(t, err)
	assert.Len(t, aliceList, 1)
	assert.Len(t, bobList, 1)

	require.NoError(t, f.svc.Remove(t.Context(), alice, aliceTea.ID))
	aliceList, err = f.svc.List(t.Context(), alice)
	require.NoError(t, err)
	assert.Empty(t, aliceList)

	err = f.svc.Remove(t.Context(), alice, aliceTea.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestClearResetsLedgerAndBudget(t *testing.T) {
	f := newFixture(t)
	alice := f.newUser(t, "alice", 100000)
	bob := f.newUser(t, "bob", 5000)

	for _, item := range []string{"Tea", "Bread", "Milk"} {
		_, err := f.svc.Add(t.Context(), alice, draft("2024-01-05", item, `10`))
		require.NoError(t, err)
	}
	_, err := f.svc.Add(t.Context(), bob, draft("2024-01-05", "Coffee", `10`))
	require.NoError(t, err)

	removed, err := f.svc.Clear(t.Context(), alice)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	list, err := f.svc.List(t.Context(), alice)
	require.NoError(t, err)
	assert.Empty(t, list)

	a, err := f.users.GetByID(t.Context(), alice)
	require.NoError(t, err)
	assert.Equal(t, money.Cents(0), a.Budget)

	b, err := f.users.GetByID(t.Context(), bob)
	require.NoError(t, err)
	assert.Equal(t, money.Cents(5000), b.Budget)
	bobList, err := f.svc.List(t.Context(), bob)
	require.NoError(t, err)
	assert.Len(t, bobList, 1)
}

func TestClearUnknownAccount(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Clear(t.Context(), uuid.New())
	assert.ErrorIs(t, err, apperr.ErrAuth)
}

func TestAddReportsTotalsToAlerter(t *testing.T) {
	f := newFixture(t)
	alice := f.newUser(t, "alice", 10000)

	_, err := f.svc.Add(t.Context(), alice, draft("2024-01-05", "Tea", `50`))
	require.NoError(t, err)
	_, err = f.svc.Add(t.Context(), alice, draft("2024-01-06", "Cake", `60`))
	require.NoError(t, err)

	require.Len(t, f.alerter.alerts, 2)
	assert.Equal(t, recordedAlert{alice, 5000, 10000}, f.alerter.alerts[0])
	assert.Equal(t, recordedAlert{alice, 11000, 10000}, f.alerter.alerts[1])
}
