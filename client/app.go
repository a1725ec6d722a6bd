package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/billbatista/expensebook/ledger"
	"github.com/billbatista/expensebook/money"
	"github.com/billbatista/expensebook/user"
)

var (
	ErrLoginRequired  = errors.New("please log in")
	ErrSessionExpired = fmt.Errorf("session expired, %w", ErrLoginRequired)
)

// TokenStore keeps the session token between runs.
type TokenStore interface {
	Token() (string, error)
	Save(token string, profile user.Profile) error
	Clear() error
}

// App drives the page lifecycle: Unauthenticated, then Loading, then Ready.
// A 401 from any call drops the stored session and returns to Unauthenticated.
type App struct {
	api    *Client
	tokens TokenStore
	state  State
}

func NewApp(api *Client, tokens TokenStore) *App {
	return &App{api: api, tokens: tokens}
}

func (a *App) State() State {
	return a.state
}

func (a *App) Register(ctx context.Context, name, email, password string) error {
	res, err := a.api.Register(ctx, name, email, password)
	if err != nil {
		return err
	}
	return a.startSession(ctx, res)
}

func (a *App) Login(ctx context.Context, name, password string) error {
	res, err := a.api.Login(ctx, name, password)
	if err != nil {
		return err
	}
	return a.startSession(ctx, res)
}

func (a *App) Logout() error {
	a.api.SetToken("")
	a.state = State{Phase: Unauthenticated}
	return a.tokens.Clear()
}

// Load fetches the profile and the ledger together and fills the mirror.
func (a *App) Load(ctx context.Context) error {
	token, err := a.tokens.Token()
	if err != nil {
		return fmt.Errorf("reading session: %w", err)
	}
	if token == "" {
		a.state = State{Phase: Unauthenticated}
		return ErrLoginRequired
	}
	a.api.SetToken(token)
	prev := a.state
	a.state = State{Phase: Loading}

	var (
		profile  user.Profile
		expenses []ledger.Expense
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile, err = a.api.Me(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		expenses, err = a.api.Expenses(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		err = a.fail(err)
		if !errors.Is(err, ErrLoginRequired) {
			a.state = prev
		}
		return err
	}

	a.state = State{
		Phase:    Ready,
		User:     profile,
		Budget:   profile.Budget,
		Expenses: expenses,
	}
	return nil
}

func (a *App) AddExpense(ctx context.Context, in NewExpense) (*ledger.Expense, error) {
	created, err := a.api.AddExpense(ctx, in)
	if err != nil {
		return nil, a.fail(err)
	}
	a.state = a.state.WithExpense(*created)
	return created, nil
}

func (a *App) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	if err := a.api.DeleteExpense(ctx, id); err != nil {
		return a.fail(err)
	}
	a.state = a.state.WithoutExpense(id)
	return nil
}

func (a *App) Clear(ctx context.Context) error {
	if err := a.api.ClearExpenses(ctx); err != nil {
		return a.fail(err)
	}
	a.state = a.state.Cleared()
	return nil
}

func (a *App) SetBudget(ctx context.Context, amount money.Cents) error {
	total, err := a.api.SetBudget(ctx, amount)
	if err != nil {
		return a.fail(err)
	}
	a.state = a.state.WithBudget(total)
	return nil
}

func (a *App) AddMoney(ctx context.Context, amount money.Cents) error {
	total, err := a.api.AddBudget(ctx, amount)
	if err != nil {
		return a.fail(err)
	}
	a.state = a.state.WithBudget(total)
	return nil
}

func (a *App) startSession(ctx context.Context, res *user.AuthResult) error {
	if err := a.tokens.Save(res.Token, res.User); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return a.Load(ctx)
}

// fail leaves the mirror as it was, except on a 401 which ends the session.
func (a *App) fail(err error) error {
	if !errors.Is(err, ErrUnauthenticated) {
		return err
	}

	a.api.SetToken("")
	a.state = State{Phase: Unauthenticated}
	if clearErr := a.tokens.Clear(); clearErr != nil {
		return errors.Join(ErrSessionExpired, clearErr)
	}
	return ErrSessionExpired
}

// UserMessage is the text to show for err.
func UserMessage(err error) string {
	var (
		apiErr *APIError
		urlErr *url.Error
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrLoginRequired):
		return err.Error()
	case errors.As(err, &apiErr) && apiErr.Status >= http.StatusInternalServerError:
		return "something went wrong, please try again"
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.As(err, &urlErr):
		return "could not reach the server, please try again"
	default:
		return err.Error()
	}
}
