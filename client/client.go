// Package client talks to the expense API and keeps a local mirror of one
// account's budget and ledger.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/billbatista/expensebook/ledger"
	"github.com/billbatista/expensebook/money"
	"github.com/billbatista/expensebook/user"
)

var ErrUnauthenticated = errors.New("unauthenticated")

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthenticated
	}
	return nil
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*user.AuthResult, error) {
	var res user.AuthResult
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/register", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Login(ctx context.Context, name, password string) (*user.AuthResult, error) {
	var res user.AuthResult
	body := map[string]string{"name": name, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Me(ctx context.Context) (user.Profile, error) {
	var p user.Profile
	err := c.do(ctx, http.MethodGet, "/auth/me", nil, &p)
	return p, err
}

func (c *Client) SetBudget(ctx context.Context, amount money.Cents) (money.Cents, error) {
	return c.budget(ctx, "/budget/set", amount)
}

func (c *Client) AddBudget(ctx context.Context, amount money.Cents) (money.Cents, error) {
	return c.budget(ctx, "/budget/add", amount)
}

func (c *Client) budget(ctx context.Context, path string, amount money.Cents) (money.Cents, error) {
	var res struct {
		Budget money.Cents `json:"budget"`
	}
	body := map[string]money.Cents{"amount": amount}
	if err := c.do(ctx, http.MethodPut, path, body, &res); err != nil {
		return 0, err
	}
	return res.Budget, nil
}

func (c *Client) Expenses(ctx context.Context) ([]ledger.Expense, error) {
	var expenses []ledger.Expense
	err := c.do(ctx, http.MethodGet, "/expenses", nil, &expenses)
	return expenses, err
}

// NewExpense is what the client submits for a new ledger row.
type NewExpense struct {
	Date     string
	Item     string
	Amount   money.Cents
	Quantity string
	Mode     string
}

func (c *Client) AddExpense(ctx context.Context, in NewExpense) (*ledger.Expense, error) {
	body := ledger.Draft{
		Date:     in.Date,
		Item:     in.Item,
		Amount:   json.RawMessage(in.Amount.String()),
		Quantity: in.Quantity,
		Mode:     in.Mode,
	}

	var created ledger.Expense
	if err := c.do(ctx, http.MethodPost, "/expenses", body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/expenses/"+id.String(), nil, nil)
}

func (c *Client) ClearExpenses(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/expenses", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}
