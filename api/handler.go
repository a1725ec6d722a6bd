// Package api exposes accounts, budgets and expenses as JSON over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/billbatista/expensebook/apperr"
	"github.com/billbatista/expensebook/ledger"
	"github.com/billbatista/expensebook/middleware"
	"github.com/billbatista/expensebook/money"
	"github.com/billbatista/expensebook/user"
)

const maxBodyBytes = 1 << 20

type AccountService interface {
	Register(ctx context.Context, name, email, password string) (*user.AuthResult, error)
	Authenticate(ctx context.Context, name, password string) (*user.AuthResult, error)
	Profile(ctx context.Context, id uuid.UUID) (user.Profile, error)
	SetBudget(ctx context.Context, id uuid.UUID, amount money.Cents) (money.Cents, error)
	AddToBudget(ctx context.Context, id uuid.UUID, amount money.Cents) (money.Cents, error)
}

type LedgerService interface {
	List(ctx context.Context, userID uuid.UUID) ([]ledger.Expense, error)
	Add(ctx context.Context, userID uuid.UUID, d ledger.Draft) (*ledger.Expense, error)
	Remove(ctx context.Context, userID, expenseID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) (int64, error)
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	accounts AccountService
	ledger   LedgerService
	db       Pinger
}

func NewHandler(accounts AccountService, ledger LedgerService, db Pinger) *Handler {
	return &Handler{accounts: accounts, ledger: ledger, db: db}
}

type credentials struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type amountRequest struct {
	Amount json.RawMessage `json:"amount"`
}

type budgetResponse struct {
	Budget money.Cents `json:"budget"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type clearResponse struct {
	Message string      `json:"message"`
	Removed int64       `json:"removed"`
	Budget  money.Cents `json:"budget"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "health check failed", "error", err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Write([]byte("ok"))
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if !decode(w, r, &body) {
		return
	}

	res, err := h.accounts.Register(r.Context(), body.Name, body.Email, body.Password)
	if err != nil {
		writeError(w, r, err, "register")
		return
	}

	slog.InfoContext(r.Context(), "user registered", "user_id", res.User.ID)
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if !decode(w, r, &body) {
		return
	}

	res, err := h.accounts.Authenticate(r.Context(), body.Name, body.Password)
	if err != nil {
		writeError(w, r, err, "login")
		return
	}

	slog.InfoContext(r.Context(), "user logged in", "user_id", res.User.ID)
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	profile, err := h.accounts.Profile(r.Context(), userID)
	if err != nil {
		writeError(w, r, err, "profile")
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) SetBudget(w http.ResponseWriter, r *http.Request) {
	h.changeBudget(w, r, "set budget", h.accounts.SetBudget)
}

func (h *Handler) AddToBudget(w http.ResponseWriter, r *http.Request) {
	h.changeBudget(w, r, "add to budget", h.accounts.AddToBudget)
}

type budgetFunc func(ctx context.Context, id uuid.UUID, amount money.Cents) (money.Cents, error)

func (h *Handler) changeBudget(w http.ResponseWriter, r *http.Request, op string, change budgetFunc) {
	userID, _ := middleware.GetUserID(r.Context())

	var body amountRequest
	if !decode(w, r, &body) {
		return
	}

	amount, err := money.FromJSON(body.Amount)
	if err != nil {
		writeError(w, r, apperr.Validation(err.Error()), op)
		return
	}

	total, err := change(r.Context(), userID, amount)
	if err != nil {
		writeError(w, r, err, op)
		return
	}

	writeJSON(w, http.StatusOK, budgetResponse{Budget: total})
}

func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	expenses, err := h.ledger.List(r.Context(), userID)
	if err != nil {
		writeError(w, r, err, "list expenses")
		return
	}

	writeJSON(w, http.StatusOK, expenses)
}

func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var draft ledger.Draft
	if !decode(w, r, &draft) {
		return
	}

	expense, err := h.ledger.Add(r.Context(), userID, draft)
	if err != nil {
		writeError(w, r, err, "create expense")
		return
	}

	writeJSON(w, http.StatusCreated, expense)
}

func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	// a malformed id can't belong to anyone, so it is just another unknown expense
	expenseID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, apperr.NotFound("expense not found"), "delete expense")
		return
	}

	if err := h.ledger.Remove(r.Context(), userID, expenseID); err != nil {
		writeError(w, r, err, "delete expense")
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "expense deleted"})
}

func (h *Handler) ClearExpenses(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	removed, err := h.ledger.Clear(r.Context(), userID)
	if err != nil {
		writeError(w, r, err, "clear expenses")
		return
	}

	slog.InfoContext(r.Context(), "ledger cleared", "user_id", userID, "removed", removed)
	writeJSON(w, http.StatusOK, clearResponse{Message: "all data cleared", Removed: removed, Budget: 0})
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid request payload")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError turns a service error into its status code. Anything without
// a known kind is logged and hidden behind a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error, op string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperr.ErrValidation), errors.Is(err, apperr.ErrConflict):
		status = http.StatusBadRequest
	case errors.Is(err, apperr.ErrAuth):
		status = http.StatusUnauthorized
	case errors.Is(err, apperr.ErrNotFound):
		status = http.StatusNotFound
	}

	msg := apperr.Message(err)
	if status == http.StatusInternalServerError || msg == "" {
		slog.ErrorContext(r.Context(), "failed to "+op, "error", err)
		status, msg = http.StatusInternalServerError, "internal server error"
	}

	middleware.WriteError(w, status, msg)
}
