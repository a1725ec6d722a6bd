package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/billbatista/expensebook/apperr"
	"github.com/billbatista/expensebook/money"
	"github.com/billbatista/expensebook/session"
)

const (
	minNameLength     = 3
	minPasswordLength = 6
)

const (
	msgBadCredentials = "invalid name or password"
	msgBudgetTooLarge = "budget is too large"
)

type TokenIssuer interface {
	Create(userID uuid.UUID) (*session.Session, error)
}

// AuthResult is returned by a successful register or login.
type AuthResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      Profile   `json:"user"`
}

type Service struct {
	repo       Repository
	tokens     TokenIssuer
	bcryptCost int

	// compared against on unknown names so they cost as much as a wrong password
	dummyHash []byte
}

func NewService(repo Repository, tokens TokenIssuer, bcryptCost int) (*Service, error) {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}

	dummyHash, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing dummy password: %w", err)
	}

	return &Service{
		repo:       repo,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		dummyHash:  dummyHash,
	}, nil
}

func (s *Service) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" || email == "" || password == "" {
		return nil, apperr.Validation("name, email and password are required")
	}
	if utf8.RuneCountInString(name) < minNameLength {
		return nil, apperr.Validation(fmt.Sprintf("name must be at least %d characters", minNameLength))
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, apperr.Validation("invalid email format")
	}
	if len(password) < minPasswordLength {
		return nil, apperr.Validation(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("email already registered")
	}

	existing, err = s.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("name already taken")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, apperr.Conflict("name or email already taken")
		}
		return nil, err
	}

	return s.issue(u)
}

func (s *Service) Authenticate(ctx context.Context, name, password string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	if name == "" || password == "" {
		return nil, apperr.Validation("name and password are required")
	}

	u, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if u == nil {
		bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, apperr.Auth(msgBadCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Auth(msgBadCredentials)
	}

	return s.issue(u)
}

// Exists reports whether the account behind a verified token is still there.
func (s *Service) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return u != nil, nil
}

func (s *Service) Profile(ctx context.Context, id uuid.UUID) (Profile, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	if u == nil {
		return Profile{}, apperr.Auth("unauthenticated")
	}
	return u.Profile(), nil
}

func (s *Service) SetBudget(ctx context.Context, id uuid.UUID, amount money.Cents) (money.Cents, error) {
	if amount < 0 {
		return 0, apperr.Validation("budget can't be negative")
	}
	if amount >= money.MaxCents {
		return 0, apperr.Validation(msgBudgetTooLarge)
	}

	total, err := s.repo.SetBudget(ctx, id, amount)
	return total, s.budgetErr(err)
}

func (s *Service) AddToBudget(ctx context.Context, id uuid.UUID, amount money.Cents) (money.Cents, error) {
	if amount <= 0 {
		return 0, apperr.Validation("amount must be positive")
	}
	if amount >= money.MaxCents {
		return 0, apperr.Validation(msgBudgetTooLarge)
	}

	total, err := s.repo.AddBudget(ctx, id, amount)
	return total, s.budgetErr(err)
}

func (s *Service) budgetErr(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return apperr.Auth("unauthenticated")
	case errors.Is(err, ErrBudgetLimit):
		return apperr.Validation(msgBudgetTooLarge)
	}
	return err
}

func (s *Service) issue(u *User) (*AuthResult, error) {
	sess, err := s.tokens.Create(u.ID)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	return &AuthResult{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
		User:      u.Profile(),
	}, nil
}
