package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// DefaultMinPasswordLength applies when no minimum is configured.
const DefaultMinPasswordLength = 8

// Service implements the registration and authentication flows on top of
// an AccountStore and a TokenService. It holds no mutable state of its
// own; every call is an independent unit of work.
type Service struct {
	accounts       AccountStore
	tokens         *TokenService
	minPasswordLen int
	passwordCost   int
}

// Option configures Service behavior.
type Option func(*Service) error

// WithMinPasswordLength sets the minimum accepted password length.
func WithMinPasswordLength(n int) Option {
	return func(s *Service) error {
		if n <= 0 {
			return errors.New("auth: minimum password length must be positive")
		}
		s.minPasswordLen = n
		return nil
	}
}

// WithPasswordCost overrides the bcrypt cost used for new credentials.
func WithPasswordCost(cost int) Option {
	return func(s *Service) error {
		if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
			return fmt.Errorf("auth: bcrypt cost %d out of range", cost)
		}
		s.passwordCost = cost
		return nil
	}
}

// NewService constructs a Service with optional configuration.
func NewService(accounts AccountStore, tokens *TokenService, opts ...Option) (*Service, error) {
	if accounts == nil {
		return nil, errors.New("auth: account store is required")
	}
	if tokens == nil {
		return nil, errors.New("auth: token service is required")
	}
	s := &Service{
		accounts:       accounts,
		tokens:         tokens,
		minPasswordLen: DefaultMinPasswordLength,
		passwordCost:   bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// RegisterInput carries the signup request fields. Name and Role are
// optional; Role defaults to employee.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// Credentials carries a login attempt.
type Credentials struct {
	Email    string
	Password string
}

// Session is the result of a successful registration or login: the
// account (credential secret cleared) plus a freshly issued bearer token.
type Session struct {
	Account   Account
	Token     string
	ExpiresAt time.Time
}

// Register validates input, enforces email uniqueness, hashes the
// password and creates the account record. One durable record is created
// on success.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Session, error) {
	email := NormalizeEmail(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return Session{}, invalidField("email", "a valid email is required")
	}
	if in.Password == "" {
		return Session{}, invalidField("password", "password is required")
	}
	if len(in.Password) < s.minPasswordLen {
		return Session{}, invalidField("password",
			fmt.Sprintf("password must be at least %d characters", s.minPasswordLen))
	}
	role, err := ParseRole(in.Role)
	if err != nil {
		return Session{}, err
	}

	// Cheap duplicate check before the expensive hash. The store's
	// unique index remains the authoritative guard against races.
	if _, err := s.accounts.FindByEmail(ctx, email); err == nil {
		return Session{}, ErrDuplicateEmail
	} else if !errors.Is(err, ErrAccountNotFound) {
		return Session{}, err
	}

	hash, err := HashPasswordCost(in.Password, s.passwordCost)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}

	account := &Account{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return Session{}, err
	}
	return s.session(*account)
}

// Login verifies credentials and issues a token on success. It is
// read-only against the store. A missing account and a password mismatch
// return the same error.
func (s *Service) Login(ctx context.Context, creds Credentials) (Session, error) {
	email := NormalizeEmail(creds.Email)
	if email == "" {
		return Session{}, invalidField("email", "email is required")
	}
	if creds.Password == "" {
		return Session{}, invalidField("password", "password is required")
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}
	if err := VerifyPassword(account.PasswordHash, creds.Password); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	return s.session(*account)
}

// Account returns the sanitized account for a verified token subject.
func (s *Service) Account(ctx context.Context, id string) (Account, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Account{}, invalidField("id", "account id is required")
	}
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return Account{}, err
	}
	return account.Sanitized(), nil
}

// Accounts lists all sanitized accounts in creation order.
func (s *Service) Accounts(ctx context.Context) ([]Account, error) {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Account, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a.Sanitized())
	}
	return out, nil
}

func (s *Service) session(account Account) (Session, error) {
	token, expiresAt, err := s.tokens.Issue(account.ID, account.Role)
	if err != nil {
		return Session{}, err
	}
	return Session{
		Account:   account.Sanitized(),
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}
