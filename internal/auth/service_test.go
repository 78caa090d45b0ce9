package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// fakeStore is a minimal AccountStore for service tests. The package
// cannot use store/memory here without an import cycle.
type fakeStore struct {
	mu       sync.Mutex
	byEmail  map[string]*Account
	failWith error
	seq      int
}

func newFakeStore() *fakeStore {
	return &fakeStore{byEmail: make(map[string]*Account)}
}

func (f *fakeStore) Create(_ context.Context, account *Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	if _, ok := f.byEmail[account.Email]; ok {
		return ErrDuplicateEmail
	}
	f.seq++
	if account.ID == "" {
		account.ID = fmt.Sprintf("acct-%d", f.seq)
	}
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now
	stored := *account
	f.byEmail[account.Email] = &stored
	return nil
}

func (f *fakeStore) FindByEmail(_ context.Context, email string) (*Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	account, ok := f.byEmail[email]
	if !ok {
		return nil, ErrAccountNotFound
	}
	out := *account
	return &out, nil
}

func (f *fakeStore) FindByID(_ context.Context, id string) (*Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.byEmail {
		if account.ID == id {
			out := *account
			return &out, nil
		}
	}
	return nil, ErrAccountNotFound
}

func (f *fakeStore) List(_ context.Context) ([]*Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*Account, 0, len(f.byEmail))
	for _, account := range f.byEmail {
		stored := *account
		out = append(out, &stored)
	}
	return out, nil
}

func newTestService(t *testing.T, store AccountStore) *Service {
	t.Helper()
	tokens := newTestTokenService(t)
	svc, err := NewService(store, tokens, WithPasswordCost(bcrypt.MinCost))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestRegisterDefaultsToEmployee(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store)

	session, err := svc.Register(context.Background(), RegisterInput{
		Name:     "  Jane Doe ",
		Email:    " Jane@Example.COM ",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if session.Account.Role != RoleEmployee {
		t.Fatalf("role = %q, want employee", session.Account.Role)
	}
	if session.Account.Email != "jane@example.com" {
		t.Fatalf("email = %q, want normalized jane@example.com", session.Account.Email)
	}
	if session.Account.Name != "Jane Doe" {
		t.Fatalf("name = %q, want trimmed", session.Account.Name)
	}
	if session.Account.PasswordHash != "" {
		t.Fatal("session account must not expose the password hash")
	}
	if session.Token == "" || !session.ExpiresAt.After(time.Now()) {
		t.Fatal("expected a live token in the session")
	}

	stored, err := store.FindByEmail(context.Background(), "jane@example.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if stored.PasswordHash == "" || stored.PasswordHash == "secret123" {
		t.Fatal("stored credential must be a hash, not the plaintext")
	}
	if err := VerifyPassword(stored.PasswordHash, "secret123"); err != nil {
		t.Fatalf("stored hash should verify against the password: %v", err)
	}
}

func TestRegisterTokenMatchesAccount(t *testing.T) {
	svc := newTestService(t, newFakeStore())

	session, err := svc.Register(context.Background(), RegisterInput{
		Email:    "admin@example.com",
		Password: "secret123",
		Role:     "admin",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	claims, err := svc.tokens.Verify(session.Token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.AccountID() != session.Account.ID {
		t.Fatalf("token subject = %q, want %q", claims.AccountID(), session.Account.ID)
	}
	if claims.Role != RoleAdmin {
		t.Fatalf("token role = %q, want admin", claims.Role)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService(t, newFakeStore())
	ctx := context.Background()

	in := RegisterInput{Email: "jane@example.com", Password: "secret123"}
	if _, err := svc.Register(ctx, in); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	// Same address with different case still collides.
	in.Email = "JANE@example.com"
	if _, err := svc.Register(ctx, in); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("err = %v, want ErrDuplicateEmail", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t, newFakeStore())
	ctx := context.Background()

	cases := []struct {
		name  string
		in    RegisterInput
		field string
	}{
		{"missing email", RegisterInput{Password: "secret123"}, "email"},
		{"email without at sign", RegisterInput{Email: "janeexample.com", Password: "secret123"}, "email"},
		{"missing password", RegisterInput{Email: "jane@example.com"}, "password"},
		{"short password", RegisterInput{Email: "jane@example.com", Password: "short"}, "password"},
		{"unknown role", RegisterInput{Email: "jane@example.com", Password: "secret123", Role: "superuser"}, "role"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.in)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want *ValidationError", err)
			}
			if verr.Field != tc.field {
				t.Fatalf("field = %q, want %q", verr.Field, tc.field)
			}
		})
	}
}

func TestLoginSuccess(t *testing.T) {
	svc := newTestService(t, newFakeStore())
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Email: "jane@example.com", Password: "secret123"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	session, err := svc.Login(ctx, Credentials{Email: "Jane@Example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if session.Account.Email != "jane@example.com" {
		t.Fatalf("email = %q", session.Account.Email)
	}
	if session.Account.PasswordHash != "" {
		t.Fatal("login result must not expose the password hash")
	}
	if _, err := svc.tokens.Verify(session.Token); err != nil {
		t.Fatalf("issued token should verify: %v", err)
	}
}

func TestLoginUniformFailure(t *testing.T) {
	svc := newTestService(t, newFakeStore())
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Email: "jane@example.com", Password: "secret123"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	// Wrong password and unknown account are indistinguishable.
	_, wrongPass := svc.Login(ctx, Credentials{Email: "jane@example.com", Password: "wrong-pass"})
	_, unknown := svc.Login(ctx, Credentials{Email: "nobody@example.com", Password: "secret123"})
	if !errors.Is(wrongPass, ErrInvalidCredentials) {
		t.Fatalf("wrong password err = %v, want ErrInvalidCredentials", wrongPass)
	}
	if !errors.Is(unknown, ErrInvalidCredentials) {
		t.Fatalf("unknown account err = %v, want ErrInvalidCredentials", unknown)
	}
}

func TestLoginValidatesInput(t *testing.T) {
	svc := newTestService(t, newFakeStore())
	ctx := context.Background()

	var verr *ValidationError
	if _, err := svc.Login(ctx, Credentials{Password: "secret123"}); !errors.As(err, &verr) {
		t.Fatalf("missing email err = %v, want *ValidationError", err)
	}
	if _, err := svc.Login(ctx, Credentials{Email: "jane@example.com"}); !errors.As(err, &verr) {
		t.Fatalf("missing password err = %v, want *ValidationError", err)
	}
}

func TestServicePropagatesStoreFailure(t *testing.T) {
	store := newFakeStore()
	store.failWith = fmt.Errorf("%w: connection refused", ErrStoreUnavailable)
	svc := newTestService(t, store)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Email: "jane@example.com", Password: "secret123"}); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("Register err = %v, want ErrStoreUnavailable", err)
	}
	if _, err := svc.Login(ctx, Credentials{Email: "jane@example.com", Password: "secret123"}); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("Login err = %v, want ErrStoreUnavailable", err)
	}
}

func TestAccountLookup(t *testing.T) {
	svc := newTestService(t, newFakeStore())
	ctx := context.Background()

	session, err := svc.Register(ctx, RegisterInput{Email: "jane@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	account, err := svc.Account(ctx, session.Account.ID)
	if err != nil {
		t.Fatalf("Account: %v", err)
	}
	if account.Email != "jane@example.com" || account.PasswordHash != "" {
		t.Fatalf("unexpected account %+v", account)
	}

	if _, err := svc.Account(ctx, "missing"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("err = %v, want ErrAccountNotFound", err)
	}
}

func TestAccountsSanitized(t *testing.T) {
	svc := newTestService(t, newFakeStore())
	ctx := context.Background()

	for _, email := range []string{"a@example.com", "b@example.com"} {
		if _, err := svc.Register(ctx, RegisterInput{Email: email, Password: "secret123"}); err != nil {
			t.Fatalf("Register %s: %v", email, err)
		}
	}
	accounts, err := svc.Accounts(ctx)
	if err != nil {
		t.Fatalf("Accounts: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("len = %d, want 2", len(accounts))
	}
	for _, account := range accounts {
		if account.PasswordHash != "" {
			t.Fatalf("account %s leaks its hash", account.Email)
		}
	}
}
