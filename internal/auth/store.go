package auth

import "context"

// AccountStore is the persistence boundary for account records. The
// backing store owns the uniqueness constraint on email: concurrent
// Create calls with the same email must yield exactly one success, the
// rest failing with ErrDuplicateEmail.
type AccountStore interface {
	// Create persists a new account, assigning ID and timestamps when
	// the store generates them. A colliding email is rejected with
	// ErrDuplicateEmail, never merged or overwritten.
	Create(ctx context.Context, account *Account) error
	// FindByEmail returns the account for a normalized email, or
	// ErrAccountNotFound.
	FindByEmail(ctx context.Context, email string) (*Account, error)
	// FindByID returns the account for an id, or ErrAccountNotFound.
	FindByID(ctx context.Context, id string) (*Account, error)
	// List returns all accounts in creation order.
	List(ctx context.Context) ([]*Account, error)
}
