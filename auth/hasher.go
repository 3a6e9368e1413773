package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	// Verify returns ErrBadPassword when the password does not match.
	Verify(ctx context.Context, hash, password string) error
}

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// BcryptHasher runs bcrypt with at most `workers` hashes in flight.
type BcryptHasher struct {
	cost    int
	limiter chan struct{}
}

// NewBcryptHasher creates a hasher. A non-positive worker count means one.
func NewBcryptHasher(cost, workers int) *BcryptHasher {
	if workers <= 0 {
		workers = 1
	}
	return &BcryptHasher{
		cost:    cost,
		limiter: make(chan struct{}, workers),
	}
}

func (h *BcryptHasher) Hash(ctx context.Context, password string) (string, error) {
	if err := h.acquire(ctx); err != nil {
		return "", err
	}
	defer h.release()

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", ErrPasswordTooLong
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

func (h *BcryptHasher) Verify(ctx context.Context, hash, password string) error {
	// bcrypt ignores bytes past the limit when comparing, and no stored hash
	// can come from an over-long password.
	if len(password) > MaxPasswordBytes {
		return ErrBadPassword
	}

	if err := h.acquire(ctx); err != nil {
		return err
	}
	defer h.release()

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrBadPassword
	}
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	return nil
}

func (h *BcryptHasher) acquire(ctx context.Context) error {
	select {
	case h.limiter <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *BcryptHasher) release() {
	<-h.limiter
}
