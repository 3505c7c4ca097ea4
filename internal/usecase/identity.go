package usecase

import (
	"context"
	"time"

	"shramik-backend/internal/model"
)

// Identity is the authenticated caller, taken from the bearer token.
type Identity struct {
	UserID        uint
	Role          model.Role
	Email         string
	EmailVerified bool
}

func (i *Identity) authenticated() error {
	if i == nil || i.UserID == 0 {
		return ErrUnauthenticated
	}
	return nil
}

// verified rejects anonymous and unverified callers.
func (i *Identity) verified() error {
	if err := i.authenticated(); err != nil {
		return err
	}
	if !i.EmailVerified {
		return ErrUnverified
	}
	return nil
}

func (i *Identity) is(role model.Role) error {
	if i.Role != role {
		return ErrWrongRole
	}
	return nil
}

// withTimeout bounds a store or gateway call; a zero timeout leaves ctx untouched.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
