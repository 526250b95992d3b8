package allowlist

import (
	"context"
	"errors"

	contractserrors "hopper/internal/contracts/errors"
	apperrors "hopper/pkg/errors"
	"hopper/pkg/model"
)

// UserDirectory resolves the user behind a reservation request.
type UserDirectory interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// UserPolicy authorizes booking users: the account must exist, be active,
// and its email must pass the allowlist.
type UserPolicy struct {
	users UserDirectory
	svc   *Service
}

func NewUserPolicy(users UserDirectory, svc *Service) *UserPolicy {
	return &UserPolicy{users: users, svc: svc}
}

func (p *UserPolicy) AuthorizeUser(ctx context.Context, userID string) error {
	user, err := p.users.FindByID(ctx, userID)
	if err != nil {
		switch {
		case errors.Is(err, contractserrors.ErrUserNotFound):
			return apperrors.NotFoundWithID("User", userID)
		case errors.Is(err, contractserrors.ErrInvalidID):
			return apperrors.InvalidInput("Invalid user ID format")
		default:
			return apperrors.Internal("Failed to resolve booking user", err)
		}
	}

	if user.Status != model.UserStatusActive {
		return apperrors.Forbidden("User account is inactive")
	}
	if !p.svc.IsAuthorized(ctx, user.Email) {
		return apperrors.Forbidden("Email is not authorized to book")
	}
	return nil
}
