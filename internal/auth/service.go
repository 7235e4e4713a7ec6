package auth

import (
	"context"
	"errors"

	"github.com/iliyamo/job-application-tracker/internal/model"
	"github.com/iliyamo/job-application-tracker/internal/repository"
)

// UserStore is the subset of the user repository the login service needs.
// *repository.UserRepo satisfies it; tests substitute an in-memory fake.
type UserStore interface {
	GetByExternalID(ctx context.Context, externalID string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	Insert(ctx context.Context, u *model.User) error
	UpdateOnLogin(ctx context.Context, id uint64, name, accessToken string) error
}

// LoginService maps a federated profile onto a local user record.
type LoginService struct {
	Users UserStore
}

func NewLoginService(users UserStore) *LoginService {
	return &LoginService{Users: users}
}

// Upsert performs the create-or-update step after a successful federation
// pass. A first-time external id inserts a new user. A returning user gets
// the display name replaced unconditionally, while the delegated access
// token is only replaced when this pass produced a non-empty one; a stored
// token is never overwritten with an empty value. Email is written once at
// insert and never refreshed. The returned user reflects the stored state.
func (s *LoginService) Upsert(ctx context.Context, p Profile) (*model.User, error) {
	u, err := s.Users.GetByExternalID(ctx, p.ExternalID)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, err
		}
		u = &model.User{
			ExternalID:  p.ExternalID,
			Name:        p.Name,
			Email:       p.Email,
			AccessToken: p.AccessToken,
		}
		if err := s.Users.Insert(ctx, u); err != nil {
			return nil, err
		}
		return u, nil
	}

	if err := s.Users.UpdateOnLogin(ctx, u.ID, p.Name, p.AccessToken); err != nil {
		return nil, err
	}
	u.Name = p.Name
	if p.AccessToken != "" {
		u.AccessToken = p.AccessToken
	}
	return u, nil
}
