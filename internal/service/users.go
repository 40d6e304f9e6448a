package service

import (
	"context"
	"fmt"

	"github.com/grantlemons/expenser/internal/errs"
	"github.com/grantlemons/expenser/internal/model"
	"github.com/grantlemons/expenser/internal/repository"
)

// UserService manages the caller's own account. Every method takes the
// authenticated actor and refuses to touch any other user.
type UserService struct {
	users repository.UserRepository
}

// NewUserService constructs a UserService.
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

func self(actor, id int64) error {
	if actor != id {
		return errs.ErrForbidden
	}
	return nil
}

// Get returns the public view of the user.
func (s *UserService) Get(ctx context.Context, actor, id int64) (model.UserInfo, error) {
	if err := self(actor, id); err != nil {
		return model.UserInfo{}, err
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return model.UserInfo{}, err
	}
	return u.Info(), nil
}

// UpdateProfile changes username and email, keeping password and picture.
func (s *UserService) UpdateProfile(ctx context.Context, actor, id int64, username, email string) (model.UserInfo, error) {
	if err := self(actor, id); err != nil {
		return model.UserInfo{}, err
	}
	if username == "" || email == "" {
		return model.UserInfo{}, fmt.Errorf("%w: empty username/email", errs.ErrInvalid)
	}
	cur, err := s.users.GetByID(ctx, id)
	if err != nil {
		return model.UserInfo{}, err
	}
	b := model.NewUserBuilder().Username(username).Email(email).PasswordHash(cur.PasswordHash)
	if cur.ProfilePicture != nil {
		b.ProfilePicture(cur.ProfilePicture)
	}
	nu, err := b.Build()
	if err != nil {
		return model.UserInfo{}, err
	}
	u, err := s.users.Replace(ctx, id, nu)
	if err != nil {
		return model.UserInfo{}, err
	}
	return u.Info(), nil
}

// ProfilePicture returns the raw picture; errs.ErrNotFound if none is set.
func (s *UserService) ProfilePicture(ctx context.Context, actor, id int64) ([]byte, error) {
	if err := self(actor, id); err != nil {
		return nil, err
	}
	pic, err := s.users.GetProfilePicture(ctx, id)
	if err != nil {
		return nil, err
	}
	if pic == nil {
		return nil, fmt.Errorf("%w: no profile picture", errs.ErrNotFound)
	}
	return pic, nil
}

// SetProfilePicture replaces the picture; an empty body clears it.
func (s *UserService) SetProfilePicture(ctx context.Context, actor, id int64, pic []byte) error {
	if err := self(actor, id); err != nil {
		return err
	}
	if len(pic) == 0 {
		pic = nil
	}
	_, err := s.users.UpdateProfilePicture(ctx, id, pic)
	return err
}

// Delete removes the account. Owners of reports get errs.ErrConstraint.
func (s *UserService) Delete(ctx context.Context, actor, id int64) (model.UserInfo, error) {
	if err := self(actor, id); err != nil {
		return model.UserInfo{}, err
	}
	u, err := s.users.Delete(ctx, id)
	if err != nil {
		return model.UserInfo{}, err
	}
	return u.Info(), nil
}
