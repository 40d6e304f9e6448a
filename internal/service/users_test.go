package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/grantlemons/expenser/internal/errs"
	"github.com/grantlemons/expenser/internal/model"
	"github.com/grantlemons/expenser/internal/repository/repotest"
)

func TestUsers_SelfOnly(t *testing.T) {
	st := repotest.New()
	svc := NewUserService(st.Users())
	auth := NewAuthService(st.Users(), plainHasher{}, []byte("k"), 0, nil)
	ctx := context.Background()

	ann, err := auth.Register(ctx, Registration{Username: "ann", Email: "ann@x.io", Password: "p"})
	require.NoError(t, err)
	bob, err := auth.Register(ctx, Registration{Username: "bob", Email: "bob@x.io", Password: "p"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, bob.ID, ann.ID)
	require.ErrorIs(t, err, errs.ErrForbidden)
	require.ErrorIs(t, svc.SetProfilePicture(ctx, bob.ID, ann.ID, []byte{1}), errs.ErrForbidden)
	_, err = svc.Delete(ctx, bob.ID, ann.ID)
	require.ErrorIs(t, err, errs.ErrForbidden)

	got, err := svc.Get(ctx, ann.ID, ann.ID)
	require.NoError(t, err)
	require.Equal(t, ann, got)
}

func TestUsers_ProfileAndPicture(t *testing.T) {
	st := repotest.New()
	svc := NewUserService(st.Users())
	auth := NewAuthService(st.Users(), plainHasher{}, []byte("k"), 0, nil)
	ctx := context.Background()

	ann, err := auth.Register(ctx, Registration{Username: "ann", Email: "ann@x.io", Password: "p"})
	require.NoError(t, err)
	_, err = auth.Register(ctx, Registration{Username: "bob", Email: "bob@x.io", Password: "p"})
	require.NoError(t, err)

	_, err = svc.ProfilePicture(ctx, ann.ID, ann.ID)
	require.ErrorIs(t, err, errs.ErrNotFound)

	require.NoError(t, svc.SetProfilePicture(ctx, ann.ID, ann.ID, []byte("png")))
	pic, err := svc.ProfilePicture(ctx, ann.ID, ann.ID)
	require.NoError(t, err)
	require.Equal(t, []byte("png"), pic)

	info, err := svc.UpdateProfile(ctx, ann.ID, ann.ID, "anna", "anna@x.io")
	require.NoError(t, err)
	require.Equal(t, model.UserInfo{ID: ann.ID, Username: "anna", Email: "anna@x.io"}, info)

	// password and picture survive the profile update
	_, _, err = auth.LoginWithIP(ctx, "anna", "p", "")
	require.NoError(t, err)
	pic, err = svc.ProfilePicture(ctx, ann.ID, ann.ID)
	require.NoError(t, err)
	require.Equal(t, []byte("png"), pic)

	_, err = svc.UpdateProfile(ctx, ann.ID, ann.ID, "bob", "x@x.io")
	require.ErrorIs(t, err, errs.ErrAlreadyExists)
	_, err = svc.UpdateProfile(ctx, ann.ID, ann.ID, "", "x@x.io")
	require.ErrorIs(t, err, errs.ErrInvalid)

	require.NoError(t, svc.SetProfilePicture(ctx, ann.ID, ann.ID, nil))
	_, err = svc.ProfilePicture(ctx, ann.ID, ann.ID)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUsers_DeleteOwnerIsRestricted(t *testing.T) {
	st := repotest.New()
	svc := NewUserService(st.Users())
	ctx := context.Background()

	ann, err := st.Users().Insert(ctx, model.NewUser{Username: "ann", Email: "ann@x.io", PasswordHash: "h"})
	require.NoError(t, err)
	rp, err := st.Reports().Insert(ctx, model.NewReport{OwnerID: ann.ID, Title: "Trip"})
	require.NoError(t, err)

	_, err = svc.Delete(ctx, ann.ID, ann.ID)
	require.ErrorIs(t, err, errs.ErrConstraint)

	_, err = st.Reports().Delete(ctx, rp.ID)
	require.NoError(t, err)
	info, err := svc.Delete(ctx, ann.ID, ann.ID)
	require.NoError(t, err)
	require.Equal(t, "ann", info.Username)
}
