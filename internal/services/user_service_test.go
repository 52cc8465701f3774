package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andrelmts/taskhive/internal/database/testutil"
	apperrors "github.com/andrelmts/taskhive/pkg/errors"
)

func TestUserServiceRegister(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewUserService(db)
	require.NoError(t, err)

	user, err := svc.Register(context.Background(), RegisterUserInput{
		Email:    "  Casey@Example.com ",
		Name:     "Casey",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	require.Equal(t, "casey@example.com", user.Email)
	require.NotEqual(t, "correct-horse", user.Password)

	_, err = svc.Register(context.Background(), RegisterUserInput{
		Email:    "casey@example.com",
		Name:     "Casey Again",
		Password: "another-pass",
	})
	require.ErrorIs(t, err, ErrUserEmailTaken)

	_, err = svc.Register(context.Background(), RegisterUserInput{
		Email:    "short@example.com",
		Name:     "Short",
		Password: "tiny",
	})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestUserServiceAuthenticate(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewUserService(db)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterUserInput{
		Email:    "casey@example.com",
		Name:     "Casey",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	user, err := svc.Authenticate(context.Background(), "casey@example.com", "correct-horse")
	require.NoError(t, err)
	require.Equal(t, "Casey", user.Name)

	// Wrong password and unknown email are indistinguishable.
	_, err = svc.Authenticate(context.Background(), "casey@example.com", "wrong")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	_, err = svc.Authenticate(context.Background(), "nobody@example.com", "correct-horse")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestUserServiceLookups(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewUserService(db)
	require.NoError(t, err)

	created, err := svc.Register(context.Background(), RegisterUserInput{
		Email:    "casey@example.com",
		Name:     "Casey",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	byID, err := svc.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, created.Email, byID.Email)

	byEmail, err := svc.GetByEmail(context.Background(), "Casey@Example.com")
	require.NoError(t, err)
	require.Equal(t, created.ID, byEmail.ID)

	_, err = svc.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
