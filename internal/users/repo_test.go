package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pepdine/pep-backend/pkg/db"
	"github.com/pepdine/pep-backend/pkg/db/dbtest"
	"github.com/pepdine/pep-backend/pkg/db/models"
	"github.com/pepdine/pep-backend/pkg/enums"
	pkgerrors "github.com/pepdine/pep-backend/pkg/errors"
	"github.com/pepdine/pep-backend/pkg/pagination"
)

func TestCreateAndFindByEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.Open(t))

	created, err := repo.Create(ctx, CreateUserDTO{Email: "kiran@example.com", PasswordHash: "hash", Name: "Kiran"})
	require.NoError(t, err)
	assert.Equal(t, enums.UserRoleCustomer, created.Role)
	assert.True(t, created.IsActive)

	found, err := repo.FindByEmail(ctx, "KIRAN@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = repo.Create(ctx, CreateUserDTO{Email: "kiran@example.com", PasswordHash: "hash", Name: "Other"})
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err, "ux_users_email"))

	now := time.Now().UTC()
	require.NoError(t, repo.UpdateLastLogin(ctx, created.ID, now))
	reloaded, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.LastLoginAt)
}

func TestEnsureGuestIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.Open(t))

	first, err := repo.EnsureGuest(ctx, "sess-abc-123")
	require.NoError(t, err)
	assert.True(t, first.IsGuest)
	assert.Equal(t, enums.UserRoleGuest, first.Role)
	assert.Nil(t, first.Email)

	second, err := repo.EnsureGuest(ctx, "sess-abc-123")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	other, err := repo.EnsureGuest(ctx, "sess-xyz-789")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestServiceListSkipsGuestsAndPages(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	svc, err := NewService(repo)
	require.NoError(t, err)

	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	for i, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		user := CreateUserDTO{Email: email, PasswordHash: "hash", Name: email}.ToModel()
		user.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, conn.Create(user).Error)
	}
	_, err = repo.EnsureGuest(ctx, "sess-guest-0001")
	require.NoError(t, err)

	first, err := svc.List(ctx, nil, false, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Users, 2)
	assert.Equal(t, "c@example.com", *first.Users[0].Email)
	require.NotEmpty(t, first.NextCursor)

	second, err := svc.List(ctx, nil, false, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Users, 1)
	assert.Equal(t, "a@example.com", *second.Users[0].Email)

	guests := enums.UserRoleGuest
	withGuests, err := svc.List(ctx, &guests, true, pagination.Params{})
	require.NoError(t, err)
	assert.Len(t, withGuests.Users, 1)

	bad := enums.UserRole("root")
	_, err = svc.List(ctx, &bad, false, pagination.Params{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Get(ctx, first.Users[0].ID)
	require.NoError(t, err)

	var count int64
	require.NoError(t, conn.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 4, count)
}
