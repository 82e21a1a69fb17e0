package availability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spacebook/internal/domain"
	"spacebook/internal/pkg/apperror"
	"spacebook/internal/pkg/interval"
	"spacebook/internal/policy"
	"spacebook/internal/repository"
	"spacebook/internal/testutil"
)

func setupService(t *testing.T) (*Service, *repository.GormStore, *testutil.Fixture) {
	t.Helper()
	store := testutil.NewStore(t)
	f := testutil.Seed(t, store)
	return NewService(store, policy.New(), nil, 0, nil), store, f
}

func subject(u *domain.User) policy.Subject {
	return policy.Subject{UserID: u.ID, Role: u.Role}
}

func TestCreateAndList(t *testing.T) {
	svc, _, f := setupService(t)
	ctx := context.Background()

	b, err := svc.Create(ctx, subject(f.Manager), CreateBlockRequest{SpaceID: f.Space.ID, Date: "2024-01-20", StartTime: "09:00", EndTime: "18:00"})
	require.NoError(t, err)
	assert.True(t, b.IsAvailable)
	assert.Equal(t, f.Manager.ID, b.CreatedBy)

	blocks, err := svc.List(ctx, f.Space.ID, "2024-01-20")
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, "09:00", blocks[0].StartTime)
}

func TestCreateDuplicateIsConflict(t *testing.T) {
	svc, _, f := setupService(t)
	ctx := context.Background()
	req := CreateBlockRequest{SpaceID: f.Space.ID, Date: "2024-01-20", StartTime: "09:00", EndTime: "18:00"}

	_, err := svc.Create(ctx, subject(f.Manager), req)
	require.NoError(t, err)
	_, err = svc.Create(ctx, subject(f.Admin), req)
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
}

func TestCreateStoresCanonicalForm(t *testing.T) {
	svc, _, f := setupService(t)
	ctx := context.Background()

	b, err := svc.Create(ctx, subject(f.Manager), CreateBlockRequest{SpaceID: f.Space.ID, Date: " 2024-01-20", StartTime: " 00:00", EndTime: "23:59 "})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-20", b.Date)
	assert.Equal(t, "00:00", b.StartTime)
	assert.Equal(t, "23:59", b.EndTime)

	_, err = svc.Create(ctx, subject(f.Manager), CreateBlockRequest{SpaceID: f.Space.ID, Date: "2024-01-20", StartTime: "00:00", EndTime: "23:59"})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	blocks, err := svc.List(ctx, f.Space.ID, "2024-01-20 ")
	require.NoError(t, err)
	assert.Len(t, blocks, 1)
}

func TestCreateRequiresManagerOfSpace(t *testing.T) {
	svc, _, f := setupService(t)
	req := CreateBlockRequest{SpaceID: f.Space.ID, Date: "2024-01-20", StartTime: "09:00", EndTime: "18:00"}

	_, err := svc.Create(context.Background(), subject(f.Other), req)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

	_, err = svc.Create(context.Background(), subject(f.User), req)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
}

func TestCreateValidation(t *testing.T) {
	svc, _, f := setupService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, subject(f.Manager), CreateBlockRequest{SpaceID: f.Space.ID, Date: "2024-01-20", StartTime: "10:00", EndTime: "10:00"})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = svc.Create(ctx, subject(f.Manager), CreateBlockRequest{SpaceID: 999, Date: "2024-01-20", StartTime: "09:00", EndTime: "10:00"})
	assert.ErrorIs(t, err, ErrSpaceNotFound)
}

func TestListUnknownSpaceAndBadParams(t *testing.T) {
	svc, _, _ := setupService(t)

	_, err := svc.List(context.Background(), 999, "2024-01-20")
	assert.ErrorIs(t, err, ErrSpaceNotFound)

	_, err = svc.List(context.Background(), 1, "tomorrow")
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestUpdateAndDelete(t *testing.T) {
	svc, _, f := setupService(t)
	ctx := context.Background()

	b, err := svc.Create(ctx, subject(f.Manager), CreateBlockRequest{SpaceID: f.Space.ID, Date: "2024-01-20", StartTime: "09:00", EndTime: "18:00"})
	require.NoError(t, err)

	closed := false
	end := "12:00"
	updated, err := svc.Update(ctx, subject(f.Manager), b.ID, UpdateBlockRequest{EndTime: &end, IsAvailable: &closed})
	require.NoError(t, err)
	assert.Equal(t, "12:00", updated.EndTime)
	assert.False(t, updated.IsAvailable)

	require.NoError(t, svc.Delete(ctx, subject(f.Admin), b.ID))
	assert.ErrorIs(t, svc.Delete(ctx, subject(f.Admin), b.ID), ErrBlockNotFound)
}

func TestHasAvailableOverlap(t *testing.T) {
	_, store, f := setupService(t)
	ctx := context.Background()
	testutil.Block(t, store, f.Space.ID, "2024-01-20", "09:00", "12:00", true)
	testutil.Block(t, store, f.Space.ID, "2024-01-20", "14:00", "18:00", false)

	check := func(start, end string) bool {
		iv, err := interval.Parse(start, end)
		require.NoError(t, err)
		ok, err := HasAvailableOverlap(ctx, store.Repos(), f.Space.ID, "2024-01-20", iv)
		require.NoError(t, err)
		return ok
	}

	assert.True(t, check("10:00", "11:00"))
	// Partial overlap with one open block is accepted.
	assert.True(t, check("11:00", "13:00"))
	assert.False(t, check("12:00", "13:00"))
	assert.False(t, check("14:00", "15:00"))
}
