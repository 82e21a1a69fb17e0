package catalog

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spacebook/internal/domain"
	"spacebook/internal/testutil"
)

func TestListSpacesSkipsInactive(t *testing.T) {
	store := testutil.NewStore(t)
	f := testutil.Seed(t, store)
	ctx := context.Background()

	closed := &domain.Space{LocationID: f.Location.ID, Name: "Closed", Capacity: 1, HourlyRate: decimal.NewFromInt(10), IsActive: false}
	require.NoError(t, store.Repos().Spaces.Create(ctx, closed))

	svc := NewService(store.Repos().Spaces)
	loc, spaces, err := svc.ListSpaces(ctx, f.Location.ID)
	require.NoError(t, err)
	assert.Equal(t, "Downtown", loc.Name)
	require.Len(t, spaces, 1)
	assert.Equal(t, f.Space.ID, spaces[0].ID)

	_, _, err = svc.ListSpaces(ctx, 9999)
	assert.ErrorIs(t, err, ErrLocationNotFound)
}

func TestGetSpace(t *testing.T) {
	store := testutil.NewStore(t)
	f := testutil.Seed(t, store)
	svc := NewService(store.Repos().Spaces)

	sp, err := svc.GetSpace(context.Background(), f.Space.ID)
	require.NoError(t, err)
	assert.True(t, sp.HourlyRate.Equal(decimal.RequireFromString("41.33")))
	require.NotNil(t, sp.Location)
	assert.Equal(t, f.Manager.ID, sp.Location.ManagerID)

	_, err = svc.GetSpace(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrSpaceNotFound)
}
