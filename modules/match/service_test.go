package match

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceCreateMatchFromRoster(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, RosterSeeder().Seed(ctx, store))

	svc := NewService(store)
	m, err := svc.CreateMatch(ctx, "12", MapGreatWar)
	require.NoError(t, err)
	assert.Equal(t, "12", m.ID)
	assert.Equal(t, MapGreatWar, m.MapName)

	roster := Rosters()[MapGreatWar]
	for _, name := range roster {
		require.NoError(t, store.AssignCountry(ctx, "12", name, 1))
		c, err := store.CountryForUser(ctx, "12", 1)
		require.NoError(t, err)
		assert.Equal(t, name, c.Name)
		require.NoError(t, store.AssignCountry(ctx, "12", name, 0))
	}
}

func TestServiceCreateMatchValidation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, RosterSeeder().Seed(ctx, store))
	svc := NewService(store)

	_, err := svc.CreateMatch(ctx, "abc", MapGreatWar)
	assert.Error(t, err)

	_, err = svc.CreateMatch(ctx, "12", "atlantis")
	assert.ErrorIs(t, err, ErrUnknownMap)

	_, err = svc.CreateMatch(ctx, "12", MapGreatWar)
	require.NoError(t, err)
	_, err = svc.CreateMatch(ctx, "12", MapGreatWar)
	assert.ErrorIs(t, err, ErrMatchExists)
}
