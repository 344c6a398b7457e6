package emission

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/econbot/modules/match"
)

func seedPendingRequest(t *testing.T, store match.Store, token string) match.EmissionRequest {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, store.CreateMatch(ctx,
		match.Match{ID: testMatch, MapName: match.MapGreatWar, CreatedAt: time.Now()},
		[]string{"Solar Empire"},
	))
	require.NoError(t, store.AssignCountry(ctx, testMatch, "Solar Empire", playerID))

	req := match.EmissionRequest{
		Token:          token,
		MatchID:        testMatch,
		RequesterID:    playerID,
		CountryName:    "Solar Empire",
		CurrencyName:   "Solaris",
		Ticker:         "SOL",
		PegResource:    "silver",
		ExchangeRate:   decimal.NewFromInt(2500),
		Capitalization: 100000,
		EmissionAmount: decimal.NewFromInt(250_000_000),
		Status:         match.StatusPending,
		CreatedAt:      time.Now(),
	}
	require.NoError(t, store.InsertRequest(ctx, req))
	return req
}

func TestApproveRegistersCurrency(t *testing.T) {
	ctx := context.Background()
	store := match.NewMemoryStore()
	msgr := &fakeMessenger{}
	gate := NewGate(store, msgr)

	seedPendingRequest(t, store, "tok-1")

	req, err := gate.Approve(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, match.StatusApproved, req.Status)

	country, err := store.CountryForUser(ctx, testMatch, playerID)
	require.NoError(t, err)
	assert.NotZero(t, country.CurrencyID, "currency must be attached to the country")

	taken, err := store.CurrencyNameExists(ctx, testMatch, "solaris")
	require.NoError(t, err)
	assert.True(t, taken)

	require.NotEmpty(t, msgr.userMsgs)
	last := msgr.userMsgs[len(msgr.userMsgs)-1]
	assert.Equal(t, playerID, last.userID)
	assert.Contains(t, last.text, "approved")

	// Idempotent: the token is resolved, a second approve is a no-op.
	_, err = gate.Approve(ctx, "tok-1")
	assert.ErrorIs(t, err, match.ErrNotFound)
}

func TestRejectRemovesRequest(t *testing.T) {
	ctx := context.Background()
	store := match.NewMemoryStore()
	msgr := &fakeMessenger{}
	gate := NewGate(store, msgr)

	seedPendingRequest(t, store, "tok-1")

	req, err := gate.Reject(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, match.StatusRejected, req.Status)

	_, err = store.RequestByToken(ctx, "tok-1")
	assert.ErrorIs(t, err, match.ErrNotFound)

	country, err := store.CountryForUser(ctx, testMatch, playerID)
	require.NoError(t, err)
	assert.Zero(t, country.CurrencyID, "reject must not register a currency")

	require.NotEmpty(t, msgr.userMsgs)
	assert.Contains(t, msgr.userMsgs[len(msgr.userMsgs)-1].text, "rejected")

	_, err = gate.Reject(ctx, "tok-1")
	assert.ErrorIs(t, err, match.ErrNotFound)

	// The freed name can be requested again.
	taken, err := store.CurrencyNameExists(ctx, testMatch, "Solaris")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestUnknownTokenIsNotFound(t *testing.T) {
	ctx := context.Background()
	store := match.NewMemoryStore()
	gate := NewGate(store, &fakeMessenger{})

	_, err := gate.Approve(ctx, "missing")
	assert.ErrorIs(t, err, match.ErrNotFound)
	_, err = gate.Reject(ctx, "missing")
	assert.ErrorIs(t, err, match.ErrNotFound)
}
