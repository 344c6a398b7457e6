package match

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSeededStore(t *testing.T) Store {
	t.Helper()
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.CreateMatch(ctx,
		Match{ID: "7", MapName: MapGreatWar, CreatedAt: time.Now()},
		[]string{"Solar Empire", "Iron League"},
	))
	require.NoError(t, store.AssignCountry(ctx, "7", "Solar Empire", 42))
	return store
}

func pendingRequest(token string, userID int64, name, ticker string) EmissionRequest {
	return EmissionRequest{
		Token:          token,
		MatchID:        "7",
		RequesterID:    userID,
		CountryName:    "Solar Empire",
		CurrencyName:   name,
		Ticker:         ticker,
		PegResource:    "silver",
		ExchangeRate:   decimal.NewFromInt(2500),
		Capitalization: 100000,
		EmissionAmount: decimal.NewFromInt(250_000_000),
		Status:         StatusPending,
		CreatedAt:      time.Now(),
	}
}

func TestCreateMatchDuplicate(t *testing.T) {
	store := newSeededStore(t)
	err := store.CreateMatch(context.Background(), Match{ID: "7"}, nil)
	assert.ErrorIs(t, err, ErrMatchExists)
}

func TestCountryForUser(t *testing.T) {
	store := newSeededStore(t)
	ctx := context.Background()

	c, err := store.CountryForUser(ctx, "7", 42)
	require.NoError(t, err)
	assert.Equal(t, "Solar Empire", c.Name)

	_, err = store.CountryForUser(ctx, "7", 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInsertRequestUniqueness(t *testing.T) {
	store := newSeededStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertRequest(ctx, pendingRequest("t1", 42, "Solaris", "SOL")))

	err := store.InsertRequest(ctx, pendingRequest("t2", 42, "Lunaris", "LUN"))
	assert.ErrorIs(t, err, ErrPendingExists)

	err = store.InsertRequest(ctx, pendingRequest("t3", 77, "solaris", "LUN"))
	assert.ErrorIs(t, err, ErrDuplicateName)

	err = store.InsertRequest(ctx, pendingRequest("t4", 77, "Lunaris", "sol"))
	assert.ErrorIs(t, err, ErrDuplicateTicker)

	require.NoError(t, store.InsertRequest(ctx, pendingRequest("t5", 77, "Lunaris", "LUN")))
}

func TestInsertRequestRaceOneWinner(t *testing.T) {
	store := newSeededStore(t)
	ctx := context.Background()

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = store.InsertRequest(ctx,
				pendingRequest(fmt.Sprintf("race-%d", i), int64(100+i), "Solaris", "SOL"))
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		}
	}
	assert.Equal(t, 1, wins, "exactly one concurrent request may claim the name")
}

func TestApproveAttachesCurrencyOnce(t *testing.T) {
	store := newSeededStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertRequest(ctx, pendingRequest("t1", 42, "Solaris", "SOL")))
	require.NoError(t, store.SetAdminMessageID(ctx, "t1", 555))

	req, err := store.RequestByToken(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, int64(555), req.AdminMessageID)

	resolved, err := store.ApproveRequest(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, resolved.Status)

	_, err = store.ApproveRequest(ctx, "t1")
	assert.ErrorIs(t, err, ErrNotFound)

	c, err := store.CountryForUser(ctx, "7", 42)
	require.NoError(t, err)
	assert.NotZero(t, c.CurrencyID)

	// Approved currency keeps blocking the name and ticker.
	taken, err := store.TickerExists(ctx, "7", "sol")
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestPendingRequestsListing(t *testing.T) {
	store := newSeededStore(t)
	ctx := context.Background()

	reqs, err := store.PendingRequests(ctx, "7")
	require.NoError(t, err)
	assert.Empty(t, reqs)

	require.NoError(t, store.InsertRequest(ctx, pendingRequest("t1", 42, "Solaris", "SOL")))
	require.NoError(t, store.InsertRequest(ctx, pendingRequest("t2", 77, "Lunaris", "LUN")))

	reqs, err = store.PendingRequests(ctx, "7")
	require.NoError(t, err)
	assert.Len(t, reqs, 2)
}
