package emission

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/econbot/core/telegram/state"
	"github.com/m3rciful/econbot/modules/match"
)

const (
	testMatch = "1"
	playerID  = int64(42)
	rivalID   = int64(77)
)

type fakeMsg struct {
	id     int
	userID int64
	text   string
	markup *tele.ReplyMarkup
}

type fakeMessenger struct {
	userMsgs  []fakeMsg
	adminMsgs []fakeMsg
	deleted   []int
	nextID    int
}

func (f *fakeMessenger) SendUser(_ context.Context, userID int64, text string, markup *tele.ReplyMarkup) (int, error) {
	f.nextID++
	f.userMsgs = append(f.userMsgs, fakeMsg{id: f.nextID, userID: userID, text: text, markup: markup})
	return f.nextID, nil
}

func (f *fakeMessenger) SendAdmin(_ context.Context, text string, markup *tele.ReplyMarkup) (int, error) {
	f.nextID++
	f.adminMsgs = append(f.adminMsgs, fakeMsg{id: f.nextID, text: text, markup: markup})
	return f.nextID, nil
}

func (f *fakeMessenger) DeleteForUser(_ context.Context, _ int64, messageID int) error {
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeMessenger) lastUserText() string {
	if len(f.userMsgs) == 0 {
		return ""
	}
	return f.userMsgs[len(f.userMsgs)-1].text
}

func newTestEnv(t *testing.T) (*Workflow, match.Store, *fakeMessenger) {
	t.Helper()
	ctx := context.Background()

	store := match.NewMemoryStore()
	require.NoError(t, store.CreateMatch(ctx,
		match.Match{ID: testMatch, MapName: match.MapGreatWar, CreatedAt: time.Now()},
		[]string{"Solar Empire", "Iron League"},
	))
	require.NoError(t, store.AssignCountry(ctx, testMatch, "Solar Empire", playerID))
	require.NoError(t, store.AssignCountry(ctx, testMatch, "Iron League", rivalID))

	msgr := &fakeMessenger{}
	tokens := 0
	w := NewWorkflow(Config{
		Sessions:  state.NewMemoryManager[Form](),
		Store:     store,
		Messenger: msgr,
		Now: func() time.Time {
			return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
		},
		NewToken: func() string {
			tokens++
			return fmt.Sprintf("tok-%d", tokens)
		},
	})
	return w, store, msgr
}

func fillForm(t *testing.T, w *Workflow, userID int64, name, ticker string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, w.Handle(ctx, userID, StartForm{MatchID: testMatch}))
	require.NoError(t, w.Handle(ctx, userID, SubmitText{Text: name}))
	require.NoError(t, w.Handle(ctx, userID, SubmitText{Text: ticker}))
	require.NoError(t, w.Handle(ctx, userID, ChooseResource{MatchID: testMatch, Resource: "silver"}))
	require.NoError(t, w.Handle(ctx, userID, SubmitText{Text: "2500"}))
	require.NoError(t, w.Handle(ctx, userID, SubmitText{Text: "100000"}))
}

func TestEmissionEndToEnd(t *testing.T) {
	ctx := context.Background()
	w, store, msgr := newTestEnv(t)

	fillForm(t, w, playerID, "Solaris", "sol")

	draft := msgr.userMsgs[len(msgr.userMsgs)-1]
	assert.Contains(t, draft.text, "Solaris")
	assert.Contains(t, draft.text, "SOL")
	assert.Contains(t, draft.text, "250 000 000")
	assert.NotNil(t, draft.markup)
	assert.Equal(t, StateReview, w.Sessions().GetState(playerID))

	require.NoError(t, w.Handle(ctx, playerID, ConfirmDraft{MatchID: testMatch}))

	req, err := store.RequestByToken(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, match.StatusPending, req.Status)
	assert.Equal(t, playerID, req.RequesterID)
	assert.Equal(t, "Solar Empire", req.CountryName)
	assert.Equal(t, "Solaris", req.CurrencyName)
	assert.Equal(t, "SOL", req.Ticker)
	assert.Equal(t, "silver", req.PegResource)
	assert.Equal(t, int64(100000), req.Capitalization)
	assert.True(t, req.EmissionAmount.Equal(decimal.NewFromInt(250_000_000)),
		"emission amount = %s", req.EmissionAmount)

	require.Len(t, msgr.adminMsgs, 1)
	assert.Contains(t, msgr.adminMsgs[0].text, "Solaris")
	assert.Equal(t, int64(msgr.adminMsgs[0].id), req.AdminMessageID)

	assert.Contains(t, msgr.deleted, draft.id, "review draft must be deleted")
	assert.False(t, w.Sessions().InProgress(playerID))
	assert.Contains(t, msgr.userMsgs[len(msgr.userMsgs)-1].text, "transfer")
}

func TestStepValidation(t *testing.T) {
	ctx := context.Background()
	w, _, msgr := newTestEnv(t)

	require.NoError(t, w.Handle(ctx, playerID, StartForm{MatchID: testMatch}))

	submit := func(text string) {
		require.NoError(t, w.Handle(ctx, playerID, SubmitText{Text: text}))
	}

	submit("abc")
	assert.Equal(t, textNameLength, msgr.lastUserText())
	submit("Veryverylongcurrencyname")
	assert.Equal(t, textNameLength, msgr.lastUserText())
	submit("Dol5ar")
	assert.Equal(t, textNameLetters, msgr.lastUserText())
	assert.Equal(t, StateCurrencyName, w.Sessions().GetState(playerID))

	submit("Solaris")
	assert.Equal(t, StateTicker, w.Sessions().GetState(playerID))

	submit("SO")
	assert.Equal(t, textTickerFormat, msgr.lastUserText())
	submit("SOUL")
	assert.Equal(t, textTickerFormat, msgr.lastUserText())
	submit("so1")
	assert.Equal(t, textTickerFormat, msgr.lastUserText())

	submit("sol")
	assert.Equal(t, StateChooseResource, w.Sessions().GetState(playerID))
	assert.Equal(t, "SOL", w.Sessions().Get(playerID).Data.Ticker)

	require.NoError(t, w.Handle(ctx, playerID, ChooseResource{MatchID: testMatch, Resource: "gold"}))
	assert.Equal(t, textBadResource, msgr.lastUserText())
	require.NoError(t, w.Handle(ctx, playerID, ChooseResource{MatchID: testMatch, Resource: "silver"}))
	assert.Equal(t, StateExchangeRate, w.Sessions().GetState(playerID))

	submit("999.99")
	assert.Equal(t, textRateRange, msgr.lastUserText())
	submit("50000.01")
	assert.Equal(t, textRateRange, msgr.lastUserText())
	submit("12,5")
	assert.Equal(t, textRateFormat, msgr.lastUserText())

	// 999.999 rounds to 1000.00 before the range check and passes.
	submit("999.999")
	assert.Equal(t, StateCapitalization, w.Sessions().GetState(playerID))
	assert.True(t, w.Sessions().Get(playerID).Data.ExchangeRate.Equal(decimal.NewFromInt(1000)))

	submit("49999")
	assert.Equal(t, textCapRange, msgr.lastUserText())
	submit("500001")
	assert.Equal(t, textCapRange, msgr.lastUserText())
	submit("1e5")
	assert.Equal(t, textCapFormat, msgr.lastUserText())

	submit("500000")
	assert.Equal(t, StateReview, w.Sessions().GetState(playerID))
	form := w.Sessions().Get(playerID).Data
	assert.True(t, form.EmissionAmount.Equal(decimal.NewFromInt(500_000_000)))
}

func TestPendingRequestBlocksNewForm(t *testing.T) {
	ctx := context.Background()
	w, _, msgr := newTestEnv(t)

	fillForm(t, w, playerID, "Solaris", "sol")
	require.NoError(t, w.Handle(ctx, playerID, ConfirmDraft{MatchID: testMatch}))

	require.NoError(t, w.Handle(ctx, playerID, StartForm{MatchID: testMatch}))
	assert.Equal(t, textAlreadyPending, msgr.lastUserText())
	assert.False(t, w.Sessions().InProgress(playerID))
}

func TestNoCountryInMatch(t *testing.T) {
	ctx := context.Background()
	w, _, msgr := newTestEnv(t)

	require.NoError(t, w.Handle(ctx, int64(999), StartForm{MatchID: testMatch}))
	assert.Equal(t, textNoCountry, msgr.lastUserText())
	assert.False(t, w.Sessions().InProgress(999))
}

func TestRestartDiscardsAllFields(t *testing.T) {
	ctx := context.Background()
	w, _, msgr := newTestEnv(t)

	require.NoError(t, w.Handle(ctx, playerID, StartForm{MatchID: testMatch}))
	require.NoError(t, w.Handle(ctx, playerID, SubmitText{Text: "Solaris"}))
	require.NoError(t, w.Handle(ctx, playerID, SubmitText{Text: "sol"}))

	require.NoError(t, w.Handle(ctx, playerID, RestartForm{MatchID: testMatch}))

	assert.Equal(t, StateCurrencyName, w.Sessions().GetState(playerID))
	form := w.Sessions().Get(playerID).Data
	assert.Empty(t, form.CurrencyName)
	assert.Empty(t, form.Ticker)
	assert.Contains(t, msgr.lastUserText(), "Enter the name")
}

func TestDuplicateNameAndTickerMessages(t *testing.T) {
	ctx := context.Background()
	w, _, msgr := newTestEnv(t)

	fillForm(t, w, playerID, "Solaris", "sol")
	require.NoError(t, w.Handle(ctx, playerID, ConfirmDraft{MatchID: testMatch}))

	require.NoError(t, w.Handle(ctx, rivalID, StartForm{MatchID: testMatch}))

	// Case-insensitive: the pending "Solaris" blocks "solaris" too.
	require.NoError(t, w.Handle(ctx, rivalID, SubmitText{Text: "solaris"}))
	assert.Equal(t, textNameTaken("Solaris"), msgr.lastUserText())
	assert.NotEqual(t, textNameLetters, msgr.lastUserText())

	require.NoError(t, w.Handle(ctx, rivalID, SubmitText{Text: "Lunaris"}))
	require.NoError(t, w.Handle(ctx, rivalID, SubmitText{Text: "SOL"}))
	assert.Equal(t, textTickerTaken("SOL"), msgr.lastUserText())

	require.NoError(t, w.Handle(ctx, rivalID, SubmitText{Text: "LUN"}))
	assert.Equal(t, StateChooseResource, w.Sessions().GetState(rivalID))
}

// faultyStore wraps the in-memory store and fails selected operations.
type faultyStore struct {
	match.Store
	failing map[string]error
}

func (f *faultyStore) failOn(op string) { f.failing[op] = fmt.Errorf("%s: connection refused", op) }

func (f *faultyStore) HasPendingRequest(ctx context.Context, matchID string, userID int64) (bool, error) {
	if err := f.failing["pending"]; err != nil {
		return false, err
	}
	return f.Store.HasPendingRequest(ctx, matchID, userID)
}

func (f *faultyStore) CurrencyNameExists(ctx context.Context, matchID, name string) (bool, error) {
	if err := f.failing["name"]; err != nil {
		return false, err
	}
	return f.Store.CurrencyNameExists(ctx, matchID, name)
}

func (f *faultyStore) TickerExists(ctx context.Context, matchID, ticker string) (bool, error) {
	if err := f.failing["ticker"]; err != nil {
		return false, err
	}
	return f.Store.TickerExists(ctx, matchID, ticker)
}

func (f *faultyStore) InsertRequest(ctx context.Context, req match.EmissionRequest) error {
	if err := f.failing["insert"]; err != nil {
		return err
	}
	return f.Store.InsertRequest(ctx, req)
}

func newFaultyEnv(t *testing.T) (*Workflow, *faultyStore, *fakeMessenger) {
	t.Helper()
	ctx := context.Background()

	store := match.NewMemoryStore()
	require.NoError(t, store.CreateMatch(ctx,
		match.Match{ID: testMatch, MapName: match.MapGreatWar, CreatedAt: time.Now()},
		[]string{"Solar Empire"},
	))
	require.NoError(t, store.AssignCountry(ctx, testMatch, "Solar Empire", playerID))

	faulty := &faultyStore{Store: store, failing: map[string]error{}}
	msgr := &fakeMessenger{}
	w := NewWorkflow(Config{
		Sessions:  state.NewMemoryManager[Form](),
		Store:     faulty,
		Messenger: msgr,
		NewToken:  func() string { return "tok-1" },
	})
	return w, faulty, msgr
}

func TestStoreFailureDoesNotAdvance(t *testing.T) {
	ctx := context.Background()

	t.Run("start", func(t *testing.T) {
		w, store, msgr := newFaultyEnv(t)
		store.failOn("pending")

		require.NoError(t, w.Handle(ctx, playerID, StartForm{MatchID: testMatch}))
		assert.Equal(t, textStoreUnavailable, msgr.lastUserText())
		assert.False(t, w.Sessions().InProgress(playerID))
	})

	t.Run("name check", func(t *testing.T) {
		w, store, msgr := newFaultyEnv(t)
		require.NoError(t, w.Handle(ctx, playerID, StartForm{MatchID: testMatch}))
		store.failOn("name")

		require.NoError(t, w.Handle(ctx, playerID, SubmitText{Text: "Solaris"}))
		assert.Equal(t, textStoreUnavailable, msgr.lastUserText())
		assert.Equal(t, StateCurrencyName, w.Sessions().GetState(playerID))
		assert.Empty(t, w.Sessions().Get(playerID).Data.CurrencyName)
	})

	t.Run("ticker check", func(t *testing.T) {
		w, store, msgr := newFaultyEnv(t)
		require.NoError(t, w.Handle(ctx, playerID, StartForm{MatchID: testMatch}))
		require.NoError(t, w.Handle(ctx, playerID, SubmitText{Text: "Solaris"}))
		store.failOn("ticker")

		require.NoError(t, w.Handle(ctx, playerID, SubmitText{Text: "sol"}))
		assert.Equal(t, textStoreUnavailable, msgr.lastUserText())
		assert.Equal(t, StateTicker, w.Sessions().GetState(playerID))
		assert.Empty(t, w.Sessions().Get(playerID).Data.Ticker)
	})

	t.Run("confirm insert", func(t *testing.T) {
		w, store, msgr := newFaultyEnv(t)
		fillForm(t, w, playerID, "Solaris", "sol")
		store.failOn("insert")

		require.NoError(t, w.Handle(ctx, playerID, ConfirmDraft{MatchID: testMatch}))
		assert.Equal(t, textStoreUnavailable, msgr.lastUserText())

		// The session stays on review so the user can simply tap confirm again.
		assert.Equal(t, StateReview, w.Sessions().GetState(playerID))
		assert.Equal(t, "Solaris", w.Sessions().Get(playerID).Data.CurrencyName)
		assert.Empty(t, msgr.adminMsgs)
		assert.Empty(t, msgr.deleted)

		_, err := store.RequestByToken(ctx, "tok-1")
		assert.ErrorIs(t, err, match.ErrNotFound)
	})
}

func TestForeignMatchCallbackRestarts(t *testing.T) {
	ctx := context.Background()

	t.Run("resource", func(t *testing.T) {
		w, _, msgr := newTestEnv(t)
		require.NoError(t, w.Handle(ctx, playerID, StartForm{MatchID: testMatch}))
		require.NoError(t, w.Handle(ctx, playerID, SubmitText{Text: "Solaris"}))
		require.NoError(t, w.Handle(ctx, playerID, SubmitText{Text: "sol"}))

		require.NoError(t, w.Handle(ctx, playerID, ChooseResource{MatchID: "2", Resource: "silver"}))
		assert.Empty(t, w.Sessions().Get(playerID).Data.PegResource)
		texts := make([]string, 0, len(msgr.userMsgs))
		for _, m := range msgr.userMsgs {
			texts = append(texts, m.text)
		}
		assert.Contains(t, texts, textSessionLost)
	})

	t.Run("confirm", func(t *testing.T) {
		w, store, msgr := newTestEnv(t)
		fillForm(t, w, playerID, "Solaris", "sol")

		require.NoError(t, w.Handle(ctx, playerID, ConfirmDraft{MatchID: "2"}))
		_, err := store.RequestByToken(ctx, "tok-1")
		assert.ErrorIs(t, err, match.ErrNotFound)
		texts := make([]string, 0, len(msgr.userMsgs))
		for _, m := range msgr.userMsgs {
			texts = append(texts, m.text)
		}
		assert.Contains(t, texts, textSessionLost)
	})
}

func TestConfirmWithoutSessionRestarts(t *testing.T) {
	ctx := context.Background()
	w, _, msgr := newTestEnv(t)

	require.NoError(t, w.Handle(ctx, playerID, ConfirmDraft{MatchID: testMatch}))

	require.GreaterOrEqual(t, len(msgr.userMsgs), 2)
	assert.Equal(t, textSessionLost, msgr.userMsgs[len(msgr.userMsgs)-2].text)
	assert.Contains(t, msgr.lastUserText(), "Enter the name")
	assert.Equal(t, StateCurrencyName, w.Sessions().GetState(playerID))
}
