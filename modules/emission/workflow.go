package emission

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	tele "gopkg.in/telebot.v4"
	"log/slog"

	"github.com/m3rciful/econbot/core/logger"
	"github.com/m3rciful/econbot/core/telegram/state"
	"github.com/m3rciful/econbot/modules/match"
)

const (
	minNameLen = 4
	maxNameLen = 20
	tickerLen  = 3
)

var (
	minRate = decimal.NewFromInt(1000)
	maxRate = decimal.NewFromInt(50000)
)

const (
	minCapitalization int64 = 50_000
	maxCapitalization int64 = 500_000
)

// DefaultResources lists the peg resources offered to the player.
var DefaultResources = []string{"silver"}

// Store is the slice of the match store the workflow needs.
type Store interface {
	CountryForUser(ctx context.Context, matchID string, userID int64) (match.Country, error)
	CurrencyNameExists(ctx context.Context, matchID, name string) (bool, error)
	TickerExists(ctx context.Context, matchID, ticker string) (bool, error)
	HasPendingRequest(ctx context.Context, matchID string, userID int64) (bool, error)
	InsertRequest(ctx context.Context, req match.EmissionRequest) error
	SetAdminMessageID(ctx context.Context, token string, messageID int) error
}

// Messenger delivers workflow output. The Telegram implementation lives in
// Notifier; tests substitute a fake.
type Messenger interface {
	SendUser(ctx context.Context, userID int64, text string, markup *tele.ReplyMarkup) (int, error)
	SendAdmin(ctx context.Context, text string, markup *tele.ReplyMarkup) (int, error)
	DeleteForUser(ctx context.Context, userID int64, messageID int) error
}

// Config assembles a Workflow.
type Config struct {
	Sessions  state.Manager[Form]
	Store     Store
	Messenger Messenger
	Resources []string
	Location  *time.Location
	Now       func() time.Time
	NewToken  func() string
}

// Workflow drives the emission form: one Handle call per incoming event,
// strictly sequential steps, full restart as the only way back.
type Workflow struct {
	sessions  state.Manager[Form]
	store     Store
	messenger Messenger
	resources []string
	loc       *time.Location
	now       func() time.Time
	newToken  func() string
}

// NewWorkflow wires a Workflow from Config, filling optional fields with
// production defaults.
func NewWorkflow(cfg Config) *Workflow {
	w := &Workflow{
		sessions:  cfg.Sessions,
		store:     cfg.Store,
		messenger: cfg.Messenger,
		resources: cfg.Resources,
		loc:       cfg.Location,
		now:       cfg.Now,
		newToken:  cfg.NewToken,
	}
	if len(w.resources) == 0 {
		w.resources = DefaultResources
	}
	if w.loc == nil {
		w.loc = time.UTC
	}
	if w.now == nil {
		w.now = time.Now
	}
	if w.newToken == nil {
		w.newToken = uuid.NewString
	}
	return w
}

// Sessions exposes the session manager for router wiring.
func (w *Workflow) Sessions() state.Manager[Form] { return w.sessions }

// Resources returns the peg resources offered to the player.
func (w *Workflow) Resources() []string { return w.resources }

// Handle processes one workflow event for the given user. Recoverable input
// problems are reported to the user and consumed; only infrastructure
// failures escape as errors.
func (w *Workflow) Handle(ctx context.Context, userID int64, ev Event) error {
	var err error
	switch e := ev.(type) {
	case StartForm:
		err = w.start(ctx, userID, e.MatchID)
	case SubmitText:
		err = w.submitText(ctx, userID, e.Text)
	case ChooseResource:
		err = w.chooseResource(ctx, userID, e.MatchID, e.Resource)
	case ConfirmDraft:
		err = w.confirm(ctx, userID, e.MatchID)
	case RestartForm:
		err = w.restart(ctx, userID, e.MatchID)
	default:
		return fmt.Errorf("emission: unknown event %T", ev)
	}

	var step *StepError
	if errors.As(err, &step) {
		_, sendErr := w.messenger.SendUser(ctx, userID, step.Message, nil)
		return sendErr
	}
	return err
}

func (w *Workflow) start(ctx context.Context, userID int64, matchID string) error {
	pending, err := w.store.HasPendingRequest(ctx, matchID, userID)
	if err != nil {
		logger.SVCEmission.LogAttrs(ctx, slog.LevelError, "start.pending_check_failed",
			slog.String("match_id", matchID),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return collaboratorErr()
	}
	if pending {
		_, err := w.messenger.SendUser(ctx, userID, textAlreadyPending, nil)
		return err
	}

	country, err := w.store.CountryForUser(ctx, matchID, userID)
	if errors.Is(err, match.ErrNotFound) {
		_, err := w.messenger.SendUser(ctx, userID, textNoCountry, nil)
		return err
	}
	if err != nil {
		logger.SVCEmission.LogAttrs(ctx, slog.LevelError, "start.country_lookup_failed",
			slog.String("match_id", matchID),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return collaboratorErr()
	}

	w.sessions.Begin(userID, StateCurrencyName)
	w.sessions.Update(userID, func(s *state.Session[Form]) {
		s.Data.Step = StepCurrencyName
		s.Data.MatchID = matchID
		s.Data.Country = country.Name
	})

	logger.SVCEmission.LogAttrs(ctx, slog.LevelInfo, "form.started",
		slog.String("match_id", matchID),
		slog.Int64("user_id", userID),
		slog.String("country", country.Name),
	)

	form := w.sessions.Get(userID).Data
	_, err = w.messenger.SendUser(ctx, userID, promptName(form), nil)
	return err
}

func (w *Workflow) submitText(ctx context.Context, userID int64, text string) error {
	sess := w.sessions.Get(userID)
	if sess.State == state.StateIdle {
		return nil
	}
	form := sess.Data
	if !form.populatedThrough(form.Step) {
		return w.forceRestart(ctx, userID, form.MatchID)
	}

	text = strings.TrimSpace(text)

	switch form.Step {
	case StepCurrencyName:
		return w.acceptName(ctx, userID, form, text)
	case StepTicker:
		return w.acceptTicker(ctx, userID, form, text)
	case StepExchangeRate:
		return w.acceptRate(ctx, userID, form, text)
	case StepCapitalization:
		return w.acceptCapitalization(ctx, userID, form, text)
	default:
		_, err := w.messenger.SendUser(ctx, userID, textUseButtons, nil)
		return err
	}
}

// normalizeName trims, lowercases and capitalizes the first letter, so
// "  imperial CROWN " becomes "Imperial crown".
func normalizeName(raw string) string {
	name := strings.ToLower(strings.TrimSpace(raw))
	r, size := utf8.DecodeRuneInString(name)
	if size == 0 {
		return name
	}
	return strings.ToUpper(string(r)) + name[size:]
}

func (w *Workflow) acceptName(ctx context.Context, userID int64, form Form, text string) error {
	name := normalizeName(text)
	if n := utf8.RuneCountInString(name); n < minNameLen || n > maxNameLen {
		return rangeErr(textNameLength)
	}
	if !LettersOnly(name, CyrillicAndLatin) {
		return formatErr(textNameLetters)
	}

	taken, err := w.store.CurrencyNameExists(ctx, form.MatchID, name)
	if err != nil {
		logger.SVCEmission.LogAttrs(ctx, slog.LevelError, "name.uniqueness_check_failed",
			slog.String("match_id", form.MatchID),
			slog.String("currency", name),
			slog.String("err", err.Error()),
		)
		return collaboratorErr()
	}
	if taken {
		return duplicateErr(textNameTaken(name))
	}

	w.sessions.Update(userID, func(s *state.Session[Form]) {
		s.Data.CurrencyName = name
		s.Data.Step = StepTicker
	})
	w.sessions.SetState(userID, StateTicker)

	form = w.sessions.Get(userID).Data
	_, err = w.messenger.SendUser(ctx, userID, promptTicker(form), nil)
	return err
}

func (w *Workflow) acceptTicker(ctx context.Context, userID int64, form Form, text string) error {
	ticker := strings.ToUpper(strings.TrimSpace(text))
	if utf8.RuneCountInString(ticker) != tickerLen || !LettersOnly(ticker, LatinOnly) {
		return formatErr(textTickerFormat)
	}

	taken, err := w.store.TickerExists(ctx, form.MatchID, ticker)
	if err != nil {
		logger.SVCEmission.LogAttrs(ctx, slog.LevelError, "ticker.uniqueness_check_failed",
			slog.String("match_id", form.MatchID),
			slog.String("ticker", ticker),
			slog.String("err", err.Error()),
		)
		return collaboratorErr()
	}
	if taken {
		return duplicateErr(textTickerTaken(ticker))
	}

	w.sessions.Update(userID, func(s *state.Session[Form]) {
		s.Data.Ticker = ticker
		s.Data.Step = StepPegResource
	})
	w.sessions.SetState(userID, StateChooseResource)

	form = w.sessions.Get(userID).Data
	_, err = w.messenger.SendUser(ctx, userID, promptResource(form), resourceKeyboard(form.MatchID, w.resources))
	return err
}

func (w *Workflow) chooseResource(ctx context.Context, userID int64, matchID, resource string) error {
	sess := w.sessions.Get(userID)
	if sess.State != StateChooseResource || sess.Data.Step != StepPegResource ||
		sess.Data.MatchID != matchID || !sess.Data.populatedThrough(StepPegResource) {
		return w.forceRestart(ctx, userID, matchID)
	}

	valid := false
	for _, r := range w.resources {
		if r == resource {
			valid = true
			break
		}
	}
	if !valid {
		return formatErr(textBadResource)
	}

	w.sessions.Update(userID, func(s *state.Session[Form]) {
		s.Data.PegResource = resource
		s.Data.Step = StepExchangeRate
	})
	w.sessions.SetState(userID, StateExchangeRate)

	form := w.sessions.Get(userID).Data
	_, err := w.messenger.SendUser(ctx, userID, promptRate(form), nil)
	return err
}

func (w *Workflow) acceptRate(ctx context.Context, userID int64, form Form, text string) error {
	if !IsDecimal(text) {
		return formatErr(textRateFormat)
	}
	rate, err := decimal.NewFromString(text)
	if err != nil {
		return formatErr(textRateFormat)
	}
	// Round before the range check: 999.999 becomes 1000.00 and passes.
	rate = rate.Round(2)
	if rate.LessThan(minRate) || rate.GreaterThan(maxRate) {
		return rangeErr(textRateRange)
	}

	w.sessions.Update(userID, func(s *state.Session[Form]) {
		s.Data.ExchangeRate = rate
		s.Data.Step = StepCapitalization
	})
	w.sessions.SetState(userID, StateCapitalization)

	form = w.sessions.Get(userID).Data
	_, err = w.messenger.SendUser(ctx, userID, promptCapitalization(form), nil)
	return err
}

func (w *Workflow) acceptCapitalization(ctx context.Context, userID int64, form Form, text string) error {
	if !IsInteger(text) {
		return formatErr(textCapFormat)
	}
	capital, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return formatErr(textCapFormat)
	}
	if capital < minCapitalization || capital > maxCapitalization {
		return rangeErr(textCapRange)
	}

	amount := form.ExchangeRate.Mul(decimal.NewFromInt(capital))
	createdAt := w.now().In(w.loc)

	w.sessions.Update(userID, func(s *state.Session[Form]) {
		s.Data.Capitalization = capital
		s.Data.EmissionAmount = amount
		s.Data.CreatedAt = createdAt
		s.Data.Step = StepReview
	})
	w.sessions.SetState(userID, StateReview)

	form = w.sessions.Get(userID).Data
	msgID, err := w.messenger.SendUser(ctx, userID, renderDraft(form), reviewKeyboard(form.MatchID))
	if err != nil {
		return err
	}
	w.sessions.Update(userID, func(s *state.Session[Form]) {
		s.Data.ReviewMessageID = msgID
	})
	return nil
}

func (w *Workflow) confirm(ctx context.Context, userID int64, matchID string) error {
	sess := w.sessions.Get(userID)
	if sess.State != StateReview || sess.Data.Step != StepReview ||
		sess.Data.MatchID != matchID || !sess.Data.populatedThrough(StepReview) {
		return w.forceRestart(ctx, userID, matchID)
	}
	form := sess.Data

	req := match.EmissionRequest{
		Token:          w.newToken(),
		MatchID:        form.MatchID,
		RequesterID:    userID,
		CountryName:    form.Country,
		CurrencyName:   form.CurrencyName,
		Ticker:         form.Ticker,
		PegResource:    form.PegResource,
		ExchangeRate:   form.ExchangeRate,
		Capitalization: form.Capitalization,
		EmissionAmount: form.EmissionAmount,
		Status:         match.StatusPending,
		CreatedAt:      form.CreatedAt,
	}

	if err := w.store.InsertRequest(ctx, req); err != nil {
		switch {
		case errors.Is(err, match.ErrDuplicateName):
			// Somebody claimed the name between validation and confirm.
			w.sessions.Update(userID, func(s *state.Session[Form]) {
				s.Data.CurrencyName = ""
				s.Data.Ticker = ""
				s.Data.PegResource = ""
				s.Data.ExchangeRate = decimal.Zero
				s.Data.Capitalization = 0
				s.Data.EmissionAmount = decimal.Zero
				s.Data.CreatedAt = time.Time{}
				s.Data.Step = StepCurrencyName
			})
			w.sessions.SetState(userID, StateCurrencyName)
			return duplicateErr(textNameTaken(form.CurrencyName))
		case errors.Is(err, match.ErrDuplicateTicker):
			w.sessions.Update(userID, func(s *state.Session[Form]) {
				s.Data.Ticker = ""
				s.Data.PegResource = ""
				s.Data.ExchangeRate = decimal.Zero
				s.Data.Capitalization = 0
				s.Data.EmissionAmount = decimal.Zero
				s.Data.CreatedAt = time.Time{}
				s.Data.Step = StepTicker
			})
			w.sessions.SetState(userID, StateTicker)
			return duplicateErr(textTickerTaken(form.Ticker))
		case errors.Is(err, match.ErrPendingExists):
			w.sessions.Clear(userID)
			_, sendErr := w.messenger.SendUser(ctx, userID, textAlreadyPending, nil)
			return sendErr
		default:
			logger.SVCEmission.LogAttrs(ctx, slog.LevelError, "confirm.insert_failed",
				slog.String("match_id", form.MatchID),
				slog.Int64("user_id", userID),
				slog.String("err", err.Error()),
			)
			return collaboratorErr()
		}
	}

	if form.ReviewMessageID != 0 {
		if err := w.messenger.DeleteForUser(ctx, userID, form.ReviewMessageID); err != nil {
			logger.SVCEmission.LogAttrs(ctx, slog.LevelWarn, "confirm.draft_delete_failed",
				slog.String("token", req.Token),
				slog.String("err", err.Error()),
			)
		}
	}

	if _, err := w.messenger.SendUser(ctx, userID, renderInstructions(form), nil); err != nil {
		return err
	}

	adminMsgID, err := w.messenger.SendAdmin(ctx, renderAdminRequest(req), adminDecisionKeyboard(req.Token))
	if err != nil {
		logger.SVCEmission.LogAttrs(ctx, slog.LevelError, "confirm.admin_notify_failed",
			slog.String("token", req.Token),
			slog.String("err", err.Error()),
		)
	} else if err := w.store.SetAdminMessageID(ctx, req.Token, adminMsgID); err != nil {
		logger.SVCEmission.LogAttrs(ctx, slog.LevelWarn, "confirm.admin_message_id_failed",
			slog.String("token", req.Token),
			slog.String("err", err.Error()),
		)
	}

	logger.SVCEmission.LogAttrs(ctx, slog.LevelInfo, "request.submitted",
		slog.String("match_id", req.MatchID),
		slog.Int64("user_id", userID),
		slog.String("token", req.Token),
		slog.String("currency", req.CurrencyName),
		slog.String("ticker", req.Ticker),
	)

	w.sessions.Clear(userID)
	return nil
}

func (w *Workflow) restart(ctx context.Context, userID int64, matchID string) error {
	w.sessions.Clear(userID)
	return w.start(ctx, userID, matchID)
}

// forceRestart discards a session that cannot continue safely, such as a
// step pointer disagreeing with the form fields, a keyboard pressed for a
// different match or a confirm arriving after the session expired.
func (w *Workflow) forceRestart(ctx context.Context, userID int64, matchID string) error {
	logger.SVCEmission.LogAttrs(ctx, slog.LevelWarn, "session.integrity_restart",
		slog.String("match_id", matchID),
		slog.Int64("user_id", userID),
	)
	w.sessions.Clear(userID)
	if _, err := w.messenger.SendUser(ctx, userID, textSessionLost, nil); err != nil {
		return err
	}
	if matchID == "" {
		return nil
	}
	return w.start(ctx, userID, matchID)
}
