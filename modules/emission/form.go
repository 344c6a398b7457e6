package emission

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/m3rciful/econbot/core/telegram/state"
)

// Step is the position of a form inside the emission wizard. Steps are
// strictly sequential; the only backward transition is a full restart.
type Step int

const (
	StepNone Step = iota
	StepCurrencyName
	StepTicker
	StepPegResource
	StepExchangeRate
	StepCapitalization
	StepReview
)

// String returns the step name used in logs.
func (s Step) String() string {
	switch s {
	case StepCurrencyName:
		return "currency_name"
	case StepTicker:
		return "ticker"
	case StepPegResource:
		return "peg_resource"
	case StepExchangeRate:
		return "exchange_rate"
	case StepCapitalization:
		return "capitalization"
	case StepReview:
		return "review"
	default:
		return "none"
	}
}

// FSM states registered with the session manager. Text steps receive the
// next message through the manager; keyboard steps only accept callbacks.
const (
	StateCurrencyName   state.State = "emission_currency_name"
	StateTicker         state.State = "emission_ticker"
	StateChooseResource state.State = "emission_peg_resource"
	StateExchangeRate   state.State = "emission_exchange_rate"
	StateCapitalization state.State = "emission_capitalization"
	StateReview         state.State = "emission_review"
)

func stepState(s Step) state.State {
	switch s {
	case StepCurrencyName:
		return StateCurrencyName
	case StepTicker:
		return StateTicker
	case StepPegResource:
		return StateChooseResource
	case StepExchangeRate:
		return StateExchangeRate
	case StepCapitalization:
		return StateCapitalization
	case StepReview:
		return StateReview
	default:
		return state.StateIdle
	}
}

// Form is the typed conversation record: one field per step, zero until
// its step completes.
type Form struct {
	Step            Step
	MatchID         string
	Country         string
	CurrencyName    string
	Ticker          string
	PegResource     string
	ExchangeRate    decimal.Decimal
	Capitalization  int64
	EmissionAmount  decimal.Decimal
	CreatedAt       time.Time
	ReviewMessageID int
}

// populatedThrough reports whether every field owned by steps up to and
// including step is filled. The step pointer must always agree with the
// populated fields; a mismatch means the session was corrupted externally.
func (f Form) populatedThrough(step Step) bool {
	if f.MatchID == "" || f.Country == "" {
		return false
	}
	if step >= StepTicker && f.CurrencyName == "" {
		return false
	}
	if step >= StepPegResource && f.Ticker == "" {
		return false
	}
	if step >= StepExchangeRate && f.PegResource == "" {
		return false
	}
	if step >= StepCapitalization && f.ExchangeRate.IsZero() {
		return false
	}
	if step >= StepReview && (f.Capitalization == 0 || f.CreatedAt.IsZero()) {
		return false
	}
	return true
}
