package match

import (
	"time"

	"github.com/shopspring/decimal"
)

// RequestStatus is the lifecycle state of an emission request.
type RequestStatus string

const (
	// StatusPending marks a request awaiting an admin decision.
	StatusPending RequestStatus = "pending"
	// StatusApproved marks a request the admin accepted.
	StatusApproved RequestStatus = "approved"
	// StatusRejected marks a request the admin declined.
	StatusRejected RequestStatus = "rejected"
)

// Match is a single game round players join.
type Match struct {
	ID        string    `db:"id"`
	MapName   string    `db:"map_name"`
	CreatedAt time.Time `db:"created_at"`
}

// Country is a playable state inside a match. OwnerID is the Telegram ID of
// the player holding the country, 0 while unassigned.
type Country struct {
	ID         int64  `db:"id"`
	MatchID    string `db:"match_id"`
	Name       string `db:"name"`
	OwnerID    int64  `db:"owner_telegram_id"`
	CurrencyID int64  `db:"currency_id"`
}

// Currency is a confirmed national currency inside a match.
type Currency struct {
	ID             int64           `db:"id"`
	MatchID        string          `db:"match_id"`
	CountryName    string          `db:"country_name"`
	Name           string          `db:"name"`
	Ticker         string          `db:"ticker"`
	PegResource    string          `db:"peg_resource"`
	ExchangeRate   decimal.Decimal `db:"exchange_rate"`
	Capitalization int64           `db:"capitalization"`
	EmissionAmount decimal.Decimal `db:"emission_amount"`
	CreatedAt      time.Time       `db:"created_at"`
}

// EmissionRequest is a currency emission awaiting an admin decision.
// Token is the durable correlation key across the async admin round-trip.
type EmissionRequest struct {
	Token          string          `db:"token"`
	MatchID        string          `db:"match_id"`
	RequesterID    int64           `db:"requester_id"`
	CountryName    string          `db:"country_name"`
	CurrencyName   string          `db:"currency_name"`
	Ticker         string          `db:"ticker"`
	PegResource    string          `db:"peg_resource"`
	ExchangeRate   decimal.Decimal `db:"exchange_rate"`
	Capitalization int64           `db:"capitalization"`
	EmissionAmount decimal.Decimal `db:"emission_amount"`
	Status         RequestStatus   `db:"status"`
	CreatedAt      time.Time       `db:"created_at"`
	AdminMessageID int64           `db:"admin_message_id"`
}
