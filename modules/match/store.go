package match

import "context"

// Store is the persistence contract shared by the Postgres and memory
// implementations. Consumers should depend on the narrow interfaces they
// declare themselves; this one exists for wiring and tests.
type Store interface {
	CreateMatch(ctx context.Context, m Match, countries []string) error
	MatchByID(ctx context.Context, matchID string) (Match, error)

	CountryForUser(ctx context.Context, matchID string, userID int64) (Country, error)
	AssignCountry(ctx context.Context, matchID, name string, userID int64) error

	CurrencyNameExists(ctx context.Context, matchID, name string) (bool, error)
	TickerExists(ctx context.Context, matchID, ticker string) (bool, error)

	HasPendingRequest(ctx context.Context, matchID string, userID int64) (bool, error)
	InsertRequest(ctx context.Context, req EmissionRequest) error
	SetAdminMessageID(ctx context.Context, token string, messageID int) error
	RequestByToken(ctx context.Context, token string) (EmissionRequest, error)
	PendingRequests(ctx context.Context, matchID string) ([]EmissionRequest, error)

	// ApproveRequest registers the currency on the country record and removes
	// the pending row in one transaction. ErrNotFound when the token is not pending.
	ApproveRequest(ctx context.Context, token string) (EmissionRequest, error)
	// RejectRequest removes the pending row without registering anything.
	RejectRequest(ctx context.Context, token string) (EmissionRequest, error)

	SeedMapStates(ctx context.Context, mapName string, names []string) error
	MapStates(ctx context.Context, mapName string) ([]string, error)
}
