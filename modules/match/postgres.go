package match

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// postgresStore persists matches, countries, currencies and emission
// requests in Postgres. Name/ticker/requester uniqueness is enforced by
// unique indexes, so concurrent check-then-insert sequences cannot race.
type postgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore wraps an sqlx connection pool as a Store.
func NewPostgresStore(db *sqlx.DB) Store {
	return &postgresStore{db: db}
}

func (s *postgresStore) CreateMatch(ctx context.Context, m Match, countries []string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create match: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO matches (id, map_name, created_at) VALUES ($1, $2, $3)`,
		m.ID, m.MapName, m.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrMatchExists
		}
		return fmt.Errorf("create match: %w", err)
	}

	for _, name := range countries {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO countries (match_id, name) VALUES ($1, $2)`,
			m.ID, name,
		)
		if err != nil {
			return fmt.Errorf("create match: country %q: %w", name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create match: commit: %w", err)
	}
	return nil
}

func (s *postgresStore) MatchByID(ctx context.Context, matchID string) (Match, error) {
	var m Match
	err := s.db.GetContext(ctx, &m,
		`SELECT id, map_name, created_at FROM matches WHERE id = $1`, matchID)
	if errors.Is(err, sql.ErrNoRows) {
		return Match{}, ErrNotFound
	}
	if err != nil {
		return Match{}, fmt.Errorf("match by id: %w", err)
	}
	return m, nil
}

func (s *postgresStore) CountryForUser(ctx context.Context, matchID string, userID int64) (Country, error) {
	var c Country
	err := s.db.GetContext(ctx, &c,
		`SELECT id, match_id, name, owner_telegram_id, COALESCE(currency_id, 0) AS currency_id
		   FROM countries
		  WHERE match_id = $1 AND owner_telegram_id = $2`,
		matchID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return Country{}, ErrNotFound
	}
	if err != nil {
		return Country{}, fmt.Errorf("country for user: %w", err)
	}
	return c, nil
}

func (s *postgresStore) AssignCountry(ctx context.Context, matchID, name string, userID int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE countries SET owner_telegram_id = $3
		  WHERE match_id = $1 AND lower(name) = lower($2)`,
		matchID, name, userID)
	if err != nil {
		return fmt.Errorf("assign country: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *postgresStore) CurrencyNameExists(ctx context.Context, matchID, name string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM currencies
		                 WHERE match_id = $1 AND lower(name) = lower($2))
		     OR EXISTS (SELECT 1 FROM emission_requests
		                 WHERE match_id = $1 AND lower(currency_name) = lower($2))`,
		matchID, name)
	if err != nil {
		return false, fmt.Errorf("currency name exists: %w", err)
	}
	return exists, nil
}

func (s *postgresStore) TickerExists(ctx context.Context, matchID, ticker string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM currencies
		                 WHERE match_id = $1 AND upper(ticker) = upper($2))
		     OR EXISTS (SELECT 1 FROM emission_requests
		                 WHERE match_id = $1 AND upper(ticker) = upper($2))`,
		matchID, ticker)
	if err != nil {
		return false, fmt.Errorf("ticker exists: %w", err)
	}
	return exists, nil
}

func (s *postgresStore) HasPendingRequest(ctx context.Context, matchID string, userID int64) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM emission_requests
		                 WHERE match_id = $1 AND requester_id = $2)`,
		matchID, userID)
	if err != nil {
		return false, fmt.Errorf("has pending request: %w", err)
	}
	return exists, nil
}

func (s *postgresStore) InsertRequest(ctx context.Context, req EmissionRequest) error {
	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO emission_requests
		        (token, match_id, requester_id, country_name, currency_name, ticker,
		         peg_resource, exchange_rate, capitalization, emission_amount,
		         status, created_at, admin_message_id)
		 VALUES (:token, :match_id, :requester_id, :country_name, :currency_name, :ticker,
		         :peg_resource, :exchange_rate, :capitalization, :emission_amount,
		         :status, :created_at, :admin_message_id)`,
		req)
	if err != nil {
		if dupErr := translateUnique(err); dupErr != nil {
			return dupErr
		}
		return fmt.Errorf("insert request: %w", err)
	}
	return nil
}

func (s *postgresStore) SetAdminMessageID(ctx context.Context, token string, messageID int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE emission_requests SET admin_message_id = $2 WHERE token = $1`,
		token, messageID)
	if err != nil {
		return fmt.Errorf("set admin message id: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *postgresStore) RequestByToken(ctx context.Context, token string) (EmissionRequest, error) {
	var req EmissionRequest
	err := s.db.GetContext(ctx, &req,
		`SELECT * FROM emission_requests WHERE token = $1`, token)
	if errors.Is(err, sql.ErrNoRows) {
		return EmissionRequest{}, ErrNotFound
	}
	if err != nil {
		return EmissionRequest{}, fmt.Errorf("request by token: %w", err)
	}
	return req, nil
}

func (s *postgresStore) PendingRequests(ctx context.Context, matchID string) ([]EmissionRequest, error) {
	var out []EmissionRequest
	err := s.db.SelectContext(ctx, &out,
		`SELECT * FROM emission_requests WHERE match_id = $1 ORDER BY created_at`, matchID)
	if err != nil {
		return nil, fmt.Errorf("pending requests: %w", err)
	}
	return out, nil
}

func (s *postgresStore) ApproveRequest(ctx context.Context, token string) (EmissionRequest, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return EmissionRequest{}, fmt.Errorf("approve: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var req EmissionRequest
	err = tx.GetContext(ctx, &req,
		`SELECT * FROM emission_requests WHERE token = $1 FOR UPDATE`, token)
	if errors.Is(err, sql.ErrNoRows) {
		return EmissionRequest{}, ErrNotFound
	}
	if err != nil {
		return EmissionRequest{}, fmt.Errorf("approve: load: %w", err)
	}

	var currencyID int64
	err = tx.GetContext(ctx, &currencyID,
		`INSERT INTO currencies
		        (match_id, country_name, name, ticker, peg_resource,
		         exchange_rate, capitalization, emission_amount, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		req.MatchID, req.CountryName, req.CurrencyName, req.Ticker, req.PegResource,
		req.ExchangeRate, req.Capitalization, req.EmissionAmount, req.CreatedAt)
	if err != nil {
		return EmissionRequest{}, fmt.Errorf("approve: register currency: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE countries SET currency_id = $3
		  WHERE match_id = $1 AND lower(name) = lower($2)`,
		req.MatchID, req.CountryName, currencyID)
	if err != nil {
		return EmissionRequest{}, fmt.Errorf("approve: attach currency: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM emission_requests WHERE token = $1`, token)
	if err != nil {
		return EmissionRequest{}, fmt.Errorf("approve: delete request: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return EmissionRequest{}, fmt.Errorf("approve: commit: %w", err)
	}
	req.Status = StatusApproved
	return req, nil
}

func (s *postgresStore) RejectRequest(ctx context.Context, token string) (EmissionRequest, error) {
	var req EmissionRequest
	err := s.db.GetContext(ctx, &req,
		`DELETE FROM emission_requests WHERE token = $1 RETURNING *`, token)
	if errors.Is(err, sql.ErrNoRows) {
		return EmissionRequest{}, ErrNotFound
	}
	if err != nil {
		return EmissionRequest{}, fmt.Errorf("reject: %w", err)
	}
	req.Status = StatusRejected
	return req, nil
}

func (s *postgresStore) SeedMapStates(ctx context.Context, mapName string, names []string) error {
	for _, name := range names {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO map_states (map_name, name) VALUES ($1, $2)
			 ON CONFLICT DO NOTHING`,
			mapName, name)
		if err != nil {
			return fmt.Errorf("seed map states: %w", err)
		}
	}
	return nil
}

func (s *postgresStore) MapStates(ctx context.Context, mapName string) ([]string, error) {
	var names []string
	err := s.db.SelectContext(ctx, &names,
		`SELECT name FROM map_states WHERE map_name = $1 ORDER BY name`, mapName)
	if err != nil {
		return nil, fmt.Errorf("map states: %w", err)
	}
	if len(names) == 0 {
		return nil, ErrUnknownMap
	}
	return names, nil
}

// translateUnique maps Postgres unique violations onto typed domain errors,
// or returns nil when err is not a unique violation.
func translateUnique(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return nil
	}
	switch {
	case strings.Contains(pqErr.Constraint, "requester"):
		return ErrPendingExists
	case strings.Contains(pqErr.Constraint, "ticker"):
		return ErrDuplicateTicker
	case strings.Contains(pqErr.Constraint, "name"):
		return ErrDuplicateName
	default:
		return ErrDuplicateName
	}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
