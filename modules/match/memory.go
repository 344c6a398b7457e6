package match

import (
	"context"
	"strings"
	"sync"
)

// memoryStore is an in-memory Store implementation for tests and development.
// Uniqueness checks and inserts run under one mutex, so concurrent
// submissions cannot both pass the check-then-insert sequence.
type memoryStore struct {
	mu         sync.Mutex
	matches    map[string]Match
	countries  map[string][]*Country
	currencies map[string][]*Currency
	requests   map[string]*EmissionRequest
	mapStates  map[string][]string
	nextID     int64
}

// NewMemoryStore constructs an in-memory Store implementation.
func NewMemoryStore() Store {
	return &memoryStore{
		matches:    make(map[string]Match),
		countries:  make(map[string][]*Country),
		currencies: make(map[string][]*Currency),
		requests:   make(map[string]*EmissionRequest),
		mapStates:  make(map[string][]string),
	}
}

func (s *memoryStore) CreateMatch(ctx context.Context, m Match, countries []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.matches[m.ID]; ok {
		return ErrMatchExists
	}
	s.matches[m.ID] = m
	for _, name := range countries {
		s.nextID++
		s.countries[m.ID] = append(s.countries[m.ID], &Country{
			ID:      s.nextID,
			MatchID: m.ID,
			Name:    name,
		})
	}
	return nil
}

func (s *memoryStore) MatchByID(ctx context.Context, matchID string) (Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[matchID]
	if !ok {
		return Match{}, ErrNotFound
	}
	return m, nil
}

func (s *memoryStore) CountryForUser(ctx context.Context, matchID string, userID int64) (Country, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.countries[matchID] {
		if c.OwnerID == userID {
			return *c, nil
		}
	}
	return Country{}, ErrNotFound
}

func (s *memoryStore) AssignCountry(ctx context.Context, matchID, name string, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.countries[matchID] {
		if strings.EqualFold(c.Name, name) {
			c.OwnerID = userID
			return nil
		}
	}
	return ErrNotFound
}

func (s *memoryStore) CurrencyNameExists(ctx context.Context, matchID, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nameExistsLocked(matchID, name), nil
}

func (s *memoryStore) TickerExists(ctx context.Context, matchID, ticker string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tickerExistsLocked(matchID, ticker), nil
}

func (s *memoryStore) nameExistsLocked(matchID, name string) bool {
	for _, c := range s.currencies[matchID] {
		if strings.EqualFold(c.Name, name) {
			return true
		}
	}
	for _, r := range s.requests {
		if r.MatchID == matchID && strings.EqualFold(r.CurrencyName, name) {
			return true
		}
	}
	return false
}

func (s *memoryStore) tickerExistsLocked(matchID, ticker string) bool {
	for _, c := range s.currencies[matchID] {
		if strings.EqualFold(c.Ticker, ticker) {
			return true
		}
	}
	for _, r := range s.requests {
		if r.MatchID == matchID && strings.EqualFold(r.Ticker, ticker) {
			return true
		}
	}
	return false
}

func (s *memoryStore) HasPendingRequest(ctx context.Context, matchID string, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.requests {
		if r.MatchID == matchID && r.RequesterID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryStore) InsertRequest(ctx context.Context, req EmissionRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.requests {
		if r.MatchID == req.MatchID && r.RequesterID == req.RequesterID {
			return ErrPendingExists
		}
	}
	if s.nameExistsLocked(req.MatchID, req.CurrencyName) {
		return ErrDuplicateName
	}
	if s.tickerExistsLocked(req.MatchID, req.Ticker) {
		return ErrDuplicateTicker
	}
	stored := req
	s.requests[req.Token] = &stored
	return nil
}

func (s *memoryStore) SetAdminMessageID(ctx context.Context, token string, messageID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[token]
	if !ok {
		return ErrNotFound
	}
	r.AdminMessageID = int64(messageID)
	return nil
}

func (s *memoryStore) RequestByToken(ctx context.Context, token string) (EmissionRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[token]
	if !ok {
		return EmissionRequest{}, ErrNotFound
	}
	return *r, nil
}

func (s *memoryStore) PendingRequests(ctx context.Context, matchID string) ([]EmissionRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []EmissionRequest
	for _, r := range s.requests {
		if r.MatchID == matchID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *memoryStore) ApproveRequest(ctx context.Context, token string) (EmissionRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[token]
	if !ok {
		return EmissionRequest{}, ErrNotFound
	}
	s.nextID++
	currency := &Currency{
		ID:             s.nextID,
		MatchID:        r.MatchID,
		CountryName:    r.CountryName,
		Name:           r.CurrencyName,
		Ticker:         r.Ticker,
		PegResource:    r.PegResource,
		ExchangeRate:   r.ExchangeRate,
		Capitalization: r.Capitalization,
		EmissionAmount: r.EmissionAmount,
		CreatedAt:      r.CreatedAt,
	}
	s.currencies[r.MatchID] = append(s.currencies[r.MatchID], currency)
	for _, c := range s.countries[r.MatchID] {
		if strings.EqualFold(c.Name, r.CountryName) {
			c.CurrencyID = currency.ID
		}
	}
	delete(s.requests, token)
	resolved := *r
	resolved.Status = StatusApproved
	return resolved, nil
}

func (s *memoryStore) RejectRequest(ctx context.Context, token string) (EmissionRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[token]
	if !ok {
		return EmissionRequest{}, ErrNotFound
	}
	delete(s.requests, token)
	resolved := *r
	resolved.Status = StatusRejected
	return resolved, nil
}

func (s *memoryStore) SeedMapStates(ctx context.Context, mapName string, names []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mapStates[mapName] = append([]string(nil), names...)
	return nil
}

func (s *memoryStore) MapStates(ctx context.Context, mapName string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	names, ok := s.mapStates[mapName]
	if !ok {
		return nil, ErrUnknownMap
	}
	return append([]string(nil), names...), nil
}
