package match

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/m3rciful/econbot/core/bootstrap"
	"github.com/m3rciful/econbot/core/logger"
	"log/slog"
)

var matchNumberRe = regexp.MustCompile(`^\d+$`)

// Service exposes match administration on top of a Store.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService constructs a match Service.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// CreateMatch creates a match and populates its countries from the seeded
// roster of mapName.
func (s *Service) CreateMatch(ctx context.Context, matchID, mapName string) (Match, error) {
	if !matchNumberRe.MatchString(matchID) {
		return Match{}, fmt.Errorf("match number must be digits, got %q", matchID)
	}

	countries, err := s.store.MapStates(ctx, mapName)
	if err != nil {
		return Match{}, fmt.Errorf("create match %s: %w", matchID, err)
	}

	m := Match{ID: matchID, MapName: mapName, CreatedAt: s.now()}
	if err := s.store.CreateMatch(ctx, m, countries); err != nil {
		return Match{}, err
	}

	logger.SVCMatches.Info("match created",
		slog.String("event", "match.create"),
		slog.String("match_id", matchID),
		slog.String("mode", mapName),
		slog.Int("count", len(countries)),
	)
	return m, nil
}

// PendingRequests lists unresolved emission requests for a match.
func (s *Service) PendingRequests(ctx context.Context, matchID string) ([]EmissionRequest, error) {
	return s.store.PendingRequests(ctx, matchID)
}

// RosterSeeder loads the built-in map rosters into the store at startup.
// Idempotent: already-seeded entries are left untouched.
func RosterSeeder() bootstrap.Seeder {
	return bootstrap.SeederFunc(func(ctx context.Context, storage bootstrap.Storage) error {
		store, ok := storage.(Store)
		if !ok {
			return fmt.Errorf("roster seeder: unexpected storage %T", storage)
		}
		for mapName, names := range Rosters() {
			if err := store.SeedMapStates(ctx, mapName, names); err != nil {
				return err
			}
			logger.SEED.Debug("map roster seeded",
				slog.String("event", "seed.roster"),
				slog.String("mode", mapName),
				slog.Int("count", len(names)),
			)
		}
		return nil
	})
}
