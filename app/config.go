package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "github.com/m3rciful/econbot/core/config"
	coredatabase "github.com/m3rciful/econbot/core/database"
	"github.com/m3rciful/econbot/modules/emission"
	"github.com/m3rciful/econbot/modules/match"
)

// GameConfig holds settings specific to the economic game.
type GameConfig struct {
	// Timezone stamps emission requests; the game runs on one wall clock.
	Timezone   string   `yaml:"timezone" envconfig:"GAME_TIMEZONE"`
	DefaultMap string   `yaml:"default_map" envconfig:"GAME_DEFAULT_MAP"`
	Resources  []string `yaml:"resources" envconfig:"GAME_RESOURCES"`
}

// Config aggregates core, database, and game configuration.
type Config struct {
	Core     coreconfig.Config   `yaml:",inline"`
	Database coredatabase.Config `yaml:"database"`
	Game     GameConfig          `yaml:"game"`
}

// CoreConfig exposes the embedded core configuration for the shared runner.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Core
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Core); err != nil {
		return nil, err
	}
	if err := normalizeGame(&cfg.Game); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func normalizeGame(g *GameConfig) error {
	if strings.TrimSpace(g.Timezone) == "" {
		g.Timezone = "Europe/Moscow"
	}
	if strings.TrimSpace(g.DefaultMap) == "" {
		g.DefaultMap = match.MapGreatWar
	}
	if len(g.Resources) == 0 {
		g.Resources = emission.DefaultResources
	}
	for i, r := range g.Resources {
		r = strings.ToLower(strings.TrimSpace(r))
		if r == "" {
			return fmt.Errorf("game.resources contains an empty entry")
		}
		g.Resources[i] = r
	}
	return nil
}
