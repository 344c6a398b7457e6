package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/econbot/core/bootstrap"
	corecmd "github.com/m3rciful/econbot/core/cmd"
	coretelegram "github.com/m3rciful/econbot/core/telegram"
	"github.com/m3rciful/econbot/core/telegram/commands"
	"github.com/m3rciful/econbot/core/telegram/router"
	"github.com/m3rciful/econbot/modules/emission"
	"github.com/m3rciful/econbot/modules/match"
)

// App wires the bot: storage, match administration, and the emission module.
type App struct {
	cfg      *Config
	db       *sqlx.DB
	store    match.Store
	matches  *match.Service
	emission *emission.Module
}

// LoadConfig adapts Load to the shared runner contract.
func LoadConfig(path string) (corecmd.ConfigCarrier, error) {
	return Load(path)
}

// Bootstrap initializes infrastructure and assembles the application.
func Bootstrap(carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg, ok := carrier.(*Config)
	if !ok {
		return nil, fmt.Errorf("app: unexpected config type %T", carrier)
	}

	res, err := bootstrap.Run(bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.Game.Timezone)
	if err != nil {
		_ = res.DB.Close()
		return nil, fmt.Errorf("app: invalid game.timezone %q: %w", cfg.Game.Timezone, err)
	}

	store := match.NewPostgresStore(res.DB)

	seedCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, seeder := range []bootstrap.Seeder{match.RosterSeeder()} {
		if err := seeder.Seed(seedCtx, store); err != nil {
			_ = res.DB.Close()
			return nil, fmt.Errorf("app: seeding failed: %w", err)
		}
	}

	return &App{
		cfg:     cfg,
		db:      res.DB,
		store:   store,
		matches: match.NewService(store),
		emission: emission.NewModule(emission.ModuleConfig{
			Store:     store,
			AdminID:   cfg.Core.Telegram.AdminID,
			Resources: cfg.Game.Resources,
			Location:  loc,
		}),
	}, nil
}

// TelegramRunOptions assembles routes, middlewares and lifecycle hooks.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()

	a.emission.Register(reg)

	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.onStartCommand,
		Description: "How to use the bot",
	})
	reg.RegisterCommand("/newmatch", commands.Command{
		Handler:     a.onNewMatchCommand,
		Description: "Create a match with its map roster",
		AdminOnly:   true,
	})
	reg.RegisterCommand("/pending", commands.Command{
		Handler:     a.onPendingCommand,
		Description: "List unresolved emission requests",
		AdminOnly:   true,
	})

	fallbacks := newFallbacks()
	reg.SetCallbackNotFound(fallbacks.UnknownCallback())

	routes := []coretelegram.Route{
		router.CallbackRoute(reg, router.CallbackOptions{NotFound: fallbacks.UnknownCallback()}),
	}
	routes = append(routes, router.TextRoutes(a.emission.Sessions(), reg, router.TextOptions{
		UnknownText:     fallbacks.UnknownText(),
		UnknownDocument: fallbacks.UnknownDocument(),
	})...)
	routes = append(routes, router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: a.cfg.Core.Telegram.AdminID,
	})...)

	return coretelegram.RunOptions{
		Config:      a.cfg.CoreConfig(),
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(a.cfg.CoreConfig(), nil),
		Routes:      routes,
		OnStart: func(ctx context.Context, rt coretelegram.Runtime) error {
			a.emission.Notifier().Bind(rt.Bot)
			return nil
		},
		OnStop: func(ctx context.Context, rt coretelegram.Runtime) error {
			return a.db.Close()
		},
	}, nil
}
