package app

import (
	"errors"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/m3rciful/econbot/core/telegram/helpers"
	"github.com/m3rciful/econbot/core/telegram/ui"
	"github.com/m3rciful/econbot/modules/match"
)

const startText = "*Welcome to the economic game bot.*\n\n" +
	"Here states issue their national currencies.\n" +
	"Use /emission <match number> to request a currency emission for your state."

func (a *App) onStartCommand(c tele.Context) error {
	return tghelpers.SendMD(c, startText)
}

func (a *App) onNewMatchCommand(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "app.newmatch")
	args := c.Args()
	if len(args) < 1 || len(args) > 2 {
		return tghelpers.SendMD(c, "Usage: /newmatch <number> [map]")
	}

	mapName := a.cfg.Game.DefaultMap
	if len(args) == 2 {
		mapName = strings.ToLower(strings.TrimSpace(args[1]))
	}

	m, err := a.matches.CreateMatch(ctx, strings.TrimSpace(args[0]), mapName)
	switch {
	case errors.Is(err, match.ErrMatchExists):
		return tghelpers.SendMD(c, "Match *"+args[0]+"* already exists.")
	case errors.Is(err, match.ErrUnknownMap):
		return tghelpers.SendMD(c, "Unknown map *"+mapName+"*.")
	case err != nil:
		return tghelpers.SendMD(c, "Failed to create the match: "+err.Error())
	}
	return tghelpers.SendMD(c, fmt.Sprintf("Match *%s* created on map *%s*.", m.ID, m.MapName))
}

func (a *App) onPendingCommand(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "app.pending")
	args := c.Args()
	if len(args) != 1 {
		return tghelpers.SendMD(c, "Usage: /pending <match number>")
	}
	matchID := strings.TrimSpace(args[0])

	reqs, err := a.matches.PendingRequests(ctx, matchID)
	if err != nil {
		return tghelpers.SendMD(c, "Failed to list pending requests: "+err.Error())
	}
	if len(reqs) == 0 {
		return tghelpers.SendMD(c, "No pending emission requests in match *"+matchID+"*.")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*Pending emission requests in match %s:*\n", matchID)
	for _, req := range reqs {
		fmt.Fprintf(&b, "\n• %s — %s (%s), %s units\n  `%s`",
			req.CountryName, req.CurrencyName, req.Ticker,
			req.EmissionAmount.String(), req.Token,
		)
	}
	return tghelpers.SendMD(c, b.String())
}

type fallbacks struct{}

func newFallbacks() ui.FallbackProvider { return fallbacks{} }

// UnknownText answers text that matched neither a command nor an active form.
func (fallbacks) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendMD(c, "I did not understand that. Try /start.")
	}
}

func (fallbacks) UnknownDocument() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendMD(c, "I do not expect any files here.")
	}
}

func (fallbacks) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return c.Respond(&tele.CallbackResponse{Text: "This button is no longer active"})
	}
}
