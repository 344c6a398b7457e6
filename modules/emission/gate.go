package emission

import (
	"context"

	"log/slog"

	"github.com/m3rciful/econbot/core/logger"
	"github.com/m3rciful/econbot/modules/match"
)

// DecisionStore resolves pending requests strictly by token.
type DecisionStore interface {
	ApproveRequest(ctx context.Context, token string) (match.EmissionRequest, error)
	RejectRequest(ctx context.Context, token string) (match.EmissionRequest, error)
}

// Gate is the admin approval side of the emission flow. Both decisions are
// idempotent: a resolved or unknown token yields match.ErrNotFound and no
// state change.
type Gate struct {
	store     DecisionStore
	messenger Messenger
}

// NewGate builds an approval gate over the given store and messenger.
func NewGate(store DecisionStore, messenger Messenger) *Gate {
	return &Gate{store: store, messenger: messenger}
}

// Approve registers the currency on the requesting country and notifies the
// requester. Returns the resolved request for rendering.
func (g *Gate) Approve(ctx context.Context, token string) (match.EmissionRequest, error) {
	req, err := g.store.ApproveRequest(ctx, token)
	if err != nil {
		return match.EmissionRequest{}, err
	}

	logger.SVCEmission.LogAttrs(ctx, slog.LevelInfo, "request.approved",
		slog.String("match_id", req.MatchID),
		slog.String("token", req.Token),
		slog.String("currency", req.CurrencyName),
		slog.String("ticker", req.Ticker),
	)

	if _, err := g.messenger.SendUser(ctx, req.RequesterID, textApproved(req), nil); err != nil {
		logger.SVCEmission.LogAttrs(ctx, slog.LevelWarn, "approve.notify_failed",
			slog.String("token", req.Token),
			slog.String("err", err.Error()),
		)
	}
	return req, nil
}

// Reject removes the pending request and notifies the requester.
func (g *Gate) Reject(ctx context.Context, token string) (match.EmissionRequest, error) {
	req, err := g.store.RejectRequest(ctx, token)
	if err != nil {
		return match.EmissionRequest{}, err
	}

	logger.SVCEmission.LogAttrs(ctx, slog.LevelInfo, "request.rejected",
		slog.String("match_id", req.MatchID),
		slog.String("token", req.Token),
		slog.String("currency", req.CurrencyName),
	)

	if _, err := g.messenger.SendUser(ctx, req.RequesterID, textRejected(req), nil); err != nil {
		logger.SVCEmission.LogAttrs(ctx, slog.LevelWarn, "reject.notify_failed",
			slog.String("token", req.Token),
			slog.String("err", err.Error()),
		)
	}
	return req, nil
}
