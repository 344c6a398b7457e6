package emission

import (
	"errors"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/econbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/econbot/core/telegram/helpers"
	"github.com/m3rciful/econbot/modules/match"
)

const textEmissionUsage = "Usage: /emission <match number>"

func textEmissionIntro(matchID string) string {
	return "*Match:* " + matchID + "\n\n" +
		"_Here you can issue the national currency of your state._\n" +
		"Press the button below to start filling in the emission form."
}

func (m *Module) onEmissionCommand(c tele.Context) error {
	args := c.Args()
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return tghelpers.SendMD(c, textEmissionUsage)
	}
	matchID := strings.TrimSpace(args[0])
	return tghelpers.SendMD(c, textEmissionIntro(matchID), startKeyboard(matchID))
}

func (m *Module) onStart(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "emission.start")
	matchID := callbacks.CallbackPayload(c)
	if matchID == "" {
		return nil
	}
	return m.workflow.Handle(ctx, c.Sender().ID, StartForm{MatchID: matchID})
}

// onFormText receives every text message while an emission session is
// active; the workflow dispatches on the session's current step.
func (m *Module) onFormText(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "emission.form")
	return m.workflow.Handle(ctx, c.Sender().ID, SubmitText{Text: c.Text()})
}

func (m *Module) onResource(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "emission.resource")
	parts, err := callbacks.PayloadParts(c, "|")
	if err != nil || len(parts) != 2 {
		return nil
	}
	return m.workflow.Handle(ctx, c.Sender().ID, ChooseResource{
		MatchID:  parts[0],
		Resource: parts[1],
	})
}

func (m *Module) onConfirm(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "emission.confirm")
	return m.workflow.Handle(ctx, c.Sender().ID, ConfirmDraft{MatchID: callbacks.CallbackPayload(c)})
}

func (m *Module) onRestart(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "emission.restart")
	return m.workflow.Handle(ctx, c.Sender().ID, RestartForm{MatchID: callbacks.CallbackPayload(c)})
}

func (m *Module) onApprove(c tele.Context) error {
	if c.Sender().ID != m.adminID {
		return nil
	}
	ctx := tghelpers.WithHandler(c, "emission.approve")
	token := callbacks.CallbackPayload(c)

	req, err := m.gate.Approve(ctx, token)
	if errors.Is(err, match.ErrNotFound) {
		return tghelpers.EditOrSendMD(c, textDecisionTaken)
	}
	if err != nil {
		return err
	}
	return tghelpers.EditOrSendMD(c, renderAdminRequest(req)+"\n\n✅ *Approved*")
}

func (m *Module) onReject(c tele.Context) error {
	if c.Sender().ID != m.adminID {
		return nil
	}
	ctx := tghelpers.WithHandler(c, "emission.reject")
	token := callbacks.CallbackPayload(c)

	req, err := m.gate.Reject(ctx, token)
	if errors.Is(err, match.ErrNotFound) {
		return tghelpers.EditOrSendMD(c, textDecisionTaken)
	}
	if err != nil {
		return err
	}
	return tghelpers.EditOrSendMD(c, renderAdminRequest(req)+"\n\n❌ *Rejected*")
}
