package emission

import (
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/econbot/core/telegram/keyboard"
)

// Callback keys registered for the emission flow.
const (
	CallbackStart    = "emission_start"
	CallbackResource = "emission_resource"
	CallbackConfirm  = "emission_confirm"
	CallbackRestart  = "emission_restart"
	CallbackApprove  = "emission_approve"
	CallbackReject   = "emission_reject"
)

func startKeyboard(matchID string) *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "💰 Request emission", Unique: CallbackStart, Data: matchID},
	})
}

func resourceKeyboard(matchID string, resources []string) *tele.ReplyMarkup {
	buttons := make([]keyboard.InlineBtn, 0, len(resources))
	for _, res := range resources {
		buttons = append(buttons, keyboard.InlineBtn{
			Text:   res,
			Unique: CallbackResource,
			Data:   matchID + "|" + res,
		})
	}
	return keyboard.InlineButtonsNPerRow(buttons, 2)
}

func reviewKeyboard(matchID string) *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: "✅ Everything is correct", Unique: CallbackConfirm, Data: matchID},
		},
		[]keyboard.InlineBtn{
			{Text: "🔄 Fill in again", Unique: CallbackRestart, Data: matchID},
		},
	)
}

func adminDecisionKeyboard(token string) *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: "✅ Approve", Unique: CallbackApprove, Data: token},
			{Text: "❌ Reject", Unique: CallbackReject, Data: token},
		},
	)
}
