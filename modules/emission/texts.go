package emission

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/m3rciful/econbot/core/telegram/format"
	"github.com/m3rciful/econbot/modules/match"
)

// resource names come from operator config, so escape them before
// embedding into markdown.
func mdResource(name string) string { return format.EscapeV1(name) }

const (
	textStoreUnavailable = "Something went wrong on our side. Please repeat this step."
	textAlreadyPending   = "*Your request is still awaiting review.*\nFollow the instructions issued after you submitted the emission request."
	textNoCountry        = "You do not hold a state in this match, so you cannot request a currency emission."
	textSessionLost      = "The form data was lost. Let's fill in the emission form again."
	textUseButtons       = "Please use the buttons under the previous message to continue."

	textNameLength    = "❌ The currency name must be 4 to 20 characters long. Try another name:"
	textNameLetters   = "❌ The currency name may contain only letters and spaces, no digits or symbols. Try another name:"
	textTickerFormat  = "❌ The ticker must be exactly 3 latin letters, no digits or cyrillic. Try another ticker:"
	textRateFormat    = "❌ Invalid exchange rate. Enter a plain number such as 1000 or 1000.55, without spaces:"
	textRateRange     = "❌ The exchange rate must be between 1 000.00 and 50 000.00 currency units per 1 unit of the resource:"
	textCapFormat     = "❌ Invalid amount. Enter a whole number without spaces, e.g. 100000:"
	textCapRange      = "❌ The capitalization must be between 50 000 and 500 000 silver:"
	textBadResource   = "❌ Unknown resource. Pick one of the offered resources."
	textDecisionTaken = "Request not found. It may already be resolved."
)

func textNameTaken(name string) string {
	return fmt.Sprintf("❌ *The currency name %s is already taken.*\nPlease pick another one:", name)
}

func textTickerTaken(ticker string) string {
	return fmt.Sprintf("❌ *The ticker %s is already taken.*\nPlease pick another one:", ticker)
}

func formHeader(f Form) string {
	return fmt.Sprintf("*Match:* %s\n*Your state:* %s\n\n", f.MatchID, f.Country)
}

func promptName(f Form) string {
	return formHeader(f) +
		"_Currency name rules:_\n" +
		"1. At least 4 characters\n" +
		"2. At most 20 characters\n" +
		"3. Latin or cyrillic letters\n" +
		"4. No digits or symbols\n\n" +
		"*Enter the name of your currency:*"
}

func promptTicker(f Form) string {
	return formHeader(f) +
		"_Ticker rules:_\n" +
		"1. Exactly 3 characters\n" +
		"2. Latin letters only\n" +
		"3. Short but readable, so the currency is recognized at a glance\n\n" +
		"*Enter the ticker of your currency:*"
}

func promptResource(f Form) string {
	return formHeader(f) +
		"_Pick the resource your currency will be pegged to:_"
}

func promptRate(f Form) string {
	return formHeader(f) +
		fmt.Sprintf("*Enter the exchange rate of your currency to the pegged resource:* _%s_\n\n", mdResource(f.PegResource)) +
		"_Rate rules:_\n" +
		"1. At least 1 000 currency units per 1 unit of the resource\n" +
		"2. At most 50 000 currency units per 1 unit of the resource\n" +
		"3. Write the number without spaces: 1000 or 1000.55\n\n" +
		fmt.Sprintf("_For example, if 50 000 units of your currency equal 1 %s, enter \"50000\"._", mdResource(f.PegResource))
}

func promptCapitalization(f Form) string {
	return formHeader(f) +
		"_Initial emission is the very first issue of your currency, putting it into circulation._\n\n" +
		fmt.Sprintf("*Starting rate of your currency:* %s\n\n", formatDecimal(f.ExchangeRate)) +
		"*Enter how much silver you commit to back your initial emission:*\n" +
		"_Rules:_\n" +
		"1. A whole number without spaces, e.g. 100000\n" +
		"2. Fractions are not allowed"
}

func renderDraft(f Form) string {
	return fmt.Sprintf(
		"*Match:* %s\n*Your state:* %s\n*Request date:* %s\n\n"+
			"_Check that your currency details are correct:_\n"+
			"*Match:* %s\n"+
			"*State:* %s\n"+
			"*Currency name:* %s\n"+
			"*Ticker:* %s\n"+
			"*Pegged resource:* %s\n"+
			"*Rate:* %s units per 1 %s\n"+
			"*Emission volume:* %s units\n"+
			"*Capitalization:* %s silver",
		f.MatchID, f.Country, f.CreatedAt.Format("2006-01-02 15:04:05"),
		f.MatchID, f.Country, f.CurrencyName, f.Ticker, mdResource(f.PegResource),
		formatDecimal(f.ExchangeRate), mdResource(f.PegResource),
		formatDecimal(f.EmissionAmount), formatInt(f.Capitalization),
	)
}

func renderInstructions(f Form) string {
	return fmt.Sprintf(
		"*To complete the emission of your currency:*\n"+
			"1. Open the game and enter match %s\n"+
			"2. Find the bank player (International Monetary Fund)\n"+
			"3. Send a deal: you transfer %s silver in exchange for 1 silver\n\n"+
			"The administrator will confirm your request after the transfer arrives.",
		f.MatchID, formatInt(f.Capitalization),
	)
}

func renderAdminRequest(req match.EmissionRequest) string {
	return fmt.Sprintf(
		"_A state requests an emission of its national currency._\n"+
			"*Request date:* %s\n\n"+
			"*Match:* %s\n"+
			"*State:* %s\n"+
			"*Currency name:* %s\n"+
			"*Ticker:* %s\n"+
			"*Pegged resource:* %s\n"+
			"*Rate:* %s units per 1 %s\n"+
			"*Emission volume:* %s units\n"+
			"*Capitalization:* %s silver\n\n"+
			"_Check the request details and wait for the %s silver transfer before deciding._",
		req.CreatedAt.Format("2006-01-02 15:04:05"),
		req.MatchID, req.CountryName, req.CurrencyName, req.Ticker, mdResource(req.PegResource),
		formatDecimal(req.ExchangeRate), mdResource(req.PegResource),
		formatDecimal(req.EmissionAmount), formatInt(req.Capitalization),
		formatInt(req.Capitalization),
	)
}

func textApproved(req match.EmissionRequest) string {
	return fmt.Sprintf(
		"✅ *Your currency %s (%s) has been approved and registered for %s.*\n"+
			"%s units are now in circulation.",
		req.CurrencyName, req.Ticker, req.CountryName, formatDecimal(req.EmissionAmount),
	)
}

func textRejected(req match.EmissionRequest) string {
	return fmt.Sprintf(
		"❌ *Your emission request for %s (%s) was rejected.*\n"+
			"You may submit a new request.",
		req.CurrencyName, req.Ticker,
	)
}

// formatInt renders an integer with thin space grouping: 250000 -> "250 000".
func formatInt(n int64) string {
	return groupDigits(fmt.Sprintf("%d", n))
}

// formatDecimal renders a decimal with grouping, dropping a zero fraction.
func formatDecimal(d decimal.Decimal) string {
	if d.Equal(d.Truncate(0)) {
		return groupDigits(d.Truncate(0).String())
	}
	s := d.StringFixed(2)
	dot := strings.IndexByte(s, '.')
	return groupDigits(s[:dot]) + s[dot:]
}

func groupDigits(s string) string {
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
