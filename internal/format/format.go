// Package format renders settlement results as human-readable, localized text.
//
// Amounts are grouped according to the printer's locale ("1,200" in English),
// and sentences come from the message catalog registered in catalog.go.
package format

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/mmynk/dongyar/internal/calculator"
)

// DefaultCurrency is the unit name used when none is configured.
const DefaultCurrency = "toman"

// Printer formats amounts and settlement instructions for one locale.
type Printer struct {
	tag      language.Tag
	p        *message.Printer
	currency string
}

// NewPrinter creates a Printer for the given BCP 47 locale (e.g. "en", "fa-IR").
// Unknown or malformed locales fall back to English.
func NewPrinter(locale, currency string) *Printer {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	return &Printer{
		tag:      tag,
		p:        message.NewPrinter(tag),
		currency: currency,
	}
}

// Locale returns the locale the printer was created for.
func (p *Printer) Locale() string {
	return p.tag.String()
}

// Currency returns the unit name printed after amounts.
func (p *Printer) Currency() string {
	return p.currency
}

// Transfer renders one settlement instruction, e.g. "B owes A 100 toman".
func (p *Printer) Transfer(t calculator.Transaction) string {
	return p.p.Sprintf(msgTransfer, t.From, t.To, t.Amount, p.currency)
}

// NothingToSettle is shown instead of an empty transfer list.
func (p *Printer) NothingToSettle() string {
	return p.p.Sprintf(msgNothingToSettle)
}

// Transfers renders every transfer in order. An empty list yields a single
// NothingToSettle line so callers never show a blank result.
func (p *Printer) Transfers(txs []calculator.Transaction) []string {
	if len(txs) == 0 {
		return []string{p.NothingToSettle()}
	}
	lines := make([]string, len(txs))
	for i, t := range txs {
		lines[i] = p.Transfer(t)
	}
	return lines
}

// Share renders one chart slice, e.g. "A: 300 toman (50.0%)".
func (p *Printer) Share(s calculator.Share) string {
	return p.p.Sprintf(msgShare, s.Name, s.Amount, p.currency, Percent(s.Percent))
}

// EqualShare renders the per-person share line, rounded to a whole unit.
func (p *Printer) EqualShare(share decimal.Decimal) string {
	return p.p.Sprintf(msgEqualShare, share.Round(0).IntPart(), p.currency)
}

// Percent formats a percentage with one decimal place, like a pie chart label.
func Percent(d decimal.Decimal) string {
	return d.StringFixed(calculator.SharePrecision) + "%"
}
