package calculator

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// EqualSharePrecision is the number of decimal places kept when the equal
// share is reported for display.
const EqualSharePrecision = 4

var maxTotal = decimal.NewFromInt(math.MaxInt64)

// Participant is one validated row: a non-empty name and what that person paid.
type Participant struct {
	Name         string
	Contribution int64 // smallest currency unit, never negative
}

// Balance is a participant's position against the equal share.
type Balance struct {
	Name         string
	Contribution int64
	Share        int64 // whole units this participant is expected to cover
	Amount       int64 // Contribution - Share. Positive = is owed money, Negative = owes money
}

// ComputeBalances derives each participant's balance from their contribution
// and the equal share of the total. It also returns the exact equal share
// (total / count) rounded to EqualSharePrecision places.
//
// Rounding policy: every participant covers floor(total / count) units, and
// the total mod count leftover units are covered one each by the first
// participants in entry order. The shares always add up to the total, so the
// balances add up to exactly zero.
func ComputeBalances(participants []Participant) ([]Balance, decimal.Decimal, error) {
	if len(participants) == 0 {
		return nil, decimal.Zero, ErrInvalidCount
	}

	total := decimal.Zero
	for _, p := range participants {
		if p.Contribution < 0 {
			return nil, decimal.Zero, fmt.Errorf("%w: negative contribution for %q", ErrInvalidAmount, p.Name)
		}
		total = total.Add(decimal.NewFromInt(p.Contribution))
	}
	if total.GreaterThan(maxTotal) {
		return nil, decimal.Zero, fmt.Errorf("%w: total of %s is too large", ErrInvalidAmount, total)
	}

	count := decimal.NewFromInt(int64(len(participants)))
	equalShare := total.DivRound(count, EqualSharePrecision)

	quotient, remainder := total.QuoRem(count, 0)
	base := quotient.IntPart()
	leftover := remainder.IntPart()

	balances := make([]Balance, len(participants))
	for i, p := range participants {
		share := base
		if int64(i) < leftover {
			share++
		}
		balances[i] = Balance{
			Name:         p.Name,
			Contribution: p.Contribution,
			Share:        share,
			Amount:       p.Contribution - share,
		}
	}

	return balances, equalShare, nil
}
