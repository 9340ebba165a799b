package calculator

import "github.com/shopspring/decimal"

// SharePrecision is the number of decimal places kept in Share.Percent.
const SharePrecision = 1

var hundred = decimal.NewFromInt(100)

// Share is one slice of the contribution chart.
type Share struct {
	Name    string
	Amount  int64
	Percent decimal.Decimal
}

// Shares computes what percentage of the total each participant paid.
// names and amounts are parallel; extra elements in the longer slice are
// ignored. When nobody paid anything every share is zero.
func Shares(names []string, amounts []int64) []Share {
	n := min(len(names), len(amounts))

	total := decimal.Zero
	for _, a := range amounts[:n] {
		total = total.Add(decimal.NewFromInt(a))
	}

	shares := make([]Share, n)
	for i := 0; i < n; i++ {
		percent := decimal.Zero
		if total.IsPositive() {
			percent = decimal.NewFromInt(amounts[i]).Mul(hundred).DivRound(total, SharePrecision)
		}
		shares[i] = Share{Name: names[i], Amount: amounts[i], Percent: percent}
	}
	return shares
}
