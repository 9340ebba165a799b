package calculator

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Entry is one participant row exactly as it was typed in.
type Entry struct {
	Name      string
	RawAmount string
}

// Result is the outcome of a settlement.
type Result struct {
	// Transactions is the ordered list of transfers. Empty means nothing to settle.
	Transactions []Transaction

	// Names and Amounts are parallel slices of the validated input, in entry
	// order, for chart rendering.
	Names   []string
	Amounts []int64

	Total      int64
	EqualShare decimal.Decimal
	Balances   []Balance
}

// Shares returns each participant's proportion of the total contribution.
func (r *Result) Shares() []Share {
	return Shares(r.Names, r.Amounts)
}

// Settle parses the entries, computes balances and matches debtors with
// creditors. Any invalid row fails the whole computation with a
// *ValidationError that lists every problem found; no partial result is
// returned.
func Settle(entries []Entry) (*Result, error) {
	participants, err := ParseEntries(entries)
	if err != nil {
		return nil, err
	}

	balances, equalShare, err := ComputeBalances(participants)
	if err != nil {
		return nil, err
	}

	transactions, err := MatchTransactions(balances)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Transactions: transactions,
		Names:        make([]string, len(participants)),
		Amounts:      make([]int64, len(participants)),
		EqualShare:   equalShare,
		Balances:     balances,
	}
	for i, p := range participants {
		result.Names[i] = p.Name
		result.Amounts[i] = p.Contribution
		result.Total += p.Contribution
	}

	return result, nil
}

// ParseEntries validates every row and converts it into a Participant.
// Names are trimmed; amounts go through ParseAmount.
func ParseEntries(entries []Entry) ([]Participant, error) {
	if len(entries) == 0 {
		return nil, ErrInvalidCount
	}

	participants := make([]Participant, len(entries))
	var problems []*RowError
	for i, e := range entries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			problems = append(problems, &RowError{Row: i, Field: "name", Err: ErrEmptyName})
		}

		amount, err := ParseAmount(e.RawAmount)
		if err != nil {
			problems = append(problems, &RowError{Row: i, Field: "amount", Err: err})
		}

		participants[i] = Participant{Name: name, Contribution: amount}
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}
	return participants, nil
}
