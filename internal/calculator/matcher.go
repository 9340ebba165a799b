package calculator

import "fmt"

// Transaction is a single instructed transfer from a debtor to a creditor.
type Transaction struct {
	From   string // Person who owes
	To     string // Person who is owed
	Amount int64
}

// position is a creditor's surplus or a debtor's deficit, always positive.
type position struct {
	name   string
	amount int64
}

// MatchTransactions turns balances into an ordered list of transfers that
// brings every balance to zero.
//
// Algorithm:
//   - Creditors (positive balance) and debtors (negative balance) keep the
//     order in which participants were entered. Settled participants are skipped.
//   - The current debtor pays the current creditor min(deficit, surplus).
//   - Whichever side reaches zero moves on to the next person; both move when
//     the amounts were equal.
//
// This is a single greedy pass and does not look for the smallest possible
// number of transfers, but it never emits more than debtors+creditors-1.
// An empty result means everyone is already settled.
func MatchTransactions(balances []Balance) ([]Transaction, error) {
	var creditors, debtors []position
	for _, b := range balances {
		switch {
		case b.Amount > 0:
			creditors = append(creditors, position{name: b.Name, amount: b.Amount})
		case b.Amount < 0:
			debtors = append(debtors, position{name: b.Name, amount: -b.Amount})
		}
	}

	transactions := make([]Transaction, 0, max(0, len(debtors)+len(creditors)-1))
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor, creditor := &debtors[i], &creditors[j]

		pay := min(debtor.amount, creditor.amount)
		transactions = append(transactions, Transaction{
			From:   debtor.name,
			To:     creditor.name,
			Amount: pay,
		})

		debtor.amount -= pay
		creditor.amount -= pay

		if debtor.amount == 0 {
			i++
		}
		if creditor.amount == 0 {
			j++
		}
	}

	if i < len(debtors) || j < len(creditors) {
		return nil, fmt.Errorf("%w: %d debtor(s) and %d creditor(s) left unmatched",
			ErrInternalInconsistency, len(debtors)-i, len(creditors)-j)
	}

	return transactions, nil
}
