package models

// Settlement is a saved settlement result.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// Title is the human-readable name. Auto-generated from the participant
	// names when left empty.
	Title string

	// Contributions are the participant rows in entry order.
	Contributions []Contribution

	// Transfers are the settlement instructions in the order they were computed.
	// Empty means everyone paid the same.
	Transfers []Transfer

	// Total is the sum of all contributions.
	Total int64

	// EqualShare is the exact per-person share as a decimal string (e.g. "33.3333").
	EqualShare string

	// Locale and Currency record how the result was presented when saved.
	Locale   string
	Currency string

	// CreatedAt is the Unix timestamp when the settlement was saved.
	CreatedAt int64

	// CreatedBy is the token subject that saved it, empty when auth is off.
	CreatedBy string
}

// Contribution is what one participant paid.
type Contribution struct {
	Name   string
	Amount int64
}

// Transfer is one instructed payment from a debtor to a creditor.
type Transfer struct {
	From   string
	To     string
	Amount int64
}

// Names returns the participant names in entry order.
func (s *Settlement) Names() []string {
	names := make([]string, len(s.Contributions))
	for i, c := range s.Contributions {
		names[i] = c.Name
	}
	return names
}

// Amounts returns the contributed amounts in entry order.
func (s *Settlement) Amounts() []int64 {
	amounts := make([]int64, len(s.Contributions))
	for i, c := range s.Contributions {
		amounts[i] = c.Amount
	}
	return amounts
}
