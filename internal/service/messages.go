package service

// Participant is one form row: a name and the raw payment text, e.g. "1,200+800".
type Participant struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

// SettleRequest asks for a settlement of the given participants.
type SettleRequest struct {
	Participants []Participant `json:"participants"`

	// Save persists the result so it can be fetched with GetSettlement.
	Save  bool   `json:"save,omitempty"`
	Title string `json:"title,omitempty"`

	// Locale selects the language and digit grouping of the rendered text.
	// Empty uses the server default.
	Locale string `json:"locale,omitempty"`

	// Currency is the unit name shown after amounts. Empty uses the server default.
	Currency string `json:"currency,omitempty"`
}

// SettleResponse carries the computed settlement.
type SettleResponse struct {
	Settlement SettlementView `json:"settlement"`
}

// GetSettlementRequest fetches a saved settlement.
type GetSettlementRequest struct {
	SettlementID string `json:"settlement_id"`
	Locale       string `json:"locale,omitempty"`
}

// GetSettlementResponse carries a saved settlement.
type GetSettlementResponse struct {
	Settlement SettlementView `json:"settlement"`
}

// DeleteSettlementRequest removes a saved settlement.
type DeleteSettlementRequest struct {
	SettlementID string `json:"settlement_id"`
}

// DeleteSettlementResponse is empty on success.
type DeleteSettlementResponse struct{}

// SettlementView is a settlement rendered for display.
type SettlementView struct {
	// SettlementID and Title are set only for saved settlements.
	SettlementID string `json:"settlement_id,omitempty"`
	Title        string `json:"title,omitempty"`

	Transfers []Transfer `json:"transfers"`

	// Message is set when there is nothing to settle.
	Message string `json:"message,omitempty"`

	// Names and Amounts are the validated input in entry order; Shares is
	// the same data as chart proportions.
	Names   []string `json:"names"`
	Amounts []int64  `json:"amounts"`
	Shares  []Share  `json:"shares"`

	Total      int64  `json:"total"`
	EqualShare string `json:"equal_share"`
	Locale     string `json:"locale"`
	Currency   string `json:"currency"`
	CreatedAt  int64  `json:"created_at,omitempty"`
}

// Transfer is one settlement instruction plus its rendered sentence.
type Transfer struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount int64  `json:"amount"`
	Text   string `json:"text"`
}

// Share is one slice of the contribution chart.
type Share struct {
	Name    string `json:"name"`
	Amount  int64  `json:"amount"`
	Percent string `json:"percent"`
}
