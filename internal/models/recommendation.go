package models

// Action is a recommendation verdict.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionHold Action = "HOLD"
	ActionSell Action = "SELL"
)

// Recommendation is a mock AI-style suggestion for one symbol.
type Recommendation struct {
	Symbol        string  `json:"symbol"`
	Action        Action  `json:"action"`
	Confidence    float64 `json:"confidence"` // 0..1
	Rationale     string  `json:"rationale"`
	Price         float64 `json:"price"`
	PercentChange float64 `json:"percent_change"`
	Held          bool    `json:"held"`
}
