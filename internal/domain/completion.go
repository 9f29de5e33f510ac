package domain

import "github.com/shopspring/decimal"

// Completion is one generated assistant reply plus the provider's usage
// report. Cost is zero when the provider does not price the call.
type Completion struct {
	Text         string
	InputTokens  int64
	OutputTokens int64
	Cost         decimal.Decimal
}
