package model

// TradeMode is which side of a negotiation the account is on.
type TradeMode string

const (
	TradeBuy  TradeMode = "buy"  // account buys from the counterparty
	TradeSell TradeMode = "sell" // account sells to the counterparty
)

// Valid reports whether m is a known trade mode.
func (m TradeMode) Valid() bool {
	return m == TradeBuy || m == TradeSell
}
