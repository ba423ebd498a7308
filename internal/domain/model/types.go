// Package model holds the value objects produced and consumed during one
// rebalancing cycle. Everything here is owned by the cycle that builds it;
// nothing survives in memory between cycles except through storage.
package model

import "time"

// PricePoint is one sampled swap price, immutable once recorded.
// Price is expressed in TokenOut units per one TokenIn.
type PricePoint struct {
	Date      time.Time `json:"date"`
	TokenIn   string    `json:"tokenIn"`
	AmountIn  float64   `json:"amountIn"`
	TokenOut  string    `json:"tokenOut"`
	AmountOut float64   `json:"amountOut"`
	Price     float64   `json:"price"`
	Fee       float64   `json:"fee"`
}

// Balance is a raw on-chain balance as reported by the DEX.
type Balance struct {
	Token    string  `json:"token"`
	Amount   float64 `json:"amount"`
	Decimals int     `json:"decimals"`
}

// Direction says which side of the 24h mean the last sample landed on.
// A deviation of exactly zero counts as MoreExpensive so the output stays
// a deterministic two-way split.
type Direction string

const (
	MoreExpensive Direction = "more expensive"
	Cheaper       Direction = "cheaper"
)

// Stats are 24h price statistics for one tracked token, derived fresh each
// cycle and never persisted.
type Stats struct {
	Token            string    `json:"token"`
	SampleCount      int       `json:"sampleCount"`
	Mean             float64   `json:"mean"`
	LastPrice        float64   `json:"lastPrice"`
	StdDev           float64   `json:"stdDev"`
	StdDevPct        float64   `json:"stdDevPct"`
	LastDeviationPct float64   `json:"lastDeviationPct"`
	Direction        Direction `json:"direction"`
}

// BalanceInfo is a valued balance: the raw amount plus its worth in base
// and reference units and its share of the portfolio's base-token value.
type BalanceInfo struct {
	Token       string  `json:"token"`
	Amount      float64 `json:"amount"`
	Decimals    int     `json:"decimals"`
	PriceInBase float64 `json:"priceInBase"`
	PriceInRef  float64 `json:"priceInRef"`
	ValueInBase float64 `json:"valueInBase"`
	ValueInRef  float64 `json:"valueInRef"`
	Percent     float64 `json:"percent"`
}

// RebalancePlan identifies the most underweight and most overweight non-base
// token for one cycle, together with their stats and the thresholds the
// decision was made against.
type RebalancePlan struct {
	Min            BalanceInfo
	Max            BalanceInfo
	MinStats       Stats
	MaxStats       Stats
	TargetShare    float64
	BuyThreshold   float64
	SellThreshold  float64
	TotalBaseValue float64
}

// TradeSide is the direction of a trade instruction relative to the base token.
type TradeSide string

const (
	Buy  TradeSide = "buy"
	Sell TradeSide = "sell"
)

// TradeInstruction tells the executor to move BaseAmount base-token units
// into (buy) or out of (sell) Token.
type TradeInstruction struct {
	Side       TradeSide
	Token      string
	BaseAmount float64
}

// SwapReceipt is what the DEX returns for an executed swap. Amounts are the
// requested ones, not the settled ones; settled amounts come from balance
// deltas during reconciliation.
type SwapReceipt struct {
	SwapID    string    `json:"swapId"`
	Date      time.Time `json:"date"`
	TokenIn   string    `json:"tokenIn"`
	AmountIn  float64   `json:"amountIn"`
	TokenOut  string    `json:"tokenOut"`
	AmountOut float64   `json:"amountOut"`
}

// Trade is the reconciled outcome of one swap, derived from before/after
// balance snapshots. A failed or partial swap is still a Trade, with
// WasSuccessful false.
type Trade struct {
	Date          time.Time `json:"date"`
	SwapID        string    `json:"swapId"`
	TokenIn       string    `json:"tokenIn"`
	AmountIn      float64   `json:"amountIn"`
	TokenOut      string    `json:"tokenOut"`
	AmountOut     float64   `json:"amountOut"`
	WasSuccessful bool      `json:"wasSuccessful"`
}
