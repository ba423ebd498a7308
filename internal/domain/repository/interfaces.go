// Package repository defines the ports the rebalancing engine depends on.
// Domain logic depends only on these interfaces; infrastructure packages
// provide the concrete implementations.
package repository

import (
	"context"
	"time"

	"github.com/dzikowski/barbell-bot/internal/domain/model"
)

// PriceStore is append-only persistence for price samples and trade records.
// Retention and pruning are the store's concern, not the engine's.
type PriceStore interface {
	// SavePrices appends a batch of price samples.
	SavePrices(ctx context.Context, prices []model.PricePoint) error

	// PricesSince returns samples where tokenIn == token recorded at or after
	// the given time, ordered chronologically.
	PricesSince(ctx context.Context, token string, since time.Time) ([]model.PricePoint, error)

	// SaveTrades appends reconciled trade records, successful or not.
	SaveTrades(ctx context.Context, trades []model.Trade) error
}

// PriceCache keeps the freshest sampled price per pair for cheap reads by
// the HTTP surface and tooling. Best-effort; the engine never reads it back
// for decisions.
type PriceCache interface {
	SaveLatestPrice(ctx context.Context, price model.PricePoint) error
	GetLatestPrice(ctx context.Context, tokenIn, tokenOut string) (*model.PricePoint, error)
	GetAllLatestPrices(ctx context.Context) ([]model.PricePoint, error)
}

// Dex is the quote/execution collaborator. Any error from it is terminal for
// the current cycle; retry policy lives behind this interface, not in front
// of it.
type Dex interface {
	// FetchSwapPrice quotes a swap of tokenIn for tokenOut with exactly one
	// side of the amount fixed.
	FetchSwapPrice(ctx context.Context, tokenIn, tokenOut string, amount model.SwapAmount) (model.PricePoint, error)

	// FetchBalances returns the wallet's current balances.
	FetchBalances(ctx context.Context) ([]model.Balance, error)

	// Swap executes a swap and returns the receipt with requested amounts.
	Swap(ctx context.Context, tokenIn, tokenOut string, amount model.SwapAmount) (model.SwapReceipt, error)
}

// Signer supplies the wallet identity and signs DEX request payloads.
type Signer interface {
	Wallet() string
	Sign(payload []byte) ([]byte, error)
}

// TradePublisher fans reconciled trades out to downstream consumers.
type TradePublisher interface {
	PublishTrades(ctx context.Context, trades []model.Trade) error
	Close() error
}
