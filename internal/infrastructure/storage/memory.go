package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dzikowski/barbell-bot/internal/domain/model"
	"github.com/dzikowski/barbell-bot/internal/domain/repository"
)

// MemoryStore is an in-memory PriceStore. It backs tests and serves as the
// fallback when ClickHouse is unreachable, so a cycle can still run with the
// history accumulated since process start.
type MemoryStore struct {
	mu     sync.RWMutex
	prices []model.PricePoint
	trades []model.Trade
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

var _ repository.PriceStore = (*MemoryStore)(nil)

func (s *MemoryStore) SavePrices(ctx context.Context, prices []model.PricePoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices = append(s.prices, prices...)
	return nil
}

func (s *MemoryStore) PricesSince(ctx context.Context, token string, since time.Time) ([]model.PricePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.PricePoint, 0)
	for _, p := range s.prices {
		if p.TokenIn == token && !p.Date.Before(since) {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

func (s *MemoryStore) SaveTrades(ctx context.Context, trades []model.Trade) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trades = append(s.trades, trades...)
	return nil
}

// Trades returns a snapshot of everything saved so far.
func (s *MemoryStore) Trades() []model.Trade {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Trade, len(s.trades))
	copy(out, s.trades)
	return out
}
