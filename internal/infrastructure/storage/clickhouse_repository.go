// Package storage provides PriceStore implementations: ClickHouse for
// durable, analytical storage of price samples and trade records, and an
// in-memory store used as a fallback and in tests.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/dzikowski/barbell-bot/internal/domain/model"
	"github.com/dzikowski/barbell-bot/internal/domain/repository"
)

// ClickHouseRepository persists price samples and trades in ClickHouse.
// Samples store raw amounts; the price is recomputed as amountOut/amountIn
// on read, so a stored sample can never disagree with its own price.
type ClickHouseRepository struct {
	conn driver.Conn
}

type ClickHouseConfig struct {
	Addr     string
	Username string
	Password string
	Timeout  int
}

func NewClickHouseRepository(cfg ClickHouseConfig) (*ClickHouseRepository, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: "default",
			Username: cfg.Username,
			Password: cfg.Password,
		},
		DialTimeout: time.Duration(cfg.Timeout) * time.Second,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	if err := createTablesIfNotExist(conn); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &ClickHouseRepository{conn: conn}, nil
}

var _ repository.PriceStore = (*ClickHouseRepository)(nil)

func createTablesIfNotExist(conn driver.Conn) error {
	err := conn.Exec(context.Background(), `
		CREATE TABLE IF NOT EXISTS price_samples (
			date DateTime64(3),
			token_in String,
			amount_in Float64,
			token_out String,
			amount_out Float64,
			fee Float64,
			recorded_at DateTime DEFAULT now()
		) ENGINE = MergeTree()
		ORDER BY (token_in, date)
	`)
	if err != nil {
		return err
	}

	err = conn.Exec(context.Background(), `
		CREATE TABLE IF NOT EXISTS trades (
			date DateTime64(3),
			swap_id String,
			token_in String,
			amount_in Float64,
			token_out String,
			amount_out Float64,
			was_successful Bool,
			recorded_at DateTime DEFAULT now()
		) ENGINE = MergeTree()
		ORDER BY (date, swap_id)
	`)

	return err
}

// SavePrices appends a batch of price samples.
func (r *ClickHouseRepository) SavePrices(ctx context.Context, prices []model.PricePoint) error {
	query := `
		INSERT INTO price_samples (
			date, token_in, amount_in, token_out, amount_out, fee
		) VALUES (
			?, ?, ?, ?, ?, ?
		)
	`

	for _, p := range prices {
		if err := r.conn.AsyncInsert(ctx, query, false,
			p.Date,
			p.TokenIn,
			p.AmountIn,
			p.TokenOut,
			p.AmountOut,
			p.Fee,
		); err != nil {
			return err
		}
	}
	return nil
}

// PricesSince returns samples for one token recorded at or after the given
// time, oldest first.
func (r *ClickHouseRepository) PricesSince(ctx context.Context, token string, since time.Time) ([]model.PricePoint, error) {
	query := `
		SELECT date, token_in, amount_in, token_out, amount_out, fee
		FROM price_samples
		WHERE token_in = ? AND date >= ?
		ORDER BY date
	`

	rows, err := r.conn.Query(ctx, query, token, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.PricePoint
	for rows.Next() {
		var p model.PricePoint
		if err := rows.Scan(
			&p.Date,
			&p.TokenIn,
			&p.AmountIn,
			&p.TokenOut,
			&p.AmountOut,
			&p.Fee,
		); err != nil {
			return nil, err
		}
		if p.AmountIn != 0 {
			p.Price = p.AmountOut / p.AmountIn
		}
		results = append(results, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// SaveTrades appends reconciled trade records.
func (r *ClickHouseRepository) SaveTrades(ctx context.Context, trades []model.Trade) error {
	query := `
		INSERT INTO trades (
			date, swap_id, token_in, amount_in, token_out, amount_out, was_successful
		) VALUES (
			?, ?, ?, ?, ?, ?, ?
		)
	`

	for _, t := range trades {
		if err := r.conn.AsyncInsert(ctx, query, false,
			t.Date,
			t.SwapID,
			t.TokenIn,
			t.AmountIn,
			t.TokenOut,
			t.AmountOut,
			t.WasSuccessful,
		); err != nil {
			return err
		}
	}
	return nil
}
