package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/dzikowski/barbell-bot/internal/domain/model"
	"github.com/dzikowski/barbell-bot/internal/domain/service"
)

func TestReconcileFromBalanceDeltas(t *testing.T) {
	before := []model.Balance{
		{Token: "GALA", Amount: 1000, Decimals: 8},
		{Token: "TKA", Amount: 10, Decimals: 8},
	}
	after := []model.Balance{
		{Token: "GALA", Amount: 987, Decimals: 8},
		{Token: "TKA", Amount: 15.25, Decimals: 8},
	}
	when := time.Date(2025, 9, 23, 6, 15, 0, 0, time.UTC)
	receipts := []model.SwapReceipt{
		// Receipt claims different nominal amounts than what settled; the
		// trade must carry the deltas, not the receipt numbers.
		{SwapID: "swap-1", Date: when, TokenIn: "GALA", AmountIn: 12, TokenOut: "TKA", AmountOut: 5},
	}

	trades, err := service.Reconcile(before, after, receipts)
	if err != nil {
		t.Fatalf("failed to reconcile: %v", err)
	}
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}

	trade := trades[0]
	if trade.SwapID != "swap-1" || !trade.Date.Equal(when) {
		t.Errorf("receipt identity must carry over, got %+v", trade)
	}
	if trade.AmountIn != 13 {
		t.Errorf("expected amountIn 13, got %v", trade.AmountIn)
	}
	if trade.AmountOut != 5.25 {
		t.Errorf("expected amountOut 5.25, got %v", trade.AmountOut)
	}
	if !trade.WasSuccessful {
		t.Error("expected a successful trade")
	}
}

func TestReconcileUnmovedBalancesRecordFailure(t *testing.T) {
	balances := []model.Balance{
		{Token: "GALA", Amount: 500, Decimals: 8},
		{Token: "TKA", Amount: 4, Decimals: 8},
	}
	receipts := []model.SwapReceipt{
		{SwapID: "swap-1", TokenIn: "GALA", TokenOut: "TKA"},
	}

	trades, err := service.Reconcile(balances, balances, receipts)
	if err != nil {
		t.Fatalf("failed to reconcile: %v", err)
	}
	if len(trades) != 1 {
		t.Fatalf("expected the failed swap to be recorded, got %d trades", len(trades))
	}
	if trades[0].WasSuccessful {
		t.Error("a swap with unmoved balances must be unsuccessful")
	}
	if trades[0].AmountIn != 0 || trades[0].AmountOut != 0 {
		t.Errorf("expected zero deltas, got %+v", trades[0])
	}
}

func TestReconcileMissingLeg(t *testing.T) {
	before := []model.Balance{
		{Token: "GALA", Amount: 100, Decimals: 8},
		{Token: "TKA", Amount: 10, Decimals: 8},
	}
	after := []model.Balance{
		{Token: "GALA", Amount: 89.75, Decimals: 8},
		{Token: "TKA", Amount: 12, Decimals: 8},
	}
	receipts := []model.SwapReceipt{
		{SwapID: "swap-1", TokenIn: "GALA", TokenOut: "TKB"}, // TKB never shows up
		{SwapID: "swap-2", TokenIn: "GALA", TokenOut: "TKA"},
	}

	trades, err := service.Reconcile(before, after, receipts)
	if err == nil {
		t.Fatal("expected an error for the missing leg")
	}
	var notFound *model.BalanceNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected BalanceNotFoundError, got %T: %v", err, err)
	}
	if notFound.Token != "TKB" {
		t.Errorf("expected missing token TKB, got %q", notFound.Token)
	}

	// The intact receipt still reconciles.
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	if trades[0].SwapID != "swap-2" || trades[0].AmountIn != 10.25 || trades[0].AmountOut != 2 {
		t.Errorf("unexpected trade: %+v", trades[0])
	}
}
