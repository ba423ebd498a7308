package service_test

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/dzikowski/barbell-bot/internal/domain/model"
	"github.com/dzikowski/barbell-bot/internal/domain/service"
)

func TestBuildBalanceInfos(t *testing.T) {
	tracked := []string{"TKA", "TKB", "TKC"}
	balances := []model.Balance{
		{Token: "GALA", Amount: 100, Decimals: 8},
		{Token: "TKA", Amount: 5, Decimals: 8},
		{Token: "TKB", Amount: 8, Decimals: 8}, // has a balance but no price this cycle
	}
	prices := []model.PricePoint{
		{TokenIn: "GALA", TokenOut: "GUSDT", Price: 0.02},
		{TokenIn: "TKA", TokenOut: "GALA", Price: 10},
		{TokenIn: "TKC", TokenOut: "GALA", Price: 4},
	}

	infos, err := service.BuildBalanceInfos("GALA", "GUSDT", tracked, balances, prices)
	if err != nil {
		t.Fatalf("failed to build balance infos: %v", err)
	}

	// TKB has no fresh price, so it is excluded; everything else stays.
	if len(infos) != 3 {
		t.Fatalf("expected 3 entries, got %d: %+v", len(infos), infos)
	}

	base := infos[0]
	if base.Token != "GALA" {
		t.Fatalf("expected base token first, got %q", base.Token)
	}
	if base.PriceInBase != 1 {
		t.Errorf("base token must be priced at 1, got %v", base.PriceInBase)
	}
	if base.ValueInBase != base.Amount {
		t.Errorf("base valueInBase must equal amount, got %v for amount %v", base.ValueInBase, base.Amount)
	}
	if !approx(base.ValueInRef, 2) {
		t.Errorf("expected base ref value 2, got %v", base.ValueInRef)
	}

	tka := infos[1]
	if tka.ValueInBase != 50 {
		t.Errorf("expected TKA value 50, got %v", tka.ValueInBase)
	}
	if !approx(tka.PriceInRef, 0.2) {
		t.Errorf("expected TKA ref price 0.2, got %v", tka.PriceInRef)
	}

	// TKC is tracked but unheld: synthesized at zero so it stays eligible
	// for a buy.
	tkc := infos[2]
	if tkc.Token != "TKC" || tkc.Amount != 0 || tkc.Decimals != 0 {
		t.Errorf("expected zero-amount TKC entry, got %+v", tkc)
	}
	if tkc.Percent != 0 {
		t.Errorf("expected 0%% share for TKC, got %v", tkc.Percent)
	}

	var sum float64
	for _, b := range infos {
		sum += b.Percent
	}
	if math.Abs(sum-100) > 1e-9 {
		t.Errorf("percentages must sum to 100, got %v", sum)
	}
	if !approx(infos[0].Percent, 100.0*100/150) {
		t.Errorf("expected base share %v, got %v", 100.0*100/150, infos[0].Percent)
	}
}

func TestBuildBalanceInfosDirectReferencePrice(t *testing.T) {
	// A token already priced in the reference unit keeps its direct price
	// instead of going through the base rate.
	prices := []model.PricePoint{
		{TokenIn: "GALA", TokenOut: "GUSDT", Price: 0.02},
	}
	infos, err := service.BuildBalanceInfos("GALA", "GUSDT", nil,
		[]model.Balance{{Token: "GALA", Amount: 10, Decimals: 8}}, prices)
	if err != nil {
		t.Fatalf("failed to build balance infos: %v", err)
	}
	if !approx(infos[0].PriceInRef, 0.02) {
		t.Errorf("expected direct reference price 0.02, got %v", infos[0].PriceInRef)
	}
}

func TestBuildBalanceInfosMissingReferencePrice(t *testing.T) {
	prices := []model.PricePoint{
		{TokenIn: "TKA", TokenOut: "GALA", Price: 10},
	}

	_, err := service.BuildBalanceInfos("GALA", "GUSDT", []string{"TKA"}, nil, prices)
	if err == nil {
		t.Fatal("expected an error without a base/reference price")
	}
	var missing *model.MissingReferencePriceError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingReferencePriceError, got %T: %v", err, err)
	}

	// A base price against the wrong quote token does not count either.
	prices = append(prices, model.PricePoint{TokenIn: "GALA", TokenOut: "GUSDC", Price: 0.02})
	if _, err := service.BuildBalanceInfos("GALA", "GUSDT", []string{"TKA"}, nil, prices); err == nil {
		t.Error("expected an error when the base price is not reference-denominated")
	}
}

func TestBuildBalanceInfosIsPure(t *testing.T) {
	tracked := []string{"TKA"}
	balances := []model.Balance{
		{Token: "GALA", Amount: 100, Decimals: 8},
		{Token: "TKA", Amount: 5, Decimals: 8},
	}
	prices := []model.PricePoint{
		{TokenIn: "GALA", TokenOut: "GUSDT", Price: 0.02},
		{TokenIn: "TKA", TokenOut: "GALA", Price: 10},
	}

	first, err := service.BuildBalanceInfos("GALA", "GUSDT", tracked, balances, prices)
	if err != nil {
		t.Fatalf("failed to build balance infos: %v", err)
	}
	second, err := service.BuildBalanceInfos("GALA", "GUSDT", tracked, balances, prices)
	if err != nil {
		t.Fatalf("failed to build balance infos again: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("identical inputs must yield identical outputs:\n%+v\n%+v", first, second)
	}
}
