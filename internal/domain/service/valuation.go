package service

import (
	"github.com/dzikowski/barbell-bot/internal/domain/model"
)

// BuildBalanceInfos values a balance snapshot in base-token and reference
// units using the cycle's fresh prices, and computes each token's share of
// the total base-token value.
//
// The base token is always priced at 1 against itself. A tracked token with
// no fresh price this cycle is silently excluded: it cannot be valued, so it
// cannot be rebalanced this cycle. A tracked token with no balance record is
// synthesized at amount 0 so it still shows up with a 0% share and stays
// eligible for a buy.
//
// Percentages are normalized in a second pass, after all entries are built,
// so the denominator is the stable total of every included entry. The result
// is a pure function of its inputs.
func BuildBalanceInfos(baseToken, refToken string, tracked []string, balances []model.Balance, prices []model.PricePoint) ([]model.BalanceInfo, error) {
	baseToRef := findPrice(prices, baseToken)
	if baseToRef == nil || baseToRef.TokenOut != refToken {
		return nil, &model.MissingReferencePriceError{BaseToken: baseToken, ReferenceToken: refToken}
	}

	tokens := append([]string{baseToken}, tracked...)
	infos := make([]model.BalanceInfo, 0, len(tokens))
	for _, token := range tokens {
		price := findPrice(prices, token)
		if price == nil {
			continue
		}
		infos = append(infos, makeBalanceInfo(findBalance(balances, token), token, *price, baseToken, refToken, baseToRef.Price))
	}

	var total float64
	for _, b := range infos {
		total += b.ValueInBase
	}
	for i := range infos {
		infos[i].Percent = infos[i].ValueInBase / total * 100
	}
	return infos, nil
}

func makeBalanceInfo(balance *model.Balance, token string, price model.PricePoint, baseToken, refToken string, baseToRefRate float64) model.BalanceInfo {
	priceInBase := price.Price
	if token == baseToken {
		priceInBase = 1
	}
	priceInRef := price.Price * baseToRefRate
	if price.TokenOut == refToken {
		priceInRef = price.Price
	}

	var amount float64
	var decimals int
	if balance != nil {
		amount = balance.Amount
		decimals = balance.Decimals
	}

	return model.BalanceInfo{
		Token:       token,
		Amount:      amount,
		Decimals:    decimals,
		PriceInBase: priceInBase,
		PriceInRef:  priceInRef,
		ValueInBase: amount * priceInBase,
		ValueInRef:  amount * priceInRef,
	}
}

func findPrice(prices []model.PricePoint, tokenIn string) *model.PricePoint {
	for i := range prices {
		if prices[i].TokenIn == tokenIn {
			return &prices[i]
		}
	}
	return nil
}

func findBalance(balances []model.Balance, token string) *model.Balance {
	for i := range balances {
		if balances[i].Token == token {
			return &balances[i]
		}
	}
	return nil
}
