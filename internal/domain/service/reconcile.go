package service

import (
	"errors"

	"github.com/dzikowski/barbell-bot/internal/domain/model"
)

// Reconcile converts swap receipts into trade records by comparing the
// wallet's balances before and after execution. Settled amounts can differ
// from the requested ones, so the receipt's nominal amounts are never used;
// only balance deltas count.
//
// A swap is successful only when the input balance went down and the output
// balance went up. Any other sign combination, including no movement at all,
// is recorded as an unsuccessful trade; a failed swap is still a fact worth
// persisting.
//
// A receipt whose legs cannot be matched against both snapshots yields a
// *model.BalanceNotFoundError for that receipt. Remaining receipts are still
// reconciled and the per-receipt errors are joined, so one broken receipt
// does not discard the others.
func Reconcile(before, after []model.Balance, receipts []model.SwapReceipt) ([]model.Trade, error) {
	trades := make([]model.Trade, 0, len(receipts))
	var errs []error

	for _, r := range receipts {
		inBefore, inAfter := findBalance(before, r.TokenIn), findBalance(after, r.TokenIn)
		outBefore, outAfter := findBalance(before, r.TokenOut), findBalance(after, r.TokenOut)

		if inBefore == nil || inAfter == nil {
			errs = append(errs, &model.BalanceNotFoundError{Token: r.TokenIn})
			continue
		}
		if outBefore == nil || outAfter == nil {
			errs = append(errs, &model.BalanceNotFoundError{Token: r.TokenOut})
			continue
		}

		amountIn := inBefore.Amount - inAfter.Amount
		amountOut := outAfter.Amount - outBefore.Amount

		trades = append(trades, model.Trade{
			Date:          r.Date,
			SwapID:        r.SwapID,
			TokenIn:       r.TokenIn,
			AmountIn:      amountIn,
			TokenOut:      r.TokenOut,
			AmountOut:     amountOut,
			WasSuccessful: amountIn > 0 && amountOut > 0,
		})
	}

	return trades, errors.Join(errs...)
}
