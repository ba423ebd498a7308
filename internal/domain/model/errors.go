package model

import "fmt"

// MissingDataError is returned when a token's 24h price window has no samples,
// so mean and standard deviation cannot be computed.
type MissingDataError struct {
	Token string
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("no price samples in the last 24h for %s", e.Token)
}

// MissingReferencePriceError is returned when the base-token-to-reference
// rate cannot be located in the cycle's price set.
type MissingReferencePriceError struct {
	BaseToken      string
	ReferenceToken string
}

func (e *MissingReferencePriceError) Error() string {
	return fmt.Sprintf("no %s/%s price available", e.BaseToken, e.ReferenceToken)
}

// BalanceNotFoundError is returned during reconciliation when a before or
// after balance for one leg of a swap is missing.
type BalanceNotFoundError struct {
	Token string
}

func (e *BalanceNotFoundError) Error() string {
	return fmt.Sprintf("balance for %s not found", e.Token)
}

// ConfigurationError is returned when the cycle cannot proceed at all:
// no non-base tracked tokens, a missing base balance, or a missing stats
// record needed for thresholding.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return e.Reason
}
