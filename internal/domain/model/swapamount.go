package model

// SwapAmount pins exactly one side of a swap or quote. The DEX either spends
// an exact input amount or targets an exact output amount; representing this
// as a closed union removes the "both set" and "neither set" states.
type SwapAmount interface {
	swapAmount()
}

// ExactIn fixes the amount of TokenIn to spend.
type ExactIn struct {
	Amount float64
}

// ExactOut fixes the amount of TokenOut to receive.
type ExactOut struct {
	Amount float64
}

func (ExactIn) swapAmount()  {}
func (ExactOut) swapAmount() {}
