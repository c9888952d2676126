package sale

import "medledger/pkg/numerator"

const (
	// NumeratorStrategy defines the numbering strategy for sales.
	// Sales are primary accounting documents, so numbers must be gapless.
	NumeratorStrategy = numerator.StrategyStrict
)
