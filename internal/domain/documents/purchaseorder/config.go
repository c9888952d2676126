package purchaseorder

import "medledger/pkg/numerator"

const (
	// NumeratorStrategy defines the numbering strategy for purchase orders.
	// Orders tolerate numbering gaps, so the faster cached strategy is used.
	NumeratorStrategy = numerator.StrategyCached
)
