package domain

// QuoteLine is one cart line priced out for review before ordering.
type QuoteLine struct {
	MenuItemID string
	Name       string
	Quantity   int64
	UnitPrice  int64
	LineTotal  int64
}

// Quote is the order summary shown at checkout. Amounts in minor units.
type Quote struct {
	Lines       []QuoteLine
	Subtotal    int64
	DeliveryFee int64
	Total       int64
}

// freeDeliveryThreshold and deliveryFee implement the service's flat
// delivery pricing: orders of $500.00 and up ship free.
const (
	freeDeliveryThreshold = 50000
	deliveryFee           = 5000
)

func NewQuote(lines []QuoteLine) Quote {
	var subtotal int64
	for _, l := range lines {
		subtotal += l.LineTotal
	}

	fee := int64(deliveryFee)
	if subtotal >= freeDeliveryThreshold {
		fee = 0
	}

	return Quote{
		Lines:       lines,
		Subtotal:    subtotal,
		DeliveryFee: fee,
		Total:       subtotal + fee,
	}
}
