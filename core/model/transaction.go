package model

import "time"

// TransactionEvent is one historical point-of-sale line. A negative quantity
// is a refund.
type TransactionEvent struct {
	Location  string    `json:"location" yaml:"location"`
	Category  string    `json:"category" yaml:"category"`
	Item      string    `json:"item" yaml:"item"`
	Quantity  int       `json:"quantity" yaml:"quantity"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// IsSale reports whether the event counts as demand. Refunds and zero-quantity
// lines are ignored.
func (e TransactionEvent) IsSale() bool {
	return e.Quantity > 0
}

// ItemQuantity pairs an item name with a quantity.
type ItemQuantity struct {
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
}

// TimeBucket aggregates the sales of one location over a fixed window.
type TimeBucket struct {
	Location   string         `json:"location"`
	Index      int            `json:"index"`
	Start      time.Time      `json:"start"`
	End        time.Time      `json:"end"`
	OrderCount int            `json:"order_count"`
	Quantity   int            `json:"quantity"`
	TopItems   []ItemQuantity `json:"top_items"`
}

// Minutes returns the bucket width in minutes.
func (b TimeBucket) Minutes() float64 {
	return b.End.Sub(b.Start).Minutes()
}
