package model

// DemandSample is the historical average number of items sold at a location
// during one 10-minute slot of an hour.
type DemandSample struct {
	Location string  `json:"location" yaml:"location"`
	Hour     int     `json:"hour" yaml:"hour"`
	Slot     int     `json:"slot" yaml:"slot"`
	AvgItems float64 `json:"avg_items" yaml:"avg_items"`
	Opponent string  `json:"opponent,omitempty" yaml:"opponent,omitempty"`
	Weekday  string  `json:"weekday,omitempty" yaml:"weekday,omitempty"`
}

// MinuteOfDay returns the start of the slot expressed in minutes after midnight.
func (d DemandSample) MinuteOfDay(slotMinutes int) int {
	return d.Hour*60 + d.Slot*slotMinutes
}

// CategoryMix is the average number of items of a category sold at a location.
type CategoryMix struct {
	Location string  `json:"location" yaml:"location"`
	Category string  `json:"category" yaml:"category"`
	AvgItems float64 `json:"avg_items" yaml:"avg_items"`
	Opponent string  `json:"opponent,omitempty" yaml:"opponent,omitempty"`
	Weekday  string  `json:"weekday,omitempty" yaml:"weekday,omitempty"`
}

// ItemSale is the historical total quantity of an item sold at a location.
type ItemSale struct {
	Location string `json:"location" yaml:"location"`
	Category string `json:"category" yaml:"category"`
	Item     string `json:"item" yaml:"item"`
	Quantity int    `json:"quantity" yaml:"quantity"`
}
