package model

import "time"

// StandState is the simulated condition of one stand during a replay frame.
type StandState struct {
	Location         string         `json:"location"`
	OrdersInBucket   int            `json:"orders_in_bucket"`
	QuantityInBucket int            `json:"quantity_in_bucket"`
	OrdersPerMinute  float64        `json:"orders_per_minute"`
	Utilization      float64        `json:"utilization"`
	WaitMinutes      float64        `json:"wait_minutes"`
	CrowdIndex       float64        `json:"crowd_index"`
	TopItems         []ItemQuantity `json:"top_items"`
}

// Snapshot is the state of all stands at the end of one replay frame.
type Snapshot struct {
	Index         int          `json:"index"`
	SimulatedTime time.Time    `json:"simulated_time"`
	BucketStart   time.Time    `json:"bucket_start"`
	BucketEnd     time.Time    `json:"bucket_end"`
	Stands        []StandState `json:"stands"`
}
