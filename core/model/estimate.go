package model

// TrafficLevel is a coarse label derived from the expected wait.
type TrafficLevel string

const (
	TrafficLow      TrafficLevel = "low"
	TrafficModerate TrafficLevel = "moderate"
	TrafficHigh     TrafficLevel = "high"
)

// ServiceProfile is the inferred service model of a stand.
type ServiceProfile struct {
	Location    string  `json:"location"`
	ServiceRate float64 `json:"service_rate"`
	Servers     int     `json:"servers"`
	Source      string  `json:"source"`
}

// WaitEstimate is the output of the queueing estimator for one stand.
type WaitEstimate struct {
	Location    string       `json:"location"`
	Lambda      float64      `json:"lambda"`
	Mu          float64      `json:"mu"`
	Servers     int          `json:"servers"`
	Utilization float64      `json:"utilization"`
	WaitMinutes float64      `json:"wait_minutes"`
	Traffic     TrafficLevel `json:"traffic"`
}
