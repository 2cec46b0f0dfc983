package recommend

import (
	"time"

	"github.com/kilianp07/standwait/core/model"
)

// StandStatus is the estimated state of one stand at the requested moment.
type StandStatus struct {
	Name        string             `json:"name"`
	WaitMinutes float64            `json:"wait_minutes"`
	Traffic     model.TrafficLevel `json:"traffic"`
	Categories  []string           `json:"categories"`
	TopItems    []string           `json:"top_items"`
	Position    model.Location     `json:"position"`
	Estimate    model.WaitEstimate `json:"estimate"`
}

// Recommendation is the single stand suggested to a fan.
type Recommendation struct {
	Location    string  `json:"location"`
	WaitMinutes float64 `json:"wait_minutes"`
	Reason      string  `json:"reason"`
}

// PeriodWait is the mean wait across stands during a game period.
type PeriodWait struct {
	Name            string    `json:"name"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	MeanWaitMinutes float64   `json:"mean_wait_minutes"`
}

// EstimateRequest selects the moment and filters of an estimate.
type EstimateRequest struct {
	At       time.Time
	Category string
	Opponent string
	Weekday  string
}

// EstimateResult is the fan-facing estimate.
type EstimateResult struct {
	At             time.Time       `json:"at"`
	Game           *model.Game     `json:"game,omitempty"`
	Period         string          `json:"period,omitempty"`
	Category       string          `json:"category,omitempty"`
	Stands         []StandStatus   `json:"stands"`
	Recommendation *Recommendation `json:"recommendation"`
	Timeline       []PeriodWait    `json:"timeline"`
}

// RouteRequest asks for the best way to get an item from a seat zone.
type RouteRequest struct {
	ZoneID        string
	Item          string
	BudgetMinutes float64
	At            time.Time
	Opponent      string
	Weekday       string
}

// RouteLeg is the walk and wait cost of getting an item at a stand.
type RouteLeg struct {
	Location         string  `json:"location"`
	Item             string  `json:"item"`
	Meters           float64 `json:"meters"`
	WalkMinutes      float64 `json:"walk_minutes"`
	WaitMinutes      float64 `json:"wait_minutes"`
	RoundTripMinutes float64 `json:"round_trip_minutes"`
}

// RouteResult is the outcome of a route evaluation.
type RouteResult struct {
	Zone          model.SeatZone `json:"zone"`
	Category      string         `json:"category"`
	BudgetMinutes float64        `json:"budget_minutes"`
	Preferred     RouteLeg       `json:"preferred"`
	WithinBudget  bool           `json:"within_budget"`
	Alternatives  []RouteLeg     `json:"alternatives"`
	Notes         []string       `json:"notes"`
}
