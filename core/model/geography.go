package model

import "time"

// Location is a service stand and its position on the venue map.
type Location struct {
	Name string  `json:"name" yaml:"name"`
	X    float64 `json:"x" yaml:"x"`
	Y    float64 `json:"y" yaml:"y"`
}

// SeatZone is a seating section fans walk from.
type SeatZone struct {
	ID    string  `json:"id" yaml:"id"`
	Label string  `json:"label" yaml:"label"`
	X     float64 `json:"x" yaml:"x"`
	Y     float64 `json:"y" yaml:"y"`
}

// ZoneDistance is the walking distance between a seat zone and a stand.
type ZoneDistance struct {
	ZoneID   string  `json:"zone_id" yaml:"zone_id"`
	Location string  `json:"location" yaml:"location"`
	Meters   float64 `json:"meters" yaml:"meters"`
}

// Game is a scheduled event at the venue.
type Game struct {
	ID       string    `json:"id" yaml:"id"`
	Opponent string    `json:"opponent" yaml:"opponent"`
	Start    time.Time `json:"start" yaml:"start"`
}
