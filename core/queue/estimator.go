package queue

import (
	"math"

	"github.com/kilianp07/standwait/core/model"
)

// Estimator evaluates wait times under a fixed policy. It holds no mutable
// state and is safe for concurrent use.
type Estimator struct {
	cfg Config
}

// NewEstimator returns an estimator using cfg with defaults applied.
func NewEstimator(cfg Config) Estimator {
	cfg.SetDefaults()
	return Estimator{cfg: cfg}
}

// Config returns the policy in use.
func (e Estimator) Config() Config { return e.cfg }

// ExpectedWait returns the expected time in queue, in minutes, for an M/M/c
// stand with arrival rate lambda and per-server service rate mu.
func (e Estimator) ExpectedWait(lambda, mu float64, servers int) float64 {
	if lambda <= 0 {
		return 0
	}
	if servers <= 0 || mu <= 0 {
		return e.cfg.WaitCap
	}
	if Utilization(lambda, mu, servers) >= e.cfg.StabilityThreshold {
		return e.cfg.WaitCap
	}
	p := ErlangC(lambda, mu, servers)
	wq := p / (float64(servers)*mu - lambda)
	if math.IsNaN(wq) {
		return e.cfg.WaitCap
	}
	return clamp(wq, 0, e.cfg.WaitCap)
}

// ReplayWait estimates the wait of a stand from its arrival rate and its
// observed capacity in items per minute. An idle stand waits BaseWait.
func (e Estimator) ReplayWait(lambda, capacity float64) float64 {
	if lambda <= 0 {
		return e.cfg.BaseWait
	}
	if capacity <= 0 {
		return e.cfg.WaitCap
	}
	rho := lambda / capacity
	if rho >= e.cfg.StabilityThreshold {
		return e.cfg.WaitCap
	}
	return clamp(e.cfg.BaseWait+rho/(capacity*(1-rho)), 0, e.cfg.WaitCap)
}

// Traffic classifies a wait.
func (e Estimator) Traffic(wait float64) model.TrafficLevel {
	switch {
	case wait < e.cfg.LowBelow:
		return model.TrafficLow
	case wait < e.cfg.HighBelow:
		return model.TrafficModerate
	default:
		return model.TrafficHigh
	}
}

// Estimate bundles the inputs and the resulting wait for a stand.
func (e Estimator) Estimate(location string, lambda, mu float64, servers int) model.WaitEstimate {
	wait := e.ExpectedWait(lambda, mu, servers)
	util := Utilization(lambda, mu, servers)
	if math.IsInf(util, 1) {
		util = 1
	}
	return model.WaitEstimate{
		Location:    location,
		Lambda:      lambda,
		Mu:          mu,
		Servers:     servers,
		Utilization: util,
		WaitMinutes: wait,
		Traffic:     e.Traffic(wait),
	}
}
