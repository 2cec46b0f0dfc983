// Package queue converts arrival and service rates into expected wait times.
//
// The estimator models a stand as an M/M/c queue and evaluates the Erlang C
// formula. Unstable queues (utilization at or above the stability threshold)
// resolve to the configured wait ceiling instead of an error. A simpler
// single-capacity model is used by the replay stream where only observed
// throughput is known.
package queue
