package queue

import "math"

// Utilization returns λ/(c·μ). A queue without capacity is reported as
// infinitely loaded when it has arrivals and idle otherwise.
func Utilization(lambda, mu float64, servers int) float64 {
	capacity := float64(servers) * mu
	if capacity <= 0 {
		if lambda > 0 {
			return math.Inf(1)
		}
		return 0
	}
	if lambda <= 0 {
		return 0
	}
	return lambda / capacity
}

// ErlangC returns the probability that an arriving customer has to wait in an
// M/M/c queue. Saturated queues return 1.
func ErlangC(lambda, mu float64, servers int) float64 {
	if lambda <= 0 {
		return 0
	}
	rho := Utilization(lambda, mu, servers)
	if rho >= 1 {
		return 1
	}
	a := lambda / mu
	var sum float64
	term := 1.0 // a^k/k!
	for k := 0; k < servers; k++ {
		sum += term
		term *= a / float64(k+1)
	}
	// term now holds a^c/c!
	top := term / (1 - rho)
	return top / (sum + top)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
