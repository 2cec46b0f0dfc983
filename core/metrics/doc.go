// Package metrics defines the sinks that observe wait estimates and replay
// activity. Sinks like PromSink and InfluxSink live in infra/metrics and are
// created from configuration through the registry in this package. The
// factory returns a MultiSink automatically when several sinks are configured.
package metrics
