// Package sim implements a discrete-event simulator that evaluates VM
// placement strategies in a cloud data center under an adversarial threat
// model. It merges chronologically ordered VM creation/deletion streams,
// maintains host/VM/subscription state and co-residency bookkeeping, and
// exposes a pluggable placement-policy framework alongside the metric
// computations derived from the final state.
package sim
