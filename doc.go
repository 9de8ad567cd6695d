// Package netsim is a discrete-event simulator for a TCP-Reno-style
// reliable byte stream riding on top of a simulated link layer.
//
// The simulator is driven end to end by a single [Scheduler]: nothing
// blocks on a wall clock and nothing runs on more than one goroutine.
// A [Link] models a bandwidth- and propagation-delay-limited wire with
// a bounded FIFO queue and independent random loss; a [Node] forwards
// packets across its attached links using a per-destination routing
// table; a [Transport] demultiplexes inbound packets to the [TCP]
// connection that owns them.
//
// [TCP] implements the sender and receiver halves of a single flow:
// a [SendBuffer] and [ReceiveBuffer] account for the byte stream, an
// RTO timer and RTT estimator follow RFC 6298, and congestion control
// follows the Reno slow-start / congestion-avoidance / fast-retransmit
// model. An [Application] consumes bytes delivered in order.
//
// Construct a topology either by hand (as the package tests do) or by
// loading one with [netsim/topology], wire [TCP] connections to
// [Application] handlers, call [TCP.Send] to inject data, and run
// [Scheduler.Run] to completion.
package netsim
