package netsim

import "errors"

// ErrNegativeDelay indicates that [Scheduler.Add] was called with a
// delay less than zero. This is a programming error, not a network
// event: the caller should fix the call site rather than retry.
var ErrNegativeDelay = errors.New("netsim: scheduler: delay must be >= 0")

// ErrUnknownHandler indicates that an event fired for a handler the
// [Scheduler] no longer has a record of. This should never happen in
// practice and indicates a bug in event bookkeeping.
var ErrUnknownHandler = errors.New("netsim: scheduler: unknown handler")

// ErrNoRoute indicates that a [Node] has no forwarding-table entry for
// a packet's destination address. The packet is dropped and traced;
// TCP retransmission is the recovery mechanism, so this error never
// escapes [Node.Send].
var ErrNoRoute = errors.New("netsim: node: no route to destination")

// ErrBufferProtocol indicates a caller violated a [SendBuffer]
// invariant by resending with nothing outstanding. This is a fatal
// programming error. Sliding past next is not a violation:
// [SendBuffer.Slide] raises next along with base.
var ErrBufferProtocol = errors.New("netsim: buffer: protocol violation")
