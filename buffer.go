package netsim

//
// Reliable-stream buffers
//

import "sort"

// SendBuffer is a monotonically growing byte stream with three
// offsets: Base (bytes already ACKed), Next (bytes already sent but
// not yet ACKed up to), and the appended bytes beyond Next not yet
// sent. The zero value is ready to use.
type SendBuffer struct {
	// data holds every byte ever Put, indexed relative to the first
	// byte ever appended (absolute sequence number == index here).
	data []byte

	base int
	next int
}

// Put appends bytes to the stream.
func (b *SendBuffer) Put(data []byte) {
	b.data = append(b.data, data...)
}

// Get returns up to mss unsent bytes and their starting absolute
// sequence number, advancing Next by the number of bytes returned.
func (b *SendBuffer) Get(mss int) ([]byte, int) {
	start := b.next
	end := start + mss
	if end > len(b.data) {
		end = len(b.data)
	}
	if end < start {
		end = start
	}
	out := b.data[start:end]
	b.next = end
	return out, start
}

// Slide discards bytes at or below ackNumber by raising Base. Slide
// never lowers Base: an ackNumber <= Base is a no-op, matching the
// monotone-cumulative-ACK invariant.
func (b *SendBuffer) Slide(ackNumber int) {
	if ackNumber > b.base {
		b.base = ackNumber
	}
	if b.base > b.next {
		b.next = b.base
	}
}

// Available returns the number of appended bytes beyond Next.
func (b *SendBuffer) Available() int {
	return len(b.data) - b.next
}

// Outstanding returns Next - Base: bytes sent but not yet ACKed.
func (b *SendBuffer) Outstanding() int {
	return b.next - b.base
}

// Base returns the current Base offset (bytes already ACKed).
func (b *SendBuffer) Base() int {
	return b.base
}

// Resend returns up to mss bytes starting at Base and rewinds Next to
// Base, so that a subsequent Get replays everything after the loss.
// Calling Resend when nothing is outstanding is a protocol violation.
func (b *SendBuffer) Resend(mss int) ([]byte, int) {
	if b.Outstanding() == 0 {
		panic(ErrBufferProtocol)
	}
	b.next = b.base
	return b.Get(mss)
}

// fragment is one (bytes, absolute sequence) chunk retained by a
// [ReceiveBuffer] until it becomes part of the in-order prefix.
type fragment struct {
	sequence int
	data     []byte
}

// ReceiveBuffer accepts (bytes, absolute sequence) fragments, stores
// them keyed by sequence, and on Get returns the maximal in-order
// prefix starting at the current in-order head, advancing the head.
// Out-of-order fragments are retained, not discarded; duplicate or
// overlapping ranges are tolerated idempotently. The zero value is
// ready to use.
type ReceiveBuffer struct {
	head      int
	fragments []fragment
}

// Put stores a (data, sequence) fragment. Bytes already below the
// in-order head are silently dropped as duplicates; overlapping
// fragments are trimmed to their novel suffix before being retained.
func (b *ReceiveBuffer) Put(data []byte, sequence int) {
	if len(data) == 0 {
		return
	}
	end := sequence + len(data)
	if end <= b.head {
		return // wholly duplicate
	}
	if sequence < b.head {
		// trim the already-delivered prefix
		data = data[b.head-sequence:]
		sequence = b.head
	}
	b.fragments = append(b.fragments, fragment{sequence: sequence, data: data})
	sort.Slice(b.fragments, func(i, j int) bool {
		return b.fragments[i].sequence < b.fragments[j].sequence
	})
}

// Get returns the maximal contiguous prefix starting at the in-order
// head and the absolute sequence number just past the returned bytes,
// advancing the head. Returns (nil, head) if no new in-order bytes are
// available.
func (b *ReceiveBuffer) Get() ([]byte, int) {
	var out []byte
	var kept []fragment
	remaining := append([]fragment(nil), b.fragments...)
	for {
		progressed := false
		for i, f := range remaining {
			if f.sequence > b.head {
				continue
			}
			end := f.sequence + len(f.data)
			if end <= b.head {
				continue // fully consumed already, drop
			}
			// f.sequence <= head < end: contributes novel bytes
			novel := f.data[b.head-f.sequence:]
			out = append(out, novel...)
			b.head += len(novel)
			remaining = append(remaining[:i], remaining[i+1:]...)
			progressed = true
			break
		}
		if !progressed {
			break
		}
	}
	// retain fragments that are still fully or partially beyond head
	for _, f := range remaining {
		if f.sequence+len(f.data) > b.head {
			kept = append(kept, f)
		}
	}
	b.fragments = kept
	return out, b.head
}

// Head returns the current in-order head (next byte expected).
func (b *ReceiveBuffer) Head() int {
	return b.head
}
