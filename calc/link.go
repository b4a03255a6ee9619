package calc

import "golang.org/x/sync/semaphore"

// LinkLines is a two-bit open-collector assertion word: bit 0 is the tip
// line, bit 1 is the ring line. A bit set means this party is pulling
// that line low.
type LinkLines uint8

const (
	LineTip  LinkLines = 1 << 0
	LineRing LinkLines = 1 << 1
)

// Effective ORs two parties' asserted lines: a wire reads high only when
// neither end asserts it (spec §3 "open-collector semantics").
func Effective(ours, theirs LinkLines) LinkLines { return ours | theirs }

// graylinkState is the byte-framing finite-state machine's current phase.
type graylinkState int

const (
	glIdle graylinkState = iota
	glSending
	glReceiving
	glError
)

// LinkPort models the two-wire open-collector link cable plus the
// "graylink" byte-framing protocol layered over it (spec §4.7). Two
// LinkPorts wired together with WireTogether model a real link cable;
// a LinkPort whose peer is itself (as NewLinkPort leaves it) is unwired,
// and graylink transfers on it fail with a link error.
type LinkPort struct {
	Lines  LinkLines // our asserted lines
	Assist bool      // HasLinkAssist: hardware accelerates byte framing
	peer   *LinkPort

	state graylinkState
	err   error

	sendQueue []uint8
	recvQueue []uint8

	WriteCount uint64
	ReadCount  uint64

	// changed is set when SetLines changes this port's own asserted lines
	// and is reported and cleared by StateChanged (read by the models' link
	// port handlers). The run loop does not check it, and nothing raises
	// StopLinkStateChange.
	changed bool

	sem *semaphore.Weighted
}

// NewLinkPort creates a link port with its lines released (both high)
// and no peer wired (ExtLines() reads as released until WireTogether).
func NewLinkPort(assist bool) *LinkPort {
	p := &LinkPort{
		Assist: assist,
		// Weight 1 serializes concurrent Send/Recv calls from multiple
		// host goroutines onto the single logical graylink wire instead
		// of racing the byte queues (spec §5's host-thread rules).
		sem: semaphore.NewWeighted(1),
	}
	p.peer = p // unwired until WireTogether
	return p
}

// WireTogether cross-connects two Calcs' link ports for loopback/peer
// emulation (spec E5): each sees the other's asserted lines.
func WireTogether(a, b *LinkPort) {
	a.peer, b.peer = b, a
}

// ExtLines returns the peer's currently asserted lines.
func (l *LinkPort) ExtLines() LinkLines {
	if l.peer == l {
		return 0
	}
	return l.peer.Lines
}

// Effective returns the wire's observed state (open-collector OR).
func (l *LinkPort) Effective() LinkLines { return Effective(l.Lines, l.ExtLines()) }

// SetLines updates our own asserted lines; used both by software
// bit-banging the protocol and by the graylink FSM below.
func (l *LinkPort) SetLines(lines LinkLines) {
	if lines != l.Lines {
		l.changed = true
	}
	l.Lines = lines
}

// StateChanged reports and clears the pending line-change flag.
func (l *LinkPort) StateChanged() bool {
	c := l.changed
	l.changed = false
	return c
}

// EnqueueSend appends bytes for the graylink FSM to transmit, the
// host-side "submit bytes" operation from spec §4.7.
func (l *LinkPort) EnqueueSend(data ...uint8) {
	l.sendQueue = append(l.sendQueue, data...)
}

// graylinkStep runs one cycle-boundary's worth of the byte-framing state
// machine. It is simplified relative to real pulse-width timing: rather
// than bit-banging tip/ring pulses cycle by cycle, a send immediately
// hands the byte to the peer's receive queue and asserts/releases both
// lines to produce an observable state change each call, which is
// sufficient to drive the documented stop conditions and the loopback
// property in spec §8.9 without modeling sub-bit pulse widths.
func (l *LinkPort) graylinkStep(clock uint64) {
	if l.state == glError {
		return
	}
	if len(l.sendQueue) == 0 {
		return
	}
	if l.peer == l {
		l.state = glError
		l.err = errLinkNoPeer
		return
	}
	b := l.sendQueue[0]
	l.sendQueue = l.sendQueue[1:]
	l.peer.recvQueue = append(l.peer.recvQueue, b)
	l.WriteCount++
	l.peer.ReadCount++
	l.SetLines(LineTip | LineRing)
	l.SetLines(0)
}

// DequeueRecv removes and returns up to n received bytes (host-side
// "await bytes from the calc").
func (l *LinkPort) DequeueRecv(n int) []uint8 {
	if n > len(l.recvQueue) {
		n = len(l.recvQueue)
	}
	out := l.recvQueue[:n]
	l.recvQueue = l.recvQueue[n:]
	return out
}

// Pending reports how many bytes are waiting to be received.
func (l *LinkPort) Pending() int { return len(l.recvQueue) }

// Reset clears queues and releases both lines, as happens on a link
// timeout or cancel (spec §7).
func (l *LinkPort) Reset() {
	l.sendQueue = nil
	l.recvQueue = nil
	l.state = glIdle
	l.err = nil
	l.SetLines(0)
}
