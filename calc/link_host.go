package calc

import "context"

// LinkSend queues data for transmission over the link cable and blocks
// until the port's semaphore admits this call, serializing concurrent
// host goroutines onto the single logical wire (spec §5, §4.7). It
// returns LinkBusy without blocking if ctx is already done when another
// send/receive is in flight.
func (c *Calc) LinkSend(ctx context.Context, data ...uint8) LinkStatus {
	if err := c.Link.sem.Acquire(ctx, 1); err != nil {
		return LinkBusy
	}
	defer c.Link.sem.Release(1)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.Link.EnqueueSend(data...)
	return LinkOK
}

// LinkRecv returns up to n bytes that have already arrived on the link
// port, without waiting for more or blocking the run loop: callers typically
// interleave this with RunCycles from the same goroutine, so it returns
// whatever is already queued immediately rather than driving the clock
// itself.
func (c *Calc) LinkRecv(ctx context.Context, n int) ([]uint8, LinkStatus) {
	if err := c.Link.sem.Acquire(ctx, 1); err != nil {
		return nil, LinkBusy
	}
	defer c.Link.sem.Release(1)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Link.state == glError {
		return nil, LinkErrorStatus
	}
	return c.Link.DequeueRecv(n), LinkOK
}
