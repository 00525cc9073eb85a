// Package countdown computes the time left until the voting deadline. It is
// informational only; the backend decides when voting actually closes.
package countdown

import (
	"context"
	"fmt"
	"time"
)

// DefaultDeadline is 2025-12-31 23:59:59 local time.
var DefaultDeadline = time.Date(2025, time.December, 31, 23, 59, 59, 0, time.Local)

// Remaining splits a duration into whole days, hours, minutes and seconds.
type Remaining struct {
	Days    int
	Hours   int
	Minutes int
	Seconds int
}

// Until returns the time left from now to deadline, all zero once it passed.
func Until(deadline, now time.Time) Remaining {
	d := deadline.Sub(now)
	if d <= 0 {
		return Remaining{}
	}

	day := 24 * time.Hour
	return Remaining{
		Days:    int(d / day),
		Hours:   int(d % day / time.Hour),
		Minutes: int(d % time.Hour / time.Minute),
		Seconds: int(d % time.Minute / time.Second),
	}
}

func (r Remaining) IsZero() bool {
	return r == Remaining{}
}

func (r Remaining) String() string {
	return fmt.Sprintf("%dd %dh %dm %ds", r.Days, r.Hours, r.Minutes, r.Seconds)
}

type Countdown struct {
	deadline time.Time
	now      func() time.Time
}

func New(deadline time.Time) *Countdown {
	return &Countdown{deadline: deadline, now: time.Now}
}

func (c *Countdown) Deadline() time.Time {
	return c.deadline
}

func (c *Countdown) Remaining() Remaining {
	return Until(c.deadline, c.now())
}

// Run calls fn with the remaining time right away and then every interval,
// until ctx is done or the zero value has been delivered.
func (c *Countdown) Run(ctx context.Context, interval time.Duration, fn func(Remaining)) {
	r := c.Remaining()
	fn(r)
	if r.IsZero() {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r := c.Remaining()
			fn(r)
			if r.IsZero() {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}
