package lifecycle

import (
	"fmt"
	"time"
)

type Countdown struct {
	Days    int  `json:"days"`
	Hours   int  `json:"hours"`
	Minutes int  `json:"minutes"`
	Seconds int  `json:"seconds"`
	Ended   bool `json:"ended"`
}

// CountdownTo is recomputed on every read and never stored.
func CountdownTo(deadline, now time.Time) Countdown {
	remaining := deadline.Sub(now)
	if remaining <= 0 {
		return Countdown{Ended: true}
	}

	total := int(remaining / time.Second)
	return Countdown{
		Days:    total / 86400,
		Hours:   total % 86400 / 3600,
		Minutes: total % 3600 / 60,
		Seconds: total % 60,
	}
}

func (c Countdown) String() string {
	if c.Ended {
		return "ended"
	}
	return fmt.Sprintf("%dd %dh %dm %ds", c.Days, c.Hours, c.Minutes, c.Seconds)
}
