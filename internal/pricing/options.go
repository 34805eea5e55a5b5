package pricing

import (
	"time"

	"golang.org/x/time/rate"
)

// Options tune the price service client.
type Options struct {
	// Timeout bounds a single HTTP exchange with the price service.
	Timeout time.Duration

	// RateLimit is the sustained number of requests per second the client sends.
	RateLimit float64

	// Burst is the number of requests that may be sent back to back.
	Burst int
}

func (o *Options) setDefaults() {
	if o.Timeout == 0 {
		o.Timeout = 10 * time.Second
	}
	if o.RateLimit == 0 {
		o.RateLimit = 5
	}
	if o.Burst == 0 {
		o.Burst = 2
	}
}

func (o *Options) limiter() *rate.Limiter {
	return rate.NewLimiter(rate.Limit(o.RateLimit), o.Burst)
}
