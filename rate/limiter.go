package rate

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter keeps one token bucket per client and forgets clients that stayed
// idle longer than the expiry.
type Limiter struct {
	expiry   time.Duration
	burst    int
	limit    rate.Limit
	clients  map[string]*clientLimiter
	mu       sync.Mutex
	stop     chan struct{}
	stopOnce sync.Once
}

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

func NewLimiter(burst int, expiry time.Duration, limitRPS float64) *Limiter {
	lm := &Limiter{
		expiry:  expiry,
		burst:   burst,
		limit:   rate.Limit(limitRPS),
		clients: make(map[string]*clientLimiter),
		stop:    make(chan struct{}),
	}
	go lm.refresh()
	return lm
}

// Check reports whether the client identified by id may proceed now.
func (l *Limiter) Check(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	cl, ok := l.clients[id]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[id] = cl
	}
	cl.lastAccess = time.Now()
	return cl.limiter.Allow()
}

// Close stops the background eviction of idle clients.
func (l *Limiter) Close() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *Limiter) refresh() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.evict(time.Now())
		}
	}
}

func (l *Limiter) evict(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for id, v := range l.clients {
		if now.Sub(v.lastAccess) > l.expiry {
			delete(l.clients, id)
		}
	}
}

func Every(interval time.Duration) float64 {
	return float64(rate.Every(interval))
}
