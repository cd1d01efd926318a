package middleware

import (
	"container/list"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/yungbote/pagehub-backend/internal/http/response"
	"github.com/yungbote/pagehub-backend/internal/platform/ctxutil"
)

const (
	limiterIdleTTL    = 10 * time.Minute
	limiterSweepEvery = time.Minute
	defaultMaxClients = 10000
)

type clientLimiter struct {
	key      string
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client, keyed by user id when authenticated and by client IP
// otherwise. Least recently seen clients are evicted at capacity; idle ones are swept on access.
type RateLimiter struct {
	rps   rate.Limit
	burst int
	max   int
	now   func() time.Time

	mu        sync.Mutex
	items     map[string]*list.Element
	order     *list.List // front = most recent
	lastSweep time.Time
}

func NewRateLimiter(rps float64, burst, maxClients int) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	if maxClients <= 0 {
		maxClients = defaultMaxClients
	}
	return &RateLimiter{
		rps:   rate.Limit(rps),
		burst: burst,
		max:   maxClients,
		now:   time.Now,
		items: map[string]*list.Element{},
		order: list.New(),
	}
}

// Allow consumes one token for key.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	rl.sweep(now)

	elem, ok := rl.items[key]
	if ok {
		rl.order.MoveToFront(elem)
	} else {
		if rl.order.Len() >= rl.max {
			if back := rl.order.Back(); back != nil {
				rl.order.Remove(back)
				delete(rl.items, back.Value.(*clientLimiter).key)
			}
		}
		elem = rl.order.PushFront(&clientLimiter{key: key, limiter: rate.NewLimiter(rl.rps, rl.burst)})
		rl.items[key] = elem
	}
	cl := elem.Value.(*clientLimiter)
	cl.lastSeen = now
	return cl.limiter.AllowN(now, 1)
}

func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < limiterSweepEvery {
		return
	}
	rl.lastSweep = now
	for e := rl.order.Back(); e != nil; {
		prev := e.Prev()
		cl := e.Value.(*clientLimiter)
		if now.Sub(cl.lastSeen) <= limiterIdleTTL {
			// entries ahead of this one were seen more recently
			break
		}
		rl.order.Remove(e)
		delete(rl.items, cl.key)
		e = prev
	}
}

func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.order.Len()
}

// Middleware rejects over-limit requests with 429. A nil limiter lets everything through.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl == nil || rl.rps <= 0 {
			c.Next()
			return
		}
		key := ctxutil.UserID(c.Request.Context())
		if key == "" {
			key = "ip:" + c.ClientIP()
		}
		if !rl.Allow(key) {
			c.Header("Retry-After", "1")
			response.RespondError(c, http.StatusTooManyRequests, "rate_limited", errors.New("Too many requests. Please wait a moment and try again."))
			return
		}
		c.Next()
	}
}
