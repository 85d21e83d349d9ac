package server

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/thruflo/recpanel/internal/logging"
)

// RateLimitConfig controls how password attempts are throttled per client IP.
type RateLimitConfig struct {
	MaxAttempts int           // attempts allowed per window (default 5)
	Window      time.Duration // sliding window length (default 1 minute)
	BlockAfter  int           // consecutive failures before blocking (default 10)
	BlockTime   time.Duration // first block duration, doubled for each further block (default 5 minutes)
}

// DefaultRateLimitConfig returns the default rate limiting configuration.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxAttempts: 5,
		Window:      time.Minute,
		BlockAfter:  10,
		BlockTime:   5 * time.Minute,
	}
}

// maxBlock caps the exponential block.
const maxBlock = 24 * time.Hour

// attemptLimiter throttles password attempts with a sliding window and blocks
// clients that keep failing.
type attemptLimiter struct {
	mu     sync.Mutex
	config RateLimitConfig
	now    func() time.Time
	logger *logging.Logger

	attempts map[string][]time.Time // ip -> attempt times inside the window
	failures map[string]int         // ip -> consecutive failures
	blocked  map[string]time.Time   // ip -> block expiry
}

func newAttemptLimiter(config RateLimitConfig, logger *logging.Logger) *attemptLimiter {
	defaults := DefaultRateLimitConfig()
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = defaults.MaxAttempts
	}
	if config.Window <= 0 {
		config.Window = defaults.Window
	}
	if config.BlockAfter <= 0 {
		config.BlockAfter = defaults.BlockAfter
	}
	if config.BlockTime <= 0 {
		config.BlockTime = defaults.BlockTime
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &attemptLimiter{
		config:   config,
		now:      time.Now,
		logger:   logger,
		attempts: make(map[string][]time.Time),
		failures: make(map[string]int),
		blocked:  make(map[string]time.Time),
	}
}

// verdict is the outcome of an admission check.
type verdict struct {
	Allowed    bool
	Blocked    bool          // rejected because of repeated failures
	RetryAfter time.Duration // zero when allowed
	Reason     string
}

// admit records an attempt from ip if it is allowed.
func (l *attemptLimiter) admit(ip string) verdict {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	if until, ok := l.blocked[ip]; ok {
		if now.Before(until) {
			return verdict{Blocked: true, RetryAfter: until.Sub(now), Reason: "too many failed attempts"}
		}
		delete(l.blocked, ip)
	}

	recent := l.recentLocked(ip, now)
	if len(recent) >= l.config.MaxAttempts {
		retry := recent[0].Add(l.config.Window).Sub(now)
		if retry <= 0 {
			retry = time.Second
		}
		return verdict{RetryAfter: retry, Reason: "rate limit exceeded"}
	}

	l.attempts[ip] = append(recent, now)
	return verdict{Allowed: true}
}

// recentLocked drops attempts that left the window and returns the rest.
func (l *attemptLimiter) recentLocked(ip string, now time.Time) []time.Time {
	start := now.Add(-l.config.Window)
	kept := l.attempts[ip][:0]
	for _, ts := range l.attempts[ip] {
		if ts.After(start) {
			kept = append(kept, ts)
		}
	}
	if len(kept) == 0 {
		delete(l.attempts, ip)
		return nil
	}
	l.attempts[ip] = kept
	return kept
}

// succeeded clears the failure history of ip.
func (l *attemptLimiter) succeeded(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.failures, ip)
	delete(l.blocked, ip)
}

// failed counts a wrong password from ip and blocks it once BlockAfter
// failures accumulate. Each further BlockAfter failures double the block.
func (l *attemptLimiter) failed(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.failures[ip]++
	n := l.failures[ip]
	if n < l.config.BlockAfter {
		return
	}

	blocks := (n - l.config.BlockAfter) / l.config.BlockAfter
	d := l.config.BlockTime
	for i := 0; i < blocks && d < maxBlock; i++ {
		d *= 2
	}
	d = min(d, maxBlock)

	l.blocked[ip] = l.now().Add(d)
	l.logger.Warn("client blocked", "ip", ip, "failures", n, "duration", d)
}

// sweep removes state that no longer affects any decision.
func (l *attemptLimiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for ip := range l.attempts {
		l.recentLocked(ip, now)
	}
	for ip, until := range l.blocked {
		if now.After(until) {
			delete(l.blocked, ip)
		}
	}
	for ip := range l.failures {
		_, isBlocked := l.blocked[ip]
		_, active := l.attempts[ip]
		if !isBlocked && !active {
			delete(l.failures, ip)
		}
	}
}

// clientIP returns the host part of the request's remote address. The RealIP
// middleware has already replaced it with any forwarded address.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// retryAfterSeconds formats d for the Retry-After header, rounding up.
func retryAfterSeconds(d time.Duration) string {
	secs := int((d + time.Second - 1) / time.Second)
	return strconv.Itoa(max(1, secs))
}
