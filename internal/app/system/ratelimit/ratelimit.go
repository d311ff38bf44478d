// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
)

// pruneEvery is how many Allow calls pass between sweeps of expired windows.
const pruneEvery = 256

// Limiter counts attempts per key in fixed windows.
// It is safe for concurrent use.
type Limiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	limit    int
	duration time.Duration
	calls    int

	// now is the clock; tests replace it.
	now func() time.Time
}

type window struct {
	count     int
	expiresAt time.Time
}

// New creates a limiter allowing limit attempts per key within duration.
func New(limit int, duration time.Duration) *Limiter {
	return &Limiter{
		windows:  make(map[string]*window),
		limit:    limit,
		duration: duration,
		now:      time.Now,
	}
}

// Allow records an attempt for key and reports whether it is within the limit.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.calls++
	if l.calls%pruneEvery == 0 {
		l.prune(now)
	}

	w, ok := l.windows[key]
	if !ok || now.After(w.expiresAt) {
		l.windows[key] = &window{count: 1, expiresAt: now.Add(l.duration)}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// Remaining returns how many attempts are left for key in the current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || l.now().After(w.expiresAt) {
		return l.limit
	}
	if left := l.limit - w.count; left > 0 {
		return left
	}
	return 0
}

// Reset forgets key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

// prune drops expired windows. Caller holds mu.
func (l *Limiter) prune(now time.Time) {
	for key, w := range l.windows {
		if now.After(w.expiresAt) {
			delete(l.windows, key)
		}
	}
}

// ClientIP returns the caller's address: first X-Forwarded-For hop, then
// X-Real-IP, then RemoteAddr without its port.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// LoginLimiter throttles sign-in attempts per client address and per
// username, so neither a single host nor a spread of hosts can grind one
// account's password.
type LoginLimiter struct {
	byIP       *Limiter
	byUsername *Limiter
}

// NewLoginLimiter allows 10 attempts per address per minute and 5 attempts
// per username per 5 minutes.
func NewLoginLimiter() *LoginLimiter {
	return NewLoginLimiterWithConfig(10, time.Minute, 5, 5*time.Minute)
}

// NewLoginLimiterWithConfig builds a LoginLimiter with explicit limits.
func NewLoginLimiterWithConfig(ipLimit int, ipWindow time.Duration, userLimit int, userWindow time.Duration) *LoginLimiter {
	return &LoginLimiter{
		byIP:       New(ipLimit, ipWindow),
		byUsername: New(userLimit, userWindow),
	}
}

// Check records an attempt and reports whether it may proceed. When it may
// not, reason is a message fit for the user.
func (ll *LoginLimiter) Check(r *http.Request, username string) (allowed bool, reason string) {
	if !ll.byIP.Allow(ClientIP(r)) {
		return false, "Too many sign-in attempts. Please wait a minute before trying again."
	}
	if key := text.Fold(username); key != "" {
		if !ll.byUsername.Allow(key) {
			return false, "Too many sign-in attempts for this account. Please wait a few minutes."
		}
	}
	return true, ""
}

// Succeeded clears the username window after a good sign-in.
func (ll *LoginLimiter) Succeeded(username string) {
	if key := text.Fold(username); key != "" {
		ll.byUsername.Reset(key)
	}
}
