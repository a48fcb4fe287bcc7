package guard

import (
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var ErrPolicyDenied = errors.New("unlock denied by policy")

// Policy configures the advisory gate in front of vault unlocks. It is
// hardening, not a cryptographic barrier: the encryption below stays secure
// even if the gate is bypassed.
type Policy struct {
	// WindowStart/WindowEnd bound the daily time window in which unlocks
	// are allowed, as "HH:MM" local time. Both empty means always allowed.
	// Start after end spans midnight.
	WindowStart string
	WindowEnd   string

	// MaxAttempts unlock checks are allowed per rolling Interval.
	MaxAttempts int
	Interval    time.Duration
}

// DefaultPolicy allows unlocks at any hour, 5 attempts per minute
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 5,
		Interval:    time.Minute,
	}
}

// Context carries the facts a check is evaluated against. Collaborating
// subsystems (biometrics, anomaly detection) may feed additional signal in
// through Source.
type Context struct {
	At     time.Time
	Source string
}

// Guard gates unlock attempts by time window and attempt rate
type Guard struct {
	mu       sync.Mutex
	policy   Policy
	limiter  *rate.Limiter
	attempts int

	winStart time.Duration // offset from midnight, -1 when no window
	winEnd   time.Duration
}

// New builds a guard from a policy, rejecting malformed window bounds
func New(p Policy) (*Guard, error) {
	if p.MaxAttempts <= 0 {
		return nil, fmt.Errorf("guard: max attempts must be positive, got %d", p.MaxAttempts)
	}
	if p.Interval <= 0 {
		return nil, fmt.Errorf("guard: interval must be positive, got %v", p.Interval)
	}

	g := &Guard{
		policy:   p,
		winStart: -1,
		winEnd:   -1,
	}

	if (p.WindowStart == "") != (p.WindowEnd == "") {
		return nil, errors.New("guard: window needs both start and end")
	}
	if p.WindowStart != "" {
		start, err := parseClock(p.WindowStart)
		if err != nil {
			return nil, err
		}
		end, err := parseClock(p.WindowEnd)
		if err != nil {
			return nil, err
		}
		g.winStart = start
		g.winEnd = end
	}

	g.limiter = rate.NewLimiter(rate.Every(p.Interval/time.Duration(p.MaxAttempts)), p.MaxAttempts)
	return g, nil
}

// Check decides whether an unlock attempt may proceed. Every call counts as
// an attempt; the counter resets only on Reset after a successful unlock.
func (g *Guard) Check(ctx Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	at := ctx.At
	if at.IsZero() {
		at = time.Now()
	}

	g.attempts++

	if !g.inWindow(at) {
		log.WithField("source", ctx.Source).Debug("unlock outside allowed window")
		return fmt.Errorf("%w: outside allowed time window %s-%s",
			ErrPolicyDenied, g.policy.WindowStart, g.policy.WindowEnd)
	}

	if !g.limiter.AllowN(at, 1) {
		return fmt.Errorf("%w: attempt rate exceeded (%d per %v)",
			ErrPolicyDenied, g.policy.MaxAttempts, g.policy.Interval)
	}

	return nil
}

// Reset clears the attempt counter after a successful unlock
func (g *Guard) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.attempts = 0
	g.limiter = rate.NewLimiter(rate.Every(g.policy.Interval/time.Duration(g.policy.MaxAttempts)), g.policy.MaxAttempts)
}

// Attempts returns the number of checks since the last reset
func (g *Guard) Attempts() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.attempts
}

func (g *Guard) inWindow(at time.Time) bool {
	if g.winStart < 0 {
		return true
	}
	midnight := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, at.Location())
	offset := at.Sub(midnight)

	if g.winStart <= g.winEnd {
		return offset >= g.winStart && offset <= g.winEnd
	}
	// Window spans midnight, e.g. 22:00-06:00.
	return offset >= g.winStart || offset <= g.winEnd
}

// parseClock parses "HH:MM" into an offset from midnight
func parseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("guard: invalid clock time %q: %w", s, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}
