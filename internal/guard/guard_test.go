package guard

import (
	"errors"
	"testing"
	"time"
)

func TestCheckNoWindowAllows(t *testing.T) {
	g, err := New(DefaultPolicy())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := g.Check(Context{}); err != nil {
		t.Errorf("Expected allow, got %v", err)
	}
	if g.Attempts() != 1 {
		t.Errorf("Expected 1 attempt recorded, got %d", g.Attempts())
	}
}

func TestCheckOutsideWindow(t *testing.T) {
	g, err := New(Policy{
		WindowStart: "09:00",
		WindowEnd:   "17:00",
		MaxAttempts: 5,
		Interval:    time.Minute,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	at := time.Date(2024, 3, 1, 3, 30, 0, 0, time.Local)
	if err := g.Check(Context{At: at}); !errors.Is(err, ErrPolicyDenied) {
		t.Errorf("Expected ErrPolicyDenied at 03:30, got %v", err)
	}

	at = time.Date(2024, 3, 1, 12, 0, 0, 0, time.Local)
	if err := g.Check(Context{At: at}); err != nil {
		t.Errorf("Expected allow at 12:00, got %v", err)
	}
}

func TestCheckWindowSpanningMidnight(t *testing.T) {
	g, err := New(Policy{
		WindowStart: "22:00",
		WindowEnd:   "06:00",
		MaxAttempts: 10,
		Interval:    time.Minute,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	cases := []struct {
		hour  int
		allow bool
	}{
		{23, true},
		{2, true},
		{12, false},
		{21, false},
	}
	for _, c := range cases {
		at := time.Date(2024, 3, 1, c.hour, 0, 0, 0, time.Local)
		err := g.Check(Context{At: at})
		if c.allow && err != nil {
			t.Errorf("Hour %d: expected allow, got %v", c.hour, err)
		}
		if !c.allow && !errors.Is(err, ErrPolicyDenied) {
			t.Errorf("Hour %d: expected ErrPolicyDenied, got %v", c.hour, err)
		}
	}
}

func TestCheckRateLimit(t *testing.T) {
	g, err := New(Policy{MaxAttempts: 3, Interval: time.Hour})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	at := time.Now()
	for i := 0; i < 3; i++ {
		if err := g.Check(Context{At: at}); err != nil {
			t.Fatalf("Attempt %d should be allowed: %v", i+1, err)
		}
	}

	if err := g.Check(Context{At: at}); !errors.Is(err, ErrPolicyDenied) {
		t.Errorf("Expected ErrPolicyDenied after burst exhausted, got %v", err)
	}
	if g.Attempts() != 4 {
		t.Errorf("Expected 4 attempts recorded, got %d", g.Attempts())
	}
}

func TestResetRestoresBudget(t *testing.T) {
	g, err := New(Policy{MaxAttempts: 2, Interval: time.Hour})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	at := time.Now()
	g.Check(Context{At: at})
	g.Check(Context{At: at})
	if err := g.Check(Context{At: at}); !errors.Is(err, ErrPolicyDenied) {
		t.Fatalf("Expected denial before reset, got %v", err)
	}

	g.Reset()
	if g.Attempts() != 0 {
		t.Errorf("Expected attempt counter cleared, got %d", g.Attempts())
	}
	if err := g.Check(Context{At: at}); err != nil {
		t.Errorf("Expected allow after reset, got %v", err)
	}
}

func TestNewInvalidPolicy(t *testing.T) {
	tests := []struct {
		name   string
		policy Policy
	}{
		{"zero attempts", Policy{MaxAttempts: 0, Interval: time.Minute}},
		{"zero interval", Policy{MaxAttempts: 5}},
		{"half window", Policy{WindowStart: "09:00", MaxAttempts: 5, Interval: time.Minute}},
		{"bad clock", Policy{WindowStart: "25:99", WindowEnd: "17:00", MaxAttempts: 5, Interval: time.Minute}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.policy); err == nil {
				t.Error("Expected error for invalid policy")
			}
		})
	}
}
