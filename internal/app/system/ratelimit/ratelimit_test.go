package ratelimit

import (
	"sync"
	"testing"
	"time"
)

func TestLimiter_Allow(t *testing.T) {
	l := New(2, time.Minute)
	defer l.Close()

	if !l.Allow("bob") || !l.Allow("bob") {
		t.Fatal("first two actions should be allowed")
	}
	if l.Allow("bob") {
		t.Error("third action should be limited")
	}
	if !l.Allow("carol") {
		t.Error("keys are independent")
	}
	if got := l.Remaining("bob"); got != 0 {
		t.Errorf("Remaining(bob): got %d, want 0", got)
	}
	if got := l.Remaining("dave"); got != 2 {
		t.Errorf("Remaining(dave): got %d, want 2", got)
	}
}

func TestLimiter_WindowExpires(t *testing.T) {
	l := New(1, time.Minute)
	defer l.Close()

	now := time.Now()
	l.now = func() time.Time { return now }

	if !l.Allow("bob") {
		t.Fatal("first action should be allowed")
	}
	if l.Allow("bob") {
		t.Fatal("second action should be limited")
	}

	now = now.Add(time.Minute + time.Second)
	if !l.Allow("bob") {
		t.Error("action after window should be allowed")
	}
}

func TestLimiter_Reset(t *testing.T) {
	l := New(1, time.Minute)
	defer l.Close()

	l.Allow("bob")
	l.Reset("bob")
	if !l.Allow("bob") {
		t.Error("Reset should clear the window")
	}
}

func TestLimiter_Disabled(t *testing.T) {
	var nilLimiter *Limiter
	if !nilLimiter.Allow("x") {
		t.Error("nil limiter should allow")
	}
	nilLimiter.Close()

	off := New(0, time.Minute)
	defer off.Close()
	for i := 0; i < 100; i++ {
		if !off.Allow("x") {
			t.Fatal("zero limit should allow everything")
		}
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	l := New(50, time.Minute)
	defer l.Close()

	var mu sync.Mutex
	allowed := 0
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("bob") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 50 {
		t.Errorf("allowed: got %d, want 50", allowed)
	}
	l.Close()
}
