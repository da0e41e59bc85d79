package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestEmoteRateLimiterCooldown(t *testing.T) {
	rl := NewEmoteRateLimiter(3, time.Minute, time.Minute)
	defer rl.Stop()

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	now := base
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !rl.Allow("sub-1") {
			t.Fatalf("emote %d should be allowed", i+1)
		}
	}
	if rl.Allow("sub-1") {
		t.Fatal("4th emote inside the window must be rejected")
	}
	if got := rl.CooldownSeconds("sub-1"); got != 61 {
		t.Errorf("CooldownSeconds = %d, want 61", got)
	}

	// Başka bir subject etkilenmez
	if !rl.Allow("sub-2") {
		t.Error("other subject must not share the bucket")
	}

	now = base.Add(2 * time.Minute)
	if !rl.Allow("sub-1") {
		t.Error("emote after cooldown should be allowed")
	}
	if got := rl.CooldownSeconds("sub-1"); got != 0 {
		t.Errorf("CooldownSeconds after reset = %d, want 0", got)
	}
}

func TestEmoteRateLimiterDisabled(t *testing.T) {
	rl := NewEmoteRateLimiter(0, time.Second, time.Second)
	defer rl.Stop()

	for i := 0; i < 100; i++ {
		if !rl.Allow("sub") {
			t.Fatal("disabled limiter must always allow")
		}
	}
}

func TestEmoteRateLimiterCleanupKeepsCooldown(t *testing.T) {
	rl := NewEmoteRateLimiter(1, time.Second, time.Hour)
	defer rl.Stop()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := base
	rl.now = func() time.Time { return now }

	rl.Allow("a")
	rl.Allow("a") // cooldown
	rl.Allow("b")

	now = base.Add(time.Minute)
	rl.cleanup()

	if _, ok := rl.buckets["a"]; !ok {
		t.Error("bucket in cooldown must survive cleanup")
	}
	if _, ok := rl.buckets["b"]; ok {
		t.Error("expired bucket should be removed")
	}
}

func TestConnectRateLimiter(t *testing.T) {
	rl := NewConnectRateLimiter(2, time.Minute)
	defer rl.Stop()

	if !rl.Allow("1.2.3.4") || !rl.Allow("1.2.3.4") {
		t.Fatal("first two attempts should pass")
	}
	if rl.Allow("1.2.3.4") {
		t.Fatal("third attempt must be rejected")
	}
	if rl.RetryAfterSeconds("1.2.3.4") <= 0 {
		t.Error("RetryAfterSeconds should be positive while limited")
	}
	if !rl.Allow("5.6.7.8") {
		t.Error("other IP must not be limited")
	}
}

func TestExtractIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/ws", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	if got := ExtractIP(r); got != "10.0.0.1" {
		t.Errorf("RemoteAddr ip = %q", got)
	}

	r.Header.Set("X-Real-IP", "10.0.0.2")
	if got := ExtractIP(r); got != "10.0.0.2" {
		t.Errorf("X-Real-IP ip = %q", got)
	}

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.3")
	if got := ExtractIP(r); got != "203.0.113.9" {
		t.Errorf("X-Forwarded-For ip = %q", got)
	}
}

func TestLimitersStopGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	e := NewEmoteRateLimiter(1, time.Second, time.Second)
	c := NewConnectRateLimiter(1, time.Second)
	e.Stop()
	e.Stop()
	c.Stop()
}
