package ratelimit

import (
	"testing"
	"time"
)

func TestLimiterAllow(t *testing.T) {
	limiter := New(Config{
		RequestsPerMinute: 60,
		BurstSize:         5,
		CleanupInterval:   time.Minute,
	})
	defer limiter.Stop()

	key := "10.0.0.1"

	for i := 0; i < 5; i++ {
		if !limiter.Allow(key) {
			t.Errorf("request %d should be allowed (within burst)", i)
		}
	}

	if limiter.Allow(key) {
		t.Error("request after burst should be denied")
	}

	// 1 second = 1 token at 60/min
	time.Sleep(1100 * time.Millisecond)

	if !limiter.Allow(key) {
		t.Error("request after replenishment should be allowed")
	}
}

func TestLimiterIsolatesClients(t *testing.T) {
	limiter := New(Config{
		RequestsPerMinute: 60,
		BurstSize:         3,
		CleanupInterval:   time.Minute,
	})
	defer limiter.Stop()

	for i := 0; i < 3; i++ {
		limiter.Allow("client-a")
	}

	if limiter.Allow("client-a") {
		t.Error("client A should be rate limited")
	}
	if !limiter.Allow("client-b") {
		t.Error("client B should not be rate limited")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.RequestsPerMinute != 120 {
		t.Errorf("expected 120 requests/min, got %d", cfg.RequestsPerMinute)
	}
	if cfg.BurstSize != 20 {
		t.Errorf("expected burst size 20, got %d", cfg.BurstSize)
	}
	if cfg.CleanupInterval != time.Minute {
		t.Errorf("expected 1 minute cleanup interval, got %v", cfg.CleanupInterval)
	}
}
