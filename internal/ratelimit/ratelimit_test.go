package ratelimit

import (
	"testing"
	"time"
)

func TestAllowWithinBurst(t *testing.T) {
	krl := New(1, 3)
	defer krl.Stop()

	for i := 0; i < 3; i++ {
		if !krl.Allow("10.0.0.1") {
			t.Fatalf("request %d within burst was denied", i+1)
		}
	}
	if krl.Allow("10.0.0.1") {
		t.Fatal("request beyond burst was allowed")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	krl := New(1, 1)
	defer krl.Stop()

	if !krl.Allow("10.0.0.1") {
		t.Fatal("first key denied")
	}
	if krl.Allow("10.0.0.1") {
		t.Fatal("first key not limited after burst")
	}
	if !krl.Allow("10.0.0.2") {
		t.Fatal("second key throttled by first key's bucket")
	}
}

func TestTokensRefill(t *testing.T) {
	krl := New(100, 1)
	defer krl.Stop()

	if !krl.Allow("k") {
		t.Fatal("initial request denied")
	}
	if krl.Allow("k") {
		t.Fatal("burst not exhausted")
	}
	time.Sleep(15 * time.Millisecond) // > 1/100s
	if !krl.Allow("k") {
		t.Fatal("token did not refill")
	}
}

func TestIdleKeysAreEvicted(t *testing.T) {
	krl := New(1, 1)
	defer krl.Stop()

	krl.Allow("a")
	krl.Allow("b")
	if got := krl.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}

	krl.evictIdle(time.Now().Add(time.Second))
	if got := krl.Len(); got != 0 {
		t.Fatalf("Len() after eviction = %d, want 0", got)
	}

	// An evicted key gets a fresh bucket.
	if !krl.Allow("a") {
		t.Fatal("fresh bucket denied first request")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	krl := New(1, 1)
	krl.Stop()
	krl.Stop()
}
