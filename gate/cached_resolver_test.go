package gate_test

import (
	"context"
	"testing"
	"time"

	"github.com/diewo77/bizdesk/gate"
)

func TestCachedResolver_CachesPlan(t *testing.T) {
	inner := gate.NewStaticResolver[uint]()
	inner.Set(1, gate.NewStaticPlan("free"))

	cached := gate.NewCachedResolver[uint](inner, 5*time.Minute)

	p1, err := cached.Resolve(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p1.Code() != "free" {
		t.Errorf("expected 'free', got '%s'", p1.Code())
	}

	inner.Set(1, gate.NewStaticPlan("pro"))

	p2, err := cached.Resolve(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p2.Code() != "free" {
		t.Errorf("expected cached 'free', got '%s'", p2.Code())
	}
}

func TestCachedResolver_Invalidate(t *testing.T) {
	inner := gate.NewStaticResolver[uint]()
	inner.Set(1, gate.NewStaticPlan("free"))
	cached := gate.NewCachedResolver[uint](inner, 5*time.Minute)

	_, _ = cached.Resolve(context.Background(), 1)
	inner.Set(1, gate.NewStaticPlan("pro"))
	cached.Invalidate(1)

	p, err := cached.Resolve(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Code() != "pro" {
		t.Errorf("expected 'pro' after invalidation, got '%s'", p.Code())
	}
}

func TestCachedResolver_InvalidateAll(t *testing.T) {
	inner := gate.NewStaticResolver[uint]()
	inner.Set(1, gate.NewStaticPlan("free"))
	inner.Set(2, gate.NewStaticPlan("free"))
	cached := gate.NewCachedResolver[uint](inner, 5*time.Minute)

	_, _ = cached.Resolve(context.Background(), 1)
	_, _ = cached.Resolve(context.Background(), 2)
	inner.Set(1, gate.NewStaticPlan("business"))
	inner.Set(2, gate.NewStaticPlan("business"))
	cached.InvalidateAll()

	p1, _ := cached.Resolve(context.Background(), 1)
	p2, _ := cached.Resolve(context.Background(), 2)
	if p1.Code() != "business" || p2.Code() != "business" {
		t.Error("expected both plans to be 'business' after InvalidateAll")
	}
}

func TestCachedResolver_TTLExpiry(t *testing.T) {
	inner := gate.NewStaticResolver[uint]()
	inner.Set(1, gate.NewStaticPlan("free"))
	cached := gate.NewCachedResolver[uint](inner, 10*time.Millisecond)

	_, _ = cached.Resolve(context.Background(), 1)
	inner.Set(1, gate.NewStaticPlan("pro"))
	time.Sleep(20 * time.Millisecond)

	p, _ := cached.Resolve(context.Background(), 1)
	if p.Code() != "pro" {
		t.Errorf("expected 'pro' after TTL expiry, got '%s'", p.Code())
	}
}
