package aclcache

import (
	"context"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"github.com/danishnajam/kafka/pkg/acl"
)

// creates a cache connected to miniredis for testing
func newMini(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	t.Cleanup(cancel)

	c, err := New(ctx, mr.Addr(), ttl)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func filterFor(topic string) acl.BindingFilter {
	return acl.BindingFilter{
		ResourceType: acl.ResourceTopic,
		ResourceName: topic,
		PatternType:  acl.PatternLiteral,
		Operation:    acl.OpAny,
		Permission:   acl.PermissionAny,
	}
}

func bindingFor(topic, principal string) acl.Binding {
	return acl.Binding{
		Pattern: acl.ResourcePattern{Type: acl.ResourceTopic, Name: topic, PatternType: acl.PatternLiteral},
		Entry:   acl.Entry{Principal: principal, Host: "*", Operation: acl.OpRead, Permission: acl.PermissionAllow},
	}
}

func TestPutGetInvalidate(t *testing.T) {
	c, _ := newMini(t, time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	f := filterFor("orders")
	want := []acl.Binding{bindingFor("orders", "User:alice"), bindingFor("orders", "User:bob")}

	if _, ok, err := c.Get(ctx, f); err != nil || ok {
		t.Fatalf("Get before Put: ok=%v err=%v", ok, err)
	}

	if err := c.Put(ctx, f, want); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := c.Get(ctx, f)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok || len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("Get=%+v ok=%v want %+v", got, ok, want)
	}

	if err := c.Invalidate(ctx, f); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, ok, _ := c.Get(ctx, f); ok {
		t.Fatalf("Get after Invalidate should miss")
	}
}

func TestEmptyResultIsAValidHit(t *testing.T) {
	c, _ := newMini(t, time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	f := filterFor("unmatched")
	if err := c.Put(ctx, f, []acl.Binding{}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := c.Get(ctx, f)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatalf("an empty describe result should still be a hit")
	}
	if len(got) != 0 {
		t.Fatalf("bindings=%d want 0", len(got))
	}
}

func TestEntriesExpireWithTTL(t *testing.T) {
	c, mr := newMini(t, time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	f := filterFor("orders")
	if err := c.Put(ctx, f, []acl.Binding{bindingFor("orders", "User:alice")}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	mr.FastForward(2 * time.Second)
	if _, ok, _ := c.Get(ctx, f); ok {
		t.Fatalf("entry should have expired")
	}
}

func TestCorruptEntryBehavesLikeMiss(t *testing.T) {
	c, mr := newMini(t, time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	f := filterFor("orders")
	if err := mr.Set(Key(f), "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, ok, err := c.Get(ctx, f); err != nil || ok {
		t.Fatalf("corrupt entry: ok=%v err=%v want miss", ok, err)
	}
}

func TestReset_DropsEveryEntry(t *testing.T) {
	c, _ := newMini(t, time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	f1, f2 := filterFor("orders"), filterFor("payments")
	if err := c.Put(ctx, f1, []acl.Binding{bindingFor("orders", "User:alice")}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := c.Put(ctx, f2, []acl.Binding{}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	if err := c.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if _, ok, _ := c.Get(ctx, f1); ok {
		t.Fatalf("f1 should be gone after Reset")
	}
	if _, ok, _ := c.Get(ctx, f2); ok {
		t.Fatalf("f2 should be gone after Reset")
	}
}

func TestKey_DistinctFiltersDistinctKeys(t *testing.T) {
	seen := map[string]acl.BindingFilter{}
	filters := []acl.BindingFilter{
		filterFor("orders"),
		filterFor("orders-v2"),
		acl.MatchAll,
		{
			ResourceType: acl.ResourceTopic,
			ResourceName: "orders",
			PatternType:  acl.PatternPrefixed,
			Operation:    acl.OpAny,
			Permission:   acl.PermissionAny,
		},
		{
			ResourceType: acl.ResourceAny,
			PatternType:  acl.PatternAny,
			Principal:    "User:alice",
			Operation:    acl.OpAny,
			Permission:   acl.PermissionAny,
		},
	}
	for _, f := range filters {
		k := Key(f)
		if !strings.HasPrefix(k, "acls:describe:") {
			t.Fatalf("key %q missing namespace prefix", k)
		}
		if prev, dup := seen[k]; dup {
			t.Fatalf("filters %s and %s collide on key %q", prev, f, k)
		}
		seen[k] = f
	}
}

func TestKey_IsStable(t *testing.T) {
	f := filterFor("orders")
	if Key(f) != Key(f) {
		t.Fatalf("Key must be deterministic")
	}
}
