package kadmin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/danishnajam/kafka/pkg/acl"
)

func topicFilter(name string) acl.BindingFilter {
	return acl.BindingFilter{
		ResourceType: acl.ResourceTopic,
		ResourceName: name,
		PatternType:  acl.PatternLiteral,
		Operation:    acl.OpAny,
		Permission:   acl.PermissionAny,
	}
}

func topicBinding(name, principal string) acl.Binding {
	return acl.Binding{
		Pattern: acl.ResourcePattern{Type: acl.ResourceTopic, Name: name, PatternType: acl.PatternLiteral},
		Entry: acl.Entry{
			Principal:  principal,
			Host:       "*",
			Operation:  acl.OpRead,
			Permission: acl.PermissionAllow,
		},
	}
}

func getAll(t *testing.T, r *DeleteResult) ([]acl.Binding, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return r.All().Get(ctx)
}

func TestAll_CombinesEverySuccessfulBinding(t *testing.T) {
	f1, f2 := topicFilter("orders"), topicFilter("payments")
	a := topicBinding("orders", "User:alice")
	b := topicBinding("orders", "User:bob")
	c := topicBinding("payments", "User:carol")

	r := NewDeleteResult([]acl.BindingFilter{f1, f2})
	r.complete(f1, FilterResults{{Binding: a}, {Binding: b}})
	r.complete(f2, FilterResults{{Binding: c}})

	got, err := getAll(t, r)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("deleted=%d want 3", len(got))
	}
	want := map[acl.Binding]int{a: 1, b: 1, c: 1}
	for _, bind := range got {
		want[bind]--
	}
	for bind, n := range want {
		if n != 0 {
			t.Fatalf("binding %s: count off by %d", bind, n)
		}
	}
}

func TestAll_FirstItemErrorWins_PerFilterViewIntact(t *testing.T) {
	f1, f2 := topicFilter("orders"), topicFilter("payments")
	a := topicBinding("orders", "User:alice")
	c := topicBinding("payments", "User:carol")
	errItem := errors.New("authorization denied")

	r := NewDeleteResult([]acl.BindingFilter{f1, f2})
	r.complete(f1, FilterResults{{Binding: a}, {Err: errItem}})
	r.complete(f2, FilterResults{{Binding: c}})

	if _, err := getAll(t, r); !errors.Is(err, errItem) {
		t.Fatalf("All err=%v want %v", err, errItem)
	}

	// the combined view collapsing to a failure must not hide the
	// per-filter outcomes
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	res, err := r.Results()[f2].Get(ctx)
	if err != nil {
		t.Fatalf("filter %s: %v", f2, err)
	}
	if len(res) != 1 || res[0].Err != nil || res[0].Binding != c {
		t.Fatalf("filter %s results=%+v want [%s]", f2, res, c)
	}
}

func TestAll_EmptyMatchIsSuccess(t *testing.T) {
	f1 := topicFilter("unmatched")
	r := NewDeleteResult([]acl.BindingFilter{f1})
	r.complete(f1, FilterResults{})

	got, err := getAll(t, r)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("deleted=%d want 0", len(got))
	}
}

func TestAll_FilterLevelFailurePropagates(t *testing.T) {
	f1 := topicFilter("orders")
	errBroker := errors.New("broker unavailable")

	r := NewDeleteResult([]acl.BindingFilter{f1})
	r.fail(f1, errBroker)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := r.Results()[f1].Get(ctx); !errors.Is(err, errBroker) {
		t.Fatalf("per-filter err=%v want %v", err, errBroker)
	}
	// the combined future fails through the join with the same cause
	if _, err := getAll(t, r); !errors.Is(err, errBroker) {
		t.Fatalf("All err=%v want %v", err, errBroker)
	}
}

func TestAll_ResolvesOnlyAfterEveryFilter(t *testing.T) {
	f1, f2 := topicFilter("orders"), topicFilter("payments")
	r := NewDeleteResult([]acl.BindingFilter{f1, f2})
	all := r.All()

	r.complete(f1, FilterResults{{Binding: topicBinding("orders", "User:alice")}})
	select {
	case <-all.Done():
		t.Fatalf("combined future resolved before every filter did")
	case <-time.After(10 * time.Millisecond):
	}

	r.complete(f2, FilterResults{})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := all.Get(ctx); err != nil {
		t.Fatalf("All: %v", err)
	}
}

func TestAll_IsIdempotent(t *testing.T) {
	f1, f2 := topicFilter("orders"), topicFilter("payments")
	err1 := errors.New("first filter error")
	err2 := errors.New("second filter error")

	// two item-level errors in different filters; both calls must
	// surface the same one (submission order decides)
	r := NewDeleteResult([]acl.BindingFilter{f1, f2})
	r.complete(f1, FilterResults{{Err: err1}})
	r.complete(f2, FilterResults{{Err: err2}})

	_, errA := getAll(t, r)
	_, errB := getAll(t, r)
	if !errors.Is(errA, err1) || !errors.Is(errB, err1) {
		t.Fatalf("All errors=%v/%v want both %v", errA, errB, err1)
	}
}

func TestAll_DuplicateBindingsAcrossFiltersPreserved(t *testing.T) {
	// a literal filter and a principal filter can both match the same
	// binding; the combined sequence keeps both occurrences
	f1 := topicFilter("orders")
	f2 := acl.BindingFilter{
		ResourceType: acl.ResourceAny,
		PatternType:  acl.PatternAny,
		Principal:    "User:alice",
		Operation:    acl.OpAny,
		Permission:   acl.PermissionAny,
	}
	shared := topicBinding("orders", "User:alice")

	r := NewDeleteResult([]acl.BindingFilter{f1, f2})
	r.complete(f1, FilterResults{{Binding: shared}})
	r.complete(f2, FilterResults{{Binding: shared}})

	got, err := getAll(t, r)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("deleted=%d want 2 (duplicates preserved)", len(got))
	}
}

func TestResults_KeySetMatchesSubmittedFilters(t *testing.T) {
	f1, f2, f3 := topicFilter("a"), topicFilter("b"), topicFilter("c")
	r := NewDeleteResult([]acl.BindingFilter{f1, f2, f3})

	m := r.Results()
	if len(m) != 3 {
		t.Fatalf("key set size=%d want 3", len(m))
	}
	for _, f := range []acl.BindingFilter{f1, f2, f3} {
		if m[f] == nil {
			t.Fatalf("missing future for filter %s", f)
		}
	}

	// outcomes do not change the key set
	r.fail(f1, errors.New("x"))
	r.complete(f2, FilterResults{})
	if len(r.Results()) != 3 {
		t.Fatalf("key set changed after resolution")
	}
}

func TestNewDeleteResult_DuplicateFiltersCollapse(t *testing.T) {
	f := topicFilter("orders")
	r := NewDeleteResult([]acl.BindingFilter{f, f, f})

	if got := len(r.Results()); got != 1 {
		t.Fatalf("futures=%d want 1", got)
	}
	if got := len(r.Filters()); got != 1 {
		t.Fatalf("filters=%d want 1", got)
	}
}
