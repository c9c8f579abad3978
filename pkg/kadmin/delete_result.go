// Package kadmin is a Kafka ACL administration client: it creates,
// describes and batch-deletes ACL bindings and aggregates the
// asynchronous per-filter outcomes of a batched delete.
package kadmin

import (
	"fmt"

	"github.com/danishnajam/kafka/pkg/acl"
	"github.com/danishnajam/kafka/pkg/future"
)

// FilterResult is the outcome for one binding matched by a delete
// filter: either the deleted binding, or the reason that one binding
// could not be deleted. Exactly one of the two is set.
type FilterResult struct {
	Binding acl.Binding
	Err     error
}

// FilterResults are the outcomes for everything one filter matched, in
// the order the broker returned them.
type FilterResults []FilterResult

// DeleteResult is the result of Client.DeleteACLs. It exposes one future
// per filter and a combined future over all of them.
type DeleteResult struct {
	order   []acl.BindingFilter
	futures map[acl.BindingFilter]*future.Future[FilterResults]
}

// NewDeleteResult builds a result over the given filters, one pending
// future per distinct filter. Duplicate filters collapse onto a single
// future. The filter set is fixed from here on.
func NewDeleteResult(filters []acl.BindingFilter) *DeleteResult {
	r := &DeleteResult{
		futures: make(map[acl.BindingFilter]*future.Future[FilterResults], len(filters)),
	}
	for _, f := range filters {
		if _, ok := r.futures[f]; ok {
			continue
		}
		r.order = append(r.order, f)
		r.futures[f] = future.New[FilterResults]()
	}
	return r
}

// Results returns the filter → future mapping. The key set is exactly
// the set of filters the delete was submitted with. Callers use this to
// await or inspect filters independently of the combined result.
func (r *DeleteResult) Results() map[acl.BindingFilter]*future.Future[FilterResults] {
	return r.futures
}

// Filters returns the distinct filters in submission order.
func (r *DeleteResult) Filters() []acl.BindingFilter {
	out := make([]acl.BindingFilter, len(r.order))
	copy(out, r.order)
	return out
}

// All returns a future that succeeds only if every filter's delete
// succeeded and every matched binding was deleted, carrying all deleted
// bindings (duplicates across filters preserved, empty matches
// contributing nothing). It resolves only after every per-filter future
// has resolved.
//
// A filter-level failure fails the combined future through the join
// itself. If iteration then finds an item-level error, the first one in
// (submission order, broker delivery order) fails the combined future
// and every other outcome is discarded. Calling All repeatedly builds
// new joins over the same per-filter futures, so all of them converge on
// equal terminal values.
func (r *DeleteResult) All() *future.Future[[]acl.Binding] {
	joined := make([]*future.Future[FilterResults], 0, len(r.order))
	for _, f := range r.order {
		joined = append(joined, r.futures[f])
	}
	join := future.AllOf(joined...)
	return future.ThenApply(join, func(struct{}) ([]acl.Binding, error) {
		deleted := make([]acl.Binding, 0)
		for _, f := range r.order {
			results, err := r.futures[f].Now()
			if err != nil {
				// The join only succeeds once every input succeeded, so a
				// failed read here means the join primitive broke its
				// contract. Surface it rather than swallowing it.
				return nil, fmt.Errorf("kadmin: DeleteResult.All internal error reading filter %s: %w", f, err)
			}
			for _, res := range results {
				if res.Err != nil {
					return nil, res.Err
				}
				deleted = append(deleted, res.Binding)
			}
		}
		return deleted, nil
	})
}

// complete resolves one filter's future with the broker's outcomes.
func (r *DeleteResult) complete(f acl.BindingFilter, results FilterResults) {
	if fut, ok := r.futures[f]; ok {
		fut.Complete(results)
	}
}

// fail resolves one filter's future with a filter-level failure.
func (r *DeleteResult) fail(f acl.BindingFilter, err error) {
	if fut, ok := r.futures[f]; ok {
		fut.Fail(err)
	}
}
