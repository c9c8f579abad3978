// Package router implements the HTTP handlers of the ACL admin API.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/danishnajam/kafka/internal/idempotency"
	"github.com/danishnajam/kafka/internal/observability"
	"github.com/danishnajam/kafka/pkg/acl"
	"github.com/danishnajam/kafka/pkg/future"
	"github.com/danishnajam/kafka/pkg/kadmin"
)

// Admin is the slice of the kadmin client the handlers use.
type Admin interface {
	DeleteACLs(filters []acl.BindingFilter) (*kadmin.DeleteResult, error)
	CreateACLs(bindings []acl.Binding) error
	DescribeACLs(filter acl.BindingFilter) ([]acl.Binding, error)
}

// DescribeCache is satisfied by aclcache.Cache; nil disables caching.
type DescribeCache interface {
	Get(ctx context.Context, f acl.BindingFilter) ([]acl.Binding, bool, error)
	Put(ctx context.Context, f acl.BindingFilter, bindings []acl.Binding) error
	Reset(ctx context.Context) error
}

// Auditor is satisfied by audit.Publisher; nil disables auditing.
type Auditor interface {
	Deleted(requestID string, b acl.Binding)
	DeleteFailed(requestID string, f acl.BindingFilter, err error)
	Created(requestID string, b acl.Binding)
}

type Handler struct {
	logger      *slog.Logger
	admin       Admin
	cache       DescribeCache
	audit       Auditor
	guard       *idempotency.Guard
	waitTimeout time.Duration
}

func New(logger *slog.Logger, admin Admin, cache DescribeCache, auditor Auditor, guard *idempotency.Guard, waitTimeout time.Duration) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if guard == nil {
		guard = idempotency.New(0)
	}
	if waitTimeout <= 0 {
		waitTimeout = 30 * time.Second
	}
	return &Handler{
		logger:      logger,
		admin:       admin,
		cache:       cache,
		audit:       auditor,
		guard:       guard,
		waitTimeout: waitTimeout,
	}
}

// nginx's code for a connection the client closed mid-request; there
// is no stdlib constant
const statusClientClosedRequest = 499

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

type deleteRequest struct {
	RequestID string              `json:"request_id,omitempty"`
	Filters   []acl.BindingFilter `json:"filters"`
}

type filterOutcome struct {
	Binding *acl.Binding `json:"binding,omitempty"`
	Error   string       `json:"error,omitempty"`
}

type filterSection struct {
	Filter   acl.BindingFilter `json:"filter"`
	Error    string            `json:"error,omitempty"`
	Outcomes []filterOutcome   `json:"outcomes,omitempty"`
}

type deleteResponse struct {
	Deleted []acl.Binding   `json:"deleted"`
	Error   string          `json:"error,omitempty"`
	Filters []filterSection `json:"filters"`
}

// DeleteACLs handles POST /v1/acls/delete: a batch of filters, one
// broker delete per filter, combined plus per-filter outcomes in the
// response.
func (h *Handler) DeleteACLs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		defer func() {
			observability.ObserveHTTP(r.Method, "/v1/acls/delete", sw.code, time.Since(start).Seconds())
		}()

		var req deleteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(sw, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
			return
		}
		if len(req.Filters) == 0 {
			http.Error(sw, "filters must not be empty", http.StatusBadRequest)
			return
		}
		// validate before consulting the guard so a rejected request
		// does not burn its request_id for the corrected retry
		for _, f := range req.Filters {
			if err := f.Validate(); err != nil {
				http.Error(sw, err.Error(), http.StatusBadRequest)
				return
			}
		}
		if !h.guard.FirstSeen(req.RequestID) {
			http.Error(sw, fmt.Sprintf("request_id %q already processed", req.RequestID), http.StatusConflict)
			return
		}

		result, err := h.admin.DeleteACLs(req.Filters)
		if err != nil {
			http.Error(sw, err.Error(), http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), h.waitTimeout)
		defer cancel()

		deleted, combinedErr := result.All().Get(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(combinedErr, ctxErr) {
			if errors.Is(ctxErr, context.Canceled) {
				// the client went away before the brokers answered
				sw.WriteHeader(statusClientClosedRequest)
				return
			}
			http.Error(sw, "timed out waiting for broker deletes", http.StatusGatewayTimeout)
			return
		}

		resp := deleteResponse{Deleted: deleted, Filters: h.filterSections(req.RequestID, result)}
		if resp.Deleted == nil {
			resp.Deleted = []acl.Binding{}
		}
		status := http.StatusOK
		if combinedErr != nil {
			resp.Error = combinedErr.Error()
			status = http.StatusBadGateway
		}
		observability.ObserveDeleteBatch(combinedErr, len(deleted))

		if h.cache != nil {
			if err := h.cache.Reset(r.Context()); err != nil {
				h.logger.Warn("describe cache reset failed", "err", err)
			}
		}

		writeJSON(sw, status, resp)
	}
}

// filterSections reads the already-resolved per-filter futures into the
// response detail and emits audit events.
func (h *Handler) filterSections(requestID string, result *kadmin.DeleteResult) []filterSection {
	futures := result.Results()
	sections := make([]filterSection, 0, len(futures))
	for _, f := range result.Filters() {
		section := filterSection{Filter: f}
		results, err := futures[f].Now()
		switch {
		case errors.Is(err, future.ErrPending):
			// only reachable on combined-wait timeout
			section.Error = "pending"
		case err != nil:
			section.Error = err.Error()
			if h.audit != nil {
				h.audit.DeleteFailed(requestID, f, err)
			}
		default:
			for _, res := range results {
				if res.Err != nil {
					section.Outcomes = append(section.Outcomes, filterOutcome{Error: res.Err.Error()})
					continue
				}
				b := res.Binding
				section.Outcomes = append(section.Outcomes, filterOutcome{Binding: &b})
				if h.audit != nil {
					h.audit.Deleted(requestID, b)
				}
			}
		}
		sections = append(sections, section)
	}
	return sections
}

type createRequest struct {
	RequestID string        `json:"request_id,omitempty"`
	Bindings  []acl.Binding `json:"bindings"`
}

// CreateACLs handles POST /v1/acls.
func (h *Handler) CreateACLs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		defer func() {
			observability.ObserveHTTP(r.Method, "/v1/acls", sw.code, time.Since(start).Seconds())
		}()

		var req createRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(sw, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
			return
		}
		if len(req.Bindings) == 0 {
			http.Error(sw, "bindings must not be empty", http.StatusBadRequest)
			return
		}
		for _, b := range req.Bindings {
			if err := b.Validate(); err != nil {
				http.Error(sw, err.Error(), http.StatusBadRequest)
				return
			}
		}
		if !h.guard.FirstSeen(req.RequestID) {
			http.Error(sw, fmt.Sprintf("request_id %q already processed", req.RequestID), http.StatusConflict)
			return
		}

		if err := h.admin.CreateACLs(req.Bindings); err != nil {
			http.Error(sw, err.Error(), http.StatusBadGateway)
			return
		}

		if h.audit != nil {
			for _, b := range req.Bindings {
				h.audit.Created(req.RequestID, b)
			}
		}
		if h.cache != nil {
			if err := h.cache.Reset(r.Context()); err != nil {
				h.logger.Warn("describe cache reset failed", "err", err)
			}
		}

		writeJSON(sw, http.StatusCreated, map[string]int{"created": len(req.Bindings)})
	}
}

// DescribeACLs handles GET /v1/acls, optionally served from the cache.
func (h *Handler) DescribeACLs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		defer func() {
			observability.ObserveHTTP(r.Method, "/v1/acls", sw.code, time.Since(start).Seconds())
		}()

		filter, err := ParseDescribeQuery(r)
		if err != nil {
			http.Error(sw, err.Error(), http.StatusBadRequest)
			return
		}

		if h.cache != nil {
			bindings, ok, err := h.cache.Get(r.Context(), filter)
			if err != nil {
				h.logger.Warn("describe cache read failed", "err", err)
			} else if ok {
				writeJSON(sw, http.StatusOK, map[string][]acl.Binding{"bindings": bindings})
				return
			}
		}

		bindings, err := h.admin.DescribeACLs(filter)
		if err != nil {
			http.Error(sw, err.Error(), http.StatusBadGateway)
			return
		}
		if bindings == nil {
			bindings = []acl.Binding{}
		}

		if h.cache != nil {
			if err := h.cache.Put(r.Context(), filter, bindings); err != nil {
				h.logger.Warn("describe cache write failed", "err", err)
			}
		}
		writeJSON(sw, http.StatusOK, map[string][]acl.Binding{"bindings": bindings})
	}
}

// ParseDescribeQuery builds a filter from GET query parameters. Missing
// enum parameters default to ANY, missing names to the empty wildcard.
func ParseDescribeQuery(r *http.Request) (acl.BindingFilter, error) {
	q := r.URL.Query()
	filter := acl.MatchAll
	filter.ResourceName = q.Get("resource_name")
	filter.Principal = q.Get("principal")
	filter.Host = q.Get("host")

	var err error
	if v := q.Get("resource_type"); v != "" {
		if filter.ResourceType, err = acl.ParseResourceType(v); err != nil {
			return acl.BindingFilter{}, fmt.Errorf("invalid resource_type: %w", err)
		}
	}
	if v := q.Get("pattern_type"); v != "" {
		if filter.PatternType, err = acl.ParsePatternType(v); err != nil {
			return acl.BindingFilter{}, fmt.Errorf("invalid pattern_type: %w", err)
		}
	}
	if v := q.Get("operation"); v != "" {
		if filter.Operation, err = acl.ParseOperation(v); err != nil {
			return acl.BindingFilter{}, fmt.Errorf("invalid operation: %w", err)
		}
	}
	if v := q.Get("permission"); v != "" {
		if filter.Permission, err = acl.ParsePermissionType(v); err != nil {
			return acl.BindingFilter{}, fmt.Errorf("invalid permission: %w", err)
		}
	}
	if err := filter.Validate(); err != nil {
		return acl.BindingFilter{}, err
	}
	return filter, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
