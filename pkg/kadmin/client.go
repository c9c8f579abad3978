package kadmin

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"

	"github.com/danishnajam/kafka/internal/observability"
	"github.com/danishnajam/kafka/pkg/acl"
)

// BrokerAdmin is the slice of sarama.ClusterAdmin this client uses.
type BrokerAdmin interface {
	CreateACLs([]*sarama.ResourceAcls) error
	ListAcls(filter sarama.AclFilter) ([]sarama.ResourceAcls, error)
	DeleteACL(filter sarama.AclFilter, validateOnly bool) ([]sarama.MatchingAcl, error)
	Close() error
}

type Config struct {
	Brokers     []string
	ClientID    string
	Version     sarama.KafkaVersion
	DialTimeout time.Duration
}

// Client issues ACL admin operations against a Kafka cluster.
type Client struct {
	admin  BrokerAdmin
	logger *slog.Logger
}

// New wraps an existing broker admin, typically a sarama.ClusterAdmin.
func New(admin BrokerAdmin, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{admin: admin, logger: logger}
}

// Connect dials the cluster and returns a ready client.
func Connect(cfg Config, logger *slog.Logger) (*Client, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kadmin: at least one broker address is required")
	}

	sc := sarama.NewConfig()
	sc.Version = cfg.Version
	if sc.Version == (sarama.KafkaVersion{}) {
		sc.Version = sarama.V2_1_0_0
	}
	if cfg.ClientID != "" {
		sc.ClientID = cfg.ClientID
	}
	if cfg.DialTimeout > 0 {
		sc.Net.DialTimeout = cfg.DialTimeout
	}

	admin, err := sarama.NewClusterAdmin(cfg.Brokers, sc)
	if err != nil {
		return nil, fmt.Errorf("kadmin: connect cluster admin: %w", err)
	}
	return New(admin, logger), nil
}

func (c *Client) Close() error {
	return c.admin.Close()
}

// readyProbe is a narrow filter that matches no real binding; Ping uses
// it to exercise a full broker round trip without touching state.
var readyProbe = acl.BindingFilter{
	ResourceType: acl.ResourceTopic,
	ResourceName: "__acl-admin-ready",
	PatternType:  acl.PatternLiteral,
	Operation:    acl.OpAny,
	Permission:   acl.PermissionAny,
}

// Ping verifies the admin connection with a minimal describe request.
func (c *Client) Ping() error {
	start := time.Now()
	_, err := c.admin.ListAcls(toSaramaFilter(readyProbe))
	observability.ObserveBrokerOp("ping", err, time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("kadmin: ping: %w", err)
	}
	return nil
}

// DeleteACLs starts one broker delete per distinct filter and returns
// immediately. Each filter's future resolves when its delete finishes:
// with the matched outcomes on a completed request, or with a
// filter-level failure if the request itself could not be completed.
// In-flight deletes cannot be cancelled; abandoning the result leaves
// them to run to completion.
func (c *Client) DeleteACLs(filters []acl.BindingFilter) (*DeleteResult, error) {
	if len(filters) == 0 {
		return nil, errors.New("kadmin: DeleteACLs requires at least one filter")
	}
	for _, f := range filters {
		if err := f.Validate(); err != nil {
			return nil, fmt.Errorf("kadmin: DeleteACLs filter %s: %w", f, err)
		}
	}

	r := NewDeleteResult(filters)
	for _, f := range r.Filters() {
		go c.deleteOne(r, f)
	}
	return r, nil
}

func (c *Client) deleteOne(r *DeleteResult, f acl.BindingFilter) {
	start := time.Now()
	matched, err := c.admin.DeleteACL(toSaramaFilter(f), false)
	observability.ObserveBrokerOp("delete_acls", err, time.Since(start).Seconds())
	if err != nil {
		c.logger.Error("acl delete failed", "filter", f.String(), "err", err)
		r.fail(f, fmt.Errorf("kadmin: delete acls for filter %s: %w", f, err))
		return
	}

	results := make(FilterResults, 0, len(matched))
	itemErrs := 0
	for _, m := range matched {
		if err := matchingErr(m); err != nil {
			itemErrs++
			observability.IncBindingError(m.Err.Error())
			results = append(results, FilterResult{Err: err})
			continue
		}
		results = append(results, FilterResult{Binding: bindingFromMatching(m)})
	}

	c.logger.Debug("acl delete finished",
		"filter", f.String(), "matched", len(matched), "errors", itemErrs)
	r.complete(f, results)
}

// CreateACLs stores the given bindings on the cluster.
func (c *Client) CreateACLs(bindings []acl.Binding) error {
	if len(bindings) == 0 {
		return errors.New("kadmin: CreateACLs requires at least one binding")
	}

	// group entries under their resource pattern, preserving first-seen
	// pattern order
	var patterns []acl.ResourcePattern
	grouped := make(map[acl.ResourcePattern][]*sarama.Acl, len(bindings))
	for _, b := range bindings {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("kadmin: CreateACLs binding %s: %w", b, err)
		}
		if _, ok := grouped[b.Pattern]; !ok {
			patterns = append(patterns, b.Pattern)
		}
		entry := toSaramaAcl(b.Entry)
		grouped[b.Pattern] = append(grouped[b.Pattern], &entry)
	}

	ras := make([]*sarama.ResourceAcls, 0, len(patterns))
	for _, p := range patterns {
		ras = append(ras, &sarama.ResourceAcls{
			Resource: toSaramaResource(p),
			Acls:     grouped[p],
		})
	}

	start := time.Now()
	err := c.admin.CreateACLs(ras)
	observability.ObserveBrokerOp("create_acls", err, time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("kadmin: create %d acls: %w", len(bindings), err)
	}
	c.logger.Info("acls created", "bindings", len(bindings), "resources", len(ras))
	return nil
}

// DescribeACLs returns every binding the filter matches.
func (c *Client) DescribeACLs(filter acl.BindingFilter) ([]acl.Binding, error) {
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("kadmin: DescribeACLs filter %s: %w", filter, err)
	}

	start := time.Now()
	ras, err := c.admin.ListAcls(toSaramaFilter(filter))
	observability.ObserveBrokerOp("describe_acls", err, time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("kadmin: describe acls for filter %s: %w", filter, err)
	}
	return bindingsFromResourceAcls(ras), nil
}
