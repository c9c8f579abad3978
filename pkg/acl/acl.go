// Package acl models Kafka ACL bindings and the filters that select them.
package acl

import "fmt"

// ResourceType is the kind of cluster resource an ACL applies to.
type ResourceType int8

const (
	ResourceUnknown ResourceType = iota
	ResourceAny
	ResourceTopic
	ResourceGroup
	ResourceCluster
	ResourceTransactionalID
	ResourceDelegationToken
)

func (t ResourceType) String() string {
	switch t {
	case ResourceAny:
		return "ANY"
	case ResourceTopic:
		return "TOPIC"
	case ResourceGroup:
		return "GROUP"
	case ResourceCluster:
		return "CLUSTER"
	case ResourceTransactionalID:
		return "TRANSACTIONAL_ID"
	case ResourceDelegationToken:
		return "DELEGATION_TOKEN"
	default:
		return "UNKNOWN"
	}
}

// PatternType says how a resource pattern's name is interpreted.
type PatternType int8

const (
	PatternUnknown PatternType = iota
	PatternAny
	// PatternMatch selects every pattern that would affect the named
	// resource: the literal name, literal "*", and matching prefixes.
	PatternMatch
	PatternLiteral
	PatternPrefixed
)

func (t PatternType) String() string {
	switch t {
	case PatternAny:
		return "ANY"
	case PatternMatch:
		return "MATCH"
	case PatternLiteral:
		return "LITERAL"
	case PatternPrefixed:
		return "PREFIXED"
	default:
		return "UNKNOWN"
	}
}

// Operation is the action an ACL allows or denies.
type Operation int8

const (
	OpUnknown Operation = iota
	OpAny
	OpAll
	OpRead
	OpWrite
	OpCreate
	OpDelete
	OpAlter
	OpDescribe
	OpClusterAction
	OpDescribeConfigs
	OpAlterConfigs
	OpIdempotentWrite
)

func (o Operation) String() string {
	switch o {
	case OpAny:
		return "ANY"
	case OpAll:
		return "ALL"
	case OpRead:
		return "READ"
	case OpWrite:
		return "WRITE"
	case OpCreate:
		return "CREATE"
	case OpDelete:
		return "DELETE"
	case OpAlter:
		return "ALTER"
	case OpDescribe:
		return "DESCRIBE"
	case OpClusterAction:
		return "CLUSTER_ACTION"
	case OpDescribeConfigs:
		return "DESCRIBE_CONFIGS"
	case OpAlterConfigs:
		return "ALTER_CONFIGS"
	case OpIdempotentWrite:
		return "IDEMPOTENT_WRITE"
	default:
		return "UNKNOWN"
	}
}

// PermissionType says whether the ACL allows or denies the operation.
type PermissionType int8

const (
	PermissionUnknown PermissionType = iota
	PermissionAny
	PermissionAllow
	PermissionDeny
)

func (p PermissionType) String() string {
	switch p {
	case PermissionAny:
		return "ANY"
	case PermissionAllow:
		return "ALLOW"
	case PermissionDeny:
		return "DENY"
	default:
		return "UNKNOWN"
	}
}

// ResourcePattern names the resources a binding covers.
type ResourcePattern struct {
	Type        ResourceType `json:"resource_type"`
	Name        string       `json:"resource_name"`
	PatternType PatternType  `json:"pattern_type"`
}

func (p ResourcePattern) String() string {
	return fmt.Sprintf("%s:%s:%s", p.Type, p.PatternType, p.Name)
}

// Entry is the principal/host/operation/permission half of a binding.
type Entry struct {
	Principal  string         `json:"principal"`
	Host       string         `json:"host"`
	Operation  Operation      `json:"operation"`
	Permission PermissionType `json:"permission"`
}

func (e Entry) String() string {
	return fmt.Sprintf("%s@%s:%s:%s", e.Principal, e.Host, e.Operation, e.Permission)
}

// Binding is one concrete ACL: a resource pattern plus an access entry.
// Bindings are immutable values.
type Binding struct {
	Pattern ResourcePattern `json:"pattern"`
	Entry   Entry           `json:"entry"`
}

func (b Binding) String() string {
	return fmt.Sprintf("(%s, %s)", b.Pattern, b.Entry)
}

// Validate rejects bindings that could not be stored on a broker: every
// field must be concrete, no Any or Unknown members.
func (b Binding) Validate() error {
	switch b.Pattern.Type {
	case ResourceAny, ResourceUnknown:
		return fmt.Errorf("acl: binding resource type must be concrete, got %s", b.Pattern.Type)
	}
	switch b.Pattern.PatternType {
	case PatternLiteral, PatternPrefixed:
	default:
		return fmt.Errorf("acl: binding pattern type must be LITERAL or PREFIXED, got %s", b.Pattern.PatternType)
	}
	if b.Pattern.Name == "" {
		return fmt.Errorf("acl: binding resource name must not be empty")
	}
	if b.Entry.Principal == "" || b.Entry.Host == "" {
		return fmt.Errorf("acl: binding principal and host must not be empty")
	}
	switch b.Entry.Operation {
	case OpAny, OpUnknown:
		return fmt.Errorf("acl: binding operation must be concrete, got %s", b.Entry.Operation)
	}
	switch b.Entry.Permission {
	case PermissionAllow, PermissionDeny:
	default:
		return fmt.Errorf("acl: binding permission must be ALLOW or DENY, got %s", b.Entry.Permission)
	}
	return nil
}
