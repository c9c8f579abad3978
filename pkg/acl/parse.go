package acl

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Enum values cross the HTTP API as their string names, so every enum
// gets a case-insensitive parser and JSON round-trips through String().

func ParseResourceType(s string) (ResourceType, error) {
	switch normalize(s) {
	case "ANY":
		return ResourceAny, nil
	case "TOPIC":
		return ResourceTopic, nil
	case "GROUP":
		return ResourceGroup, nil
	case "CLUSTER":
		return ResourceCluster, nil
	case "TRANSACTIONAL_ID":
		return ResourceTransactionalID, nil
	case "DELEGATION_TOKEN":
		return ResourceDelegationToken, nil
	case "UNKNOWN":
		return ResourceUnknown, nil
	default:
		return ResourceUnknown, fmt.Errorf("acl: unrecognized resource type %q", s)
	}
}

func ParsePatternType(s string) (PatternType, error) {
	switch normalize(s) {
	case "ANY":
		return PatternAny, nil
	case "MATCH":
		return PatternMatch, nil
	case "LITERAL":
		return PatternLiteral, nil
	case "PREFIXED":
		return PatternPrefixed, nil
	case "UNKNOWN":
		return PatternUnknown, nil
	default:
		return PatternUnknown, fmt.Errorf("acl: unrecognized pattern type %q", s)
	}
}

func ParseOperation(s string) (Operation, error) {
	switch normalize(s) {
	case "ANY":
		return OpAny, nil
	case "ALL":
		return OpAll, nil
	case "READ":
		return OpRead, nil
	case "WRITE":
		return OpWrite, nil
	case "CREATE":
		return OpCreate, nil
	case "DELETE":
		return OpDelete, nil
	case "ALTER":
		return OpAlter, nil
	case "DESCRIBE":
		return OpDescribe, nil
	case "CLUSTER_ACTION":
		return OpClusterAction, nil
	case "DESCRIBE_CONFIGS":
		return OpDescribeConfigs, nil
	case "ALTER_CONFIGS":
		return OpAlterConfigs, nil
	case "IDEMPOTENT_WRITE":
		return OpIdempotentWrite, nil
	case "UNKNOWN":
		return OpUnknown, nil
	default:
		return OpUnknown, fmt.Errorf("acl: unrecognized operation %q", s)
	}
}

func ParsePermissionType(s string) (PermissionType, error) {
	switch normalize(s) {
	case "ANY":
		return PermissionAny, nil
	case "ALLOW":
		return PermissionAllow, nil
	case "DENY":
		return PermissionDeny, nil
	case "UNKNOWN":
		return PermissionUnknown, nil
	default:
		return PermissionUnknown, fmt.Errorf("acl: unrecognized permission type %q", s)
	}
}

func normalize(s string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
}

func (t ResourceType) MarshalJSON() ([]byte, error) { return json.Marshal(t.String()) }
func (t PatternType) MarshalJSON() ([]byte, error)  { return json.Marshal(t.String()) }
func (o Operation) MarshalJSON() ([]byte, error)    { return json.Marshal(o.String()) }
func (p PermissionType) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (t *ResourceType) UnmarshalJSON(b []byte) error {
	s, err := unquote(b)
	if err != nil {
		return err
	}
	*t, err = ParseResourceType(s)
	return err
}

func (t *PatternType) UnmarshalJSON(b []byte) error {
	s, err := unquote(b)
	if err != nil {
		return err
	}
	*t, err = ParsePatternType(s)
	return err
}

func (o *Operation) UnmarshalJSON(b []byte) error {
	s, err := unquote(b)
	if err != nil {
		return err
	}
	*o, err = ParseOperation(s)
	return err
}

func (p *PermissionType) UnmarshalJSON(b []byte) error {
	s, err := unquote(b)
	if err != nil {
		return err
	}
	*p, err = ParsePermissionType(s)
	return err
}

func unquote(b []byte) (string, error) {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return "", fmt.Errorf("acl: enum value must be a JSON string: %w", err)
	}
	return s, nil
}
