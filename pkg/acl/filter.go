package acl

import "fmt"

// BindingFilter selects bindings. Empty names and Any members are
// wildcards. Filters are comparable values and are used as map keys, so
// two filters with equal fields are the same filter.
type BindingFilter struct {
	ResourceType ResourceType   `json:"resource_type"`
	ResourceName string         `json:"resource_name,omitempty"`
	PatternType  PatternType    `json:"pattern_type"`
	Principal    string         `json:"principal,omitempty"`
	Host         string         `json:"host,omitempty"`
	Operation    Operation      `json:"operation"`
	Permission   PermissionType `json:"permission"`
}

// MatchAll selects every binding on the cluster.
var MatchAll = BindingFilter{
	ResourceType: ResourceAny,
	PatternType:  PatternAny,
	Operation:    OpAny,
	Permission:   PermissionAny,
}

func (f BindingFilter) String() string {
	return fmt.Sprintf("%s:%s:%s/%s@%s:%s:%s",
		f.ResourceType, f.PatternType, f.ResourceName,
		f.Principal, f.Host, f.Operation, f.Permission)
}

// Validate rejects filters containing Unknown members. Any members and
// empty names are legal wildcards.
func (f BindingFilter) Validate() error {
	if f.ResourceType == ResourceUnknown {
		return fmt.Errorf("acl: filter resource type is UNKNOWN")
	}
	if f.PatternType == PatternUnknown {
		return fmt.Errorf("acl: filter pattern type is UNKNOWN")
	}
	if f.Operation == OpUnknown {
		return fmt.Errorf("acl: filter operation is UNKNOWN")
	}
	if f.Permission == PermissionUnknown {
		return fmt.Errorf("acl: filter permission is UNKNOWN")
	}
	return nil
}

// Matches reports whether b would be selected by this filter, using the
// same rules the broker applies to DeleteAcls/DescribeAcls filters:
// every field matches exact-or-ANY. In particular an ALL-operation
// binding is only selected by an ALL or ANY operation filter; expanding
// ALL to cover specific operations is authorizer behavior, not filter
// matching.
func (f BindingFilter) Matches(b Binding) bool {
	if f.ResourceType != ResourceAny && f.ResourceType != b.Pattern.Type {
		return false
	}
	if !f.nameMatches(b.Pattern) {
		return false
	}
	if f.Principal != "" && f.Principal != b.Entry.Principal {
		return false
	}
	if f.Host != "" && f.Host != b.Entry.Host {
		return false
	}
	if f.Operation != OpAny && f.Operation != b.Entry.Operation {
		return false
	}
	if f.Permission != PermissionAny && f.Permission != b.Entry.Permission {
		return false
	}
	return true
}

func (f BindingFilter) nameMatches(p ResourcePattern) bool {
	switch f.PatternType {
	case PatternAny:
		return f.ResourceName == "" || f.ResourceName == p.Name
	case PatternMatch:
		if f.ResourceName == "" {
			return true
		}
		switch p.PatternType {
		case PatternLiteral:
			return p.Name == f.ResourceName || p.Name == "*"
		case PatternPrefixed:
			return len(f.ResourceName) >= len(p.Name) && f.ResourceName[:len(p.Name)] == p.Name
		default:
			return false
		}
	default:
		if f.PatternType != p.PatternType {
			return false
		}
		return f.ResourceName == "" || f.ResourceName == p.Name
	}
}
