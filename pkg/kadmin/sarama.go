package kadmin

import (
	"fmt"

	"github.com/IBM/sarama"

	"github.com/danishnajam/kafka/pkg/acl"
)

// aclFilterVersion 1 turns on pattern-type filtering in DeleteAcls /
// DescribeAcls requests.
const aclFilterVersion = 1

func toSaramaFilter(f acl.BindingFilter) sarama.AclFilter {
	out := sarama.AclFilter{
		Version:                   aclFilterVersion,
		ResourceType:              toSaramaResourceType(f.ResourceType),
		ResourcePatternTypeFilter: toSaramaPatternType(f.PatternType),
		Operation:                 toSaramaOperation(f.Operation),
		PermissionType:            toSaramaPermission(f.Permission),
	}
	if f.ResourceName != "" {
		name := f.ResourceName
		out.ResourceName = &name
	}
	if f.Principal != "" {
		p := f.Principal
		out.Principal = &p
	}
	if f.Host != "" {
		h := f.Host
		out.Host = &h
	}
	return out
}

func toSaramaResource(p acl.ResourcePattern) sarama.Resource {
	return sarama.Resource{
		ResourceType:        toSaramaResourceType(p.Type),
		ResourceName:        p.Name,
		ResourcePatternType: toSaramaPatternType(p.PatternType),
	}
}

func toSaramaAcl(e acl.Entry) sarama.Acl {
	return sarama.Acl{
		Principal:      e.Principal,
		Host:           e.Host,
		Operation:      toSaramaOperation(e.Operation),
		PermissionType: toSaramaPermission(e.Permission),
	}
}

func bindingFromMatching(m sarama.MatchingAcl) acl.Binding {
	return acl.Binding{
		Pattern: acl.ResourcePattern{
			Type:        fromSaramaResourceType(m.ResourceType),
			Name:        m.ResourceName,
			PatternType: fromSaramaPatternType(m.ResourcePatternType),
		},
		Entry: acl.Entry{
			Principal:  m.Principal,
			Host:       m.Host,
			Operation:  fromSaramaOperation(m.Operation),
			Permission: fromSaramaPermission(m.PermissionType),
		},
	}
}

func bindingsFromResourceAcls(ras []sarama.ResourceAcls) []acl.Binding {
	var out []acl.Binding
	for _, ra := range ras {
		pattern := acl.ResourcePattern{
			Type:        fromSaramaResourceType(ra.ResourceType),
			Name:        ra.ResourceName,
			PatternType: fromSaramaPatternType(ra.ResourcePatternType),
		}
		for _, a := range ra.Acls {
			if a == nil {
				continue
			}
			out = append(out, acl.Binding{
				Pattern: pattern,
				Entry: acl.Entry{
					Principal:  a.Principal,
					Host:       a.Host,
					Operation:  fromSaramaOperation(a.Operation),
					Permission: fromSaramaPermission(a.PermissionType),
				},
			})
		}
	}
	return out
}

// matchingErr converts one MatchingAcl's error fields into an item-level
// error, or nil if that binding was deleted.
func matchingErr(m sarama.MatchingAcl) error {
	if m.Err == sarama.ErrNoError {
		return nil
	}
	b := bindingFromMatching(m)
	if m.ErrMsg != nil && *m.ErrMsg != "" {
		return fmt.Errorf("kadmin: delete %s: %s: %w", b, *m.ErrMsg, m.Err)
	}
	return fmt.Errorf("kadmin: delete %s: %w", b, m.Err)
}

func toSaramaResourceType(t acl.ResourceType) sarama.AclResourceType {
	switch t {
	case acl.ResourceAny:
		return sarama.AclResourceAny
	case acl.ResourceTopic:
		return sarama.AclResourceTopic
	case acl.ResourceGroup:
		return sarama.AclResourceGroup
	case acl.ResourceCluster:
		return sarama.AclResourceCluster
	case acl.ResourceTransactionalID:
		return sarama.AclResourceTransactionalID
	case acl.ResourceDelegationToken:
		return sarama.AclResourceDelegationToken
	default:
		return sarama.AclResourceUnknown
	}
}

func fromSaramaResourceType(t sarama.AclResourceType) acl.ResourceType {
	switch t {
	case sarama.AclResourceAny:
		return acl.ResourceAny
	case sarama.AclResourceTopic:
		return acl.ResourceTopic
	case sarama.AclResourceGroup:
		return acl.ResourceGroup
	case sarama.AclResourceCluster:
		return acl.ResourceCluster
	case sarama.AclResourceTransactionalID:
		return acl.ResourceTransactionalID
	case sarama.AclResourceDelegationToken:
		return acl.ResourceDelegationToken
	default:
		return acl.ResourceUnknown
	}
}

func toSaramaPatternType(t acl.PatternType) sarama.AclResourcePatternType {
	switch t {
	case acl.PatternAny:
		return sarama.AclPatternAny
	case acl.PatternMatch:
		return sarama.AclPatternMatch
	case acl.PatternLiteral:
		return sarama.AclPatternLiteral
	case acl.PatternPrefixed:
		return sarama.AclPatternPrefixed
	default:
		return sarama.AclPatternUnknown
	}
}

func fromSaramaPatternType(t sarama.AclResourcePatternType) acl.PatternType {
	switch t {
	case sarama.AclPatternAny:
		return acl.PatternAny
	case sarama.AclPatternMatch:
		return acl.PatternMatch
	case sarama.AclPatternLiteral:
		return acl.PatternLiteral
	case sarama.AclPatternPrefixed:
		return acl.PatternPrefixed
	default:
		return acl.PatternUnknown
	}
}

func toSaramaOperation(o acl.Operation) sarama.AclOperation {
	switch o {
	case acl.OpAny:
		return sarama.AclOperationAny
	case acl.OpAll:
		return sarama.AclOperationAll
	case acl.OpRead:
		return sarama.AclOperationRead
	case acl.OpWrite:
		return sarama.AclOperationWrite
	case acl.OpCreate:
		return sarama.AclOperationCreate
	case acl.OpDelete:
		return sarama.AclOperationDelete
	case acl.OpAlter:
		return sarama.AclOperationAlter
	case acl.OpDescribe:
		return sarama.AclOperationDescribe
	case acl.OpClusterAction:
		return sarama.AclOperationClusterAction
	case acl.OpDescribeConfigs:
		return sarama.AclOperationDescribeConfigs
	case acl.OpAlterConfigs:
		return sarama.AclOperationAlterConfigs
	case acl.OpIdempotentWrite:
		return sarama.AclOperationIdempotentWrite
	default:
		return sarama.AclOperationUnknown
	}
}

func fromSaramaOperation(o sarama.AclOperation) acl.Operation {
	switch o {
	case sarama.AclOperationAny:
		return acl.OpAny
	case sarama.AclOperationAll:
		return acl.OpAll
	case sarama.AclOperationRead:
		return acl.OpRead
	case sarama.AclOperationWrite:
		return acl.OpWrite
	case sarama.AclOperationCreate:
		return acl.OpCreate
	case sarama.AclOperationDelete:
		return acl.OpDelete
	case sarama.AclOperationAlter:
		return acl.OpAlter
	case sarama.AclOperationDescribe:
		return acl.OpDescribe
	case sarama.AclOperationClusterAction:
		return acl.OpClusterAction
	case sarama.AclOperationDescribeConfigs:
		return acl.OpDescribeConfigs
	case sarama.AclOperationAlterConfigs:
		return acl.OpAlterConfigs
	case sarama.AclOperationIdempotentWrite:
		return acl.OpIdempotentWrite
	default:
		return acl.OpUnknown
	}
}

func toSaramaPermission(p acl.PermissionType) sarama.AclPermissionType {
	switch p {
	case acl.PermissionAny:
		return sarama.AclPermissionAny
	case acl.PermissionAllow:
		return sarama.AclPermissionAllow
	case acl.PermissionDeny:
		return sarama.AclPermissionDeny
	default:
		return sarama.AclPermissionUnknown
	}
}

func fromSaramaPermission(p sarama.AclPermissionType) acl.PermissionType {
	switch p {
	case sarama.AclPermissionAny:
		return acl.PermissionAny
	case sarama.AclPermissionAllow:
		return acl.PermissionAllow
	case sarama.AclPermissionDeny:
		return acl.PermissionDeny
	default:
		return acl.PermissionUnknown
	}
}
