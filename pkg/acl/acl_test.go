package acl

import "testing"

func binding(name string, pt PatternType, principal string, op Operation) Binding {
	return Binding{
		Pattern: ResourcePattern{Type: ResourceTopic, Name: name, PatternType: pt},
		Entry: Entry{
			Principal:  principal,
			Host:       "*",
			Operation:  op,
			Permission: PermissionAllow,
		},
	}
}

func TestMatchAll_SelectsEverything(t *testing.T) {
	bindings := []Binding{
		binding("orders", PatternLiteral, "User:alice", OpRead),
		binding("pay", PatternPrefixed, "User:bob", OpWrite),
		{
			Pattern: ResourcePattern{Type: ResourceCluster, Name: "kafka-cluster", PatternType: PatternLiteral},
			Entry:   Entry{Principal: "User:admin", Host: "10.0.0.1", Operation: OpClusterAction, Permission: PermissionDeny},
		},
	}
	for _, b := range bindings {
		if !MatchAll.Matches(b) {
			t.Fatalf("MatchAll should select %s", b)
		}
	}
}

func TestMatches_FieldByField(t *testing.T) {
	b := binding("orders", PatternLiteral, "User:alice", OpRead)

	cases := []struct {
		name   string
		filter BindingFilter
		want   bool
	}{
		{"exact", BindingFilter{
			ResourceType: ResourceTopic, ResourceName: "orders", PatternType: PatternLiteral,
			Principal: "User:alice", Host: "*", Operation: OpRead, Permission: PermissionAllow,
		}, true},
		{"wrong resource type", BindingFilter{
			ResourceType: ResourceGroup, PatternType: PatternAny,
			Operation: OpAny, Permission: PermissionAny,
		}, false},
		{"wrong name", BindingFilter{
			ResourceType: ResourceAny, ResourceName: "payments", PatternType: PatternAny,
			Operation: OpAny, Permission: PermissionAny,
		}, false},
		{"wrong principal", BindingFilter{
			ResourceType: ResourceAny, PatternType: PatternAny, Principal: "User:bob",
			Operation: OpAny, Permission: PermissionAny,
		}, false},
		{"operation wildcard", BindingFilter{
			ResourceType: ResourceAny, PatternType: PatternAny,
			Operation: OpAny, Permission: PermissionAny,
		}, true},
		{"wrong operation", BindingFilter{
			ResourceType: ResourceAny, PatternType: PatternAny,
			Operation: OpWrite, Permission: PermissionAny,
		}, false},
		{"wrong permission", BindingFilter{
			ResourceType: ResourceAny, PatternType: PatternAny,
			Operation: OpAny, Permission: PermissionDeny,
		}, false},
	}
	for _, tc := range cases {
		if got := tc.filter.Matches(b); got != tc.want {
			t.Errorf("%s: Matches=%v want %v", tc.name, got, tc.want)
		}
	}
}

func TestMatches_OperationIsExactOrAny(t *testing.T) {
	all := binding("orders", PatternLiteral, "User:alice", OpAll)
	read := binding("orders", PatternLiteral, "User:alice", OpRead)

	readFilter := BindingFilter{
		ResourceType: ResourceAny, PatternType: PatternAny,
		Operation: OpRead, Permission: PermissionAny,
	}
	// filter matching is exact-or-ANY; an ALL binding is only selected
	// by ALL or ANY, never by a specific operation
	if readFilter.Matches(all) {
		t.Fatalf("a READ filter should not select an ALL-operation binding")
	}
	if !readFilter.Matches(read) {
		t.Fatalf("a READ filter should select a READ binding")
	}

	allFilter := readFilter
	allFilter.Operation = OpAll
	if !allFilter.Matches(all) {
		t.Fatalf("an ALL filter should select an ALL-operation binding")
	}
	if allFilter.Matches(read) {
		t.Fatalf("an ALL filter should not select a READ binding")
	}
}

func TestMatches_PatternMatchSemantics(t *testing.T) {
	literal := binding("orders", PatternLiteral, "User:alice", OpRead)
	wildcard := binding("*", PatternLiteral, "User:alice", OpRead)
	prefixed := binding("ord", PatternPrefixed, "User:alice", OpRead)
	otherPrefix := binding("pay", PatternPrefixed, "User:alice", OpRead)

	f := BindingFilter{
		ResourceType: ResourceTopic, ResourceName: "orders", PatternType: PatternMatch,
		Operation: OpAny, Permission: PermissionAny,
	}

	if !f.Matches(literal) {
		t.Fatalf("MATCH should select the literal name")
	}
	if !f.Matches(wildcard) {
		t.Fatalf("MATCH should select the literal wildcard")
	}
	if !f.Matches(prefixed) {
		t.Fatalf("MATCH should select a covering prefix")
	}
	if f.Matches(otherPrefix) {
		t.Fatalf("MATCH should not select an unrelated prefix")
	}
}

func TestValidate_Binding(t *testing.T) {
	good := binding("orders", PatternLiteral, "User:alice", OpRead)
	if err := good.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	bad := []Binding{
		binding("", PatternLiteral, "User:alice", OpRead),
		binding("orders", PatternAny, "User:alice", OpRead),
		binding("orders", PatternLiteral, "", OpRead),
		binding("orders", PatternLiteral, "User:alice", OpAny),
	}
	for i, b := range bad {
		if err := b.Validate(); err == nil {
			t.Errorf("case %d: Validate should reject %s", i, b)
		}
	}
}

func TestValidate_FilterRejectsUnknown(t *testing.T) {
	if err := MatchAll.Validate(); err != nil {
		t.Fatalf("MatchAll should validate: %v", err)
	}
	f := MatchAll
	f.Operation = OpUnknown
	if err := f.Validate(); err == nil {
		t.Fatalf("Validate should reject UNKNOWN operation")
	}
}

func TestEnumStrings(t *testing.T) {
	if s := ResourceTransactionalID.String(); s != "TRANSACTIONAL_ID" {
		t.Fatalf("ResourceTransactionalID=%q", s)
	}
	if s := PatternPrefixed.String(); s != "PREFIXED" {
		t.Fatalf("PatternPrefixed=%q", s)
	}
	if s := OpIdempotentWrite.String(); s != "IDEMPOTENT_WRITE" {
		t.Fatalf("OpIdempotentWrite=%q", s)
	}
	if s := PermissionType(99).String(); s != "UNKNOWN" {
		t.Fatalf("out-of-range permission=%q", s)
	}
}
