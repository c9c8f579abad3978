package aclcache

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/danishnajam/kafka/pkg/acl"
)

// Key builds the cache key for one filter. The key carries a sanitized,
// truncated rendering of the filter for operator readability plus an
// xxhash of the canonical text so distinct filters never collide.
func Key(f acl.BindingFilter) string {
	canonical := canonicalText(f)
	safe := sanitizeForKey(canonical)

	const maxFilterTextLen = 120
	if len(safe) > maxFilterTextLen {
		safe = safe[:maxFilterTextLen]
	}

	sum := xxhash.Sum64String(canonical)
	return fmt.Sprintf("acls:describe:%s:f=%016x", safe, sum)
}

// canonicalText renders every field, wildcards included, so that two
// different filters can never share a canonical form.
func canonicalText(f acl.BindingFilter) string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s",
		f.ResourceType, f.PatternType, f.ResourceName,
		f.Principal, f.Host, f.Operation, f.Permission)
}

func sanitizeForKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	var prev rune
	for _, r := range s {
		var out rune
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			out = '_'
		case isAlphaNum(r) || r == ':' || r == '_' || r == '-' || r == '|' || r == '*':
			out = r
		default:
			out = '-'
		}
		if (out == '_' || out == '-') && out == prev {
			continue
		}
		b.WriteRune(out)
		prev = out
	}
	return b.String()
}

func isAlphaNum(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}
