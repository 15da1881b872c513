// Package objectacl encodes per-object access-control policies into object
// custom metadata and evaluates access decisions against them. The policy
// stamped on an object is the sole authority for who may read it; an object
// with no decodable policy is treated as private with no owner, so every
// decision fails closed.
package objectacl

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MetadataKey is the custom-metadata key holding the serialized policy
// (surfaced by S3-compatible stores as x-amz-meta-acl-policy).
const MetadataKey = "acl-policy"

// Permission is an access level. Levels are ordered by integer rank:
// a rule granting Write implicitly grants Read.
type Permission int

const (
	// PermRead allows fetching object bytes.
	PermRead Permission = iota + 1
	// PermWrite allows replacing the object or its policy.
	PermWrite
)

var permNames = map[Permission]string{
	PermRead:  "read",
	PermWrite: "write",
}

// MarshalJSON encodes the permission as its wire name.
func (p Permission) MarshalJSON() ([]byte, error) {
	name, ok := permNames[p]
	if !ok {
		return nil, fmt.Errorf("unknown permission %d", int(p))
	}
	return json.Marshal(name)
}

// UnmarshalJSON decodes a wire name back into a rank.
func (p *Permission) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	for perm, n := range permNames {
		if n == name {
			*p = perm
			return nil
		}
	}
	return fmt.Errorf("unknown permission %q", name)
}

// Visibility controls anonymous readability.
type Visibility string

const (
	// VisibilityPublic grants Read to everyone, authenticated or not.
	VisibilityPublic Visibility = "public"
	// VisibilityPrivate restricts access to the owner and matching rules.
	VisibilityPrivate Visibility = "private"
)

// Rule grants a minimum permission level to members of a group.
type Rule struct {
	GroupType  string     `json:"groupType"`
	GroupID    string     `json:"groupId"`
	Permission Permission `json:"permission"`
}

// Policy is the access-control policy stamped onto an object.
type Policy struct {
	Owner      string     `json:"owner"`
	Visibility Visibility `json:"visibility"`
	Rules      []Rule     `json:"aclRules,omitempty"`
}

// Metadata serializes the policy into an object-metadata map.
func (p Policy) Metadata() (map[string]string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode acl policy: %w", err)
	}
	return map[string]string{MetadataKey: string(raw)}, nil
}

// FromMetadata decodes the policy held in object metadata. Returns nil when
// the policy is absent or malformed; callers must treat nil as deny-all.
func FromMetadata(md map[string]string) *Policy {
	var raw string
	for k, v := range md {
		if strings.EqualFold(k, MetadataKey) {
			raw = v
			break
		}
	}
	if raw == "" {
		return nil
	}
	p := &Policy{}
	if err := json.Unmarshal([]byte(raw), p); err != nil {
		return nil
	}
	if p.Visibility != VisibilityPublic && p.Visibility != VisibilityPrivate {
		return nil
	}
	return p
}

// GroupResolver answers whether a user belongs to the group named by a rule.
type GroupResolver interface {
	IsMember(userID string, rule Rule) bool
}

// denyAllResolver is the default when no group provider is configured:
// rules are carried in policies but grant nothing.
type denyAllResolver struct{}

func (denyAllResolver) IsMember(string, Rule) bool { return false }

// Evaluate decides whether userID may perform perm against the policy.
//   - nil policy: deny (fail closed).
//   - public visibility grants Read unconditionally.
//   - the owner may do anything.
//   - permissions above Read are owner-only regardless of rules.
//   - otherwise a rule must grant >= perm to a group the user belongs to.
func Evaluate(p *Policy, userID string, perm Permission, groups GroupResolver) bool {
	if p == nil {
		return false
	}
	if perm == PermRead && p.Visibility == VisibilityPublic {
		return true
	}
	if userID == "" {
		return false
	}
	if p.Owner != "" && userID == p.Owner {
		return true
	}
	if perm > PermRead {
		return false
	}
	if groups == nil {
		groups = denyAllResolver{}
	}
	for _, rule := range p.Rules {
		if rule.Permission >= perm && groups.IsMember(userID, rule) {
			return true
		}
	}
	return false
}
