package objectacl

import (
	"encoding/json"
	"testing"
)

func TestPolicyMetadataRoundTrip(t *testing.T) {
	p := Policy{
		Owner:      "admin-1",
		Visibility: VisibilityPrivate,
		Rules: []Rule{
			{GroupType: "team", GroupID: "design", Permission: PermRead},
		},
	}

	md, err := p.Metadata()
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}

	got := FromMetadata(md)
	if got == nil {
		t.Fatal("FromMetadata returned nil for valid policy")
	}
	if got.Owner != p.Owner || got.Visibility != p.Visibility {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if len(got.Rules) != 1 || got.Rules[0].Permission != PermRead {
		t.Fatalf("rules mismatch: %+v", got.Rules)
	}
}

func TestFromMetadataCaseInsensitiveKey(t *testing.T) {
	// S3-compatible stores canonicalize custom metadata keys.
	raw, _ := json.Marshal(Policy{Owner: "a", Visibility: VisibilityPublic})
	got := FromMetadata(map[string]string{"Acl-Policy": string(raw)})
	if got == nil || got.Owner != "a" {
		t.Fatalf("expected policy decoded from canonicalized key, got %+v", got)
	}
}

func TestFromMetadataFailClosed(t *testing.T) {
	tests := []struct {
		name string
		md   map[string]string
	}{
		{"missing", map[string]string{}},
		{"nil map", nil},
		{"malformed json", map[string]string{MetadataKey: "{not json"}},
		{"unknown visibility", map[string]string{MetadataKey: `{"owner":"a","visibility":"internal"}`}},
		{"unknown permission", map[string]string{MetadataKey: `{"owner":"a","visibility":"private","aclRules":[{"groupType":"t","groupId":"g","permission":"root"}]}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromMetadata(tt.md); got != nil {
				t.Fatalf("expected nil policy, got %+v", got)
			}
		})
	}
}

type memberOf map[string]bool

func (m memberOf) IsMember(userID string, rule Rule) bool {
	return m[userID+":"+rule.GroupType+":"+rule.GroupID]
}

func TestEvaluate(t *testing.T) {
	public := &Policy{Owner: "owner-1", Visibility: VisibilityPublic}
	private := &Policy{Owner: "owner-1", Visibility: VisibilityPrivate}
	ruled := &Policy{
		Owner:      "owner-1",
		Visibility: VisibilityPrivate,
		Rules: []Rule{
			{GroupType: "team", GroupID: "design", Permission: PermWrite},
		},
	}

	groups := memberOf{"member-1:team:design": true}

	tests := []struct {
		name   string
		policy *Policy
		userID string
		perm   Permission
		groups GroupResolver
		want   bool
	}{
		{"nil policy denies everyone", nil, "owner-1", PermRead, nil, false},
		{"public read for anonymous", public, "", PermRead, nil, true},
		{"public read for stranger", public, "someone-else", PermRead, nil, true},
		{"public write for stranger denied", public, "someone-else", PermWrite, nil, false},
		{"public write for owner", public, "owner-1", PermWrite, nil, true},
		{"private read for owner", private, "owner-1", PermRead, nil, true},
		{"private read for stranger denied", private, "other", PermRead, nil, false},
		{"private read anonymous denied", private, "", PermRead, nil, false},
		{"write rule implies read", ruled, "member-1", PermRead, groups, true},
		{"rule does not grant write", ruled, "member-1", PermWrite, groups, false},
		{"non-member denied", ruled, "member-2", PermRead, groups, false},
		{"rules inert without resolver", ruled, "member-1", PermRead, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(tt.policy, tt.userID, tt.perm, tt.groups); got != tt.want {
				t.Fatalf("Evaluate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPermissionOrdering(t *testing.T) {
	if !(PermRead < PermWrite) {
		t.Fatal("expected Read < Write by rank")
	}
}
