package objectacl

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pitetris/backend/internal/objectstore"
)

// ErrNotEntityPath is returned when an upload URL does not resolve into the
// private entity directory.
var ErrNotEntityPath = errors.New("path does not address an uploaded entity")

// Manager is the only write path for object ACLs. Policies are stamped once,
// right after the client-side upload completes, and never edited afterwards.
type Manager struct {
	store  *objectstore.Client
	groups GroupResolver
}

// NewManager creates a Manager. A nil resolver denies all rule-based grants.
func NewManager(store *objectstore.Client, groups GroupResolver) *Manager {
	if groups == nil {
		groups = denyAllResolver{}
	}
	return &Manager{store: store, groups: groups}
}

// SetEntityPolicy normalizes the raw upload URL to its logical entity path,
// stamps the policy into the object's metadata and returns the normalized
// "/objects/<id>" path for persistence in content records.
func (m *Manager) SetEntityPolicy(ctx context.Context, rawUploadURL string, policy Policy) (string, error) {
	normalized := m.store.NormalizeEntityPath(rawUploadURL)
	if !strings.HasPrefix(normalized, objectstore.EntityPrefix) {
		return "", ErrNotEntityPath
	}

	handle, err := m.store.EntityFile(ctx, normalized)
	if err != nil {
		return "", fmt.Errorf("resolve entity: %w", err)
	}

	md, err := policy.Metadata()
	if err != nil {
		return "", err
	}
	if err := m.store.SetMetadata(ctx, handle, md); err != nil {
		return "", fmt.Errorf("stamp acl policy: %w", err)
	}
	return normalized, nil
}

// CanAccess reads the policy off the resolved object and evaluates perm for
// userID. Objects without a decodable policy deny everyone.
func (m *Manager) CanAccess(handle *objectstore.ObjectHandle, userID string, perm Permission) bool {
	return Evaluate(FromMetadata(handle.Info.UserMetadata), userID, perm, m.groups)
}
