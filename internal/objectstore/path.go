package objectstore

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// EntityPrefix is the logical route prefix under which uploaded entities are
// served, e.g. "/objects/<id>".
const EntityPrefix = "/objects/"

// uploadSubdir is the subdirectory of the private dir where new uploads land.
const uploadSubdir = "uploads"

// splitBucketPath splits a bucket-qualified path like "/media/.private" into
// bucket ("media") and key prefix (".private", possibly empty).
func splitBucketPath(p string) (bucket, key string, err error) {
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return "", "", fmt.Errorf("empty object path")
	}
	parts := strings.SplitN(p, "/", 2)
	bucket = parts[0]
	if len(parts) == 2 {
		key = parts[1]
	}
	return bucket, key, nil
}

// entityID extracts the entity id from a "/objects/<id>" request path.
// Returns "" when the path does not address an entity.
func entityID(requestPath string) string {
	if !strings.HasPrefix(requestPath, EntityPrefix) {
		return ""
	}
	id := strings.TrimPrefix(requestPath, EntityPrefix)
	// Reject traversal out of the entity directory.
	if id == "" || strings.Contains(id, "..") {
		return ""
	}
	return id
}

// publicObjectPath validates a relative public asset path. Paths that could
// traverse out of the search directory resolve to "" (no match).
func publicObjectPath(raw string) string {
	p := strings.Trim(raw, "/")
	if p == "" {
		return ""
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return ""
		}
	}
	return p
}

// normalizeEntityPath maps a raw upload URL (or bucket-qualified path) back to
// its logical "/objects/<id>" form. Paths outside the private upload
// directory are returned unchanged.
func normalizeEntityPath(raw, privateDir string) string {
	p := raw
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		u, err := url.Parse(raw)
		if err != nil {
			return raw
		}
		p = u.Path
	}
	uploadDir := path.Join(privateDir, uploadSubdir) + "/"
	if privateDir == "" || !strings.HasPrefix(p, uploadDir) {
		return p
	}
	return EntityPrefix + strings.TrimPrefix(p, uploadDir)
}
