// Package objectstore wraps the S3-compatible bucket holding admin-uploaded
// media. It resolves logical "/objects/..." paths to bucket objects, issues
// presigned upload URLs and streams object bytes to HTTP responses.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// uploadURLTTL bounds how long a presigned PUT URL stays valid.
const uploadURLTTL = 15 * time.Minute

// ErrObjectNotFound distinguishes "object absent" from infrastructure failure.
var ErrObjectNotFound = errors.New("object not found")

// ErrNoPrivateDir is a configuration error: uploads cannot be allocated
// without a private object directory.
var ErrNoPrivateDir = errors.New("private object directory is not configured")

// ObjectHandle is a resolved reference to a concrete bucket object.
type ObjectHandle struct {
	Bucket string
	Key    string
	Info   minio.ObjectInfo
}

// objectAPI is the slice of the minio client the Client depends on.
// Tests substitute a fake.
type objectAPI interface {
	StatObject(ctx context.Context, bucket, key string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	GetObject(ctx context.Context, bucket, key string, opts minio.GetObjectOptions) (*minio.Object, error)
	PresignedPutObject(ctx context.Context, bucket, key string, expires time.Duration) (*url.URL, error)
	CopyObject(ctx context.Context, dst minio.CopyDestOptions, src minio.CopySrcOptions) (minio.UploadInfo, error)
}

// Client is the object storage client.
type Client struct {
	s3          objectAPI
	privateDir  string
	searchPaths []string
}

// New creates a Client. privateDir and searchPaths are bucket-qualified
// prefixes ("/bucket/prefix"); privateDir may be empty, in which case upload
// allocation fails with ErrNoPrivateDir.
func New(endpoint, accessKey, secretKey string, useSSL bool, privateDir string, searchPaths []string) (*Client, error) {
	s3, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &Client{s3: s3, privateDir: privateDir, searchPaths: searchPaths}, nil
}

// NewEntityUploadURL allocates a fresh object key under the private upload
// directory and returns a time-limited presigned PUT URL for it. Existing
// objects are never touched; re-uploads always produce a new key.
func (c *Client) NewEntityUploadURL(ctx context.Context) (string, error) {
	if c.privateDir == "" {
		return "", ErrNoPrivateDir
	}
	bucket, prefix, err := splitBucketPath(c.privateDir)
	if err != nil {
		return "", fmt.Errorf("private object dir: %w", err)
	}
	key := path.Join(prefix, uploadSubdir, uuid.NewString())

	u, err := c.s3.PresignedPutObject(ctx, bucket, key, uploadURLTTL)
	if err != nil {
		return "", fmt.Errorf("presign upload url: %w", err)
	}
	return u.String(), nil
}

// EntityFile resolves a "/objects/<id>" request path to a bucket object.
// Returns ErrObjectNotFound when the path is malformed or the object is absent.
func (c *Client) EntityFile(ctx context.Context, requestPath string) (*ObjectHandle, error) {
	id := entityID(requestPath)
	if id == "" {
		return nil, ErrObjectNotFound
	}
	if c.privateDir == "" {
		return nil, ErrNoPrivateDir
	}
	bucket, prefix, err := splitBucketPath(c.privateDir)
	if err != nil {
		return nil, fmt.Errorf("private object dir: %w", err)
	}
	return c.stat(ctx, bucket, path.Join(prefix, uploadSubdir, id))
}

// SearchPublicObject probes the configured public search paths in order and
// returns the first object matching filePath, or nil when none match. Paths
// that would traverse out of a search directory never match; the private
// upload tree must stay unreachable from this ungated route.
func (c *Client) SearchPublicObject(ctx context.Context, filePath string) (*ObjectHandle, error) {
	filePath = publicObjectPath(filePath)
	if filePath == "" {
		return nil, nil
	}
	for _, dir := range c.searchPaths {
		bucket, prefix, err := splitBucketPath(dir)
		if err != nil {
			continue
		}
		h, err := c.stat(ctx, bucket, path.Join(prefix, filePath))
		if errors.Is(err, ErrObjectNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return h, nil
	}
	return nil, nil
}

// SetMetadata replaces the object's custom metadata via a metadata-only
// self-copy. Object bytes are untouched.
func (c *Client) SetMetadata(ctx context.Context, h *ObjectHandle, metadata map[string]string) error {
	_, err := c.s3.CopyObject(ctx,
		minio.CopyDestOptions{
			Bucket:          h.Bucket,
			Object:          h.Key,
			UserMetadata:    metadata,
			ReplaceMetadata: true,
		},
		minio.CopySrcOptions{
			Bucket: h.Bucket,
			Object: h.Key,
		},
	)
	if err != nil {
		return fmt.Errorf("set object metadata: %w", err)
	}
	return nil
}

// NormalizeEntityPath maps a raw upload URL back to its logical
// "/objects/<id>" form for persistence in content records.
func (c *Client) NormalizeEntityPath(rawPath string) string {
	return normalizeEntityPath(rawPath, c.privateDir)
}

// Download streams the object's bytes and content type to w, owning the full
// response cycle: failures before the first byte produce a 500, stream errors
// after headers are written can only be logged. Reads are idempotent and
// cheap to re-request, so nothing is retried here.
func (c *Client) Download(ctx context.Context, h *ObjectHandle, w http.ResponseWriter, cacheSeconds int, isPublic bool) {
	obj, err := c.s3.GetObject(ctx, h.Bucket, h.Key, minio.GetObjectOptions{})
	if err != nil {
		log.Printf("objectstore: get %s/%s: %v", h.Bucket, h.Key, err)
		http.Error(w, "error downloading object", http.StatusInternalServerError)
		return
	}
	defer obj.Close()

	visibility := "private"
	if isPublic {
		visibility = "public"
	}
	if h.Info.ContentType != "" {
		w.Header().Set("Content-Type", h.Info.ContentType)
	}
	if h.Info.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(h.Info.Size, 10))
	}
	w.Header().Set("Cache-Control", fmt.Sprintf("%s, max-age=%d", visibility, cacheSeconds))

	if _, err := io.Copy(w, obj); err != nil {
		log.Printf("objectstore: stream %s/%s: %v", h.Bucket, h.Key, err)
	}
}

// stat wraps StatObject with not-found mapping.
func (c *Client) stat(ctx context.Context, bucket, key string) (*ObjectHandle, error) {
	info, err := c.s3.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("stat object %s/%s: %w", bucket, key, err)
	}
	return &ObjectHandle{Bucket: bucket, Key: key, Info: info}, nil
}
