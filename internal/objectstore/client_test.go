package objectstore

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
)

// fakeS3 serves StatObject from an in-memory map keyed "bucket/key" and
// records every key it was asked for.
type fakeS3 struct {
	objects map[string]minio.ObjectInfo
	statted []string
}

func (f *fakeS3) StatObject(_ context.Context, bucket, key string, _ minio.StatObjectOptions) (minio.ObjectInfo, error) {
	full := bucket + "/" + key
	f.statted = append(f.statted, full)
	if info, ok := f.objects[full]; ok {
		return info, nil
	}
	return minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound}
}

func (f *fakeS3) GetObject(context.Context, string, string, minio.GetObjectOptions) (*minio.Object, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeS3) PresignedPutObject(_ context.Context, bucket, key string, _ time.Duration) (*url.URL, error) {
	return url.Parse("https://storage.test/" + bucket + "/" + key)
}

func (f *fakeS3) CopyObject(context.Context, minio.CopyDestOptions, minio.CopySrcOptions) (minio.UploadInfo, error) {
	return minio.UploadInfo{}, nil
}

func newTestClient(fake *fakeS3) *Client {
	return &Client{
		s3:          fake,
		privateDir:  "/media/.private",
		searchPaths: []string{"/media/public", "/media/fallback"},
	}
}

func TestSearchPublicObjectMissReturnsNil(t *testing.T) {
	fake := &fakeS3{objects: map[string]minio.ObjectInfo{}}
	c := newTestClient(fake)

	h, err := c.SearchPublicObject(context.Background(), "logo.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h != nil {
		t.Fatalf("expected nil handle on miss, got %+v", h)
	}
	// Every search path was probed before giving up.
	want := []string{"media/public/logo.png", "media/fallback/logo.png"}
	if len(fake.statted) != len(want) || fake.statted[0] != want[0] || fake.statted[1] != want[1] {
		t.Fatalf("probe order mismatch: %v", fake.statted)
	}
}

func TestSearchPublicObjectFirstHitWins(t *testing.T) {
	fake := &fakeS3{objects: map[string]minio.ObjectInfo{
		"media/public/logo.png":   {Size: 1},
		"media/fallback/logo.png": {Size: 2},
	}}
	c := newTestClient(fake)

	h, err := c.SearchPublicObject(context.Background(), "logo.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h == nil || h.Bucket != "media" || h.Key != "public/logo.png" {
		t.Fatalf("expected hit in first search path, got %+v", h)
	}
	if len(fake.statted) != 1 {
		t.Fatalf("later paths must not be probed after a hit: %v", fake.statted)
	}
}

func TestSearchPublicObjectRejectsTraversal(t *testing.T) {
	secret := "media/.private/uploads/secret-id"
	fake := &fakeS3{objects: map[string]minio.ObjectInfo{secret: {Size: 3}}}
	c := newTestClient(fake)

	tests := []string{
		"../.private/uploads/secret-id",
		"a/../../.private/uploads/secret-id",
		"..",
		"",
	}
	for _, filePath := range tests {
		h, err := c.SearchPublicObject(context.Background(), filePath)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", filePath, err)
		}
		if h != nil {
			t.Fatalf("%q: traversal path resolved to %s/%s", filePath, h.Bucket, h.Key)
		}
	}
	if len(fake.statted) != 0 {
		t.Fatalf("traversal paths must be rejected before any storage call: %v", fake.statted)
	}
}

func TestEntityFileMapsAbsentObject(t *testing.T) {
	fake := &fakeS3{objects: map[string]minio.ObjectInfo{}}
	c := newTestClient(fake)

	_, err := c.EntityFile(context.Background(), "/objects/nope")
	if !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}
}
