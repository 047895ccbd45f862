package storage

import (
	"context"
	"io"
	"strings"
)

type Uploader interface {
	Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (storedPath string, err error)
}

type Deleter interface {
	Delete(ctx context.Context, bucket, object string) error
}

// ParseObjectRef derives a bucket/path pair from a media reference.
// Only real stored-object references qualify; inline payloads (data URIs)
// and foreign URLs return ok=false and are never deleted.
func ParseObjectRef(ref string) (bucket, object string, ok bool) {
	switch {
	case strings.HasPrefix(ref, "gs://"):
		rest := strings.TrimPrefix(ref, "gs://")
		bucket, object, ok = strings.Cut(rest, "/")
	case strings.HasPrefix(ref, "https://storage.googleapis.com/"):
		rest := strings.TrimPrefix(ref, "https://storage.googleapis.com/")
		bucket, object, ok = strings.Cut(rest, "/")
	default:
		return "", "", false
	}
	if bucket == "" || object == "" {
		return "", "", false
	}
	return bucket, object, true
}
