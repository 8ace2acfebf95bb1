// Package images implements the image store behind the admin upload
// endpoints: a disk-backed stand-in for a hosted object storage service with
// two logical buckets, one for product images and one for news images.
// Files are public-read (served under the configured base URL), capped at
// 10 MiB, and restricted to common raster formats.
package images

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-faster/errors"
)

// MaxUploadSize is the upload size cap, matching the bucket policy of the
// hosted service this store replaces.
const MaxUploadSize = 10 << 20 // 10 MiB

// Bucket names. Anything else is rejected.
const (
	BucketProducts = "products"
	BucketNews     = "news"
)

// Sentinel errors for upload validation.
var (
	ErrTooLarge        = errors.New("image exceeds maximum upload size")
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrUnknownBucket   = errors.New("unknown bucket")
)

// allowedTypes maps accepted sniffed MIME types to file extensions.
var allowedTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Store saves and removes images on local disk and resolves stored paths to
// public URLs.
type Store struct {
	root    string
	baseURL string
}

// NewStore creates a Store rooted at dir. baseURL is the public prefix under
// which the API serves the root, e.g. "https://api.example.com/images".
func NewStore(dir, baseURL string) (*Store, error) {
	for _, bucket := range []string{BucketProducts, BucketNews} {
		if err := os.MkdirAll(filepath.Join(dir, bucket), 0o755); err != nil {
			return nil, errors.Wrapf(err, "create bucket dir %s", bucket)
		}
	}
	return &Store{root: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Save reads an image from r and stores it in the bucket under a normalized,
// unique name derived from fileName. It returns the stored object path
// ("bucket/name.ext"). Content is sniffed: the declared file extension is
// ignored in favor of the detected type.
func (s *Store) Save(_ context.Context, bucket, fileName string, r io.Reader) (string, error) {
	if bucket != BucketProducts && bucket != BucketNews {
		return "", ErrUnknownBucket
	}

	// Read one byte past the cap to distinguish "exactly at the limit"
	// from "over it".
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return "", errors.Wrap(err, "read upload")
	}
	if len(data) > MaxUploadSize {
		return "", ErrTooLarge
	}

	contentType := http.DetectContentType(data)
	ext, ok := allowedTypes[contentType]
	if !ok {
		return "", ErrUnsupportedType
	}

	name := fmt.Sprintf("%s-%d%s", NormalizeKey(baseName(fileName)), time.Now().UnixMilli(), ext)
	objectPath := path.Join(bucket, name)
	fullPath := filepath.Join(s.root, bucket, name)

	// Write to a temp file in the same directory, then rename, so a
	// half-written file is never visible under its final name.
	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".upload-*")
	if err != nil {
		return "", errors.Wrap(err, "create temp file")
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", errors.Wrap(err, "write upload")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", errors.Wrap(err, "close temp file")
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		os.Remove(tmp.Name())
		return "", errors.Wrap(err, "store upload")
	}

	return objectPath, nil
}

// Remove deletes a stored object. Removing an absent object is a no-op.
func (s *Store) Remove(_ context.Context, objectPath string) error {
	clean := filepath.Clean(filepath.FromSlash(objectPath))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return errors.Errorf("invalid object path %q", objectPath)
	}
	err := os.Remove(filepath.Join(s.root, clean))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "remove %s", objectPath)
	}
	return nil
}

// Root returns the directory the store serves from.
func (s *Store) Root() string {
	return s.root
}

// ResolveURL turns a stored object path into a public URL. Absolute URLs are
// passed through untouched, a leading slash is stripped, and an empty path
// resolves to the placeholder image.
func (s *Store) ResolveURL(objectPath string) string {
	if objectPath == "" {
		return s.baseURL + "/placeholder.svg"
	}
	if strings.HasPrefix(objectPath, "http://") || strings.HasPrefix(objectPath, "https://") {
		return objectPath
	}
	return s.baseURL + "/" + strings.TrimPrefix(objectPath, "/")
}

func baseName(fileName string) string {
	base := path.Base(filepath.ToSlash(fileName))
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	if base == "" || base == "." || base == "/" {
		return "image"
	}
	return base
}
