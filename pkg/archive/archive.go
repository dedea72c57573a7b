// Package archive provides S3-compatible long-term storage for exported
// certificate packages. A package is only accepted with a verifiable
// attestation, object keys are derived from the package itself, and every
// stored object gets a sha256-checksummed reference so a fetched export can
// be checked before anyone trusts it.
package archive

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/sentinelworks/helix-ledger/pkg/export"
)

var (
	// ErrNoSession is returned when a package carries no session id, which
	// would make its object key ambiguous.
	ErrNoSession = errors.New("archive: package has no session id")

	// ErrBadAttestation is returned when a package's attestation does not
	// verify under the given key. Unattested exports never reach the store.
	ErrBadAttestation = errors.New("archive: package attestation does not verify")

	// ErrChecksumMismatch is returned by Fetch when the stored bytes no
	// longer match the reference checksum.
	ErrChecksumMismatch = errors.New("archive: checksum mismatch")
)

// keyTimeLayout timestamps object keys down to the nanosecond so repeated
// exports of the same session never collide.
const keyTimeLayout = "20060102T150405.000000000Z"

// Client wraps an S3-compatible object store holding certificate packages.
type Client struct {
	mc     *minio.Client
	bucket string
}

// Ref is an archive reference returned after storing a package.
type Ref struct {
	URI        string `json:"uri"`         // archive://bucket/key
	SessionID  string `json:"session_id"`  // session the package attests
	ExportedAt string `json:"exported_at"` // package export time, RFC 3339
	Checksum   string `json:"checksum"`    // sha256:hex
	Size       int64  `json:"size"`
}

// New creates an archive client and ensures the bucket exists.
func New(ctx context.Context, cfg Config) (*Client, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("archive: connect: %w", err)
	}

	exists, err := mc.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("archive: check bucket: %w", err)
	}
	if !exists {
		if err := mc.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("archive: create bucket: %w", err)
		}
	}

	return &Client{mc: mc, bucket: cfg.Bucket}, nil
}

// ObjectKey derives the archive object key for a package: one prefix per
// session, one object per export.
func ObjectKey(pkg *export.Package) string {
	return fmt.Sprintf("%s/%s.certificate.json",
		pkg.SessionID, pkg.ExportedAt.UTC().Format(keyTimeLayout))
}

// Store validates a package against the signing key and uploads it under a
// key derived from its session id and export time. The returned reference
// carries enough to fetch and re-verify the object later.
func (c *Client) Store(ctx context.Context, pkg *export.Package, key string) (Ref, error) {
	if pkg.SessionID == "" {
		return Ref{}, ErrNoSession
	}
	if !export.VerifyAttestation(pkg, key) {
		return Ref{}, ErrBadAttestation
	}

	data, err := json.Marshal(pkg)
	if err != nil {
		return Ref{}, fmt.Errorf("archive: encode package: %w", err)
	}
	h := sha256.Sum256(data)
	objKey := ObjectKey(pkg)

	info, err := c.mc.PutObject(ctx, c.bucket, objKey, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return Ref{}, fmt.Errorf("archive: store %s: %w", objKey, err)
	}

	return Ref{
		URI:        fmt.Sprintf("archive://%s/%s", c.bucket, objKey),
		SessionID:  pkg.SessionID,
		ExportedAt: pkg.ExportedAt.UTC().Format(time.RFC3339Nano),
		Checksum:   fmt.Sprintf("sha256:%x", h),
		Size:       info.Size,
	}, nil
}

// Fetch retrieves the package a reference points at, checking the reference
// checksum before decoding. Attestation verification stays with the caller,
// who holds the key.
func (c *Client) Fetch(ctx context.Context, ref Ref) (*export.Package, error) {
	objKey, err := objectKeyFromURI(ref.URI, c.bucket)
	if err != nil {
		return nil, err
	}

	obj, err := c.mc.GetObject(ctx, c.bucket, objKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("archive: fetch %s: %w", objKey, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("archive: read %s: %w", objKey, err)
	}
	if ref.Checksum != "" && !VerifyChecksum(data, ref.Checksum) {
		return nil, fmt.Errorf("%w: %s", ErrChecksumMismatch, objKey)
	}

	var pkg export.Package
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("archive: decode %s: %w", objKey, err)
	}
	return &pkg, nil
}

// VerifyChecksum re-computes sha256 of data and compares against expected.
func VerifyChecksum(data []byte, expected string) bool {
	h := sha256.Sum256(data)
	got := fmt.Sprintf("sha256:%x", h)
	return got == expected
}

func objectKeyFromURI(uri, bucket string) (string, error) {
	prefix := "archive://" + bucket + "/"
	if !strings.HasPrefix(uri, prefix) {
		return "", fmt.Errorf("archive: ref %q is not in bucket %q", uri, bucket)
	}
	return strings.TrimPrefix(uri, prefix), nil
}
