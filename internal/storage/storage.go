// Package storage places finished table directories at their output location, either a
// local directory tree or an S3 prefix. Tables are always built in a local staging
// directory first and then swapped in whole.
package storage

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
)

// Store replaces whole tables under an output root.
type Store interface {
	// Stage returns a fresh local directory in which to build table.
	Stage(table string) (string, error)
	// Replace makes the staged directory the complete content of table, removing
	// whatever was there before. The staged directory is consumed.
	Replace(ctx context.Context, table, staged string) error
	// Location is where table lives, for logs and manifests.
	Location(table string) string
}

// S3Options carries the S3 connection settings. Credentials are always explicit.
type S3Options struct {
	Region          string `yaml:"region" mapstructure:"region"`
	Endpoint        string `yaml:"endpoint" mapstructure:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id" mapstructure:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key" mapstructure:"secret_access_key"`
	ForcePathStyle  bool   `yaml:"force_path_style" mapstructure:"force_path_style"`
}

const s3Scheme = "s3://"

// New returns the Store for root: an S3Store for s3://bucket/prefix roots and a
// LocalStore otherwise.
func New(root string, opts S3Options) (Store, error) {
	if strings.TrimSpace(root) == "" {
		return nil, eris.New("storage: output root is empty")
	}
	if !IsS3(root) {
		return NewLocal(root), nil
	}

	bucket, prefix, err := ParseS3URL(root)
	if err != nil {
		return nil, err
	}
	return NewS3(bucket, prefix, opts)
}

// IsS3 reports whether root names an S3 location.
func IsS3(root string) bool {
	return strings.HasPrefix(root, s3Scheme)
}

// ParseS3URL splits s3://bucket/some/prefix into its bucket and prefix.
func ParseS3URL(u string) (bucket, prefix string, err error) {
	if !IsS3(u) {
		return "", "", eris.Errorf("storage: %q is not an s3:// url", u)
	}
	rest := strings.TrimPrefix(u, s3Scheme)
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", eris.Errorf("storage: %q has no bucket", u)
	}
	return bucket, strings.Trim(prefix, "/"), nil
}
