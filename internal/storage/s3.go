package storage

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// deleteBatch is the S3 DeleteObjects per-request key limit.
const deleteBatch = 1000

// S3Store keeps tables as object prefixes in a bucket.
type S3Store struct {
	bucket   string
	prefix   string
	client   s3iface.S3API
	uploader s3manageriface.UploaderAPI
}

// NewS3 opens a session with the explicit credentials in opts. Ambient AWS environment
// credentials are never consulted.
func NewS3(bucket, prefix string, opts S3Options) (*S3Store, error) {
	if opts.AccessKeyID == "" || opts.SecretAccessKey == "" {
		return nil, eris.New("storage: s3 output requires storage.s3.access_key_id and storage.s3.secret_access_key")
	}

	cfg := &aws.Config{
		Credentials:      credentials.NewStaticCredentials(opts.AccessKeyID, opts.SecretAccessKey, ""),
		S3ForcePathStyle: aws.Bool(opts.ForcePathStyle),
	}
	if opts.Region != "" {
		cfg.Region = aws.String(opts.Region)
	}
	if opts.Endpoint != "" {
		cfg.Endpoint = aws.String(opts.Endpoint)
	}

	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, eris.Wrap(err, "storage: create s3 session")
	}
	client := s3.New(sess)
	return NewS3WithClient(bucket, prefix, client, s3manager.NewUploaderWithClient(client)), nil
}

// NewS3WithClient builds an S3Store around existing API clients.
func NewS3WithClient(bucket, prefix string, client s3iface.S3API, uploader s3manageriface.UploaderAPI) *S3Store {
	return &S3Store{bucket: bucket, prefix: prefix, client: client, uploader: uploader}
}

// Stage creates a local temporary directory.
func (s *S3Store) Stage(table string) (string, error) {
	dir, err := os.MkdirTemp("", "i94etl-"+table+"-")
	if err != nil {
		return "", eris.Wrapf(err, "storage: stage %s", table)
	}
	return dir, nil
}

// Replace deletes every object under the table prefix, uploads the staged files and
// removes the staging directory.
func (s *S3Store) Replace(ctx context.Context, table, staged string) error {
	log := zap.L().With(zap.String("component", "storage.s3"), zap.String("table", table))
	defer os.RemoveAll(staged) //nolint:errcheck

	keyPrefix := s.key(table) + "/"
	deleted, err := s.deletePrefix(ctx, keyPrefix)
	if err != nil {
		return err
	}

	uploaded := 0
	err = filepath.WalkDir(staged, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(staged, p)
		if err != nil {
			return err
		}
		if err := s.upload(ctx, p, keyPrefix+filepath.ToSlash(rel)); err != nil {
			return err
		}
		uploaded++
		return nil
	})
	if err != nil {
		return eris.Wrapf(err, "storage: upload %s", table)
	}

	log.Info("table replaced",
		zap.String("location", s.Location(table)),
		zap.Int("deleted", deleted),
		zap.Int("uploaded", uploaded),
	)
	return nil
}

func (s *S3Store) deletePrefix(ctx context.Context, keyPrefix string) (int, error) {
	var keys []*s3.ObjectIdentifier
	err := s.client.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(keyPrefix),
	}, func(page *s3.ListObjectsV2Output, _ bool) bool {
		for _, obj := range page.Contents {
			keys = append(keys, &s3.ObjectIdentifier{Key: obj.Key})
		}
		return true
	})
	if err != nil {
		return 0, eris.Wrapf(err, "storage: list s3://%s/%s", s.bucket, keyPrefix)
	}

	for start := 0; start < len(keys); start += deleteBatch {
		batch := keys[start:min(start+deleteBatch, len(keys))]
		out, err := s.client.DeleteObjectsWithContext(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &s3.Delete{Objects: batch, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return 0, eris.Wrapf(err, "storage: delete s3://%s/%s", s.bucket, keyPrefix)
		}
		if len(out.Errors) > 0 {
			return 0, eris.Errorf("storage: delete s3://%s/%s: %d objects failed, first %s: %s",
				s.bucket, keyPrefix, len(out.Errors), aws.StringValue(out.Errors[0].Key), aws.StringValue(out.Errors[0].Message))
		}
	}
	return len(keys), nil
}

func (s *S3Store) upload(ctx context.Context, file, key string) error {
	f, err := os.Open(file)
	if err != nil {
		return eris.Wrapf(err, "open %s", file)
	}
	defer f.Close() //nolint:errcheck

	_, err = s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		return eris.Wrapf(err, "put s3://%s/%s", s.bucket, key)
	}
	return nil
}

// Location is the s3:// url of the table prefix.
func (s *S3Store) Location(table string) string {
	return "s3://" + s.bucket + "/" + s.key(table)
}

func (s *S3Store) key(table string) string {
	if s.prefix == "" {
		return table
	}
	return path.Join(s.prefix, table)
}
