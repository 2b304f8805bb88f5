package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBucket is an in-memory bucket behind the two S3 calls the store makes.
type fakeBucket struct {
	s3iface.S3API
	objects   map[string]string
	pageSize  int
	deleteReq int
}

func (f *fakeBucket) ListObjectsV2PagesWithContext(_ aws.Context, in *s3.ListObjectsV2Input, fn func(*s3.ListObjectsV2Output, bool) bool, _ ...request.Option) error {
	var keys []string
	for k := range f.objects {
		if len(k) >= len(*in.Prefix) && k[:len(*in.Prefix)] == *in.Prefix {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for start := 0; start < len(keys) || start == 0; start += f.pageSize {
		end := min(start+f.pageSize, len(keys))
		page := &s3.ListObjectsV2Output{}
		for _, k := range keys[start:end] {
			page.Contents = append(page.Contents, &s3.Object{Key: aws.String(k)})
		}
		if !fn(page, end >= len(keys)) || end >= len(keys) {
			break
		}
	}
	return nil
}

func (f *fakeBucket) DeleteObjectsWithContext(_ aws.Context, in *s3.DeleteObjectsInput, _ ...request.Option) (*s3.DeleteObjectsOutput, error) {
	f.deleteReq++
	for _, obj := range in.Delete.Objects {
		delete(f.objects, *obj.Key)
	}
	return &s3.DeleteObjectsOutput{}, nil
}

type fakeUploader struct {
	s3manageriface.UploaderAPI
	bucket *fakeBucket
}

func (u *fakeUploader) UploadWithContext(_ aws.Context, in *s3manager.UploadInput, _ ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	u.bucket.objects[*in.Key] = string(b)
	return &s3manager.UploadOutput{Location: "s3://" + *in.Bucket + "/" + *in.Key}, nil
}

func TestS3Store_ReplaceDeletesThenUploads(t *testing.T) {
	bucket := &fakeBucket{pageSize: 2, objects: map[string]string{
		"wh/immigration/arrival_year=2016/arrival_month=4/part-00000.parquet": "old",
		"wh/immigration/_manifest.yaml":                                      "old",
		"wh/immigration/stale.parquet":                                       "old",
		"wh/immigration_backup/keep.parquet":                                 "keep",
		"wh/airports/part-00000.parquet":                                     "keep",
	}}
	st := NewS3WithClient("b", "wh", bucket, &fakeUploader{bucket: bucket})

	staged, err := st.Stage("immigration")
	require.NoError(t, err)
	part := filepath.Join(staged, "arrival_year=2016", "arrival_month=4")
	require.NoError(t, os.MkdirAll(part, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(part, "part-00000.parquet"), []byte("new"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(staged, "_manifest.yaml"), []byte("manifest"), 0o644))

	require.NoError(t, st.Replace(context.Background(), "immigration", staged))

	assert.Equal(t, map[string]string{
		"wh/immigration/arrival_year=2016/arrival_month=4/part-00000.parquet": "new",
		"wh/immigration/_manifest.yaml":                                      "manifest",
		"wh/immigration_backup/keep.parquet":                                 "keep",
		"wh/airports/part-00000.parquet":                                     "keep",
	}, bucket.objects)
	assert.Equal(t, 1, bucket.deleteReq)

	_, err = os.Stat(staged)
	assert.True(t, os.IsNotExist(err), "staging directory removed")
}

func TestS3Store_ReplaceEmptyPrefix(t *testing.T) {
	bucket := &fakeBucket{pageSize: 10, objects: map[string]string{}}
	st := NewS3WithClient("b", "", bucket, &fakeUploader{bucket: bucket})

	staged, err := st.Stage("airports")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(staged, "part-00000.parquet"), []byte("x"), 0o644))

	require.NoError(t, st.Replace(context.Background(), "airports", staged))
	assert.Equal(t, map[string]string{"airports/part-00000.parquet": "x"}, bucket.objects)
	assert.Zero(t, bucket.deleteReq)
	assert.Equal(t, "s3://b/airports", st.Location("airports"))
}
