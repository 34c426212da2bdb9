package storage

import (
	"bytes"
	"context"
	"io"
	"regexp"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceiptKey(t *testing.T) {
	key := ReceiptKey(7, "Scan.PDF")
	assert.Regexp(t, regexp.MustCompile(`^receipts/7/[0-9a-f-]{36}\.pdf$`), key)
	assert.NotEqual(t, key, ReceiptKey(7, "Scan.PDF"))
	assert.Regexp(t, regexp.MustCompile(`^receipts/1/[0-9a-f-]{36}$`), ReceiptKey(1, "noext"))
}

func TestCleanKey(t *testing.T) {
	for _, bad := range []string{"", "/etc/passwd", "../x", "a/../../x", `a\b`, "."} {
		_, err := cleanKey(bad)
		assert.ErrorIs(t, err, ErrInvalidKey, bad)
	}
	k, err := cleanKey("receipts/1/./a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "receipts/1/a.pdf", k)
}

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, "receipts/1/a.txt", strings.NewReader("hello"), "text/plain"))
	rc, err := s.Get(ctx, "receipts/1/a.txt")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, s.Delete(ctx, "receipts/1/a.txt"))
	_, err = s.Get(ctx, "receipts/1/a.txt")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, s.Delete(ctx, "receipts/1/a.txt"))

	assert.ErrorIs(t, s.Put(ctx, "../escape", strings.NewReader("x"), ""), ErrInvalidKey)
}

func TestLocalStore_CancelledContext(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Put(ctx, "a", strings.NewReader("x"), ""), context.Canceled)
}

type fakeS3 struct {
	s3iface.S3API
	objects map[string][]byte
	deleted []string
}

func (f *fakeS3) GetObjectWithContext(_ aws.Context, in *s3.GetObjectInput, _ ...request.Option) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*in.Key]
	if !ok {
		return nil, awserr.New(s3.ErrCodeNoSuchKey, "missing", nil)
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) DeleteObjectWithContext(_ aws.Context, in *s3.DeleteObjectInput, _ ...request.Option) (*s3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, *in.Key)
	delete(f.objects, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

type fakeUploader struct {
	s3 *fakeS3
	in *s3manager.UploadInput
}

func (u *fakeUploader) Upload(in *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	return u.UploadWithContext(context.Background(), in, opts...)
}

func (u *fakeUploader) UploadWithContext(_ aws.Context, in *s3manager.UploadInput, _ ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	u.in = in
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	u.s3.objects[*in.Key] = data
	return &s3manager.UploadOutput{}, nil
}

func TestS3Store(t *testing.T) {
	ctx := context.Background()
	client := &fakeS3{objects: map[string][]byte{}}
	up := &fakeUploader{s3: client}
	s := NewS3StoreWithClient("bucket", "prod", client, up)

	require.NoError(t, s.Put(ctx, "receipts/1/a.pdf", strings.NewReader("pdf"), "application/pdf"))
	assert.Equal(t, "bucket", *up.in.Bucket)
	assert.Equal(t, "prod/receipts/1/a.pdf", *up.in.Key)
	assert.Equal(t, "application/pdf", *up.in.ContentType)

	rc, err := s.Get(ctx, "receipts/1/a.pdf")
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "pdf", string(data))

	require.NoError(t, s.Delete(ctx, "receipts/1/a.pdf"))
	assert.Equal(t, []string{"prod/receipts/1/a.pdf"}, client.deleted)

	_, err = s.Get(ctx, "receipts/1/a.pdf")
	assert.ErrorIs(t, err, ErrNotFound)
}
