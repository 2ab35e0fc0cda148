package media

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusboard/internal/apperr"
	"campusboard/internal/config"
)

type fakeS3 struct {
	objects map[string]*s3.HeadObjectOutput
	fail    error
	keys    []string
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.keys = append(f.keys, aws.ToString(in.Key))
	if f.fail != nil {
		return nil, f.fail
	}
	out, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &smithy.GenericAPIError{Code: "NotFound", Message: "Not Found"}
	}
	return out, nil
}

func TestCheckMedia(t *testing.T) {
	store := &fakeS3{objects: map[string]*s3.HeadObjectOutput{
		"uploads/cat.png":  {ContentLength: 1024, ContentType: aws.String("image/png")},
		"uploads/huge.mp4": {ContentLength: 50 << 20, ContentType: aws.String("video/mp4")},
		"uploads/run.exe":  {ContentLength: 10, ContentType: aws.String("application/octet-stream")},
		"uploads/memo.pdf": {ContentLength: 10, ContentType: aws.String("application/pdf")},
	}}
	checker := newS3Checker(store, "media", "https://cdn.example.com/media/", config.DefaultPolicy().Media)
	ctx := context.Background()

	tests := []struct {
		name string
		ref  string
		code apperr.Code
	}{
		{"image", "https://cdn.example.com/media/uploads/cat.png", ""},
		{"pdf with query", "https://cdn.example.com/media/uploads/memo.pdf?v=2", ""},
		{"foreign host", "https://evil.example.com/uploads/cat.png", apperr.ValidationError},
		{"base only", "https://cdn.example.com/media/", apperr.ValidationError},
		{"missing object", "https://cdn.example.com/media/uploads/dog.png", apperr.ValidationError},
		{"too large", "https://cdn.example.com/media/uploads/huge.mp4", apperr.ValidationError},
		{"wrong type", "https://cdn.example.com/media/uploads/run.exe", apperr.ValidationError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checker.CheckMedia(ctx, tt.ref)
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.code, apperr.CodeOf(err))
		})
	}
	assert.Contains(t, store.keys, "uploads/memo.pdf")
}

func TestCheckMedia_StoreFailureIsInternal(t *testing.T) {
	store := &fakeS3{fail: errors.New("connection refused")}
	checker := newS3Checker(store, "media", "https://cdn.example.com", config.DefaultPolicy().Media)

	err := checker.CheckMedia(context.Background(), "https://cdn.example.com/a.png")
	require.Error(t, err)
	assert.Equal(t, apperr.Internal, apperr.CodeOf(err))
}
