package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/khatrisoftware/alankar-backend/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(baseURL string) *S3Storage {
	return NewS3Storage(context.Background(), &config.S3Config{
		Region:          "ap-south-1",
		Bucket:          "alankar-test",
		AccessKeyID:     "AKIATESTKEY",
		SecretAccessKey: "test-secret",
		BaseURL:         baseURL,
	})
}

func TestPresignProductImage(t *testing.T) {
	store := newTestStorage("")

	resp, err := store.PresignProductImage(context.Background(), "Ring Photo.JPG", "image/jpeg")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(resp.Key, "products/"))
	assert.True(t, strings.HasSuffix(resp.Key, ".jpg"))
	assert.Equal(t, "https://alankar-test.s3.ap-south-1.amazonaws.com/"+resp.Key, resp.FileURL)
	assert.Contains(t, resp.UploadURL, "alankar-test")
	assert.Contains(t, resp.UploadURL, "X-Amz-Signature=")
	assert.Contains(t, resp.UploadURL, "X-Amz-Expires=900")
}

func TestPresignProductImage_BaseURL(t *testing.T) {
	store := newTestStorage("https://cdn.example.com/")

	resp, err := store.PresignProductImage(context.Background(), "ring.png", "image/png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/"+resp.Key, resp.FileURL)
}

func TestPresignProductImage_RejectsNonImages(t *testing.T) {
	store := newTestStorage("")

	resp, err := store.PresignProductImage(context.Background(), "catalog.pdf", "application/pdf")
	assert.Nil(t, resp)

	var notAllowed *ErrContentTypeNotAllowed
	require.True(t, errors.As(err, &notAllowed))
	assert.Equal(t, "application/pdf", notAllowed.ContentType)
}

func TestValidateContentType(t *testing.T) {
	assert.NoError(t, ValidateContentType("IMAGE/WEBP", AllowedImageTypes))
	assert.Error(t, ValidateContentType("text/html", AllowedImageTypes))
	assert.Error(t, ValidateContentType("", AllowedImageTypes))
}
