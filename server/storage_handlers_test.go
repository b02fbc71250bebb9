package server

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rinblog/rin/file_store"
	"github.com/rinblog/rin/model"
	"github.com/rinblog/rin/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartUpload(t *testing.T, key string, content []byte) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if key != "" {
		require.NoError(t, writer.WriteField("key", key))
	}
	if content != nil {
		part, err := writer.CreateFormFile("file", key)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func (s *testServer) upload(key string, content []byte, user *model.User) *httptest.ResponseRecorder {
	body, contentType := multipartUpload(s.t, key, content)
	req := httptest.NewRequest(http.MethodPost, "/storage", body)
	req.Header.Set("Content-Type", contentType)
	if user != nil {
		req.Header.Set("Authorization", "Bearer "+s.tokenOf(user))
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestUpload(t *testing.T) {
	s := newTestServer(t)
	content := []byte("png bytes")
	expectedKey := "uploads/" + utils.ContentToSha1Hash(content) + ".png"

	t.Run("anonymous", func(t *testing.T) {
		w := s.upload("cat.png", content, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing file", func(t *testing.T) {
		w := s.upload("cat.png", nil, s.reader)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, MsgInvalidInput, w.Body.String())
	})

	t.Run("identical content shares a key", func(t *testing.T) {
		first := s.upload("cat.png", content, s.reader)
		require.Equal(t, http.StatusOK, first.Code, first.Body.String())
		second := s.upload("another-name.png", content, s.admin)
		require.Equal(t, http.StatusOK, second.Code, second.Body.String())

		assert.Equal(t, "https://cdn.example.com/"+expectedKey, first.Body.String())
		assert.Equal(t, first.Body.String(), second.Body.String())
		assert.Equal(t, 1, s.store.Len())
		stored, ok := s.store.Object(expectedKey)
		require.True(t, ok)
		assert.Equal(t, content, stored)
	})

	t.Run("store failure", func(t *testing.T) {
		s.store.Err = errors.New("bucket unreachable")
		defer func() { s.store.Err = nil }()
		w := s.upload("cat.png", content, s.reader)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "bucket unreachable", w.Body.String())
	})
}

func TestUploadWithoutConfig(t *testing.T) {
	router := gin.New()
	config := testS3Config()
	config.Bucket = ""
	router.POST("/storage", UploadHandler(config, &file_store.FakeFileStore{}))

	body, contentType := multipartUpload(t, "cat.png", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/storage", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "S3_BUCKET is not defined", w.Body.String())
}
