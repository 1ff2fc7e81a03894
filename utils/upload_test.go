package utils

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeFileHeader(t *testing.T, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := make(map[string][]string)
	header["Content-Disposition"] = []string{`form-data; name="file"; filename="` + filename + `"`}
	header["Content-Type"] = []string{contentType}
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	files := req.MultipartForm.File["file"]
	require.Len(t, files, 1)
	return files[0]
}

func TestStoreImageRejectsBadUploads(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		wantErr     string
	}{
		{"executable extension", "payload.exe", "image/png", "unsupported image extension"},
		{"no extension", "avatar", "image/png", "unsupported image extension"},
		{"non-image content type", "avatar.png", "application/octet-stream", "unsupported content type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fh := makeFileHeader(t, tt.filename, tt.contentType, []byte("data"))
			_, err := StoreImage(fh, "avatars/u1")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestStoreImageRejectsOversize(t *testing.T) {
	fh := makeFileHeader(t, "big.png", "image/png", []byte("data"))
	fh.Size = maxImageBytes + 1
	_, err := StoreImage(fh, "avatars/u1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")
}

func TestStoreImageSavesLocallyWithoutR2(t *testing.T) {
	origDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(origDir) })

	fh := makeFileHeader(t, "avatar.PNG", "image/png", []byte("pngbytes"))
	url, err := StoreImage(fh, "avatars/u1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/avatars/u1/"), url)
	assert.True(t, strings.HasSuffix(url, ".png"), url)

	saved, err := os.ReadFile(filepath.Join(".", strings.TrimPrefix(url, "/")))
	require.NoError(t, err)
	assert.Equal(t, []byte("pngbytes"), saved)
}

func TestSaveFileCreatesParentDirs(t *testing.T) {
	dir := t.TempDir()
	fh := makeFileHeader(t, "pic.jpg", "image/jpeg", []byte("jpg"))

	dest := filepath.Join(dir, "nested", "deeply", "pic.jpg")
	require.NoError(t, SaveFile(fh, dest))

	saved, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpg"), saved)
}
