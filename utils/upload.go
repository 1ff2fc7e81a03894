package utils

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const maxImageBytes = 10 * 1024 * 1024 // 10MB

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// StoreImage validates an uploaded image and stores it under keyPrefix,
// to R2 when configured and the local uploads directory otherwise.
// Returns the public URL.
func StoreImage(fileHeader *multipart.FileHeader, keyPrefix string) (string, error) {
	if fileHeader.Size > maxImageBytes {
		return "", fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}
	if ct := fileHeader.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
		return "", fmt.Errorf("unsupported content type %q", ct)
	}
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !imageExtensions[ext] {
		return "", fmt.Errorf("unsupported image extension %q", ext)
	}

	key := fmt.Sprintf("%s/%s%s", keyPrefix, uuid.NewString(), ext)

	if R2Enabled() {
		return UploadFileToR2(fileHeader, key)
	}

	if err := SaveFile(fileHeader, filepath.Join("uploads", filepath.FromSlash(key))); err != nil {
		return "", err
	}
	return "/uploads/" + key, nil
}
