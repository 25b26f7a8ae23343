package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	// MaxUploadBytes caps a single uploaded image.
	MaxUploadBytes = 10 << 20
	// MaxRequestBytes caps a whole upload request, form fields included.
	MaxRequestBytes = MaxUploadBytes + 1<<20
)

type upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// readUpload reads the first present multipart file among fields. It
// returns http.ErrMissingFile when none is present.
func readUpload(c *gin.Context, fields ...string) (*upload, error) {
	for _, field := range fields {
		header, err := c.FormFile(field)
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("invalid multipart form: %w", err)
		}
		if header.Size > MaxUploadBytes {
			return nil, fmt.Errorf("%s exceeds %d bytes", field, MaxUploadBytes)
		}

		f, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", field, err)
		}
		data, err := io.ReadAll(io.LimitReader(f, MaxUploadBytes+1))
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", field, err)
		}

		contentType := header.Header.Get("Content-Type")
		if contentType == "" || contentType == "application/octet-stream" {
			contentType = http.DetectContentType(data)
		}
		return &upload{Name: header.Filename, ContentType: contentType, Data: data}, nil
	}
	return nil, http.ErrMissingFile
}

// uploadFailed answers a readUpload error other than a missing file.
func uploadFailed(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
