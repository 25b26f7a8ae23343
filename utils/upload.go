package utils

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// UploadName returns a collision-free file name for an uploaded file,
// keeping only the base name of what the client sent.
func UploadName(original string) string {
	base := filepath.Base(strings.ReplaceAll(original, "\\", "/"))
	if base == "." || base == "/" || base == ".." {
		base = "upload"
	}
	return uuid.NewString() + "_" + base
}
