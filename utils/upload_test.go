package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUploadName(t *testing.T) {
	tests := []struct {
		in, suffix string
	}{
		{"pothole.jpg", "_pothole.jpg"},
		{"../../etc/passwd", "_passwd"},
		{"C:\\photos\\road.png", "_road.png"},
		{"", "_upload"},
	}
	for _, tt := range tests {
		got := UploadName(tt.in)
		assert.True(t, strings.HasSuffix(got, tt.suffix), "%q -> %q", tt.in, got)
		assert.NotContains(t, got, "/")
		assert.Len(t, got, 36+len(tt.suffix))
	}

	assert.NotEqual(t, UploadName("a.jpg"), UploadName("a.jpg"))
}
