package sniffer

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectHead(t *testing.T) {
	tests := []struct {
		name     string
		head     []byte
		wantType ImageType
		wantMIME string
	}{
		{
			name:     "jpeg",
			head:     []byte{0xff, 0xd8, 0xff, 0xe0},
			wantType: TypeJPEG,
			wantMIME: "image/jpeg",
		},
		{
			name:     "png",
			head:     []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'},
			wantType: TypePNG,
			wantMIME: "image/png",
		},
		{
			name:     "gif87a",
			head:     []byte("GIF87a...."),
			wantType: TypeGIF,
			wantMIME: "image/gif",
		},
		{
			name:     "gif89a",
			head:     []byte("GIF89a...."),
			wantType: TypeGIF,
			wantMIME: "image/gif",
		},
		{
			name:     "webp",
			head:     []byte("RIFF\x00\x00\x00\x00WEBPVP8 "),
			wantType: TypeWEBP,
			wantMIME: "image/webp",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := DetectHead(tt.head)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, result.Type)
			assert.Equal(t, tt.wantMIME, result.MIME)
		})
	}
}

func TestDetectHead_Unsupported(t *testing.T) {
	for _, head := range [][]byte{
		nil,
		{},
		[]byte("plain text"),
		[]byte("<svg xmlns=\"http://www.w3.org/2000/svg\"/>"),
		[]byte("%PDF-1.4"),
	} {
		_, err := DetectHead(head)
		assert.ErrorIs(t, err, ErrUnsupportedType)
	}
}

func TestMimeTypeFromHTTP(t *testing.T) {
	header := http.Header{}
	assert.Empty(t, MimeTypeFromHTTP(header))

	header.Set("Content-Type", "image/png")
	assert.Equal(t, "image/png", MimeTypeFromHTTP(header))

	header.Set("Content-Type", "image/jpeg; charset=binary")
	assert.Equal(t, "image/jpeg", MimeTypeFromHTTP(header))
}
