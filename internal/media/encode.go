package media

import (
	"encoding/base64"
	"net/http"
	"strings"
)

// EncodeForTransport encodes raw image bytes as standard base64 for embedding
// in a vision API request. The result never carries a data URI prefix.
func EncodeForTransport(raw []byte) string {
	return base64.StdEncoding.EncodeToString(raw)
}

// SniffMIME detects the content type of raw image bytes. Anything that does
// not sniff as an image falls back to image/jpeg, which is what Telegram
// serves for photos.
func SniffMIME(raw []byte) string {
	contentType := http.DetectContentType(raw)
	if !strings.HasPrefix(contentType, "image/") {
		return "image/jpeg"
	}
	return contentType
}
