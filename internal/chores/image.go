package chores

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultMaxImageBytes caps a decoded proof image.
const DefaultMaxImageBytes = 500 * 1024

// imageTypes maps accepted MIME types to the stored file extension.
var imageTypes = map[string]string{
	"image/jpeg": "jpeg",
	"image/png":  "png",
	"image/heic": "heic",
	"image/heif": "heif",
}

// ProofImage is a decoded proof-of-completion upload.
type ProofImage struct {
	MIME string
	Ext  string
	Data []byte
}

// IsDataURI reports whether s looks like an inline data URI.
func IsDataURI(s string) bool {
	return strings.HasPrefix(s, "data:")
}

// DecodeDataURI decodes a base64 image data URI and checks its type and size.
// All failures wrap ErrValidation.
func DecodeDataURI(uri string, maxBytes int) (ProofImage, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}

	header, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok || !IsDataURI(uri) {
		return ProofImage{}, fmt.Errorf("%w: picture must be a data URI", ErrValidation)
	}
	mediaType, encoding, _ := strings.Cut(header, ";")
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	if encoding != "base64" {
		return ProofImage{}, fmt.Errorf("%w: picture must be base64 encoded", ErrValidation)
	}

	ext, ok := imageTypes[mediaType]
	if !ok {
		return ProofImage{}, fmt.Errorf("%w: unsupported image type %q (allowed: jpeg, png, heic, heif)", ErrValidation, mediaType)
	}

	// Reject before decoding when the encoded length already rules the payload out.
	if base64.StdEncoding.DecodedLen(len(payload)) > maxBytes+2 {
		return ProofImage{}, fmt.Errorf("%w: image exceeds %d bytes", ErrValidation, maxBytes)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return ProofImage{}, fmt.Errorf("%w: invalid base64 image data: %v", ErrValidation, err)
	}
	if len(data) == 0 {
		return ProofImage{}, fmt.Errorf("%w: image is empty", ErrValidation)
	}
	if len(data) > maxBytes {
		return ProofImage{}, fmt.Errorf("%w: image is %d bytes, limit is %d", ErrValidation, len(data), maxBytes)
	}

	detected := mimetype.Detect(data)
	if !sniffMatches(detected, mediaType) {
		return ProofImage{}, fmt.Errorf("%w: image content is %s, declared %s", ErrValidation, detected.String(), mediaType)
	}

	return ProofImage{MIME: mediaType, Ext: ext, Data: data}, nil
}

// sniffMatches accepts the declared type, or any HEIF family type for heic/heif.
func sniffMatches(detected *mimetype.MIME, declared string) bool {
	if detected.Is(declared) {
		return true
	}
	if declared != "image/heic" && declared != "image/heif" {
		return false
	}
	for _, t := range []string{"image/heic", "image/heic-sequence", "image/heif", "image/heif-sequence"} {
		if detected.Is(t) {
			return true
		}
	}
	return false
}
