package services

import (
	"fmt"
	"net/http"
	"strings"
)

// DefaultMaxUploadBytes is the single evidence-size limit (10 MiB).
const DefaultMaxUploadBytes = 10 << 20

// allowedUploadTypes are the evidence MIME types accepted by the gate.
var allowedUploadTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// UploadValidator gates files before they enter the payment ledger. It is
// stateless; Validate never mutates anything.
type UploadValidator struct {
	maxBytes int64
}

func NewUploadValidator(maxBytes int64) *UploadValidator {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &UploadValidator{maxBytes: maxBytes}
}

// Validate checks the declared type, size and, when the first bytes are
// available, sniffs them against the declared type. head may be nil when the
// caller cannot peek (sniffing is then skipped).
func (v *UploadValidator) Validate(declaredType string, size int64, head []byte) *ServiceError {
	if size == 0 {
		return errBadRequest(CodeCorruptFile, "Uploaded file is empty")
	}
	if size > v.maxBytes {
		return errBadRequest(CodeFileTooLarge, fmt.Sprintf("File exceeds the %d byte limit", v.maxBytes))
	}

	declared := normalizeMime(declaredType)
	if !allowedUploadTypes[declared] {
		return errBadRequest(CodeUnsupportedFileType, fmt.Sprintf("File type %s is not accepted", declared))
	}

	if len(head) > 0 {
		sniffed := normalizeMime(http.DetectContentType(head))
		// DetectContentType falls back to octet-stream when unsure; only a
		// positive mismatch is rejected.
		if sniffed != "application/octet-stream" && sniffed != declared {
			return errBadRequest(CodeCorruptFile, "File content does not match its declared type")
		}
	}

	return nil
}

func normalizeMime(mime string) string {
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	return strings.ToLower(strings.TrimSpace(mime))
}
