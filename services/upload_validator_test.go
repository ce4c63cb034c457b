package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadValidator_RejectsEmptyFile(t *testing.T) {
	v := NewUploadValidator(0)

	err := v.Validate("application/pdf", 0, nil)
	require.NotNil(t, err)
	assert.Equal(t, CodeCorruptFile, err.Code)
}

func TestUploadValidator_RejectsUnsupportedType(t *testing.T) {
	v := NewUploadValidator(0)

	err := v.Validate("text/plain", 1024, []byte("just some text"))
	require.NotNil(t, err)
	assert.Equal(t, CodeUnsupportedFileType, err.Code)
}

func TestUploadValidator_AcceptsPDF(t *testing.T) {
	v := NewUploadValidator(0)

	head := []byte("%PDF-1.4\n%some pdf content")
	err := v.Validate("application/pdf", 2<<20, head)
	assert.Nil(t, err)
}

func TestUploadValidator_RejectsOversize(t *testing.T) {
	v := NewUploadValidator(0)

	err := v.Validate("image/jpeg", DefaultMaxUploadBytes+1, nil)
	require.NotNil(t, err)
	assert.Equal(t, CodeFileTooLarge, err.Code)
}

func TestUploadValidator_RejectsMismatchedContent(t *testing.T) {
	v := NewUploadValidator(0)

	// JPEG magic bytes under a PNG declaration.
	head := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}
	err := v.Validate("image/png", int64(len(head)), head)
	require.NotNil(t, err)
	assert.Equal(t, CodeCorruptFile, err.Code)
}

func TestUploadValidator_CustomLimit(t *testing.T) {
	v := NewUploadValidator(1024)

	err := v.Validate("image/png", 2048, nil)
	require.NotNil(t, err)
	assert.Equal(t, CodeFileTooLarge, err.Code)
}

func TestUploadValidator_NormalizesDeclaredType(t *testing.T) {
	v := NewUploadValidator(0)

	err := v.Validate("Application/PDF; charset=binary", 100, nil)
	assert.Nil(t, err)
}
