package services

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocalStorage(t *testing.T) {
	tempDir := t.TempDir()

	storage := NewLocalStorage(tempDir)
	ctx := context.Background()
	content := "%PDF-1.4 fake"
	key := "requests/req-1/documents/doc-1/Offert_Test_2026-01-11_v1.pdf"

	t.Run("UploadReader creates file", func(t *testing.T) {
		result, err := storage.UploadReader(ctx, strings.NewReader(content), key, "application/pdf", int64(len(content)))
		assert.NoError(t, err)
		assert.Equal(t, key, result.Key)
		assert.Equal(t, int64(len(content)), result.FileSize)

		_, err = os.Stat(filepath.Join(tempDir, key))
		assert.NoError(t, err)
	})

	t.Run("Get retrieves content and type", func(t *testing.T) {
		reader, contentType, err := storage.Get(ctx, key)
		assert.NoError(t, err)
		defer reader.Close()

		got, _ := io.ReadAll(reader)
		assert.Equal(t, content, string(got))
		assert.Equal(t, "application/pdf", contentType)
	})

	t.Run("Delete removes file", func(t *testing.T) {
		assert.NoError(t, storage.Delete(ctx, key))
		_, _, err := storage.Get(ctx, key)
		assert.Error(t, err)
	})

	t.Run("Delete is idempotent", func(t *testing.T) {
		assert.NoError(t, storage.Delete(ctx, "never/existed.pdf"))
	})
}

func TestGenerateAttachmentKey(t *testing.T) {
	key := GenerateAttachmentKey("req-1", "ritningar", "plan.dwg")

	assert.True(t, strings.HasPrefix(key, "requests/req-1/files/ritningar/"))
	assert.True(t, strings.HasSuffix(key, ".dwg"))

	// Keys are unique even for the same filename.
	other := GenerateAttachmentKey("req-1", "ritningar", "plan.dwg")
	assert.NotEqual(t, key, other)
}

func TestGenerateDocumentPDFKey(t *testing.T) {
	key := GenerateDocumentPDFKey("req-1", "doc-1", "Offert_Test_2026-01-11_v1.pdf")
	assert.Equal(t, "requests/req-1/documents/doc-1/Offert_Test_2026-01-11_v1.pdf", key)
}
