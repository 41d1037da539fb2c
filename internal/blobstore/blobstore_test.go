package blobstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libraryapi/internal/apperr"
)

func TestRules_Validate(t *testing.T) {
	rules := Rules{MaxBytes: 8, AllowedExtensions: DefaultAllowedExtensions}

	tests := []struct {
		name    string
		upload  *Upload
		wantExt string
		wantErr bool
	}{
		{name: "nil upload", upload: nil, wantErr: true},
		{name: "empty content", upload: &Upload{Filename: "a.png"}, wantErr: true},
		{name: "disallowed extension", upload: &Upload{Filename: "a.exe", Content: []byte("x")}, wantErr: true},
		{name: "no extension", upload: &Upload{Filename: "cover", Content: []byte("x")}, wantErr: true},
		{name: "too large", upload: &Upload{Filename: "a.png", Content: []byte("123456789")}, wantErr: true},
		{name: "upper-case extension", upload: &Upload{Filename: "A.JPG", Content: []byte("x")}, wantExt: ".jpg"},
		{name: "at the limit", upload: &Upload{Filename: "a.webp", Content: []byte("12345678")}, wantExt: ".webp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext, err := rules.Validate(tt.upload)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, apperr.ErrValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantExt, ext)
		})
	}
}

func TestFileStore_SaveAndDelete(t *testing.T) {
	root := t.TempDir()
	store := NewFileStore(root, "images/books", DefaultRules())
	ctx := context.Background()

	ref, err := store.Save(ctx, &Upload{Filename: "cover.PNG", Content: []byte("png-bytes")})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "/images/books/"))
	assert.True(t, strings.HasSuffix(ref, ".png"))

	full := filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(ref, "/")))
	data, err := os.ReadFile(full)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, store.Delete(ctx, ref))
	_, err = os.Stat(full)
	assert.True(t, os.IsNotExist(err))

	// deleting again is fine
	assert.NoError(t, store.Delete(ctx, ref))
	assert.NoError(t, store.Delete(ctx, ""))
}

func TestFileStore_RejectsInvalidUpload(t *testing.T) {
	store := NewFileStore(t.TempDir(), "", DefaultRules())

	_, err := store.Save(context.Background(), &Upload{Filename: "notes.txt", Content: []byte("x")})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestFileStore_DeleteRefusesEscapes(t *testing.T) {
	store := NewFileStore(t.TempDir(), "", DefaultRules())

	assert.Error(t, store.Delete(context.Background(), "/../../etc/passwd"))
}
