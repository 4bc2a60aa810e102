package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	s, err := NewFSStore(filepath.Join(t.TempDir(), "blobs"))
	require.NoError(t, err)

	key, err := s.Put(ctx, "exam-1/qcm.pdf", strings.NewReader("%PDF-1.7 body"))
	require.NoError(t, err)
	assert.Equal(t, "exam-1/qcm.pdf", key)

	rc, err := s.Get(ctx, key)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 body", string(body))

	entries, err := os.ReadDir(filepath.Join(s.Base(), "exam-1"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not linger")

	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Get(ctx, key)
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
	require.NoError(t, s.Delete(ctx, key), "deleting a missing blob is not an error")
}

func TestFSStore_Overwrite(t *testing.T) {
	ctx := context.Background()
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Put(ctx, "a/b.pdf", strings.NewReader("one"))
	require.NoError(t, err)
	_, err = s.Put(ctx, "a/b.pdf", strings.NewReader("two"))
	require.NoError(t, err)

	rc, err := s.Get(ctx, "a/b.pdf")
	require.NoError(t, err)
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	assert.Equal(t, "two", string(body))
}

func TestCleanKey(t *testing.T) {
	tests := []struct {
		key     string
		want    string
		wantErr bool
	}{
		{"exam/qcm.pdf", "exam/qcm.pdf", false},
		{"/exam/qcm.pdf", "exam/qcm.pdf", false},
		{"exam\\qcm.pdf", "exam/qcm.pdf", false},
		{"", "", true},
		{"   ", "", true},
		{"../etc/passwd", "", true},
		{"exam/../../x", "", true},
		{"exam/./qcm.pdf", "", true},
		{"/", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := CleanKey(tt.key)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFSStore_RejectsEscapingKeys(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)
	_, err = s.Put(context.Background(), "../outside.pdf", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidKey)
	_, err = s.Get(context.Background(), "../outside.pdf")
	assert.ErrorIs(t, err, ErrInvalidKey)
}
