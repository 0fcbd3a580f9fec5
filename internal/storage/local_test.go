package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Greybash/ngo-service/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreSave(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStore(dir, "/media/")

	f, err := s.Save(context.Background(), "My CV (final).pdf", strings.NewReader("pdf-bytes"), "application/pdf")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(f.Key, "resumes/"))
	assert.True(t, strings.HasSuffix(f.Key, "-My_CV_final_.pdf"), f.Key)
	assert.Equal(t, "/media/"+f.Key, f.URL)
	assert.Equal(t, filepath.Base(f.Key), f.Filename())

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(f.Key)))
	require.NoError(t, err)
	assert.Equal(t, "pdf-bytes", string(data))
}

func TestLocalStoreDelete(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "media")
	s := NewLocalStore(dir, "/media")
	ctx := context.Background()

	f, err := s.Save(ctx, "cv.pdf", strings.NewReader("pdf-bytes"), "application/pdf")
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, f.Key))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(f.Key)))
	assert.True(t, os.IsNotExist(err))

	// 重复删除不报错
	assert.NoError(t, s.Delete(ctx, f.Key))

	// key 不能指向存储目录之外
	outside := filepath.Join(root, "keep.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))
	assert.NoError(t, s.Delete(ctx, "../keep.txt"))
	_, err = os.Stat(outside)
	assert.NoError(t, err)
}

func TestObjectKeyStripsPath(t *testing.T) {
	key := objectKey("resumes/", `..\..\etc\passwd`)
	assert.True(t, strings.HasPrefix(key, "resumes/"))
	assert.NotContains(t, strings.TrimPrefix(key, "resumes/"), "/")
	assert.True(t, strings.HasSuffix(key, "-passwd"))
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := New(context.Background(), config.StorageConfig{Driver: "ftp"})
	assert.Error(t, err)
}
