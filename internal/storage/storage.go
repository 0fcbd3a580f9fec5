package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Greybash/ngo-service/internal/config"
	"github.com/google/uuid"
)

// StoredFile 已保存的文件
type StoredFile struct {
	Key string // 存储内的对象名，例如 resumes/<uuid>-cv.pdf
	URL string // 可访问地址
}

// Filename 对象名的最后一段
func (f StoredFile) Filename() string {
	return path.Base(f.Key)
}

// FileStore 简历等上传文件的存储
type FileStore interface {
	Save(ctx context.Context, name string, r io.Reader, contentType string) (*StoredFile, error)
	// Delete 删除对象，对象不存在时返回 nil
	Delete(ctx context.Context, key string) error
}

// New 按配置选择本地磁盘或 S3
func New(ctx context.Context, cfg config.StorageConfig) (FileStore, error) {
	switch cfg.Driver {
	case "s3":
		return NewS3Store(ctx, cfg)
	case "", "local":
		return NewLocalStore(cfg.LocalDir, cfg.PublicBaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// objectKey 生成不重名的对象名，保留原文件名便于导出时识别
func objectKey(prefix, name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	base = unsafeChars.ReplaceAllString(base, "_")
	if base == "" || base == "." || base == "_" {
		base = "file"
	}
	prefix = strings.Trim(prefix, "/")
	key := fmt.Sprintf("%s-%s", uuid.New().String(), base)
	if prefix == "" {
		return key
	}
	return prefix + "/" + key
}
