package util

import (
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ValidateMimeType 按文件内容识别 MIME 类型
// allowedTypes: 允许的 MIME 前缀或完整类型，如 "image/", "application/pdf"
func ValidateMimeType(reader io.Reader, allowedTypes []string) (string, error) {
	mtype, err := mimetype.DetectReader(reader)
	if err != nil {
		return "", err
	}

	for m := mtype; m != nil; m = m.Parent() {
		for _, allowed := range allowedTypes {
			if strings.HasPrefix(m.String(), allowed) || m.Is(allowed) {
				return mtype.String(), nil
			}
		}
	}

	return mtype.String(), errors.New("invalid file type: " + mtype.String())
}

// FileExtension 返回小写扩展名（不含点）
func FileExtension(filename string) string {
	ext := filepath.Ext(filename)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

func HasAllowedExtension(filename string, allowed []string) bool {
	ext := FileExtension(filename)
	if ext == "" {
		return false
	}
	for _, a := range allowed {
		if ext == a {
			return true
		}
	}
	return false
}

// IsImage 检测是否为图片
func IsImage(mimeType string) bool {
	return strings.HasPrefix(mimeType, MimeImage)
}
